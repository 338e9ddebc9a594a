// Package atlas wraps the Atlas Go SDK with credential checks, per-request
// timeouts, request logging and error classification.
package atlas

import (
	"context"
	"net/http"
	"time"

	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/metrics"
	"github.com/teabranch/atlas-provision/internal/types"
)

// DefaultBaseURL is the Atlas Admin API host. The SDK appends /api/atlas/v2.
const DefaultBaseURL = "https://cloud.mongodb.com"

// DefaultRequestTimeout bounds a single HTTP exchange.
const DefaultRequestTimeout = 30 * time.Second

// Config defines settings for initializing the Atlas client wrapper.
type Config struct {
	Credentials    types.Credentials
	BaseURL        string        // Override Atlas API base URL (for testing)
	RequestTimeout time.Duration // Per request deadline (default 30s)
	Logger         *logging.Logger
	Metrics        *metrics.Recorder
}

// Client wraps the Atlas SDK admin API client. It never retries: every Do
// is exactly one HTTP exchange, or none when credentials are missing.
type Client struct {
	api         *admin.APIClient
	credentials types.Credentials
	timeout     time.Duration
	logger      *logging.Logger
	metrics     *metrics.Recorder
}

// Call performs one SDK request and returns its raw HTTP response.
type Call func(ctx context.Context, api *admin.APIClient) (*http.Response, error)

// NewClient constructs a Client. Missing credentials are not an error here;
// they are reported by Do so that no request is ever sent without them.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	modifiers := []admin.ClientModifier{
		admin.UseDigestAuth(cfg.Credentials.PublicKey, cfg.Credentials.PrivateKey),
	}
	if cfg.BaseURL != "" {
		modifiers = append(modifiers, admin.UseBaseURL(cfg.BaseURL))
	}

	api, err := admin.NewClient(modifiers...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		credentials: cfg.Credentials,
		timeout:     cfg.RequestTimeout,
		logger:      cfg.Logger.WithFields(map[string]any{"component": "atlas.Client"}),
		metrics:     cfg.Metrics,
	}, nil
}

// Do runs call once under a per-request timeout. op is the failure prefix
// used in the returned *Error, e.g. "Failed to create project".
func (c *Client) Do(ctx context.Context, op string, call Call) error {
	if !c.credentials.Present() {
		c.logger.Error("Atlas API keys not found", "operation", op)
		c.metrics.ObserveRequest(op, metrics.OutcomeMissingCredentials, 0)
		return ErrMissingCredentials
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	resp, err := call(reqCtx, c.api)
	elapsed := time.Since(started)

	if resp != nil && resp.Request != nil {
		c.logger.LogAPIResponse(
			&logging.APIRequest{Method: resp.Request.Method, URL: resp.Request.URL.String(), Started: started},
			&logging.APIResponse{StatusCode: resp.StatusCode, Duration: elapsed},
		)
	}

	result := classify(op, resp, err)
	c.metrics.ObserveRequest(op, outcome(result), elapsed)

	if result != nil {
		c.logger.Debug("Atlas request failed", "operation", op, "error", result.Error())
	} else if err != nil {
		// 2xx with an undecodable body still counts as success.
		c.logger.Debug("Atlas response body not decoded", "operation", op, "error", err.Error())
	}
	return result
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case IsTransport(err):
		return metrics.OutcomeTransportError
	default:
		return metrics.OutcomeAPIError
	}
}
