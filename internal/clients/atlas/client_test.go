package atlas

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/metrics"
	"github.com/teabranch/atlas-provision/internal/types"
)

var testCredentials = types.Credentials{PublicKey: "pub", PrivateKey: "priv"}

func newTestClient(t *testing.T, baseURL string, creds types.Credentials, rec *metrics.Recorder) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Credentials:    creds,
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		Logger:         logging.Discard(),
		Metrics:        rec,
	})
	require.NoError(t, err)
	return c
}

func listOrgs(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
	_, resp, err := api.OrganizationsApi.ListOrganizations(ctx).Execute()
	return resp, err
}

func TestDo_MissingCredentialsMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	for _, creds := range []types.Credentials{{}, {PublicKey: "pub"}, {PrivateKey: "priv"}} {
		rec := metrics.NewRecorder()
		c := newTestClient(t, srv.URL, creds, rec)

		err := c.Do(context.Background(), "Failed to fetch organizations", listOrgs)

		require.ErrorIs(t, err, ErrMissingCredentials)
		assert.Contains(t, err.Error(), "API keys not found")
		assert.Equal(t, 1.0, testutil.ToFloat64(rec.APIRequestsTotal.WithLabelValues("Failed to fetch organizations", metrics.OutcomeMissingCredentials)))
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestDo_Success(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/atlas/v2/orgs", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"id":"org1","name":"First"}],"totalCount":1}`))
	}))
	defer srv.Close()

	rec := metrics.NewRecorder()
	c := newTestClient(t, srv.URL, testCredentials, rec)

	var names []string
	err := c.Do(context.Background(), "Failed to fetch organizations", func(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
		page, resp, err := api.OrganizationsApi.ListOrganizations(ctx).Execute()
		for _, o := range page.GetResults() {
			names = append(names, o.GetName())
		}
		return resp, err
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"First"}, names)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.APIRequestsTotal.WithLabelValues("Failed to fetch organizations", metrics.OutcomeSuccess)))
}

func TestDo_APIErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":400,"errorCode":"INVALID_ATTRIBUTE","detail":"Invalid attribute name"}`},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":403,"errorCode":"FORBIDDEN","detail":"nope"}`, sentinel: ErrUnauthorized},
		{name: "not found", status: http.StatusNotFound, body: `{"error":404,"errorCode":"RESOURCE_NOT_FOUND","detail":"missing"}`, sentinel: ErrNotFound},
		{name: "conflict", status: http.StatusConflict, body: `{"error":409,"errorCode":"DUPLICATE_GROUP_NAME","detail":"taken"}`, sentinel: ErrConflict},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":500,"errorCode":"UNEXPECTED_ERROR","detail":"oops"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL, testCredentials, nil)
			err := c.Do(context.Background(), "Failed to fetch organizations", listOrgs)

			require.Error(t, err)
			assert.Equal(t, int32(1), hits.Load(), "no retries")
			assert.True(t, IsAPIError(err))
			assert.False(t, IsTransport(err))
			assert.Equal(t, tt.status, StatusCode(err))
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}

			var atlasErr *Error
			require.True(t, errors.As(err, &atlasErr))
			assert.Equal(t, "Failed to fetch organizations", atlasErr.Op)
			assert.Contains(t, err.Error(), "Failed to fetch organizations. Status code: ")
			assert.NotEmpty(t, atlasErr.Detail)
		})
	}
}

func TestDo_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := metrics.NewRecorder()
	c := newTestClient(t, url, testCredentials, rec)
	err := c.Do(context.Background(), "Failed to create project", listOrgs)

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsAPIError(err))
	assert.Equal(t, 0, StatusCode(err))
	assert.Contains(t, err.Error(), "Failed to create project: ")
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.APIRequestsTotal.WithLabelValues("Failed to create project", metrics.OutcomeTransportError)))
}

func TestDo_RequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(Config{
		Credentials:    testCredentials,
		BaseURL:        srv.URL,
		RequestTimeout: 50 * time.Millisecond,
		Logger:         logging.Discard(),
	})
	require.NoError(t, err)

	err = c.Do(context.Background(), "Failed to fetch organizations", listOrgs)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultRequestTimeout, c.timeout)
	assert.NotNil(t, c.logger)
}
