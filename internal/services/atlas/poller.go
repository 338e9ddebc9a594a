package atlas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/metrics"
	"github.com/teabranch/atlas-provision/internal/types"
)

const (
	opCheckClusterStatus = "Failed to check cluster status"

	// ReadyState is the stateName Atlas reports for a usable cluster.
	ReadyState = "IDLE"
)

// ErrProvisioningTimedOut is returned when the cluster never became ready
// within the attempt budget.
var ErrProvisioningTimedOut = errors.New("timeout waiting for cluster to be ready")

var errStillProvisioning = errors.New("cluster still provisioning")

// Poller waits for a cluster to reach ReadyState with one GET per attempt
// and a fixed delay between attempts.
type Poller struct {
	client      *atlasclient.Client
	logger      *logging.Logger
	metrics     *metrics.Recorder
	tier        types.Tier
	MaxAttempts int
	Interval    time.Duration
	Timer       retry.Timer // nil uses real time
}

// PollResult is the outcome of Wait. State is always populated; Cluster is
// set only when Phase is PhaseReady.
type PollResult struct {
	State   types.ProvisioningState
	Cluster *admin.ClusterDescription20240805
}

// Wait polls clusterName until it is ready, a check fails or MaxAttempts
// checks have been made.
func (p *Poller) Wait(ctx context.Context, projectID, clusterName string) (*PollResult, error) {
	result := &PollResult{State: types.ProvisioningState{
		ClusterName:  clusterName,
		MaxAttempts:  p.MaxAttempts,
		PollInterval: p.Interval,
		Phase:        types.PhasePending,
	}}
	state := &result.State

	check := func() error {
		state.AttemptsUsed++
		p.metrics.ObservePollAttempt(string(p.tier))

		var cluster *admin.ClusterDescription20240805
		err := p.client.Do(ctx, opCheckClusterStatus, func(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
			c, resp, err := api.ClustersApi.GetCluster(ctx, projectID, clusterName).Execute()
			cluster = c
			return resp, err
		})
		if err != nil {
			return retry.Unrecoverable(err)
		}

		state.LastObservedState = cluster.GetStateName()
		if state.LastObservedState == ReadyState {
			result.Cluster = cluster
			return nil
		}
		return errStillProvisioning
	}

	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(uint(max(p.MaxAttempts, 1))),
		retry.Delay(p.Interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(_ uint, err error) {
			if errors.Is(err, errStillProvisioning) {
				p.logger.Info("Waiting for cluster to be ready",
					"cluster_name", clusterName,
					"state", state.LastObservedState,
					"attempt", state.AttemptsUsed,
					"max_attempts", p.MaxAttempts)
			}
		}),
	}
	if p.Timer != nil {
		opts = append(opts, retry.WithTimer(p.Timer))
	}

	err := retry.Do(check, opts...)
	switch {
	case err == nil:
		state.Phase = types.PhaseReady
		p.logger.Info("Cluster is ready", "cluster_name", clusterName, "attempts", state.AttemptsUsed)
		return result, nil
	case errors.Is(err, errStillProvisioning):
		state.Phase = types.PhaseTimedOut
		p.logger.Error("Timeout waiting for cluster to be ready",
			"cluster_name", clusterName, "state", state.LastObservedState, "attempts", state.AttemptsUsed)
		return result, fmt.Errorf("%w: cluster %s still %s after %d attempts",
			ErrProvisioningTimedOut, clusterName, displayState(state.LastObservedState), state.AttemptsUsed)
	default:
		state.Phase = types.PhaseFailed
		p.logger.Error("Failed to check cluster status", "cluster_name", clusterName, "error", err.Error())
		return result, err
	}
}

func displayState(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}
