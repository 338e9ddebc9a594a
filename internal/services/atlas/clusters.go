package atlas

import (
	"context"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	admin "go.mongodb.org/atlas-sdk/v20250312005/admin"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/metrics"
	"github.com/teabranch/atlas-provision/internal/security"
	"github.com/teabranch/atlas-provision/internal/types"
	"github.com/teabranch/atlas-provision/internal/validation"
)

const opCreateCluster = "Failed to create cluster"

// Poll budgets per tier.
const (
	FreeMaxAttempts     = 30
	PaidMaxAttempts     = 60
	DefaultPollInterval = 30 * time.Second
)

// ClustersService provisions clusters end to end: create, wait for
// readiness, create the default database user and build the connection string.
type ClustersService struct {
	client       *atlasclient.Client
	users        *DatabaseUsersService
	logger       *logging.Logger
	metrics      *metrics.Recorder
	pollInterval time.Duration
	timer        retry.Timer
}

// ClusterOption configures a ClustersService.
type ClusterOption func(*ClustersService)

// WithPollInterval sets the delay between readiness checks.
func WithPollInterval(d time.Duration) ClusterOption {
	return func(s *ClustersService) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithTimer replaces the clock used between readiness checks.
func WithTimer(t retry.Timer) ClusterOption {
	return func(s *ClustersService) { s.timer = t }
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) ClusterOption {
	return func(s *ClustersService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records poll attempts on m.
func WithMetrics(m *metrics.Recorder) ClusterOption {
	return func(s *ClustersService) { s.metrics = m }
}

// NewClustersService creates a new ClustersService.
func NewClustersService(client *atlasclient.Client, users *DatabaseUsersService, opts ...ClusterOption) *ClustersService {
	s := &ClustersService{
		client:       client,
		users:        users,
		logger:       logging.Default(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFree provisions an M0 cluster and returns its connection string.
func (s *ClustersService) CreateFree(ctx context.Context, projectID, name string) (string, error) {
	return s.provision(ctx, projectID, types.NewFreeClusterSpec(name))
}

// CreatePaid provisions a dedicated cluster and returns its connection
// string. A nil storageSizeGB selects the default for instanceSize.
func (s *ClustersService) CreatePaid(ctx context.Context, projectID, name, instanceSize string, storageSizeGB *int) (string, error) {
	if storageSizeGB != nil {
		if err := validation.ValidateStorageSize(*storageSizeGB); err != nil {
			s.logger.Error("Invalid storage size", "storage_size_gb", *storageSizeGB, "error", err.Error())
			return "", err
		}
	}
	if err := validation.ValidateInstanceSize(instanceSize); err != nil {
		s.logger.Error("Invalid instance size", "instance_size", instanceSize, "error", err.Error())
		return "", err
	}
	return s.provision(ctx, projectID, types.NewPaidClusterSpec(name, instanceSize, storageSizeGB))
}

func (s *ClustersService) provision(ctx context.Context, projectID string, spec types.ClusterSpec) (string, error) {
	if err := validation.ValidateRequired(projectID, "project-id"); err != nil {
		return "", err
	}
	if err := validation.ValidateClusterName(spec.Name); err != nil {
		return "", err
	}

	payload := BuildClusterPayload(spec)
	err := s.client.Do(ctx, opCreateCluster, func(ctx context.Context, api *admin.APIClient) (*http.Response, error) {
		_, resp, err := api.ClustersApi.CreateCluster(ctx, projectID, payload).Execute()
		return resp, err
	})
	if err != nil {
		s.logger.Error("Failed to create cluster", "cluster_name", spec.Name, "tier", string(spec.Tier), "error", err.Error())
		return "", err
	}
	s.logger.Info("Cluster creation initiated", "cluster_name", spec.Name, "tier", string(spec.Tier), "instance_size", spec.InstanceSize)

	poll, err := s.newPoller(spec.Tier).Wait(ctx, projectID, spec.Name)
	if err != nil {
		return "", err
	}

	if err := s.users.CreateDefault(ctx, projectID); err != nil {
		return "", err
	}

	conn := s.connectionString(poll.Cluster, spec.Name)
	s.logger.Info("Cluster created successfully",
		"cluster_name", spec.Name,
		"connection_string", security.MaskConnectionString(conn))
	return conn, nil
}

func (s *ClustersService) newPoller(tier types.Tier) *Poller {
	attempts := FreeMaxAttempts
	if tier == types.TierPaid {
		attempts = PaidMaxAttempts
	}
	return &Poller{
		client:      s.client,
		logger:      s.logger,
		metrics:     s.metrics,
		tier:        tier,
		MaxAttempts: attempts,
		Interval:    s.pollInterval,
		Timer:       s.timer,
	}
}

// connectionString prefers the SRV string from the ready observation and
// falls back to the constructed one.
func (s *ClustersService) connectionString(cluster *admin.ClusterDescription20240805, name string) string {
	user := s.users.User()
	srv := cluster.GetConnectionStrings()
	if conn, ok := withCredentials(srv.GetStandardSrv(), user); ok {
		return conn
	}
	s.logger.Debug("Official connection string unavailable, using constructed one", "cluster_name", name)
	return buildConnectionString(user, name)
}

// BuildClusterPayload renders spec as an Atlas cluster description.
func BuildClusterPayload(spec types.ClusterSpec) *admin.ClusterDescription20240805 {
	hardware := &admin.HardwareSpec20240805{
		InstanceSize: admin.PtrString(spec.InstanceSize),
		NodeCount:    admin.PtrInt(spec.NodeCount),
	}
	region := admin.CloudRegionConfig20240805{
		RegionName:     admin.PtrString(spec.Region),
		Priority:       admin.PtrInt(types.ElectablePriority),
		ElectableSpecs: hardware,
	}

	switch spec.Tier {
	case types.TierFree:
		hardware.EbsVolumeType = admin.PtrString("STANDARD")
		region.ProviderName = admin.PtrString(types.ProviderTenant)
		region.BackingProviderName = admin.PtrString(spec.Provider)
	default:
		if spec.StorageSizeGB != nil {
			hardware.DiskSizeGB = admin.PtrFloat64(float64(*spec.StorageSizeGB))
		}
		region.ProviderName = admin.PtrString(spec.Provider)
	}

	cluster := &admin.ClusterDescription20240805{
		Name:        admin.PtrString(spec.Name),
		ClusterType: admin.PtrString(spec.ClusterType),
		ReplicationSpecs: &[]admin.ReplicationSpec20240805{
			{RegionConfigs: &[]admin.CloudRegionConfig20240805{region}},
		},
	}
	if spec.Tier == types.TierPaid {
		cluster.BackupEnabled = admin.PtrBool(spec.BackupEnabled)
	}
	return cluster
}
