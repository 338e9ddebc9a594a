package types

import "time"

// Tier selects which cluster payload shape is sent to Atlas.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

const (
	ProviderAWS        = "AWS"
	ProviderTenant     = "TENANT"
	ClusterTypeReplica = "REPLICASET"
	FreeInstanceSize   = "M0"
	FreeRegion         = "US_EAST_1"
	PaidRegion         = "CA_CENTRAL_1"
	DefaultNodeCount   = 3
	ElectablePriority  = 7
)

// ClusterSpec describes a cluster to provision. StorageSizeGB is only
// meaningful for the paid tier and is ignored for free clusters.
type ClusterSpec struct {
	Name          string
	Tier          Tier
	InstanceSize  string
	StorageSizeGB *int
	Provider      string
	Region        string
	NodeCount     int
	ClusterType   string
	BackupEnabled bool
}

// NewFreeClusterSpec returns the shared-tier M0 spec.
func NewFreeClusterSpec(name string) ClusterSpec {
	return ClusterSpec{
		Name:         name,
		Tier:         TierFree,
		InstanceSize: FreeInstanceSize,
		Provider:     ProviderAWS,
		Region:       FreeRegion,
		NodeCount:    DefaultNodeCount,
		ClusterType:  ClusterTypeReplica,
	}
}

// NewPaidClusterSpec returns a dedicated-tier spec. A nil storage size is
// replaced by the default for the instance size.
func NewPaidClusterSpec(name, instanceSize string, storageSizeGB *int) ClusterSpec {
	storage := DefaultStorageSizeGB(instanceSize)
	if storageSizeGB != nil {
		storage = *storageSizeGB
	}
	return ClusterSpec{
		Name:          name,
		Tier:          TierPaid,
		InstanceSize:  instanceSize,
		StorageSizeGB: &storage,
		Provider:      ProviderAWS,
		Region:        PaidRegion,
		NodeCount:     DefaultNodeCount,
		ClusterType:   ClusterTypeReplica,
	}
}

// DefaultStorageSizeGB is 10 GB for M10 and M20, 20 GB for everything larger.
func DefaultStorageSizeGB(instanceSize string) int {
	switch instanceSize {
	case "M10", "M20":
		return 10
	default:
		return 20
	}
}

// ProvisioningPhase is the state of a cluster readiness poll.
type ProvisioningPhase string

const (
	PhasePending  ProvisioningPhase = "PENDING"
	PhaseReady    ProvisioningPhase = "READY"
	PhaseFailed   ProvisioningPhase = "FAILED"
	PhaseTimedOut ProvisioningPhase = "TIMED_OUT"
)

// Terminal reports whether no further polling happens from this phase.
func (p ProvisioningPhase) Terminal() bool {
	return p == PhaseReady || p == PhaseFailed || p == PhaseTimedOut
}

// ProvisioningState tracks one readiness poll. It lives only for the
// duration of a single provisioning call.
type ProvisioningState struct {
	ClusterName       string
	AttemptsUsed      int
	MaxAttempts       int
	PollInterval      time.Duration
	LastObservedState string
	Phase             ProvisioningPhase
}
