package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teabranch/atlas-provision/internal/cli"
	"github.com/teabranch/atlas-provision/internal/clients/mongodb"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/output"
	"github.com/teabranch/atlas-provision/internal/security"
	atlasservice "github.com/teabranch/atlas-provision/internal/services/atlas"
	"github.com/teabranch/atlas-provision/internal/types"
	"github.com/teabranch/atlas-provision/internal/ui"
	"github.com/teabranch/atlas-provision/internal/validation"
)

const (
	opCreateFreeCluster = "create_free_cluster"
	opCreatePaidCluster = "create_paid_cluster"
)

const passwordNote = "NOTE: Use the actual password when connecting to your database."

// ClusterResult is the payload printed for a provisioned cluster. The
// connection string is always masked.
type ClusterResult struct {
	ProjectID        string     `json:"projectId" yaml:"projectId"`
	Name             string     `json:"name" yaml:"name"`
	Tier             types.Tier `json:"tier" yaml:"tier"`
	ConnectionString string     `json:"connectionString" yaml:"connectionString"`
	Verified         *bool      `json:"verified,omitempty" yaml:"verified,omitempty"`
}

type clusterFlags struct {
	projectID string
	name      string
	verify    bool
}

func (f *clusterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.projectID, "project-id", "", "Project ID")
	cmd.Flags().StringVar(&f.name, "name", "", "Cluster name")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "Ping the new cluster with the MongoDB driver after provisioning")
	_ = cmd.MarkFlagRequired("project-id")
	_ = cmd.MarkFlagRequired("name")
}

func (a *app) newCreateFreeClusterCmd() *cobra.Command {
	var flags clusterFlags

	cmd := &cobra.Command{
		Use:   "create-free-cluster",
		Short: "Create a free M0 cluster",
		Long: `Create a free shared-tier (M0) cluster on AWS US_EAST_1, wait until it is
ready, create the default database user and print the connection string.`,
		Example: `  atlas-provision create-free-cluster --project-id 5f1b2c3d4e5f6a7b8c9d0e1f --name sandbox`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.provisionCluster(cmd.Context(), opCreateFreeCluster, types.TierFree, flags,
				func(ctx context.Context, svc *atlasservice.ClustersService) (string, error) {
					return svc.CreateFree(ctx, flags.projectID, flags.name)
				})
		},
	}
	flags.register(cmd)

	return cmd
}

func (a *app) newCreatePaidClusterCmd() *cobra.Command {
	var flags clusterFlags
	var instanceSize string
	var storageSize int

	cmd := &cobra.Command{
		Use:   "create-paid-cluster",
		Short: "Create a dedicated cluster",
		Long: `Create a dedicated three-node replica set on AWS CA_CENTRAL_1, wait until it
is ready, create the default database user and print the connection string.

Storage defaults to 10 GB for M10 and M20 and 20 GB for larger sizes.`,
		Example: `  # M10 with default storage
  atlas-provision create-paid-cluster --project-id 5f1b2c3d4e5f6a7b8c9d0e1f --name prod --instance-size M10

  # M30 with 40 GB of storage
  atlas-provision create-paid-cluster --project-id 5f1b2c3d4e5f6a7b8c9d0e1f --name prod --instance-size M30 --storage-size 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var storage *int
			if cmd.Flags().Changed("storage-size") {
				storage = &storageSize
			}
			return a.provisionCluster(cmd.Context(), opCreatePaidCluster, types.TierPaid, flags,
				func(ctx context.Context, svc *atlasservice.ClustersService) (string, error) {
					return svc.CreatePaid(ctx, flags.projectID, flags.name, instanceSize, storage)
				})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&instanceSize, "instance-size", "",
		"Instance size ("+strings.Join(validation.PaidInstanceSizes, ", ")+")")
	cmd.Flags().IntVar(&storageSize, "storage-size", 0, "Storage size in GB (1-50)")
	_ = cmd.MarkFlagRequired("instance-size")

	return cmd
}

type provisionFunc func(ctx context.Context, svc *atlasservice.ClustersService) (string, error)

// provisionCluster runs create while a spinner is shown, then reports the
// masked connection string.
func (a *app) provisionCluster(parent context.Context, opName string, tier types.Tier, flags clusterFlags, create provisionFunc) error {
	op := a.logger.StartOperation(uuid.NewString(), opName)
	log := op.Logger()

	ctx, stop := cli.WithInterrupt(parent, log)
	defer stop()

	client, err := a.atlasClient()
	if err != nil {
		return err
	}
	users := atlasservice.NewDatabaseUsersService(client, a.cfg.DatabaseUser(), log)
	svc := atlasservice.NewClustersService(client, users,
		atlasservice.WithPollInterval(a.cfg.PollInterval),
		atlasservice.WithLogger(log),
		atlasservice.WithMetrics(a.metrics),
	)

	progress := ui.NewProgressIndicator(a.stderr, a.quiet || a.formatter().Structured())
	progress.StartSpinner(fmt.Sprintf("Provisioning %s cluster %s...", tier, flags.name))

	connectionString, err := create(ctx, svc)
	a.metrics.ObserveOperation(opName, err)
	if err != nil {
		progress.StopSpinnerWithError("Provisioning failed")
		op.Fail(err, "Failed to create cluster")
	} else {
		progress.StopSpinner("Cluster is ready")
		op.Complete("Cluster created: " + flags.name)
	}

	var payload *ClusterResult
	if err == nil {
		payload = &ClusterResult{
			ProjectID:        flags.projectID,
			Name:             flags.name,
			Tier:             tier,
			ConnectionString: security.MaskConnectionString(connectionString),
		}
		if flags.verify {
			ok := a.verify(ctx, connectionString, log)
			payload.Verified = &ok
		}
	}

	return a.report(types.NewResult(payload, err), err, func() error {
		label := "Free"
		if tier == types.TierPaid {
			label = "Paid"
		}
		output.Success(a.stdout, "%s cluster created successfully.", label)
		fmt.Fprintf(a.stdout, "Connection string: %s\n", payload.ConnectionString)
		output.Note(a.stdout, passwordNote)
		if payload.Verified != nil && !*payload.Verified {
			output.Note(a.stdout, "WARNING: The cluster did not answer a ping yet. DNS records can take a few minutes to propagate.")
		}
		return nil
	})
}

// verify pings the cluster; a failure is logged but does not fail the command.
func (a *app) verify(ctx context.Context, connectionString string, log *logging.Logger) bool {
	if err := mongodb.Verify(ctx, mongodb.DefaultVerifyConfig(connectionString), log); err != nil {
		log.Warn("Cluster connectivity check failed", "error", err.Error())
		return false
	}
	return true
}
