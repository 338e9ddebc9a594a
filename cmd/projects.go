package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teabranch/atlas-provision/internal/cli"
	"github.com/teabranch/atlas-provision/internal/output"
	atlasservice "github.com/teabranch/atlas-provision/internal/services/atlas"
	"github.com/teabranch/atlas-provision/internal/types"
)

const opCreateProject = "create_project"

func (a *app) newCreateProjectCmd() *cobra.Command {
	var name string
	var orgID string

	cmd := &cobra.Command{
		Use:   "create-project",
		Short: "Create a project",
		Long: `Create a MongoDB Atlas project. When no organization is given the first
organization visible to the API key is used.`,
		Example: `  # Create a project in the first available organization
  atlas-provision create-project --name demo01

  # Create a project in a specific organization
  atlas-provision create-project --name demo01 --org-id 5f1b2c3d4e5f6a7b8c9d0e1f`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op := a.logger.StartOperation(uuid.NewString(), opCreateProject)
			log := op.Logger()

			ctx, stop := cli.WithInterrupt(cmd.Context(), log)
			defer stop()

			client, err := a.atlasClient()
			if err != nil {
				return err
			}
			orgs := atlasservice.NewOrganizationsService(client, log)
			projects := atlasservice.NewProjectsService(client, orgs, log)

			project, err := projects.Create(ctx, name, a.cfg.ResolveOrgID(orgID))
			a.metrics.ObserveOperation(opCreateProject, err)
			if err != nil {
				op.Fail(err, "Failed to create project")
			} else {
				op.Complete("Project created with ID: " + project.ID)
			}

			return a.report(types.NewResult(project, err), err, func() error {
				output.Success(a.stdout, "Project created successfully. Project ID: %s", project.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (max 20 alphanumeric characters)")
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID (can be set via ATLAS_ORG_ID env var)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
