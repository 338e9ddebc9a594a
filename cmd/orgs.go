package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teabranch/atlas-provision/internal/cli"
	"github.com/teabranch/atlas-provision/internal/config"
	"github.com/teabranch/atlas-provision/internal/output"
	atlasservice "github.com/teabranch/atlas-provision/internal/services/atlas"
	"github.com/teabranch/atlas-provision/internal/types"
)

const opListOrgs = "list_orgs"

func (a *app) newListOrgsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-orgs",
		Short: "List organizations visible to the API key",
		Example: `  # List organizations as a table
  atlas-provision list-orgs

  # List organizations as JSON
  atlas-provision list-orgs -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			op := a.logger.StartOperation(uuid.NewString(), opListOrgs)

			ctx, stop := cli.WithInterrupt(cmd.Context(), op.Logger())
			defer stop()
			ctx, cancel := config.NewContext(ctx, a.cfg)
			defer cancel()

			client, err := a.atlasClient()
			if err != nil {
				return err
			}

			orgs, err := atlasservice.NewOrganizationsService(client, op.Logger()).List(ctx)
			a.metrics.ObserveOperation(opListOrgs, err)
			if err != nil {
				op.Fail(err, "Failed to list organizations")
			} else {
				op.Complete(fmt.Sprintf("Found %d organizations", len(orgs)))
			}

			if orgs == nil {
				orgs = []types.Organization{}
			}
			return a.report(types.NewResult(orgs, err), err, func() error {
				fmt.Fprintln(a.stdout, "Available organizations:")
				return a.formatter().Format(orgTable(orgs))
			})
		},
	}
}

func orgTable(orgs []types.Organization) output.TableData {
	data := output.TableData{Headers: []string{"ID", "NAME"}}
	for _, org := range orgs {
		data.Rows = append(data.Rows, []string{org.ID, org.Name})
	}
	return data
}
