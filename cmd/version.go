package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if a.formatter().Structured() {
				return a.formatter().Format(map[string]string{
					"version":   a.build.version,
					"commit":    a.build.commit,
					"buildTime": a.build.date,
					"builtBy":   a.build.builtBy,
					"goVersion": runtime.Version(),
				})
			}
			fmt.Fprintf(w, "atlas-provision version: %s\n", a.build.version)
			fmt.Fprintf(w, "Build time: %s\n", a.build.date)
			fmt.Fprintf(w, "Git commit: %s\n", a.build.commit)
			fmt.Fprintf(w, "Built by: %s\n", a.build.builtBy)
			fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}
