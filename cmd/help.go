package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// newHelpCmd returns a help command that can also emit Markdown for
// generating the command reference.
func newHelpCmd(root *cobra.Command) *cobra.Command {
	var format string

	helpCmd := &cobra.Command{
		Use:                   "help [command]",
		Short:                 "Show help for any command",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
		// Help must work without credentials or a config file.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			target := root
			if len(args) > 0 {
				found, _, err := root.Find(args)
				if err != nil || found == nil || found == root {
					return fmt.Errorf("unknown command: %s", strings.Join(args, " "))
				}
				target = found
			}

			switch format {
			case "markdown", "md":
				return writeMarkdown(target, cmd.OutOrStdout(), target == root)
			case "text", "":
				return target.Help()
			default:
				return fmt.Errorf("unsupported help format: %s", format)
			}
		},
	}

	helpCmd.Flags().StringVar(&format, "format", "text", "Output format: text, markdown")
	return helpCmd
}

// writeMarkdown renders cmd and, when recursive, every visible subcommand.
func writeMarkdown(cmd *cobra.Command, w io.Writer, recursive bool) error {
	var b strings.Builder

	fmt.Fprintf(&b, "## %s\n\n", cmd.CommandPath())
	if s := strings.TrimSpace(cmd.Short); s != "" {
		b.WriteString(s + "\n\n")
	}
	if l := strings.TrimSpace(cmd.Long); l != "" && l != strings.TrimSpace(cmd.Short) {
		b.WriteString(l + "\n\n")
	}
	fmt.Fprintf(&b, "**Usage**\n\n```\n%s\n```\n\n", cmd.UseLine())

	if ex := strings.TrimSpace(cmd.Example); ex != "" {
		fmt.Fprintf(&b, "**Examples**\n\n```\n%s\n```\n\n", ex)
	}
	if local := cmd.NonInheritedFlags(); local.HasAvailableFlags() {
		fmt.Fprintf(&b, "**Flags**\n\n```\n%s\n```\n\n", strings.TrimRight(local.FlagUsages(), "\n"))
	}
	if inherited := cmd.InheritedFlags(); inherited.HasAvailableFlags() {
		fmt.Fprintf(&b, "**Inherited Flags**\n\n```\n%s\n```\n\n", strings.TrimRight(inherited.FlagUsages(), "\n"))
	}

	visible := visibleCommands(cmd)
	if len(visible) > 0 {
		b.WriteString("**Commands**\n\n")
		for _, c := range visible {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name(), c.Short)
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if !recursive {
		return nil
	}
	for _, c := range visible {
		if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
			return err
		}
		if err := writeMarkdown(c, w, true); err != nil {
			return err
		}
	}
	return nil
}

func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && !c.IsAdditionalHelpTopicCommand() {
			out = append(out, c)
		}
	}
	return out
}
