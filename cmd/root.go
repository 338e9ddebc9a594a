// Package cmd wires the atlas-provision command tree.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	atlasclient "github.com/teabranch/atlas-provision/internal/clients/atlas"
	"github.com/teabranch/atlas-provision/internal/cli"
	"github.com/teabranch/atlas-provision/internal/config"
	"github.com/teabranch/atlas-provision/internal/fileutil"
	"github.com/teabranch/atlas-provision/internal/logging"
	"github.com/teabranch/atlas-provision/internal/metrics"
	"github.com/teabranch/atlas-provision/internal/output"
	"github.com/teabranch/atlas-provision/internal/types"
)

// errReported marks a failure whose result has already been printed.
var errReported = errors.New("operation failed")

type buildInfo struct {
	version string
	commit  string
	date    string
	builtBy string
}

// app carries per-invocation state shared by every command.
type app struct {
	build buildInfo

	verbose    bool
	quiet      bool
	logFormat  string
	configPath string

	stdout io.Writer
	stderr io.Writer

	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Recorder
	logFile io.Closer
}

// Execute runs the root command and exits with its status.
func Execute(version, commit, date, builtBy string) {
	build := buildInfo{version: version, commit: commit, date: date, builtBy: builtBy}
	os.Exit(run(build, os.Args[1:], os.Stdout, os.Stderr))
}

func run(build buildInfo, args []string, stdout, stderr io.Writer) int {
	a := &app{build: build, stdout: stdout, stderr: stderr}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	a.close()

	if err == nil {
		return cli.ExitSuccess
	}
	if !errors.Is(err, errReported) {
		output.Failure(stderr, "Error: %s", cli.NewErrorFormatter(a.verbose).Format(err))
	}
	return cli.ExitFailure
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "atlas-provision",
		Short: "Provision MongoDB Atlas projects and clusters",
		Long: `atlas-provision creates MongoDB Atlas projects, free and dedicated clusters,
and the default database user, then prints a connection string for the new cluster.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging with detailed output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all non-error output")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log output format: text, json")
	flags.String("log-file", "", "Append JSON logs to this file")
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default $HOME/.atlas-provision/config.yaml)")
	flags.String("env-file", config.DefaultEnvFile, "Load credentials from this dotenv file")
	flags.StringP("output", "o", string(config.OutputText), "Output format: table, text, json, yaml")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for each Atlas API request (e.g., 30s, 1m)")
	flags.Duration("poll-interval", config.DefaultPollInterval, "Delay between cluster status checks")
	flags.String("api-key", "", "Atlas private API key (discouraged on CLI; prefer env var)")
	flags.String("pub-key", "", "Atlas public API key (discouraged on CLI; prefer env var)")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
	flags.String("base-url", "", "Atlas Admin API base URL")
	_ = flags.MarkHidden("base-url")

	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		a.newListOrgsCmd(),
		a.newCreateProjectCmd(),
		a.newCreateFreeClusterCmd(),
		a.newCreatePaidClusterCmd(),
		a.newVersionCmd(),
	)
	root.SetHelpCommand(newHelpCmd(root))

	return root
}

// setup loads configuration and builds the logger and metrics recorder.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd, a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	logConfig := logging.DefaultConfig()
	logConfig.Format = a.logFormat
	logConfig.Output = a.stderr
	logConfig.Quiet = a.quiet
	logConfig.Verbose = a.verbose
	logConfig.EnableAPILogs = a.verbose

	if cfg.LogFile != "" {
		f, err := fileutil.NewSecureFileWriter().OpenAppend(cfg.LogFile)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		logConfig.FileSink = f
	}

	a.logger = logging.New(logConfig)
	logging.SetDefault(a.logger)
	a.metrics = metrics.NewRecorder()

	a.logger.Debug("Root command initialization completed",
		"command", cmd.Name(),
		"output", string(cfg.Output),
		"config_path", a.configPath)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.cfg != nil && a.cfg.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil && a.logger != nil {
			a.logger.Warn("Failed to write metrics file", "path", a.cfg.MetricsFile, "error", err.Error())
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

func (a *app) atlasClient() (*atlasclient.Client, error) {
	return a.cfg.CreateAtlasClient(a.logger, a.metrics)
}

func (a *app) formatter() *output.Formatter {
	return output.NewFormatter(a.cfg.Output, a.stdout)
}

// report prints result and returns errReported when it is a failure.
// Text mode calls printText for successes; structured modes print the
// result as is.
func (a *app) report(result types.OperationResult, cause error, printText func() error) error {
	f := a.formatter()
	if f.Structured() {
		if err := f.Format(result); err != nil {
			return err
		}
	} else if result.Success {
		if err := printText(); err != nil {
			return err
		}
	} else {
		output.Failure(a.stderr, "Error: %s", cli.NewErrorFormatter(a.verbose).Format(cause))
	}

	if cli.ExitCode(result) != cli.ExitSuccess {
		return errReported
	}
	return nil
}
