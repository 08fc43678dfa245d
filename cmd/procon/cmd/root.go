// Package cmd provides the CLI commands for procon.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/procon-dev/procon/internal/config"
	perrors "github.com/procon-dev/procon/internal/errors"
	"github.com/procon-dev/procon/internal/logging"
	"github.com/procon-dev/procon/internal/output"
	"github.com/procon-dev/procon/pkg/version"
)

// globalOptions carries the persistent flags and per-run resources shared by
// all subcommands.
type globalOptions struct {
	debug   bool
	noColor bool

	loggingCleanup func()
}

// NewRootCmd creates the root command for the procon CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procon",
		Short: "Scaffold competitive programming projects from templates",
		Long: `procon creates C++ competitive programming projects from templates.

Templates are looked up in the user templates directory first
(` + "`procon config --path`" + ` shows where the config lives; templates sit in
templates/ next to it) and then among the bundled templates.

Exit codes:
  0   success
  1   internal error
  2   invalid usage or input
  10  unknown config key
  11  corrupt config file
  20  template not found
  21  template missing a required file
  30  directory not empty
  31  file conflict
  32  partial failure (some files written)
  33  symlink escape`,
		Version:       version.Version,
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setupLogging(cmd.ErrOrStderr())
		},
	}

	cmd.SetVersionTemplate("procon version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return perrors.InvalidInput(err.Error())
	})

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to the procon logs directory")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newNewCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newTemplatesCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

// run executes the command tree and translates the result into an exit code.
// It is the only place where errors reach the user.
func run(args []string, stdout, stderr io.Writer) int {
	opts := &globalOptions{}
	defer opts.close()

	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return perrors.ExitOK
	}

	slog.Debug("Command failed", perrors.FormatForLog(err)...)
	opts.writer(stderr).Error(perrors.FormatForCLI(err))
	return perrors.ExitCode(err)
}

// setupLogging installs the default slog logger. Without --debug only
// warnings reach stderr; with it, debug records also go to a rotating file.
func (o *globalOptions) setupLogging(stderr io.Writer) error {
	cfg := logging.DefaultConfig()
	logPath := ""
	if o.debug {
		logPath = filepath.Join(config.DefaultPaths().LogDir, logging.LogFileName)
		cfg = logging.DebugConfig(logPath)
	}
	cfg.Stderr = stderr

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return perrors.InternalError("failed to set up logging", err)
	}
	o.close()
	o.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if o.debug {
		slog.Debug("Debug logging enabled",
			slog.String("log_file", logPath),
			slog.String("version", version.Version))
	}
	return nil
}

func (o *globalOptions) close() {
	if o.loggingCleanup != nil {
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
}

// writer returns an output writer honoring --no-color.
func (o *globalOptions) writer(w io.Writer) *output.Writer {
	if o.noColor {
		return output.NewWithColor(w, false)
	}
	return output.New(w)
}

// usageArgs turns cobra argument validation failures into InvalidInput so
// they exit with the usage code.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return perrors.InvalidInput(err.Error()).
				WithSuggestion(fmt.Sprintf("run '%s --help' for usage", cmd.CommandPath()))
		}
		return nil
	}
}
