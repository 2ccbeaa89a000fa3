package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ccat/internal/config"
	cerrors "ccat/internal/core/errors"
	"ccat/internal/shared/observability"

	"github.com/spf13/cobra"
)

const VERSION = "1.0.2"

// Exit codes. A tree without Python sources is not a crash, but scripts
// need to tell it apart from a successful run.
const (
	exitError     = 1
	exitNoSources = 2
)

func main() {
	c := &cli{}
	if err := c.execute(context.Background(), c.rootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if cerrors.IsCode(err, cerrors.CodeNoSources) {
		return exitNoSources
	}
	return exitError
}

// cli holds the flag values and the state shared by the subcommands of one
// invocation.
type cli struct {
	configPath string
	verbose    bool
	level      string

	cfg      *config.Config
	shutdown func(context.Context) error
}

// execute runs root and flushes traces afterwards, including for failed runs
// whose post-run hooks cobra skips.
func (c *cli) execute(ctx context.Context, root *cobra.Command) error {
	defer c.flush(ctx)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	return (&cli{}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ccat",
		Short: "Concatenate a Python source tree into one dependency-ordered file",
		Long: `ccat scans a Python source tree, orders its modules so that
dependencies come first, and merges them into a single file or notebook.
Definitions can be summarized to their interface or core logic.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultPath, "Path to config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&c.level, "level", "l", "", "Summary level: none, interface or core (overrides config)")

	root.AddCommand(
		c.concatCmd(),
		c.notebookCmd(),
		c.reportCmd(),
		c.graphCmd(),
		c.watchCmd(),
		versionCmd(),
	)
	return root
}

// setup configures logging, loads the config and applies command line
// overrides. A positional argument replaces source_dir.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	logLevel := slog.LevelInfo
	if c.verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})))

	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.LoadOrDefault(c.configPath)
	if err != nil {
		return cerrors.AddContext(cerrors.Wrap(err, cerrors.CodeValidationError, "load config"), cerrors.CtxPath, c.configPath)
	}
	if cmd.Flags().Changed("level") {
		cfg.Summary.Level = c.level
		if err := cfg.Validate(); err != nil {
			return cerrors.Wrap(err, cerrors.CodeValidationError, "invalid --level")
		}
	}
	if len(args) > 0 {
		cfg.SourceDir = args[0]
	}
	c.cfg = cfg
	slog.Debug("config loaded", "path", c.configPath, "source_dir", cfg.SourceDir, "level", cfg.Summary.Level)

	shutdown, err := observability.InitTracing(cmd.Context(), observability.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: VERSION,
		Endpoint:       cfg.Tracing.OTLPEndpoint,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		return cerrors.Wrap(err, cerrors.CodeInternal, "init tracing")
	}
	c.shutdown = shutdown
	return nil
}

func (c *cli) flush(ctx context.Context) {
	if c.shutdown == nil {
		return
	}
	if err := c.shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
	c.shutdown = nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ccat v%s\n", VERSION)
		},
	}
}
