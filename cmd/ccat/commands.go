package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ccat/internal/app"
	"ccat/internal/output"
	"ccat/internal/shared/observability"

	"github.com/spf13/cobra"
)

// graphFormats are the views watch writes when they have an output path.
var graphFormats = []string{"dot", "mermaid", "plantuml", "tsv"}

func (c *cli) concatCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "concat [source_dir]",
		Short: "Write the merged Python file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = c.cfg.Output.Concat
			}
			return c.emit(cmd, "concat", out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default from config)")
	return cmd
}

func (c *cli) notebookCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "notebook [source_dir]",
		Short: "Write the merged file as a Jupyter notebook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = c.cfg.Output.Notebook
			}
			return c.emit(cmd, "notebook", out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default from config)")
	return cmd
}

func (c *cli) reportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report [source_dir]",
		Short: "Print the dependency report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = c.cfg.Output.Report
			}
			return c.emit(cmd, "report", out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default from config, stdout when unset)")
	return cmd
}

func (c *cli) graphCmd() *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "graph [source_dir]",
		Short: "Render the module dependency graph",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = c.graphOutput(format)
			}
			return c.emit(cmd, format, out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default from config, stdout when unset)")
	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "Graph format: dot, mermaid, plantuml or tsv")
	return cmd
}

func (c *cli) watchCmd() *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch [source_dir]",
		Short: "Regenerate every configured output whenever a Python file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if metricsAddr == "" {
				metricsAddr = c.cfg.Metrics.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.watch(ctx, cmd.ErrOrStderr(), metricsAddr)
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address")
	return cmd
}

func (c *cli) graphOutput(format string) string {
	switch format {
	case "dot":
		return c.cfg.Output.DOT
	case "mermaid":
		return c.cfg.Output.Mermaid
	case "plantuml":
		return c.cfg.Output.PlantUML
	case "tsv":
		return c.cfg.Output.TSV
	}
	return ""
}

func (c *cli) newApp() (*app.App, error) {
	opts, err := app.OptionsFromConfig(c.cfg)
	if err != nil {
		return nil, err
	}
	return app.New(opts)
}

// emit runs the pipeline once and renders one artifact. Without a path the
// artifact goes to stdout and the run summary is not printed.
func (c *cli) emit(cmd *cobra.Command, kind, path string) error {
	a, err := c.newApp()
	if err != nil {
		return err
	}
	res, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}

	content, err := output.Render(kind, res, output.OptionsFromConfig(c.cfg, VERSION))
	if err != nil {
		return err
	}
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), content)
		return err
	}
	if err := output.Write(path, content); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), res, []string{path})
	return nil
}

// writeAll renders the merged file, the notebook and every optional output
// that has a configured path.
func (c *cli) writeAll(res *app.Result) ([]string, error) {
	opts := output.OptionsFromConfig(c.cfg, VERSION)
	targets := []struct{ kind, path string }{
		{"concat", c.cfg.Output.Concat},
		{"notebook", c.cfg.Output.Notebook},
		{"report", c.cfg.Output.Report},
	}
	for _, format := range graphFormats {
		targets = append(targets, struct{ kind, path string }{format, c.graphOutput(format)})
	}

	var written []string
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		content, err := output.Render(t.kind, res, opts)
		if err != nil {
			return written, err
		}
		if err := output.Write(t.path, content); err != nil {
			return written, err
		}
		written = append(written, t.path)
	}
	return written, nil
}

func (c *cli) watch(ctx context.Context, w io.Writer, metricsAddr string) error {
	a, err := c.newApp()
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := observability.NewMetricsServer(metricsAddr)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				slog.Warn("failed to stop metrics server", "error", err)
			}
		}()
	}

	handle := func(res *app.Result, err error) {
		if err != nil {
			slog.Error("run failed", "error", err)
			return
		}
		written, err := c.writeAll(res)
		if err != nil {
			slog.Error("failed to write outputs", "error", err)
		}
		printSummary(w, res, written)
	}

	res, err := a.Run(ctx)
	handle(res, err)

	if err := a.Watch(ctx, c.cfg.Watch.Debounce, handle); err != nil {
		return fmt.Errorf("watch %s: %w", a.Root(), err)
	}
	return nil
}
