package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/raftlens/internal/config"
	"github.com/crimson-sun/raftlens/internal/logging"
	"github.com/crimson-sun/raftlens/internal/output"
	csvsink "github.com/crimson-sun/raftlens/internal/output/csv"
	"github.com/crimson-sun/raftlens/internal/pipeline"
)

const version = "0.3.0"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if errors.Is(err, output.ErrMissingOutput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "raftlens",
		Short:         "Extract structured CP/Raft diagnostics from worker logs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newExtractCmd(), newVersionCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	var (
		in         string
		out        string
		configFile string
	)
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Parse worker.log files and write the four CSV tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configFile != "" {
				if err := cfg.ApplyFile(configFile); err != nil {
					return err
				}
			}
			// Flags win over file and environment.
			if in != "" {
				cfg.Input = in
			}
			if out != "" {
				cfg.Output = out
			}
			if cfg.Output == "" {
				cfg.Output = cfg.Input
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logging.New(logging.ParseLevel(cfg.LogLevel))
			defer log.Sync() //nolint:errcheck // stderr sync failure is uninteresting

			sink, err := csvsink.New(cfg.Output)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := pipeline.New(pipeline.Config{
				Root:          cfg.Input,
				BaseDate:      cfg.BaseDate,
				WindowSeconds: cfg.WindowSeconds,
			}, sink, log)

			sum, err := p.Run(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				log.Error("extraction failed", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d events, %d intervals to %s\n",
				sum.Events, sum.Intervals, cfg.Output)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "root directory to scan recursively for worker.log files")
	cmd.Flags().StringVar(&out, "out", "", "directory to write CSVs (defaults to --in)")
	cmd.Flags().StringVar(&cfg.BaseDate, "base-date", cfg.BaseDate, "anchor date for time-only logs: YYYY-MM-DD")
	cmd.Flags().IntVar(&cfg.WindowSeconds, "window-seconds", cfg.WindowSeconds, "rollup window size in seconds")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&configFile, "config", "", "optional YAML config file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the raftlens version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
