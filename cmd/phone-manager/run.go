package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/phone-manager/internal/cli"
	"github.com/Veraticus/phone-manager/internal/engine"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll the sheet forever",
		Long: `Run a sync cycle, wait for the configured interval, and repeat until
interrupted. A failed cycle is logged and retried on the next tick.`,
		RunE: runDaemon,
	}
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()

	eng, cleanup, err := buildEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	scheduler, err := engine.NewScheduler(eng, cfg.SyncInterval, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	announceStart(cmd.OutOrStdout(), cfg.SyncInterval)
	return scheduler.Run(ctx)
}

// announceStart prints the styled banner to the terminal. The log line stays
// plain so the debug log never receives escape codes.
func announceStart(out io.Writer, interval time.Duration) {
	fmt.Fprintln(out, cli.FormatTitle("Watching for new messages..."))
	slog.Info("Watching for new messages", "interval", interval)
}
