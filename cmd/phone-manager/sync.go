package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/phone-manager/internal/cli"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single sync cycle",
		Long: `Fetch the sheet once, process every row not seen before, and exit.
A progress bar is drawn while messages are extracted.`,
		RunE: runSync,
	}

	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var onProgress func(done, total int)
	if !noProgress && isatty.IsTerminal(os.Stderr.Fd()) {
		onProgress = cli.NewSyncProgress(os.Stderr).Update
	}

	eng, cleanup, err := buildEngine(cmd.Context(), cfg, onProgress)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := eng.RunCycle(cmd.Context())
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCycleSummary(
		result.CycleID,
		result.Fetched,
		result.New,
		result.Inserted,
		result.ExtractionFailures,
		result.DateFailures,
		result.Duration,
	))

	return nil
}
