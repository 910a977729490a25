package main

import (
	"fmt"

	"github.com/Veraticus/phone-manager/internal/cli"
	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/Veraticus/phone-manager/internal/storage"
	"github.com/spf13/cobra"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List stored records",
		Long: `Show the most recently stored records, newest first, or every
record written by one sync cycle.`,
		RunE: runRecords,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of records to show (0 for all)")
	cmd.Flags().String("cycle", "", "Only show records from this cycle id")

	return cmd
}

func runRecords(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	cycleID, _ := cmd.Flags().GetString("cycle")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidatePaths(); err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(cfg.Paths.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var records []model.TransactionRecord
	if cycleID != "" {
		records, err = store.ListRecordsByCycle(ctx, cycleID)
	} else {
		records, err = store.ListRecords(ctx, limit)
	}
	if err != nil {
		return err
	}

	total, err := store.CountRecords(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.RenderRecords(records))
	fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("Showing %d of %d records", len(records), total)))

	return nil
}
