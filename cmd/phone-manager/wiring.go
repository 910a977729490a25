package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/phone-manager/internal/audit"
	"github.com/Veraticus/phone-manager/internal/classification"
	"github.com/Veraticus/phone-manager/internal/config"
	"github.com/Veraticus/phone-manager/internal/engine"
	"github.com/Veraticus/phone-manager/internal/llm"
	"github.com/Veraticus/phone-manager/internal/normalize"
	"github.com/Veraticus/phone-manager/internal/sheets"
	"github.com/Veraticus/phone-manager/internal/snapshot"
	"github.com/Veraticus/phone-manager/internal/storage"
)

// buildEngine constructs every client once and returns the engine together
// with a cleanup function that closes the database.
func buildEngine(ctx context.Context, cfg *config.Config, onProgress func(done, total int)) (*engine.SyncEngine, func(), error) {
	logger := slog.Default()

	store, err := storage.NewSQLiteStorage(cfg.Paths.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	if err := store.Migrate(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}

	reader, err := sheets.NewReader(ctx, cfg.Sheets, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create sheets reader: %w", err)
	}

	client, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	classifier, err := classification.NewDefaultChain(cfg.Precedence)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	eng, err := engine.New(engine.Deps{
		Source:     reader,
		Extractor:  llm.NewExtractor(client, cfg.LLM, logger),
		Store:      store,
		Cache:      snapshot.NewCache(cfg.Paths.Cache),
		Audit:      audit.NewLog(cfg.Paths.AuditLog),
		Classifier: classifier,
		Normalizer: normalize.NewNormalizer(),
		Logger:     logger,
		OnProgress: onProgress,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	slog.Info("Sync engine ready",
		"spreadsheet", cfg.Sheets.SpreadsheetID,
		"range", cfg.Sheets.Range,
		"model", client.Name(),
		"database", store.Path(),
		"cache", cfg.Paths.Cache)

	return eng, cleanup, nil
}
