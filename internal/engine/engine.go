// Package engine runs sync cycles: fetch the sheet, diff it against the
// cached snapshot, extract and persist new rows, then advance the cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/phone-manager/internal/classification"
	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/Veraticus/phone-manager/internal/normalize"
	"github.com/Veraticus/phone-manager/internal/snapshot"
	"github.com/google/uuid"
)

// SyncEngine orchestrates one sync cycle at a time.
type SyncEngine struct {
	source     Source
	extractor  Extractor
	store      Store
	cache      SnapshotCache
	audit      AuditLog
	classifier classification.Classifier
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	onProgress func(done, total int)
	newID      func() string
	now        func() time.Time
}

// Deps are the collaborators a SyncEngine needs. Every field is required
// except Logger and OnProgress.
type Deps struct {
	Source     Source
	Extractor  Extractor
	Store      Store
	Cache      SnapshotCache
	Audit      AuditLog
	Classifier classification.Classifier
	Normalizer *normalize.Normalizer
	Logger     *slog.Logger
	// OnProgress is called after each new row is processed.
	OnProgress func(done, total int)
}

// CycleResult summarizes one cycle.
type CycleResult struct {
	CycleID            string
	Fetched            int
	New                int
	Inserted           int
	ExtractionFailures int
	DateFailures       int
	Duration           time.Duration
}

// New creates a sync engine.
func New(deps Deps) (*SyncEngine, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("engine: source is required")
	case deps.Extractor == nil:
		return nil, fmt.Errorf("engine: extractor is required")
	case deps.Store == nil:
		return nil, fmt.Errorf("engine: store is required")
	case deps.Cache == nil:
		return nil, fmt.Errorf("engine: snapshot cache is required")
	case deps.Audit == nil:
		return nil, fmt.Errorf("engine: audit log is required")
	case deps.Classifier == nil:
		return nil, fmt.Errorf("engine: classifier is required")
	}

	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = normalize.NewNormalizer()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncEngine{
		source:     deps.Source,
		extractor:  deps.Extractor,
		store:      deps.Store,
		cache:      deps.Cache,
		audit:      deps.Audit,
		classifier: deps.Classifier,
		normalizer: normalizer,
		logger:     logger,
		onProgress: deps.OnProgress,
		newID:      uuid.NewString,
		now:        time.Now,
	}, nil
}

// RunCycle performs FETCH, DIFF, PROCESS, PERSIST, REWRITE_CACHE and
// AUDIT_APPEND in that order.
//
// A fetch or cache-load failure aborts the cycle before anything is written.
// Per-row extraction and date failures are absorbed. A storage failure
// aborts the cycle without advancing the cache, so the same rows are offered
// again next cycle. Records are committed before the cache is rewritten;
// a crash between the two re-inserts that batch once.
func (e *SyncEngine) RunCycle(ctx context.Context) (result CycleResult, err error) {
	start := e.now()
	result = CycleResult{CycleID: e.newID()}
	logger := e.logger.With("cycle_id", result.CycleID)

	defer func() { result.Duration = e.now().Sub(start) }()

	current, err := e.source.Fetch(ctx)
	if err != nil {
		logger.Error("Cycle aborted: fetch failed", "error", err)
		return result, err
	}
	result.Fetched = len(current.Rows)

	previous, found, err := e.cache.Load()
	if err != nil {
		logger.Error("Cycle aborted: snapshot cache unreadable", "error", err)
		return result, fmt.Errorf("load snapshot cache: %w", err)
	}
	if !found {
		logger.Info("No snapshot cache, treating every row as new")
	}

	newRows := snapshot.Diff(current, previous)
	result.New = len(newRows)
	logger.Info("Diffed snapshot", "rows", result.Fetched, "new", result.New)

	records := make([]model.TransactionRecord, 0, len(newRows))
	for i, nr := range newRows {
		if err := ctx.Err(); err != nil {
			logger.Warn("Cycle canceled before persisting", "processed", i, "new", result.New)
			return result, err
		}

		rec, outcome := e.processRow(ctx, logger, result.CycleID, nr)
		if outcome.extractionFailed {
			result.ExtractionFailures++
		}
		if outcome.dateFailed {
			result.DateFailures++
		}
		records = append(records, rec)

		if e.onProgress != nil {
			e.onProgress(i+1, len(newRows))
		}
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("Cycle canceled before persisting", "processed", len(records), "new", result.New)
		return result, err
	}

	if len(records) > 0 {
		if err := e.store.SaveRecords(ctx, records); err != nil {
			attrs := []any{"records", len(records), "error", err}
			var storageErr *common.StorageError
			if errors.As(err, &storageErr) && storageErr.Line > 0 {
				attrs = append(attrs, "line", storageErr.Line)
				for _, rec := range records {
					if rec.SheetLine == storageErr.Line {
						attrs = append(attrs, "content", rec.RawContent)
						break
					}
				}
			}
			logger.Error("Cycle aborted: records not persisted", attrs...)
			return result, err
		}
	}
	result.Inserted = len(records)

	if err := e.cache.Save(current); err != nil {
		logger.Error("Snapshot cache not rewritten, committed rows will be offered again",
			"inserted", result.Inserted, "error", err)
		return result, fmt.Errorf("rewrite snapshot cache: %w", err)
	}

	if err := e.audit.Append(result.CycleID, result.Inserted); err != nil {
		logger.Error("Audit append failed", "inserted", result.Inserted, "error", err)
		return result, fmt.Errorf("append audit log: %w", err)
	}

	logger.Info("Cycle complete",
		"inserted", result.Inserted,
		"extraction_failures", result.ExtractionFailures,
		"date_failures", result.DateFailures)

	return result, nil
}
