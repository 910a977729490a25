package engine

import (
	"context"
	"log/slog"

	"github.com/Veraticus/phone-manager/internal/classification"
	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/Veraticus/phone-manager/internal/normalize"
)

type rowOutcome struct {
	extractionFailed bool
	dateFailed       bool
}

// processRow turns one new sheet row into a record. It never fails: every
// problem is logged and leaves the affected fields absent.
func (e *SyncEngine) processRow(ctx context.Context, logger *slog.Logger, cycleID string, nr model.NewRow) (model.TransactionRecord, rowOutcome) {
	var outcome rowOutcome
	row := nr.Row.Padded(model.MinRowWidth)
	content := row.Cell(model.ColumnContent)
	logger = logger.With("line", nr.Line)

	rec := model.TransactionRecord{
		Institution: row.Cell(model.ColumnInstitution),
		Device:      row.Cell(model.ColumnDevice),
		RawContent:  content,
		SheetLine:   nr.Line,
		CycleID:     cycleID,
	}

	rawDate := row.Cell(model.ColumnDate)
	if date, err := normalize.CanonicalDate(rawDate); err != nil {
		outcome.dateFailed = true
		logger.Warn("Date not recognized", "date", rawDate, "error", err)
	} else {
		rec.Date = &date
	}

	fields := e.extract(ctx, logger, content, &outcome)
	applyFields(&rec, fields)

	match, err := e.classifier.Classify(ctx, classification.Input{Content: content, Fields: fields})
	switch {
	case err != nil:
		logger.Warn("Classification failed", "error", err)
	case match != nil:
		t := match.Type
		rec.Type = &t
		rec.TypeSource = match.Source
	}

	return rec, outcome
}

func (e *SyncEngine) extract(ctx context.Context, logger *slog.Logger, content string, outcome *rowOutcome) model.ExtractedFields {
	if content == "" {
		logger.Debug("Empty message, skipping extraction")
		return model.ExtractedFields{}
	}

	response := e.extractor.Extract(ctx, content)
	if response == "" {
		outcome.extractionFailed = true
		logger.Warn("Extraction returned nothing", "content", content)
		return model.ExtractedFields{}
	}

	fields, err := e.normalizer.Normalize(response)
	if err != nil {
		outcome.extractionFailed = true
		logger.Warn("Model response not usable", "content", content, "response", response, "error", err)
		return model.ExtractedFields{}
	}
	return fields
}

func applyFields(rec *model.TransactionRecord, f model.ExtractedFields) {
	rec.Amount = f.Amount
	rec.Balance = f.Balance
	rec.TotalDue = f.TotalDue
	rec.MinimumDue = f.MinimumDue
	rec.CardNumber = f.CardNumber
	rec.DebitAccount = f.DebitAccount
	rec.DueDate = f.DueDate
	rec.ReferenceNumber = f.ReferenceNumber
	rec.Merchant = f.Merchant
	rec.ReportedDate = f.Date
}
