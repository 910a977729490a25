package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/Veraticus/phone-manager/internal/model"
)

const recordColumns = `id, date, institution, type, type_source, merchant,
	amount, balance, card_number, device, raw_content,
	debit_account, total_due, minimum_due, due_date, reference_number,
	reported_date, sheet_line, cycle_id, created_at`

// SaveRecords appends records in one transaction. Either every record is
// committed or none is, and the returned error is a *common.StorageError.
// Assigned ids are written back into the slice.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, records []model.TransactionRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return &common.StorageError{Err: err, Line: records[i].SheetLine}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &common.StorageError{Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			date, institution, type, type_source, merchant,
			amount, balance, card_number, device, raw_content,
			debit_account, total_due, minimum_due, due_date, reference_number,
			reported_date, sheet_line, cycle_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return &common.StorageError{Err: fmt.Errorf("failed to prepare statement: %w", err)}
	}
	defer func() { _ = stmt.Close() }()

	ids := make([]int64, len(records))
	for i := range records {
		rec := &records[i]
		res, execErr := stmt.ExecContext(ctx,
			rec.Date,
			nullIfEmpty(rec.Institution),
			rec.Type,
			nullIfEmpty(string(rec.TypeSource)),
			nullIfEmpty(rec.Merchant),
			rec.Amount,
			rec.Balance,
			rec.CardNumber,
			nullIfEmpty(rec.Device),
			rec.RawContent,
			rec.DebitAccount,
			rec.TotalDue,
			rec.MinimumDue,
			rec.DueDate,
			rec.ReferenceNumber,
			rec.ReportedDate,
			rec.SheetLine,
			nullIfEmpty(rec.CycleID),
		)
		if execErr != nil {
			return &common.StorageError{Err: fmt.Errorf("failed to insert record: %w", execErr), Line: rec.SheetLine}
		}
		id, idErr := res.LastInsertId()
		if idErr != nil {
			return &common.StorageError{Err: fmt.Errorf("failed to read record id: %w", idErr), Line: rec.SheetLine}
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return &common.StorageError{Err: fmt.Errorf("failed to commit records: %w", err)}
	}

	for i := range records {
		records[i].ID = ids[i]
	}
	return nil
}

// ListRecords returns the newest records first. A limit of zero or less
// returns every record.
func (s *SQLiteStorage) ListRecords(ctx context.Context, limit int) ([]model.TransactionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM transactions ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryRecords(ctx, s.db, query, args...)
}

// ListRecordsByCycle returns the records written by one sync cycle in insert order.
func (s *SQLiteStorage) ListRecordsByCycle(ctx context.Context, cycleID string) ([]model.TransactionRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(cycleID, "cycleID"); err != nil {
		return nil, err
	}

	return s.queryRecords(ctx, s.db,
		`SELECT `+recordColumns+` FROM transactions WHERE cycle_id = ? ORDER BY id ASC`, cycleID)
}

// CountRecords returns the total number of stored records.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (s *SQLiteStorage) queryRecords(ctx context.Context, q queryable, query string, args ...any) ([]model.TransactionRecord, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.TransactionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (model.TransactionRecord, error) {
	var (
		rec                                              model.TransactionRecord
		date, typ, card, debit, due, ref, reported       sql.NullString
		institution, typeSource, merchant, device, cycle sql.NullString
		sheetLine                                        sql.NullInt64
		createdAt                                        sql.NullTime
	)

	err := rows.Scan(
		&rec.ID,
		&date,
		&institution,
		&typ,
		&typeSource,
		&merchant,
		&rec.Amount,
		&rec.Balance,
		&card,
		&device,
		&rec.RawContent,
		&debit,
		&rec.TotalDue,
		&rec.MinimumDue,
		&due,
		&ref,
		&reported,
		&sheetLine,
		&cycle,
		&createdAt,
	)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Date = stringPtr(date)
	rec.Type = stringPtr(typ)
	rec.CardNumber = stringPtr(card)
	rec.DebitAccount = stringPtr(debit)
	rec.DueDate = stringPtr(due)
	rec.ReferenceNumber = stringPtr(ref)
	rec.ReportedDate = stringPtr(reported)
	rec.Institution = institution.String
	rec.TypeSource = model.TypeSource(typeSource.String)
	rec.Merchant = merchant.String
	rec.Device = device.String
	rec.CycleID = cycle.String
	rec.SheetLine = int(sheetLine.Int64)
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time.In(time.UTC)
	}

	return rec, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
