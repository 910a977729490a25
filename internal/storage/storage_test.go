package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Veraticus/phone-manager/internal/common"
	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func ptr(s string) *string { return &s }

func scenarioRecord() model.TransactionRecord {
	return model.TransactionRecord{
		Date:        ptr("2024-03-01 09:00:00"),
		Institution: "ABC Bank",
		Amount:      decimal.NewNullDecimal(decimal.RequireFromString("500.00")),
		Balance:     decimal.NewNullDecimal(decimal.RequireFromString("4500.00")),
		Device:      "deviceX",
		RawContent:  "Your a/c debited BDT 500.00, balance BDT 4,500.00",
		SheetLine:   1,
		CycleID:     "cycle-1",
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	v, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, v)

	for _, col := range []string{"raw_content", "total_due", "reference_number", "type_source", "cycle_id"} {
		var n int
		err := store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM pragma_table_info('transactions') WHERE name = ?`, col).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "column %s", col)
	}
}

func TestMigrate_FromVersionOne(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "old.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	ctx := context.Background()

	// Simulate a database created by the first schema only.
	tx, err := store.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, migrations[0].Up(tx))
	_, err = tx.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	_, err = tx.Exec(`INSERT INTO transactions (date, raw_content) VALUES ('2024-01-01 00:00:00', 'old row')`)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.NoError(t, store.Migrate(ctx))

	records, err := store.ListRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "old row", records[0].RawContent)
	assert.False(t, records[0].TotalDue.Valid)
	assert.Nil(t, records[0].ReportedDate)
}

func TestSaveRecords_Scenario(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	records := []model.TransactionRecord{scenarioRecord()}
	require.NoError(t, store.SaveRecords(ctx, records))
	assert.NotZero(t, records[0].ID)

	got, err := store.ListRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	rec := got[0]
	assert.Equal(t, records[0].ID, rec.ID)
	require.NotNil(t, rec.Date)
	assert.Equal(t, "2024-03-01 09:00:00", *rec.Date)
	assert.Equal(t, "ABC Bank", rec.Institution)
	assert.True(t, rec.Amount.Valid)
	assert.True(t, rec.Amount.Decimal.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, rec.Balance.Decimal.Equal(decimal.RequireFromString("4500.00")))
	assert.Equal(t, "deviceX", rec.Device)
	assert.Equal(t, "Your a/c debited BDT 500.00, balance BDT 4,500.00", rec.RawContent)
	assert.Equal(t, 1, rec.SheetLine)
	assert.Equal(t, "cycle-1", rec.CycleID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Nil(t, rec.Type)
	assert.Nil(t, rec.CardNumber)
	assert.False(t, rec.TotalDue.Valid)
}

func TestSaveRecords_AllFieldsAbsent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecords(ctx, []model.TransactionRecord{
		{RawContent: "unparseable gibberish", SheetLine: 7},
		{RawContent: "", SheetLine: 8},
	}))

	got, err := store.ListRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, "", got[0].RawContent)
	assert.Equal(t, "unparseable gibberish", got[1].RawContent)
	assert.Nil(t, got[1].Date)
	assert.False(t, got[1].Amount.Valid)
	assert.False(t, got[1].Balance.Valid)
	assert.Empty(t, got[1].Institution)
	assert.Equal(t, model.TypeSourceNone, got[1].TypeSource)
}

func TestSaveRecords_BillFields(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	rec := model.TransactionRecord{
		Date:            ptr("2024-03-05 14:30:00"),
		ReportedDate:    ptr("05-03-2024"),
		Type:            ptr(model.TypeBill),
		TypeSource:      model.TypeSourceKeyword,
		Merchant:        "DPDC",
		DebitAccount:    ptr("***4321"),
		TotalDue:        decimal.NewNullDecimal(decimal.RequireFromString("1200.50")),
		MinimumDue:      decimal.NewNullDecimal(decimal.RequireFromString("600")),
		DueDate:         ptr("March 20, 2024"),
		ReferenceNumber: ptr("998877"),
		CardNumber:      ptr("4111****1111"),
		RawContent:      "DPDC bill",
		SheetLine:       3,
		CycleID:         "c",
	}
	require.NoError(t, store.SaveRecords(ctx, []model.TransactionRecord{rec}))

	got, err := store.ListRecordsByCycle(ctx, "c")
	require.NoError(t, err)
	require.Len(t, got, 1)
	g := got[0]
	assert.Equal(t, model.TypeBill, *g.Type)
	assert.Equal(t, model.TypeSourceKeyword, g.TypeSource)
	assert.Equal(t, "05-03-2024", *g.ReportedDate)
	assert.Equal(t, "DPDC", g.Merchant)
	assert.Equal(t, "***4321", *g.DebitAccount)
	assert.Equal(t, "1200.5", g.TotalDue.Decimal.String())
	assert.Equal(t, "600", g.MinimumDue.Decimal.String())
	assert.Equal(t, "March 20, 2024", *g.DueDate)
	assert.Equal(t, "998877", *g.ReferenceNumber)
	assert.Equal(t, "4111****1111", *g.CardNumber)
}

func TestSaveRecords_AppendOnly(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	// Identical content is stored twice; dedup happens upstream.
	require.NoError(t, store.SaveRecords(ctx, []model.TransactionRecord{scenarioRecord()}))
	require.NoError(t, store.SaveRecords(ctx, []model.TransactionRecord{scenarioRecord()}))

	n, err := store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveRecords_AtomicOnFailure(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	bad := scenarioRecord()
	bad.ID = 99
	bad.SheetLine = 4
	err := store.SaveRecords(ctx, []model.TransactionRecord{scenarioRecord(), bad})
	require.Error(t, err)

	var storageErr *common.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, 4, storageErr.Line)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	n, err := store.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveRecords_ClosedDatabase(t *testing.T) {
	store := createTestStorage(t)
	require.NoError(t, store.Close())

	err := store.SaveRecords(context.Background(), []model.TransactionRecord{scenarioRecord()})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestSaveRecords_Empty(t *testing.T) {
	store := createTestStorage(t)
	assert.NoError(t, store.SaveRecords(context.Background(), nil))
}

func TestListRecords_Limit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	batch := make([]model.TransactionRecord, 5)
	for i := range batch {
		batch[i] = model.TransactionRecord{RawContent: "msg", SheetLine: i + 1}
	}
	require.NoError(t, store.SaveRecords(ctx, batch))

	got, err := store.ListRecords(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].SheetLine)
	assert.Equal(t, 4, got[1].SheetLine)

	_, err = store.ListRecordsByCycle(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)
}
