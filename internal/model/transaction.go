package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column positions within a sheet body row.
const (
	ColumnDate = iota
	ColumnInstitution
	ColumnReserved
	ColumnContent
	ColumnDevice

	// MinRowWidth is the number of cells every row is padded to before use.
	MinRowWidth = 5
)

// RawRow is one line of the sheet body.
type RawRow []string

// Padded returns a copy of the row extended with empty cells to at least width cells.
func (r RawRow) Padded(width int) RawRow {
	if width < len(r) {
		width = len(r)
	}
	out := make(RawRow, width)
	copy(out, r)
	return out
}

// Cell returns the cell at index i, or "" when the row is shorter.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Grid is a full sheet snapshot: a header row plus body rows.
type Grid struct {
	Header RawRow
	Rows   []RawRow
}

// GridFromValues splits raw cell values into header and body.
func GridFromValues(values [][]string) Grid {
	if len(values) == 0 {
		return Grid{}
	}
	g := Grid{Header: RawRow(values[0])}
	for _, v := range values[1:] {
		g.Rows = append(g.Rows, RawRow(v))
	}
	return g
}

// Values flattens the grid back into header + body order.
func (g Grid) Values() [][]string {
	out := make([][]string, 0, len(g.Rows)+1)
	if g.Header != nil {
		out = append(out, []string(g.Header))
	}
	for _, r := range g.Rows {
		out = append(out, []string(r))
	}
	return out
}

// NewRow is a body row that was not present in the previous snapshot.
type NewRow struct {
	Row  RawRow
	Line int // 1-based position in the sheet body
}

// ExtractedFields holds the normalized output of one extraction. Every field is optional.
type ExtractedFields struct {
	Amount          decimal.NullDecimal
	Balance         decimal.NullDecimal
	TotalDue        decimal.NullDecimal
	MinimumDue      decimal.NullDecimal
	CardNumber      *string
	ReferenceNumber *string
	DebitAccount    *string
	DueDate         *string
	Type            *string
	Date            *string // as reported by the model, unconverted
	Merchant        string
}

// IsEmpty reports whether nothing at all was extracted.
func (f ExtractedFields) IsEmpty() bool {
	return !f.Amount.Valid && !f.Balance.Valid && !f.TotalDue.Valid && !f.MinimumDue.Valid &&
		f.CardNumber == nil && f.ReferenceNumber == nil && f.DebitAccount == nil &&
		f.DueDate == nil && f.Type == nil && f.Date == nil && f.Merchant == ""
}

// TransactionRecord is the persisted form of one processed row.
type TransactionRecord struct {
	CreatedAt       time.Time
	Date            *string // canonical YYYY-MM-DD HH:MM:SS
	ReportedDate    *string
	Type            *string
	CardNumber      *string
	DebitAccount    *string
	DueDate         *string
	ReferenceNumber *string
	Amount          decimal.NullDecimal
	Balance         decimal.NullDecimal
	TotalDue        decimal.NullDecimal
	MinimumDue      decimal.NullDecimal
	Institution     string
	TypeSource      TypeSource
	Merchant        string
	Device          string
	RawContent      string
	CycleID         string
	ID              int64
	SheetLine       int
}
