package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const maxContentWidth = 48

// RenderRecords draws records as a bordered table.
func RenderRecords(records []model.TransactionRecord) string {
	if len(records) == 0 {
		return SubtleStyle.Render("No records stored yet.")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			deref(r.Date),
			r.Institution,
			typeLabel(r),
			formatDecimal(r.Amount),
			formatDecimal(r.Balance),
			r.Device,
			truncate(r.RawContent, maxContentWidth),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "DATE", "INSTITUTION", "TYPE", "AMOUNT", "BALANCE", "DEVICE", "MESSAGE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 4 || col == 5 {
				return AmountStyle
			}
			return TableCellStyle
		})

	return t.Render()
}

// RenderCycleSummary formats the outcome of one sync cycle.
func RenderCycleSummary(cycleID string, fetched, newRows, inserted, extractionFailures, dateFailures int, took time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  • Cycle: %s\n", cycleID)
	fmt.Fprintf(&b, "  • Rows in sheet: %d\n", fetched)
	fmt.Fprintf(&b, "  • New rows: %d\n", newRows)
	fmt.Fprintf(&b, "  • Records stored: %d\n", inserted)
	b.WriteString("  • " + FormatCount("Extraction failures", extractionFailures) + "\n")
	b.WriteString("  • " + FormatCount("Unrecognized dates", dateFailures) + "\n")
	fmt.Fprintf(&b, "  • Time taken: %s", took.Round(time.Millisecond))

	return RenderBox(FormatSuccess("Sync complete"), b.String())
}

func typeLabel(r model.TransactionRecord) string {
	if r.Type == nil {
		return ""
	}
	if r.TypeSource == "" {
		return *r.Type
	}
	return *r.Type + " " + ProvenanceStyle.Render("("+string(r.TypeSource)+")")
}

func formatDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
