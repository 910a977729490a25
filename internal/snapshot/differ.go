// Package snapshot diffs sheet snapshots and keeps the previous snapshot on disk.
//
// Row identity is content based: a body row is new when no row with the same
// cells existed in the previous snapshot. Two genuinely identical transactions
// are therefore indistinguishable from a re-sent duplicate, and the second one
// is skipped.
package snapshot

import (
	"strconv"
	"strings"

	"github.com/Veraticus/phone-manager/internal/model"
)

// Diff returns the body rows of current that do not appear anywhere in previous,
// in sheet order, each tagged with its 1-based body line. A nil previous grid
// (first run) makes every row new. Fully blank rows are never reported.
func Diff(current, previous model.Grid) []model.NewRow {
	seen := make(map[string]struct{}, len(previous.Rows))
	for _, row := range previous.Rows {
		seen[rowKey(row)] = struct{}{}
	}

	var fresh []model.NewRow
	for i, row := range current.Rows {
		key := rowKey(row)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		fresh = append(fresh, model.NewRow{Row: row, Line: i + 1})
	}

	return fresh
}

// lineBreaks folds CRLF and lone CR into LF. The CSV reader does the same
// inside quoted fields, so keys must not depend on the line-ending style.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// rowKey encodes cells with length prefixes so that distinct rows never
// collide. Trailing empty cells are ignored because the Sheets API omits them.
func rowKey(row model.RawRow) string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}

	var b strings.Builder
	for _, cell := range row[:end] {
		cell = lineBreaks.Replace(cell)
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}
