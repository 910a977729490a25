package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/phone-manager/internal/common"
)

const (
	// CanonicalDateLayout is the sortable form dates are stored in.
	CanonicalDateLayout = "2006-01-02 15:04:05"

	sheetDateLayout = "January 2, 2006 at 3:04 PM"
)

// CanonicalDate converts a sheet timestamp such as "March 5, 2024 at 2:30PM"
// or "march 5, 2024 at 2:30 pm" into "2024-03-05 14:30:00". Any other shape
// yields an error wrapping common.ErrDateParse.
func CanonicalDate(text string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	if n := len(s); n >= 2 {
		switch s[n-2:] {
		case "am", "pm":
			marker := strings.ToUpper(s[n-2:])
			head := s[:n-2]
			if !strings.HasSuffix(head, " ") {
				head += " "
			}
			s = head + marker
		}
	}

	t, err := time.Parse(sheetDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", common.ErrDateParse, text)
	}

	return t.Format(CanonicalDateLayout), nil
}
