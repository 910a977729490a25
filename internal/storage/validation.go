package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/phone-manager/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidRecord = errors.New("invalid record")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecord checks what the table cannot. Raw content may be empty; ids
// are assigned by the table.
func validateRecord(rec *model.TransactionRecord) error {
	if rec.SheetLine < 0 {
		return fmt.Errorf("%w: negative sheet line %d", ErrInvalidRecord, rec.SheetLine)
	}
	if rec.ID != 0 {
		return fmt.Errorf("%w: record already has id %d", ErrInvalidRecord, rec.ID)
	}
	if rec.Date != nil && *rec.Date == "" {
		return fmt.Errorf("%w: empty canonical date, use nil for absent", ErrInvalidRecord)
	}
	return nil
}
