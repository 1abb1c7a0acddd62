// Package backend builds the ledger mirror selected by MIRROR_BACKEND.
package backend

import (
	"context"

	"nannyledger/internal/sheets"
)

// Factory creates mirrors based on configuration
type Factory interface {
	CreateMirror(ctx context.Context, config Config) (sheets.LedgerMirror, error)
}

// Config holds configuration for mirror creation
type Config struct {
	Type MirrorType

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// MirrorType names a mirror backend.
type MirrorType string

const (
	MemoryMirror MirrorType = "memory"
	SheetsMirror MirrorType = "sheets"
)

func (mt MirrorType) String() string {
	return string(mt)
}

// IsValid returns true if the mirror type is known
func (mt MirrorType) IsValid() bool {
	switch mt {
	case MemoryMirror, SheetsMirror:
		return true
	default:
		return false
	}
}
