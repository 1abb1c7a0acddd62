package sheets

import "context"

// Ports for outbound adapters.
type (
	// LedgerMirror holds a read-only copy of the projected ledger outside the
	// application. Records are the export records, header first.
	LedgerMirror interface {
		ReplaceLedger(ctx context.Context, records [][]string) error
	}
)
