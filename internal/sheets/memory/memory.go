package memory

import (
	"context"
	"sync"

	ports "nannyledger/internal/sheets"
)

// Mirror keeps the last mirrored ledger in process.
type Mirror struct {
	mu      sync.Mutex
	records [][]string
	writes  int
}

var _ ports.LedgerMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// ReplaceLedger stores a copy of records.
func (m *Mirror) ReplaceLedger(_ context.Context, records [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = copyRecords(records)
	m.writes++
	return nil
}

// Records returns a copy of the last mirrored records.
func (m *Mirror) Records() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyRecords(m.records)
}

// Writes counts ReplaceLedger calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func copyRecords(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, rec := range in {
		out[i] = append([]string(nil), rec...)
	}
	return out
}
