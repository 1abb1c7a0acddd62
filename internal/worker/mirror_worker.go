package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nannyledger/internal/amqp"
	"nannyledger/internal/sheets"
)

// RecordSource yields the projected ledger as export records.
// *services.LedgerService satisfies it.
type RecordSource interface {
	Records(ctx context.Context) ([][]string, error)
}

// MirrorWorker keeps a LedgerMirror in step with the database. Every event
// triggers a full reprojection, so the mirror never drifts from the ledger
// even if events are lost or reordered.
type MirrorWorker struct {
	mu     sync.Mutex // one mirror write at a time
	source RecordSource
	mirror sheets.LedgerMirror
}

func NewMirrorWorker(source RecordSource, mirror sheets.LedgerMirror) *MirrorWorker {
	return &MirrorWorker{
		source: source,
		mirror: mirror,
	}
}

// HandleEvent processes a single ledger event from AMQP
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"type", event.Type,
		"entry_id", event.EntryID,
		"timestamp", event.Timestamp)

	if err := w.MirrorAll(ctx); err != nil {
		return fmt.Errorf("mirror after %s: %w", event.Type, err)
	}
	return nil
}

// MirrorAll reprojects the ledger and replaces the mirror's contents.
func (w *MirrorWorker) MirrorAll(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	records, err := w.source.Records(ctx)
	if err != nil {
		return fmt.Errorf("project ledger: %w", err)
	}
	if err := w.mirror.ReplaceLedger(ctx, records); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}

	slog.InfoContext(ctx, "Ledger mirrored", "rows", len(records)-1)
	return nil
}

// Resync mirrors the whole ledger every interval until ctx is cancelled.
// Failures are logged and retried on the next tick.
func (w *MirrorWorker) Resync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.MirrorAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic mirror failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
