// Package worker keeps derived data up to date outside the request path:
// order and ticket roll-up snapshots rebuilt on status events, and the
// periodic chart export.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"duka/internal/amqp"
	"duka/internal/core"
	"duka/internal/log"
	"duka/internal/metrics"
	"duka/internal/ports"
	"duka/internal/services"
	"duka/internal/state"
)

// RollupKey is the KV key holding the snapshot for kind.
func RollupKey(kind string) string { return "rollup:" + kind }

// Snapshot is the stored roll-up of one kind, with what triggered it.
type Snapshot[T any] struct {
	Kind      string    `json:"kind"`
	Trigger   string    `json:"trigger"`
	UpdatedAt time.Time `json:"updatedAt"`
	Rollup    T         `json:"rollup"`
}

// RollupWorker rebuilds roll-ups from the persisted state. The exporter is
// optional.
type RollupWorker struct {
	kv       ports.KVStore
	reader   ports.DatasetReader
	exporter ports.ReportExporter
	logger   *log.StructuredLogger
	now      func() time.Time
}

func NewRollupWorker(kv ports.KVStore, reader ports.DatasetReader, exporter ports.ReportExporter, logger *log.Logger) *RollupWorker {
	return &RollupWorker{
		kv:       kv,
		reader:   reader,
		exporter: exporter,
		logger:   log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker)),
		now:      time.Now,
	}
}

// HandleStatusChanged refreshes the roll-up of the kind named by msg.
func (w *RollupWorker) HandleStatusChanged(ctx context.Context, msg *amqp.StatusChangedMessage) error {
	w.logger.LogStatusChanged(ctx, msg.Kind, msg.ID, msg.From, msg.To)
	trigger := msg.Kind + " " + msg.ID + ": " + msg.From + " -> " + msg.To
	switch msg.Kind {
	case amqp.KindOrder:
		return w.RefreshOrders(ctx, trigger)
	case amqp.KindTicket:
		return w.RefreshTickets(ctx, trigger)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

// RefreshOrders recomputes the order totals. A missing order book is not an
// error: the server has not written it yet.
func (w *RollupWorker) RefreshOrders(ctx context.Context, trigger string) error {
	s, found, err := state.NewKVPersister[state.Orders](w.kv, state.OrdersKey).Load(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	if !found {
		w.logger.Debug(ctx, "No order book yet, skipping roll-up")
		return nil
	}
	return save(ctx, w.kv, Snapshot[core.OrderTotals]{
		Kind:      amqp.KindOrder,
		Trigger:   trigger,
		UpdatedAt: w.now().UTC(),
		Rollup:    services.OrderTotals(s.Orders),
	})
}

// RefreshTickets recomputes the ticket statistics.
func (w *RollupWorker) RefreshTickets(ctx context.Context, trigger string) error {
	s, found, err := state.NewKVPersister[state.Tickets](w.kv, state.TicketsKey).Load(ctx)
	if err != nil {
		return fmt.Errorf("load tickets: %w", err)
	}
	if !found {
		w.logger.Debug(ctx, "No tickets yet, skipping roll-up")
		return nil
	}
	return save(ctx, w.kv, Snapshot[core.TicketStats]{
		Kind:      amqp.KindTicket,
		Trigger:   trigger,
		UpdatedAt: w.now().UTC(),
		Rollup:    services.TicketStats(s.Tickets),
	})
}

// Startup rebuilds both roll-ups so events missed while the worker was down
// do not leave stale snapshots.
func (w *RollupWorker) Startup(ctx context.Context) error {
	return errors.Join(
		w.RefreshOrders(ctx, "startup"),
		w.RefreshTickets(ctx, "startup"),
	)
}

// ExportMonthly writes the monthly chart series through the exporter.
func (w *RollupWorker) ExportMonthly(ctx context.Context) error {
	if w.exporter == nil {
		return nil
	}
	dataset, err := w.reader.ReadDataset(ctx)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	view, err := metrics.SelectPeriod(dataset, core.Monthly, metrics.NoJitter{})
	if err != nil {
		return err
	}
	if err := w.exporter.ExportSeries(ctx, core.Monthly, metrics.ToChartSeries(view)); err != nil {
		return fmt.Errorf("export monthly series: %w", err)
	}
	w.logger.Debug(ctx, "Exported monthly series", "rows", len(view))
	return nil
}

// Run calls ExportMonthly every interval until ctx is done. Failures are
// logged and retried on the next tick.
func (w *RollupWorker) Run(ctx context.Context, interval time.Duration) {
	if w.exporter == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ExportMonthly(ctx); err != nil {
				w.logger.LogError(ctx, "Periodic export failed", err, log.OpExport, nil)
			}
		}
	}
}

// LoadSnapshot reads the stored roll-up of kind into T.
func LoadSnapshot[T any](ctx context.Context, kv ports.KVStore, kind string) (Snapshot[T], bool, error) {
	var snap Snapshot[T]
	raw, found, err := kv.Get(ctx, RollupKey(kind))
	if err != nil || !found {
		return snap, false, err
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, false, fmt.Errorf("decode %s: %w", RollupKey(kind), err)
	}
	return snap, true, nil
}

func save[T any](ctx context.Context, kv ports.KVStore, snap Snapshot[T]) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode %s roll-up: %w", snap.Kind, err)
	}
	if err := kv.Set(ctx, RollupKey(snap.Kind), raw); err != nil {
		return fmt.Errorf("store %s roll-up: %w", snap.Kind, err)
	}
	return nil
}
