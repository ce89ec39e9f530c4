package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/events"
)

// Reactor applies catalog and lending events to the ledger.
type Reactor struct {
	log      *slog.Logger
	ledger   Ledger
	recorder *Recorder
	maxTries uint
	tracer   trace.Tracer
	meter    metric.MeterProvider

	mutations metric.Int64Counter
	rejected  metric.Int64Counter
	conflicts metric.Int64Counter
}

type ReactorOption func(*Reactor)

// WithMeterProvider reports the reactor's counters to mp instead of the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) ReactorOption {
	return func(r *Reactor) { r.meter = mp }
}

// WithMaxTries bounds the attempts made when a record is updated concurrently.
func WithMaxTries(n uint) ReactorOption {
	return func(r *Reactor) {
		if n > 0 {
			r.maxTries = n
		}
	}
}

func NewReactor(log *slog.Logger, ledger Ledger, recorder *Recorder, opts ...ReactorOption) *Reactor {
	r := &Reactor{
		log:      log,
		ledger:   ledger,
		recorder: recorder,
		maxTries: defaultMaxTries,
		tracer:   otel.Tracer("inventory-reactor"),
		meter:    otel.GetMeterProvider(),
	}
	for _, o := range opts {
		o(r)
	}
	meter := r.meter.Meter("inventory-reactor")
	r.mutations, _ = meter.Int64Counter("inventory.mutations", metric.WithDescription("Applied borrow and return events"))
	r.rejected, _ = meter.Int64Counter("inventory.rejections", metric.WithDescription("Borrow and return events rejected by stock rules"))
	r.conflicts, _ = meter.Int64Counter("inventory.version_conflicts", metric.WithDescription("Optimistic update conflicts"))
	return r
}

// HandlePublished creates an OUT_OF_STOCK placeholder record for the book in
// every enabled store. Stores that already hold an enabled record for the
// book are skipped. Each insert stands alone, so one failure does not undo
// the others; all failures are returned joined.
func (r *Reactor) HandlePublished(ctx context.Context, ev events.PublishEvent) (int, error) {
	ctx, span := r.tracer.Start(ctx, "HandleBookPublished", trace.WithAttributes(attribute.Int64("book.id", ev.Book.ID)))
	defer span.End()

	stores, err := r.ledger.ListStores(ctx, domain.FlagEnabled)
	if err != nil {
		return 0, fmt.Errorf("list enabled stores: %w", err)
	}
	existing, err := r.ledger.FindByBook(ctx, ev.Book.ID, domain.FlagEnabled)
	if err != nil {
		return 0, fmt.Errorf("find records for book %d: %w", ev.Book.ID, err)
	}
	held := make(map[int64]bool, len(existing))
	for _, rec := range existing {
		held[rec.StoreID] = true
	}

	var (
		created int
		errs    []error
	)
	for _, s := range stores {
		if held[s.ID] {
			continue
		}
		if _, err := r.ledger.InsertRecord(ctx, domain.NewPublishedRecord(ev.Book.ID, s.ID)); err != nil {
			r.log.Warn("inventory seed failed", "book_id", ev.Book.ID, "store_id", s.ID, "err", err)
			errs = append(errs, fmt.Errorf("store %d: %w", s.ID, err))
			continue
		}
		created++
	}
	span.SetAttributes(attribute.Int("inventory.created", created))
	return created, errors.Join(errs...)
}

// HandleBorrowReturn applies one borrow or return and appends its ledger
// entry in a single unit of work. Version conflicts are retried; rule
// violations are not.
func (r *Reactor) HandleBorrowReturn(ctx context.Context, ev events.BorrowReturnEvent) (domain.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "HandleBorrowReturn", trace.WithAttributes(
		attribute.Int64("inventory.id", ev.InventoryID),
		attribute.String("inventory.action", string(ev.Action)),
	))
	defer span.End()

	action := domain.Action(ev.Action)
	if action != domain.ActionBorrowed && action != domain.ActionReturned {
		return domain.Transaction{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, ev.Action)
	}
	attrs := metric.WithAttributes(attribute.String("action", string(action)))

	txn, err := retryConflicts(ctx, r.maxTries, func() (domain.Transaction, error) {
		var out domain.Transaction
		err := r.ledger.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
			if _, err := tx.GetStore(ctx, ev.StoreID); err != nil {
				return fmt.Errorf("store %d: %w", ev.StoreID, err)
			}
			rec, err := tx.GetRecord(ctx, ev.InventoryID)
			if err != nil {
				return fmt.Errorf("inventory %d: %w", ev.InventoryID, err)
			}
			if rec.StoreID != ev.StoreID || rec.Flag != domain.FlagEnabled {
				return fmt.Errorf("inventory %d at store %d: %w", ev.InventoryID, ev.StoreID, domain.ErrNotFound)
			}
			if rec.BookID != ev.BookID {
				return fmt.Errorf("inventory %d for book %d: %w", ev.InventoryID, ev.BookID, domain.ErrNotFound)
			}
			if err := rec.Apply(action, ev.Quantity); err != nil {
				return err
			}
			saved, err := tx.UpdateRecord(ctx, rec)
			if err != nil {
				if errors.Is(err, domain.ErrConcurrentUpdate) {
					r.conflicts.Add(ctx, 1, attrs)
				}
				return err
			}
			out, err = r.recorder.Record(ctx, tx, saved, action, ev.Quantity, ev.BookID, ev.UserID, ev.Reason)
			return err
		})
		return out, err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrOverReturn) {
			r.rejected.Add(ctx, 1, attrs)
		}
		span.RecordError(err)
		return domain.Transaction{}, err
	}
	r.mutations.Add(ctx, 1, attrs)
	return txn, nil
}
