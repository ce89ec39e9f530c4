package application

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

// Recorder appends ledger entries for mutations of an inventory record.
type Recorder struct {
	now func() time.Time
}

func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

// Record writes one entry linked to rec, which must already be persisted.
func (r *Recorder) Record(ctx context.Context, tx Transactions, rec domain.Record, action domain.Action, quantity int, bookID int64, userID *int64, reason string) (domain.Transaction, error) {
	if !action.Valid() {
		return domain.Transaction{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}
	if quantity <= 0 {
		return domain.Transaction{}, domain.ErrInvalidQuantity
	}
	if rec.ID == 0 {
		return domain.Transaction{}, fmt.Errorf("record transaction: inventory record not persisted")
	}
	now := r.now().UTC()
	t := domain.Transaction{
		InventoryID: rec.ID,
		Ref:         domain.NewTransactionRef(now),
		BookID:      bookID,
		UserID:      userID,
		Reason:      reason,
		Quantity:    quantity,
		Action:      action,
		Flag:        domain.FlagEnabled,
		CreatedAt:   now,
	}
	saved, err := tx.InsertTransaction(ctx, t)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction %s: %w", t.Ref, err)
	}
	return saved, nil
}
