package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

type CreateInventory struct {
	BookID          int64
	StoreID         int64
	TotalCopies     int
	AvailableCopies int
	Status          domain.Status
}

// Restock replaces the copy counts of a record. A zero StoreID keeps the
// current store.
type Restock struct {
	StoreID         int64
	TotalCopies     int
	AvailableCopies int
	Status          domain.Status
	Reason          string
}

// InventoryService is the administrative surface over inventory records and
// their ledger.
type InventoryService struct {
	ledger   Ledger
	recorder *Recorder
	now      func() time.Time
	maxTries uint
}

func NewInventoryService(ledger Ledger, recorder *Recorder) *InventoryService {
	return &InventoryService{ledger: ledger, recorder: recorder, now: time.Now, maxTries: defaultMaxTries}
}

func (s *InventoryService) Create(ctx context.Context, in CreateInventory) (domain.Record, error) {
	var out domain.Record
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.GetStore(ctx, in.StoreID); err != nil {
			return fmt.Errorf("store %d: %w", in.StoreID, err)
		}
		existing, err := tx.FindByBook(ctx, in.BookID, domain.FlagEnabled)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.Status == domain.StatusActive || e.StoreID == in.StoreID {
				return fmt.Errorf("inventory for book %d (record %d): %w", in.BookID, e.ID, domain.ErrAlreadyExists)
			}
		}

		rec := domain.Record{BookID: in.BookID, StoreID: in.StoreID, Flag: domain.FlagEnabled}
		if err := rec.ApplyRestock(in.TotalCopies, in.AvailableCopies, in.Status, s.now().UTC()); err != nil {
			return err
		}
		if rec.TotalCopies == 0 {
			rec.LastRestockedAt = nil
		}
		out, err = tx.InsertRecord(ctx, rec)
		if err != nil {
			return err
		}
		if out.TotalCopies > 0 {
			_, err = s.recorder.Record(ctx, tx, out, restockAction(out.Status), out.TotalCopies, out.BookID, nil, "initial stock")
		}
		return err
	})
	return out, err
}

// Restock overwrites the counts of record id and appends a STOCKED or
// DAMAGED entry sized by the change. No entry is written when the counts do
// not move.
func (s *InventoryService) Restock(ctx context.Context, id int64, in Restock) (domain.Record, error) {
	return retryConflicts(ctx, s.maxTries, func() (domain.Record, error) {
		var out domain.Record
		err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
			rec, err := tx.GetRecord(ctx, id)
			if err != nil {
				return fmt.Errorf("inventory %d: %w", id, err)
			}
			if in.StoreID != 0 && in.StoreID != rec.StoreID {
				if _, err := tx.GetStore(ctx, in.StoreID); err != nil {
					return fmt.Errorf("store %d: %w", in.StoreID, err)
				}
				rec.StoreID = in.StoreID
			}
			prev := rec
			if err := rec.ApplyRestock(in.TotalCopies, in.AvailableCopies, in.Status, s.now().UTC()); err != nil {
				return err
			}
			rec.Flag = domain.FlagEnabled
			out, err = tx.UpdateRecord(ctx, rec)
			if err != nil {
				return err
			}
			q := abs(out.TotalCopies - prev.TotalCopies)
			if q == 0 {
				q = abs(out.AvailableCopies - prev.AvailableCopies)
			}
			if q == 0 {
				return nil
			}
			_, err = s.recorder.Record(ctx, tx, out, restockAction(out.Status), q, out.BookID, nil, in.Reason)
			return err
		})
		return out, err
	})
}

// Delete disables the record. Its ledger stays readable.
func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	_, err := retryConflicts(ctx, s.maxTries, func() (domain.Record, error) {
		rec, err := s.ledger.GetRecord(ctx, id)
		if err != nil {
			return domain.Record{}, fmt.Errorf("inventory %d: %w", id, err)
		}
		if rec.Flag == domain.FlagDisabled {
			return rec, nil
		}
		rec.Flag = domain.FlagDisabled
		return s.ledger.UpdateRecord(ctx, rec)
	})
	return err
}

func (s *InventoryService) Get(ctx context.Context, id int64) (domain.Record, error) {
	rec, err := s.ledger.GetRecord(ctx, id)
	if err != nil {
		return domain.Record{}, fmt.Errorf("inventory %d: %w", id, err)
	}
	return rec, nil
}

// List returns records matching f. An empty flag lists enabled records.
func (s *InventoryService) List(ctx context.Context, f Filter) ([]domain.Record, error) {
	if f.Flag == "" {
		f.Flag = domain.FlagEnabled
	}
	return s.ledger.ListRecords(ctx, f)
}

// History returns the ledger of one record, oldest first.
func (s *InventoryService) History(ctx context.Context, inventoryID int64) ([]domain.Transaction, error) {
	if _, err := s.ledger.GetRecord(ctx, inventoryID); err != nil {
		return nil, fmt.Errorf("inventory %d: %w", inventoryID, err)
	}
	return s.ledger.ListTransactions(ctx, inventoryID)
}

func (s *InventoryService) Transaction(ctx context.Context, id int64) (domain.Transaction, error) {
	t, err := s.ledger.GetTransaction(ctx, id)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	return t, nil
}

func restockAction(st domain.Status) domain.Action {
	if st == domain.StatusDamaged {
		return domain.ActionDamaged
	}
	return domain.ActionStocked
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// IsClientError reports whether err stems from the caller's input rather
// than the ledger.
func IsClientError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound, domain.ErrAlreadyExists, domain.ErrInsufficientStock,
		domain.ErrOverReturn, domain.ErrInvalidQuantity, domain.ErrInvalidStock,
		domain.ErrUnknownAction, domain.ErrInvalidStore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
