package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

type StoreService struct {
	ledger Ledger
	now    func() time.Time
}

func NewStoreService(ledger Ledger) *StoreService {
	return &StoreService{ledger: ledger, now: time.Now}
}

func (s *StoreService) Create(ctx context.Context, st domain.Store) (domain.Store, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return domain.Store{}, domain.ErrInvalidStore
	}
	st.Normalize()
	st.Flag = domain.FlagEnabled

	var out domain.Store
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		taken, err := tx.StoreNameTaken(ctx, st.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("store %q: %w", st.Name, domain.ErrAlreadyExists)
		}
		out, err = tx.InsertStore(ctx, st)
		return err
	})
	return out, err
}

func (s *StoreService) Get(ctx context.Context, id int64) (domain.Store, error) {
	st, err := s.ledger.GetStore(ctx, id)
	if err != nil {
		return domain.Store{}, fmt.Errorf("store %d: %w", id, err)
	}
	return st, nil
}

// List returns enabled stores.
func (s *StoreService) List(ctx context.Context) ([]domain.Store, error) {
	return s.ledger.ListStores(ctx, domain.FlagEnabled)
}

// Update replaces the descriptive fields of store id. Flag and timestamps
// on st are ignored.
func (s *StoreService) Update(ctx context.Context, id int64, st domain.Store) (domain.Store, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return domain.Store{}, domain.ErrInvalidStore
	}
	var out domain.Store
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.GetStore(ctx, id)
		if err != nil {
			return fmt.Errorf("store %d: %w", id, err)
		}
		taken, err := tx.StoreNameTaken(ctx, st.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("store %q: %w", st.Name, domain.ErrAlreadyExists)
		}
		cur.Name = st.Name
		cur.Description = st.Description
		cur.Type = st.Type
		cur.ContactEmail = st.ContactEmail
		cur.ContactPhone = st.ContactPhone
		cur.Address = st.Address
		cur.Normalize()
		cur.UpdatedAt = s.now().UTC()
		if err := tx.UpdateStore(ctx, cur); err != nil {
			return err
		}
		out = cur
		return nil
	})
	return out, err
}

// Delete disables the store. Its inventory records are left untouched.
func (s *StoreService) Delete(ctx context.Context, id int64) error {
	return s.ledger.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		cur, err := tx.GetStore(ctx, id)
		if err != nil {
			return fmt.Errorf("store %d: %w", id, err)
		}
		if cur.Flag == domain.FlagDisabled {
			return nil
		}
		cur.Flag = domain.FlagDisabled
		cur.UpdatedAt = s.now().UTC()
		return tx.UpdateStore(ctx, cur)
	})
}
