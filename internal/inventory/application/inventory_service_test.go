package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/application"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

func TestCreateInventory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.store(t, "Central")

	_, err := f.inventory.Create(ctx, application.CreateInventory{BookID: 1, StoreID: 404, TotalCopies: 1, AvailableCopies: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.inventory.Create(ctx, application.CreateInventory{BookID: 1, StoreID: st.ID, TotalCopies: 1, AvailableCopies: 2})
	require.ErrorIs(t, err, domain.ErrInvalidStock)

	rec := f.stocked(t, st.ID, 1, 12, 12)
	assert.Equal(t, domain.StatusActive, rec.Status)
	require.NotNil(t, rec.LastRestockedAt)

	history, err := f.inventory.History(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ActionStocked, history[0].Action)
	assert.Equal(t, 12, history[0].Quantity)
	assert.Nil(t, history[0].UserID)

	other := f.store(t, "Harbour")
	_, err = f.inventory.Create(ctx, application.CreateInventory{BookID: 1, StoreID: other.ID, TotalCopies: 1, AvailableCopies: 1})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreateRejectsDuplicateStoreRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.store(t, "Central")

	empty, err := f.inventory.Create(ctx, application.CreateInventory{BookID: 5, StoreID: st.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOutOfStock, empty.Status)
	assert.Nil(t, empty.LastRestockedAt)

	_, err = f.inventory.Create(ctx, application.CreateInventory{BookID: 5, StoreID: st.ID, TotalCopies: 4, AvailableCopies: 4})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRestockWritesLedgerEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.store(t, "Central")
	seeded, err := f.inventory.Create(ctx, application.CreateInventory{BookID: 9, StoreID: st.ID})
	require.NoError(t, err)

	rec, err := f.inventory.Restock(ctx, seeded.ID, application.Restock{TotalCopies: 40, AvailableCopies: 40, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, rec.Status)
	assert.Equal(t, seeded.Version+1, rec.Version)

	rec, err = f.inventory.Restock(ctx, seeded.ID, application.Restock{TotalCopies: 37, AvailableCopies: 37, Status: domain.StatusDamaged, Reason: "water"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDamaged, rec.Status)

	_, err = f.inventory.Restock(ctx, seeded.ID, application.Restock{TotalCopies: 37, AvailableCopies: 37, Status: domain.StatusDamaged})
	require.NoError(t, err)

	history, err := f.inventory.History(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ActionStocked, history[0].Action)
	assert.Equal(t, 40, history[0].Quantity)
	assert.Equal(t, "delivery", history[0].Reason)
	assert.Equal(t, domain.ActionDamaged, history[1].Action)
	assert.Equal(t, 3, history[1].Quantity)

	_, err = f.inventory.Restock(ctx, seeded.ID, application.Restock{TotalCopies: 3, AvailableCopies: 4})
	require.ErrorIs(t, err, domain.ErrInvalidStock)
	_, err = f.inventory.Restock(ctx, 404, application.Restock{TotalCopies: 1, AvailableCopies: 1})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.store(t, "Central")
	rec := f.stocked(t, st.ID, 3, 5, 5)

	require.NoError(t, f.inventory.Delete(ctx, rec.ID))
	require.NoError(t, f.inventory.Delete(ctx, rec.ID))

	got, err := f.inventory.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlagDisabled, got.Flag)
	assert.Equal(t, 5, got.AvailableCopies)

	enabled, err := f.inventory.List(ctx, application.Filter{})
	require.NoError(t, err)
	assert.Empty(t, enabled)
	disabled, err := f.inventory.List(ctx, application.Filter{Flag: domain.FlagDisabled, StoreID: st.ID})
	require.NoError(t, err)
	assert.Len(t, disabled, 1)

	_, err = f.reactor.HandleBorrowReturn(ctx, borrow(st, rec, 1))
	require.ErrorIs(t, err, domain.ErrNotFound)

	history, err := f.inventory.History(ctx, rec.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	require.ErrorIs(t, f.inventory.Delete(ctx, 404), domain.ErrNotFound)
}

func TestGetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.store(t, "Central")
	rec := f.stocked(t, st.ID, 3, 5, 2)

	a, err := f.inventory.Get(ctx, rec.ID)
	require.NoError(t, err)
	b, err := f.inventory.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHistoryAndTransactionLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := f.store(t, "Central")
	rec := f.stocked(t, st.ID, 3, 5, 5)

	_, err := f.inventory.History(ctx, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)

	txn, err := f.reactor.HandleBorrowReturn(ctx, borrow(st, rec, 2))
	require.NoError(t, err)

	got, err := f.inventory.Transaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.Ref, got.Ref)
	assert.Equal(t, rec.ID, got.InventoryID)

	_, err = f.inventory.Transaction(ctx, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, application.IsClientError(domain.ErrOverReturn))
	assert.False(t, application.IsClientError(domain.ErrConcurrentUpdate))
	assert.False(t, application.IsClientError(context.Canceled))
}
