package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	st := f.store(t, "  Central  ")
	assert.Equal(t, "Central", st.Name)
	assert.Equal(t, domain.StorePhysical, st.Type)
	assert.Equal(t, domain.FlagEnabled, st.Flag)

	_, err := f.stores.Create(ctx, domain.Store{Name: "Central"})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = f.stores.Create(ctx, domain.Store{Name: " "})
	require.ErrorIs(t, err, domain.ErrInvalidStore)

	other := f.store(t, "Harbour")
	updated, err := f.stores.Update(ctx, st.ID, domain.Store{
		Name: "Central Library", Type: domain.StoreOnline, ContactEmail: "hi@central.example",
		Address: domain.Address{City: "Ljubljana", Country: "SI"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StoreOnline, updated.Type)

	got, err := f.stores.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Central Library", got.Name)
	assert.Equal(t, "Ljubljana", got.Address.City)

	_, err = f.stores.Update(ctx, st.ID, domain.Store{Name: "Harbour"})
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = f.stores.Update(ctx, 404, domain.Store{Name: "Nowhere"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.stores.Delete(ctx, other.ID))
	list, err := f.stores.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, st.ID, list[0].ID)

	_, err = f.stores.Get(ctx, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
