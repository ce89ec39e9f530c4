package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestApplyBorrow(t *testing.T) {
	r := Record{TotalCopies: 100, AvailableCopies: 30, Status: StatusActive}

	require.NoError(t, r.ApplyBorrow(5))
	assert.Equal(t, 25, r.AvailableCopies)
	assert.Equal(t, StatusActive, r.Status)

	err := r.ApplyBorrow(31)
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 25, r.AvailableCopies)

	require.NoError(t, r.ApplyBorrow(25))
	assert.Equal(t, StatusOutOfStock, r.Status)
}

func TestApplyReturn(t *testing.T) {
	r := Record{TotalCopies: 100, AvailableCopies: 25, Status: StatusActive}

	err := r.ApplyReturn(76)
	require.ErrorIs(t, err, ErrOverReturn)
	assert.Equal(t, 25, r.AvailableCopies)

	require.NoError(t, r.ApplyReturn(75))
	assert.Equal(t, 100, r.AvailableCopies)
	assert.Equal(t, StatusActive, r.Status)
}

func TestReturnToEmptyRecordLeavesOutOfStock(t *testing.T) {
	r := Record{Status: StatusOutOfStock}
	require.ErrorIs(t, r.ApplyReturn(1), ErrOverReturn)
	assert.Equal(t, StatusOutOfStock, r.Status)
}

func TestApplyRejectsNonPositiveAndUnknown(t *testing.T) {
	r := Record{TotalCopies: 10, AvailableCopies: 10, Status: StatusActive}
	require.ErrorIs(t, r.ApplyBorrow(0), ErrInvalidQuantity)
	require.ErrorIs(t, r.ApplyReturn(-1), ErrInvalidQuantity)
	require.ErrorIs(t, r.Apply(ActionStocked, 1), ErrUnknownAction)
	require.ErrorIs(t, r.Apply(Action("LOST"), 1), ErrUnknownAction)
	assert.Equal(t, 10, r.AvailableCopies)
}

func TestApplyRestock(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := Record{Status: StatusOutOfStock}

	require.NoError(t, r.ApplyRestock(100, 30, "", now))
	assert.Equal(t, StatusActive, r.Status)
	require.NotNil(t, r.LastRestockedAt)
	assert.Equal(t, now, *r.LastRestockedAt)

	require.NoError(t, r.ApplyRestock(100, 30, StatusDamaged, now))
	assert.Equal(t, StatusDamaged, r.Status)

	require.ErrorIs(t, r.ApplyRestock(10, 11, "", now), ErrInvalidStock)
	require.ErrorIs(t, r.ApplyRestock(-1, 0, "", now), ErrInvalidStock)
	require.ErrorIs(t, r.ApplyRestock(1, 1, Status("LOST"), now), ErrInvalidStock)
	assert.Equal(t, 100, r.TotalCopies)
}

func TestBorrowReturnKeepsBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 500).Draw(t, "total")
		avail := rapid.IntRange(0, total).Draw(t, "available")
		r := Record{TotalCopies: total, AvailableCopies: avail, Status: StatusFor(avail)}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			q := rapid.IntRange(-2, 120).Draw(t, "q")
			before := r
			var err error
			if rapid.Bool().Draw(t, "borrow") {
				err = r.ApplyBorrow(q)
			} else {
				err = r.ApplyReturn(q)
			}
			if err != nil {
				if r != before {
					t.Fatalf("rejected mutation changed record: %+v -> %+v", before, r)
				}
			} else if r.Status != StatusFor(r.AvailableCopies) {
				t.Fatalf("status %s with %d available", r.Status, r.AvailableCopies)
			}
			if r.AvailableCopies < 0 || r.AvailableCopies > r.TotalCopies {
				t.Fatalf("bounds violated: %d/%d", r.AvailableCopies, r.TotalCopies)
			}
		}
	})
}

func TestNewTransactionRef(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	pattern := regexp.MustCompile(`^TXN-\d{14}-[0-9A-F]{8}$`)

	a := NewTransactionRef(now)
	b := NewTransactionRef(now)
	assert.Regexp(t, pattern, a)
	assert.Contains(t, a, "TXN-20240309140507-")
	assert.NotEqual(t, a, b)
}
