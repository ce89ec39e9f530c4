package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPublish(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	b := Book{Title: "Dune", TotalCopies: 100, Status: StatusDraft}

	remaining, err := b.Publish(30, now)
	require.NoError(t, err)
	assert.Equal(t, 70, remaining)
	assert.Equal(t, 70, b.TotalCopies)
	assert.Equal(t, StatusPublished, b.Status)
	require.NotNil(t, b.PublishedAt)

	_, err = b.Publish(71, now)
	require.ErrorIs(t, err, ErrInsufficientPrintStock)
	assert.Equal(t, 70, b.TotalCopies)

	remaining, err = b.Publish(70, now)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = b.Publish(0, now)
	require.ErrorIs(t, err, ErrInvalidCopies)
}

func TestPublishArchived(t *testing.T) {
	b := Book{Title: "Old", TotalCopies: 5, Status: StatusArchived}
	_, err := b.Publish(1, time.Now())
	require.ErrorIs(t, err, ErrNotPublishable)
	assert.Equal(t, 5, b.TotalCopies)
}

func TestPublishNeverGoesNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := Book{Title: "x", TotalCopies: rapid.IntRange(0, 1000).Draw(t, "total")}
		for i := 0; i < 10; i++ {
			before := b.TotalCopies
			if _, err := b.Publish(rapid.IntRange(-5, 400).Draw(t, "copies"), time.Now()); err != nil && b.TotalCopies != before {
				t.Fatalf("failed publish changed pool %d -> %d", before, b.TotalCopies)
			}
			if b.TotalCopies < 0 {
				t.Fatalf("negative pool %d", b.TotalCopies)
			}
		}
	})
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, (&Book{}).Validate(), ErrInvalidBook)
	require.ErrorIs(t, (&Book{Title: "a", TotalCopies: -1, AuthorIDs: []int64{1}}).Validate(), ErrInvalidBook)
	require.ErrorIs(t, (&Book{Title: "a"}).Validate(), ErrInvalidBook)
	require.NoError(t, (&Book{Title: "a", AuthorIDs: []int64{1}}).Validate())
}

func TestApplyEditsBook(t *testing.T) {
	b := Book{ID: 3, Title: "Dune", TotalCopies: 10, Status: StatusDraft, AuthorIDs: []int64{1}, Flag: FlagEnabled}

	require.NoError(t, b.Apply(BookChanges{Title: " Dune Messiah ", TotalCopies: 12, Status: StatusReview, AuthorIDs: []int64{1, 2}}))
	assert.Equal(t, "Dune Messiah", b.Title)
	assert.Equal(t, StatusReview, b.Status)
	assert.Equal(t, []int64{1, 2}, b.AuthorIDs)
	assert.Equal(t, int64(3), b.ID)

	require.NoError(t, b.Apply(BookChanges{Title: "Dune Messiah", TotalCopies: 12, AuthorIDs: []int64{1}}))
	assert.Equal(t, StatusReview, b.Status)
}

func TestApplyRefusesPublishing(t *testing.T) {
	b := Book{Title: "Dune", TotalCopies: 10, Status: StatusDraft, AuthorIDs: []int64{1}}

	err := b.Apply(BookChanges{Title: "Dune", TotalCopies: 10, Status: StatusPublished, AuthorIDs: []int64{1}})
	require.ErrorIs(t, err, ErrNotPublishable)
	assert.Equal(t, StatusDraft, b.Status)

	err = b.Apply(BookChanges{Title: "", TotalCopies: 10, AuthorIDs: []int64{1}})
	require.ErrorIs(t, err, ErrInvalidBook)
	assert.Equal(t, "Dune", b.Title)

	require.ErrorIs(t, b.Apply(BookChanges{Title: "Dune", Status: "LOST", AuthorIDs: []int64{1}}), ErrInvalidBook)
}

func TestAuthorValidate(t *testing.T) {
	a := Author{FirstName: " Frank ", LastName: "Herbert", Email: " Frank@Example.com "}
	a.Normalize()
	require.NoError(t, a.Validate())
	assert.Equal(t, "frank@example.com", a.Email)
	assert.Equal(t, FlagEnabled, a.Flag)

	bad := Author{FirstName: "Frank", LastName: "Herbert", Email: "not-an-email"}
	bad.Normalize()
	require.ErrorIs(t, bad.Validate(), ErrInvalidAuthor)

	anon := Author{Email: "a@b.c"}
	anon.Normalize()
	require.ErrorIs(t, anon.Validate(), ErrInvalidAuthor)
}
