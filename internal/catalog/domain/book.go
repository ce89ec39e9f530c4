package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusReview    Status = "REVIEW"
	StatusPublished Status = "PUBLISHED"
	StatusArchived  Status = "ARCHIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished, StatusArchived:
		return true
	}
	return false
}

var (
	ErrNotFound               = errors.New("book not found")
	ErrInvalidBook            = errors.New("invalid book")
	ErrInvalidCopies          = errors.New("published copies must be positive")
	ErrInsufficientPrintStock = errors.New("published copies exceed total copies")
	ErrNotPublishable         = errors.New("book cannot be published")
)

// Book is a title in the catalog. TotalCopies is the printed pool not yet
// released to stores.
type Book struct {
	ID                   int64
	Title                string
	Genre                string
	Synopsis             string
	ISBN                 string
	Edition              int
	SuggestedRetailCents int64
	TotalCopies          int
	Status               Status
	AuthorIDs            []int64
	Flag                 Flag
	PublishedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBook)
	}
	if b.TotalCopies < 0 {
		return fmt.Errorf("%w: total copies must not be negative", ErrInvalidBook)
	}
	if b.SuggestedRetailCents < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidBook)
	}
	if len(b.AuthorIDs) == 0 {
		return fmt.Errorf("%w: at least one author is required", ErrInvalidBook)
	}
	return nil
}

// BookChanges are the editable fields of a book. An empty Status keeps the
// current one.
type BookChanges struct {
	Title                string
	Genre                string
	Synopsis             string
	ISBN                 string
	Edition              int
	SuggestedRetailCents int64
	TotalCopies          int
	Status               Status
	AuthorIDs            []int64
}

// Apply edits b in place. Books only become PUBLISHED through Publish.
func (b *Book) Apply(c BookChanges) error {
	if c.Status != "" {
		if !c.Status.Valid() {
			return fmt.Errorf("%w: status %q", ErrInvalidBook, c.Status)
		}
		if c.Status == StatusPublished && b.Status != StatusPublished {
			return fmt.Errorf("%w: books are published through publish", ErrNotPublishable)
		}
	}
	next := *b
	next.Title = strings.TrimSpace(c.Title)
	next.Genre = c.Genre
	next.Synopsis = c.Synopsis
	next.ISBN = c.ISBN
	next.Edition = c.Edition
	next.SuggestedRetailCents = c.SuggestedRetailCents
	next.TotalCopies = c.TotalCopies
	next.AuthorIDs = c.AuthorIDs
	if c.Status != "" {
		next.Status = c.Status
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*b = next
	return nil
}

// Publish releases copies from the printed pool and returns how many remain.
// Publishing again releases a further batch.
func (b *Book) Publish(copies int, now time.Time) (int, error) {
	if copies <= 0 {
		return 0, ErrInvalidCopies
	}
	if b.Status == StatusArchived || b.Flag == FlagDisabled {
		return 0, fmt.Errorf("%w: status %s, flag %s", ErrNotPublishable, b.Status, b.Flag)
	}
	if copies > b.TotalCopies {
		return 0, fmt.Errorf("%w: requested %d, have %d", ErrInsufficientPrintStock, copies, b.TotalCopies)
	}
	b.TotalCopies -= copies
	b.Status = StatusPublished
	b.PublishedAt = &now
	return b.TotalCopies, nil
}
