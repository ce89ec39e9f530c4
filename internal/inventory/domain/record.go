package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusOutOfStock Status = "OUT_OF_STOCK"
	StatusDamaged    Status = "DAMAGED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOutOfStock, StatusDamaged:
		return true
	}
	return false
}

// Flag is the soft-delete marker. It says nothing about stock levels.
type Flag string

const (
	FlagEnabled  Flag = "ENABLED"
	FlagDisabled Flag = "DISABLED"
)

// Record tracks copies of one book held by one store.
type Record struct {
	ID              int64
	BookID          int64
	StoreID         int64
	TotalCopies     int
	AvailableCopies int
	Status          Status
	LastRestockedAt *time.Time
	Flag            Flag
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPublishedRecord is the placeholder row created when a book is published.
func NewPublishedRecord(bookID, storeID int64) Record {
	return Record{
		BookID:  bookID,
		StoreID: storeID,
		Status:  StatusOutOfStock,
		Flag:    FlagEnabled,
	}
}

// StatusFor derives availability status from the available count.
// DAMAGED is only ever set by an administrator.
func StatusFor(available int) Status {
	if available == 0 {
		return StatusOutOfStock
	}
	return StatusActive
}

// BorrowedCopies is how many copies are currently out.
func (r Record) BorrowedCopies() int { return r.TotalCopies - r.AvailableCopies }

func (r *Record) ApplyBorrow(q int) error {
	if q <= 0 {
		return ErrInvalidQuantity
	}
	if q > r.AvailableCopies {
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, q, r.AvailableCopies)
	}
	r.AvailableCopies -= q
	r.Status = StatusFor(r.AvailableCopies)
	return nil
}

func (r *Record) ApplyReturn(q int) error {
	if q <= 0 {
		return ErrInvalidQuantity
	}
	if maxReturnable := r.BorrowedCopies(); q > maxReturnable {
		return fmt.Errorf("%w: returning %d, borrowed %d", ErrOverReturn, q, maxReturnable)
	}
	r.AvailableCopies += q
	r.Status = StatusFor(r.AvailableCopies)
	return nil
}

// ApplyRestock replaces the copy counts wholesale. An empty status is
// derived from the new available count.
func (r *Record) ApplyRestock(total, available int, status Status, now time.Time) error {
	if total < 0 || available < 0 || available > total {
		return fmt.Errorf("%w: total %d, available %d", ErrInvalidStock, total, available)
	}
	if status == "" {
		status = StatusFor(available)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidStock, status)
	}
	r.TotalCopies = total
	r.AvailableCopies = available
	r.Status = status
	r.LastRestockedAt = &now
	return nil
}

// Apply dispatches a borrow or return.
func (r *Record) Apply(action Action, q int) error {
	switch action {
	case ActionBorrowed:
		return r.ApplyBorrow(q)
	case ActionReturned:
		return r.ApplyReturn(q)
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, action)
}
