package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInsufficientStock = errors.New("not enough available copies to borrow")
	ErrOverReturn        = errors.New("cannot return more books than were borrowed")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidStock      = errors.New("copy counts violate 0 <= available <= total")
	ErrUnknownAction     = errors.New("unknown inventory action")
	ErrConcurrentUpdate  = errors.New("inventory record modified concurrently")
)

var ErrInvalidStore = errors.New("store name is required")
