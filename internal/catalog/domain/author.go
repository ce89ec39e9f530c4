package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Flag is the soft-delete marker shared by authors and books.
type Flag string

const (
	FlagEnabled  Flag = "ENABLED"
	FlagDisabled Flag = "DISABLED"
)

func (f Flag) Valid() bool { return f == FlagEnabled || f == FlagDisabled }

var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorExists   = errors.New("author already exists")
	ErrInvalidAuthor  = errors.New("invalid author")
)

type Author struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Bio       string
	Flag      Flag
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize trims the author's fields and lower-cases the email, which is
// the author's unique key.
func (a *Author) Normalize() {
	a.FirstName = strings.TrimSpace(a.FirstName)
	a.LastName = strings.TrimSpace(a.LastName)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	if a.Flag == "" {
		a.Flag = FlagEnabled
	}
}

func (a *Author) Validate() error {
	if a.FirstName == "" || a.LastName == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidAuthor)
	}
	if _, err := mail.ParseAddress(a.Email); err != nil || a.Email == "" {
		return fmt.Errorf("%w: email %q", ErrInvalidAuthor, a.Email)
	}
	if len(a.Bio) > 1000 {
		return fmt.Errorf("%w: bio longer than 1000 characters", ErrInvalidAuthor)
	}
	if !a.Flag.Valid() {
		return fmt.Errorf("%w: flag %q", ErrInvalidAuthor, a.Flag)
	}
	return nil
}
