package application

import (
	"context"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
)

func (s *Service) CreateAuthor(ctx context.Context, a domain.Author) (domain.Author, error) {
	a.Flag = domain.FlagEnabled
	a.Normalize()
	if err := a.Validate(); err != nil {
		return domain.Author{}, err
	}
	return s.authors.InsertAuthor(ctx, a)
}

func (s *Service) GetAuthor(ctx context.Context, id int64) (domain.Author, error) {
	return s.authors.GetAuthor(ctx, id)
}

// ListAuthors returns enabled authors.
func (s *Service) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	return s.authors.ListAuthors(ctx, domain.FlagEnabled)
}

// UpdateAuthor replaces the author's details. An empty flag keeps the
// current one.
func (s *Service) UpdateAuthor(ctx context.Context, id int64, in domain.Author) (domain.Author, error) {
	return s.authors.ModifyAuthor(ctx, id, func(a *domain.Author) error {
		next := *a
		next.FirstName = in.FirstName
		next.LastName = in.LastName
		next.Email = in.Email
		next.Bio = in.Bio
		if in.Flag != "" {
			next.Flag = in.Flag
		}
		next.Normalize()
		if err := next.Validate(); err != nil {
			return err
		}
		*a = next
		return nil
	})
}

// DeleteAuthor disables an author. Their books are left as they are.
func (s *Service) DeleteAuthor(ctx context.Context, id int64) error {
	_, err := s.authors.ModifyAuthor(ctx, id, func(a *domain.Author) error {
		a.Flag = domain.FlagDisabled
		return nil
	})
	return err
}
