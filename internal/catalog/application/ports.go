package application

import (
	"context"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/outbox"
)

type BookRepository interface {
	Insert(ctx context.Context, b domain.Book) (domain.Book, error)
	Get(ctx context.Context, id int64) (domain.Book, error)
	// List returns enabled books, narrowed to those written by any of
	// authorIDs when it is non-empty.
	List(ctx context.Context, authorIDs []int64) ([]domain.Book, error)
	// Modify locks book id, lets mutate change it and saves the result.
	Modify(ctx context.Context, id int64, mutate func(b *domain.Book) error) (domain.Book, error)
	// PublishWithOutbox locks book id, lets mutate change it and build the
	// event, then saves both in one transaction.
	PublishWithOutbox(ctx context.Context, id int64, mutate func(b *domain.Book) (outbox.Event, error)) (domain.Book, error)
}

// AuthorRepository stores authors. Insert and Modify return
// domain.ErrAuthorExists when the email is already used.
type AuthorRepository interface {
	InsertAuthor(ctx context.Context, a domain.Author) (domain.Author, error)
	GetAuthor(ctx context.Context, id int64) (domain.Author, error)
	ListAuthors(ctx context.Context, flag domain.Flag) ([]domain.Author, error)
	FindAuthors(ctx context.Context, ids []int64) ([]domain.Author, error)
	ModifyAuthor(ctx context.Context, id int64, mutate func(a *domain.Author) error) (domain.Author, error)
}
