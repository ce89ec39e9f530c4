package application

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/events"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/outbox"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/tracing"
)

const EventBookPublished = "BookPublished"

type Service struct {
	repo    BookRepository
	authors AuthorRepository
	now     func() time.Time
	tracer  trace.Tracer
}

func NewService(repo BookRepository, authors AuthorRepository) *Service {
	return &Service{repo: repo, authors: authors, now: time.Now, tracer: otel.Tracer("catalog-service")}
}

// CreateBook stores a new DRAFT book. Every author must exist and be enabled.
func (s *Service) CreateBook(ctx context.Context, b domain.Book) (domain.Book, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.AuthorIDs = uniqueIDs(b.AuthorIDs)
	if err := b.Validate(); err != nil {
		return domain.Book{}, err
	}
	if err := s.checkAuthors(ctx, b.AuthorIDs); err != nil {
		return domain.Book{}, err
	}
	b.Status = domain.StatusDraft
	b.Flag = domain.FlagEnabled
	b.PublishedAt = nil
	return s.repo.Insert(ctx, b)
}

func (s *Service) GetBook(ctx context.Context, id int64) (domain.Book, error) {
	return s.repo.Get(ctx, id)
}

// UpdateBook edits an enabled book. It cannot publish it.
func (s *Service) UpdateBook(ctx context.Context, id int64, c domain.BookChanges) (domain.Book, error) {
	c.AuthorIDs = uniqueIDs(c.AuthorIDs)
	if err := s.checkAuthors(ctx, c.AuthorIDs); err != nil {
		return domain.Book{}, err
	}
	return s.repo.Modify(ctx, id, func(b *domain.Book) error {
		if b.Flag == domain.FlagDisabled {
			return domain.ErrNotFound
		}
		return b.Apply(c)
	})
}

// ListBooks returns enabled books, optionally only those by authorIDs.
func (s *Service) ListBooks(ctx context.Context, authorIDs []int64) ([]domain.Book, error) {
	return s.repo.List(ctx, uniqueIDs(authorIDs))
}

// DeleteBook disables a book. Deleting twice is not an error.
func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	_, err := s.repo.Modify(ctx, id, func(b *domain.Book) error {
		b.Flag = domain.FlagDisabled
		return nil
	})
	return err
}

func (s *Service) checkAuthors(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one author is required", domain.ErrInvalidBook)
	}
	found, err := s.authors.FindAuthors(ctx, ids)
	if err != nil {
		return fmt.Errorf("find authors: %w", err)
	}
	enabled := make(map[int64]bool, len(found))
	for _, a := range found {
		if a.Flag == domain.FlagEnabled {
			enabled[a.ID] = true
		}
	}
	for _, id := range ids {
		if !enabled[id] {
			return fmt.Errorf("%w: %d", domain.ErrAuthorNotFound, id)
		}
	}
	return nil
}

// uniqueIDs drops duplicates and sorts ids.
func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Publish releases copies of book id to the stores. The book.published
// event is queued in the same transaction as the book update.
func (s *Service) Publish(ctx context.Context, id int64, copies int) (domain.Book, error) {
	ctx, span := s.tracer.Start(ctx, "PublishBook", trace.WithAttributes(
		attribute.Int64("book.id", id),
		attribute.Int("book.published_copies", copies),
	))
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	book, err := s.repo.PublishWithOutbox(ctx, id, func(b *domain.Book) (outbox.Event, error) {
		remaining, err := b.Publish(copies, s.now().UTC())
		if err != nil {
			return outbox.Event{}, err
		}
		payload, err := events.Encode(events.PublishEvent{
			Book:            events.BookRef{ID: b.ID, Title: b.Title, ISBN: b.ISBN, Status: string(b.Status)},
			PublishedCopies: copies,
			RemainingCopies: remaining,
		})
		if err != nil {
			return outbox.Event{}, fmt.Errorf("encode publish event: %w", err)
		}
		return outbox.Event{
			AggregateType: "book",
			AggregateID:   strconv.FormatInt(b.ID, 10),
			Type:          EventBookPublished,
			Payload:       payload,
			Headers:       map[string]string{"source": "catalog-service"},
			Traceparent:   carrier.Get(tracing.TraceparentHeader),
		}, nil
	})
	if err != nil {
		span.RecordError(err)
		return domain.Book{}, err
	}
	return book, nil
}
