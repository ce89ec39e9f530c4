package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/outbox"
)

const schema = `
CREATE TABLE IF NOT EXISTS authors (
	id         BIGSERIAL PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	bio        VARCHAR(1000) NOT NULL DEFAULT '',
	flag       TEXT NOT NULL DEFAULT 'ENABLED',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS books (
	id                     BIGSERIAL PRIMARY KEY,
	title                  TEXT NOT NULL,
	genre                  TEXT NOT NULL DEFAULT '',
	synopsis               TEXT NOT NULL DEFAULT '',
	isbn                   TEXT NOT NULL DEFAULT '',
	edition                INT NOT NULL DEFAULT 1,
	suggested_retail_cents BIGINT NOT NULL DEFAULT 0,
	total_copies           INT NOT NULL CHECK (total_copies >= 0),
	status                 TEXT NOT NULL,
	flag                   TEXT NOT NULL DEFAULT 'ENABLED',
	published_at           TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS book_authors (
	book_id   BIGINT NOT NULL REFERENCES books(id),
	author_id BIGINT NOT NULL REFERENCES authors(id),
	PRIMARY KEY (book_id, author_id)
);
CREATE INDEX IF NOT EXISTS idx_book_authors_author ON book_authors(author_id);
`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// EnsureSchema creates the catalog and outbox tables.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, outbox.Schema)
	return err
}

const bookColumns = `id, title, genre, synopsis, isbn, edition, suggested_retail_cents, total_copies,
	status, flag, published_at, created_at, updated_at,
	ARRAY(SELECT author_id FROM book_authors WHERE book_id = books.id ORDER BY author_id)`

func scanBook(row pgx.Row) (domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ID, &b.Title, &b.Genre, &b.Synopsis, &b.ISBN, &b.Edition, &b.SuggestedRetailCents,
		&b.TotalCopies, &b.Status, &b.Flag, &b.PublishedAt, &b.CreatedAt, &b.UpdatedAt, &b.AuthorIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Book{}, domain.ErrNotFound
	}
	return b, err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func linkAuthors(ctx context.Context, tx execer, bookID int64, authorIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM book_authors WHERE book_id=$1`, bookID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `INSERT INTO book_authors (book_id, author_id)
		SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, bookID, authorIDs)
	return err
}

func (r *Repository) Insert(ctx context.Context, b domain.Book) (domain.Book, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Book{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx, `INSERT INTO books (title, genre, synopsis, isbn, edition, suggested_retail_cents, total_copies, status, flag, published_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		b.Title, b.Genre, b.Synopsis, b.ISBN, b.Edition, b.SuggestedRetailCents, b.TotalCopies, b.Status, b.Flag, b.PublishedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Book{}, err
	}
	if err := linkAuthors(ctx, tx, b.ID, b.AuthorIDs); err != nil {
		return domain.Book{}, err
	}
	return b, tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Book, error) {
	return scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id=$1`, id))
}

func (r *Repository) List(ctx context.Context, authorIDs []int64) ([]domain.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookColumns+` FROM books
		WHERE flag='ENABLED'
		  AND (cardinality($1::bigint[]) = 0
		       OR id IN (SELECT book_id FROM book_authors WHERE author_id = ANY($1)))
		ORDER BY id`, nonNil(authorIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func (r *Repository) Modify(ctx context.Context, id int64, mutate func(*domain.Book) error) (domain.Book, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Book{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	b, err := scanBook(tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return domain.Book{}, err
	}
	if err := mutate(&b); err != nil {
		return domain.Book{}, err
	}
	err = tx.QueryRow(ctx, `UPDATE books SET title=$2, genre=$3, synopsis=$4, isbn=$5, edition=$6,
			suggested_retail_cents=$7, total_copies=$8, status=$9, flag=$10, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		b.ID, b.Title, b.Genre, b.Synopsis, b.ISBN, b.Edition, b.SuggestedRetailCents, b.TotalCopies, b.Status, b.Flag,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return domain.Book{}, err
	}
	if err := linkAuthors(ctx, tx, b.ID, b.AuthorIDs); err != nil {
		return domain.Book{}, err
	}
	return b, tx.Commit(ctx)
}

func (r *Repository) PublishWithOutbox(ctx context.Context, id int64, mutate func(*domain.Book) (outbox.Event, error)) (domain.Book, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Book{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	b, err := scanBook(tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return domain.Book{}, err
	}
	ev, err := mutate(&b)
	if err != nil {
		return domain.Book{}, err
	}

	err = tx.QueryRow(ctx, `UPDATE books SET total_copies=$2, status=$3, published_at=$4, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, b.ID, b.TotalCopies, b.Status, b.PublishedAt).Scan(&b.UpdatedAt)
	if err != nil {
		return domain.Book{}, err
	}
	if err := outbox.Enqueue(ctx, tx, ev); err != nil {
		return domain.Book{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		r.log.Error("publish commit failed", "book_id", id, "err", err)
		return domain.Book{}, err
	}
	return b, nil
}
