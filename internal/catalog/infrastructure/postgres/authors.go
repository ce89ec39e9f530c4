package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
)

const authorColumns = `id, first_name, last_name, email, bio, flag, created_at, updated_at`

func scanAuthor(row pgx.Row) (domain.Author, error) {
	var a domain.Author
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Bio, &a.Flag, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Author{}, domain.ErrAuthorNotFound
	}
	return a, err
}

func authorErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAuthorExists
	}
	return err
}

func (r *Repository) InsertAuthor(ctx context.Context, a domain.Author) (domain.Author, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO authors (first_name, last_name, email, bio, flag)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at`,
		a.FirstName, a.LastName, a.Email, a.Bio, a.Flag,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Author{}, authorErr(err)
	}
	return a, nil
}

func (r *Repository) GetAuthor(ctx context.Context, id int64) (domain.Author, error) {
	return scanAuthor(r.pool.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id=$1`, id))
}

func (r *Repository) ListAuthors(ctx context.Context, flag domain.Flag) ([]domain.Author, error) {
	return r.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors WHERE flag=$1 ORDER BY id`, flag)
}

func (r *Repository) FindAuthors(ctx context.Context, ids []int64) ([]domain.Author, error) {
	return r.queryAuthors(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = ANY($1) ORDER BY id`, nonNil(ids))
}

func (r *Repository) queryAuthors(ctx context.Context, sql string, args ...any) ([]domain.Author, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) ModifyAuthor(ctx context.Context, id int64, mutate func(*domain.Author) error) (domain.Author, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Author{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err := scanAuthor(tx.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return domain.Author{}, err
	}
	if err := mutate(&a); err != nil {
		return domain.Author{}, err
	}
	err = tx.QueryRow(ctx, `UPDATE authors SET first_name=$2, last_name=$3, email=$4, bio=$5, flag=$6, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, a.ID, a.FirstName, a.LastName, a.Email, a.Bio, a.Flag).Scan(&a.UpdatedAt)
	if err != nil {
		return domain.Author{}, authorErr(err)
	}
	return a, tx.Commit(ctx)
}
