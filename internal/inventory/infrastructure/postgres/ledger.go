package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/application"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger implements application.Ledger on a pgx pool.
type Ledger struct {
	queries
	log    *slog.Logger
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ application.Ledger = (*Ledger)(nil)

func NewLedger(log *slog.Logger, pool *pgxpool.Pool) *Ledger {
	return &Ledger{
		queries: queries{q: pool},
		log:     log,
		pool:    pool,
		tracer:  otel.Tracer("inventory-postgres"),
	}
}

func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx application.Tx) error) error {
	ctx, span := l.tracer.Start(ctx, "LedgerTx")
	defer span.End()

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, queries{q: tx}); err != nil {
		span.RecordError(err)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		l.log.Error("ledger commit failed", "err", err)
		return err
	}
	return nil
}

type queries struct {
	q querier
}

const storeColumns = `id, name, description, type, contact_email, contact_phone,
	street, city, state, country, postal_code, flag, created_at, updated_at`

func scanStore(row pgx.Row) (domain.Store, error) {
	var st domain.Store
	err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Type, &st.ContactEmail, &st.ContactPhone,
		&st.Address.Street, &st.Address.City, &st.Address.State, &st.Address.Country, &st.Address.PostalCode,
		&st.Flag, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func (s queries) GetStore(ctx context.Context, id int64) (domain.Store, error) {
	st, err := scanStore(s.q.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Store{}, domain.ErrNotFound
	}
	return st, err
}

func (s queries) ListStores(ctx context.Context, flag domain.Flag) ([]domain.Store, error) {
	rows, err := s.q.Query(ctx, `SELECT `+storeColumns+` FROM stores WHERE flag=$1 ORDER BY id`, flag)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s queries) InsertStore(ctx context.Context, st domain.Store) (domain.Store, error) {
	err := s.q.QueryRow(ctx, `INSERT INTO stores (name, description, type, contact_email, contact_phone,
			street, city, state, country, postal_code, flag)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`,
		st.Name, st.Description, st.Type, st.ContactEmail, st.ContactPhone,
		st.Address.Street, st.Address.City, st.Address.State, st.Address.Country, st.Address.PostalCode, st.Flag,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return domain.Store{}, mapErr(err)
	}
	return st, nil
}

func (s queries) UpdateStore(ctx context.Context, st domain.Store) error {
	ct, err := s.q.Exec(ctx, `UPDATE stores SET name=$2, description=$3, type=$4, contact_email=$5, contact_phone=$6,
			street=$7, city=$8, state=$9, country=$10, postal_code=$11, flag=$12, updated_at=now()
		WHERE id=$1`,
		st.ID, st.Name, st.Description, st.Type, st.ContactEmail, st.ContactPhone,
		st.Address.Street, st.Address.City, st.Address.State, st.Address.Country, st.Address.PostalCode, st.Flag)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s queries) StoreNameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var taken bool
	err := s.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stores WHERE name=$1 AND id<>$2)`, name, exceptID).Scan(&taken)
	return taken, err
}

const recordColumns = `id, book_id, store_id, total_copies, available_copies, status,
	last_restocked_at, flag, version, created_at, updated_at`

func scanRecord(row pgx.Row) (domain.Record, error) {
	var r domain.Record
	err := row.Scan(&r.ID, &r.BookID, &r.StoreID, &r.TotalCopies, &r.AvailableCopies, &r.Status,
		&r.LastRestockedAt, &r.Flag, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s queries) GetRecord(ctx context.Context, id int64) (domain.Record, error) {
	r, err := scanRecord(s.q.QueryRow(ctx, `SELECT `+recordColumns+` FROM inventory WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, domain.ErrNotFound
	}
	return r, err
}

func (s queries) FindByBook(ctx context.Context, bookID int64, flag domain.Flag) ([]domain.Record, error) {
	return s.ListRecords(ctx, application.Filter{Flag: flag, BookID: bookID})
}

func (s queries) ListRecords(ctx context.Context, f application.Filter) ([]domain.Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Flag != "" {
		add("flag=$%d", f.Flag)
	}
	if f.StoreID != 0 {
		add("store_id=$%d", f.StoreID)
	}
	if f.BookID != 0 {
		add("book_id=$%d", f.BookID)
	}
	query := `SELECT ` + recordColumns + ` FROM inventory`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := s.q.Query(ctx, query+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s queries) InsertRecord(ctx context.Context, r domain.Record) (domain.Record, error) {
	err := s.q.QueryRow(ctx, `INSERT INTO inventory (book_id, store_id, total_copies, available_copies, status, last_restocked_at, flag)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, version, created_at, updated_at`,
		r.BookID, r.StoreID, r.TotalCopies, r.AvailableCopies, r.Status, r.LastRestockedAt, r.Flag,
	).Scan(&r.ID, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return domain.Record{}, mapErr(err)
	}
	return r, nil
}

// UpdateRecord is a compare-and-set on the version column.
func (s queries) UpdateRecord(ctx context.Context, r domain.Record) (domain.Record, error) {
	err := s.q.QueryRow(ctx, `UPDATE inventory
		SET store_id=$3, total_copies=$4, available_copies=$5, status=$6, last_restocked_at=$7, flag=$8,
			version=version+1, updated_at=now()
		WHERE id=$1 AND version=$2
		RETURNING version, updated_at`,
		r.ID, r.Version, r.StoreID, r.TotalCopies, r.AvailableCopies, r.Status, r.LastRestockedAt, r.Flag,
	).Scan(&r.Version, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.GetRecord(ctx, r.ID); err != nil {
			return domain.Record{}, err
		}
		return domain.Record{}, domain.ErrConcurrentUpdate
	}
	if err != nil {
		return domain.Record{}, mapErr(err)
	}
	return r, nil
}

const txnColumns = `id, inventory_id, transaction_ref, book_id, user_id, reason, quantity, action, flag, created_at`

func scanTxn(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.InventoryID, &t.Ref, &t.BookID, &t.UserID, &t.Reason, &t.Quantity, &t.Action, &t.Flag, &t.CreatedAt)
	return t, err
}

func (s queries) InsertTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	err := s.q.QueryRow(ctx, `INSERT INTO inventory_transactions
		(inventory_id, transaction_ref, book_id, user_id, reason, quantity, action, flag, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		t.InventoryID, t.Ref, t.BookID, t.UserID, t.Reason, t.Quantity, t.Action, t.Flag, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return domain.Transaction{}, mapErr(err)
	}
	return t, nil
}

func (s queries) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	t, err := scanTxn(s.q.QueryRow(ctx, `SELECT `+txnColumns+` FROM inventory_transactions WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return t, err
}

func (s queries) ListTransactions(ctx context.Context, inventoryID int64) ([]domain.Transaction, error) {
	rows, err := s.q.Query(ctx, `SELECT `+txnColumns+` FROM inventory_transactions WHERE inventory_id=$1 ORDER BY id`, inventoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrAlreadyExists)
	}
	return err
}
