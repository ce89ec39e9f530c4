package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/application"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ledger implements application.Ledger.
type Ledger struct {
	queries
	db *sql.DB
}

var _ application.Ledger = (*Ledger)(nil)

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{queries: queries{q: db, now: time.Now}, db: db}
}

func (l *Ledger) WithinTx(ctx context.Context, fn func(ctx context.Context, tx application.Tx) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, queries{q: tx, now: l.now}); err != nil {
		return err
	}
	return tx.Commit()
}

type queries struct {
	q   querier
	now func() time.Time
}

func (s queries) stamp() string { return formatTime(s.now()) }

const storeColumns = `id, name, description, type, contact_email, contact_phone,
	street, city, state, country, postal_code, flag, created_at, updated_at`

func scanStore(row interface{ Scan(...any) error }) (domain.Store, error) {
	var (
		st               domain.Store
		created, updated string
	)
	err := row.Scan(&st.ID, &st.Name, &st.Description, &st.Type, &st.ContactEmail, &st.ContactPhone,
		&st.Address.Street, &st.Address.City, &st.Address.State, &st.Address.Country, &st.Address.PostalCode,
		&st.Flag, &created, &updated)
	if err != nil {
		return domain.Store{}, err
	}
	st.CreatedAt = parseTime(created)
	st.UpdatedAt = parseTime(updated)
	return st, nil
}

func (s queries) GetStore(ctx context.Context, id int64) (domain.Store, error) {
	st, err := scanStore(s.q.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Store{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Store{}, fmt.Errorf("getting store: %w", err)
	}
	return st, nil
}

func (s queries) ListStores(ctx context.Context, flag domain.Flag) ([]domain.Store, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE flag = ? ORDER BY id`, string(flag))
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	defer rows.Close()

	var out []domain.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning store: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s queries) InsertStore(ctx context.Context, st domain.Store) (domain.Store, error) {
	now := s.stamp()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO stores (name, description, type, contact_email, contact_phone,
			street, city, state, country, postal_code, flag, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Name, st.Description, string(st.Type), st.ContactEmail, st.ContactPhone,
		st.Address.Street, st.Address.City, st.Address.State, st.Address.Country, st.Address.PostalCode,
		string(st.Flag), now, now)
	if err != nil {
		return domain.Store{}, mapConstraint("inserting store", err)
	}
	if st.ID, err = res.LastInsertId(); err != nil {
		return domain.Store{}, err
	}
	st.CreatedAt = parseTime(now)
	st.UpdatedAt = st.CreatedAt
	return st, nil
}

func (s queries) UpdateStore(ctx context.Context, st domain.Store) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE stores SET name = ?, description = ?, type = ?, contact_email = ?, contact_phone = ?,
			street = ?, city = ?, state = ?, country = ?, postal_code = ?, flag = ?, updated_at = ?
		 WHERE id = ?`,
		st.Name, st.Description, string(st.Type), st.ContactEmail, st.ContactPhone,
		st.Address.Street, st.Address.City, st.Address.State, st.Address.Country, st.Address.PostalCode,
		string(st.Flag), s.stamp(), st.ID)
	if err != nil {
		return mapConstraint("updating store", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s queries) StoreNameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores WHERE name = ? AND id <> ?`, name, exceptID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking store name: %w", err)
	}
	return n > 0, nil
}

const recordColumns = `id, book_id, store_id, total_copies, available_copies, status,
	last_restocked_at, flag, version, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (domain.Record, error) {
	var (
		r                domain.Record
		restocked        sql.NullString
		created, updated string
	)
	err := row.Scan(&r.ID, &r.BookID, &r.StoreID, &r.TotalCopies, &r.AvailableCopies, &r.Status,
		&restocked, &r.Flag, &r.Version, &created, &updated)
	if err != nil {
		return domain.Record{}, err
	}
	if restocked.Valid {
		t := parseTime(restocked.String)
		r.LastRestockedAt = &t
	}
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return r, nil
}

func (s queries) GetRecord(ctx context.Context, id int64) (domain.Record, error) {
	r, err := scanRecord(s.q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM inventory WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("getting inventory: %w", err)
	}
	return r, nil
}

func (s queries) FindByBook(ctx context.Context, bookID int64, flag domain.Flag) ([]domain.Record, error) {
	return s.ListRecords(ctx, application.Filter{Flag: flag, BookID: bookID})
}

func (s queries) ListRecords(ctx context.Context, f application.Filter) ([]domain.Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Flag != "" {
		where = append(where, "flag = ?")
		args = append(args, string(f.Flag))
	}
	if f.StoreID != 0 {
		where = append(where, "store_id = ?")
		args = append(args, f.StoreID)
	}
	if f.BookID != 0 {
		where = append(where, "book_id = ?")
		args = append(args, f.BookID)
	}
	query := `SELECT ` + recordColumns + ` FROM inventory`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	rows, err := s.q.QueryContext(ctx, query+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s queries) InsertRecord(ctx context.Context, r domain.Record) (domain.Record, error) {
	now := s.stamp()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO inventory (book_id, store_id, total_copies, available_copies, status,
			last_restocked_at, flag, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		r.BookID, r.StoreID, r.TotalCopies, r.AvailableCopies, string(r.Status),
		nullTime(r.LastRestockedAt), string(r.Flag), now, now)
	if err != nil {
		return domain.Record{}, mapConstraint("inserting inventory", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return domain.Record{}, err
	}
	r.Version = 1
	r.CreatedAt = parseTime(now)
	r.UpdatedAt = r.CreatedAt
	return r, nil
}

func (s queries) UpdateRecord(ctx context.Context, r domain.Record) (domain.Record, error) {
	now := s.stamp()
	res, err := s.q.ExecContext(ctx,
		`UPDATE inventory SET store_id = ?, total_copies = ?, available_copies = ?, status = ?,
			last_restocked_at = ?, flag = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		r.StoreID, r.TotalCopies, r.AvailableCopies, string(r.Status),
		nullTime(r.LastRestockedAt), string(r.Flag), now, r.ID, r.Version)
	if err != nil {
		return domain.Record{}, mapConstraint("updating inventory", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Record{}, err
	}
	if n == 0 {
		if _, err := s.GetRecord(ctx, r.ID); err != nil {
			return domain.Record{}, err
		}
		return domain.Record{}, domain.ErrConcurrentUpdate
	}
	r.Version++
	r.UpdatedAt = parseTime(now)
	return r, nil
}

const txnColumns = `id, inventory_id, transaction_ref, book_id, user_id, reason, quantity, action, flag, created_at`

func scanTxn(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		t       domain.Transaction
		userID  sql.NullInt64
		created string
	)
	if err := row.Scan(&t.ID, &t.InventoryID, &t.Ref, &t.BookID, &userID, &t.Reason, &t.Quantity, &t.Action, &t.Flag, &created); err != nil {
		return domain.Transaction{}, err
	}
	if userID.Valid {
		t.UserID = &userID.Int64
	}
	t.CreatedAt = parseTime(created)
	return t, nil
}

func (s queries) InsertTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	var userID sql.NullInt64
	if t.UserID != nil {
		userID = sql.NullInt64{Int64: *t.UserID, Valid: true}
	}
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO inventory_transactions (inventory_id, transaction_ref, book_id, user_id, reason, quantity, action, flag, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.InventoryID, t.Ref, t.BookID, userID, t.Reason, t.Quantity, string(t.Action), string(t.Flag), formatTime(t.CreatedAt))
	if err != nil {
		return domain.Transaction{}, mapConstraint("inserting transaction", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

func (s queries) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	t, err := scanTxn(s.q.QueryRowContext(ctx, `SELECT `+txnColumns+` FROM inventory_transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("getting transaction: %w", err)
	}
	return t, nil
}

func (s queries) ListTransactions(ctx context.Context, inventoryID int64) ([]domain.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+txnColumns+` FROM inventory_transactions WHERE inventory_id = ? ORDER BY id`, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func mapConstraint(op string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}
