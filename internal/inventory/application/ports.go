package application

import (
	"context"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

// Filter narrows inventory listings. Zero IDs mean "any".
type Filter struct {
	Flag    domain.Flag
	StoreID int64
	BookID  int64
}

type Stores interface {
	GetStore(ctx context.Context, id int64) (domain.Store, error)
	ListStores(ctx context.Context, flag domain.Flag) ([]domain.Store, error)
	InsertStore(ctx context.Context, s domain.Store) (domain.Store, error)
	UpdateStore(ctx context.Context, s domain.Store) error
	StoreNameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
}

type Inventories interface {
	GetRecord(ctx context.Context, id int64) (domain.Record, error)
	FindByBook(ctx context.Context, bookID int64, flag domain.Flag) ([]domain.Record, error)
	ListRecords(ctx context.Context, f Filter) ([]domain.Record, error)
	InsertRecord(ctx context.Context, r domain.Record) (domain.Record, error)
	// UpdateRecord persists r only if the stored version still equals
	// r.Version, and returns domain.ErrConcurrentUpdate otherwise.
	UpdateRecord(ctx context.Context, r domain.Record) (domain.Record, error)
}

type Transactions interface {
	InsertTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (domain.Transaction, error)
	ListTransactions(ctx context.Context, inventoryID int64) ([]domain.Transaction, error)
}

// Tx is a unit of work over every ledger table.
type Tx interface {
	Stores
	Inventories
	Transactions
}

// Ledger is the durable store. Reads outside WithinTx run on their own.
type Ledger interface {
	Tx
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
