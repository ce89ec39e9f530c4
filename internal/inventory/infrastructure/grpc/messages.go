package grpc

import (
	"time"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
)

type IDRequest struct {
	ID int64 `json:"id"`
}

type Empty struct{}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

type Store struct {
	ID           int64     `json:"id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Type         string    `json:"type,omitempty"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	Address      Address   `json:"address"`
	Flag         string    `json:"activeFlag,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

type StoreList struct {
	Stores []Store `json:"stores"`
}

type Inventory struct {
	ID              int64      `json:"id"`
	BookID          int64      `json:"bookId"`
	StoreID         int64      `json:"storeId"`
	TotalCopies     int        `json:"totalCopies"`
	AvailableCopies int        `json:"availableCopies"`
	Status          string     `json:"status"`
	LastRestockedAt *time.Time `json:"lastRestockedAt,omitempty"`
	Flag            string     `json:"activeFlag"`
	Version         int64      `json:"version"`
}

type InventoryList struct {
	Items []Inventory `json:"items"`
}

type CreateInventoryRequest struct {
	BookID          int64  `json:"bookId"`
	StoreID         int64  `json:"storeId"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
	Status          string `json:"status,omitempty"`
}

type RestockRequest struct {
	ID              int64  `json:"id"`
	StoreID         int64  `json:"storeId,omitempty"`
	TotalCopies     int    `json:"totalCopies"`
	AvailableCopies int    `json:"availableCopies"`
	Status          string `json:"status,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

type ListInventoryRequest struct {
	Flag    string `json:"activeFlag,omitempty"`
	StoreID int64  `json:"storeId,omitempty"`
	BookID  int64  `json:"bookId,omitempty"`
}

type UpdateStoreRequest struct {
	ID    int64 `json:"id"`
	Store Store `json:"store"`
}

type Transaction struct {
	ID          int64     `json:"id"`
	InventoryID int64     `json:"inventoryId"`
	Ref         string    `json:"transactionRef"`
	BookID      int64     `json:"bookId"`
	UserID      *int64    `json:"userId,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Quantity    int       `json:"quantity"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"createdAt"`
}

type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
}

func toStore(s domain.Store) Store {
	return Store{
		ID: s.ID, Name: s.Name, Description: s.Description, Type: string(s.Type),
		ContactEmail: s.ContactEmail, ContactPhone: s.ContactPhone,
		Address: Address(s.Address),
		Flag:    string(s.Flag), CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func fromStore(s Store) domain.Store {
	return domain.Store{
		Name: s.Name, Description: s.Description, Type: domain.StoreType(s.Type),
		ContactEmail: s.ContactEmail, ContactPhone: s.ContactPhone,
		Address: domain.Address(s.Address),
	}
}

func toInventory(r domain.Record) Inventory {
	return Inventory{
		ID: r.ID, BookID: r.BookID, StoreID: r.StoreID,
		TotalCopies: r.TotalCopies, AvailableCopies: r.AvailableCopies,
		Status: string(r.Status), LastRestockedAt: r.LastRestockedAt,
		Flag: string(r.Flag), Version: r.Version,
	}
}

func toTransaction(t domain.Transaction) Transaction {
	return Transaction{
		ID: t.ID, InventoryID: t.InventoryID, Ref: t.Ref, BookID: t.BookID, UserID: t.UserID,
		Reason: t.Reason, Quantity: t.Quantity, Action: string(t.Action), CreatedAt: t.CreatedAt,
	}
}
