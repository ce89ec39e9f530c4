package domain

import "time"

type StoreType string

const (
	StorePhysical StoreType = "PHYSICAL"
	StoreOnline   StoreType = "ONLINE"
)

type Address struct {
	Street     string
	City       string
	State      string
	Country    string
	PostalCode string
}

// Store is a physical or online outlet holding inventory.
type Store struct {
	ID           int64
	Name         string
	Description  string
	Type         StoreType
	ContactEmail string
	ContactPhone string
	Address      Address
	Flag         Flag
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *Store) Normalize() {
	if s.Type == "" {
		s.Type = StorePhysical
	}
	if s.Flag == "" {
		s.Flag = FlagEnabled
	}
}
