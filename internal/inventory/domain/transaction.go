package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionStocked  Action = "STOCKED"
	ActionDamaged  Action = "DAMAGED"
	ActionBorrowed Action = "BORROWED"
	ActionReturned Action = "RETURNED"
)

func (a Action) Valid() bool {
	switch a {
	case ActionStocked, ActionDamaged, ActionBorrowed, ActionReturned:
		return true
	}
	return false
}

// Transaction is an append-only ledger entry owned by an inventory record.
type Transaction struct {
	ID          int64
	InventoryID int64
	Ref         string
	BookID      int64
	UserID      *int64
	Reason      string
	Quantity    int
	Action      Action
	Flag        Flag
	CreatedAt   time.Time
}

// NewTransactionRef returns TXN-<yyyyMMddHHmmss>-<8 upper hex>.
func NewTransactionRef(now time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("TXN-%s-%s", now.UTC().Format("20060102150405"), strings.ToUpper(id[:8]))
}
