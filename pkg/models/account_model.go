package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a ledger account held by the in-memory store.
type Account struct {
	ID        string
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
	History   History
}

// Clone returns a deep copy that shares no history storage with a.
func (a Account) Clone() Account {
	out := a
	out.History = a.History.Copy()
	return out
}

// Balance is the result of a balance inquiry.
type Balance struct {
	AccountID string
	Balance   decimal.Decimal
	Currency  string
}

// TransferResult holds the post-transfer snapshots of both accounts.
type TransferResult struct {
	Reference uuid.UUID
	Amount    decimal.Decimal
	Currency  string
	Timestamp time.Time
	Sender    Account
	Receiver  Account
}
