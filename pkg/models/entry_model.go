package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Entry is one leg of a transfer as seen from the owning account.
// AccountID names the counterparty, not the owner.
type Entry struct {
	AccountID string
	Amount    decimal.Decimal
	Currency  string
	Type      EntryType
	Timestamp time.Time
	Sequence  uint64
	Reference uuid.UUID
}

// History is an account's entries in recording order.
type History []Entry

// Append returns h with entries added at the end.
func (h History) Append(entries ...Entry) History {
	return append(h, entries...)
}

// Copy returns an independent copy of h. A nil history stays nil.
func (h History) Copy() History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}

// Latest returns up to n entries, newest first. Entries with equal timestamps are
// ordered by descending sequence so the later-recorded one comes first.
func (h History) Latest(n int) []Entry {
	if n <= 0 || len(h) == 0 {
		return []Entry{}
	}
	out := make([]Entry, len(h))
	copy(out, h)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Sequence > out[j].Sequence
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
