package domain

import (
	"sort"
	"time"
)

// BankTransactionSource tags where a bank transaction came from.
type BankTransactionSource string

const (
	SourceFeed BankTransactionSource = "FEED"
	SourceCSV  BankTransactionSource = "CSV"
)

// BankTransaction is an externally sourced, immutable record of a
// bank-reported movement. It is never edited, only matched or used to
// spawn a new entry.
type BankTransaction struct {
	ID          string
	BusinessID  string
	AccountID   string
	PostedAt    time.Time // calendar day
	Description string
	Amount      int64 // signed cents
	Source      BankTransactionSource
	CreatedAt   time.Time
}

// SortBankTransactions orders bank transactions oldest first with id as
// the deterministic tie-break, the reconciliation view order.
func SortBankTransactions(txns []*BankTransaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].PostedAt.Equal(txns[j].PostedAt) {
			return txns[i].PostedAt.Before(txns[j].PostedAt)
		}
		return txns[i].ID < txns[j].ID
	})
}
