package domain

import (
	"sort"
	"strings"
	"time"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeIncome     EntryType = "INCOME"
	EntryTypeExpense    EntryType = "EXPENSE"
	EntryTypeTransfer   EntryType = "TRANSFER"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
	// EntryTypeOpening marks the synthetic opening balance anchor.
	EntryTypeOpening EntryType = "OPENING"
)

// PaymentMethod is the payment rail of an entry.
type PaymentMethod string

const (
	MethodCheck PaymentMethod = "CHECK"
	MethodCard  PaymentMethod = "CARD"
	MethodACH   PaymentMethod = "ACH"
	MethodWire  PaymentMethod = "WIRE"
	MethodCash  PaymentMethod = "CASH"
	MethodOther PaymentMethod = "OTHER"
)

// Well-known entry statuses. Status is free-form; these are the values the
// system itself writes.
const (
	StatusSystem   = "SYSTEM"
	StatusExpected = "EXPECTED"
	StatusCleared  = "CLEARED"
	StatusPosted   = "POSTED"
	StatusPending  = "PENDING"
)

// TransferDirection says which leg of a transfer an entry is.
type TransferDirection string

const (
	TransferIn  TransferDirection = "IN"
	TransferOut TransferDirection = "OUT"
)

const (
	// OpeningBalanceID is the reserved id of the synthetic opening balance
	// anchor. An entry with this id is injected in memory only, never
	// persisted, and is non-editable and non-deletable.
	OpeningBalanceID = "opening_balance"

	// TempIDPrefix marks client-generated ids awaiting server confirmation.
	TempIDPrefix = "tmp_"

	openingPayeePrefix = "opening balance"
)

// TransferLink carries an entry's transfer leg linkage.
type TransferLink struct {
	TransferID         string
	CounterAccountName string
	Direction          TransferDirection
}

// VendorLink carries an entry's vendor linkage.
type VendorLink struct {
	VendorID string
	Name     string
}

// Entry is a ledger record of money movement on an account.
// Amount is signed integer cents: positive inflow, negative outflow.
type Entry struct {
	ID         string
	BusinessID string
	AccountID  string
	Date       time.Time // calendar day, UTC midnight
	Payee      string
	Memo       string
	CategoryID string
	Amount     int64
	Type       EntryType
	Method     PaymentMethod // empty when unknown
	Status     string
	Transfer   *TransferLink
	Vendor     *VendorLink
	DeletedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDeleted reports whether the entry is soft-deleted.
func (e *Entry) IsDeleted() bool {
	return e.DeletedAt != nil
}

// IsOpeningAnchor reports whether the entry anchors the running balance,
// either as the synthetic injected anchor or as a real persisted
// opening-balance-like entry (payee prefix match).
func (e *Entry) IsOpeningAnchor() bool {
	if e.ID == OpeningBalanceID || e.Type == EntryTypeOpening {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(e.Payee)), openingPayeePrefix)
}

// IsPending reports whether the entry still carries a client-generated
// temporary id. Pending entries refuse edit, delete and duplicate.
func (e *Entry) IsPending() bool {
	return strings.HasPrefix(e.ID, TempIDPrefix)
}

// ValidateSign enforces the amount sign convention per type: EXPENSE
// non-positive, INCOME non-negative. ADJUSTMENT is an override mechanism
// and keeps whatever sign the user intends; TRANSFER is signed relative to
// the account owning this leg.
func (e *Entry) ValidateSign() error {
	switch e.Type {
	case EntryTypeExpense:
		if e.Amount > 0 {
			return ErrAmountSignMismatch
		}
	case EntryTypeIncome:
		if e.Amount < 0 {
			return ErrAmountSignMismatch
		}
	}
	return nil
}

// ValidateMutable rejects mutation of entries that must never change:
// the opening anchor and entries pending server confirmation.
func (e *Entry) ValidateMutable() error {
	if e.ID == OpeningBalanceID || e.Type == EntryTypeOpening {
		return ErrOpeningEntryImmutable
	}
	if e.IsPending() {
		return ErrPendingEntry
	}
	return nil
}

// CategoryLabel returns the display label for the entry's category column.
// Transfer legs derive a label from direction and counter-account name;
// this is display text, never a stored category.
func (e *Entry) CategoryLabel(categoryNames map[string]string) string {
	if e.Transfer != nil {
		if e.Transfer.Direction == TransferIn {
			return "From: " + e.Transfer.CounterAccountName
		}
		return "To: " + e.Transfer.CounterAccountName
	}
	if e.CategoryID == "" {
		return ""
	}
	return categoryNames[e.CategoryID]
}

// HasOpeningAnchor reports whether any entry in the set anchors the balance.
func HasOpeningAnchor(entries []*Entry) bool {
	for _, e := range entries {
		if e.IsOpeningAnchor() {
			return true
		}
	}
	return false
}

// SyntheticOpeningEntry builds the injected opening balance anchor for an
// account. It is only added when the persisted set carries no real anchor.
func SyntheticOpeningEntry(businessID, accountID string, amountCents int64, date time.Time) *Entry {
	day := DateOnly(date)
	return &Entry{
		ID:         OpeningBalanceID,
		BusinessID: businessID,
		AccountID:  accountID,
		Date:       day,
		Payee:      "Opening Balance",
		Amount:     amountCents,
		Type:       EntryTypeOpening,
		Status:     StatusSystem,
		CreatedAt:  day,
		UpdatedAt:  day,
	}
}

// DateOnly truncates a timestamp to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortForDisplay orders entries for the ledger view: descending by date,
// tie-broken by descending creation timestamp, newest first.
func SortForDisplay(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// SortChronological orders entries oldest first, the order the balance
// walk and the reconciliation views operate on.
func SortChronological(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
