package domain

import (
	"strings"
	"time"
)

// MatchGroupStatus is the lifecycle state of a match group.
// The machine is {none} -> ACTIVE -> VOIDED; VOIDED is terminal and
// re-matching the same items always produces a new group.
type MatchGroupStatus string

const (
	MatchGroupActive MatchGroupStatus = "ACTIVE"
	MatchGroupVoided MatchGroupStatus = "VOIDED"
)

// BankTxnRef is a match group's reference to one bank transaction and the
// signed cents it contributes.
type BankTxnRef struct {
	BankTransactionID string
	AmountCents       int64
}

// EntryRef is a match group's reference to one ledger entry.
type EntryRef struct {
	EntryID     string
	AmountCents int64
}

// MatchGroup is the atomic reconciliation unit: a full-sum pairing of
// one-or-more bank transactions with one-or-more entries.
type MatchGroup struct {
	ID         string
	BusinessID string
	AccountID  string
	Status     MatchGroupStatus
	BankTxns   []BankTxnRef
	Entries    []EntryRef
	CreatedAt  time.Time
	CreatedBy  string
	VoidedAt   *time.Time
	VoidedBy   string
	VoidReason string
}

// BankAbsCents sums the absolute bank-side contributions.
func (g *MatchGroup) BankAbsCents() int64 {
	var sum int64
	for _, r := range g.BankTxns {
		sum += absCents(r.AmountCents)
	}
	return sum
}

// EntryAbsCents sums the absolute entry-side contributions.
func (g *MatchGroup) EntryAbsCents() int64 {
	var sum int64
	for _, r := range g.Entries {
		sum += absCents(r.AmountCents)
	}
	return sum
}

// ReferencesBankTxn reports whether the group references the bank
// transaction id.
func (g *MatchGroup) ReferencesBankTxn(id string) bool {
	for _, r := range g.BankTxns {
		if r.BankTransactionID == id {
			return true
		}
	}
	return false
}

// ReferencesEntry reports whether the group references the entry id.
func (g *MatchGroup) ReferencesEntry(id string) bool {
	for _, r := range g.Entries {
		if r.EntryID == id {
			return true
		}
	}
	return false
}

// ValidateVoid checks a void request. Voiding is the only way to undo a
// match; membership changes require void-then-recreate.
func (g *MatchGroup) ValidateVoid(reason string) error {
	if g.Status == MatchGroupVoided {
		return ErrGroupAlreadyVoided
	}
	if strings.TrimSpace(reason) == "" {
		return ErrVoidReasonRequired
	}
	return nil
}

// Proposal is a candidate match group before creation: the selected bank
// transactions and entries with their signed amounts.
type Proposal struct {
	BankTxns []BankTxnRef
	Entries  []EntryRef
}

// Delta is sum(abs(bank amounts)) - sum(abs(entry amounts)) in cents.
// A proposal is submittable only at delta zero.
func (p *Proposal) Delta() int64 {
	var bank, entry int64
	for _, r := range p.BankTxns {
		bank += absCents(r.AmountCents)
	}
	for _, r := range p.Entries {
		entry += absCents(r.AmountCents)
	}
	return bank - entry
}

// Validate re-checks the proposal independently of any client-side gating:
// non-empty on both sides, all amounts same sign, delta exactly zero.
func (p *Proposal) Validate() error {
	if len(p.BankTxns) == 0 || len(p.Entries) == 0 {
		return ErrEmptyProposal
	}

	sign := 0
	check := func(cents int64) error {
		if cents == 0 {
			return nil
		}
		s := 1
		if cents < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if sign != s {
			return ErrMixedSigns
		}
		return nil
	}

	for _, r := range p.BankTxns {
		if err := check(r.AmountCents); err != nil {
			return err
		}
	}
	for _, r := range p.Entries {
		if err := check(r.AmountCents); err != nil {
			return err
		}
	}

	if p.Delta() != 0 {
		return ErrUnbalancedProposal
	}

	return nil
}

// MatchState is the derived matched/remaining amount for one bank
// transaction. The model is full-match only: either the whole absolute
// amount is matched by an active group or none of it is.
type MatchState struct {
	MatchedCents   int64
	RemainingCents int64
	GroupID        string
}

// MatchStateFor derives the match state of a bank transaction from the
// active groups.
func MatchStateFor(txn *BankTransaction, groups []*MatchGroup) MatchState {
	abs := absCents(txn.Amount)
	for _, g := range groups {
		if g.Status != MatchGroupActive {
			continue
		}
		if g.ReferencesBankTxn(txn.ID) {
			return MatchState{MatchedCents: abs, RemainingCents: 0, GroupID: g.ID}
		}
	}
	return MatchState{MatchedCents: 0, RemainingCents: abs}
}
