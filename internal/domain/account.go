package domain

import "time"

// Account is a bookkeeping account within a business. It carries the
// configured opening balance anchor (amount and date) the running balance
// propagates from, and an optional period lock.
type Account struct {
	ID                  string
	BusinessID          string
	Name                string
	OpeningBalanceCents int64
	OpeningBalanceDate  time.Time
	// PeriodClosedBefore locks writes dated before it. Nil means no
	// closed period.
	PeriodClosedBefore *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidateWritable rejects writes dated inside a closed accounting period.
func (a *Account) ValidateWritable(date time.Time) error {
	if a.PeriodClosedBefore != nil && DateOnly(date).Before(DateOnly(*a.PeriodClosedBefore)) {
		return ErrPeriodClosed
	}
	return nil
}
