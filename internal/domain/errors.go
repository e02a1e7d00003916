package domain

import "errors"

var (
	// Entry errors
	ErrEntryNotFound         = errors.New("entry not found")
	ErrPayeeRequired         = errors.New("payee is required")
	ErrZeroAmount            = errors.New("amount must be non-zero")
	ErrAmountSignMismatch    = errors.New("amount sign does not match entry type")
	ErrPendingEntry          = errors.New("entry is pending server confirmation")
	ErrOpeningEntryImmutable = errors.New("opening balance entry cannot be modified")
	ErrNotDeleted            = errors.New("entry is not deleted")
	ErrTransferLegMissing    = errors.New("transfer requires both legs")

	// Bank transaction errors
	ErrBankTransactionNotFound = errors.New("bank transaction not found")

	// Match group errors
	ErrGroupNotFound      = errors.New("match group not found")
	ErrEmptyProposal      = errors.New("proposal must reference at least one bank transaction and one entry")
	ErrMixedSigns         = errors.New("proposal mixes positive and negative amounts")
	ErrUnbalancedProposal = errors.New("bank and entry absolute amounts do not sum to zero difference")
	ErrItemAlreadyMatched = errors.New("item already belongs to an active match group")
	ErrGroupAlreadyVoided = errors.New("match group is already voided")
	ErrVoidReasonRequired = errors.New("void reason is required")

	// Business rules
	ErrPeriodClosed         = errors.New("accounting period is closed")
	ErrAccountNotFound      = errors.New("account not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameRequired = errors.New("category name is required")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)
