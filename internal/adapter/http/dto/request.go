package dto

import (
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// CreateEntryRequest represents a request to create a ledger entry.
type CreateEntryRequest struct {
	Date        time.Time `json:"date"`
	Payee       string    `json:"payee"`
	Memo        string    `json:"memo,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Type        string    `json:"type"`
	Method      string    `json:"method,omitempty"`
	Status      string    `json:"status,omitempty"`
	VendorID    string    `json:"vendor_id,omitempty"`
	VendorName  string    `json:"vendor_name,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput(businessID, accountID string) usecase.CreateEntryInput {
	input := usecase.CreateEntryInput{
		BusinessID:  businessID,
		AccountID:   accountID,
		Date:        r.Date,
		Payee:       r.Payee,
		Memo:        r.Memo,
		CategoryID:  r.CategoryID,
		AmountCents: r.AmountCents,
		Type:        domain.EntryType(r.Type),
		Method:      domain.PaymentMethod(r.Method),
		Status:      r.Status,
	}
	if r.VendorID != "" || r.VendorName != "" {
		input.Vendor = &domain.VendorLink{VendorID: r.VendorID, Name: r.VendorName}
	}
	return input
}

// UpdateEntryRequest represents a partial entry update. Absent fields are
// left untouched.
type UpdateEntryRequest struct {
	Date        *time.Time `json:"date,omitempty"`
	Payee       *string    `json:"payee,omitempty"`
	Memo        *string    `json:"memo,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	Method      *string    `json:"method,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateEntryRequest) ToUseCaseInput(id string) usecase.UpdateEntryInput {
	input := usecase.UpdateEntryInput{
		ID:          id,
		Date:        r.Date,
		Payee:       r.Payee,
		Memo:        r.Memo,
		CategoryID:  r.CategoryID,
		AmountCents: r.AmountCents,
		Status:      r.Status,
	}
	if r.Method != nil {
		m := domain.PaymentMethod(*r.Method)
		input.Method = &m
	}
	return input
}

// CreateTransferRequest represents a request to create a transfer pair.
type CreateTransferRequest struct {
	FromAccountID string    `json:"from_account_id"`
	ToAccountID   string    `json:"to_account_id"`
	AmountCents   int64     `json:"amount_cents"`
	Date          time.Time `json:"date"`
	Memo          string    `json:"memo,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(businessID string) usecase.CreateTransferInput {
	return usecase.CreateTransferInput{
		BusinessID:    businessID,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		AmountCents:   r.AmountCents,
		Date:          r.Date,
		Memo:          r.Memo,
	}
}

// UpdateTransferRequest updates both legs of a transfer.
type UpdateTransferRequest struct {
	Date        *time.Time `json:"date,omitempty"`
	Memo        *string    `json:"memo,omitempty"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransferRequest) ToUseCaseInput(transferID string) usecase.UpdateTransferInput {
	return usecase.UpdateTransferInput{
		TransferID:  transferID,
		Date:        r.Date,
		Memo:        r.Memo,
		AmountCents: r.AmountCents,
	}
}

// IngestBankTransactionRequest represents one incoming bank record.
type IngestBankTransactionRequest struct {
	PostedAt    time.Time `json:"posted_at"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Source      string    `json:"source,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IngestBankTransactionRequest) ToUseCaseInput(businessID, accountID string) usecase.IngestBankTransactionInput {
	source := domain.BankTransactionSource(r.Source)
	if source == "" {
		source = domain.SourceFeed
	}
	return usecase.IngestBankTransactionInput{
		BusinessID:  businessID,
		AccountID:   accountID,
		PostedAt:    r.PostedAt,
		Description: r.Description,
		AmountCents: r.AmountCents,
		Source:      source,
	}
}

// SpawnEntryRequest creates a ledger entry from a bank transaction.
type SpawnEntryRequest struct {
	CategoryID string `json:"category_id,omitempty"`
	Method     string `json:"method,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SpawnEntryRequest) ToUseCaseInput(bankTransactionID string) usecase.SpawnEntryInput {
	return usecase.SpawnEntryInput{
		BankTransactionID: bankTransactionID,
		CategoryID:        r.CategoryID,
		Method:            domain.PaymentMethod(r.Method),
	}
}

// GroupProposalItem represents a single proposal in a batch.
type GroupProposalItem struct {
	BankTransactionIDs []string `json:"bank_transaction_ids"`
	EntryIDs           []string `json:"entry_ids"`
}

// CreateMatchGroupsRequest represents a batch of independent proposals.
type CreateMatchGroupsRequest struct {
	CreatedBy string              `json:"created_by"`
	Proposals []GroupProposalItem `json:"proposals"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMatchGroupsRequest) ToUseCaseInput(businessID, accountID string) usecase.CreateGroupsInput {
	proposals := make([]usecase.GroupProposal, len(r.Proposals))
	for i, p := range r.Proposals {
		proposals[i] = usecase.GroupProposal{
			BankTransactionIDs: p.BankTransactionIDs,
			EntryIDs:           p.EntryIDs,
		}
	}
	return usecase.CreateGroupsInput{
		BusinessID: businessID,
		AccountID:  accountID,
		CreatedBy:  r.CreatedBy,
		Proposals:  proposals,
	}
}

// VoidMatchGroupRequest represents a void request.
type VoidMatchGroupRequest struct {
	VoidedBy string `json:"voided_by"`
	Reason   string `json:"reason"`
}

// ToUseCaseInput converts to use case input.
func (r *VoidMatchGroupRequest) ToUseCaseInput(groupID string) usecase.VoidGroupInput {
	return usecase.VoidGroupInput{
		GroupID:  groupID,
		VoidedBy: r.VoidedBy,
		Reason:   r.Reason,
	}
}

// CreateCategoryRequest represents a request to create a category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}
