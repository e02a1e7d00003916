package dto

import (
	"sort"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
	"github.com/abbaskhatri/bynkbook/internal/usecase"
)

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID          string     `json:"id"`
	BusinessID  string     `json:"business_id"`
	AccountID   string     `json:"account_id"`
	Date        time.Time  `json:"date"`
	Payee       string     `json:"payee"`
	Memo        string     `json:"memo,omitempty"`
	CategoryID  string     `json:"category_id,omitempty"`
	AmountCents int64      `json:"amount_cents"`
	Type        string     `json:"type"`
	Method      string     `json:"method,omitempty"`
	Status      string     `json:"status"`
	TransferID  string     `json:"transfer_id,omitempty"`
	VendorID    string     `json:"vendor_id,omitempty"`
	VendorName  string     `json:"vendor_name,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	resp := &EntryResponse{
		ID:          e.ID,
		BusinessID:  e.BusinessID,
		AccountID:   e.AccountID,
		Date:        e.Date,
		Payee:       e.Payee,
		Memo:        e.Memo,
		CategoryID:  e.CategoryID,
		AmountCents: e.Amount,
		Type:        string(e.Type),
		Method:      string(e.Method),
		Status:      e.Status,
		DeletedAt:   e.DeletedAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Transfer != nil {
		resp.TransferID = e.Transfer.TransferID
	}
	if e.Vendor != nil {
		resp.VendorID = e.Vendor.VendorID
		resp.VendorName = e.Vendor.Name
	}
	return resp
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BankTransactionResponse represents a bank transaction in API responses.
type BankTransactionResponse struct {
	ID          string    `json:"id"`
	BusinessID  string    `json:"business_id"`
	AccountID   string    `json:"account_id"`
	PostedAt    time.Time `json:"posted_at"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// BankTransactionFromDomain converts a domain bank transaction to a response.
func BankTransactionFromDomain(t *domain.BankTransaction) *BankTransactionResponse {
	return &BankTransactionResponse{
		ID:          t.ID,
		BusinessID:  t.BusinessID,
		AccountID:   t.AccountID,
		PostedAt:    t.PostedAt,
		Description: t.Description,
		AmountCents: t.Amount,
		Source:      string(t.Source),
		CreatedAt:   t.CreatedAt,
	}
}

// BankTransactionsFromDomain converts domain bank transactions to responses.
func BankTransactionsFromDomain(txns []*domain.BankTransaction) []*BankTransactionResponse {
	result := make([]*BankTransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = BankTransactionFromDomain(t)
	}
	return result
}

// MatchGroupResponse represents a match group in API responses.
type MatchGroupResponse struct {
	ID                 string     `json:"id"`
	BusinessID         string     `json:"business_id"`
	AccountID          string     `json:"account_id"`
	Status             string     `json:"status"`
	BankTransactionIDs []string   `json:"bank_transaction_ids"`
	EntryIDs           []string   `json:"entry_ids"`
	AmountAbsCents     int64      `json:"amount_abs_cents"`
	CreatedAt          time.Time  `json:"created_at"`
	CreatedBy          string     `json:"created_by,omitempty"`
	VoidedAt           *time.Time `json:"voided_at,omitempty"`
	VoidedBy           string     `json:"voided_by,omitempty"`
	VoidReason         string     `json:"void_reason,omitempty"`
}

// MatchGroupFromDomain converts a domain match group to a response.
func MatchGroupFromDomain(g *domain.MatchGroup) *MatchGroupResponse {
	bankIDs := make([]string, len(g.BankTxns))
	for i, r := range g.BankTxns {
		bankIDs[i] = r.BankTransactionID
	}
	entryIDs := make([]string, len(g.Entries))
	for i, r := range g.Entries {
		entryIDs[i] = r.EntryID
	}
	return &MatchGroupResponse{
		ID:                 g.ID,
		BusinessID:         g.BusinessID,
		AccountID:          g.AccountID,
		Status:             string(g.Status),
		BankTransactionIDs: bankIDs,
		EntryIDs:           entryIDs,
		AmountAbsCents:     g.BankAbsCents(),
		CreatedAt:          g.CreatedAt,
		CreatedBy:          g.CreatedBy,
		VoidedAt:           g.VoidedAt,
		VoidedBy:           g.VoidedBy,
		VoidReason:         g.VoidReason,
	}
}

// MatchGroupsFromDomain converts domain match groups to responses.
func MatchGroupsFromDomain(groups []*domain.MatchGroup) []*MatchGroupResponse {
	result := make([]*MatchGroupResponse, len(groups))
	for i, g := range groups {
		result[i] = MatchGroupFromDomain(g)
	}
	return result
}

// GroupResultResponse reports the outcome for one proposal in a batch.
type GroupResultResponse struct {
	Group *MatchGroupResponse `json:"group,omitempty"`
	Error string              `json:"error,omitempty"`
}

// GroupResultsFromUseCase converts batch results to responses.
func GroupResultsFromUseCase(results []usecase.GroupResult) []GroupResultResponse {
	out := make([]GroupResultResponse, len(results))
	for i, r := range results {
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		out[i].Group = MatchGroupFromDomain(r.Group)
	}
	return out
}

// MatchStateResponse represents the match state of one bank transaction.
type MatchStateResponse struct {
	MatchedCents   int64  `json:"matched_cents"`
	RemainingCents int64  `json:"remaining_cents"`
	GroupID        string `json:"group_id,omitempty"`
}

// MatchStateFromDomain converts a domain match state to a response.
func MatchStateFromDomain(s domain.MatchState) MatchStateResponse {
	return MatchStateResponse{
		MatchedCents:   s.MatchedCents,
		RemainingCents: s.RemainingCents,
		GroupID:        s.GroupID,
	}
}

// LedgerRowResponse is the display projection of one entry. BalanceCents
// is null for soft-deleted rows.
type LedgerRowResponse struct {
	Entry           *EntryResponse `json:"entry"`
	BalanceCents    *int64         `json:"balance_cents"`
	CategoryLabel   string         `json:"category_label,omitempty"`
	Matched         bool           `json:"matched"`
	Duplicate       bool           `json:"duplicate"`
	StaleCheck      bool           `json:"stale_check"`
	MissingCategory bool           `json:"missing_category"`
}

// LedgerViewResponse is the assembled ledger page data.
type LedgerViewResponse struct {
	Rows          []LedgerRowResponse `json:"rows"`
	InflowCents   int64               `json:"inflow_cents"`
	OutflowCents  int64               `json:"outflow_cents"`
	NetCents      int64               `json:"net_cents"`
	IssueCount    int                 `json:"issue_count"`
	OpeningAmount int64               `json:"opening_amount_cents"`
}

// LedgerViewFromUseCase converts a ledger view to a response.
func LedgerViewFromUseCase(v *usecase.LedgerView) *LedgerViewResponse {
	rows := make([]LedgerRowResponse, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = LedgerRowResponse{
			Entry:           EntryFromDomain(r.Entry),
			BalanceCents:    r.BalanceCents,
			CategoryLabel:   r.CategoryLabel,
			Matched:         r.Matched,
			Duplicate:       r.Duplicate,
			StaleCheck:      r.StaleCheck,
			MissingCategory: r.MissingCategory,
		}
	}
	return &LedgerViewResponse{
		Rows:          rows,
		InflowCents:   v.InflowCents,
		OutflowCents:  v.OutflowCents,
		NetCents:      v.NetCents,
		IssueCount:    v.IssueCount,
		OpeningAmount: v.OpeningAmount,
	}
}

// AuditEventResponse represents one audit trail event.
type AuditEventResponse struct {
	GroupID            string    `json:"group_id"`
	Event              string    `json:"event"`
	At                 time.Time `json:"at"`
	By                 string    `json:"by,omitempty"`
	BankTransactionIDs []string  `json:"bank_transaction_ids"`
	EntryIDs           []string  `json:"entry_ids"`
	AmountAbsCents     int64     `json:"amount_abs_cents"`
	Reason             string    `json:"reason,omitempty"`
}

// AuditEventsFromDomain converts domain audit events to responses.
func AuditEventsFromDomain(events []domain.AuditEvent) []AuditEventResponse {
	result := make([]AuditEventResponse, len(events))
	for i, e := range events {
		result[i] = AuditEventResponse{
			GroupID:            e.GroupID,
			Event:              string(e.Kind),
			At:                 e.At,
			By:                 e.By,
			BankTransactionIDs: e.BankTxnIDs,
			EntryIDs:           e.EntryIDs,
			AmountAbsCents:     e.AmountAbsCents,
			Reason:             e.Reason,
		}
	}
	return result
}

// ScanResultResponse aggregates one issue scan's findings.
type ScanResultResponse struct {
	DuplicateEntryIDs       []string  `json:"duplicate_entry_ids"`
	StaleCheckEntryIDs      []string  `json:"stale_check_entry_ids"`
	MissingCategoryEntryIDs []string  `json:"missing_category_entry_ids"`
	NotInViewGroupIDs       []string  `json:"not_in_view_group_ids"`
	RevertHeavyBankTxnIDs   []string  `json:"revert_heavy_bank_transaction_ids"`
	AttentionCount          int       `json:"attention_count"`
	ScannedAt               time.Time `json:"scanned_at"`
}

// ScanResultFromUseCase converts a scan result to a response. Map-keyed
// findings come out sorted so repeated scans serialize identically.
func ScanResultFromUseCase(r *usecase.ScanResult) *ScanResultResponse {
	return &ScanResultResponse{
		DuplicateEntryIDs:       sortedKeys(r.Ledger.Duplicates),
		StaleCheckEntryIDs:      sortedKeys(r.Ledger.StaleChecks),
		MissingCategoryEntryIDs: sortedKeys(r.Ledger.MissingCategory),
		NotInViewGroupIDs:       emptyIfNil(r.Reconciliation.NotInView),
		RevertHeavyBankTxnIDs:   emptyIfNil(r.Reconciliation.RevertHeavy),
		AttentionCount:          r.AttentionCount,
		ScannedAt:               r.ScannedAt,
	}
}

// LastScanResponse reports the last recorded scan hint.
type LastScanResponse struct {
	ScannedAt      *time.Time `json:"scanned_at"`
	AttentionCount int        `json:"attention_count"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryFromDomain converts a domain category to a response.
func CategoryFromDomain(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Archived:  c.Archived,
		CreatedAt: c.CreatedAt,
	}
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.Category) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = CategoryFromDomain(c)
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
