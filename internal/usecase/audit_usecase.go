package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// AuditUseCase reconstructs the reconciliation audit trail and produces
// the CSV exports.
type AuditUseCase struct {
	matchRepo MatchGroupRepository
	bankRepo  BankTransactionRepository
	entryRepo EntryRepository
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(
	matchRepo MatchGroupRepository,
	bankRepo BankTransactionRepository,
	entryRepo EntryRepository,
) *AuditUseCase {
	return &AuditUseCase{
		matchRepo: matchRepo,
		bankRepo:  bankRepo,
		entryRepo: entryRepo,
	}
}

// ListEventsInput represents the history view's filter state.
type ListEventsInput struct {
	BusinessID        string
	AccountID         string
	Kind              domain.AuditEventKind // empty = all
	BankTransactionID string
	Search            string
}

// ListEvents derives, filters and caps the audit trail. Events are never
// read from storage; they are rebuilt from group records on every call.
func (uc *AuditUseCase) ListEvents(ctx context.Context, input ListEventsInput) ([]domain.AuditEvent, error) {
	groups, err := uc.matchRepo.ListByAccount(ctx, input.BusinessID, input.AccountID, false)
	if err != nil {
		return nil, err
	}

	events := domain.BuildAuditTrail(groups)

	resolver, err := uc.buildResolver(ctx, events)
	if err != nil {
		return nil, err
	}

	return domain.FilterAuditTrail(events, domain.AuditFilter{
		Kind:              input.Kind,
		BankTransactionID: input.BankTransactionID,
		Search:            input.Search,
	}, resolver), nil
}

// ExportEventsCSV renders the audit trail under the exact filter, search
// and cap currently displayed: what you see is what you export.
func (uc *AuditUseCase) ExportEventsCSV(ctx context.Context, input ListEventsInput) ([]byte, error) {
	events, err := uc.ListEvents(ctx, input)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(events)+1)
	rows = append(rows, auditCSVHeader)
	for _, ev := range events {
		reason := ev.Reason
		rows = append(rows, []string{
			input.BusinessID,
			input.AccountID,
			ev.GroupID,
			string(ev.Kind),
			ev.At.UTC().Format(time.RFC3339),
			ev.By,
			strings.Join(ev.BankTxnIDs, ";"),
			strings.Join(ev.EntryIDs, ";"),
			strconv.FormatInt(ev.AmountAbsCents, 10),
			domain.FormatAccounting(ev.AmountAbsCents),
			reason,
		})
	}

	return writeCSV(rows)
}

// ExportActiveMatchesCSV exports the account's active match groups.
func (uc *AuditUseCase) ExportActiveMatchesCSV(ctx context.Context, businessID, accountID string) ([]byte, error) {
	groups, err := uc.matchRepo.ListByAccount(ctx, businessID, accountID, true)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(groups)+1)
	rows = append(rows, matchesCSVHeader)
	for _, g := range groups {
		bankIDs := make([]string, len(g.BankTxns))
		for i, r := range g.BankTxns {
			bankIDs[i] = r.BankTransactionID
		}
		entryIDs := make([]string, len(g.Entries))
		for i, r := range g.Entries {
			entryIDs[i] = r.EntryID
		}

		rows = append(rows, []string{
			businessID,
			accountID,
			g.ID,
			g.CreatedAt.UTC().Format(time.RFC3339),
			g.CreatedBy,
			strings.Join(bankIDs, ";"),
			strings.Join(entryIDs, ";"),
			strconv.FormatInt(g.BankAbsCents(), 10),
			domain.FormatAccounting(g.BankAbsCents()),
		})
	}

	return writeCSV(rows)
}

// ExportBankTransactionsCSV exports the account's bank transactions with
// their derived match state.
func (uc *AuditUseCase) ExportBankTransactionsCSV(ctx context.Context, businessID, accountID string) ([]byte, error) {
	txns, err := uc.bankRepo.ListByAccount(ctx, businessID, accountID, nil, nil, MaxListLimit)
	if err != nil {
		return nil, err
	}
	groups, err := uc.matchRepo.ListByAccount(ctx, businessID, accountID, true)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(txns)+1)
	rows = append(rows, bankTxnCSVHeader)
	for _, t := range txns {
		state := domain.MatchStateFor(t, groups)
		status := "UNMATCHED"
		if state.MatchedCents > 0 {
			status = "MATCHED"
		}
		rows = append(rows, []string{
			businessID,
			accountID,
			t.ID,
			t.PostedAt.UTC().Format("2006-01-02"),
			t.Description,
			strconv.FormatInt(t.Amount, 10),
			domain.FormatAccounting(t.Amount),
			string(t.Source),
			status,
			state.GroupID,
		})
	}

	return writeCSV(rows)
}

// buildResolver batch-loads the display text the free-text search runs
// against.
func (uc *AuditUseCase) buildResolver(ctx context.Context, events []domain.AuditEvent) (domain.AuditTextResolver, error) {
	bankSet := make(map[string]bool)
	entrySet := make(map[string]bool)
	for _, ev := range events {
		for _, id := range ev.BankTxnIDs {
			bankSet[id] = true
		}
		for _, id := range ev.EntryIDs {
			entrySet[id] = true
		}
	}

	resolver := &mapResolver{
		bank:  make(map[string]string, len(bankSet)),
		payee: make(map[string]string, len(entrySet)),
	}

	if len(bankSet) > 0 {
		txns, err := uc.bankRepo.GetByIDs(ctx, keys(bankSet))
		if err != nil {
			return nil, err
		}
		for _, t := range txns {
			resolver.bank[t.ID] = t.Description
		}
	}
	if len(entrySet) > 0 {
		entries, err := uc.entryRepo.GetByIDs(ctx, keys(entrySet))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			resolver.payee[e.ID] = e.Payee
		}
	}

	return resolver, nil
}

type mapResolver struct {
	bank  map[string]string
	payee map[string]string
}

func (r *mapResolver) BankDescription(id string) string { return r.bank[id] }
func (r *mapResolver) EntryPayee(id string) string      { return r.payee[id] }

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
