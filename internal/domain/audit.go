package domain

import (
	"sort"
	"strings"
	"time"
)

// AuditEventKind distinguishes the two lifecycle events a match group
// can produce.
type AuditEventKind string

const (
	AuditEventCreated AuditEventKind = "CREATED"
	AuditEventVoided  AuditEventKind = "VOIDED"
)

// AuditEventLimit caps retrieval at the most recent events after
// ordering. The cap bounds UI and export cost and is a design constant,
// not user-configurable.
const AuditEventLimit = 500

// AuditEvent is one reconstructed reconciliation history event. Events
// are never persisted separately; they are derived from match group
// records on every read.
type AuditEvent struct {
	GroupID        string
	Kind           AuditEventKind
	At             time.Time
	By             string
	BankTxnIDs     []string
	EntryIDs       []string
	AmountAbsCents int64
	Reason         string // void reason, empty for CREATED
}

// AuditFilter composes as logical AND: kind, bank transaction id and
// free-text search all must hold.
type AuditFilter struct {
	Kind              AuditEventKind // empty = all
	BankTransactionID string
	Search            string
}

// AuditTextResolver supplies the display text a free-text search matches
// against: bank descriptions and entry payees by id. A nil resolver
// restricts search to ids.
type AuditTextResolver interface {
	BankDescription(id string) string
	EntryPayee(id string) string
}

// BuildAuditTrail reconstructs the reconciliation history from match
// group records: one CREATED event per group, plus one VOIDED event for
// every voided group. The result is newest first; exact timestamp ties
// order VOIDED before CREATED, then by group id, so the trail is
// byte-identical across repeated computations on the same input.
func BuildAuditTrail(groups []*MatchGroup) []AuditEvent {
	events := make([]AuditEvent, 0, len(groups)*2)
	for _, g := range groups {
		bankIDs := make([]string, len(g.BankTxns))
		for i, r := range g.BankTxns {
			bankIDs[i] = r.BankTransactionID
		}
		entryIDs := make([]string, len(g.Entries))
		for i, r := range g.Entries {
			entryIDs[i] = r.EntryID
		}

		events = append(events, AuditEvent{
			GroupID:        g.ID,
			Kind:           AuditEventCreated,
			At:             g.CreatedAt,
			By:             g.CreatedBy,
			BankTxnIDs:     bankIDs,
			EntryIDs:       entryIDs,
			AmountAbsCents: g.BankAbsCents(),
		})

		if g.VoidedAt != nil {
			events = append(events, AuditEvent{
				GroupID:        g.ID,
				Kind:           AuditEventVoided,
				At:             *g.VoidedAt,
				By:             g.VoidedBy,
				BankTxnIDs:     bankIDs,
				EntryIDs:       entryIDs,
				AmountAbsCents: g.BankAbsCents(),
				Reason:         g.VoidReason,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.At.Equal(b.At) {
			return a.At.After(b.At)
		}
		if a.Kind != b.Kind {
			return a.Kind == AuditEventVoided
		}
		return a.GroupID < b.GroupID
	})

	return events
}

// FilterAuditTrail applies the AND-composed filter and then the 500-event
// cap. The cap applies after ordering and filtering so the export always
// mirrors exactly what the history view shows.
func FilterAuditTrail(events []AuditEvent, filter AuditFilter, resolver AuditTextResolver) []AuditEvent {
	out := make([]AuditEvent, 0, len(events))
	for _, ev := range events {
		if filter.Kind != "" && ev.Kind != filter.Kind {
			continue
		}
		if filter.BankTransactionID != "" && !containsString(ev.BankTxnIDs, filter.BankTransactionID) {
			continue
		}
		if filter.Search != "" && !auditEventMatches(ev, filter.Search, resolver) {
			continue
		}
		out = append(out, ev)
	}

	if len(out) > AuditEventLimit {
		out = out[:AuditEventLimit]
	}

	return out
}

// auditEventMatches checks a case-insensitive substring match against the
// group id, every referenced id and the resolved display text.
func auditEventMatches(ev AuditEvent, search string, resolver AuditTextResolver) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}

	if strings.Contains(strings.ToLower(ev.GroupID), needle) {
		return true
	}
	for _, id := range ev.BankTxnIDs {
		if strings.Contains(strings.ToLower(id), needle) {
			return true
		}
		if resolver != nil && strings.Contains(strings.ToLower(resolver.BankDescription(id)), needle) {
			return true
		}
	}
	for _, id := range ev.EntryIDs {
		if strings.Contains(strings.ToLower(id), needle) {
			return true
		}
		if resolver != nil && strings.Contains(strings.ToLower(resolver.EntryPayee(id)), needle) {
			return true
		}
	}

	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
