package domain

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func testGroup(id string, createdAt time.Time, voidedAt *time.Time) *MatchGroup {
	g := &MatchGroup{
		ID:        id,
		Status:    MatchGroupActive,
		BankTxns:  []BankTxnRef{{BankTransactionID: "bank-" + id, AmountCents: -1000}},
		Entries:   []EntryRef{{EntryID: "entry-" + id, AmountCents: -1000}},
		CreatedAt: createdAt,
		CreatedBy: "user-1",
	}
	if voidedAt != nil {
		g.Status = MatchGroupVoided
		g.VoidedAt = voidedAt
		g.VoidedBy = "user-2"
		g.VoidReason = "wrong pairing"
	}
	return g
}

func TestBuildAuditTrail_EventsPerGroup(t *testing.T) {
	voidedAt := day("2024-02-10")
	groups := []*MatchGroup{
		testGroup("g1", day("2024-02-01"), &voidedAt),
		testGroup("g2", day("2024-02-05"), nil),
	}

	events := BuildAuditTrail(groups)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	// Newest first: g1 VOIDED (02-10), g2 CREATED (02-05), g1 CREATED (02-01).
	wantOrder := []struct {
		group string
		kind  AuditEventKind
	}{
		{"g1", AuditEventVoided},
		{"g2", AuditEventCreated},
		{"g1", AuditEventCreated},
	}
	for i, w := range wantOrder {
		if events[i].GroupID != w.group || events[i].Kind != w.kind {
			t.Errorf("events[%d] = %s/%s, want %s/%s", i, events[i].GroupID, events[i].Kind, w.group, w.kind)
		}
	}

	if events[0].Reason != "wrong pairing" {
		t.Errorf("void event reason = %q", events[0].Reason)
	}
	if events[0].AmountAbsCents != 1000 {
		t.Errorf("void event amount = %d", events[0].AmountAbsCents)
	}
}

func TestBuildAuditTrail_TieBreaks(t *testing.T) {
	at := day("2024-03-01")
	groups := []*MatchGroup{
		testGroup("gB", at, nil),
		testGroup("gA", at, &at), // created and voided the same instant
	}

	events := BuildAuditTrail(groups)

	// Same timestamp: VOIDED first, then CREATED ordered by group id.
	want := []struct {
		group string
		kind  AuditEventKind
	}{
		{"gA", AuditEventVoided},
		{"gA", AuditEventCreated},
		{"gB", AuditEventCreated},
	}
	for i, w := range want {
		if events[i].GroupID != w.group || events[i].Kind != w.kind {
			t.Errorf("events[%d] = %s/%s, want %s/%s", i, events[i].GroupID, events[i].Kind, w.group, w.kind)
		}
	}
}

func TestBuildAuditTrail_Deterministic(t *testing.T) {
	voidedAt := day("2024-02-10")
	groups := []*MatchGroup{
		testGroup("g1", day("2024-02-01"), &voidedAt),
		testGroup("g2", day("2024-02-01"), nil),
		testGroup("g3", day("2024-02-10"), nil),
	}

	first := BuildAuditTrail(groups)
	second := BuildAuditTrail(groups)

	if !reflect.DeepEqual(first, second) {
		t.Error("audit trail not deterministic across repeated computations")
	}
}

func TestFilterAuditTrail_Cap(t *testing.T) {
	groups := make([]*MatchGroup, 0, AuditEventLimit+50)
	for i := 0; i < AuditEventLimit+50; i++ {
		groups = append(groups, testGroup(fmt.Sprintf("g%04d", i), day("2024-01-01").Add(time.Duration(i)*time.Minute), nil))
	}

	events := FilterAuditTrail(BuildAuditTrail(groups), AuditFilter{}, nil)

	if len(events) != AuditEventLimit {
		t.Fatalf("expected cap of %d, got %d", AuditEventLimit, len(events))
	}
	// Cap keeps the most recent events after ordering.
	if events[0].GroupID != fmt.Sprintf("g%04d", AuditEventLimit+49) {
		t.Errorf("first event = %s, want the newest group", events[0].GroupID)
	}
}

type staticResolver struct {
	bank  map[string]string
	payee map[string]string
}

func (r staticResolver) BankDescription(id string) string { return r.bank[id] }
func (r staticResolver) EntryPayee(id string) string      { return r.payee[id] }

func TestFilterAuditTrail_Filters(t *testing.T) {
	voidedAt := day("2024-02-10")
	groups := []*MatchGroup{
		testGroup("g1", day("2024-02-01"), &voidedAt),
		testGroup("g2", day("2024-02-05"), nil),
	}
	events := BuildAuditTrail(groups)

	resolver := staticResolver{
		bank:  map[string]string{"bank-g1": "Acme Inc payment", "bank-g2": "Utility Co"},
		payee: map[string]string{"entry-g1": "Acme", "entry-g2": "Utilities"},
	}

	tests := []struct {
		name   string
		filter AuditFilter
		want   int
	}{
		{"all", AuditFilter{}, 3},
		{"void kind only", AuditFilter{Kind: AuditEventVoided}, 1},
		{"created kind only", AuditFilter{Kind: AuditEventCreated}, 2},
		{"by bank txn", AuditFilter{BankTransactionID: "bank-g1"}, 2},
		{"search group id", AuditFilter{Search: "G2"}, 1},
		{"search bank description", AuditFilter{Search: "acme"}, 2},
		{"search entry payee", AuditFilter{Search: "utilit"}, 1},
		{"search no match", AuditFilter{Search: "zzz"}, 0},
		{"kind and bank txn compose", AuditFilter{Kind: AuditEventCreated, BankTransactionID: "bank-g1"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterAuditTrail(events, tt.filter, resolver)
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}
