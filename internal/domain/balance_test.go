package domain

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func testEntry(id, date string, amount int64, typ EntryType) *Entry {
	d := day(date)
	return &Entry{
		ID:        id,
		Date:      d,
		Payee:     "payee " + id,
		Amount:    amount,
		Type:      typ,
		CreatedAt: d,
		UpdatedAt: d,
	}
}

// Scenario from the ledger view: opening $1,000.00, expense -$40.00 the
// next day, income +$250.00 the day after.
func TestComputeRunningBalances_SimpleLedger(t *testing.T) {
	entries := []*Entry{
		SyntheticOpeningEntry("biz", "acc", 100000, day("2024-01-01")),
		testEntry("e1", "2024-01-02", -4000, EntryTypeExpense),
		testEntry("e2", "2024-01-03", 25000, EntryTypeIncome),
	}

	balances := ComputeRunningBalances(entries)

	want := map[string]int64{
		OpeningBalanceID: 100000,
		"e1":             96000,
		"e2":             121000,
	}
	for id, w := range want {
		if balances[id] != w {
			t.Errorf("balance[%s] = %d, want %d", id, balances[id], w)
		}
	}
}

func TestComputeRunningBalances_AnchorInvariant(t *testing.T) {
	// The anchor balance equals the configured amount no matter how many
	// entries surround it chronologically.
	entries := []*Entry{
		testEntry("before2", "2023-12-01", -500, EntryTypeExpense),
		testEntry("before1", "2023-12-15", 2000, EntryTypeIncome),
		SyntheticOpeningEntry("biz", "acc", 50000, day("2024-01-01")),
		testEntry("after1", "2024-02-01", -1000, EntryTypeExpense),
	}

	balances := ComputeRunningBalances(entries)

	if balances[OpeningBalanceID] != 50000 {
		t.Fatalf("anchor balance = %d, want 50000", balances[OpeningBalanceID])
	}

	// Backward walk: balance[i] = balance[i+1] - amount[i+1], with the
	// anchor contributing zero movement.
	if balances["before1"] != 50000 {
		t.Errorf("before1 = %d, want 50000", balances["before1"])
	}
	if balances["before2"] != 48000 {
		t.Errorf("before2 = %d, want 48000", balances["before2"])
	}
	if balances["after1"] != 49000 {
		t.Errorf("after1 = %d, want 49000", balances["after1"])
	}
}

func TestComputeRunningBalances_Linearity(t *testing.T) {
	entries := []*Entry{
		SyntheticOpeningEntry("biz", "acc", 0, day("2024-01-01")),
		testEntry("a", "2024-01-02", 100, EntryTypeIncome),
		testEntry("b", "2024-01-03", -30, EntryTypeExpense),
		testEntry("c", "2024-01-03", 70, EntryTypeIncome),
		testEntry("d", "2024-01-05", -500, EntryTypeExpense),
	}

	balances := ComputeRunningBalances(entries)

	ordered := make([]*Entry, len(entries))
	copy(ordered, entries)
	SortChronological(ordered)

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if balances[cur.ID] != balances[prev.ID]+cur.Amount {
			t.Errorf("balance[%s] = %d, want %d + %d", cur.ID, balances[cur.ID], balances[prev.ID], cur.Amount)
		}
	}
}

func TestComputeRunningBalances_NoAnchorAccumulatesFromZero(t *testing.T) {
	entries := []*Entry{
		testEntry("a", "2024-01-02", 100, EntryTypeIncome),
		testEntry("b", "2024-01-03", -40, EntryTypeExpense),
	}

	balances := ComputeRunningBalances(entries)

	if balances["a"] != 100 || balances["b"] != 60 {
		t.Errorf("got a=%d b=%d, want a=100 b=60", balances["a"], balances["b"])
	}
}

func TestComputeRunningBalances_DeletedExclusion(t *testing.T) {
	deleted := testEntry("gone", "2024-01-02", -4000, EntryTypeExpense)
	now := time.Now()
	deleted.DeletedAt = &now

	entries := []*Entry{
		SyntheticOpeningEntry("biz", "acc", 100000, day("2024-01-01")),
		deleted,
		testEntry("e2", "2024-01-03", 25000, EntryTypeIncome),
	}

	balances := ComputeRunningBalances(entries)

	if _, ok := balances["gone"]; ok {
		t.Error("deleted entry received a balance")
	}
	if balances["e2"] != 125000 {
		t.Errorf("e2 = %d, want 125000 (deleted entry must not contribute)", balances["e2"])
	}

	// Re-running without the deleted entry matches exactly.
	without := ComputeRunningBalances([]*Entry{entries[0], entries[2]})
	for id, b := range without {
		if balances[id] != b {
			t.Errorf("balance[%s] = %d, want %d", id, balances[id], b)
		}
	}
}

func TestComputeRunningBalances_RealAnchorByPayeePrefix(t *testing.T) {
	anchor := testEntry("real-open", "2024-01-01", 7500, EntryTypeAdjustment)
	anchor.Payee = "Opening Balance per bank statement"

	entries := []*Entry{
		anchor,
		testEntry("e1", "2024-01-02", 100, EntryTypeIncome),
	}

	balances := ComputeRunningBalances(entries)

	if balances["real-open"] != 7500 {
		t.Errorf("real anchor balance = %d, want 7500", balances["real-open"])
	}
	if balances["e1"] != 7600 {
		t.Errorf("e1 = %d, want 7600", balances["e1"])
	}
}

func TestComputeRunningBalances_Empty(t *testing.T) {
	if got := ComputeRunningBalances(nil); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}
