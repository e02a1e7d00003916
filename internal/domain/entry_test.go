package domain

import (
	"errors"
	"testing"
)

func TestEntry_ValidateSign(t *testing.T) {
	tests := []struct {
		name    string
		typ     EntryType
		amount  int64
		wantErr bool
	}{
		{"expense negative", EntryTypeExpense, -100, false},
		{"expense zero", EntryTypeExpense, 0, false},
		{"expense positive rejected", EntryTypeExpense, 100, true},
		{"income positive", EntryTypeIncome, 100, false},
		{"income negative rejected", EntryTypeIncome, -100, true},
		{"adjustment keeps any sign", EntryTypeAdjustment, -100, false},
		{"transfer signed relative to owning account", EntryTypeTransfer, -100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Type: tt.typ, Amount: tt.amount}
			err := e.ValidateSign()
			if tt.wantErr && !errors.Is(err, ErrAmountSignMismatch) {
				t.Errorf("expected sign mismatch, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEntry_ValidateMutable(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"regular entry", Entry{ID: "e1", Type: EntryTypeExpense}, nil},
		{"synthetic anchor", Entry{ID: OpeningBalanceID, Type: EntryTypeOpening}, ErrOpeningEntryImmutable},
		{"pending temp id", Entry{ID: TempIDPrefix + "abc", Type: EntryTypeExpense}, ErrPendingEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.ValidateMutable()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEntry_IsOpeningAnchor(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"reserved id", Entry{ID: OpeningBalanceID}, true},
		{"opening type", Entry{ID: "e1", Type: EntryTypeOpening}, true},
		{"payee prefix", Entry{ID: "e1", Payee: "Opening Balance from bank"}, true},
		{"payee prefix case folded", Entry{ID: "e1", Payee: "  OPENING BALANCE  "}, true},
		{"regular", Entry{ID: "e1", Payee: "Coffee"}, false},
		{"payee contains but not prefix", Entry{ID: "e1", Payee: "re: opening balance"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.IsOpeningAnchor(); got != tt.want {
				t.Errorf("IsOpeningAnchor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntry_CategoryLabel(t *testing.T) {
	names := map[string]string{"c1": "Rent"}

	in := Entry{Transfer: &TransferLink{TransferID: "t1", CounterAccountName: "Savings", Direction: TransferIn}}
	if got := in.CategoryLabel(names); got != "From: Savings" {
		t.Errorf("transfer-in label = %q", got)
	}

	out := Entry{Transfer: &TransferLink{TransferID: "t1", CounterAccountName: "Savings", Direction: TransferOut}}
	if got := out.CategoryLabel(names); got != "To: Savings" {
		t.Errorf("transfer-out label = %q", got)
	}

	plain := Entry{CategoryID: "c1"}
	if got := plain.CategoryLabel(names); got != "Rent" {
		t.Errorf("category label = %q", got)
	}

	none := Entry{}
	if got := none.CategoryLabel(names); got != "" {
		t.Errorf("empty label = %q", got)
	}
}

func TestSortForDisplay(t *testing.T) {
	a := testEntry("a", "2024-01-01", 1, EntryTypeIncome)
	b := testEntry("b", "2024-01-03", 1, EntryTypeIncome)
	c := testEntry("c", "2024-01-03", 1, EntryTypeIncome)
	c.CreatedAt = c.CreatedAt.Add(1) // created after b on the same day

	entries := []*Entry{a, b, c}
	SortForDisplay(entries)

	want := []string{"c", "b", "a"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("display[%d] = %s, want %s", i, entries[i].ID, id)
		}
	}

	SortChronological(entries)
	want = []string{"a", "b", "c"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("chronological[%d] = %s, want %s", i, entries[i].ID, id)
		}
	}
}

func TestHasOpeningAnchor(t *testing.T) {
	plain := []*Entry{testEntry("a", "2024-01-01", 1, EntryTypeIncome)}
	if HasOpeningAnchor(plain) {
		t.Error("plain set reported an anchor")
	}

	withAnchor := append(plain, SyntheticOpeningEntry("biz", "acc", 100, day("2024-01-01")))
	if !HasOpeningAnchor(withAnchor) {
		t.Error("anchored set reported no anchor")
	}
}
