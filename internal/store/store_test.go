package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// fakeRemote is a controllable backend. Each call can be failed or held
// open from the test body.
type fakeRemote struct {
	mu      sync.Mutex
	entries map[string]*domain.Entry

	listCalls  int
	listErr    error
	listGate   chan struct{} // when non-nil, List blocks until closed
	createErr  error
	updateErr  error
	deleteErr  error
	restoreErr error
}

func newFakeRemote(entries ...*domain.Entry) *fakeRemote {
	r := &fakeRemote{entries: make(map[string]*domain.Entry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeRemote) snapshot() []*domain.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	domain.SortChronological(out)
	return out
}

// List snapshots the backend state at call time, so a held-open call
// returns what the backend looked like when it started.
func (r *fakeRemote) List(ctx context.Context, key Key) ([]*domain.Entry, error) {
	r.mu.Lock()
	r.listCalls++
	gate := r.listGate
	err := r.listErr
	r.mu.Unlock()
	result := r.snapshot()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *fakeRemote) Create(ctx context.Context, key Key, entry *domain.Entry) (*domain.Entry, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	created := *entry
	created.ID = "srv-" + entry.Payee
	r.mu.Lock()
	r.entries[created.ID] = &created
	r.mu.Unlock()
	return &created, nil
}

func (r *fakeRemote) Update(ctx context.Context, key Key, entry *domain.Entry) (*domain.Entry, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.mu.Unlock()
	return entry, nil
}

func (r *fakeRemote) SoftDelete(ctx context.Context, key Key, id string) error {
	return r.deleteErr
}

func (r *fakeRemote) Restore(ctx context.Context, key Key, id string) error {
	return r.restoreErr
}

func (r *fakeRemote) HardDelete(ctx context.Context, key Key, id string) error {
	return r.deleteErr
}

func testKey() Key {
	return Key{BusinessID: "biz-1", AccountID: "acc-1", Filter: "all"}
}

func storeEntry(id string, amount int64) *domain.Entry {
	return &domain.Entry{
		ID: id, BusinessID: "biz-1", AccountID: "acc-1",
		Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Payee: "Acme", Amount: amount, Type: domain.EntryTypeExpense,
	}
}

func TestLedgerStore_EntriesLoadsOnce(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	s := NewLedgerStore(remote)
	ctx := context.Background()

	first, err := s.Entries(ctx, testKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(first))
	}

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.listCalls != 1 {
		t.Errorf("expected 1 backend list, got %d", remote.listCalls)
	}

	// Distinct filter signature is a distinct view.
	other := testKey()
	other.Filter = "deleted"
	if _, err := s.Entries(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.listCalls != 2 {
		t.Errorf("expected new view to fetch, got %d calls", remote.listCalls)
	}
}

func TestLedgerStore_EntriesReturnsCopies(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	s := NewLedgerStore(remote)
	ctx := context.Background()

	first, _ := s.Entries(ctx, testKey())
	first[0].Payee = "mutated"

	second, _ := s.Entries(ctx, testKey())
	if second[0].Payee != "Acme" {
		t.Error("caller mutation leaked into the cache")
	}
}

func TestLedgerStore_CreateReplacesTempID(t *testing.T) {
	remote := newFakeRemote()
	s := NewLedgerStore(remote)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	created, err := s.Create(ctx, testKey(), storeEntry("", -500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if IsPendingID(created.ID) {
		t.Errorf("confirmed entry still has a pending id: %s", created.ID)
	}

	entries, _ := s.Entries(ctx, testKey())
	if len(entries) != 1 {
		t.Fatalf("expected 1 cached entry, got %d", len(entries))
	}
	if entries[0].ID != created.ID {
		t.Errorf("cached id = %s, want %s", entries[0].ID, created.ID)
	}
}

func TestLedgerStore_CreateRollsBackOnFailure(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	remote.createErr = errors.New("boom")
	s := NewLedgerStore(remote)
	ctx := context.Background()

	before, _ := s.Entries(ctx, testKey())

	_, err := s.Create(ctx, testKey(), storeEntry("", -500))
	var mutErr *MutationError
	if !errors.As(err, &mutErr) {
		t.Fatalf("expected MutationError, got %v", err)
	}
	if mutErr.Op != "create" {
		t.Errorf("op = %q", mutErr.Op)
	}

	after, _ := s.Entries(ctx, testKey())
	if len(after) != len(before) {
		t.Fatalf("rollback incomplete: %d entries, want %d", len(after), len(before))
	}
	if after[0].ID != "e1" {
		t.Errorf("surviving entry = %s", after[0].ID)
	}
}

func TestLedgerStore_UpdateRollsBackExactly(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	remote.updateErr = errors.New("boom")
	s := NewLedgerStore(remote)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	changed := storeEntry("e1", -999)
	changed.Memo = "tweaked"
	if _, err := s.Update(ctx, testKey(), changed); err == nil {
		t.Fatal("expected error")
	}

	after, _ := s.Entries(ctx, testKey())
	if after[0].Amount != -100 || after[0].Memo != "" {
		t.Errorf("rollback left partial state: %+v", after[0])
	}
}

func TestLedgerStore_UpdateUnknownEntry(t *testing.T) {
	remote := newFakeRemote()
	s := NewLedgerStore(remote)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	_, err := s.Update(ctx, testKey(), storeEntry("ghost", -1))
	var mutErr *MutationError
	if !errors.As(err, &mutErr) {
		t.Fatalf("expected MutationError, got %v", err)
	}
}

func TestLedgerStore_SoftDeleteNotFoundIsSuccess(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	remote.deleteErr = domain.ErrEntryNotFound
	s := NewLedgerStore(remote)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	if err := s.SoftDelete(ctx, testKey(), "e1"); err != nil {
		t.Errorf("not-found delete must succeed, got %v", err)
	}
	if err := s.HardDelete(ctx, testKey(), "e1"); err != nil {
		t.Errorf("not-found purge must succeed, got %v", err)
	}
}

func TestLedgerStore_SoftDeleteRollsBackOnFailure(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	remote.deleteErr = errors.New("boom")
	s := NewLedgerStore(remote)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	if err := s.SoftDelete(ctx, testKey(), "e1"); err == nil {
		t.Fatal("expected error")
	}

	after, _ := s.Entries(ctx, testKey())
	if after[0].IsDeleted() {
		t.Error("rollback left the entry deleted")
	}
}

func TestLedgerStore_RefreshCoalesces(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	refreshes := make(chan Key, 16)
	s := NewLedgerStore(remote,
		WithQuietWindow(40*time.Millisecond),
		WithRefreshObserver(func(key Key) { refreshes <- key }),
	)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	// A burst of activity re-arms the timer each time; only one reload
	// may fire after the burst goes quiet.
	for i := 0; i < 5; i++ {
		s.Focus(testKey())
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-refreshes:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never fired")
	}

	select {
	case <-refreshes:
		t.Fatal("burst produced more than one refresh")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestLedgerStore_StaleFetchDiscarded(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	refreshes := make(chan Key, 16)
	s := NewLedgerStore(remote,
		WithQuietWindow(5*time.Millisecond),
		WithRefreshObserver(func(key Key) { refreshes <- key }),
	)
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	// Hold the first background fetch open.
	gate := make(chan struct{})
	remote.mu.Lock()
	remote.listGate = gate
	remote.mu.Unlock()
	s.Focus(testKey())

	// Wait for the held fetch to start.
	deadline := time.Now().Add(2 * time.Second)
	for {
		remote.mu.Lock()
		started := remote.listCalls >= 2
		remote.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	// Second refresh starts while the first is still in flight, then the
	// backend state changes and both complete.
	remote.mu.Lock()
	remote.listGate = nil
	remote.entries["e2"] = storeEntry("e2", -200)
	remote.mu.Unlock()
	s.Focus(testKey())

	select {
	case <-refreshes:
	case <-time.After(2 * time.Second):
		t.Fatal("second refresh never completed")
	}

	close(gate) // first fetch finishes last with a stale generation

	time.Sleep(50 * time.Millisecond)
	entries, _ := s.Entries(ctx, testKey())
	if len(entries) != 2 {
		t.Errorf("stale fetch overwrote the newer snapshot: %d entries", len(entries))
	}
}

func TestLedgerStore_MutationInvalidatesInFlightFetch(t *testing.T) {
	remote := newFakeRemote(storeEntry("e1", -100))
	s := NewLedgerStore(remote, WithQuietWindow(5*time.Millisecond))
	ctx := context.Background()

	if _, err := s.Entries(ctx, testKey()); err != nil {
		t.Fatal(err)
	}

	// Hold a background fetch open so it is still in flight when the
	// optimistic write lands.
	gate := make(chan struct{})
	remote.mu.Lock()
	remote.listGate = gate
	remote.mu.Unlock()
	s.Focus(testKey())

	deadline := time.Now().Add(2 * time.Second)
	for {
		remote.mu.Lock()
		started := remote.listCalls >= 2
		remote.mu.Unlock()
		if started {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("refresh never started")
		}
		time.Sleep(time.Millisecond)
	}

	remote.mu.Lock()
	remote.listGate = nil
	remote.mu.Unlock()

	created, err := s.Create(ctx, testKey(), storeEntry("", -500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(gate) // stale fetch finishes after the write

	time.Sleep(50 * time.Millisecond)
	entries, _ := s.Entries(ctx, testKey())
	found := false
	for _, e := range entries {
		if e.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Error("stale fetch dropped the optimistic write")
	}
}
