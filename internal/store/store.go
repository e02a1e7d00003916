// Package store keeps a per-view cache of ledger entries with optimistic
// mutations: every write is applied to the cached snapshot immediately,
// sent to the backend, and rolled back to the exact pre-mutation state if
// the backend refuses it. Reads always see either the pre-mutation or the
// post-mutation snapshot, never a half-applied one.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/abbaskhatri/bynkbook/internal/domain"
)

// DefaultRefreshQuietWindow is how long a view stays unrefreshed after the
// last activity before a background reload fires. Every new activity
// re-arms the timer, so a busy view reloads once per quiet period instead
// of once per action.
const DefaultRefreshQuietWindow = 15 * time.Second

// Key identifies one cached ledger view.
type Key struct {
	BusinessID string
	AccountID  string
	// Filter is the canonical signature of the view's filter state.
	// Distinct filters cache distinct snapshots.
	Filter string
}

// EntriesRemote is the backend boundary the store mutates through.
type EntriesRemote interface {
	List(ctx context.Context, key Key) ([]*domain.Entry, error)
	Create(ctx context.Context, key Key, entry *domain.Entry) (*domain.Entry, error)
	Update(ctx context.Context, key Key, entry *domain.Entry) (*domain.Entry, error)
	SoftDelete(ctx context.Context, key Key, id string) error
	Restore(ctx context.Context, key Key, id string) error
	HardDelete(ctx context.Context, key Key, id string) error
}

// MutationError is what callers see when a mutation is rolled back. The
// raw transport error stays internal; Op and Reason are stable strings a
// UI can render.
type MutationError struct {
	Op     string
	ID     string
	Reason string
	cause  error
}

func (e *MutationError) Error() string {
	if e.ID == "" {
		return e.Op + ": " + e.Reason
	}
	return e.Op + " " + e.ID + ": " + e.Reason
}

func (e *MutationError) Unwrap() error { return e.cause }

// viewState is the cached snapshot for one key.
type viewState struct {
	entries []*domain.Entry
	loaded  bool

	// generation increments on every fetch start; a fetch whose
	// generation is stale by completion time is discarded.
	generation uint64

	refreshTimer *time.Timer
}

// LedgerStore caches ledger views and orchestrates optimistic mutations.
// All methods are safe for concurrent use.
type LedgerStore struct {
	mu     sync.Mutex
	views  map[Key]*viewState
	remote EntriesRemote

	quietWindow time.Duration
	logger      zerolog.Logger

	// onRefresh, when set, observes completed background refreshes.
	onRefresh func(key Key)
}

// Option configures a LedgerStore.
type Option func(*LedgerStore)

// WithQuietWindow overrides the refresh quiet window.
func WithQuietWindow(d time.Duration) Option {
	return func(s *LedgerStore) { s.quietWindow = d }
}

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *LedgerStore) { s.logger = logger }
}

// WithRefreshObserver registers a callback invoked after every completed
// background refresh. Used by tests and by the metrics layer.
func WithRefreshObserver(fn func(key Key)) Option {
	return func(s *LedgerStore) { s.onRefresh = fn }
}

// NewLedgerStore creates a LedgerStore over the given backend.
func NewLedgerStore(remote EntriesRemote, opts ...Option) *LedgerStore {
	s := &LedgerStore{
		views:       make(map[Key]*viewState),
		remote:      remote,
		quietWindow: DefaultRefreshQuietWindow,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entries returns the cached snapshot for a key, loading it synchronously
// on first access. The returned slice is a copy; callers may not mutate
// the cache through it.
func (s *LedgerStore) Entries(ctx context.Context, key Key) ([]*domain.Entry, error) {
	s.mu.Lock()
	view := s.view(key)
	if view.loaded {
		out := copyEntries(view.entries)
		s.mu.Unlock()
		return out, nil
	}
	view.generation++
	gen := view.generation
	s.mu.Unlock()

	entries, err := s.remote.List(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer fetch has started meanwhile; its result wins.
	if view.generation == gen {
		view.entries = entries
		view.loaded = true
	}
	return copyEntries(view.entries), nil
}

// Create optimistically inserts the entry under a temporary id, then
// swaps in the backend's record. On failure the snapshot is restored and
// a MutationError returned.
func (s *LedgerStore) Create(ctx context.Context, key Key, entry *domain.Entry) (*domain.Entry, error) {
	temp := *entry
	temp.ID = domain.TempIDPrefix + ulid.Make().String()

	s.mu.Lock()
	view := s.view(key)
	s.prepareMutation(view)
	snapshot := copyEntries(view.entries)
	view.entries = append(copyEntries(view.entries), &temp)
	s.mu.Unlock()

	created, err := s.remote.Create(ctx, key, entry)
	if err != nil {
		s.rollback(key, snapshot)
		s.logger.Warn().Err(err).Str("op", "create").Msg("mutation rolled back")
		return nil, &MutationError{Op: "create", Reason: "the entry could not be saved", cause: err}
	}

	s.mu.Lock()
	for i, e := range view.entries {
		if e.ID == temp.ID {
			view.entries[i] = created
			break
		}
	}
	s.mu.Unlock()

	s.ScheduleRefresh(key)
	return created, nil
}

// Update optimistically applies the new field values, then confirms with
// the backend.
func (s *LedgerStore) Update(ctx context.Context, key Key, entry *domain.Entry) (*domain.Entry, error) {
	s.mu.Lock()
	view := s.view(key)
	s.prepareMutation(view)
	snapshot := copyEntries(view.entries)
	next := copyEntries(view.entries)
	found := false
	for i, e := range next {
		if e.ID == entry.ID {
			updated := *entry
			next[i] = &updated
			found = true
			break
		}
	}
	view.entries = next
	s.mu.Unlock()

	if !found {
		return nil, &MutationError{Op: "update", ID: entry.ID, Reason: "the entry is no longer in this view"}
	}

	confirmed, err := s.remote.Update(ctx, key, entry)
	if err != nil {
		s.rollback(key, snapshot)
		s.logger.Warn().Err(err).Str("op", "update").Str("entry_id", entry.ID).Msg("mutation rolled back")
		return nil, &MutationError{Op: "update", ID: entry.ID, Reason: "the change could not be saved", cause: err}
	}

	s.mu.Lock()
	for i, e := range view.entries {
		if e.ID == confirmed.ID {
			view.entries[i] = confirmed
			break
		}
	}
	s.mu.Unlock()

	s.ScheduleRefresh(key)
	return confirmed, nil
}

// SoftDelete optimistically marks the entry deleted. A backend not-found
// means the entry is already gone and counts as success.
func (s *LedgerStore) SoftDelete(ctx context.Context, key Key, id string) error {
	now := time.Now().UTC()
	return s.applyDelete(ctx, key, id, "delete", func(e *domain.Entry) {
		at := now
		e.DeletedAt = &at
	}, func(ctx context.Context) error {
		return s.remote.SoftDelete(ctx, key, id)
	})
}

// Restore optimistically clears the deleted marker.
func (s *LedgerStore) Restore(ctx context.Context, key Key, id string) error {
	s.mu.Lock()
	view := s.view(key)
	s.prepareMutation(view)
	snapshot := copyEntries(view.entries)
	next := copyEntries(view.entries)
	for i, e := range next {
		if e.ID == id {
			restored := *e
			restored.DeletedAt = nil
			next[i] = &restored
			break
		}
	}
	view.entries = next
	s.mu.Unlock()

	if err := s.remote.Restore(ctx, key, id); err != nil {
		s.rollback(key, snapshot)
		s.logger.Warn().Err(err).Str("op", "restore").Str("entry_id", id).Msg("mutation rolled back")
		return &MutationError{Op: "restore", ID: id, Reason: "the entry could not be restored", cause: err}
	}

	s.ScheduleRefresh(key)
	return nil
}

// HardDelete optimistically removes the entry from the snapshot entirely.
// Not-found on the backend counts as success.
func (s *LedgerStore) HardDelete(ctx context.Context, key Key, id string) error {
	s.mu.Lock()
	view := s.view(key)
	s.prepareMutation(view)
	snapshot := copyEntries(view.entries)
	next := make([]*domain.Entry, 0, len(view.entries))
	for _, e := range view.entries {
		if e.ID != id {
			next = append(next, copyEntry(e))
		}
	}
	view.entries = next
	s.mu.Unlock()

	if err := s.remote.HardDelete(ctx, key, id); err != nil {
		if isNotFound(err) {
			s.ScheduleRefresh(key)
			return nil
		}
		s.rollback(key, snapshot)
		s.logger.Warn().Err(err).Str("op", "purge").Str("entry_id", id).Msg("mutation rolled back")
		return &MutationError{Op: "purge", ID: id, Reason: "the entry could not be removed", cause: err}
	}

	s.ScheduleRefresh(key)
	return nil
}

// Focus signals that the view became visible again. It re-arms the same
// coalesced refresh the mutations use, so returning to a stale view
// reloads it once the quiet window elapses.
func (s *LedgerStore) Focus(key Key) {
	s.ScheduleRefresh(key)
}

// ScheduleRefresh (re-)arms the background reload for a key. One timer
// slot per key: an already pending refresh is cancelled and replaced, so
// a burst of activity collapses into a single reload.
func (s *LedgerStore) ScheduleRefresh(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.view(key)
	if view.refreshTimer != nil {
		view.refreshTimer.Stop()
	}
	view.refreshTimer = time.AfterFunc(s.quietWindow, func() {
		s.refresh(key)
	})
}

// Invalidate drops the cached snapshot and cancels any pending refresh.
// The next Entries call reloads synchronously.
func (s *LedgerStore) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, ok := s.views[key]
	if !ok {
		return
	}
	if view.refreshTimer != nil {
		view.refreshTimer.Stop()
		view.refreshTimer = nil
	}
	delete(s.views, key)
}

// refresh reloads one view from the backend. The generation counter makes
// overlapping fetches safe: only the most recently started fetch may
// install its result.
func (s *LedgerStore) refresh(key Key) {
	s.mu.Lock()
	view := s.view(key)
	view.generation++
	gen := view.generation
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := s.remote.List(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("business_id", key.BusinessID).
			Str("account_id", key.AccountID).
			Msg("background refresh failed, keeping cached snapshot")
		return
	}

	s.mu.Lock()
	stale := view.generation != gen
	if !stale {
		view.entries = entries
		view.loaded = true
	}
	s.mu.Unlock()

	if stale {
		s.logger.Debug().Str("account_id", key.AccountID).Msg("discarded stale refresh result")
		return
	}
	if s.onRefresh != nil {
		s.onRefresh(key)
	}
}

// applyDelete runs the shared optimistic-delete path for soft deletes.
func (s *LedgerStore) applyDelete(ctx context.Context, key Key, id, op string, mutate func(*domain.Entry), commit func(context.Context) error) error {
	s.mu.Lock()
	view := s.view(key)
	s.prepareMutation(view)
	snapshot := copyEntries(view.entries)
	next := copyEntries(view.entries)
	for i, e := range next {
		if e.ID == id {
			changed := *e
			mutate(&changed)
			next[i] = &changed
			break
		}
	}
	view.entries = next
	s.mu.Unlock()

	if err := commit(ctx); err != nil {
		if isNotFound(err) {
			// Already gone on the backend; the refresh will reconverge.
			s.ScheduleRefresh(key)
			return nil
		}
		s.rollback(key, snapshot)
		s.logger.Warn().Err(err).Str("op", op).Str("entry_id", id).Msg("mutation rolled back")
		return &MutationError{Op: op, ID: id, Reason: "the entry could not be deleted", cause: err}
	}

	s.ScheduleRefresh(key)
	return nil
}

// prepareMutation runs under the lock before an optimistic write: any
// pending refresh is cancelled and the generation bumped, so a slow
// in-flight fetch cannot clobber the optimistic state when it lands.
func (s *LedgerStore) prepareMutation(view *viewState) {
	view.generation++
	if view.refreshTimer != nil {
		view.refreshTimer.Stop()
		view.refreshTimer = nil
	}
}

// rollback restores a key's snapshot exactly as captured.
func (s *LedgerStore) rollback(key Key, snapshot []*domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view(key).entries = snapshot
}

// view returns the state for a key, creating it if absent. Caller holds
// the lock.
func (s *LedgerStore) view(key Key) *viewState {
	v, ok := s.views[key]
	if !ok {
		v = &viewState{}
		s.views[key] = v
	}
	return v
}

// IsPendingID reports whether an id belongs to an optimistic entry the
// backend has not yet acknowledged.
func IsPendingID(id string) bool {
	return strings.HasPrefix(id, domain.TempIDPrefix)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrEntryNotFound) || errors.Is(err, domain.ErrBankTransactionNotFound)
}

func copyEntries(entries []*domain.Entry) []*domain.Entry {
	out := make([]*domain.Entry, len(entries))
	for i, e := range entries {
		out[i] = copyEntry(e)
	}
	return out
}

func copyEntry(e *domain.Entry) *domain.Entry {
	c := *e
	if e.Transfer != nil {
		t := *e.Transfer
		c.Transfer = &t
	}
	if e.Vendor != nil {
		v := *e.Vendor
		c.Vendor = &v
	}
	if e.DeletedAt != nil {
		d := *e.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}
