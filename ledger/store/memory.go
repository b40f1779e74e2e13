// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/finance-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is a ledger.TxStore kept in process memory. WithTx works on a copy
// of the data and swaps it in only when the callback succeeds.
type Memory struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	accounts   map[ledger.AccountID]ledger.Account
	categories map[ledger.CategoryID]ledger.Category
	entries    map[ledger.EntryID]ledger.Entry
	order      []ledger.EntryID // insertion order, used for stable ties
}

func NewMemory() *Memory {
	return &Memory{state: newState()}
}

func newState() *state {
	return &state{
		accounts:   make(map[ledger.AccountID]ledger.Account),
		categories: make(map[ledger.CategoryID]ledger.Category),
		entries:    make(map[ledger.EntryID]ledger.Entry),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	c.order = append([]ledger.EntryID(nil), s.order...)
	return c
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

func (m *Memory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *Memory) GetAccount(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.GetAccount(ctx, owner, id)
}

func (m *Memory) ListAccounts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ListAccounts(ctx, owner)
}

func (m *Memory) AddBalance(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AddBalance(ctx, owner, id, delta)
}

func (m *Memory) GetEntry(ctx context.Context, owner ledger.OwnerID, id ledger.EntryID) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.GetEntry(ctx, owner, id)
}

func (m *Memory) InsertEntry(ctx context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.InsertEntry(ctx, e)
}

func (m *Memory) UpdateEntry(ctx context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.UpdateEntry(ctx, e)
}

func (m *Memory) DeleteEntry(ctx context.Context, owner ledger.OwnerID, id ledger.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.DeleteEntry(ctx, owner, id)
}

func (m *Memory) ListEntries(ctx context.Context, owner ledger.OwnerID, filter ledger.ListFilter) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ListEntries(ctx, owner, filter)
}

// =============================================================================
// ACCOUNTS & CATEGORIES
// =============================================================================

// CreateAccount stores a new account. Balance starts at OpeningBalance.
func (m *Memory) CreateAccount(_ context.Context, acc ledger.Account) (*ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if acc.ID == "" {
		acc.ID = ledger.AccountID(uuid.NewString())
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	acc.Balance = acc.OpeningBalance
	m.state.accounts[acc.ID] = acc
	return &acc, nil
}

// FindAccountByName matches names case-insensitively within an owner. With
// duplicates the oldest account wins, then the lowest ID.
func (m *Memory) FindAccountByName(_ context.Context, owner ledger.OwnerID, name string) (*ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *ledger.Account
	for _, acc := range m.state.accounts {
		if acc.OwnerID != owner || !strings.EqualFold(acc.Name, name) {
			continue
		}
		if found == nil || createdBefore(acc.CreatedAt, string(acc.ID), found.CreatedAt, string(found.ID)) {
			acc := acc
			found = &acc
		}
	}
	return found, nil
}

// createdBefore orders rows by creation second, then ID. Creation times are
// compared at second precision, the resolution the sqlite store keeps.
func createdBefore(at time.Time, id string, otherAt time.Time, otherID string) bool {
	at, otherAt = at.Truncate(time.Second), otherAt.Truncate(time.Second)
	if !at.Equal(otherAt) {
		return at.Before(otherAt)
	}
	return id < otherID
}

func (m *Memory) CreateCategory(_ context.Context, c ledger.Category) (*ledger.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = ledger.CategoryID(uuid.NewString())
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.state.categories[c.ID] = c
	return &c, nil
}

func (m *Memory) FindCategoryByName(_ context.Context, owner ledger.OwnerID, name string, kind ledger.Kind) (*ledger.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *ledger.Category
	for _, c := range m.state.categories {
		if c.OwnerID != owner || c.Type != kind || !strings.EqualFold(c.Name, name) {
			continue
		}
		if found == nil || createdBefore(c.CreatedAt, string(c.ID), found.CreatedAt, string(found.ID)) {
			c := c
			found = &c
		}
	}
	return found, nil
}

func (m *Memory) ListCategories(_ context.Context, owner ledger.OwnerID) ([]ledger.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Category
	for _, c := range m.state.categories {
		if c.OwnerID == owner {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListOwners returns every owner holding at least one account, sorted.
func (m *Memory) ListOwners(_ context.Context) ([]ledger.OwnerID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[ledger.OwnerID]bool)
	var out []ledger.OwnerID
	for _, a := range m.state.accounts {
		if !seen[a.OwnerID] {
			seen[a.OwnerID] = true
			out = append(out, a.OwnerID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// =============================================================================
// STATE - unlocked ledger.Store used directly and inside WithTx
// =============================================================================

func (s *state) GetAccount(_ context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	acc, ok := s.accounts[id]
	if !ok || acc.OwnerID != owner {
		return nil, nil
	}
	return &acc, nil
}

func (s *state) ListAccounts(_ context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	var out []ledger.Account
	for _, acc := range s.accounts {
		if acc.OwnerID == owner {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *state) AddBalance(_ context.Context, owner ledger.OwnerID, id ledger.AccountID, delta int64) error {
	acc, ok := s.accounts[id]
	if !ok || acc.OwnerID != owner {
		return ledger.ErrAccountNotFound
	}
	acc.Balance += delta
	s.accounts[id] = acc
	return nil
}

func (s *state) GetEntry(_ context.Context, owner ledger.OwnerID, id ledger.EntryID) (*ledger.Entry, error) {
	e, ok := s.entries[id]
	if !ok || e.OwnerID != owner {
		return nil, nil
	}
	return &e, nil
}

func (s *state) InsertEntry(_ context.Context, e ledger.Entry) error {
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
	return nil
}

func (s *state) UpdateEntry(_ context.Context, e ledger.Entry) error {
	existing, ok := s.entries[e.ID]
	if !ok || existing.OwnerID != e.OwnerID {
		return ledger.ErrNotFound
	}
	s.entries[e.ID] = e
	return nil
}

func (s *state) DeleteEntry(_ context.Context, owner ledger.OwnerID, id ledger.EntryID) error {
	e, ok := s.entries[id]
	if !ok || e.OwnerID != owner {
		return nil
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *state) ListEntries(_ context.Context, owner ledger.OwnerID, f ledger.ListFilter) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, id := range s.order {
		e := s.entries[id]
		if e.OwnerID != owner || !matches(e, f) {
			continue
		}
		out = append(out, e)
	}

	desc := f.Sort == ledger.SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Date > out[j].Date
		}
		return out[i].Date < out[j].Date
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(e ledger.Entry, f ledger.ListFilter) bool {
	if f.CategoryID != "" && e.CategoryID != f.CategoryID {
		return false
	}
	if f.AccountID != "" && e.AccountID != f.AccountID &&
		e.FromAccountID != f.AccountID && e.ToAccountID != f.AccountID {
		return false
	}
	if f.StartDate != nil && e.Date < *f.StartDate {
		return false
	}
	if f.EndDate != nil && e.Date > *f.EndDate {
		return false
	}
	if f.Cursor != nil {
		if f.Sort == ledger.SortDesc && e.Date >= *f.Cursor {
			return false
		}
		if f.Sort != ledger.SortDesc && e.Date <= *f.Cursor {
			return false
		}
	}
	return true
}

var (
	_ ledger.TxStore = (*Memory)(nil)
	_ ledger.Store   = (*state)(nil)
)
