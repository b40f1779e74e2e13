/*
engine.go - Ledger engine: create, update and delete with balance maintenance

PURPOSE:
  Orchestrates AccountStore and EntryStore inside one atomic unit per
  operation so that account.balance always equals the sum of the effects of
  the entries referencing it.

REVERT-THEN-REAPPLY:
  Update never diffs old and new field values. It fully reverts the stored
  entry's effect, persists the merged fields, then fully applies the new
  effect. Changing kind (expense -> transfer) needs no special casing.

ATOMICITY:
  Validation runs before any write. Every read used to compute a revert
  happens inside the same WithTx call as the writes that follow it.

EXAMPLE FLOW:
  Account A balance 1000
  Create income(A, 200)              A = 1200
  Create expense(A, 300)             A = 900
  Create transfer(A->B, 400, 400)    A = 500, B += 400

SEE ALSO:
  - effect.go: Effect computation and validation
  - page.go: Keyset pagination
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Engine is the only writer of entries and balances.
type Engine struct {
	store TxStore
	newID func() EntryID
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator overrides entry ID generation.
func WithIDGenerator(fn func() EntryID) Option {
	return func(e *Engine) { e.newID = fn }
}

// WithClock overrides the clock used for CreatedAt/UpdatedAt.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.now = fn }
}

func NewEngine(store TxStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		newID: func() EntryID { return EntryID(uuid.NewString()) },
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create validates p, inserts the entry and applies its effect atomically.
func (e *Engine) Create(ctx context.Context, owner OwnerID, p Params) (*Entry, error) {
	var created Entry
	err := e.store.WithTx(ctx, func(s Store) error {
		resolved, err := resolve(ctx, s, owner, p)
		if err != nil {
			return err
		}

		now := e.now()
		created = newEntry(e.newID(), owner, resolved, now)
		if err := s.InsertEntry(ctx, created); err != nil {
			return err
		}
		return applyDeltas(ctx, s, owner, created.Effect())
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges patch into the stored entry, reverting the old effect and
// applying the new one atomically. On validation failure nothing changes.
func (e *Engine) Update(ctx context.Context, owner OwnerID, id EntryID, patch Patch) (*Entry, error) {
	var updated Entry
	err := e.store.WithTx(ctx, func(s Store) error {
		existing, err := s.GetEntry(ctx, owner, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return invalid(ErrNotFound, "id", id)
		}

		revert := Revert(existing.Effect())

		resolved, err := resolve(ctx, s, owner, existing.Params().Apply(patch))
		if err != nil {
			return err
		}

		updated = newEntry(existing.ID, owner, resolved, existing.CreatedAt)
		updated.UpdatedAt = e.now()

		if err := applyDeltas(ctx, s, owner, revert); err != nil {
			return err
		}
		if err := s.UpdateEntry(ctx, updated); err != nil {
			return err
		}
		return applyDeltas(ctx, s, owner, updated.Effect())
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete reverts the entry's effect and removes it. Returns nil, nil if the
// entry does not exist.
func (e *Engine) Delete(ctx context.Context, owner OwnerID, id EntryID) (*Entry, error) {
	var deleted *Entry
	err := e.store.WithTx(ctx, func(s Store) error {
		existing, err := s.GetEntry(ctx, owner, id)
		if err != nil || existing == nil {
			return err
		}
		if err := applyDeltas(ctx, s, owner, Revert(existing.Effect())); err != nil {
			return err
		}
		if err := s.DeleteEntry(ctx, owner, id); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Get returns a single entry.
func (e *Engine) Get(ctx context.Context, owner OwnerID, id EntryID) (*Entry, error) {
	entry, err := e.store.GetEntry(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, invalid(ErrNotFound, "id", id)
	}
	return entry, nil
}

// List returns one keyset page of the owner's entries.
func (e *Engine) List(ctx context.Context, owner OwnerID, filter ListFilter) (*Page, error) {
	return Paginate(ctx, e.store, owner, filter)
}

// Audit recomputes every account's expected balance (opening balance plus
// entry effects) and returns the accounts whose stored balance differs.
func (e *Engine) Audit(ctx context.Context, owner OwnerID) ([]Discrepancy, error) {
	var out []Discrepancy
	err := e.store.WithTx(ctx, func(s Store) error {
		accounts, err := s.ListAccounts(ctx, owner)
		if err != nil {
			return err
		}
		entries, err := s.ListEntries(ctx, owner, ListFilter{Sort: SortAsc})
		if err != nil {
			return err
		}

		expected := make(map[AccountID]int64, len(accounts))
		for _, entry := range entries {
			for _, d := range entry.Effect() {
				expected[d.AccountID] += d.Amount
			}
		}
		for _, acc := range accounts {
			want := acc.OpeningBalance + expected[acc.ID]
			if acc.Balance != want {
				out = append(out, Discrepancy{AccountID: acc.ID, Stored: acc.Balance, Expected: want})
			}
		}
		return nil
	})
	return out, err
}

func newEntry(id EntryID, owner OwnerID, p Params, createdAt time.Time) Entry {
	return Entry{
		ID:                  id,
		OwnerID:             owner,
		Kind:                p.Kind,
		Date:                p.Date,
		Description:         p.Description,
		CategoryID:          p.CategoryID,
		AccountID:           p.AccountID,
		AmountCents:         p.AmountCents,
		FromAccountID:       p.FromAccountID,
		ToAccountID:         p.ToAccountID,
		AmountSentCents:     p.AmountSentCents,
		AmountReceivedCents: p.AmountReceivedCents,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}
}
