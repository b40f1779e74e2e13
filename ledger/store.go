/*
store.go - Persistence interfaces for accounts and ledger entries

KEY INTERFACES:
  AccountStore: point lookups and relative balance adjustment
  EntryStore:   entry lookup, insert, update, delete and listing
  TxStore:      runs a function inside one atomic unit

RELATIVE DELTAS:
  Balances are only ever changed with AddBalance(delta). Concurrent units
  serialize at the storage layer and deltas commute, so no read-modify-write
  of a balance snapshot is ever needed.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: embedded SQLite store
  - ledger/store/memory.go: in-memory store for tests
*/
package ledger

import "context"

// AccountStore holds account balances.
type AccountStore interface {
	// GetAccount returns nil, nil when the account is missing or owned by
	// another owner.
	GetAccount(ctx context.Context, owner OwnerID, id AccountID) (*Account, error)

	// ListAccounts returns all accounts of an owner ordered by name.
	ListAccounts(ctx context.Context, owner OwnerID) ([]Account, error)

	// AddBalance adds delta to the account balance. Returns
	// ErrAccountNotFound if no owned account matched.
	AddBalance(ctx context.Context, owner OwnerID, id AccountID, delta int64) error
}

// EntryStore holds ledger entries.
type EntryStore interface {
	// GetEntry returns nil, nil when the entry is missing or owned by another owner.
	GetEntry(ctx context.Context, owner OwnerID, id EntryID) (*Entry, error)
	InsertEntry(ctx context.Context, e Entry) error
	UpdateEntry(ctx context.Context, e Entry) error
	DeleteEntry(ctx context.Context, owner OwnerID, id EntryID) error

	// ListEntries returns at most filter.Limit entries matching filter,
	// ordered by date in filter.Sort. A zero Limit means no limit.
	ListEntries(ctx context.Context, owner OwnerID, filter ListFilter) ([]Entry, error)
}

// Store combines account and entry persistence.
type Store interface {
	AccountStore
	EntryStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. Reads made through the Store
	// passed to fn observe the transaction's own writes.
	// If fn returns error, transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
