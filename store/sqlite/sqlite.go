/*
Package sqlite provides a SQLite-backed implementation of the ledger storage interfaces.

PURPOSE:
  Implements ledger.TxStore (accounts + entries) plus the account/category
  collaborators the import driver needs, using one embedded SQLite file.

KEY TABLES:
  accounts:   running balance per account (minor units)
  categories: expense/income categories, one optional parent
  entries:    ledger entries (expense, income, transfer)

INDEXES:
  - idx_entries_owner_date: keyset listing by date (hot path)
  - idx_entries_owner_account / _from / _to: account history in either direction
  - idx_accounts_owner_name: lookup-by-name during import

CONCURRENCY:
  The pool is capped at one connection, so atomic units serialize at the
  database. Balances only change through "balance = balance + ?", so the
  order in which serialized units apply their deltas does not matter.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on.

USAGE:
  store, err := sqlite.New("./data/finance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := ledger.NewEngine(store)

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/finance-ledger/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		currency TEXT NOT NULL,
		icon TEXT,
		color TEXT,
		opening_balance INTEGER NOT NULL DEFAULT 0,
		balance INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_owner_name
		ON accounts(owner_id, name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		parent_id TEXT REFERENCES categories(id) ON DELETE SET NULL,
		icon TEXT,
		color TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_categories_owner_name
		ON categories(owner_id, type, name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('expense', 'income', 'transfer')),
		date INTEGER NOT NULL,
		description TEXT,
		category_id TEXT,
		account_id TEXT REFERENCES accounts(id),
		amount_cents INTEGER NOT NULL,
		from_account_id TEXT REFERENCES accounts(id),
		to_account_id TEXT REFERENCES accounts(id),
		amount_sent_cents INTEGER,
		amount_received_cents INTEGER,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_owner_date
		ON entries(owner_id, date);
	CREATE INDEX IF NOT EXISTS idx_entries_owner_account
		ON entries(owner_id, account_id) WHERE account_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_entries_owner_from
		ON entries(owner_id, from_account_id) WHERE from_account_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_entries_owner_to
		ON entries(owner_id, to_account_id) WHERE to_account_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_entries_owner_category
		ON entries(owner_id, category_id) WHERE category_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The ledger.Store
// handed to fn reads and writes through the transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{q: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore is the ledger.Store view of one open transaction. It never takes
// the parent's lock; WithTx already holds it.
type txStore struct {
	q querier
}

func (ts *txStore) GetAccount(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	return getAccount(ctx, ts.q, owner, id)
}

func (ts *txStore) ListAccounts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	return listAccounts(ctx, ts.q, owner)
}

func (ts *txStore) AddBalance(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID, delta int64) error {
	return addBalance(ctx, ts.q, owner, id, delta)
}

func (ts *txStore) GetEntry(ctx context.Context, owner ledger.OwnerID, id ledger.EntryID) (*ledger.Entry, error) {
	return getEntry(ctx, ts.q, owner, id)
}

func (ts *txStore) InsertEntry(ctx context.Context, e ledger.Entry) error {
	return insertEntry(ctx, ts.q, e)
}

func (ts *txStore) UpdateEntry(ctx context.Context, e ledger.Entry) error {
	return updateEntry(ctx, ts.q, e)
}

func (ts *txStore) DeleteEntry(ctx context.Context, owner ledger.OwnerID, id ledger.EntryID) error {
	return deleteEntry(ctx, ts.q, owner, id)
}

func (ts *txStore) ListEntries(ctx context.Context, owner ledger.OwnerID, filter ledger.ListFilter) ([]ledger.Entry, error) {
	return listEntries(ctx, ts.q, owner, filter)
}

// =============================================================================
// ACCOUNT STORE (ledger.AccountStore interface)
// =============================================================================

const accountColumns = `id, owner_id, name, currency, icon, color, opening_balance, balance, created_at`

// GetAccount returns nil, nil if the account is missing or owned by someone else.
func (s *Store) GetAccount(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccount(ctx, s.db, owner, id)
}

// ListAccounts returns all accounts of an owner.
func (s *Store) ListAccounts(ctx context.Context, owner ledger.OwnerID) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAccounts(ctx, s.db, owner)
}

// AddBalance applies a relative delta outside any caller transaction.
func (s *Store) AddBalance(ctx context.Context, owner ledger.OwnerID, id ledger.AccountID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addBalance(ctx, s.db, owner, id, delta)
}

// CreateAccount inserts an account; Balance starts at OpeningBalance.
func (s *Store) CreateAccount(ctx context.Context, acc ledger.Account) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.ID == "" {
		acc.ID = ledger.AccountID(uuid.NewString())
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now().UTC()
	}
	acc.Balance = acc.OpeningBalance

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		acc.ID, acc.OwnerID, acc.Name, acc.Currency,
		nullString(acc.Icon), nullString(acc.Color),
		acc.OpeningBalance, acc.Balance,
		acc.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

// FindAccountByName matches names case-insensitively within an owner.
func (s *Store) FindAccountByName(ctx context.Context, owner ledger.OwnerID, name string) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE owner_id = ? AND name = ? COLLATE NOCASE
		 ORDER BY created_at, id LIMIT 1`,
		owner, name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	acc, err := scanAccount(rows)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func getAccount(ctx context.Context, q querier, owner ledger.OwnerID, id ledger.AccountID) (*ledger.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`,
		id, owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	acc, err := scanAccount(rows)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func listAccounts(ctx context.Context, q querier, owner ledger.OwnerID) ([]ledger.Account, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY name`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func addBalance(ctx context.Context, q querier, owner ledger.OwnerID, id ledger.AccountID, delta int64) error {
	res, err := q.ExecContext(ctx,
		`UPDATE accounts SET balance = balance + ? WHERE id = ? AND owner_id = ?`,
		delta, id, owner,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	if n == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

func scanAccount(rows *sql.Rows) (ledger.Account, error) {
	var (
		acc         ledger.Account
		icon, color sql.NullString
		createdAt   string
	)
	err := rows.Scan(
		&acc.ID, &acc.OwnerID, &acc.Name, &acc.Currency, &icon, &color,
		&acc.OpeningBalance, &acc.Balance, &createdAt,
	)
	if err != nil {
		return acc, fmt.Errorf("failed to scan account: %w", err)
	}
	acc.Icon = icon.String
	acc.Color = color.String
	acc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return acc, nil
}

// =============================================================================
// CATEGORY STORE
// =============================================================================

const categoryColumns = `id, owner_id, name, type, parent_id, icon, color, created_at`

// CreateCategory inserts a category.
func (s *Store) CreateCategory(ctx context.Context, c ledger.Category) (*ledger.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = ledger.CategoryID(uuid.NewString())
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.OwnerID, c.Name, c.Type, nullString(string(c.ParentID)),
		nullString(c.Icon), nullString(c.Color), c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

// FindCategoryByName matches names case-insensitively within an owner and type.
func (s *Store) FindCategoryByName(ctx context.Context, owner ledger.OwnerID, name string, kind ledger.Kind) (*ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories, err := s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE owner_id = ? AND type = ? AND name = ? COLLATE NOCASE
		 ORDER BY created_at, id LIMIT 1`,
		owner, kind, name,
	)
	if err != nil || len(categories) == 0 {
		return nil, err
	}
	return &categories[0], nil
}

// ListCategories returns all categories of an owner.
func (s *Store) ListCategories(ctx context.Context, owner ledger.OwnerID) ([]ledger.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCategories(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? ORDER BY name`,
		owner,
	)
}

// ListOwners returns every owner holding at least one account.
func (s *Store) ListOwners(ctx context.Context) ([]ledger.OwnerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM accounts ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var out []ledger.OwnerID
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		out = append(out, ledger.OwnerID(owner))
	}
	return out, rows.Err()
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]ledger.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []ledger.Category
	for rows.Next() {
		var (
			c                   ledger.Category
			parent, icon, color sql.NullString
			createdAt           string
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Type, &parent, &icon, &color, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ParentID = ledger.CategoryID(parent.String)
		c.Icon = icon.String
		c.Color = color.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// =============================================================================
// ENTRY STORE (ledger.EntryStore interface)
// =============================================================================

const entryColumns = `id, owner_id, kind, date, description, category_id,
	account_id, amount_cents, from_account_id, to_account_id,
	amount_sent_cents, amount_received_cents, created_at, updated_at`

// GetEntry returns nil, nil if the entry is missing or owned by someone else.
func (s *Store) GetEntry(ctx context.Context, owner ledger.OwnerID, id ledger.EntryID) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEntry(ctx, s.db, owner, id)
}

func (s *Store) InsertEntry(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertEntry(ctx, s.db, e)
}

func (s *Store) UpdateEntry(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateEntry(ctx, s.db, e)
}

func (s *Store) DeleteEntry(ctx context.Context, owner ledger.OwnerID, id ledger.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteEntry(ctx, s.db, owner, id)
}

// ListEntries runs the filtered, date-ordered listing query.
func (s *Store) ListEntries(ctx context.Context, owner ledger.OwnerID, filter ledger.ListFilter) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEntries(ctx, s.db, owner, filter)
}

func getEntry(ctx context.Context, q querier, owner ledger.OwnerID, id ledger.EntryID) (*ledger.Entry, error) {
	entries, err := queryEntries(ctx, q,
		`SELECT `+entryColumns+` FROM entries WHERE id = ? AND owner_id = ?`,
		id, owner,
	)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func insertEntry(ctx context.Context, q querier, e ledger.Entry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.OwnerID, e.Kind, e.Date,
		nullString(e.Description), nullString(string(e.CategoryID)),
		nullString(string(e.AccountID)), e.AmountCents,
		nullString(string(e.FromAccountID)), nullString(string(e.ToAccountID)),
		nullInt(e.AmountSentCents), nullInt(e.AmountReceivedCents),
		e.CreatedAt.Format(time.RFC3339Nano), e.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

func updateEntry(ctx context.Context, q querier, e ledger.Entry) error {
	res, err := q.ExecContext(ctx, `
		UPDATE entries SET
			kind = ?, date = ?, description = ?, category_id = ?,
			account_id = ?, amount_cents = ?,
			from_account_id = ?, to_account_id = ?,
			amount_sent_cents = ?, amount_received_cents = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`,
		e.Kind, e.Date, nullString(e.Description), nullString(string(e.CategoryID)),
		nullString(string(e.AccountID)), e.AmountCents,
		nullString(string(e.FromAccountID)), nullString(string(e.ToAccountID)),
		nullInt(e.AmountSentCents), nullInt(e.AmountReceivedCents),
		e.UpdatedAt.Format(time.RFC3339Nano),
		e.ID, e.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func deleteEntry(ctx context.Context, q querier, owner ledger.OwnerID, id ledger.EntryID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM entries WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func listEntries(ctx context.Context, q querier, owner ledger.OwnerID, f ledger.ListFilter) ([]ledger.Entry, error) {
	var (
		where = []string{"owner_id = ?"}
		args  = []any{owner}
	)

	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.AccountID != "" {
		where = append(where, "(account_id = ? OR from_account_id = ? OR to_account_id = ?)")
		args = append(args, f.AccountID, f.AccountID, f.AccountID)
	}
	if f.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, *f.EndDate)
	}

	order := "ASC"
	if f.Sort == ledger.SortDesc {
		order = "DESC"
	}
	if f.Cursor != nil {
		if order == "DESC" {
			where = append(where, "date < ?")
		} else {
			where = append(where, "date > ?")
		}
		args = append(args, *f.Cursor)
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date ` + order
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	return queryEntries(ctx, q, query, args...)
}

func queryEntries(ctx context.Context, q querier, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e                    ledger.Entry
		description          sql.NullString
		categoryID           sql.NullString
		accountID            sql.NullString
		fromID, toID         sql.NullString
		sent, received       sql.NullInt64
		createdAt, updatedAt string
	)

	err := rows.Scan(
		&e.ID, &e.OwnerID, &e.Kind, &e.Date, &description, &categoryID,
		&accountID, &e.AmountCents, &fromID, &toID,
		&sent, &received, &createdAt, &updatedAt,
	)
	if err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	e.Description = description.String
	e.CategoryID = ledger.CategoryID(categoryID.String)
	e.AccountID = ledger.AccountID(accountID.String)
	e.FromAccountID = ledger.AccountID(fromID.String)
	e.ToAccountID = ledger.AccountID(toID.String)
	e.AmountSentCents = sent.Int64
	e.AmountReceivedCents = received.Int64
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return e, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// ResetOwner deletes every entry, category and account of owner in one
// transaction and returns how many accounts were removed. Other owners are
// untouched.
func (s *Store) ResetOwner(ctx context.Context, owner ledger.OwnerID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var accounts int64
	for _, table := range []string{"entries", "categories", "accounts"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE owner_id = ?", string(owner))
		if err != nil {
			return 0, fmt.Errorf("reset %s: %w", table, err)
		}
		if table == "accounts" {
			accounts, _ = res.RowsAffected()
		}
	}
	return accounts, tx.Commit()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

var (
	_ ledger.TxStore = (*Store)(nil)
	_ ledger.Store   = (*txStore)(nil)
)
