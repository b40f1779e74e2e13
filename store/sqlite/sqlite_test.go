package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-ledger/ledger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedAccount(t *testing.T, s *Store, owner ledger.OwnerID, id, name string) {
	t.Helper()
	_, err := s.CreateAccount(context.Background(), ledger.Account{
		ID: ledger.AccountID(id), OwnerID: owner, Name: name, Currency: "USD", OpeningBalance: 100,
	})
	require.NoError(t, err)
}

func TestStore_AccountRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateAccount(ctx, ledger.Account{
		OwnerID: "alice", Name: "Wallet", Currency: "EUR", Icon: "wallet", Color: "#00ff00", OpeningBalance: 2500,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(2500), created.Balance)

	got, err := s.GetAccount(ctx, "alice", created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Wallet", got.Name)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "wallet", got.Icon)
	assert.Equal(t, int64(2500), got.OpeningBalance)
	assert.Equal(t, int64(2500), got.Balance)

	// Cross-owner reads look identical to a missing row.
	got, err = s.GetAccount(ctx, "bob", created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_AddBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "alice", "a1", "Cash")

	require.NoError(t, s.AddBalance(ctx, "alice", "a1", -30))
	require.NoError(t, s.AddBalance(ctx, "alice", "a1", 5))

	acc, err := s.GetAccount(ctx, "alice", "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(75), acc.Balance)

	assert.ErrorIs(t, s.AddBalance(ctx, "alice", "missing", 1), ledger.ErrAccountNotFound)
	assert.ErrorIs(t, s.AddBalance(ctx, "bob", "a1", 1), ledger.ErrAccountNotFound)
}

func TestStore_FindAccountByName_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "alice", "a1", "Main Bank")
	seedAccount(t, s, "bob", "b1", "Main Bank")

	acc, err := s.FindAccountByName(ctx, "alice", "main bank")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, ledger.AccountID("a1"), acc.ID)

	acc, err = s.FindAccountByName(ctx, "alice", "Savings")
	require.NoError(t, err)
	assert.Nil(t, acc)
}

func TestStore_Categories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	parent, err := s.CreateCategory(ctx, ledger.Category{OwnerID: "alice", Name: "Food", Type: ledger.KindExpense})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, ledger.Category{OwnerID: "alice", Name: "Groceries", Type: ledger.KindExpense, ParentID: parent.ID})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, ledger.Category{OwnerID: "alice", Name: "Salary", Type: ledger.KindIncome})
	require.NoError(t, err)

	found, err := s.FindCategoryByName(ctx, "alice", "GROCERIES", ledger.KindExpense)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, parent.ID, found.ParentID)

	// Same name under another type does not match.
	found, err = s.FindCategoryByName(ctx, "alice", "Salary", ledger.KindExpense)
	require.NoError(t, err)
	assert.Nil(t, found)

	all, err := s.ListCategories(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Food", all[0].Name)
}

func TestStore_EntryColumnsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "alice", "a1", "Cash")
	seedAccount(t, s, "alice", "a2", "Bank")

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	transfer := ledger.Entry{
		ID: "e1", OwnerID: "alice", Kind: ledger.KindTransfer, Date: 1700000000000,
		AmountCents: 100, FromAccountID: "a1", ToAccountID: "a2",
		AmountSentCents: 100, AmountReceivedCents: 90,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.InsertEntry(ctx, transfer))

	got, err := s.GetEntry(ctx, "alice", "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, transfer, *got)

	got, err = s.GetEntry(ctx, "bob", "e1")
	require.NoError(t, err)
	assert.Nil(t, got)

	expense := transfer
	expense.Kind = ledger.KindExpense
	expense.AccountID = "a1"
	expense.FromAccountID, expense.ToAccountID = "", ""
	expense.AmountSentCents, expense.AmountReceivedCents = 0, 0
	expense.Description = "coffee"
	require.NoError(t, s.UpdateEntry(ctx, expense))

	got, err = s.GetEntry(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Equal(t, expense, *got)

	missing := expense
	missing.ID = "nope"
	assert.ErrorIs(t, s.UpdateEntry(ctx, missing), ledger.ErrNotFound)

	require.NoError(t, s.DeleteEntry(ctx, "alice", "e1"))
	require.NoError(t, s.DeleteEntry(ctx, "alice", "e1"))
	got, err = s.GetEntry(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_EntryRejectsUnknownAccount(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertEntry(context.Background(), ledger.Entry{
		ID: "e1", OwnerID: "alice", Kind: ledger.KindExpense, AccountID: "ghost", AmountCents: 1,
	})
	assert.Error(t, err, "foreign keys are enforced")
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: an account with balance 100
	// WHEN: a transaction adjusts the balance, inserts an entry, then fails
	// THEN: neither write is visible
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "alice", "a1", "Cash")
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx ledger.Store) error {
		require.NoError(t, tx.AddBalance(ctx, "alice", "a1", -40))
		require.NoError(t, tx.InsertEntry(ctx, ledger.Entry{
			ID: "e1", OwnerID: "alice", Kind: ledger.KindExpense, AccountID: "a1", AmountCents: 40,
		}))

		// Reads inside the unit observe its own writes.
		acc, err := tx.GetAccount(ctx, "alice", "a1")
		require.NoError(t, err)
		assert.Equal(t, int64(60), acc.Balance)
		return boom
	})
	require.ErrorIs(t, err, boom)

	acc, err := s.GetAccount(ctx, "alice", "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), acc.Balance)

	entry, err := s.GetEntry(ctx, "alice", "e1")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_ListEntries_QueryShape(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "alice", "a1", "Cash")
	seedAccount(t, s, "alice", "a2", "Bank")

	for i, date := range []int64{30, 10, 20, 40} {
		e := ledger.Entry{
			ID: ledger.EntryID(string(rune('a' + i))), OwnerID: "alice", Kind: ledger.KindExpense,
			AccountID: "a1", AmountCents: 1, Date: date,
		}
		if date == 40 {
			e.Kind, e.AccountID = ledger.KindTransfer, ""
			e.FromAccountID, e.ToAccountID = "a2", "a1"
			e.AmountSentCents, e.AmountReceivedCents = 1, 1
		}
		require.NoError(t, s.InsertEntry(ctx, e))
	}

	list := func(f ledger.ListFilter) []int64 {
		entries, err := s.ListEntries(ctx, "alice", f)
		require.NoError(t, err)
		out := []int64{}
		for _, e := range entries {
			out = append(out, e.Date)
		}
		return out
	}

	assert.Equal(t, []int64{10, 20, 30, 40}, list(ledger.ListFilter{Sort: ledger.SortAsc}))
	assert.Equal(t, []int64{40, 30, 20, 10}, list(ledger.ListFilter{Sort: ledger.SortDesc}))
	assert.Equal(t, []int64{30, 40}, list(ledger.ListFilter{Sort: ledger.SortAsc, Cursor: ptr(int64(20))}))
	assert.Equal(t, []int64{10}, list(ledger.ListFilter{Sort: ledger.SortDesc, Cursor: ptr(int64(20))}))
	assert.Equal(t, []int64{40, 30}, list(ledger.ListFilter{Sort: ledger.SortDesc, Limit: 2}))
	assert.Equal(t, []int64{40}, list(ledger.ListFilter{AccountID: "a2"}))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	seedAccount(t, s, "alice", "a1", "Cash")
	require.NoError(t, s.AddBalance(ctx, "alice", "a1", 50))
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	acc, err := s.GetAccount(ctx, "alice", "a1")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, int64(150), acc.Balance)
}

func TestStore_ResetOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedAccount(t, s, "alice", "a1", "Cash")
	seedAccount(t, s, "alice", "a2", "Bank")
	seedAccount(t, s, "bob", "b1", "Cash")

	removed, err := s.ResetOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	accounts, err := s.ListAccounts(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, accounts)

	accounts, err = s.ListAccounts(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	owners, err := s.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.OwnerID{"bob"}, owners)
}

func ptr[T any](v T) *T { return &v }

func TestStore_ListOwners(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owners, err := s.ListOwners(ctx)
	require.NoError(t, err)
	assert.Empty(t, owners)

	seedAccount(t, s, "bob", "b1", "Cash")
	seedAccount(t, s, "alice", "a1", "Cash")
	seedAccount(t, s, "alice", "a2", "Bank")

	owners, err = s.ListOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.OwnerID{"alice", "bob"}, owners)
}
