/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Owner scoping (X-Owner-ID)
- Entry create/update/delete round trips and balance effects
- Error status mapping
- Keyset pagination over HTTP
- CSV import, including unpaired transfers
- Event publishing after commit
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-ledger/ledger"
	"github.com/warp/finance-ledger/ledger/store"
)

type recordingPublisher struct {
	events []ledger.EntryEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e ledger.EntryEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type testServer struct {
	t      *testing.T
	store  *store.Memory
	events *recordingPublisher
	router http.Handler
	logs   *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := store.NewMemory()
	events := &recordingPublisher{}
	logs := &bytes.Buffer{}
	h := NewHandler(s, Options{
		DefaultCurrency: "usd",
		Publisher:       events,
		Logger:          log.New(logs, "", 0),
	})
	return &testServer{
		t:      t,
		store:  s,
		events: events,
		router: NewRouter(h, []string{"http://localhost:5173"}),
		logs:   logs,
	}
}

// do sends a request as owner; an empty owner omits the header.
func (ts *testServer) do(method, path, owner string, body io.Reader) *httptest.ResponseRecorder {
	ts.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(method, path, owner string, payload any) *httptest.ResponseRecorder {
	ts.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(ts.t, err)
	return ts.do(method, path, owner, bytes.NewReader(data))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (ts *testServer) createAccount(owner, name string, opening int64) AccountDTO {
	ts.t.Helper()
	rec := ts.doJSON(http.MethodPost, "/api/accounts", owner, CreateAccountRequest{Name: name, OpeningBalanceCents: opening})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[AccountDTO](ts.t, rec)
}

func (ts *testServer) balance(owner, id string) int64 {
	ts.t.Helper()
	rec := ts.do(http.MethodGet, "/api/accounts/"+id, owner, nil)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[AccountDTO](ts.t, rec).BalanceCents
}

func TestOwnerHeaderRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/accounts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccounts_CreateAndScope(t *testing.T) {
	// GIVEN: alice creates an account without a currency
	ts := newTestServer(t)
	acc := ts.createAccount("alice", "Cash", 1250)

	// THEN: the default currency applies and the balance starts at the opening balance
	assert.Equal(t, "USD", acc.Currency)
	assert.Equal(t, int64(1250), acc.BalanceCents)
	assert.Equal(t, "$12.50", acc.BalanceDisplay)

	// AND: bob cannot see it
	rec := ts.do(http.MethodGet, "/api/accounts/"+acc.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodGet, "/api/accounts", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]AccountDTO](t, rec))

	rec = ts.doJSON(http.MethodPost, "/api/accounts", "alice", CreateAccountRequest{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.doJSON(http.MethodPost, "/api/categories", "alice", CreateCategoryRequest{Name: "Food", Type: "expense"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.doJSON(http.MethodPost, "/api/categories", "alice", CreateCategoryRequest{Name: "Moving", Type: "transfer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodGet, "/api/categories", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]CategoryDTO](t, rec)
	require.Len(t, cats, 1)
	assert.Equal(t, "Food", cats[0].Name)
	assert.Equal(t, "expense", cats[0].Type)
}

func TestEntries_Lifecycle(t *testing.T) {
	// GIVEN: two accounts
	ts := newTestServer(t)
	a := ts.createAccount("alice", "Checking", 100000)
	b := ts.createAccount("alice", "Savings", 0)

	// WHEN: recording an income and a transfer
	rec := ts.doJSON(http.MethodPost, "/api/entries", "alice", CreateEntryRequest{
		Kind: "income", Date: 1000, AccountID: a.ID, AmountCents: 20000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	income := decode[ledger.Entry](t, rec)

	rec = ts.doJSON(http.MethodPost, "/api/entries", "alice", CreateEntryRequest{
		Kind: "transfer", Date: 2000, FromAccountID: a.ID, ToAccountID: b.ID, AmountSentCents: 30000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	transfer := decode[ledger.Entry](t, rec)
	assert.Equal(t, int64(30000), transfer.AmountReceivedCents)

	// THEN: balances follow
	assert.Equal(t, int64(90000), ts.balance("alice", a.ID))
	assert.Equal(t, int64(30000), ts.balance("alice", b.ID))

	// WHEN: turning the transfer into an expense
	rec = ts.do(http.MethodPatch, "/api/entries/"+string(transfer.ID), "alice",
		strings.NewReader(`{"kind":"expense","account_id":"`+a.ID+`","amount_cents":5000}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, int64(115000), ts.balance("alice", a.ID))
	assert.Equal(t, int64(0), ts.balance("alice", b.ID))

	// WHEN: deleting the income
	rec = ts.do(http.MethodDelete, "/api/entries/"+string(income.ID), "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(95000), ts.balance("alice", a.ID))

	rec = ts.do(http.MethodDelete, "/api/entries/"+string(income.ID), "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// THEN: one event per committed change, in order
	types := make([]ledger.EventType, len(ts.events.events))
	for i, e := range ts.events.events {
		types[i] = e.Type
	}
	assert.Equal(t, []ledger.EventType{
		ledger.EventEntryCreated, ledger.EventEntryCreated,
		ledger.EventEntryUpdated, ledger.EventEntryDeleted,
	}, types)

	// AND: the audit is clean
	rec = ts.do(http.MethodGet, "/api/audit", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	audit := decode[AuditResponse](t, rec)
	assert.True(t, audit.Consistent)
	assert.Empty(t, audit.Discrepancies)
}

func TestEntries_ErrorStatus(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createAccount("alice", "Checking", 0)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"malformed body", http.MethodPost, "/api/entries", `{`, http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/api/entries", `{"kind":"expense","account_id":"` + a.ID + `","amount_cents":0}`, http.StatusBadRequest},
		{"unknown kind", http.MethodPost, "/api/entries", `{"kind":"gift","account_id":"` + a.ID + `","amount_cents":10}`, http.StatusBadRequest},
		{"missing account", http.MethodPost, "/api/entries", `{"kind":"expense","account_id":"nope","amount_cents":10}`, http.StatusBadRequest},
		{"same account transfer", http.MethodPost, "/api/entries", `{"kind":"transfer","from_account_id":"` + a.ID + `","to_account_id":"` + a.ID + `","amount_sent_cents":10}`, http.StatusBadRequest},
		{"update missing", http.MethodPatch, "/api/entries/nope", `{"description":"x"}`, http.StatusNotFound},
		{"get missing", http.MethodGet, "/api/entries/nope", ``, http.StatusNotFound},
		{"bad sort", http.MethodGet, "/api/entries?sort=sideways", ``, http.StatusBadRequest},
		{"bad cursor", http.MethodGet, "/api/entries?cursor=yesterday", ``, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, "alice", strings.NewReader(tt.body))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// Nothing above touched the balance or emitted events.
	assert.Equal(t, int64(0), ts.balance("alice", a.ID))
	assert.Empty(t, ts.events.events)
}

func TestEntries_ValidationErrorCode(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createAccount("alice", "Checking", 0)

	rec := ts.doJSON(http.MethodPost, "/api/entries", "alice", CreateEntryRequest{
		Kind: "expense", AccountID: a.ID, AmountCents: -5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "invalid_amount_cents", resp.Code)
}

func TestEntries_Pagination(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createAccount("alice", "Checking", 0)
	for i := 1; i <= 7; i++ {
		rec := ts.doJSON(http.MethodPost, "/api/entries", "alice", CreateEntryRequest{
			Kind: "expense", Date: int64(i * 1000), AccountID: a.ID, AmountCents: 100,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	var dates []int64
	path := "/api/entries?sort=asc&limit=3"
	for pages := 0; pages < 10; pages++ {
		rec := ts.do(http.MethodGet, path, "alice", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decode[PageResponse](t, rec)
		for _, e := range page.Items {
			dates = append(dates, e.Date)
		}
		if !page.HasMore {
			break
		}
		require.NotNil(t, page.NextCursor)
		path = "/api/entries?sort=asc&limit=3&cursor=" + strconv.FormatInt(*page.NextCursor, 10)
	}

	assert.Equal(t, []int64{1000, 2000, 3000, 4000, 5000, 6000, 7000}, dates)

	rec := ts.do(http.MethodGet, "/api/entries?start_date=2000&end_date=4000", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[PageResponse](t, rec)
	require.Len(t, page.Items, 3)
	assert.Equal(t, int64(4000), page.Items[0].Date, "default sort is newest first")
}

func TestImport_Standard(t *testing.T) {
	ts := newTestServer(t)

	csv := "Date,Type,Account,Category,Amount\n" +
		"2024-03-01,expense,Cash,Food,12.50\n" +
		"2024-03-02,income,Cash,Salary,100\n" +
		"2024-03-03,expense,Cash,Food,oops\n"
	rec := ts.do(http.MethodPost, "/api/import/standard?default_currency=eur", "alice", strings.NewReader(csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Imported    int `json:"imported"`
		Failed      int `json:"failed"`
		NewAccounts int `json:"new_accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.NewAccounts)

	rec = ts.do(http.MethodGet, "/api/accounts", "alice", nil)
	accounts := decode[[]AccountDTO](t, rec)
	require.Len(t, accounts, 1)
	assert.Equal(t, "EUR", accounts[0].Currency)
	assert.Equal(t, int64(8750), accounts[0].BalanceCents)

	assert.Len(t, ts.events.events, 2, "imported entries are published")
}

func TestImport_UnpairedTransfer(t *testing.T) {
	ts := newTestServer(t)

	csv := "Date,Amount,Account,Category\n" +
		"2024-03-01,-50,Cash,To 'Bank'\n"
	rec := ts.do(http.MethodPost, "/api/import/legs", "alice", strings.NewReader(csv))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp struct {
		Code    string            `json:"code"`
		Details []json.RawMessage `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unpaired_transfer", resp.Code)
	assert.Len(t, resp.Details, 1)

	rec = ts.do(http.MethodGet, "/api/accounts", "alice", nil)
	assert.Empty(t, decode[[]AccountDTO](t, rec), "nothing written")
}

func TestImport_ProfilesAndErrors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/import/profiles", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profiles := decode[[]ProfileDTO](t, rec)
	require.Len(t, profiles, 2)
	assert.Equal(t, "legs", profiles[0].ID)
	assert.True(t, profiles[0].Pairing)
	assert.False(t, profiles[1].Pairing)

	rec = ts.do(http.MethodPost, "/api/import/nope", "alice", strings.NewReader("a,b\n"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(http.MethodPost, "/api/import/standard", "alice", strings.NewReader("Foo,Bar\n1,2\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishFailureKeepsEntry(t *testing.T) {
	ts := newTestServer(t)
	ts.events.err = errors.New("broker down")
	a := ts.createAccount("alice", "Checking", 0)

	rec := ts.doJSON(http.MethodPost, "/api/entries", "alice", CreateEntryRequest{
		Kind: "income", Date: 1, AccountID: a.ID, AmountCents: 700,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(700), ts.balance("alice", a.ID))
	assert.Contains(t, ts.logs.String(), "broker down")
}

func TestReconcileErrors_Flatten(t *testing.T) {
	ts := newTestServer(t)
	csv := "Date,Amount,Account,Category\n" +
		"2024-03-01,-50,Cash,To 'Bank'\n" +
		"2024-03-05,20,Cash,From 'Card'\n"
	rec := ts.do(http.MethodPost, "/api/import/legs", "alice", strings.NewReader(csv))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Details []json.RawMessage `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Details, 2)
}
