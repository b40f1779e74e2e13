/*
handlers.go - HTTP API handlers for the finance ledger

PURPOSE:
  Exposes the ledger engine and the CSV importer via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts               List accounts with balances
    POST   /api/accounts               Create account
    GET    /api/accounts/{id}          Get account

  Categories:
    GET    /api/categories             List categories
    POST   /api/categories             Create category

  Entries:
    GET    /api/entries                Keyset-paginated list
    POST   /api/entries                Create entry
    GET    /api/entries/{id}           Get entry
    PATCH  /api/entries/{id}           Partial update
    DELETE /api/entries/{id}           Delete entry

  Import:
    GET    /api/import/profiles        List import profiles
    POST   /api/import/{profile}       Import a CSV body

  Audit:
    GET    /api/audit                  Compare balances with entry effects

  Scenarios (scenarios.go):
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Import a demo scenario

OWNER SCOPING:
  Every /api route requires the X-Owner-ID header (401 without it). Session
  handling lives in front of this service; the handlers only scope by it.

EVENTS:
  After a create, update or delete commits, an EntryEvent is published when
  a publisher is configured. Publish failures are logged and never undo the
  ledger change.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing owner
  - 404: Entry, account or profile not found
  - 422: Import could not pair transfer legs
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/finance-ledger/importer"
	"github.com/warp/finance-ledger/ledger"
)

// maxImportBytes bounds CSV uploads.
const maxImportBytes = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is what the handlers need from persistence: the ledger's atomic
// store plus the account/category collaborators.
type Store interface {
	ledger.TxStore
	importer.NameStore
	ListCategories(ctx context.Context, owner ledger.OwnerID) ([]ledger.Category, error)
}

// Options configures a Handler. Zero values are usable.
type Options struct {
	DefaultCurrency string
	Publisher       ledger.EventPublisher
	Profiles        *importer.Registry
	MaxImportErrors int
	Logger          *log.Logger
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    Store
	Engine   *ledger.Engine
	Importer *importer.Driver
	Profiles *importer.Registry

	defaultCurrency string
	publisher       ledger.EventPublisher
	logger          *log.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, opts Options) *Handler {
	h := &Handler{
		Store:           store,
		Engine:          ledger.NewEngine(store),
		Profiles:        opts.Profiles,
		defaultCurrency: strings.ToUpper(opts.DefaultCurrency),
		publisher:       opts.Publisher,
		logger:          opts.Logger,
	}
	if h.Profiles == nil {
		h.Profiles = importer.NewRegistry(nil)
	}
	if h.defaultCurrency == "" {
		h.defaultCurrency = "USD"
	}
	if h.logger == nil {
		h.logger = log.Default()
	}

	driverOpts := []importer.DriverOption{
		importer.WithLogger(h.logger),
		importer.WithEntryHook(func(ctx context.Context, e *ledger.Entry) {
			h.publish(ctx, ledger.EventEntryCreated, e)
		}),
	}
	if opts.MaxImportErrors > 0 {
		driverOpts = append(driverOpts, importer.WithMaxErrors(opts.MaxImportErrors))
	}
	h.Importer = importer.NewDriver(h.Engine, store, driverOpts...)
	return h
}

// =============================================================================
// OWNER MIDDLEWARE
// =============================================================================

type ownerKey struct{}

// OwnerHeader carries the caller's owner id.
const OwnerHeader = "X-Owner-ID"

// RequireOwner rejects requests without an owner and stores it in the context.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "Missing "+OwnerHeader+" header", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey{}, ledger.OwnerID(owner))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(ctx context.Context) ledger.OwnerID {
	owner, _ := ctx.Value(ownerKey{}).(ledger.OwnerID)
	return owner
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns the owner's accounts with current balances.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Store.ListAccounts(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates an account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.Currency == "" {
		req.Currency = h.defaultCurrency
	}

	acc, err := h.Store.CreateAccount(r.Context(), ledger.Account{
		OwnerID:        ownerFrom(r.Context()),
		Name:           req.Name,
		Currency:       strings.ToUpper(req.Currency),
		Icon:           req.Icon,
		Color:          req.Color,
		OpeningBalance: req.OpeningBalanceCents,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(*acc))
}

// GetAccount returns one account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))
	acc, err := h.Store.GetAccount(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if acc == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*acc))
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

// ListCategories returns the owner's categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Store.ListCategories(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list categories", err)
		return
	}

	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = toCategoryDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCategory creates an expense or income category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	kind := ledger.Kind(req.Type)
	if kind != ledger.KindExpense && kind != ledger.KindIncome {
		writeError(w, http.StatusBadRequest, "type must be expense or income", nil)
		return
	}

	c, err := h.Store.CreateCategory(r.Context(), ledger.Category{
		OwnerID:  ownerFrom(r.Context()),
		Name:     req.Name,
		Type:     kind,
		ParentID: ledger.CategoryID(req.ParentID),
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryDTO(*c))
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns one page of entries.
// GET /api/entries?account_id=&category_id=&start_date=&end_date=&sort=&cursor=&limit=
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	page, err := h.Engine.List(r.Context(), ownerFrom(r.Context()), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	items := page.Items
	if items == nil {
		items = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, PageResponse{
		Items:      items,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	})
}

func parseListFilter(r *http.Request) (ledger.ListFilter, error) {
	q := r.URL.Query()
	filter := ledger.ListFilter{
		CategoryID: ledger.CategoryID(q.Get("category_id")),
		AccountID:  ledger.AccountID(q.Get("account_id")),
		Sort:       ledger.SortDesc,
	}

	switch s := q.Get("sort"); s {
	case "", string(ledger.SortDesc):
	case string(ledger.SortAsc):
		filter.Sort = ledger.SortAsc
	default:
		return filter, errors.New("sort must be asc or desc")
	}

	for name, dst := range map[string]**int64{
		"start_date": &filter.StartDate,
		"end_date":   &filter.EndDate,
		"cursor":     &filter.Cursor,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, errors.New(name + " must be an integer (unix milliseconds)")
		}
		*dst = &v
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filter, errors.New("limit must be an integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

// CreateEntry records an expense, income or transfer.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == 0 {
		req.Date = time.Now().UnixMilli()
	}

	entry, err := h.Engine.Create(r.Context(), ownerFrom(r.Context()), req.params())
	if err != nil {
		writeDomainError(w, "Failed to create entry", err)
		return
	}
	h.publish(r.Context(), ledger.EventEntryCreated, entry)
	writeJSON(w, http.StatusCreated, entry)
}

// GetEntry returns one entry.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := ledger.EntryID(chi.URLParam(r, "id"))
	entry, err := h.Engine.Get(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeDomainError(w, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// UpdateEntry applies a partial update.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := ledger.EntryID(chi.URLParam(r, "id"))
	entry, err := h.Engine.Update(r.Context(), ownerFrom(r.Context()), id, req.patch())
	if err != nil {
		writeDomainError(w, "Failed to update entry", err)
		return
	}
	h.publish(r.Context(), ledger.EventEntryUpdated, entry)
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes an entry and reverts its effect.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := ledger.EntryID(chi.URLParam(r, "id"))
	entry, err := h.Engine.Delete(r.Context(), ownerFrom(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete entry", err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "Entry not found", nil)
		return
	}
	h.publish(r.Context(), ledger.EventEntryDeleted, entry)
	writeJSON(w, http.StatusOK, entry)
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// ListProfiles returns the available import profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := h.Profiles.Profiles()
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		_, pairs := p.(importer.Finalizer)
		dtos[i] = ProfileDTO{ID: p.ID(), Description: p.Description(), Pairing: pairs}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Import reads a CSV body with the named profile.
// POST /api/import/{profile}?default_currency=EUR
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.Lookup(chi.URLParam(r, "profile"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown import profile", err)
		return
	}

	currency := r.URL.Query().Get("default_currency")
	if currency == "" {
		currency = h.defaultCurrency
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := h.Importer.Import(r.Context(), ownerFrom(r.Context()), profile, body, currency)
	if err != nil {
		writeDomainError(w, "Import failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// AUDIT
// =============================================================================

// Audit compares every account balance with the sum of its entries.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	discrepancies, err := h.Engine.Audit(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Audit failed", err)
		return
	}

	resp := AuditResponse{Consistent: len(discrepancies) == 0, Discrepancies: []DiscrepancyDTO{}}
	for _, d := range discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, DiscrepancyDTO{
			AccountID:     string(d.AccountID),
			StoredCents:   d.Stored,
			ExpectedCents: d.Expected,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) publish(ctx context.Context, typ ledger.EventType, entry *ledger.Entry) {
	if h.publisher == nil || entry == nil {
		return
	}
	event := ledger.EntryEvent{
		Type:    typ,
		OwnerID: entry.OwnerID,
		Entry:   *entry,
		At:      time.Now().UnixMilli(),
	}
	if err := h.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		h.logger.Printf("events: publish %s %s failed: %v", typ, entry.ID, err)
	}
}

// writeDomainError maps ledger and importer errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	var verr *ledger.ValidationError
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Entry not found", err)
	case errors.Is(err, importer.ErrUnpairedTransfer):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   message,
			Code:    "unpaired_transfer",
			Details: reconcileErrors(err),
		})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   message,
			Code:    "invalid_" + verr.Field,
			Details: err.Error(),
		})
	case ledger.IsClientError(err),
		errors.Is(err, importer.ErrMissingField),
		errors.Is(err, importer.ErrInvalidAmount),
		errors.Is(err, importer.ErrInvalidDate),
		errors.Is(err, importer.ErrInvalidType):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, message, err)
			return
		}
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// reconcileErrors flattens a joined pairing error.
func reconcileErrors(err error) []*importer.ReconcileError {
	var out []*importer.ReconcileError
	var walk func(error)
	walk = func(err error) {
		if rerr, ok := err.(*importer.ReconcileError); ok {
			out = append(out, rerr)
			return
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		if next := errors.Unwrap(err); next != nil {
			walk(next)
		}
	}
	walk(err)
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
