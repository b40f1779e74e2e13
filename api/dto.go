/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Entries are returned
  as ledger.Entry, which already carries its JSON contract; accounts and
  categories get DTOs so balances can be rendered for display.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  Every amount is an integer in the currency's minor unit ("*_cents").
  Dates are unix milliseconds.

VALIDATION:
  Validation is done in handlers and the ledger engine, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: Entry JSON contract
*/
package api

import (
	"time"

	"github.com/warp/finance-ledger/importer"
	"github.com/warp/finance-ledger/ledger"
)

// =============================================================================
// ACCOUNTS & CATEGORIES
// =============================================================================

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Currency            string `json:"currency"`
	Icon                string `json:"icon,omitempty"`
	Color               string `json:"color,omitempty"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	BalanceCents        int64  `json:"balance_cents"`
	BalanceDisplay      string `json:"balance_display"`
	CreatedAt           string `json:"created_at"`
}

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:                  string(a.ID),
		Name:                a.Name,
		Currency:            a.Currency,
		Icon:                a.Icon,
		Color:               a.Color,
		OpeningBalanceCents: a.OpeningBalance,
		BalanceCents:        a.Balance,
		BalanceDisplay:      importer.FormatMinor(a.Balance, a.Currency),
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
	}
}

// CreateAccountRequest is the request body for creating an account.
type CreateAccountRequest struct {
	Name                string `json:"name"`
	Currency            string `json:"currency"`
	Icon                string `json:"icon"`
	Color               string `json:"color"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
}

// CategoryDTO represents a category in API responses.
type CategoryDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parent_id,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
}

func toCategoryDTO(c ledger.Category) CategoryDTO {
	return CategoryDTO{
		ID:       string(c.ID),
		Name:     c.Name,
		Type:     string(c.Type),
		ParentID: string(c.ParentID),
		Icon:     c.Icon,
		Color:    c.Color,
	}
}

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parent_id"`
	Icon     string `json:"icon"`
	Color    string `json:"color"`
}

// =============================================================================
// ENTRIES
// =============================================================================

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest struct {
	Kind                string `json:"kind"`
	Date                int64  `json:"date"`
	Description         string `json:"description"`
	CategoryID          string `json:"category_id"`
	AccountID           string `json:"account_id"`
	AmountCents         int64  `json:"amount_cents"`
	FromAccountID       string `json:"from_account_id"`
	ToAccountID         string `json:"to_account_id"`
	AmountSentCents     int64  `json:"amount_sent_cents"`
	AmountReceivedCents int64  `json:"amount_received_cents"`
}

func (r CreateEntryRequest) params() ledger.Params {
	return ledger.Params{
		Kind:                ledger.Kind(r.Kind),
		Date:                r.Date,
		Description:         r.Description,
		CategoryID:          ledger.CategoryID(r.CategoryID),
		AccountID:           ledger.AccountID(r.AccountID),
		AmountCents:         r.AmountCents,
		FromAccountID:       ledger.AccountID(r.FromAccountID),
		ToAccountID:         ledger.AccountID(r.ToAccountID),
		AmountSentCents:     r.AmountSentCents,
		AmountReceivedCents: r.AmountReceivedCents,
	}
}

// UpdateEntryRequest is a partial update; absent fields keep their value.
type UpdateEntryRequest struct {
	Kind                *string `json:"kind"`
	Date                *int64  `json:"date"`
	Description         *string `json:"description"`
	CategoryID          *string `json:"category_id"`
	AccountID           *string `json:"account_id"`
	AmountCents         *int64  `json:"amount_cents"`
	FromAccountID       *string `json:"from_account_id"`
	ToAccountID         *string `json:"to_account_id"`
	AmountSentCents     *int64  `json:"amount_sent_cents"`
	AmountReceivedCents *int64  `json:"amount_received_cents"`
}

func (r UpdateEntryRequest) patch() ledger.Patch {
	p := ledger.Patch{
		Date:                r.Date,
		Description:         r.Description,
		AmountCents:         r.AmountCents,
		AmountSentCents:     r.AmountSentCents,
		AmountReceivedCents: r.AmountReceivedCents,
	}
	if r.Kind != nil {
		k := ledger.Kind(*r.Kind)
		p.Kind = &k
	}
	if r.CategoryID != nil {
		c := ledger.CategoryID(*r.CategoryID)
		p.CategoryID = &c
	}
	p.AccountID = accountPtr(r.AccountID)
	p.FromAccountID = accountPtr(r.FromAccountID)
	p.ToAccountID = accountPtr(r.ToAccountID)
	return p
}

func accountPtr(s *string) *ledger.AccountID {
	if s == nil {
		return nil
	}
	id := ledger.AccountID(*s)
	return &id
}

// PageResponse is one page of entries.
type PageResponse struct {
	Items      []ledger.Entry `json:"items"`
	HasMore    bool           `json:"has_more"`
	NextCursor *int64         `json:"next_cursor,omitempty"`
}

// =============================================================================
// IMPORT & AUDIT
// =============================================================================

// ProfileDTO describes an import profile.
type ProfileDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Pairing     bool   `json:"pairs_transfers"`
}

// DiscrepancyDTO reports an account whose balance drifted from its entries.
type DiscrepancyDTO struct {
	AccountID     string `json:"account_id"`
	StoredCents   int64  `json:"stored_cents"`
	ExpectedCents int64  `json:"expected_cents"`
}

// AuditResponse is the result of a balance audit.
type AuditResponse struct {
	Consistent    bool             `json:"consistent"`
	Discrepancies []DiscrepancyDTO `json:"discrepancies"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
