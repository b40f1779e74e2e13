/*
Package ledger provides the transactional ledger engine for the finance tracker.

PURPOSE:
  Records expenses, income and transfers against owner-scoped accounts while
  keeping every account's stored balance equal to the net effect of the
  entries that reference it. Edits and deletions revert the old effect and
  apply the new one inside the same atomic unit.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: running balance in minor units, tagged with an opaque currency
  - Entry: one recorded financial event (expense, income or transfer)
  - Params / Patch: create input and partial update input
  - Delta: one signed balance change produced by an entry's effect

DESIGN PRINCIPLES:
  1. Minor units: amounts are int64 counts of the currency's smallest unit
  2. Opaque currency: the ledger never converts between currencies
  3. Type Safety: distinct ID types keep accounts, entries and owners apart
  4. Owner scoping: every read and write carries the owner ID

SEE ALSO:
  - effect.go: Effect computation and validation
  - engine.go: Create/Update/Delete orchestration
  - store.go: Persistence interfaces
*/
package ledger

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OwnerID string
type AccountID string
type EntryID string
type CategoryID string

// =============================================================================
// KIND
// =============================================================================

// Kind is the type of a ledger entry.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindTransfer:
		return true
	}
	return false
}

// =============================================================================
// ACCOUNT & CATEGORY
// =============================================================================

// Account holds a running balance. It is created outside the engine and
// only ever mutated through entry effects; Balance starts at OpeningBalance.
type Account struct {
	ID             AccountID
	OwnerID        OwnerID
	Name           string
	Currency       string
	Icon           string
	Color          string
	OpeningBalance int64
	Balance        int64
	CreatedAt      time.Time
}

// Category is referenced by entries as an opaque foreign key.
type Category struct {
	ID        CategoryID
	OwnerID   OwnerID
	Name      string
	Type      Kind // expense or income
	ParentID  CategoryID
	Icon      string
	Color     string
	CreatedAt time.Time
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one recorded financial event.
//
// Expense and income entries use AccountID and AmountCents. Transfer entries
// use FromAccountID, ToAccountID, AmountSentCents (in the source account's
// currency) and AmountReceivedCents (in the destination account's currency);
// AmountCents mirrors AmountSentCents for transfers.
type Entry struct {
	ID          EntryID    `json:"id"`
	OwnerID     OwnerID    `json:"owner_id"`
	Kind        Kind       `json:"kind"`
	Date        int64      `json:"date"` // epoch millis
	Description string     `json:"description,omitempty"`
	CategoryID  CategoryID `json:"category_id,omitempty"`

	AccountID   AccountID `json:"account_id,omitempty"`
	AmountCents int64     `json:"amount_cents"`

	FromAccountID       AccountID `json:"from_account_id,omitempty"`
	ToAccountID         AccountID `json:"to_account_id,omitempty"`
	AmountSentCents     int64     `json:"amount_sent_cents,omitempty"`
	AmountReceivedCents int64     `json:"amount_received_cents,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Params is the input to Engine.Create.
type Params struct {
	Kind        Kind
	Date        int64
	Description string
	CategoryID  CategoryID

	AccountID   AccountID
	AmountCents int64

	FromAccountID       AccountID
	ToAccountID         AccountID
	AmountSentCents     int64
	AmountReceivedCents int64
}

// Patch is a partial update. Nil fields keep the stored value. Setting only
// AmountCents on a transfer replaces both its sent and received amounts, so a
// cross-currency transfer patched that way fails validation.
type Patch struct {
	Kind        *Kind
	Date        *int64
	Description *string
	CategoryID  *CategoryID

	AccountID   *AccountID
	AmountCents *int64

	FromAccountID       *AccountID
	ToAccountID         *AccountID
	AmountSentCents     *int64
	AmountReceivedCents *int64
}

// Params returns the entry's current field values as create parameters.
func (e Entry) Params() Params {
	return Params{
		Kind:                e.Kind,
		Date:                e.Date,
		Description:         e.Description,
		CategoryID:          e.CategoryID,
		AccountID:           e.AccountID,
		AmountCents:         e.AmountCents,
		FromAccountID:       e.FromAccountID,
		ToAccountID:         e.ToAccountID,
		AmountSentCents:     e.AmountSentCents,
		AmountReceivedCents: e.AmountReceivedCents,
	}
}

// Apply merges the patch over p.
func (p Params) Apply(patch Patch) Params {
	if patch.Kind != nil {
		p.Kind = *patch.Kind
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.AccountID != nil {
		p.AccountID = *patch.AccountID
	}
	if patch.AmountCents != nil {
		p.AmountCents = *patch.AmountCents
		if patch.AmountSentCents == nil && patch.AmountReceivedCents == nil {
			p.AmountSentCents, p.AmountReceivedCents = 0, 0
		}
	}
	if patch.FromAccountID != nil {
		p.FromAccountID = *patch.FromAccountID
	}
	if patch.ToAccountID != nil {
		p.ToAccountID = *patch.ToAccountID
	}
	if patch.AmountSentCents != nil {
		p.AmountSentCents = *patch.AmountSentCents
	}
	if patch.AmountReceivedCents != nil {
		p.AmountReceivedCents = *patch.AmountReceivedCents
	}
	return p
}

// Delta is a signed balance change on one account.
type Delta struct {
	AccountID AccountID
	Amount    int64
}

// =============================================================================
// LISTING
// =============================================================================

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ListFilter selects entries for one page.
//
// AccountID matches the entry's AccountID, FromAccountID or ToAccountID.
// StartDate and EndDate are inclusive. Cursor is the Date of the last entry
// of the previous page and is compared strictly in the sort direction.
type ListFilter struct {
	CategoryID CategoryID
	AccountID  AccountID
	StartDate  *int64
	EndDate    *int64
	Sort       SortDirection
	Cursor     *int64
	Limit      int
}

// Page is one page of entries.
type Page struct {
	Items      []Entry
	HasMore    bool
	NextCursor *int64
}

// Discrepancy reports an account whose stored balance differs from the sum
// of its entries' effects.
type Discrepancy struct {
	AccountID AccountID
	Stored    int64
	Expected  int64
}
