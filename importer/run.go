package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/finance-ledger/ledger"
)

// NameStore looks up and creates accounts and categories by name.
// Lookups are case-insensitive and return nil, nil when nothing matches.
type NameStore interface {
	FindAccountByName(ctx context.Context, owner ledger.OwnerID, name string) (*ledger.Account, error)
	CreateAccount(ctx context.Context, acc ledger.Account) (*ledger.Account, error)
	FindCategoryByName(ctx context.Context, owner ledger.OwnerID, name string, kind ledger.Kind) (*ledger.Category, error)
	CreateCategory(ctx context.Context, c ledger.Category) (*ledger.Category, error)
}

// Defaults are applied to accounts and categories created during an import.
type Defaults struct {
	AccountIcon   string
	AccountColor  string
	CategoryIcon  string
	CategoryColor string
}

// Run is the reconciliation context of one import: it caches resolved names
// and counts what it had to create. It is not shared between imports.
type Run struct {
	owner    ledger.OwnerID
	names    NameStore
	defaults Defaults

	accounts   map[string]ledger.AccountID
	categories map[string]ledger.CategoryID

	NewAccounts   int
	NewCategories int
}

func NewRun(owner ledger.OwnerID, names NameStore, defaults Defaults) *Run {
	return &Run{
		owner:      owner,
		names:      names,
		defaults:   defaults,
		accounts:   make(map[string]ledger.AccountID),
		categories: make(map[string]ledger.CategoryID),
	}
}

// Account returns the id of the named account, creating it in currency if
// the owner has none by that name.
func (r *Run) Account(ctx context.Context, name, currency string) (ledger.AccountID, error) {
	key := strings.ToLower(name)
	if id, ok := r.accounts[key]; ok {
		return id, nil
	}

	acc, err := r.names.FindAccountByName(ctx, r.owner, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up account %q: %w", name, err)
	}
	if acc == nil {
		acc, err = r.names.CreateAccount(ctx, ledger.Account{
			OwnerID:  r.owner,
			Name:     name,
			Currency: currency,
			Icon:     r.defaults.AccountIcon,
			Color:    r.defaults.AccountColor,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create account %q: %w", name, err)
		}
		r.NewAccounts++
	}

	r.accounts[key] = acc.ID
	return acc.ID, nil
}

// Category returns the id of the named category of the given kind, creating
// it if needed. An empty name resolves to no category.
func (r *Run) Category(ctx context.Context, name string, kind ledger.Kind) (ledger.CategoryID, error) {
	if name == "" {
		return "", nil
	}
	key := string(kind) + "/" + strings.ToLower(name)
	if id, ok := r.categories[key]; ok {
		return id, nil
	}

	c, err := r.names.FindCategoryByName(ctx, r.owner, name, kind)
	if err != nil {
		return "", fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	if c == nil {
		c, err = r.names.CreateCategory(ctx, ledger.Category{
			OwnerID: r.owner,
			Name:    name,
			Type:    kind,
			Icon:    r.defaults.CategoryIcon,
			Color:   r.defaults.CategoryColor,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create category %q: %w", name, err)
		}
		r.NewCategories++
	}

	r.categories[key] = c.ID
	return c.ID, nil
}

// Params resolves a row's names into ledger ids.
func (r *Run) Params(ctx context.Context, row Row) (ledger.Params, error) {
	p := ledger.Params{
		Kind:        row.Kind,
		Date:        row.Date,
		Description: row.Description,
	}

	account, err := r.Account(ctx, row.Account, row.Currency)
	if err != nil {
		return p, err
	}

	if row.Kind == ledger.KindTransfer {
		to, err := r.Account(ctx, row.ToAccount, row.ToCurrency)
		if err != nil {
			return p, err
		}
		p.FromAccountID = account
		p.ToAccountID = to
		p.AmountSentCents = row.Amount
		p.AmountReceivedCents = row.ReceivedAmount
		return p, nil
	}

	category, err := r.Category(ctx, row.Category, row.Kind)
	if err != nil {
		return p, err
	}
	p.AccountID = account
	p.CategoryID = category
	p.AmountCents = row.Amount
	return p, nil
}
