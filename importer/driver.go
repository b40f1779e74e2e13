package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/warp/finance-ledger/ledger"
)

// DefaultMaxErrors caps Result.Errors unless overridden.
const DefaultMaxErrors = 20

// Creator is the ledger operation the driver commits rows through.
type Creator interface {
	Create(ctx context.Context, owner ledger.OwnerID, p ledger.Params) (*ledger.Entry, error)
}

// Result tallies one import. Counts are exact; Errors is capped.
type Result struct {
	Profile       string           `json:"profile"`
	Imported      int              `json:"imported"`
	Failed        int              `json:"failed"`
	Skipped       int              `json:"skipped"`
	NewAccounts   int              `json:"new_accounts"`
	NewCategories int              `json:"new_categories"`
	Errors        []*RowError      `json:"errors"`
	Entries       []ledger.EntryID `json:"entries"`
}

func (r *Result) fail(err *RowError, max int) {
	r.Failed++
	if len(r.Errors) < max {
		r.Errors = append(r.Errors, err)
	}
}

// Driver reads a CSV export and commits it row by row. Rows that fail are
// tallied; rows that succeed stay committed whatever happens later.
type Driver struct {
	ledger    Creator
	names     NameStore
	logger    *log.Logger
	maxErrors int
	defaults  Defaults
	onEntry   func(ctx context.Context, entry *ledger.Entry)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

func WithLogger(l *log.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

func WithMaxErrors(n int) DriverOption {
	return func(d *Driver) { d.maxErrors = n }
}

func WithDefaults(defaults Defaults) DriverOption {
	return func(d *Driver) { d.defaults = defaults }
}

// WithEntryHook calls fn after each committed entry.
func WithEntryHook(fn func(ctx context.Context, entry *ledger.Entry)) DriverOption {
	return func(d *Driver) { d.onEntry = fn }
}

func NewDriver(creator Creator, names NameStore, opts ...DriverOption) *Driver {
	d := &Driver{
		ledger:    creator,
		names:     names,
		logger:    log.Default(),
		maxErrors: DefaultMaxErrors,
		defaults:  Defaults{AccountIcon: "wallet", AccountColor: "#607d8b", CategoryIcon: "tag", CategoryColor: "#9e9e9e"},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Import reads CSV from r with profile and creates one entry per row.
//
// It returns an error without writing anything when the headers cannot be
// mapped or the profile's Finalize pass fails (for example an unpaired
// transfer). Otherwise it returns the tallies; per-row failures are in
// Result.Errors, not in the error.
func (d *Driver) Import(ctx context.Context, owner ledger.OwnerID, profile Profile, r io.Reader, defaultCurrency string) (*Result, error) {
	items, result, err := d.Normalize(profile, r, defaultCurrency)
	if err != nil {
		return nil, err
	}

	rows, err := d.finalize(profile, items, defaultCurrency)
	if err != nil {
		d.logger.Printf("import: owner=%s profile=%s aborted: %v", owner, profile.ID(), err)
		return nil, err
	}

	run := NewRun(owner, d.names, d.defaults)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry, err := d.commit(ctx, run, owner, row)
		if err != nil {
			result.fail(newRowError(row.Line, err), d.maxErrors)
			continue
		}
		result.Imported++
		result.Entries = append(result.Entries, entry.ID)
		if d.onEntry != nil {
			d.onEntry(ctx, entry)
		}
	}

	result.NewAccounts = run.NewAccounts
	result.NewCategories = run.NewCategories
	d.logger.Printf("import: owner=%s profile=%s imported=%d failed=%d skipped=%d new_accounts=%d new_categories=%d",
		owner, profile.ID(), result.Imported, result.Failed, result.Skipped, result.NewAccounts, result.NewCategories)
	return result, nil
}

func (d *Driver) commit(ctx context.Context, run *Run, owner ledger.OwnerID, row Row) (*ledger.Entry, error) {
	params, err := run.Params(ctx, row)
	if err != nil {
		return nil, err
	}
	return d.ledger.Create(ctx, owner, params)
}

// Normalize reads and normalizes every record without touching the ledger.
// Row-level failures are tallied in the returned Result.
func (d *Driver) Normalize(profile Profile, r io.Reader, defaultCurrency string) ([]Item, *Result, error) {
	preview, items, err := d.normalize(profile, r, defaultCurrency)
	if err != nil {
		return nil, nil, err
	}
	return items, preview.Result, nil
}

// Preview is a dry run: the inferred mapping and the rows an import would
// commit.
type Preview struct {
	Headers []string
	Mapping Mapping
	Rows    []Row
	Result  *Result
}

// Preview normalizes and finalizes r without resolving names or writing.
// A finalize failure is returned as the error, with the partial preview.
func (d *Driver) Preview(profile Profile, r io.Reader, defaultCurrency string) (*Preview, error) {
	preview, items, err := d.normalize(profile, r, defaultCurrency)
	if err != nil {
		return nil, err
	}
	preview.Rows, err = d.finalize(profile, items, defaultCurrency)
	return preview, err
}

// normalize returns a Preview without Rows alongside the normalized items.
func (d *Driver) normalize(profile Profile, r io.Reader, defaultCurrency string) (*Preview, []Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: empty file", ErrMissingField)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read headers: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	mapping, err := profile.InferMapping(headers)
	if err != nil {
		return nil, nil, err
	}

	result := &Result{Profile: profile.ID(), Errors: []*RowError{}}
	var items []Item
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.fail(newRowError(parseErr.StartLine, err), d.maxErrors)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if blank(record) {
			continue
		}

		item, err := profile.Normalize(mapping.Apply(record), defaultCurrency)
		if err != nil {
			result.fail(newRowError(line, err), d.maxErrors)
			continue
		}
		if item.Skip() {
			result.Skipped++
			continue
		}
		if item.Row != nil {
			item.Row.Line = line
		}
		if item.Stub != nil {
			item.Stub.Line = line
		}
		items = append(items, item)
	}
	return &Preview{Headers: headers, Mapping: mapping, Result: result}, items, nil
}

func (d *Driver) finalize(profile Profile, items []Item, defaultCurrency string) ([]Row, error) {
	if f, ok := profile.(Finalizer); ok {
		return f.Finalize(items, defaultCurrency)
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if item.Stub != nil {
			return nil, unpaired(item.Stub)
		}
		rows = append(rows, *item.Row)
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
