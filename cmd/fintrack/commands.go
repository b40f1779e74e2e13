package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/warp/finance-ledger/config"
	"github.com/warp/finance-ledger/importer"
	"github.com/warp/finance-ledger/ledger"
	"github.com/warp/finance-ledger/store/sqlite"
)

// register adds the fintrack subcommands; their flag defaults come from cfg.
func register(c *subcommands.Commander, cfg *config.Config, out io.Writer) {
	c.Register(&importCmd{cfg: cfg, out: out}, "ledger")
	c.Register(&auditCmd{cfg: cfg, out: out}, "ledger")
	c.Register(&resetCmd{cfg: cfg, out: out}, "ledger")
	c.Register(&inspectCmd{cfg: cfg, out: out}, "import")
}

// registry builds the profile registry, honoring IMPORT_VARIANTS_FILE.
func registry(cfg *config.Config) (*importer.Registry, error) {
	if cfg.Import.VariantsFile == "" {
		return importer.NewRegistry(nil), nil
	}
	variants, err := importer.LoadVariants(cfg.Import.VariantsFile)
	if err != nil {
		return nil, err
	}
	return importer.NewRegistry(variants), nil
}

// =============================================================================
// import
// =============================================================================

type importCmd struct {
	cfg *config.Config
	out io.Writer

	db       string
	owner    string
	profile  string
	currency string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a CSV export into the ledger" }
func (*importCmd) Usage() string {
	return `fintrack import -owner <id> [-db <path>] [-profile standard|legs] [-currency USD] <file.csv>

  Reads the file with the profile, creates missing accounts and categories,
  and records one entry per row. Rows that fail are reported; the others stay
  committed. Unpaired transfer legs abort the import before anything is written.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", c.cfg.DBPath, "SQLite database path")
	f.StringVar(&c.owner, "owner", "", "Owner the entries belong to")
	f.StringVar(&c.profile, "profile", "standard", "Import profile")
	f.StringVar(&c.currency, "currency", c.cfg.DefaultCurrency, "Currency for rows without one")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" || f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	profiles, err := registry(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading header variants: %v\n", err)
		return subcommands.ExitFailure
	}
	profile, err := profiles.Lookup(c.profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	store, err := sqlite.New(c.db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %q: %v\n", c.db, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	driver := importer.NewDriver(ledger.NewEngine(store), store,
		importer.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
		importer.WithMaxErrors(c.cfg.Import.MaxErrors),
	)
	result, err := driver.Import(ctx, ledger.OwnerID(c.owner), profile, file, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(c.out, "imported %d, failed %d, skipped %d (new accounts %d, new categories %d)\n",
		result.Imported, result.Failed, result.Skipped, result.NewAccounts, result.NewCategories)
	for _, rerr := range result.Errors {
		fmt.Fprintf(c.out, "  %v\n", rerr)
	}
	if result.Failed > len(result.Errors) {
		fmt.Fprintf(c.out, "  ... and %d more\n", result.Failed-len(result.Errors))
	}
	if result.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// =============================================================================
// inspect
// =============================================================================

type inspectCmd struct {
	cfg *config.Config
	out io.Writer

	profile  string
	currency string
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "show how a CSV export would be imported" }
func (*inspectCmd) Usage() string {
	return `fintrack inspect [-profile standard|legs] [-currency USD] <file.csv>

  Prints the column mapping inferred from the headers and the rows an import
  would record. Nothing is written.
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "profile", "standard", "Import profile")
	f.StringVar(&c.currency, "currency", c.cfg.DefaultCurrency, "Currency for rows without one")
}

func (c *inspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	profiles, err := registry(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading header variants: %v\n", err)
		return subcommands.ExitFailure
	}
	profile, err := profiles.Lookup(c.profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	defer file.Close()

	driver := importer.NewDriver(nil, nil, importer.WithMaxErrors(c.cfg.Import.MaxErrors))
	preview, err := driver.Preview(profile, file, c.currency)
	if preview == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	writePreview(c.out, preview)
	if err != nil {
		fmt.Fprintf(c.out, "\nfinalize failed:\n%v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writePreview(out io.Writer, p *importer.Preview) {
	fields := make([]string, 0, len(p.Mapping))
	for field := range p.Mapping {
		fields = append(fields, string(field))
	}
	sort.Strings(fields)

	fmt.Fprintln(out, "mapping:")
	for _, field := range fields {
		idx := p.Mapping[importer.Field(field)]
		fmt.Fprintf(out, "  %-18s <- %q (column %d)\n", field, p.Headers[idx], idx+1)
	}

	fmt.Fprintf(out, "\nrows (%d):\n", len(p.Rows))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tDATE\tKIND\tACCOUNT\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, row := range p.Rows {
		account := row.Account
		amount := importer.FormatMinor(row.Amount, row.Currency)
		if row.Kind == ledger.KindTransfer {
			account += " -> " + row.ToAccount
			if row.ToCurrency != "" && !strings.EqualFold(row.ToCurrency, row.Currency) {
				amount += " -> " + importer.FormatMinor(row.ReceivedAmount, row.ToCurrency)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Line,
			time.UnixMilli(row.Date).UTC().Format("2006-01-02 15:04"),
			row.Kind, account, amount, row.Category, row.Description)
	}
	tw.Flush()

	if p.Result.Failed > 0 || p.Result.Skipped > 0 {
		fmt.Fprintf(out, "\nfailed %d, skipped %d\n", p.Result.Failed, p.Result.Skipped)
		for _, rerr := range p.Result.Errors {
			fmt.Fprintf(out, "  %v\n", rerr)
		}
	}
}

// =============================================================================
// audit
// =============================================================================

type auditCmd struct {
	cfg *config.Config
	out io.Writer

	db    string
	owner string
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "check every account balance against its entries" }
func (*auditCmd) Usage() string {
	return `fintrack audit -owner <id> [-db <path>]

  Recomputes each account's balance from its opening balance and entries and
  lists the accounts whose stored balance differs. Exits non-zero if any do.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", c.cfg.DBPath, "SQLite database path")
	f.StringVar(&c.owner, "owner", "", "Owner to audit")
}

func (c *auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	store, err := sqlite.New(c.db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %q: %v\n", c.db, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	owner := ledger.OwnerID(c.owner)
	discrepancies, err := ledger.NewEngine(store).Audit(ctx, owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Audit failed: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(discrepancies) == 0 {
		fmt.Fprintln(c.out, "all balances consistent")
		return subcommands.ExitSuccess
	}

	accounts, err := store.ListAccounts(ctx, owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}
	byID := make(map[ledger.AccountID]ledger.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tSTORED\tEXPECTED")
	for _, d := range discrepancies {
		acc := byID[d.AccountID]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", acc.Name,
			importer.FormatMinor(d.Stored, acc.Currency),
			importer.FormatMinor(d.Expected, acc.Currency))
	}
	tw.Flush()
	return subcommands.ExitFailure
}

// =============================================================================
// reset
// =============================================================================

type resetCmd struct {
	cfg *config.Config
	out io.Writer

	db    string
	owner string
	yes   bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "delete all of one owner's data" }
func (*resetCmd) Usage() string {
	return `fintrack reset -owner <id> -yes [-db <path>]

  Deletes the owner's entries, categories and accounts in one transaction.
  Other owners are untouched. Requires -yes.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", c.cfg.DBPath, "SQLite database path")
	f.StringVar(&c.owner, "owner", "", "Owner whose data is deleted")
	f.BoolVar(&c.yes, "yes", false, "Confirm the deletion")
}

func (c *resetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" || !c.yes {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	store, err := sqlite.New(c.db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %q: %v\n", c.db, err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	removed, err := store.ResetOwner(ctx, ledger.OwnerID(c.owner))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(c.out, "removed %d accounts for %s\n", removed, c.owner)
	return subcommands.ExitSuccess
}
