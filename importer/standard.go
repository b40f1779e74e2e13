package importer

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/finance-ledger/ledger"
)

// StandardProfile reads exports where every row is a complete entry and the
// type column (or the amount's sign) says what it is. Transfers name their
// destination in a to-account column on the same row.
//
//	Date,Type,Account,Category,Amount,Currency,To Account,To Amount
//	2024-03-01,expense,Cash,Food,12.50,USD,,
//	2024-03-02,transfer,Bank,,100,USD,Savings,
type StandardProfile struct {
	variants Variants
}

func NewStandardProfile(variants Variants) *StandardProfile {
	return &StandardProfile{variants: variants}
}

func (p *StandardProfile) ID() string { return "standard" }

func (p *StandardProfile) Description() string {
	return "one row per entry; type column or amount sign selects expense/income/transfer"
}

var standardFields = []Field{
	FieldDate, FieldType, FieldAccount, FieldToAccount, FieldToAmount, FieldToCurrency,
	FieldAmount, FieldCurrency, FieldCategory, FieldDescription,
}

func (p *StandardProfile) InferMapping(headers []string) (Mapping, error) {
	return InferMapping(headers, p.variants, standardFields,
		[]Field{FieldDate, FieldAmount, FieldAccount})
}

func (p *StandardProfile) Normalize(row MappedRow, defaultCurrency string) (Item, error) {
	base, signed, err := normalizeCommon(row, defaultCurrency)
	if err != nil || signed.IsZero() {
		return Item{}, err
	}

	kind, err := kindOf(row[FieldType], signed)
	if err != nil {
		return Item{}, err
	}
	base.Kind = kind
	if base.Amount, err = ToMinor(signed.Abs(), base.Currency); err != nil {
		return Item{}, fieldError(ErrInvalidAmount, FieldAmount, row[FieldAmount])
	}

	if kind != ledger.KindTransfer {
		return Item{Row: base}, nil
	}

	base.Category = ""
	base.ToAccount = strings.TrimSpace(row[FieldToAccount])
	if base.ToAccount == "" {
		return Item{}, fieldError(ErrMissingField, FieldToAccount, "")
	}
	base.ToCurrency = upperOr(row[FieldToCurrency], base.Currency)
	base.ReceivedAmount = base.Amount
	if raw := strings.TrimSpace(row[FieldToAmount]); raw != "" {
		received, err := ParseDecimal(raw)
		if err != nil {
			return Item{}, fieldError(ErrInvalidAmount, FieldToAmount, raw)
		}
		if base.ReceivedAmount, err = ToMinor(received.Abs(), base.ToCurrency); err != nil {
			return Item{}, fieldError(ErrInvalidAmount, FieldToAmount, raw)
		}
	}
	return Item{Row: base}, nil
}

// normalizeCommon parses the fields every profile shares. The returned
// amount keeps its sign and is in major units.
func normalizeCommon(row MappedRow, defaultCurrency string) (*Row, decimal.Decimal, error) {
	date, err := ParseDate(row[FieldDate])
	if err != nil {
		return nil, decimal.Zero, err
	}
	account := strings.TrimSpace(row[FieldAccount])
	if account == "" {
		return nil, decimal.Zero, fieldError(ErrMissingField, FieldAccount, "")
	}
	amount, err := ParseDecimal(row[FieldAmount])
	if err != nil {
		return nil, decimal.Zero, err
	}

	return &Row{
		Date:        date,
		Description: strings.TrimSpace(row[FieldDescription]),
		Category:    strings.TrimSpace(row[FieldCategory]),
		Account:     account,
		Currency:    upperOr(row[FieldCurrency], defaultCurrency),
	}, amount, nil
}

var kindWords = map[string]ledger.Kind{
	"expense":       ledger.KindExpense,
	"expenses":      ledger.KindExpense,
	"debit":         ledger.KindExpense,
	"withdrawal":    ledger.KindExpense,
	"payment":       ledger.KindExpense,
	"gasto":         ledger.KindExpense,
	"income":        ledger.KindIncome,
	"credit":        ledger.KindIncome,
	"deposit":       ledger.KindIncome,
	"ingreso":       ledger.KindIncome,
	"transfer":      ledger.KindTransfer,
	"transfers":     ledger.KindTransfer,
	"transferencia": ledger.KindTransfer,
}

// kindOf reads the type cell, falling back to the amount's sign when the
// cell is empty: negative is an expense, positive an income.
func kindOf(cell string, signed decimal.Decimal) (ledger.Kind, error) {
	cell = strings.ToLower(strings.TrimSpace(cell))
	if cell == "" {
		if signed.IsNegative() {
			return ledger.KindExpense, nil
		}
		return ledger.KindIncome, nil
	}
	kind, ok := kindWords[cell]
	if !ok {
		return "", fieldError(ErrInvalidType, FieldType, cell)
	}
	return kind, nil
}

func upperOr(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(fallback)
}
