package importer

import (
	"regexp"
	"strings"

	"github.com/warp/finance-ledger/ledger"
)

// LegsProfile reads exports that record a transfer as two ordinary-looking
// rows, one per account, tagged through the category column:
//
//	Date,Account,Category,Amount,Currency,Converted Amount,Converted Currency
//	2024-03-01 09:00,Cash,to 'Bank',-100,USD,,
//	2024-03-01 21:00,Bank,from 'Cash',100,USD,,
//
// Tagged rows become transfer stubs that Finalize pairs back into transfers.
type LegsProfile struct {
	variants Variants
	pairing  PairingOptions
}

// NewLegsProfile returns the two-leg profile. allowOneSidedIn turns an
// incoming leg without an outgoing partner into a transfer instead of an error.
func NewLegsProfile(variants Variants, allowOneSidedIn bool) *LegsProfile {
	return &LegsProfile{
		variants: variants,
		pairing:  PairingOptions{AllowOneSidedIn: allowOneSidedIn},
	}
}

func (p *LegsProfile) ID() string { return "legs" }

func (p *LegsProfile) Description() string {
	return "transfers exported as two single-leg rows tagged to '<account>' / from '<account>'"
}

var legsFields = []Field{
	FieldDate, FieldType, FieldAccount, FieldConvertedAmount, FieldConvertedCurrency,
	FieldAmount, FieldCurrency, FieldCategory, FieldDescription,
}

func (p *LegsProfile) InferMapping(headers []string) (Mapping, error) {
	return InferMapping(headers, p.variants, legsFields,
		[]Field{FieldDate, FieldAmount, FieldAccount, FieldCategory})
}

var (
	outgoingTag = regexp.MustCompile(`(?i)^\s*to\s+'(.+)'\s*$`)
	incomingTag = regexp.MustCompile(`(?i)^\s*from\s+'(.+)'\s*$`)
)

// transferTag reports whether a category label marks a transfer leg.
func transferTag(category string) (Direction, string, bool) {
	if m := outgoingTag.FindStringSubmatch(category); m != nil {
		return DirectionOut, strings.TrimSpace(m[1]), true
	}
	if m := incomingTag.FindStringSubmatch(category); m != nil {
		return DirectionIn, strings.TrimSpace(m[1]), true
	}
	return "", "", false
}

func (p *LegsProfile) Normalize(row MappedRow, defaultCurrency string) (Item, error) {
	base, signed, err := normalizeCommon(row, defaultCurrency)
	if err != nil || signed.IsZero() {
		return Item{}, err
	}
	amount, err := ToMinor(signed.Abs(), base.Currency)
	if err != nil {
		return Item{}, fieldError(ErrInvalidAmount, FieldAmount, row[FieldAmount])
	}

	direction, other, ok := transferTag(base.Category)
	if !ok {
		kind, err := kindOf(row[FieldType], signed)
		if err != nil {
			return Item{}, err
		}
		if kind == ledger.KindTransfer {
			return Item{}, fieldError(ErrInvalidType, FieldType, row[FieldType])
		}
		base.Kind = kind
		base.Amount = amount
		return Item{Row: base}, nil
	}

	stub := &TransferStub{
		Direction:    direction,
		Account:      base.Account,
		OtherAccount: other,
		Amount:       amount,
		Currency:     base.Currency,
		Date:         base.Date,
		Description:  base.Description,
	}
	if raw := strings.TrimSpace(row[FieldConvertedAmount]); raw != "" && direction == DirectionOut {
		converted, err := ParseDecimal(raw)
		if err != nil {
			return Item{}, fieldError(ErrInvalidAmount, FieldConvertedAmount, raw)
		}
		stub.ConvertedCurrency = upperOr(row[FieldConvertedCurrency], base.Currency)
		if stub.ConvertedAmount, err = ToMinor(converted.Abs(), stub.ConvertedCurrency); err != nil {
			return Item{}, fieldError(ErrInvalidAmount, FieldConvertedAmount, raw)
		}
	}
	return Item{Stub: stub}, nil
}

func (p *LegsProfile) Finalize(items []Item, defaultCurrency string) ([]Row, error) {
	return PairTransfers(items, p.pairing)
}

var (
	_ Profile   = (*StandardProfile)(nil)
	_ Profile   = (*LegsProfile)(nil)
	_ Finalizer = (*LegsProfile)(nil)
)
