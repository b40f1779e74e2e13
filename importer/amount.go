package importer

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// defaultFraction is used for currencies go-money does not know.
const defaultFraction = 2

// FractionDigits returns the number of minor-unit digits of a currency.
func FractionDigits(currency string) int {
	if cur := money.GetCurrency(strings.ToUpper(currency)); cur != nil {
		return cur.Fraction
	}
	return defaultFraction
}

// ParseDecimal parses a human-formatted amount: "1,234.56", "1.234,56",
// "-12", "(12.50)", "$ 1 200". Currency symbols and codes are ignored.
func ParseDecimal(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
		raw = raw[1 : len(raw)-1]
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r), r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' || r == '−':
			negative = !negative
		}
	}
	digits := b.String()
	if digits == "" {
		return decimal.Zero, fieldError(ErrInvalidAmount, FieldAmount, s)
	}

	d, err := decimal.NewFromString(canonicalSeparators(digits))
	if err != nil {
		return decimal.Zero, fieldError(ErrInvalidAmount, FieldAmount, s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// canonicalSeparators rewrites digits so '.' is the only (decimal) separator.
func canonicalSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever comes last is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 != 3 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// ParseAmount parses s and scales it to minor units of currency.
// Values with more precision than the currency allows are rounded.
func ParseAmount(s, currency string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	minor, err := ToMinor(d, currency)
	if err != nil {
		return 0, fieldError(ErrInvalidAmount, FieldAmount, s)
	}
	return minor, nil
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ToMinor scales a major-unit amount to minor units of currency. Amounts
// that do not fit in an int64 are rejected with ErrInvalidAmount.
func ToMinor(d decimal.Decimal, currency string) (int64, error) {
	minor := d.Shift(int32(FractionDigits(currency))).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrInvalidAmount
	}
	return minor.IntPart(), nil
}

// FormatMinor renders minor units the way the currency is usually written.
func FormatMinor(amount int64, currency string) string {
	return money.New(amount, strings.ToUpper(currency)).Display()
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"20060102",
	time.RFC3339,
}

// minEpochDigits is the shortest all-digit cell read as unix milliseconds.
// Shorter all-digit cells that are not compact dates are rejected.
const minEpochDigits = 10

// ParseDate accepts the supported layouts or unix milliseconds and returns
// unix milliseconds. Zone-less values are read as UTC.
func ParseDate(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fieldError(ErrMissingField, FieldDate, s)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), nil
		}
	}
	if len(s) >= minEpochDigits {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return ms, nil
		}
	}
	return 0, fieldError(ErrInvalidDate, FieldDate, s)
}
