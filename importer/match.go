package importer

import (
	"fmt"
	"strings"
	"unicode"
)

// Variants lists the header spellings recognized for each field.
type Variants map[Field][]string

// DefaultVariants returns the built-in header spellings.
func DefaultVariants() Variants {
	return Variants{
		FieldDate:              {"date", "transaction date", "booking date", "value date", "posted", "fecha", "datum"},
		FieldAmount:            {"amount", "value", "sum", "total", "importe", "monto", "betrag"},
		FieldType:              {"type", "kind", "transaction type", "entry type", "tipo"},
		FieldAccount:           {"account", "wallet", "source account", "from account", "cuenta"},
		FieldCategory:          {"category", "categories", "category name", "categoria"},
		FieldDescription:       {"description", "note", "notes", "memo", "payee", "details", "descripcion", "concepto"},
		FieldCurrency:          {"currency", "ccy", "currency code", "moneda"},
		FieldToAccount:         {"to account", "destination account", "target account", "destination"},
		FieldToAmount:          {"to amount", "received amount", "amount received", "destination amount"},
		FieldToCurrency:        {"to currency", "destination currency", "received currency"},
		FieldConvertedAmount:   {"converted amount", "amount in account currency", "ref amount"},
		FieldConvertedCurrency: {"converted currency", "account currency", "ref currency"},
	}
}

// Merge returns v with every spelling of other appended to its field.
func (v Variants) Merge(other Variants) Variants {
	out := make(Variants, len(v))
	for field, names := range v {
		out[field] = append([]string(nil), names...)
	}
	for field, names := range other {
		out[field] = append(out[field], names...)
	}
	return out
}

// NormalizeHeader lower-cases s and strips everything but letters and digits.
func NormalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

const (
	matchNone = iota
	matchPartial
	matchExact
)

// score rates how well a normalized header matches one of the variants.
func score(header string, variants []string) int {
	best := matchNone
	for _, v := range variants {
		nv := NormalizeHeader(v)
		switch {
		case nv == "":
		case header == nv:
			return matchExact
		case len(nv) >= 3 && len(header) >= 3 &&
			(strings.Contains(header, nv) || strings.Contains(nv, header)):
			best = matchPartial
		}
	}
	return best
}

// InferMapping assigns each field in fields the best-matching unused column.
// Fields are claimed in order, exact matches before partial ones, so earlier
// fields win contested columns. Fields in required that stay unmapped make
// InferMapping fail.
func InferMapping(headers []string, variants Variants, fields, required []Field) (Mapping, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	mapping := make(Mapping)
	used := make(map[int]bool)
	for _, pass := range []int{matchExact, matchPartial} {
		for _, field := range fields {
			if _, ok := mapping[field]; ok {
				continue
			}
			for i, h := range normalized {
				if used[i] || h == "" {
					continue
				}
				if score(h, variants[field]) == pass {
					mapping[field] = i
					used[i] = true
					break
				}
			}
		}
	}

	var missing []string
	for _, field := range required {
		if _, ok := mapping[field]; !ok {
			missing = append(missing, string(field))
		}
	}
	if len(missing) > 0 {
		return mapping, fmt.Errorf("%w: %s (headers: %s)",
			ErrMissingField, strings.Join(missing, ", "), strings.Join(headers, ", "))
	}
	return mapping, nil
}
