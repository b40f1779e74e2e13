/*
Package importer turns bank and budgeting-app CSV exports into ledger entries.

PURPOSE:
  A Profile knows one export format. It maps CSV headers to logical fields,
  normalizes each row into a Row (or a half-transfer TransferStub), and may
  run a Finalize pass over the whole batch. The Driver feeds the result to
  ledger.Engine.Create, one row per atomic unit.

PIPELINE:
  headers  --InferMapping-->  Mapping
  record   --Mapping.Apply--> MappedRow  --Normalize-->  Item (Row | Stub | skip)
  []Item   --Finalize------>  []Row      (pairs transfer stubs)
  Row      --Run.Params---->  ledger.Params  --Engine.Create

AMOUNTS:
  Rows carry minor units (int64) scaled by the currency's fraction digits.
  Dates are unix milliseconds, UTC.

SEE ALSO:
  - profile.go: Profile interface and registry
  - pairing.go: transfer stub pairing
  - driver.go: CSV reading and per-row commit
*/
package importer

import "github.com/warp/finance-ledger/ledger"

// =============================================================================
// FIELDS
// =============================================================================

// Field is a logical column a profile understands.
type Field string

const (
	FieldDate              Field = "date"
	FieldAmount            Field = "amount"
	FieldType              Field = "type"
	FieldAccount           Field = "account"
	FieldCategory          Field = "category"
	FieldDescription       Field = "description"
	FieldCurrency          Field = "currency"
	FieldToAccount         Field = "to_account"
	FieldToAmount          Field = "to_amount"
	FieldToCurrency        Field = "to_currency"
	FieldConvertedAmount   Field = "converted_amount"
	FieldConvertedCurrency Field = "converted_currency"
)

// Mapping maps a field to its CSV column index.
type Mapping map[Field]int

// MappedRow holds one record's raw cell values keyed by field.
type MappedRow map[Field]string

// Apply projects a CSV record through the mapping. Missing cells are empty.
func (m Mapping) Apply(record []string) MappedRow {
	row := make(MappedRow, len(m))
	for field, idx := range m {
		if idx < len(record) {
			row[field] = record[idx]
		}
	}
	return row
}

// =============================================================================
// NORMALIZED OUTPUT
// =============================================================================

// Row is a normalized import row, ready for name resolution.
// For transfers, Account is the source and ToAccount the destination.
type Row struct {
	Kind        ledger.Kind `json:"kind"`
	Date        int64       `json:"date"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category,omitempty"`
	Account     string      `json:"account"`
	Currency    string      `json:"currency"`
	Amount      int64       `json:"amount"`

	ToAccount      string `json:"to_account,omitempty"`
	ToCurrency     string `json:"to_currency,omitempty"`
	ReceivedAmount int64  `json:"received_amount,omitempty"`

	// Line is the 1-based CSV line the row came from.
	Line int `json:"line"`
}

// Direction of a transfer stub relative to its own account.
type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// TransferStub is one leg of a transfer awaiting its counterpart.
type TransferStub struct {
	Direction    Direction
	Account      string
	OtherAccount string
	Amount       int64
	Currency     string

	// ConvertedAmount/ConvertedCurrency are set when the export already
	// recorded what arrived on the other side (outgoing legs only).
	ConvertedAmount   int64
	ConvertedCurrency string

	Date        int64
	Description string
	Line        int
}

// Item is what Normalize produces for one record: a Row, a Stub, or neither
// (the record is skipped).
type Item struct {
	Row  *Row
	Stub *TransferStub
}

// Skip reports whether the item carries nothing.
func (i Item) Skip() bool {
	return i.Row == nil && i.Stub == nil
}
