package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-ledger/ledger"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

func TestStandardProfile_Normalize(t *testing.T) {
	p := NewStandardProfile(DefaultVariants())

	tests := []struct {
		name string
		row  MappedRow
		want *Row
	}{
		{
			name: "explicit expense",
			row:  MappedRow{FieldDate: "2024-03-01", FieldType: "Expense", FieldAccount: "Cash", FieldAmount: "12.50", FieldCategory: "Food"},
			want: &Row{Kind: ledger.KindExpense, Date: day, Account: "Cash", Currency: "USD", Amount: 1250, Category: "Food"},
		},
		{
			name: "negative amount without type is an expense",
			row:  MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "-3", FieldCurrency: "eur"},
			want: &Row{Kind: ledger.KindExpense, Date: day, Account: "Cash", Currency: "EUR", Amount: 300},
		},
		{
			name: "positive amount without type is an income",
			row:  MappedRow{FieldDate: "2024-03-01", FieldAccount: "Bank", FieldAmount: "2,000.00", FieldDescription: " salary "},
			want: &Row{Kind: ledger.KindIncome, Date: day, Account: "Bank", Currency: "USD", Amount: 200000, Description: "salary"},
		},
		{
			name: "same currency transfer",
			row:  MappedRow{FieldDate: "2024-03-01", FieldType: "transfer", FieldAccount: "Bank", FieldAmount: "100", FieldToAccount: "Savings", FieldCategory: "ignored"},
			want: &Row{Kind: ledger.KindTransfer, Date: day, Account: "Bank", Currency: "USD", Amount: 10000, ToAccount: "Savings", ToCurrency: "USD", ReceivedAmount: 10000},
		},
		{
			name: "cross currency transfer",
			row: MappedRow{FieldDate: "2024-03-01", FieldType: "transfer", FieldAccount: "Bank", FieldAmount: "-100", FieldCurrency: "USD",
				FieldToAccount: "Yen", FieldToAmount: "15000", FieldToCurrency: "JPY"},
			want: &Row{Kind: ledger.KindTransfer, Date: day, Account: "Bank", Currency: "USD", Amount: 10000, ToAccount: "Yen", ToCurrency: "JPY", ReceivedAmount: 15000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := p.Normalize(tt.row, "usd")
			require.NoError(t, err)
			assert.Nil(t, item.Stub)
			assert.Equal(t, tt.want, item.Row)
		})
	}
}

func TestStandardProfile_NormalizeErrors(t *testing.T) {
	p := NewStandardProfile(DefaultVariants())

	tests := []struct {
		name string
		row  MappedRow
		want error
	}{
		{"bad date", MappedRow{FieldDate: "soon", FieldAccount: "Cash", FieldAmount: "1"}, ErrInvalidDate},
		{"bad amount", MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "lots"}, ErrInvalidAmount},
		{"no account", MappedRow{FieldDate: "2024-03-01", FieldAmount: "1"}, ErrMissingField},
		{"unknown type", MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "1", FieldType: "refund"}, ErrInvalidType},
		{"transfer without destination", MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "1", FieldType: "transfer"}, ErrMissingField},
		{"amount too large", MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "200000000000000000", FieldType: "income"}, ErrInvalidAmount},
		{"received amount too large", MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "1", FieldType: "transfer",
			FieldToAccount: "Yen", FieldToAmount: "99999999999999999999", FieldToCurrency: "JPY"}, ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Normalize(tt.row, "USD")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStandardProfile_ZeroAmountIsSkipped(t *testing.T) {
	item, err := NewStandardProfile(DefaultVariants()).Normalize(
		MappedRow{FieldDate: "2024-03-01", FieldAccount: "Cash", FieldAmount: "0.00"}, "USD")

	require.NoError(t, err)
	assert.True(t, item.Skip())
}

func TestLegsProfile_Normalize(t *testing.T) {
	p := NewLegsProfile(DefaultVariants(), false)

	t.Run("outgoing tag", func(t *testing.T) {
		item, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "Cash", FieldCategory: "To 'Bank'", FieldAmount: "-100",
		}, "USD")
		require.NoError(t, err)
		require.NotNil(t, item.Stub)
		assert.Equal(t, TransferStub{
			Direction: DirectionOut, Account: "Cash", OtherAccount: "Bank", Amount: 10000, Currency: "USD", Date: day,
		}, *item.Stub)
	})

	t.Run("incoming tag", func(t *testing.T) {
		item, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "Bank", FieldCategory: "from 'Cash' ", FieldAmount: "100",
		}, "USD")
		require.NoError(t, err)
		require.NotNil(t, item.Stub)
		assert.Equal(t, DirectionIn, item.Stub.Direction)
		assert.Equal(t, "Cash", item.Stub.OtherAccount)
	})

	t.Run("outgoing with converted amount", func(t *testing.T) {
		item, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "USD Wallet", FieldCategory: "to 'Broker ARS'", FieldAmount: "-100",
			FieldConvertedAmount: "95000", FieldConvertedCurrency: "ars",
		}, "USD")
		require.NoError(t, err)
		require.NotNil(t, item.Stub)
		assert.Equal(t, int64(9500000), item.Stub.ConvertedAmount)
		assert.Equal(t, "ARS", item.Stub.ConvertedCurrency)
	})

	t.Run("untagged row", func(t *testing.T) {
		item, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "Cash", FieldCategory: "Groceries", FieldAmount: "-20",
		}, "USD")
		require.NoError(t, err)
		require.NotNil(t, item.Row)
		assert.Equal(t, ledger.KindExpense, item.Row.Kind)
		assert.Equal(t, "Groceries", item.Row.Category)
	})

	t.Run("amount too large", func(t *testing.T) {
		_, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "Cash", FieldCategory: "to 'Bank'", FieldAmount: "-300000000000000000.55",
		}, "USD")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("converted amount too large", func(t *testing.T) {
		_, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "USD Wallet", FieldCategory: "to 'Broker ARS'", FieldAmount: "-100",
			FieldConvertedAmount: "184467440737095516.16", FieldConvertedCurrency: "ars",
		}, "USD")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("explicit transfer type without tag", func(t *testing.T) {
		_, err := p.Normalize(MappedRow{
			FieldDate: "2024-03-01", FieldAccount: "Cash", FieldCategory: "Moves", FieldAmount: "-20", FieldType: "transfer",
		}, "USD")
		assert.ErrorIs(t, err, ErrInvalidType)
	})
}

func TestLegsProfile_InferMapping(t *testing.T) {
	mapping, err := NewLegsProfile(DefaultVariants(), false).InferMapping(
		[]string{"Date", "Wallet", "Category name", "Amount", "Currency", "Converted Amount", "Converted Currency", "Note"})
	require.NoError(t, err)

	assert.Equal(t, Mapping{
		FieldDate: 0, FieldAccount: 1, FieldCategory: 2, FieldAmount: 3, FieldCurrency: 4,
		FieldConvertedAmount: 5, FieldConvertedCurrency: 6, FieldDescription: 7,
	}, mapping)
}
