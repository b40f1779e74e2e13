package importer

import (
	"errors"
	"strings"
	"time"

	"github.com/warp/finance-ledger/ledger"
)

// PairingWindow is how far apart two legs of one transfer may be dated.
const PairingWindow = 24 * time.Hour

// PairingOptions tunes PairTransfers.
type PairingOptions struct {
	// AllowOneSidedIn accepts an incoming leg with no outgoing partner as a
	// same-amount transfer from the named counterparty.
	AllowOneSidedIn bool
}

// PairTransfers recombines transfer stubs into transfer rows.
//
// Rows pass through unchanged. Each outgoing stub, in input order, takes the
// first unconsumed incoming stub whose (account, other) pair is its own
// reversed and whose date is within PairingWindow. The match is greedy, not
// globally optimal. The transfer row takes the outgoing stub's position.
//
// An outgoing stub without a partner falls back to its converted amount when
// it has one. Every other leftover stub is a *ReconcileError; all of them are
// returned together and no rows are.
func PairTransfers(items []Item, opts PairingOptions) ([]Row, error) {
	var incoming []*TransferStub
	for _, item := range items {
		if item.Stub != nil && item.Stub.Direction == DirectionIn {
			incoming = append(incoming, item.Stub)
		}
	}
	consumed := make([]bool, len(incoming))

	var (
		rows []Row
		errs []error
	)
	for _, item := range items {
		switch {
		case item.Row != nil:
			rows = append(rows, *item.Row)
		case item.Stub == nil || item.Stub.Direction != DirectionOut:
		default:
			out := item.Stub
			if idx := findPartner(out, incoming, consumed); idx >= 0 {
				consumed[idx] = true
				rows = append(rows, transferRow(out, incoming[idx].Amount, incoming[idx].Currency))
				continue
			}
			if out.ConvertedAmount > 0 {
				rows = append(rows, transferRow(out, out.ConvertedAmount, out.ConvertedCurrency))
				continue
			}
			errs = append(errs, unpaired(out))
		}
	}

	for i, in := range incoming {
		if consumed[i] {
			continue
		}
		if !opts.AllowOneSidedIn {
			errs = append(errs, unpaired(in))
			continue
		}
		rows = append(rows, Row{
			Kind:           ledger.KindTransfer,
			Date:           in.Date,
			Description:    in.Description,
			Account:        in.OtherAccount,
			Currency:       in.Currency,
			Amount:         in.Amount,
			ToAccount:      in.Account,
			ToCurrency:     in.Currency,
			ReceivedAmount: in.Amount,
			Line:           in.Line,
		})
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rows, nil
}

func findPartner(out *TransferStub, incoming []*TransferStub, consumed []bool) int {
	window := PairingWindow.Milliseconds()
	for i, in := range incoming {
		if consumed[i] {
			continue
		}
		if !strings.EqualFold(in.Account, out.OtherAccount) || !strings.EqualFold(in.OtherAccount, out.Account) {
			continue
		}
		if diff := in.Date - out.Date; diff <= window && diff >= -window {
			return i
		}
	}
	return -1
}

func transferRow(out *TransferStub, received int64, receivedCurrency string) Row {
	return Row{
		Kind:           ledger.KindTransfer,
		Date:           out.Date,
		Description:    out.Description,
		Account:        out.Account,
		Currency:       out.Currency,
		Amount:         out.Amount,
		ToAccount:      out.OtherAccount,
		ToCurrency:     receivedCurrency,
		ReceivedAmount: received,
		Line:           out.Line,
	}
}

func unpaired(s *TransferStub) *ReconcileError {
	return &ReconcileError{
		Direction:    s.Direction,
		Account:      s.Account,
		OtherAccount: s.OtherAccount,
		Date:         s.Date,
		Line:         s.Line,
	}
}
