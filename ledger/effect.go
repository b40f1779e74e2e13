package ledger

import (
	"context"
	"fmt"
)

// Effect returns the signed balance deltas the entry causes. It is a pure
// function of the entry's current field values.
func (e Entry) Effect() []Delta {
	switch e.Kind {
	case KindExpense:
		return []Delta{{AccountID: e.AccountID, Amount: -e.AmountCents}}
	case KindIncome:
		return []Delta{{AccountID: e.AccountID, Amount: e.AmountCents}}
	case KindTransfer:
		return []Delta{
			{AccountID: e.FromAccountID, Amount: -e.AmountSentCents},
			{AccountID: e.ToAccountID, Amount: e.AmountReceivedCents},
		}
	}
	return nil
}

// Revert returns the inverse of deltas.
func Revert(deltas []Delta) []Delta {
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{AccountID: d.AccountID, Amount: -d.Amount}
	}
	return out
}

func applyDeltas(ctx context.Context, s AccountStore, owner OwnerID, deltas []Delta) error {
	for _, d := range deltas {
		if err := s.AddBalance(ctx, owner, d.AccountID, d.Amount); err != nil {
			return err
		}
	}
	return nil
}

// resolve validates p against the owner's accounts and returns the field
// values to persist. It performs no writes.
func resolve(ctx context.Context, s AccountStore, owner OwnerID, p Params) (Params, error) {
	switch p.Kind {
	case KindExpense, KindIncome:
		return resolveSingle(ctx, s, owner, p)
	case KindTransfer:
		return resolveTransfer(ctx, s, owner, p)
	}
	return p, invalid(ErrInvalidKind, "kind", p.Kind)
}

func resolveSingle(ctx context.Context, s AccountStore, owner OwnerID, p Params) (Params, error) {
	if p.AmountCents <= 0 {
		return p, invalid(ErrInvalidAmount, "amount_cents", p.AmountCents)
	}
	if p.AccountID == "" {
		return p, invalid(ErrAccountNotFound, "account_id", p.AccountID)
	}
	acc, err := s.GetAccount(ctx, owner, p.AccountID)
	if err != nil {
		return p, err
	}
	if acc == nil {
		return p, invalid(ErrAccountNotFound, "account_id", p.AccountID)
	}

	p.FromAccountID, p.ToAccountID = "", ""
	p.AmountSentCents, p.AmountReceivedCents = 0, 0
	return p, nil
}

func resolveTransfer(ctx context.Context, s AccountStore, owner OwnerID, p Params) (Params, error) {
	if p.FromAccountID == "" {
		return p, invalid(ErrInvalidTransfer, "from_account_id", p.FromAccountID)
	}
	if p.ToAccountID == "" {
		return p, invalid(ErrInvalidTransfer, "to_account_id", p.ToAccountID)
	}
	if p.FromAccountID == p.ToAccountID {
		return p, invalid(ErrInvalidTransfer, "to_account_id", p.ToAccountID)
	}

	from, err := s.GetAccount(ctx, owner, p.FromAccountID)
	if err != nil {
		return p, err
	}
	if from == nil {
		return p, invalid(fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrAccountNotFound), "from_account_id", p.FromAccountID)
	}
	to, err := s.GetAccount(ctx, owner, p.ToAccountID)
	if err != nil {
		return p, err
	}
	if to == nil {
		return p, invalid(fmt.Errorf("%w: %w", ErrInvalidTransfer, ErrAccountNotFound), "to_account_id", p.ToAccountID)
	}

	for _, a := range []struct {
		field string
		value int64
	}{
		{"amount_cents", p.AmountCents},
		{"amount_sent_cents", p.AmountSentCents},
		{"amount_received_cents", p.AmountReceivedCents},
	} {
		if a.value < 0 {
			return p, invalid(ErrInvalidAmount, a.field, a.value)
		}
	}

	sameCurrency := from.Currency == to.Currency
	sent, received := p.AmountSentCents, p.AmountReceivedCents
	switch {
	case sent > 0 && received > 0:
	case sent == 0 && received == 0:
		if p.AmountCents == 0 {
			return p, invalid(ErrInvalidAmount, "amount_sent_cents", sent)
		}
		if !sameCurrency {
			return p, invalid(ErrInvalidTransfer, "amount_received_cents", received)
		}
		sent, received = p.AmountCents, p.AmountCents
	case !sameCurrency && sent == 0:
		return p, invalid(ErrInvalidTransfer, "amount_sent_cents", sent)
	case !sameCurrency:
		return p, invalid(ErrInvalidTransfer, "amount_received_cents", received)
	case sent == 0:
		sent = received
	default:
		received = sent
	}

	p.AmountSentCents, p.AmountReceivedCents = sent, received
	p.AccountID = ""
	p.AmountCents = sent
	return p, nil
}
