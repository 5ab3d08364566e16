package service

import (
	"context"
	"fmt"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

// Reconciler keeps cached account balances consistent with the set of paid
// entries referencing them. Every call runs over the caller's transaction
// handle, in the same transaction as the entry write it mirrors, so balance
// and entry can never diverge partway.
type Reconciler struct{}

// ApplyTransition applies the minimal signed balance adjustment for an entry
// transition. old == nil means creation, newE == nil means deletion, both set
// means edit.
func (Reconciler) ApplyTransition(ctx context.Context, tx repository.DBTX, old, newE *repository.Entry) error {
	oldPaid := old != nil && old.Paid
	newPaid := newE != nil && newE.Paid

	accounts := repository.NewAccountRepo(tx)
	cards := repository.NewCardRepo(tx)

	switch {
	case !oldPaid && !newPaid:
		// never touched a balance, nothing to undo or apply
		return nil

	case oldPaid && !newPaid:
		acct, err := settlementAccount(ctx, cards, old.Target())
		if err != nil {
			return err
		}
		return accounts.AdjustBalance(ctx, acct, old.Signed().Neg())

	case !oldPaid && newPaid:
		acct, err := settlementAccount(ctx, cards, newE.Target())
		if err != nil {
			return err
		}
		return accounts.AdjustBalance(ctx, acct, newE.Signed())

	default: // paid before and after
		oldAcct, err := settlementAccount(ctx, cards, old.Target())
		if err != nil {
			return err
		}
		newAcct, err := settlementAccount(ctx, cards, newE.Target())
		if err != nil {
			return err
		}
		if oldAcct == newAcct {
			delta := newE.Signed().Sub(old.Signed())
			if delta.IsZero() {
				return nil
			}
			return accounts.AdjustBalance(ctx, newAcct, delta)
		}
		if err := accounts.AdjustBalance(ctx, oldAcct, old.Signed().Neg()); err != nil {
			return err
		}
		return accounts.AdjustBalance(ctx, newAcct, newE.Signed())
	}
}

// settlementAccount resolves a target to the account absorbing the
// contribution: the account itself, or the account a card settles into.
func settlementAccount(ctx context.Context, cards *repository.CardRepo, t repository.SettlementTarget) (int64, error) {
	switch t.Kind {
	case repository.TargetAccount:
		return t.AccountID, nil
	case repository.TargetCard:
		card, err := cards.Get(ctx, t.CardID)
		if err != nil {
			return 0, err
		}
		if card == nil {
			return 0, fmt.Errorf("card %d: %w", t.CardID, ErrNotFound)
		}
		return card.AccountID, nil
	default:
		return 0, validationErr("target", "entry has no settlement target")
	}
}
