package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/changes"
	"github.com/fernandobatistacruz/cabe/internal/database"
	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
)

// TransferService moves money between two accounts by composing a paired
// expense/income entry set, committed atomically with both balance updates.
type TransferService struct {
	DB      *sql.DB
	Log     zerolog.Logger
	Changes *changes.Bus
}

// Transfer debits source and credits dest by amount, on the given date (today
// when zero). Both entries are paid and transfer-flagged, so they never show
// up as notification candidates. Returns the two entry ids (expense, income).
func (s *TransferService) Transfer(ctx context.Context, sourceAccountID, destAccountID int64, amount decimal.Decimal, description string, on date.Date) (int64, int64, error) {
	if sourceAccountID == destAccountID {
		return 0, 0, validationErr("accounts", "transfer needs two distinct accounts")
	}
	if !amount.IsPositive() {
		return 0, 0, validationErr("amount", "must be positive")
	}
	if on.IsZero() {
		on = date.Today()
	}

	var outID, inID int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		accounts := repository.NewAccountRepo(tx)
		entries := repository.NewEntryRepo(tx)
		var rec Reconciler

		source, err := accounts.Get(ctx, sourceAccountID)
		if err != nil {
			return err
		}
		dest, err := accounts.Get(ctx, destAccountID)
		if err != nil {
			return err
		}
		if source == nil || dest == nil {
			return ErrNotFound
		}

		persist := func(kind repository.EntryKind, accountID int64, currency string) (int64, error) {
			id := accountID
			e := repository.Entry{
				GroupID:      uuid.NewString(),
				Kind:         kind,
				Amount:       amount,
				Paid:         true,
				Transfer:     true,
				DueDate:      on,
				PurchaseDate: on,
				Description:  description,
				AccountID:    &id,
				Recurrence:   repository.RecurrenceNone,
				Currency:     currency,
			}
			if err := rec.ApplyTransition(ctx, tx, nil, &e); err != nil {
				return 0, err
			}
			if err := entries.Insert(ctx, &e); err != nil {
				return 0, err
			}
			return e.ID, nil
		}

		if outID, err = persist(repository.KindExpense, source.ID, source.Currency); err != nil {
			return err
		}
		inID, err = persist(repository.KindIncome, dest.ID, dest.Currency)
		return err
	})
	if err != nil {
		return 0, 0, wrapPersistence("transfer", err)
	}

	s.Log.Debug().
		Int64("source", sourceAccountID).
		Int64("dest", destAccountID).
		Str("amount", amount.String()).
		Msg("transfer committed")
	if s.Changes != nil {
		s.Changes.Publish(changes.Event{Table: "entries", Op: changes.OpCreate, IDs: []int64{outID, inID}})
	}
	return outID, inID, nil
}
