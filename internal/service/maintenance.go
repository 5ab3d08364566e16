package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fernandobatistacruz/cabe/internal/database"
	"github.com/fernandobatistacruz/cabe/internal/database/repository"
)

// Drift reports one account whose cached balance disagrees with the sum of
// its paid entries.
type Drift struct {
	AccountID int64
	Name      string
	Cached    decimal.Decimal
	Computed  decimal.Decimal
}

// MaintenanceService houses consistency checks and ops actions. The balance
// check recomputes wholesale, something normal operation never does.
type MaintenanceService struct {
	DB  *sql.DB
	Log zerolog.Logger
}

// CheckBalances compares every account's cached balance against the full
// recomputation: opening balance plus the contributions of paid entries
// (direct and card-settled). It returns the accounts that drifted; an empty
// result means the balance invariant holds.
func (s *MaintenanceService) CheckBalances(ctx context.Context) ([]Drift, error) {
	accounts := repository.NewAccountRepo(s.DB)
	entries := repository.NewEntryRepo(s.DB)

	all, err := accounts.List(ctx)
	if err != nil {
		return nil, wrapPersistence("check balances", err)
	}

	var drifts []Drift
	for _, a := range all {
		sum, err := entries.SumPaidForAccount(ctx, a.ID)
		if err != nil {
			return nil, wrapPersistence("check balances", err)
		}
		computed := a.OpeningBalance.Add(sum)
		if !a.Balance.Equal(computed) {
			drifts = append(drifts, Drift{AccountID: a.ID, Name: a.Name, Cached: a.Balance, Computed: computed})
		}
	}
	return drifts, nil
}

// RepairBalances rewrites each drifted account's cached balance from the
// recomputation, all inside one transaction.
func (s *MaintenanceService) RepairBalances(ctx context.Context) (int, error) {
	repaired := 0
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		accounts := repository.NewAccountRepo(tx)
		entries := repository.NewEntryRepo(tx)

		all, err := accounts.List(ctx)
		if err != nil {
			return err
		}
		for _, a := range all {
			sum, err := entries.SumPaidForAccount(ctx, a.ID)
			if err != nil {
				return err
			}
			computed := a.OpeningBalance.Add(sum)
			if a.Balance.Equal(computed) {
				continue
			}
			s.Log.Warn().
				Int64("account", a.ID).
				Str("cached", a.Balance.String()).
				Str("computed", computed.String()).
				Msg("repairing drifted balance")
			if err := accounts.SetBalance(ctx, a.ID, computed); err != nil {
				return err
			}
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, wrapPersistence("repair balances", err)
	}
	return repaired, nil
}

// Reset wipes all user data. It keeps the schema intact so the app can
// continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"entries",
			"cards",
			"categories",
			"accounts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
