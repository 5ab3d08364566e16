package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
	"github.com/fernandobatistacruz/cabe/internal/logger"
)

func TestCheckBalancesDetectsAndRepairsDrift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &MaintenanceService{DB: db, Log: logger.Nop()}
	acct := newAccount(t, db, "Checking", decimal.NewFromInt(500))

	_, err := series.Create(ctx, expenseDef(acct.ID, 100, date.MustParse("2026-02-10"), true), repository.RecurrenceNone)
	require.NoError(t, err)

	drifts, err := svc.CheckBalances(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)

	// corrupt the cache behind the reconciler's back
	require.NoError(t, repository.NewAccountRepo(db).SetBalance(ctx, acct.ID, decimal.NewFromInt(999)))

	drifts, err = svc.CheckBalances(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, acct.ID, drifts[0].AccountID)
	require.True(t, drifts[0].Cached.Equal(decimal.NewFromInt(999)))
	require.True(t, drifts[0].Computed.Equal(decimal.NewFromInt(400)))

	n, err := svc.RepairBalances(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, accountBalance(t, db, acct.ID).Equal(decimal.NewFromInt(400)))

	drifts, err = svc.CheckBalances(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)
}

func TestResetWipesEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &MaintenanceService{DB: db, Log: logger.Nop()}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	_, err := series.Create(ctx, expenseDef(acct.ID, 10, date.MustParse("2026-02-10"), false), repository.RecurrenceNone)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))
	for _, table := range []string{"entries", "accounts", "cards", "categories"} {
		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
		require.Zero(t, count, table)
	}
}
