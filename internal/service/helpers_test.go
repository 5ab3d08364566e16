package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fernandobatistacruz/cabe/internal/changes"
	"github.com/fernandobatistacruz/cabe/internal/database"
	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
	"github.com/fernandobatistacruz/cabe/internal/logger"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newSeriesService(db *sql.DB) *SeriesService {
	return &SeriesService{DB: db, Log: logger.Nop(), Changes: changes.NewBus()}
}

func newAccount(t *testing.T, db *sql.DB, name string, opening decimal.Decimal) repository.Account {
	t.Helper()
	a := repository.Account{
		UUID:           uuid.NewString(),
		Name:           name,
		OpeningBalance: opening,
		Balance:        opening,
		Currency:       "BRL",
	}
	require.NoError(t, repository.NewAccountRepo(db).Insert(context.Background(), &a))
	return a
}

func newCard(t *testing.T, db *sql.DB, name string, accountID int64, dueDay int) repository.Card {
	t.Helper()
	c := repository.Card{
		UUID:        uuid.NewString(),
		Name:        name,
		DueDay:      dueDay,
		ClosingDay:  1,
		CreditLimit: decimal.NewFromInt(5000),
		AccountID:   accountID,
	}
	require.NoError(t, repository.NewCardRepo(db).Insert(context.Background(), &c))
	return c
}

func accountBalance(t *testing.T, db *sql.DB, id int64) decimal.Decimal {
	t.Helper()
	a, err := repository.NewAccountRepo(db).Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, a)
	return a.Balance
}

func groupEntries(t *testing.T, db *sql.DB, groupID string) []repository.Entry {
	t.Helper()
	out, err := repository.NewEntryRepo(db).List(context.Background(), repository.EntryFilters{GroupID: groupID})
	require.NoError(t, err)
	return out
}

func expenseDef(accountID int64, amount int64, due date.Date, paid bool) EntryDefinition {
	return EntryDefinition{
		Kind:         repository.KindExpense,
		Amount:       decimal.NewFromInt(amount),
		Paid:         paid,
		DueDate:      due,
		PurchaseDate: due,
		Description:  "test expense",
		Target:       repository.AccountTarget(accountID),
		Currency:     "BRL",
	}
}

// requireBalanceInvariant asserts the cached balance equals the wholesale
// recomputation: opening balance plus the paid-entry sum.
func requireBalanceInvariant(t *testing.T, db *sql.DB, accountID int64) {
	t.Helper()
	ctx := context.Background()
	a, err := repository.NewAccountRepo(db).Get(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, a)
	sum, err := repository.NewEntryRepo(db).SumPaidForAccount(ctx, accountID)
	require.NoError(t, err)
	require.True(t, a.Balance.Equal(a.OpeningBalance.Add(sum)),
		"cached balance diverged from paid-entry sum for account %d", accountID)
}
