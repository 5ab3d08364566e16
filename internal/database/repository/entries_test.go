package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fernandobatistacruz/cabe/internal/database"
	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
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

func insertAccount(t *testing.T, db *sql.DB) repository.Account {
	t.Helper()
	a := repository.Account{UUID: uuid.NewString(), Name: "Checking", Currency: "BRL"}
	require.NoError(t, repository.NewAccountRepo(db).Insert(context.Background(), &a))
	return a
}

func insertEntry(t *testing.T, db *sql.DB, groupID string, due string, amount int64, split bool) repository.Entry {
	t.Helper()
	acct := int64(1)
	e := repository.Entry{
		GroupID:      groupID,
		Kind:         repository.KindExpense,
		Amount:       decimal.NewFromInt(amount),
		Split:        split,
		DueDate:      date.MustParse(due),
		PurchaseDate: date.MustParse(due),
		Description:  "row",
		AccountID:    &acct,
		Recurrence:   repository.RecurrenceMonthly,
		Currency:     "BRL",
	}
	require.NoError(t, repository.NewEntryRepo(db).Insert(context.Background(), &e))
	return e
}

func TestListGroupFromBreaksDateTiesByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	insertAccount(t, db)
	group := uuid.NewString()

	first := insertEntry(t, db, group, "2026-03-10", 10, false)
	tied := insertEntry(t, db, group, "2026-03-10", 20, false)
	later := insertEntry(t, db, group, "2026-04-10", 30, false)

	repo := repository.NewEntryRepo(db)
	tail, err := repo.ListGroupFrom(ctx, group, tied.DueDate, tied.ID)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	require.Equal(t, tied.ID, tail[0].ID)
	require.Equal(t, later.ID, tail[1].ID)

	full, err := repo.ListGroupFrom(ctx, group, first.DueDate, first.ID)
	require.NoError(t, err)
	require.Len(t, full, 3)
}

func TestRoundTripPreservesFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	insertAccount(t, db)

	acct := int64(1)
	idx, total := 2, 6
	in := repository.Entry{
		GroupID:          uuid.NewString(),
		Kind:             repository.KindExpense,
		Amount:           decimal.RequireFromString("123.45"),
		Paid:             true,
		Split:            true,
		DueDate:          date.MustParse("2026-05-09"),
		PurchaseDate:     date.MustParse("2026-04-28"),
		Description:      "notebook 2/6",
		AccountID:        &acct,
		Recurrence:       repository.RecurrenceInstallment,
		InstallmentIndex: &idx,
		InstallmentTotal: &total,
		Currency:         "BRL",
	}
	repo := repository.NewEntryRepo(db)
	require.NoError(t, repo.Insert(ctx, &in))

	out, err := repo.Get(ctx, in.ID)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.True(t, out.Amount.Equal(in.Amount))
	require.Equal(t, in.DueDate, out.DueDate)
	require.Equal(t, in.PurchaseDate, out.PurchaseDate)
	require.Equal(t, idx, *out.InstallmentIndex)
	require.Equal(t, total, *out.InstallmentTotal)
	require.True(t, out.Paid)
	require.True(t, out.Split)
	require.False(t, out.CreatedAt.IsZero())
}

func TestSumByCategoryHalvesSplitEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	insertAccount(t, db)

	cat := repository.Category{UUID: uuid.NewString(), Kind: repository.KindExpense, Name: "Food"}
	require.NoError(t, repository.NewCategoryRepo(db).Upsert(ctx, &cat))

	repo := repository.NewEntryRepo(db)
	acct := int64(1)
	for _, split := range []bool{false, true} {
		e := repository.Entry{
			GroupID:      uuid.NewString(),
			Kind:         repository.KindExpense,
			Amount:       decimal.NewFromInt(100),
			Split:        split,
			DueDate:      date.MustParse("2026-03-05"),
			PurchaseDate: date.MustParse("2026-03-05"),
			CategoryID:   &cat.ID,
			AccountID:    &acct,
			Recurrence:   repository.RecurrenceNone,
			Currency:     "BRL",
		}
		require.NoError(t, repo.Insert(ctx, &e))
	}

	totals, err := repo.SumByCategory(ctx, date.MustParse("2026-03-01"), date.MustParse("2026-03-31"))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	// 100 full + 50 for the split one: reporting halves, balance never does
	require.True(t, totals[0].Total.Equal(decimal.NewFromInt(150)))
}

func TestGetMissingEntryReturnsNil(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	e, err := repository.NewEntryRepo(db).Get(context.Background(), 42)
	require.NoError(t, err)
	require.Nil(t, e)
}
