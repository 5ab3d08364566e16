package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fernandobatistacruz/cabe/internal/date"
)

func TestSearchRanksSubstringAboveFuzzy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &SearchService{DB: db}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	for _, desc := range []string{"Mercado Central", "mercardo centrall", "electricity bill"} {
		def := expenseDef(acct.ID, 10, date.MustParse("2026-02-01"), false)
		def.Description = desc
		_, err := series.Create(ctx, def, "none")
		require.NoError(t, err)
	}

	matches, err := svc.Search(ctx, "mercado", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "Mercado Central", matches[0].Entry.Description)
	require.Equal(t, "mercardo centrall", matches[1].Entry.Description)
	require.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := &SearchService{DB: db}

	var ve *ValidationError
	_, err := svc.Search(context.Background(), "   ", 10)
	require.ErrorAs(t, err, &ve)
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &SearchService{DB: db}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	def := expenseDef(acct.ID, 10, date.MustParse("2026-02-01"), false)
	_, err := series.Create(context.Background(), def, "monthly")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Search(ctx, "test", 10)
	require.Error(t, err)
}

func TestSearcherSupersedesPreviousSearch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	series := newSeriesService(db)
	searcher := &Searcher{Service: &SearchService{DB: db}}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	def := expenseDef(acct.ID, 10, date.MustParse("2026-02-01"), false)
	def.Description = "groceries"
	_, err := series.Create(ctx, def, "none")
	require.NoError(t, err)

	// back-to-back searches: each one cancels its predecessor and still
	// answers its own query
	for _, q := range []string{"g", "gr", "gro", "groceries"} {
		matches, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, matches, 1)
	}
}
