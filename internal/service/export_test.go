package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
)

func TestExportStreamsEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &ExportService{DB: db}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	def := expenseDef(acct.ID, 120, date.MustParse("2026-02-10"), true)
	def.Description = "rent, with comma"
	def.Installments = 3
	_, err := series.Create(ctx, def, repository.RecurrenceInstallment)
	require.NoError(t, err)

	var buf bytes.Buffer
	header := []string{"id", "vencimento", "compra", "tipo", "valor", "moeda", "descrição", "destino", "pago", "dividido", "transferência", "recorrência", "parcela"}
	require.NoError(t, svc.Export(ctx, &buf, header, repository.EntryFilters{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 3 installments
	require.Equal(t, header, records[0])
	require.Equal(t, "2026-02-10", records[1][1])
	require.Equal(t, "120", records[1][4])
	require.Equal(t, "rent, with comma", records[1][6])
	require.Equal(t, "1/3", records[1][12])
	require.Equal(t, "3/3", records[3][12])
}

func TestExportWithoutHeader(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &ExportService{DB: db}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	_, err := series.Create(ctx, expenseDef(acct.ID, 10, date.MustParse("2026-02-10"), false), repository.RecurrenceNone)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, nil, repository.EntryFilters{}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestExportStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	series := newSeriesService(db)
	svc := &ExportService{DB: db}
	acct := newAccount(t, db, "Checking", decimal.Zero)

	_, err := series.Create(context.Background(), expenseDef(acct.ID, 10, date.MustParse("2026-02-10"), false), repository.RecurrenceNone)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	require.Error(t, svc.Export(ctx, &buf, nil, repository.EntryFilters{}))
}
