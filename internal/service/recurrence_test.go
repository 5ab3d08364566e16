package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
)

func collect(t *testing.T, seq func(func(date.Date) bool), max int) []string {
	t.Helper()
	var out []string
	for d := range seq {
		out = append(out, d.String())
		if len(out) == max {
			break
		}
	}
	return out
}

func TestMonthlySkipsShortMonths(t *testing.T) {
	t.Parallel()

	// due-day 31 over Jan-Apr: Feb and Apr have no 31st and are skipped
	seq, err := Expand(date.MustParse("2026-01-31"), repository.RecurrenceMonthly, 1, nil)
	require.NoError(t, err)

	got := collect(t, seq, 3)
	require.Equal(t, []string{"2026-01-31", "2026-03-31", "2026-05-31"}, got)
}

func TestMonthlyDueDayOverride(t *testing.T) {
	t.Parallel()

	day := 10
	seq, err := Expand(date.MustParse("2026-01-25"), repository.RecurrenceMonthly, 1, &day)
	require.NoError(t, err)

	got := collect(t, seq, 3)
	require.Equal(t, []string{"2026-01-10", "2026-02-10", "2026-03-10"}, got)
}

func TestMonthlyHorizonBound(t *testing.T) {
	t.Parallel()

	seq, err := Expand(date.MustParse("2026-01-15"), repository.RecurrenceMonthly, 2, nil)
	require.NoError(t, err)
	require.Len(t, collect(t, seq, 0), 24)
}

func TestWeeklyAndBiweeklySteps(t *testing.T) {
	t.Parallel()

	weekly, err := Expand(date.MustParse("2026-01-28"), repository.RecurrenceWeekly, 1, nil)
	require.NoError(t, err)
	got := collect(t, weekly, 3)
	require.Equal(t, []string{"2026-01-28", "2026-02-04", "2026-02-11"}, got)

	biweekly, err := Expand(date.MustParse("2026-01-28"), repository.RecurrenceBiweekly, 1, nil)
	require.NoError(t, err)
	got = collect(t, biweekly, 3)
	require.Equal(t, []string{"2026-01-28", "2026-02-11", "2026-02-25"}, got)
}

func TestExpandIsRestartable(t *testing.T) {
	t.Parallel()

	seq, err := Expand(date.MustParse("2026-03-31"), repository.RecurrenceMonthly, 1, nil)
	require.NoError(t, err)
	first := collect(t, seq, 4)
	second := collect(t, seq, 4)
	require.Equal(t, first, second)
}

func TestExpandRejectsExcessiveHorizon(t *testing.T) {
	t.Parallel()

	_, err := Expand(date.MustParse("2026-01-01"), repository.RecurrenceMonthly, MaxHorizonYears+1, nil)
	var bounds *RecurrenceBoundsError
	require.ErrorAs(t, err, &bounds)
}

func TestInstallmentsNeverSkip(t *testing.T) {
	t.Parallel()

	// month steps keep the anchor day even past February
	seq, err := ExpandInstallments(date.MustParse("2026-01-15"), 4, 0)
	require.NoError(t, err)
	got := collect(t, seq, 0)
	require.Equal(t, []string{"2026-01-15", "2026-02-15", "2026-03-15", "2026-04-15"}, got)
}

func TestInstallmentBounds(t *testing.T) {
	t.Parallel()

	_, err := ExpandInstallments(date.MustParse("2026-01-15"), 1, 0)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = ExpandInstallments(date.MustParse("2026-01-15"), MaxInstallments+1, 0)
	var bounds *RecurrenceBoundsError
	require.ErrorAs(t, err, &bounds)
}
