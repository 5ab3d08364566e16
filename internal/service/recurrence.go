package service

import (
	"iter"
	"time"

	"github.com/fernandobatistacruz/cabe/internal/database/repository"
	"github.com/fernandobatistacruz/cabe/internal/date"
)

const (
	// DefaultHorizonYears bounds how far a recurring series is expanded.
	DefaultHorizonYears = 10
	// MaxHorizonYears is the hard cap on the expansion horizon.
	MaxHorizonYears = 10
	// MaxInstallments caps an installment plan at the monthly occurrences one
	// full horizon can hold.
	MaxInstallments = 120
)

// Expand produces the ordered, finite sequence of due dates for a recurring
// series. The sequence is lazy and restartable; ranging over it twice yields
// the same dates.
//
// Monthly series target dueDayOverride when supplied (a card's due-day),
// otherwise the anchor's day of month. A month lacking the target day is
// skipped entirely, never clamped: a due-day-31 series has no occurrence in
// 30-day months. Weekly and biweekly series step by fixed day counts with no
// skipping.
func Expand(anchor date.Date, kind repository.Recurrence, horizonYears int, dueDayOverride *int) (iter.Seq[date.Date], error) {
	if horizonYears <= 0 {
		horizonYears = DefaultHorizonYears
	}
	if horizonYears > MaxHorizonYears {
		return nil, &RecurrenceBoundsError{What: "horizon years", Requested: horizonYears, Max: MaxHorizonYears}
	}

	switch kind {
	case repository.RecurrenceMonthly:
		day := anchor.Day()
		if dueDayOverride != nil {
			day = *dueDayOverride
		}
		return monthlySeq(anchor.Year(), anchor.Month(), day, horizonYears*12), nil
	case repository.RecurrenceWeekly:
		return daysSeq(anchor, 7, horizonYears), nil
	case repository.RecurrenceBiweekly:
		return daysSeq(anchor, 14, horizonYears), nil
	default:
		return nil, validationErr("recurrence", "cannot expand kind "+string(kind))
	}
}

// ExpandInstallments produces exactly total dates, one per calendar month
// starting at the anchor month. The anchor day is kept as-is; anchors come
// from an existing calendar date picked by the user.
func ExpandInstallments(anchor date.Date, total, maxInstallments int) (iter.Seq[date.Date], error) {
	if maxInstallments <= 0 {
		maxInstallments = MaxInstallments
	}
	if total < 2 {
		return nil, validationErr("installments", "an installment plan needs at least 2 occurrences")
	}
	if total > maxInstallments {
		return nil, &RecurrenceBoundsError{What: "installments", Requested: total, Max: maxInstallments}
	}
	y, m, d := anchor.Year(), anchor.Month(), anchor.Day()
	return func(yield func(date.Date) bool) {
		for i := 0; i < total; i++ {
			yy, mm := addMonths(y, m, i)
			if !yield(date.New(yy, mm, d)) {
				return
			}
		}
	}, nil
}

func monthlySeq(year int, month time.Month, day, months int) iter.Seq[date.Date] {
	return func(yield func(date.Date) bool) {
		for i := 0; i < months; i++ {
			y, m := addMonths(year, month, i)
			if day > date.DaysIn(y, m) {
				continue // no such day this month
			}
			if !yield(date.New(y, m, day)) {
				return
			}
		}
	}
}

func daysSeq(anchor date.Date, step, horizonYears int) iter.Seq[date.Date] {
	end := date.New(anchor.Year()+horizonYears, anchor.Month(), anchor.Day())
	return func(yield func(date.Date) bool) {
		for d := anchor; d.Before(end); d = d.AddDays(step) {
			if !yield(d) {
				return
			}
		}
	}
}

// addMonths advances (year, month) by n months without touching the day, so
// month arithmetic can never overflow into day normalization.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + n
	return idx / 12, time.Month(idx%12 + 1)
}
