// Package date provides a civil date (day granularity, no time zone) used for
// entry due and purchase dates.
package date

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Format is the canonical string form, also used as the TEXT column encoding.
const Format = "2006-01-02"

// Date represents a calendar day.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromTime returns the Date of t in t's location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current date.
func Today() Date { return New(time.Now().Date()) }

// time returns the canonical time.Time for the day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year.
func (d Date) Year() int { return d.y }

// Month returns the month.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or +1 ordering d against x.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// AddDays returns d shifted by the given number of days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// String formats the date in its canonical form.
func (d Date) String() string { return d.time().Format(Format) }

// Parse parses a canonical-form date string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Format, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Value implements driver.Valuer so dates bind as TEXT.
func (d Date) Value() (driver.Value, error) { return d.String(), nil }

// Scan implements sql.Scanner for TEXT columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into date.Date", src)
	}
}
