package core

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// Date is a calendar date with no time-of-day component, anchored at local
// midnight. It serializes as ISO "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in the local time zone.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as an ISO "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON decodes an ISO "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("parse date %s: not a string", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// StartOfMonth returns the first day of the month containing d.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// AddMonths moves n calendar months (negative n moves back), anchored at
// the first day of the resulting month so variable month lengths cannot
// skew the arithmetic.
func (d Date) AddMonths(n int) Date {
	return NewDate(d.Year(), int(d.Month())+n, 1)
}

// MonthKey returns the sortable "YYYY-MM" bucket key for d. Plain string
// comparison on keys matches chronological order.
func (d Date) MonthKey() string {
	return d.Format(monthKeyLayout)
}

// ParseMonthKey parses a "YYYY-MM" key into the first day of that month.
func ParseMonthKey(key string) (Date, error) {
	t, err := time.ParseInLocation(monthKeyLayout, key, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return Date{Time: t}, nil
}

// Abbreviated pt-BR month names for chart axis labels.
var monthAbbrev = [12]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// MonthLabel renders a "YYYY-MM" key as a short axis label such as
// "jan/25". Keys that do not parse are returned unchanged.
func MonthLabel(key string) string {
	d, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return monthAbbrev[int(d.Month())-1] + "/" + d.Format("06")
}
