package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// LocalDate is a calendar day with no time-of-day and no zone.
// It exists so that date comparisons and bucketing are always done
// on the wall-clock day the user saw, never on the UTC day a
// timestamp happens to land in.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseLocalDate parses a YYYY-MM-DD string.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}, nil
}

// DateOf extracts the calendar day of t in t's own location.
func DateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// Today returns the current calendar day in loc. A nil loc means
// time.Local.
func Today(loc *time.Location) LocalDate {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero value.
func (d LocalDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight of d in loc, for arithmetic only.
func (d LocalDate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns d shifted by n calendar days, normalized across
// month and year boundaries.
func (d LocalDate) AddDays(n int) LocalDate {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

func (d LocalDate) Equal(o LocalDate) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d LocalDate) Before(o LocalDate) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d LocalDate) After(o LocalDate) bool {
	return o.Before(d)
}

// MarshalJSON encodes as "YYYY-MM-DD".
func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and, for records written by
// older clients, a full RFC 3339 timestamp whose date part is taken
// as-is without zone conversion.
func (d *LocalDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if len(s) >= 10 {
		s = s[:10]
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText lets LocalDate serve as a JSON map key.
func (d LocalDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *LocalDate) UnmarshalText(b []byte) error {
	parsed, err := ParseLocalDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
