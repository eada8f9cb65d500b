// Package date provides a day-granular date value used for transaction, period and asset dates.
package date

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Format is the ISO-8601 layout dates are stored and printed with.
const Format = "2006-01-02"

const readFormat = "2006-1-2" // permissive read layout, accepts 2025-7-1

// Date represents a calendar day with no time-of-day component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month and day.
// Out-of-range values roll over the way time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current local date.
func Today() Date { return New(time.Now().Date()) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of d.
func (d Date) Year() int { return d.y }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month of d.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(Format)
}

// Format formats d with a time layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns d shifted by n calendar months. A day that does not exist in the
// target month is clamped to that month's last day (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	month := int(d.m) + n
	year := d.y
	if month > 12 {
		year += (month - 1) / 12
		month = (month-1)%12 + 1
	}
	for month < 1 {
		year--
		month += 12
	}
	last := New(year, time.Month(month)+1, 0).d
	day := d.d
	if day > last {
		day = last
	}
	return Date{year, time.Month(month), day}
}

// DaysUntil returns the number of days from d to x (negative when x is before d).
func (d Date) DaysUntil(x Date) int {
	return int(x.time().Sub(d.time()).Hours() / 24)
}

// Parse parses an ISO date. It accepts single-digit months and days.
func Parse(s string) (Date, error) {
	t, err := time.Parse(readFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Format, err)
	}
	return New(t.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// ParseFlexible parses a date typed in any common ordering that contains a day, a month and a
// year: 2024-03-15, 15/03/2024, 15-3-24, 15.03.2024, "15 03 2024". A leading four-digit part
// is read as the year (Y-M-D); otherwise the day comes first (D-M-Y). Two-digit years are
// taken as 20YY.
func ParseFlexible(s string) (Date, error) {
	parts := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: need day, month and year", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		nums[i] = n
	}

	var year, month, day int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		day, month, year = nums[0], nums[1], nums[2]
		if len(parts[2]) <= 2 {
			year += 2000
		}
	}

	d := New(year, time.Month(month), day)
	if d.y != year || int(d.m) != month || d.d != day {
		return Date{}, fmt.Errorf("invalid date %q: %04d-%02d-%02d does not exist", s, year, month, day)
	}
	return d, nil
}

// Scan implements sql.Scanner. It accepts ISO strings and time.Time values.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = New(v.Date())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into date", value)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	// tolerate DATETIME-shaped values
	if len(s) > len(Format) {
		s = s[:len(Format)]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// UnmarshalJSON decodes a date from an ISO JSON string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON encodes d as an ISO JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
	_ driver.Valuer    = Date{}
)
