package periods

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

// Interval is the length of a fiscal period: a number of calendar months or,
// for custom periods, a number of days.
type Interval struct {
	Months int
	Days   int
}

// Preset intervals.
var (
	Monthly    = Interval{Months: 1}
	Quarterly  = Interval{Months: 3}
	Semiannual = Interval{Months: 6}
	Annual     = Interval{Months: 12}
)

// Custom returns an interval of n days.
func Custom(days int) Interval { return Interval{Days: days} }

// End returns start shifted by the interval. Month offsets roll over years and clamp
// the day to the target month's last day.
func (i Interval) End(start date.Date) date.Date {
	if i.Months > 0 {
		return start.AddMonths(i.Months)
	}
	return start.AddDays(i.Days)
}

func (i Interval) validate() error {
	switch {
	case i.Months > 0 && i.Days > 0:
		return model.Invalid("interval", "set months or days, not both")
	case i.Months < 0 || i.Days < 0:
		return model.Invalid("interval", "must be positive")
	case i.Months == 0 && i.Days == 0:
		return model.Invalid("interval", "must be positive")
	}
	return nil
}

func (i Interval) String() string {
	switch i {
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Semiannual:
		return "semiannual"
	case Annual:
		return "annual"
	}
	if i.Months > 0 {
		return strconv.Itoa(i.Months) + " months"
	}
	return strconv.Itoa(i.Days) + " days"
}

// ParseInterval reads a preset name (monthly, quarterly, semiannual, annual) or a
// day count such as "45" or "45d".
func ParseInterval(s string) (Interval, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "monthly", "mensal":
		return Monthly, nil
	case "quarterly", "trimestral":
		return Quarterly, nil
	case "semiannual", "semestral":
		return Semiannual, nil
	case "annual", "yearly", "anual":
		return Annual, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
	if err != nil {
		return Interval{}, fmt.Errorf("unknown interval %q: %w", s, model.ErrValidation)
	}
	iv := Custom(n)
	if err := iv.validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}
