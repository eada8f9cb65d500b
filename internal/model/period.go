package model

import "github.com/NiinoTM/EasyAccounts/internal/date"

// FiscalPeriod is a reporting window with both ends inclusive.
type FiscalPeriod struct {
	ID           int       `db:"id"`
	StartDate    date.Date `db:"start_date"`
	EndDate      date.Date `db:"end_date"`
	IntervalDays int       `db:"interval_days"`
}

// Contains reports whether d falls inside the period.
func (p FiscalPeriod) Contains(d date.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

func (p FiscalPeriod) String() string {
	return p.StartDate.String() + " - " + p.EndDate.String()
}
