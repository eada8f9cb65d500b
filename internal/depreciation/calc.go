// Package depreciation computes fixed-asset book values and records period depreciation.
package depreciation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

var (
	daysPerYear = decimal.RequireFromString("365.25")
	twelve      = decimal.NewFromInt(12)
	defaultRate = decimal.NewFromInt(model.DefaultDecliningRateNum)
)

// YearsElapsed returns the fractional years from the asset's depreciation start to ref.
// It is negative when ref is before the start.
func YearsElapsed(a model.Asset, ref date.Date) decimal.Decimal {
	days := a.StartDepreciationDate.DaysUntil(ref)
	return decimal.NewFromInt(int64(days)).Div(daysPerYear)
}

// BookValue returns the asset's value on ref under method m, rounded to cents.
func BookValue(a model.Asset, m model.DepreciationMethod, ref date.Date) decimal.Decimal {
	if ref.Before(a.StartDepreciationDate) {
		return a.AcquisitionValue
	}
	return BookValueAfter(a, m, YearsElapsed(a, ref))
}

// BookValueAfter returns the asset's value after the given number of years of
// depreciation, clamped to [salvage, acquisition] and rounded to cents.
func BookValueAfter(a model.Asset, m model.DepreciationMethod, years decimal.Decimal) decimal.Decimal {
	if !years.IsPositive() {
		return a.AcquisitionValue
	}
	life := decimal.NewFromInt(int64(a.UsefulLifeYears))
	if a.UsefulLifeYears <= 0 || years.GreaterThanOrEqual(life) {
		return a.SalvageValue
	}

	base := a.DepreciableBase()
	var value decimal.Decimal
	switch m.Name {
	case model.MethodStraightLine:
		accumulated := base.Mul(years).Div(life)
		value = a.AcquisitionValue.Sub(accumulated)
	case model.MethodDecliningBalance:
		value = decliningValue(a, rateNumerator(m), years)
	case model.MethodSumOfYearsDigits:
		remaining := life.Sub(years)
		fraction := remaining.Mul(remaining.Add(decimal.NewFromInt(1))).Div(digitSum(a.UsefulLifeYears))
		accumulated := base.Mul(decimal.NewFromInt(1).Sub(fraction))
		value = a.AcquisitionValue.Sub(accumulated)
	default:
		return a.AcquisitionValue
	}
	return clamp(value.Round(2), a.SalvageValue, a.AcquisitionValue)
}

// decliningValue computes acquisition × (1 − rate/life)^years. The fractional power
// has no exact decimal form, so it is taken in float64 and rounded back.
func decliningValue(a model.Asset, numerator decimal.Decimal, years decimal.Decimal) decimal.Decimal {
	rate := numerator.Div(decimal.NewFromInt(int64(a.UsefulLifeYears)))
	keep := decimal.NewFromInt(1).Sub(rate)
	if !keep.IsPositive() {
		return a.SalvageValue
	}
	factor := math.Pow(keep.InexactFloat64(), years.InexactFloat64())
	return a.AcquisitionValue.Mul(decimal.NewFromFloat(factor))
}

// PeriodDepreciation returns the value lost between start and end.
func PeriodDepreciation(a model.Asset, m model.DepreciationMethod, start, end date.Date) decimal.Decimal {
	return BookValue(a, m, start).Sub(BookValue(a, m, end))
}

// AnnualEstimate returns the yearly depreciation expected for a period starting on
// periodStart: base/life for straight-line, the period-start book value times the
// rate for declining-balance and the current year's digit share of the base for
// sum-of-years-digits (zero once the useful life is over).
func AnnualEstimate(a model.Asset, m model.DepreciationMethod, periodStart date.Date) decimal.Decimal {
	return annual(a, m, periodStart).Round(2)
}

// MonthlyEstimate is AnnualEstimate spread over twelve months.
func MonthlyEstimate(a model.Asset, m model.DepreciationMethod, periodStart date.Date) decimal.Decimal {
	return annual(a, m, periodStart).Div(twelve).Round(2)
}

func annual(a model.Asset, m model.DepreciationMethod, periodStart date.Date) decimal.Decimal {
	if a.UsefulLifeYears <= 0 {
		return decimal.Zero
	}
	life := decimal.NewFromInt(int64(a.UsefulLifeYears))
	switch m.Name {
	case model.MethodStraightLine:
		return a.DepreciableBase().Div(life)
	case model.MethodDecliningBalance:
		return BookValue(a, m, periodStart).Mul(rateNumerator(m).Div(life))
	case model.MethodSumOfYearsDigits:
		currentYear := YearsElapsed(a, periodStart).Truncate(0).IntPart() + 1
		if currentYear > int64(a.UsefulLifeYears) {
			return decimal.Zero
		}
		share := decimal.NewFromInt(int64(a.UsefulLifeYears) - currentYear + 1).Div(digitSum(a.UsefulLifeYears))
		return share.Mul(a.DepreciableBase())
	default:
		return decimal.Zero
	}
}

// YearRow is one line of a depreciation table.
type YearRow struct {
	Year         int
	StartValue   decimal.Decimal
	Depreciation decimal.Decimal
	EndValue     decimal.Decimal
}

// Table returns the book value at each anniversary of the depreciation start over the
// asset's useful life.
func Table(a model.Asset, m model.DepreciationMethod) []YearRow {
	rows := make([]YearRow, 0, a.UsefulLifeYears)
	for y := 1; y <= a.UsefulLifeYears; y++ {
		start := BookValueAfter(a, m, decimal.NewFromInt(int64(y-1)))
		end := BookValueAfter(a, m, decimal.NewFromInt(int64(y)))
		rows = append(rows, YearRow{Year: y, StartValue: start, Depreciation: start.Sub(end), EndValue: end})
	}
	return rows
}

func rateNumerator(m model.DepreciationMethod) decimal.Decimal {
	if m.AnnualRate.IsPositive() {
		return m.AnnualRate
	}
	return defaultRate
}

func digitSum(life int) decimal.Decimal {
	return decimal.NewFromInt(int64(life * (life + 1) / 2))
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
