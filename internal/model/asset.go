package model

import (
	"github.com/shopspring/decimal"

	"github.com/NiinoTM/EasyAccounts/internal/date"
)

// Depreciation method names as seeded in the store.
const (
	MethodStraightLine      = "Straight-Line"
	MethodDecliningBalance  = "Declining-Balance"
	MethodSumOfYearsDigits  = "Sum-of-Years-Digits"
	DefaultDecliningRateNum = 2
)

// DepreciationMethod describes how an asset loses value over its useful life.
// AnnualRate is the declining-balance multiplier numerator (2 = double declining).
type DepreciationMethod struct {
	ID          int             `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	AnnualRate  decimal.Decimal `db:"annual_rate"`
}

// Asset is a depreciable fixed asset.
type Asset struct {
	ID                    int             `db:"id"`
	Name                  string          `db:"name"`
	AcquisitionDate       date.Date       `db:"acquisition_date"`
	AcquisitionValue      decimal.Decimal `db:"acquisition_value"`
	MethodID              int             `db:"depreciation_method_id"`
	UsefulLifeYears       int             `db:"useful_life_years"`
	SalvageValue          decimal.Decimal `db:"salvage_value"`
	StartDepreciationDate date.Date       `db:"start_depreciation_date"`
	AccountID             int             `db:"account_id"`
	Active                bool            `db:"is_active"`
}

// DepreciableBase returns acquisition value minus salvage value.
func (a Asset) DepreciableBase() decimal.Decimal {
	return a.AcquisitionValue.Sub(a.SalvageValue)
}
