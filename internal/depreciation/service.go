package depreciation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/journal"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

const (
	methodCols = "id, name, description, annual_rate"
	assetCols  = `id, name, acquisition_date, acquisition_value, depreciation_method_id, useful_life_years,
	salvage_value, start_depreciation_date, account_id, is_active`
)

// Poster posts transactions to the journal.
type Poster interface {
	Post(ctx context.Context, p journal.PostParams) (model.Transaction, error)
}

// PeriodSource looks up fiscal periods.
type PeriodSource interface {
	Get(ctx context.Context, id int) (model.FiscalPeriod, error)
}

// Service registers assets and turns their depreciation into journal postings.
type Service struct {
	db      *store.DB
	journal Poster
	periods PeriodSource
	log     logrus.FieldLogger
}

// NewService creates a depreciation Service.
func NewService(db *store.DB, poster Poster, periods PeriodSource, log logrus.FieldLogger) *Service {
	return &Service{db: db, journal: poster, periods: periods, log: log.WithField("component", "depreciation")}
}

// Methods returns the available depreciation methods.
func (s *Service) Methods(ctx context.Context) ([]model.DepreciationMethod, error) {
	var ms []model.DepreciationMethod
	if err := sqlx.SelectContext(ctx, s.db, &ms, "SELECT "+methodCols+" FROM depreciation_methods ORDER BY id"); err != nil {
		return nil, store.Error("listing depreciation methods", err)
	}
	return ms, nil
}

// Method returns a depreciation method by id.
func (s *Service) Method(ctx context.Context, id int) (model.DepreciationMethod, error) {
	return getMethod(ctx, s.db, id)
}

func getMethod(ctx context.Context, q sqlx.QueryerContext, id int) (model.DepreciationMethod, error) {
	var m model.DepreciationMethod
	err := sqlx.GetContext(ctx, q, &m, "SELECT "+methodCols+" FROM depreciation_methods WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DepreciationMethod{}, model.NotFound("depreciation method", id)
	}
	if err != nil {
		return model.DepreciationMethod{}, store.Error("loading depreciation method", err)
	}
	return m, nil
}

// AssetParams holds parameters for registering an asset. A zero
// StartDepreciationDate defaults to the acquisition date.
type AssetParams struct {
	Name                  string
	AcquisitionDate       date.Date
	AcquisitionValue      decimal.Decimal
	MethodID              int
	UsefulLifeYears       int
	SalvageValue          decimal.Decimal
	StartDepreciationDate date.Date
	AccountID             int
}

func (p AssetParams) validate() (model.Asset, error) {
	name := strings.TrimSpace(p.Name)
	switch {
	case name == "":
		return model.Asset{}, model.Invalid("name", "must not be blank")
	case p.AcquisitionDate.IsZero():
		return model.Asset{}, model.Invalid("acquisition_date", "is required")
	case !p.AcquisitionValue.IsPositive():
		return model.Asset{}, model.Invalid("acquisition_value", "must be positive")
	case p.UsefulLifeYears <= 0:
		return model.Asset{}, model.Invalid("useful_life_years", "must be positive")
	case p.SalvageValue.IsNegative():
		return model.Asset{}, model.Invalid("salvage_value", "must not be negative")
	case p.SalvageValue.GreaterThanOrEqual(p.AcquisitionValue):
		return model.Asset{}, model.Invalid("salvage_value", "must be less than the acquisition value")
	}
	start := p.StartDepreciationDate
	if start.IsZero() {
		start = p.AcquisitionDate
	}
	return model.Asset{
		Name:                  name,
		AcquisitionDate:       p.AcquisitionDate,
		AcquisitionValue:      p.AcquisitionValue,
		MethodID:              p.MethodID,
		UsefulLifeYears:       p.UsefulLifeYears,
		SalvageValue:          p.SalvageValue,
		StartDepreciationDate: start,
		AccountID:             p.AccountID,
		Active:                true,
	}, nil
}

// RegisterAsset validates and stores a new active asset.
func (s *Service) RegisterAsset(ctx context.Context, p AssetParams) (model.Asset, error) {
	a, err := p.validate()
	if err != nil {
		return model.Asset{}, err
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := getMethod(ctx, tx, a.MethodID); err != nil {
			return err
		}
		var n int
		if err := sqlx.GetContext(ctx, tx, &n, "SELECT COUNT(*) FROM accounts WHERE id = ?", a.AccountID); err != nil {
			return store.Error("checking asset account", err)
		}
		if n == 0 {
			return model.NotFound("account", a.AccountID)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO assets (name, acquisition_date, acquisition_value,
			depreciation_method_id, useful_life_years, salvage_value, start_depreciation_date, account_id, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.AcquisitionDate, a.AcquisitionValue, a.MethodID, a.UsefulLifeYears,
			a.SalvageValue, a.StartDepreciationDate, a.AccountID, a.Active)
		if err != nil {
			return store.Error("inserting asset", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return store.Error("reading asset id", err)
		}
		a.ID = int(id)
		return nil
	})
	if err != nil {
		return model.Asset{}, fmt.Errorf("registering asset: %w", err)
	}

	s.log.WithFields(logrus.Fields{"asset_id": a.ID, "name": a.Name}).Info("asset registered")
	return a, nil
}

// Asset returns an asset by id.
func (s *Service) Asset(ctx context.Context, id int) (model.Asset, error) {
	var a model.Asset
	err := sqlx.GetContext(ctx, s.db, &a, "SELECT "+assetCols+" FROM assets WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, model.NotFound("asset", id)
	}
	if err != nil {
		return model.Asset{}, store.Error("loading asset", err)
	}
	return a, nil
}

// Assets lists assets by name, optionally only the active ones.
func (s *Service) Assets(ctx context.Context, activeOnly bool) ([]model.Asset, error) {
	query := "SELECT " + assetCols + " FROM assets"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY name, id"

	var as []model.Asset
	if err := sqlx.SelectContext(ctx, s.db, &as, query); err != nil {
		return nil, store.Error("listing assets", err)
	}
	return as, nil
}

// SetActive marks an asset active or retired.
func (s *Service) SetActive(ctx context.Context, id int, active bool) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE assets SET is_active = ? WHERE id = ?", active, id)
		if err != nil {
			return store.Error("updating asset", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return store.Error("updating asset", err)
		}
		if n == 0 {
			return model.NotFound("asset", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting asset %d active=%t: %w", id, active, err)
	}
	s.log.WithFields(logrus.Fields{"asset_id": id, "active": active}).Info("asset status changed")
	return nil
}

// Schedule is an asset's depreciation over one fiscal period.
type Schedule struct {
	Asset        model.Asset
	Method       model.DepreciationMethod
	Period       model.FiscalPeriod
	StartValue   decimal.Decimal
	EndValue     decimal.Decimal
	Depreciation decimal.Decimal
	Annual       decimal.Decimal
	Monthly      decimal.Decimal
}

// Schedule computes an asset's book values and depreciation for a period.
func (s *Service) Schedule(ctx context.Context, assetID, periodID int) (Schedule, error) {
	a, err := s.Asset(ctx, assetID)
	if err != nil {
		return Schedule{}, err
	}
	m, err := s.Method(ctx, a.MethodID)
	if err != nil {
		return Schedule{}, err
	}
	p, err := s.periods.Get(ctx, periodID)
	if err != nil {
		return Schedule{}, err
	}

	start := BookValue(a, m, p.StartDate)
	end := BookValue(a, m, p.EndDate)
	return Schedule{
		Asset:        a,
		Method:       m,
		Period:       p,
		StartValue:   start,
		EndValue:     end,
		Depreciation: start.Sub(end),
		Annual:       AnnualEstimate(a, m, p.StartDate),
		Monthly:      MonthlyEstimate(a, m, p.StartDate),
	}, nil
}

// Record posts an asset's period depreciation to the journal on the period end date,
// debiting the expense account and crediting the accumulated-depreciation account.
func (s *Service) Record(ctx context.Context, assetID, periodID, debitAccount, creditAccount int) (model.Transaction, error) {
	sched, err := s.Schedule(ctx, assetID, periodID)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("recording depreciation: %w", err)
	}
	if !sched.Depreciation.IsPositive() {
		return model.Transaction{}, model.Invalid("amount", "no depreciation for %s in period %s", sched.Asset.Name, sched.Period)
	}

	txn, err := s.journal.Post(ctx, journal.PostParams{
		Date:          sched.Period.EndDate,
		Description:   "Depreciação acumulada no período - " + sched.Asset.Name,
		DebitAccount:  debitAccount,
		CreditAccount: creditAccount,
		Amount:        sched.Depreciation,
	})
	if err != nil {
		return model.Transaction{}, fmt.Errorf("recording depreciation: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"asset_id":       assetID,
		"period_id":      periodID,
		"transaction_id": txn.ID,
		"amount":         txn.Amount.StringFixed(2),
	}).Info("depreciation recorded")
	return txn, nil
}
