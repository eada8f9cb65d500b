// Package periods manages fiscal periods, the reporting windows statements are drawn for.
package periods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

const periodCols = "id, start_date, end_date, interval_days"

// Service manages fiscal periods. Periods may overlap.
type Service struct {
	db    *store.DB
	log   logrus.FieldLogger
	today func() date.Date
}

// NewService creates a period Service.
func NewService(db *store.DB, log logrus.FieldLogger) *Service {
	return &Service{db: db, log: log.WithField("component", "periods"), today: date.Today}
}

// Create records a period from start to iv.End(start), both inclusive.
func (s *Service) Create(ctx context.Context, start date.Date, iv Interval) (model.FiscalPeriod, error) {
	if start.IsZero() {
		return model.FiscalPeriod{}, model.Invalid("start_date", "is required")
	}
	if err := iv.validate(); err != nil {
		return model.FiscalPeriod{}, err
	}

	end := iv.End(start)
	p := model.FiscalPeriod{StartDate: start, EndDate: end, IntervalDays: start.DaysUntil(end)}

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO fiscal_periods (start_date, end_date, interval_days) VALUES (?, ?, ?)",
			p.StartDate, p.EndDate, p.IntervalDays)
		if err != nil {
			return store.Error("inserting period", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return store.Error("reading period id", err)
		}
		p.ID = int(id)
		return nil
	})
	if err != nil {
		return model.FiscalPeriod{}, fmt.Errorf("creating period: %w", err)
	}

	s.log.WithFields(logrus.Fields{"period_id": p.ID, "start": p.StartDate, "end": p.EndDate, "interval": iv}).Info("period created")
	return p, nil
}

// Get returns a period by id.
func (s *Service) Get(ctx context.Context, id int) (model.FiscalPeriod, error) {
	var p model.FiscalPeriod
	err := sqlx.GetContext(ctx, s.db, &p, "SELECT "+periodCols+" FROM fiscal_periods WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalPeriod{}, model.NotFound("period", id)
	}
	if err != nil {
		return model.FiscalPeriod{}, store.Error("loading period", err)
	}
	return p, nil
}

// List returns every period, latest start first.
func (s *Service) List(ctx context.Context) ([]model.FiscalPeriod, error) {
	var ps []model.FiscalPeriod
	err := sqlx.SelectContext(ctx, s.db, &ps, "SELECT "+periodCols+" FROM fiscal_periods ORDER BY start_date DESC, id DESC")
	if err != nil {
		return nil, store.Error("listing periods", err)
	}
	return ps, nil
}

// Current returns the period with the latest start that contains today.
// It returns model.ErrNotFound when no period does.
func (s *Service) Current(ctx context.Context) (model.FiscalPeriod, error) {
	today := s.today()
	var p model.FiscalPeriod
	err := sqlx.GetContext(ctx, s.db, &p, "SELECT "+periodCols+` FROM fiscal_periods
		WHERE start_date <= ? AND end_date >= ? ORDER BY start_date DESC, id DESC LIMIT 1`, today, today)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FiscalPeriod{}, fmt.Errorf("no period contains %s: %w", today, model.ErrNotFound)
	}
	if err != nil {
		return model.FiscalPeriod{}, store.Error("finding current period", err)
	}
	return p, nil
}

// Delete removes a period.
func (s *Service) Delete(ctx context.Context, id int) error {
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM fiscal_periods WHERE id = ?", id)
		if err != nil {
			return store.Error("deleting period", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return store.Error("deleting period", err)
		}
		if n == 0 {
			return model.NotFound("period", id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting period %d: %w", id, err)
	}

	s.log.WithField("period_id", id).Info("period deleted")
	return nil
}
