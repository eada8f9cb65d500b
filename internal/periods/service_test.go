package periods

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store/storetest"
)

func newTestService(t *testing.T, today date.Date) *Service {
	t.Helper()
	log, _ := storetest.Logger()
	svc := NewService(storetest.New(t), log)
	svc.today = func() date.Date { return today }
	return svc
}

func TestCreate_Presets(t *testing.T) {
	svc := newTestService(t, date.New(2025, 1, 1))
	ctx := context.Background()

	tests := []struct {
		start date.Date
		iv    Interval
		end   date.Date
	}{
		{date.New(2025, 1, 1), Monthly, date.New(2025, 2, 1)},
		{date.New(2025, 11, 1), Quarterly, date.New(2026, 2, 1)},
		{date.New(2025, 7, 1), Semiannual, date.New(2026, 1, 1)},
		{date.New(2025, 1, 1), Annual, date.New(2026, 1, 1)},
		{date.New(2025, 1, 31), Monthly, date.New(2025, 2, 28)},
		{date.New(2025, 3, 1), Custom(10), date.New(2025, 3, 11)},
	}
	for _, tt := range tests {
		p, err := svc.Create(ctx, tt.start, tt.iv)
		require.NoError(t, err)
		assert.Equal(t, tt.end, p.EndDate, "%s + %s", tt.start, tt.iv)
		assert.Equal(t, tt.start.DaysUntil(tt.end), p.IntervalDays)

		got, err := svc.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc := newTestService(t, date.New(2025, 1, 1))
	ctx := context.Background()

	_, err := svc.Create(ctx, date.New(2025, 1, 1), Custom(0))
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Create(ctx, date.New(2025, 1, 1), Custom(-5))
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Create(ctx, date.Date{}, Monthly)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCurrent(t *testing.T) {
	svc := newTestService(t, date.New(2025, 2, 15))
	ctx := context.Background()

	_, err := svc.Current(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	year, err := svc.Create(ctx, date.New(2025, 1, 1), Annual)
	require.NoError(t, err)
	feb, err := svc.Create(ctx, date.New(2025, 2, 1), Monthly)
	require.NoError(t, err)
	_, err = svc.Create(ctx, date.New(2025, 3, 1), Monthly)
	require.NoError(t, err)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, feb.ID, cur.ID, "latest start containing today")

	require.NoError(t, svc.Delete(ctx, feb.ID))
	cur, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, year.ID, cur.ID)
}

func TestCurrent_InclusiveEnds(t *testing.T) {
	svc := newTestService(t, date.New(2025, 2, 1))
	ctx := context.Background()

	p, err := svc.Create(ctx, date.New(2025, 1, 1), Monthly)
	require.NoError(t, err)
	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, cur.ID)
}

func TestListAndDelete(t *testing.T) {
	svc := newTestService(t, date.New(2025, 1, 1))
	ctx := context.Background()

	a, err := svc.Create(ctx, date.New(2024, 1, 1), Annual)
	require.NoError(t, err)
	b, err := svc.Create(ctx, date.New(2025, 1, 1), Annual)
	require.NoError(t, err)

	ps, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, b.ID, ps[0].ID)
	assert.Equal(t, a.ID, ps[1].ID)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), model.ErrNotFound)
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in   string
		want Interval
	}{
		{"monthly", Monthly},
		{"Quarterly", Quarterly},
		{"semestral", Semiannual},
		{"annual", Annual},
		{"45", Custom(45)},
		{"45d", Custom(45)},
	}
	for _, tt := range tests {
		got, err := ParseInterval(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"weekly", "0", "-3d", ""} {
		_, err := ParseInterval(bad)
		assert.ErrorIs(t, err, model.ErrValidation, bad)
	}
}
