package depreciation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiinoTM/EasyAccounts/internal/accounts"
	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/journal"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/periods"
	"github.com/NiinoTM/EasyAccounts/internal/store/storetest"
)

type fixture struct {
	svc      *Service
	accounts *accounts.Service
	periods  *periods.Service
	vehicle  model.Account
	expense  model.Account
	contra   model.Account
	slID     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.New(t)
	log, _ := storetest.Logger()
	ctx := context.Background()

	f := &fixture{accounts: accounts.NewService(db, log), periods: periods.NewService(db, log)}
	j := journal.NewService(db, f.accounts, log)
	f.svc = NewService(db, j, f.periods, log)

	var err error
	f.vehicle, err = f.accounts.Create(ctx, accounts.AccountParams{Name: "Veículos", SpecificType: model.TypeAssets, Subtype: model.SubtypeFixed})
	require.NoError(t, err)
	f.expense, err = f.accounts.Create(ctx, accounts.AccountParams{Name: "Despesa de Depreciação", SpecificType: model.TypeExpenses})
	require.NoError(t, err)
	f.contra, err = f.accounts.Create(ctx, accounts.AccountParams{Name: "Depreciação Acumulada", Kind: model.KindCredit, SpecificType: model.TypeAssets, Subtype: model.SubtypeFixed})
	require.NoError(t, err)

	methods, err := f.svc.Methods(ctx)
	require.NoError(t, err)
	for _, m := range methods {
		if m.Name == model.MethodStraightLine {
			f.slID = m.ID
		}
	}
	require.NotZero(t, f.slID)
	return f
}

func (f *fixture) truckParams() AssetParams {
	return AssetParams{
		Name:             "Caminhão",
		AcquisitionDate:  date.New(2020, 1, 1),
		AcquisitionValue: dec("10000"),
		MethodID:         f.slID,
		UsefulLifeYears:  5,
		SalvageValue:     dec("1000"),
		AccountID:        f.vehicle.ID,
	}
}

func TestMethods_Seeded(t *testing.T) {
	f := newFixture(t)
	methods, err := f.svc.Methods(context.Background())
	require.NoError(t, err)
	require.Len(t, methods, 3)
	assert.Equal(t, model.MethodDecliningBalance, methods[1].Name)
	assertDec(t, "2", methods[1].AnnualRate)

	_, err = f.svc.Method(context.Background(), 99)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRegisterAsset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.RegisterAsset(ctx, f.truckParams())
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.True(t, a.Active)
	assert.Equal(t, a.AcquisitionDate, a.StartDepreciationDate, "start defaults to acquisition")

	got, err := f.svc.Asset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caminhão", got.Name)
	assertDec(t, "10000", got.AcquisitionValue)
	assert.True(t, got.Active)
}

func TestRegisterAsset_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mod  func(*AssetParams)
		want error
	}{
		{"blank name", func(p *AssetParams) { p.Name = "" }, model.ErrValidation},
		{"zero value", func(p *AssetParams) { p.AcquisitionValue = dec("0") }, model.ErrValidation},
		{"zero life", func(p *AssetParams) { p.UsefulLifeYears = 0 }, model.ErrValidation},
		{"salvage equals value", func(p *AssetParams) { p.SalvageValue = dec("10000") }, model.ErrValidation},
		{"negative salvage", func(p *AssetParams) { p.SalvageValue = dec("-1") }, model.ErrValidation},
		{"no date", func(p *AssetParams) { p.AcquisitionDate = date.Date{} }, model.ErrValidation},
		{"unknown method", func(p *AssetParams) { p.MethodID = 99 }, model.ErrNotFound},
		{"unknown account", func(p *AssetParams) { p.AccountID = 99 }, model.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := f.truckParams()
			tt.mod(&p)
			_, err := f.svc.RegisterAsset(ctx, p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAssetsAndSetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.RegisterAsset(ctx, f.truckParams())
	require.NoError(t, err)
	p := f.truckParams()
	p.Name = "Empilhadeira"
	_, err = f.svc.RegisterAsset(ctx, p)
	require.NoError(t, err)

	require.NoError(t, f.svc.SetActive(ctx, a.ID, false))

	all, err := f.svc.Assets(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.svc.Assets(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Empilhadeira", active[0].Name)

	assert.ErrorIs(t, f.svc.SetActive(ctx, 99, true), model.ErrNotFound)
}

func TestScheduleAndRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.RegisterAsset(ctx, f.truckParams())
	require.NoError(t, err)
	period, err := f.periods.Create(ctx, date.New(2021, 1, 1), periods.Annual)
	require.NoError(t, err)

	sched, err := f.svc.Schedule(ctx, a.ID, period.ID)
	require.NoError(t, err)
	assert.True(t, sched.StartValue.GreaterThan(sched.EndValue))
	assert.True(t, sched.Depreciation.Equal(sched.StartValue.Sub(sched.EndValue)))
	assertDec(t, "1800", sched.Annual)
	assertDec(t, "150", sched.Monthly)

	txn, err := f.svc.Record(ctx, a.ID, period.ID, f.expense.ID, f.contra.ID)
	require.NoError(t, err)
	assert.Equal(t, period.EndDate, txn.Date)
	assert.Equal(t, "Depreciação acumulada no período - Caminhão", txn.Description)
	assert.True(t, txn.Amount.Equal(sched.Depreciation))

	exp, err := f.accounts.Get(ctx, f.expense.ID)
	require.NoError(t, err)
	assert.True(t, exp.NormalBalance().Equal(sched.Depreciation))
	contra, err := f.accounts.Get(ctx, f.contra.ID)
	require.NoError(t, err)
	assert.True(t, contra.NormalBalance().Equal(sched.Depreciation))
}

func TestRecord_NothingToPost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.RegisterAsset(ctx, f.truckParams())
	require.NoError(t, err)
	late, err := f.periods.Create(ctx, date.New(2030, 1, 1), periods.Annual)
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, a.ID, late.ID, f.expense.ID, f.contra.ID)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Record(ctx, a.ID, 99, f.expense.ID, f.contra.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.svc.Record(ctx, 99, late.ID, f.expense.ID, f.contra.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
