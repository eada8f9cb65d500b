package templates

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NiinoTM/EasyAccounts/internal/accounts"
	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/journal"
	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/store/storetest"
)

type fixture struct {
	accounts  *accounts.Service
	journal   *journal.Service
	templates *Service
	cash      model.Account
	rent      model.Account
	power     model.Account
}

var today = date.New(2025, 3, 5)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storetest.New(t)
	log, _ := storetest.Logger()
	f := &fixture{accounts: accounts.NewService(db, log)}
	f.journal = journal.NewService(db, f.accounts, log)
	f.templates = NewService(db, f.journal, f.accounts, log)
	f.templates.today = func() date.Date { return today }

	ctx := context.Background()
	var err error
	f.cash, err = f.accounts.Create(ctx, accounts.AccountParams{Name: "Caixa", SpecificType: model.TypeAssets, Subtype: model.SubtypeCurrent})
	require.NoError(t, err)
	f.rent, err = f.accounts.Create(ctx, accounts.AccountParams{Name: "Aluguel", SpecificType: model.TypeExpenses})
	require.NoError(t, err)
	f.power, err = f.accounts.Create(ctx, accounts.AccountParams{Name: "Energia", SpecificType: model.TypeExpenses})
	require.NoError(t, err)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) monthly() []model.TemplateLine {
	return []model.TemplateLine{
		{Description: "Aluguel", DebitAccount: f.rent.ID, CreditAccount: f.cash.ID, Amount: dec("1500")},
		{Description: "Energia", DebitAccount: f.power.ID, CreditAccount: f.cash.ID, Amount: dec("230.40")},
	}
}

func TestCreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.templates.Create(ctx, "  Contas do mês ", f.monthly())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Contas do mês", created.Name)

	got, err := f.templates.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Energia", got.Lines[1].Description)
	assert.True(t, dec("230.40").Equal(got.Lines[1].Amount))

	_, err = f.templates.Get(ctx, 404)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreate_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.templates.Create(ctx, " ", f.monthly())
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.templates.Create(ctx, "vazio", nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	bad := f.monthly()
	bad[1].Amount = dec("-1")
	_, err = f.templates.Create(ctx, "negativo", bad)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "line 2")

	bad = f.monthly()
	bad[0].CreditAccount = 999
	_, err = f.templates.Create(ctx, "sem conta", bad)
	assert.ErrorIs(t, err, model.ErrNotFound)

	all, err := f.templates.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateSearchDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "Contas do mês", f.monthly())
	require.NoError(t, err)
	_, err = f.templates.Create(ctx, "Folha", f.monthly()[:1])
	require.NoError(t, err)

	updated, err := f.templates.Update(ctx, tpl.ID, "Despesas fixas", f.monthly()[:1])
	require.NoError(t, err)
	assert.Len(t, updated.Lines, 1)

	found, err := f.templates.Search(ctx, "DESPESAS")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, tpl.ID, found[0].ID)

	_, err = f.templates.Update(ctx, 404, "x", f.monthly())
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, f.templates.Delete(ctx, tpl.ID))
	assert.ErrorIs(t, f.templates.Delete(ctx, tpl.ID), model.ErrNotFound)

	all, err := f.templates.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExecute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "Contas do mês", f.monthly())
	require.NoError(t, err)

	res, err := f.templates.Execute(ctx, tpl.ID, map[int]decimal.Decimal{1: dec("199.90")})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID.String())
	require.Equal(t, 2, res.Committed())
	for _, txn := range res.Transactions {
		assert.Equal(t, today, txn.Date)
	}
	assert.True(t, dec("199.90").Equal(res.Transactions[1].Amount), "override applied")

	cash, err := f.accounts.Get(ctx, f.cash.ID)
	require.NoError(t, err)
	assert.True(t, dec("1699.90").Equal(cash.Balance), "cash balance %s", cash.Balance)

	again, err := f.templates.Execute(ctx, tpl.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, res.ID, again.ID, "each run gets its own batch id")
}

func TestExecute_BadOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "Contas do mês", f.monthly())
	require.NoError(t, err)

	_, err = f.templates.Execute(ctx, tpl.ID, map[int]decimal.Decimal{0: dec("0")})
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = f.templates.Execute(ctx, tpl.ID, map[int]decimal.Decimal{5: dec("10")})
	assert.ErrorIs(t, err, model.ErrValidation)

	txns, err := f.journal.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestExecute_InvalidLaterLinePostsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "Contas do mês", f.monthly())
	require.NoError(t, err)

	res, err := f.templates.Execute(ctx, tpl.ID, map[int]decimal.Decimal{1: dec("10.001")})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	var batchErr *BatchError
	assert.False(t, errors.As(err, &batchErr), "nothing was posted, so no batch")
	assert.Contains(t, err.Error(), "line 2")
	assert.Zero(t, res.Committed())

	txns, err := f.journal.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestExecute_DeletedAccountPostsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "Contas do mês", f.monthly())
	require.NoError(t, err)

	// The second line's account disappears after the template was saved.
	require.NoError(t, f.accounts.Delete(ctx, f.power.ID))

	_, err = f.templates.Execute(ctx, tpl.ID, nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Contains(t, err.Error(), "line 2")

	txns, err := f.journal.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

// flakyPoster posts through the journal until its budget runs out.
type flakyPoster struct {
	next  Poster
	left  int
	calls int
}

func (p *flakyPoster) Post(ctx context.Context, params journal.PostParams) (model.Transaction, error) {
	p.calls++
	if p.calls > p.left {
		return model.Transaction{}, errors.New("disk full")
	}
	return p.next.Post(ctx, params)
}

func TestExecute_StopsMidBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tpl, err := f.templates.Create(ctx, "Contas do mês", f.monthly())
	require.NoError(t, err)
	f.templates.journal = &flakyPoster{next: f.journal, left: 1}

	res, err := f.templates.Execute(ctx, tpl.ID, nil)
	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr), "got %v", err)
	assert.Equal(t, 1, batchErr.Committed)
	assert.Equal(t, 1, batchErr.Index)
	assert.EqualError(t, batchErr.Err, "disk full")
	assert.Equal(t, 1, res.Committed())

	txns, err := f.journal.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, txns, 1, "first posting stays committed")
}
