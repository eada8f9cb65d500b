package accounts

import (
	"context"
	"fmt"

	"github.com/NiinoTM/EasyAccounts/internal/model"
)

// DefaultChart returns the starter chart of accounts seeded by `easyaccounts init`.
func DefaultChart() []model.Account {
	return []model.Account{
		{Name: "Caixa", SpecificType: model.TypeAssets, Subtype: model.SubtypeCurrent},
		{Name: "Banco", SpecificType: model.TypeAssets, Subtype: model.SubtypeCurrent},
		{Name: "Clientes a Receber", SpecificType: model.TypeAssets, Subtype: model.SubtypeCurrent},
		{Name: "Estoque", SpecificType: model.TypeAssets, Subtype: model.SubtypeCurrent},
		{Name: "Veículos", SpecificType: model.TypeAssets, Subtype: model.SubtypeFixed},
		{Name: "Equipamentos", SpecificType: model.TypeAssets, Subtype: model.SubtypeFixed},
		// Contra-asset: lives with fixed assets but carries a credit balance.
		{Name: "Depreciação Acumulada", Kind: model.KindCredit, SpecificType: model.TypeAssets, Subtype: model.SubtypeFixed},
		{Name: "Fornecedores", SpecificType: model.TypeLiabilities, Subtype: model.SubtypeCurrent},
		{Name: "Impostos a Pagar", SpecificType: model.TypeLiabilities, Subtype: model.SubtypeCurrent},
		{Name: "Empréstimos de Longo Prazo", SpecificType: model.TypeLiabilities, Subtype: model.SubtypeNonCurrent},
		{Name: "Capital Social", SpecificType: model.TypeEquity},
		{Name: "Receita de Serviços", SpecificType: model.TypeRevenue},
		{Name: "Vendas de Mercadorias", SpecificType: model.TypeSales},
		{Name: "Despesas Administrativas", SpecificType: model.TypeExpenses},
		{Name: "Despesa de Depreciação", SpecificType: model.TypeExpenses},
		{Name: "Compras de Mercadorias", SpecificType: model.TypePurchases},
	}
}

// Import creates every account in chart. Ids and balances in chart are ignored;
// balances only move through the journal. It stops at the first failure and
// returns the number of accounts created before it.
func (s *Service) Import(ctx context.Context, chart []model.Account) (int, error) {
	for i, a := range chart {
		_, err := s.Create(ctx, AccountParams{
			Name:         a.Name,
			Kind:         a.Kind,
			SpecificType: a.SpecificType,
			Subtype:      a.Subtype,
			CategoryID:   a.CategoryID,
		})
		if err != nil {
			return i, fmt.Errorf("importing account %q: %w", a.Name, err)
		}
	}
	return len(chart), nil
}
