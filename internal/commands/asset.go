package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/depreciation"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

func newAssetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "asset",
		Aliases: []string{"assets"},
		Short:   "Register fixed assets and record depreciation",
	}
	cmd.AddCommand(
		newAssetRegisterCommand(a),
		newAssetListCommand(a),
		newAssetMethodsCommand(a),
		newAssetScheduleCommand(a),
		newAssetRecordCommand(a),
		newAssetTableCommand(a),
		newAssetActiveCommand(a, "deactivate", false),
		newAssetActiveCommand(a, "activate", true),
	)
	return cmd
}

func newAssetRegisterCommand(a *app) *cobra.Command {
	var (
		acquired, starts, value, salvage string
		method, life, account            int
	)
	cmd := &cobra.Command{
		Use:   "register <name>",
		Short: "Register a depreciable asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acq, err := parseDate(acquired)
			if err != nil {
				return err
			}
			var start date.Date
			if starts != "" {
				if start, err = parseDate(starts); err != nil {
					return err
				}
			}
			val, err := parseAmount(value)
			if err != nil {
				return err
			}
			salv, err := parseAmount(salvage)
			if err != nil {
				return err
			}
			asset, err := a.depreciation.RegisterAsset(cmd.Context(), depreciation.AssetParams{
				Name:                  args[0],
				AcquisitionDate:       acq,
				AcquisitionValue:      val,
				MethodID:              method,
				UsefulLifeYears:       life,
				SalvageValue:          salv,
				StartDepreciationDate: start,
				AccountID:             account,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered asset %d %s\n", asset.ID, asset.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&acquired, "acquired", "", "acquisition date (default today)")
	cmd.Flags().StringVar(&starts, "starts", "", "depreciation start date (default acquisition date)")
	cmd.Flags().StringVar(&value, "value", "", "acquisition value (required)")
	cmd.Flags().StringVar(&salvage, "salvage", "0", "salvage value")
	cmd.Flags().IntVar(&method, "method", 1, "depreciation method id (see `asset methods`)")
	cmd.Flags().IntVar(&life, "life", 0, "useful life in years (required)")
	cmd.Flags().IntVar(&account, "account", 0, "asset account id (required)")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("life")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newAssetListCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets with their book value today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			assets, err := a.depreciation.Assets(ctx, !all)
			if err != nil {
				return err
			}
			methods, err := a.methodsByID(cmd)
			if err != nil {
				return err
			}
			today := date.Today()
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "ACQUIRED", "VALUE", "METHOD", "LIFE", "BOOK VALUE", "ACTIVE")
			for _, as := range assets {
				m := methods[as.MethodID]
				row(tw, as.ID, as.Name, as.AcquisitionDate, a.money(as.AcquisitionValue), m.Name, as.UsefulLifeYears,
					a.money(depreciation.BookValue(as, m, today)), as.Active)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive assets")
	return cmd
}

func (a *app) methodsByID(cmd *cobra.Command) (map[int]model.DepreciationMethod, error) {
	ms, err := a.depreciation.Methods(cmd.Context())
	if err != nil {
		return nil, err
	}
	out := make(map[int]model.DepreciationMethod, len(ms))
	for _, m := range ms {
		out[m.ID] = m
	}
	return out, nil
}

func newAssetMethodsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List depreciation methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := a.depreciation.Methods(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "RATE", "DESCRIPTION")
			for _, m := range ms {
				row(tw, m.ID, m.Name, m.AnnualRate, m.Description)
			}
			return tw.Flush()
		},
	}
}

func newAssetScheduleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <asset-id> [period-id]",
		Short: "Show an asset's depreciation within a period (default the current one)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "asset")
			if err != nil {
				return err
			}
			p, err := a.periodArg(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			s, err := a.depreciation.Schedule(cmd.Context(), id, p.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s), period %s\n", s.Asset.Name, s.Method.Name, s.Period)
			tw := newTable(out, "START VALUE", "END VALUE", "DEPRECIATION", "ANNUAL", "MONTHLY")
			row(tw, a.money(s.StartValue), a.money(s.EndValue), a.money(s.Depreciation), a.money(s.Annual), a.money(s.Monthly))
			return tw.Flush()
		},
	}
}

func newAssetRecordCommand(a *app) *cobra.Command {
	var expense, accumulated int
	cmd := &cobra.Command{
		Use:   "record <asset-id> [period-id]",
		Short: "Post an asset's depreciation for a period",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "asset")
			if err != nil {
				return err
			}
			p, err := a.periodArg(cmd.Context(), args[1:])
			if err != nil {
				return err
			}
			txn, err := a.depreciation.Record(cmd.Context(), id, p.ID, expense, accumulated)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted transaction %d: %s %s\n", txn.ID, txn.Date, a.money(txn.Amount))
			return nil
		},
	}
	cmd.Flags().IntVar(&expense, "expense", 0, "depreciation expense account id (debit, required)")
	cmd.Flags().IntVar(&accumulated, "accumulated", 0, "accumulated depreciation account id (credit, required)")
	_ = cmd.MarkFlagRequired("expense")
	_ = cmd.MarkFlagRequired("accumulated")
	return cmd
}

func newAssetTableCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "table <asset-id>",
		Short: "Print the year-by-year depreciation table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "asset")
			if err != nil {
				return err
			}
			as, err := a.depreciation.Asset(cmd.Context(), id)
			if err != nil {
				return err
			}
			m, err := a.depreciation.Method(cmd.Context(), as.MethodID)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "YEAR", "START VALUE", "DEPRECIATION", "END VALUE")
			for _, r := range depreciation.Table(as, m) {
				row(tw, r.Year, a.money(r.StartValue), a.money(r.Depreciation), a.money(r.EndValue))
			}
			return tw.Flush()
		},
	}
}

func newAssetActiveCommand(a *app, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <asset-id>",
		Short: fmt.Sprintf("Mark an asset as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "asset")
			if err != nil {
				return err
			}
			if err := a.depreciation.SetActive(cmd.Context(), id, active); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Asset %d %sd\n", id, use)
			return nil
		},
	}
}
