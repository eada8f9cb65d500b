package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/reports"
)

type reportFlags struct {
	pretty bool
	width  int
	xlsx   bool
	md     bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "style the report for the terminal")
	cmd.Flags().IntVar(&f.width, "width", 100, "wrap width for --pretty")
	cmd.Flags().BoolVar(&f.xlsx, "xlsx", false, "also export an Excel workbook to the export dir")
	cmd.Flags().BoolVar(&f.md, "md", false, "also export a Markdown file to the export dir")
}

func newReportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"reports"},
		Short:   "Generate financial statements",
	}

	var balance, income, statements reportFlags
	balanceCmd := &cobra.Command{
		Use:   "balance [period-id]",
		Short: "Balance sheet at the end of a period (default the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.statements(cmd, args)
			if err != nil {
				return err
			}
			return a.emit(cmd, balance, "balanco", st.Balance)
		},
	}
	balance.register(balanceCmd)

	incomeCmd := &cobra.Command{
		Use:     "income [period-id]",
		Aliases: []string{"drp"},
		Short:   "Income statement of a period (default the current one)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.periodArg(cmd.Context(), args)
			if err != nil {
				return err
			}
			is, err := a.income.Generate(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			return a.emit(cmd, income, "drp", is)
		},
	}
	income.register(incomeCmd)

	statementsCmd := &cobra.Command{
		Use:   "statements [period-id]",
		Short: "Income statement and balance sheet of a period",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.statements(cmd, args)
			if err != nil {
				return err
			}
			return a.emit(cmd, statements, "demonstracoes", st)
		},
	}
	statements.register(statementsCmd)

	cmd.AddCommand(balanceCmd, incomeCmd, statementsCmd)
	return cmd
}

func (a *app) statements(cmd *cobra.Command, args []string) (reports.FinancialStatements, error) {
	p, err := a.periodArg(cmd.Context(), args)
	if err != nil {
		return reports.FinancialStatements{}, err
	}
	return reports.Statements(cmd.Context(), a.income, a.balance, p.ID)
}

func (a *app) emit(cmd *cobra.Command, f reportFlags, kind string, report any) error {
	r := a.renderer()
	out := cmd.OutOrStdout()
	var err error
	if f.pretty {
		err = r.Pretty(out, report, f.width)
	} else {
		err = r.Markdown(out, report)
	}
	if err != nil {
		return err
	}

	now := time.Now()
	if f.xlsx {
		path := filepath.Join(a.cfg.Reports.ExportDir, reports.ExportFileName(kind, "xlsx", now))
		if err := reports.ExportXLSX(path, report); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nExported %s\n", path)
	}
	if f.md {
		path := filepath.Join(a.cfg.Reports.ExportDir, reports.ExportFileName(kind, "md", now))
		if err := r.ExportMarkdown(path, report); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nExported %s\n", path)
	}
	return nil
}
