package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/periods"
)

func newPeriodCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "period",
		Aliases: []string{"periods"},
		Short:   "Manage fiscal periods",
	}

	var start, interval string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a fiscal period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(start)
			if err != nil {
				return err
			}
			iv, err := periods.ParseInterval(interval)
			if err != nil {
				return err
			}
			p, err := a.periods.Create(cmd.Context(), d, iv)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created period %d: %s (%d days)\n", p.ID, p, p.IntervalDays)
			return nil
		},
	}
	add.Flags().StringVar(&start, "start", "", "first day (default today)")
	add.Flags().StringVar(&interval, "interval", "monthly", "monthly, quarterly, semiannual, annual or a day count like 45d")

	list := &cobra.Command{
		Use:   "list",
		Short: "List fiscal periods, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := a.periods.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "START", "END", "DAYS")
			for _, p := range ps {
				row(tw, p.ID, p.StartDate, p.EndDate, p.IntervalDays)
			}
			return tw.Flush()
		},
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Show the period containing today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.periods.Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", p.ID, p)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a fiscal period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "period")
			if err != nil {
				return err
			}
			if !a.confirm(cmd, fmt.Sprintf("Delete period %d?", id)) {
				return model.ErrDeclined
			}
			if err := a.periods.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted period %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, current, del)
	return cmd
}

// periodArg resolves an explicit period id, falling back to the current period.
func (a *app) periodArg(ctx context.Context, args []string) (model.FiscalPeriod, error) {
	if len(args) == 0 {
		return a.periods.Current(ctx)
	}
	id, err := parseID(args[0], "period")
	if err != nil {
		return model.FiscalPeriod{}, err
	}
	return a.periods.Get(ctx, id)
}
