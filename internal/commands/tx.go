package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/date"
	"github.com/NiinoTM/EasyAccounts/internal/journal"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

func newTxCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Post and inspect journal transactions",
	}
	cmd.AddCommand(
		newTxPostCommand(a),
		newTxEditCommand(a),
		newTxDeleteCommand(a),
		newTxListCommand(a),
		newTxSearchCommand(a),
		newTxImportCommand(a),
		newTxExportCommand(a),
		newTxReconcileCommand(a),
		newTxTrialCommand(a),
	)
	return cmd
}

func newTxPostCommand(a *app) *cobra.Command {
	var on, desc string
	var debit, credit int
	cmd := &cobra.Command{
		Use:   "post <amount>",
		Short: "Post a transaction: debit one account, credit another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			d, err := parseDate(on)
			if err != nil {
				return err
			}
			txn, err := a.journal.Post(cmd.Context(), journal.PostParams{
				Date: d, Description: desc, DebitAccount: debit, CreditAccount: credit, Amount: amount,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Posted transaction %d: %s %s D%d/C%d\n",
				txn.ID, txn.Date, a.money(txn.Amount), txn.DebitAccount, txn.CreditAccount)
			return nil
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "transaction date, e.g. 2025-03-15 or 15/03/2025 (default today)")
	cmd.Flags().StringVarP(&desc, "description", "m", "", "description")
	cmd.Flags().IntVar(&debit, "debit", 0, "debit account id (required)")
	cmd.Flags().IntVar(&credit, "credit", 0, "credit account id (required)")
	_ = cmd.MarkFlagRequired("debit")
	_ = cmd.MarkFlagRequired("credit")
	return cmd
}

func newTxEditCommand(a *app) *cobra.Command {
	var on, desc, amount string
	var debit, credit int
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a posted transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			var p journal.EditParams
			flags := cmd.Flags()
			if flags.Changed("date") {
				d, err := parseDate(on)
				if err != nil {
					return err
				}
				p.Date = &d
			}
			if flags.Changed("description") {
				p.Description = &desc
			}
			if flags.Changed("debit") {
				p.DebitAccount = &debit
			}
			if flags.Changed("credit") {
				p.CreditAccount = &credit
			}
			if flags.Changed("amount") {
				amt, err := parseAmount(amount)
				if err != nil {
					return err
				}
				p.Amount = &amt
			}

			var printErr error
			txn, err := a.journal.Edit(cmd.Context(), id, p, a.editConfirmation(cmd, &printErr))
			if printErr != nil {
				return printErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated transaction %d\n", txn.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&on, "date", "", "new date")
	cmd.Flags().StringVarP(&desc, "description", "m", "", "new description")
	cmd.Flags().IntVar(&debit, "debit", 0, "new debit account id")
	cmd.Flags().IntVar(&credit, "credit", 0, "new credit account id")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	return cmd
}

func newTxDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and reverse its effect on balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			txn, err := a.journal.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.printTransactions(cmd.OutOrStdout(), []model.Transaction{txn})
			if !a.confirm(cmd, fmt.Sprintf("Delete transaction %d?", id)) {
				return model.ErrDeclined
			}
			if err := a.journal.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %d\n", id)
			return nil
		},
	}
}

func newTxListCommand(a *app) *cobra.Command {
	var from, to string
	var account int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions by date, optionally for one account or a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f journal.ListFilter
			var err error
			if from != "" {
				if f.From, err = date.ParseFlexible(from); err != nil {
					return model.Invalid("from", "%v", err)
				}
			}
			if to != "" {
				if f.To, err = date.ParseFlexible(to); err != nil {
					return model.Invalid("to", "%v", err)
				}
			}
			f.AccountID = account
			txns, err := a.journal.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.printTransactions(cmd.OutOrStdout(), txns)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date")
	cmd.Flags().StringVar(&to, "to", "", "last date")
	cmd.Flags().IntVar(&account, "account", 0, "only transactions touching this account id")
	return cmd
}

func newTxSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "Find transactions by id or description, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) > 0 {
				term = args[0]
			}
			txns, err := a.journal.Search(cmd.Context(), term)
			if err != nil {
				return err
			}
			return a.printTransactions(cmd.OutOrStdout(), txns)
		},
	}
}

func newTxImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Post every transaction of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			txns, err := journal.ReadTransactions(f)
			if err != nil {
				return err
			}
			n, err := a.journal.Import(cmd.Context(), txns)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d transactions\n", n, len(txns))
			return err
		},
	}
}

func newTxExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Write the journal to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, err := a.journal.List(cmd.Context(), journal.ListFilter{})
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := journal.WriteTransactions(f, txns); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(txns), args[0])
			return nil
		},
	}
}

func newTxReconcileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check cached balances against the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			diffs, err := a.journal.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(diffs) == 0 {
				fmt.Fprintln(out, "All balances agree with the journal")
				return nil
			}
			tw := newTable(out, "ID", "ACCOUNT", "CACHED", "JOURNAL")
			for _, d := range diffs {
				row(tw, d.Account.ID, d.Account.Name, d.Cached, d.Computed)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("%d accounts out of step with the journal", len(diffs))
		},
	}
}

func newTxTrialCommand(a *app) *cobra.Command {
	var through string
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Print a trial balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(through)
			if err != nil {
				return err
			}
			tb, err := a.journal.TrialBalance(cmd.Context(), d)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trial balance through %s\n", tb.Through)
			tw := newTable(out, "ID", "ACCOUNT", "DEBITS", "CREDITS")
			for _, r := range tb.Rows {
				row(tw, r.Account.ID, r.Account.Name, a.money(r.Debits), a.money(r.Credits))
			}
			row(tw, "", "TOTAL", a.money(tb.TotalDebits), a.money(tb.TotalCredits))
			if err := tw.Flush(); err != nil {
				return err
			}
			if !tb.Balanced() {
				return fmt.Errorf("trial balance does not balance")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&through, "through", "", "last date included (default today)")
	return cmd
}

// editConfirmation shows both versions of an edited transaction and asks before
// saving. It only prints and reads input; the journal's transaction is still open.
// A failed print declines the edit and is stored in failed.
func (a *app) editConfirmation(cmd *cobra.Command, failed *error) journal.ConfirmFunc {
	return func(current, updated model.Transaction) bool {
		out := cmd.OutOrStdout()
		for _, v := range []struct {
			label string
			txn   model.Transaction
		}{{"Current:", current}, {"Updated:", updated}} {
			fmt.Fprintln(out, v.label)
			if err := a.printTransactions(out, []model.Transaction{v.txn}); err != nil {
				*failed = fmt.Errorf("printing transaction: %w", err)
				return false
			}
		}
		return a.confirm(cmd, "Save changes?")
	}
}

func (a *app) printTransactions(w io.Writer, txns []model.Transaction) error {
	tw := newTable(w, "ID", "DATE", "DEBIT", "CREDIT", "AMOUNT", "DESCRIPTION")
	for _, t := range txns {
		row(tw, t.ID, t.Date, t.DebitAccount, t.CreditAccount, a.money(t.Amount), t.Description)
	}
	return tw.Flush()
}
