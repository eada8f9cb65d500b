package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/templates"
)

const lineHelp = `posting as "debit:credit:amount[:description]", repeatable`

func newTemplateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Save and run batches of postings",
	}

	var lines []string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ls, err := parseLines(lines)
			if err != nil {
				return err
			}
			t, err := a.templates.Create(cmd.Context(), args[0], ls)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %d %s (%d lines)\n", t.ID, t.Name, len(t.Lines))
			return nil
		},
	}
	add.Flags().StringArrayVar(&lines, "line", nil, lineHelp)
	_ = add.MarkFlagRequired("line")

	var editName string
	var editLines []string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a template or replace its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "template")
			if err != nil {
				return err
			}
			cur, err := a.templates.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				cur.Name = editName
			}
			if cmd.Flags().Changed("line") {
				if cur.Lines, err = parseLines(editLines); err != nil {
					return err
				}
			}
			t, err := a.templates.Update(cmd.Context(), id, cur.Name, cur.Lines)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated template %d %s\n", t.ID, t.Name)
			return nil
		},
	}
	edit.Flags().StringVar(&editName, "name", "", "new name")
	edit.Flags().StringArrayVar(&editLines, "line", nil, lineHelp)

	list := &cobra.Command{
		Use:   "list [term]",
		Short: "List templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) > 0 {
				term = args[0]
			}
			ts, err := a.templates.Search(cmd.Context(), term)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "LINES")
			for _, t := range ts {
				row(tw, t.ID, t.Name, len(t.Lines))
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the lines of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "template")
			if err != nil {
				return err
			}
			t, err := a.templates.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d %s\n", t.ID, t.Name)
			tw := newTable(out, "LINE", "DEBIT", "CREDIT", "AMOUNT", "DESCRIPTION")
			for i, l := range t.Lines {
				row(tw, i+1, l.DebitAccount, l.CreditAccount, a.money(l.Amount), l.Description)
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "template")
			if err != nil {
				return err
			}
			if !a.confirm(cmd, fmt.Sprintf("Delete template %d?", id)) {
				return model.ErrDeclined
			}
			if err := a.templates.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %d\n", id)
			return nil
		},
	}

	var amounts []string
	run := &cobra.Command{
		Use:   "run <id>",
		Short: "Post every line of a template dated today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "template")
			if err != nil {
				return err
			}
			overrides, err := parseOverrides(amounts)
			if err != nil {
				return err
			}
			res, err := a.templates.Execute(cmd.Context(), id, overrides)
			out := cmd.OutOrStdout()
			if len(res.Transactions) > 0 {
				a.printTransactions(out, res.Transactions)
			}
			var batchErr *templates.BatchError
			if errors.As(err, &batchErr) {
				fmt.Fprintf(out, "Batch %s: %d postings committed before line %d failed\n", batchErr.Batch, batchErr.Committed, batchErr.Index+1)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Batch %s: %d postings\n", res.ID, res.Committed())
			return nil
		},
	}
	run.Flags().StringArrayVar(&amounts, "amount", nil, `override a line's amount as "line=amount", e.g. 2=199.90`)

	cmd.AddCommand(add, edit, list, show, del, run)
	return cmd
}

func parseLines(raws []string) ([]model.TemplateLine, error) {
	out := make([]model.TemplateLine, 0, len(raws))
	for _, raw := range raws {
		parts := strings.SplitN(raw, ":", 4)
		if len(parts) < 3 {
			return nil, model.Invalid("line", "%q: want debit:credit:amount[:description]", raw)
		}
		debit, err := parseID(parts[0], "debit_account")
		if err != nil {
			return nil, err
		}
		credit, err := parseID(parts[1], "credit_account")
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(parts[2])
		if err != nil {
			return nil, err
		}
		l := model.TemplateLine{DebitAccount: debit, CreditAccount: credit, Amount: amount}
		if len(parts) == 4 {
			l.Description = parts[3]
		}
		out = append(out, l)
	}
	return out, nil
}

// parseOverrides reads one-based "line=amount" pairs into zero-based overrides.
func parseOverrides(raws []string) (map[int]decimal.Decimal, error) {
	out := make(map[int]decimal.Decimal, len(raws))
	for _, raw := range raws {
		k, v, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, model.Invalid("amount", "%q: want line=amount", raw)
		}
		line, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, model.Invalid("amount", "%q: bad line number", raw)
		}
		amount, err := parseAmount(v)
		if err != nil {
			return nil, err
		}
		out[line-1] = amount
	}
	return out, nil
}
