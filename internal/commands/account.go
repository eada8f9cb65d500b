package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/accounts"
	"github.com/NiinoTM/EasyAccounts/internal/model"
)

func newAccountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts", "conta"},
		Short:   "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountAddCommand(a),
		newAccountListCommand(a),
		newAccountEditCommand(a),
		newAccountDeleteCommand(a),
		newAccountImportCommand(a),
		newAccountExportCommand(a),
		&cobra.Command{
			Use:   "defaults",
			Short: "Add the default chart of accounts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := a.accounts.Import(cmd.Context(), accounts.DefaultChart())
				if err != nil {
					return fmt.Errorf("adding default chart after %d accounts: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d accounts\n", n)
				return nil
			},
		},
	)
	return cmd
}

type accountFlags struct {
	kind     string
	typ      string
	subtype  string
	category int
}

func (f *accountFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.typ, "type", "", "specific type: despesas, ativos, compras, passivos, entradas, vendas, patrimonio")
	cmd.Flags().StringVar(&f.subtype, "subtype", "", "subtype for ativos/passivos: circulante, fixo, não-circulante")
	cmd.Flags().StringVar(&f.kind, "kind", "", "override the normal side: debito or credito (contra accounts)")
	cmd.Flags().IntVar(&f.category, "category", 0, "category id")
}

func newAccountAddCommand(a *app) *cobra.Command {
	var f accountFlags
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acct, err := a.accounts.Create(cmd.Context(), accounts.AccountParams{
				Name:         args[0],
				Kind:         model.Kind(f.kind),
				SpecificType: model.SpecificType(f.typ),
				Subtype:      model.Subtype(f.subtype),
				CategoryID:   f.category,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %d %s (%s)\n", acct.ID, acct.Name, acct.Kind)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newAccountListCommand(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, optionally matching a search term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accts, err := a.accounts.Search(cmd.Context(), search)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "KIND", "TYPE", "SUBTYPE", "CATEGORY", "BALANCE")
			for _, acct := range accts {
				row(tw, acct.ID, acct.Name, acct.Kind, acct.SpecificType, acct.Subtype, acct.CategoryID, a.money(acct.NormalBalance()))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "id or part of the name")
	return cmd
}

func newAccountEditCommand(a *app) *cobra.Command {
	var (
		f    accountFlags
		name string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an account's name, type or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}
			cur, err := a.accounts.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			p := accounts.AccountParams{
				Name:         cur.Name,
				Kind:         cur.Kind,
				SpecificType: cur.SpecificType,
				Subtype:      cur.Subtype,
				CategoryID:   cur.CategoryID,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = name
			}
			if flags.Changed("type") {
				p.SpecificType = model.SpecificType(f.typ)
				p.Kind = "" // back to the type's normal side unless --kind says otherwise
				if !flags.Changed("subtype") {
					p.Subtype = model.SubtypeNone
				}
			}
			if flags.Changed("subtype") {
				p.Subtype = model.Subtype(f.subtype)
			}
			if flags.Changed("kind") {
				p.Kind = model.Kind(f.kind)
			}
			if flags.Changed("category") {
				p.CategoryID = f.category
			}
			acct, err := a.accounts.Update(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated account %d %s\n", acct.ID, acct.Name)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "new name")
	return cmd
}

func newAccountDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account without transactions or assets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}
			acct, err := a.accounts.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !a.confirm(cmd, fmt.Sprintf("Delete account %d %s?", acct.ID, acct.Name)) {
				return model.ErrDeclined
			}
			if err := a.accounts.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %d\n", id)
			return nil
		},
	}
}

func newAccountImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create accounts from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			accts, err := accounts.ReadAccounts(f)
			if err != nil {
				return err
			}
			n, err := a.accounts.Import(cmd.Context(), accts)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d accounts\n", n, len(accts))
			return err
		},
	}
}

func newAccountExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.csv>",
		Short: "Write the chart of accounts to a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accts, err := a.accounts.All(cmd.Context())
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := accounts.WriteAccounts(f, accts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d accounts to %s\n", len(accts), args[0])
			return nil
		},
	}
}

func newCategoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage account categories",
	}

	var desc string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.categories.Create(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %d %s\n", c.ID, c.Name)
			return nil
		},
	}
	add.Flags().StringVar(&desc, "description", "", "description")

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := a.categories.Search(cmd.Context(), search)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "DESCRIPTION")
			for _, c := range cats {
				row(tw, c.ID, c.Name, c.Description)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "id or part of the name")

	var newName, newDesc string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename or describe a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			cur, err := a.categories.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				cur.Name = newName
			}
			if cmd.Flags().Changed("description") {
				cur.Description = newDesc
			}
			c, err := a.categories.Update(cmd.Context(), id, cur.Name, cur.Description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %d %s\n", c.ID, c.Name)
			return nil
		},
	}
	edit.Flags().StringVar(&newName, "name", "", "new name")
	edit.Flags().StringVar(&newDesc, "description", "", "new description")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category no account uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			if !a.confirm(cmd, fmt.Sprintf("Delete category %d?", id)) {
				return model.ErrDeclined
			}
			if err := a.categories.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, edit, del)
	return cmd
}
