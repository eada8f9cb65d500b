package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/model"
	"github.com/NiinoTM/EasyAccounts/internal/snapshot"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

func newBackupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup",
		Aliases: []string{"backups"},
		Short:   "Inspect and restore database snapshots",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := snapshot.List(a.cfg.Snapshot.Dir)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "#", "FILE", "SIZE", "TAKEN")
			for i, b := range bs {
				row(tw, i+1, b.Name, b.Size, b.ModTime.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}

	now := &cobra.Command{
		Use:   "now",
		Short: "Take a snapshot immediately",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.snapshots
			if s == nil {
				var err error
				if s, err = snapshot.New(a.db, a.cfg.Snapshot, a.log); err != nil {
					return err
				}
			}
			b, err := s.Take(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", b.Path)
			return nil
		},
	}

	restore := &cobra.Command{
		Use:   "restore <file|#>",
		Short: "Replace the database with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.db.Driver() != store.DriverSQLite {
				return fmt.Errorf("restore needs a sqlite3 database, have %s", a.db.Driver())
			}
			b, err := snapshot.Resolve(a.cfg.Snapshot.Dir, args[0])
			if err != nil {
				return err
			}
			if !a.confirm(cmd, fmt.Sprintf("Replace %s with %s?", a.db.Path(), b.Name)) {
				return model.ErrDeclined
			}
			dbPath := a.db.Path()
			if err := a.close(); err != nil {
				return fmt.Errorf("closing database: %w", err)
			}
			if err := snapshot.Restore(b, dbPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", dbPath, b.Name)
			return nil
		},
	}

	cmd.AddCommand(list, now, restore)
	return cmd
}
