package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/accounts"
	"github.com/NiinoTM/EasyAccounts/internal/config"
	"github.com/NiinoTM/EasyAccounts/internal/logging"
	"github.com/NiinoTM/EasyAccounts/internal/store"
)

func newInitCommand() *cobra.Command {
	var (
		name     string
		currency string
		noChart  bool
	)

	cmd := &cobra.Command{
		Use:         "init [directory]",
		Short:       "Initialize a new set of books",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, name, currency, !noChart)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "BRL", "ISO 4217 currency code used in reports")
	cmd.Flags().BoolVar(&noChart, "no-chart", false, "start with an empty chart of accounts")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, name, currency string, chart bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write easyaccounts.yaml.
	cfg := config.Default(name)
	cfg.Currency = currency
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Create the database through the same path resolution Load applies.
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}
	for _, d := range []string{cfg.Snapshot.Dir, cfg.Reports.ExportDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	log := logging.New(cfg.Log)
	db, err := store.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	n := 0
	if chart {
		n, err = accounts.NewService(db, log).Import(ctx, accounts.DefaultChart())
		if err != nil {
			return fmt.Errorf("writing chart of accounts: %w", err)
		}
	}

	fmt.Fprintf(out, "Initialized books for %s at %s (%d accounts)\n", name, dir, n)
	return nil
}
