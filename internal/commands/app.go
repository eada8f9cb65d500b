package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/accounts"
	"github.com/NiinoTM/EasyAccounts/internal/config"
	"github.com/NiinoTM/EasyAccounts/internal/depreciation"
	"github.com/NiinoTM/EasyAccounts/internal/journal"
	"github.com/NiinoTM/EasyAccounts/internal/logging"
	"github.com/NiinoTM/EasyAccounts/internal/periods"
	"github.com/NiinoTM/EasyAccounts/internal/reports"
	"github.com/NiinoTM/EasyAccounts/internal/snapshot"
	"github.com/NiinoTM/EasyAccounts/internal/store"
	"github.com/NiinoTM/EasyAccounts/internal/templates"
)

// skipApp marks commands that run without opening the books.
const skipApp = "skip-app"

// app holds the single store handle and the services built on it for one invocation.
type app struct {
	cfgPath string
	yes     bool

	cfg *config.Config
	log *logrus.Logger
	db  *store.DB

	accounts     *accounts.Service
	categories   *accounts.CategoryService
	journal      *journal.Service
	periods      *periods.Service
	depreciation *depreciation.Service
	templates    *templates.Service
	income       *reports.IncomeStatementGenerator
	balance      *reports.BalanceSheetGenerator
	snapshots    *snapshot.Snapshotter
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("%w (run `easyaccounts init` first)", err)
	}
	if err := config.LoadEnv(cfg, filepath.Join(filepath.Dir(a.cfgPath), ".env")); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.Log)

	db, err := store.Open(ctx, cfg.Database, a.log)
	if err != nil {
		return err
	}
	a.db = db

	a.accounts = accounts.NewService(db, a.log)
	a.categories = accounts.NewCategoryService(db, a.log)
	a.journal = journal.NewService(db, a.accounts, a.log)
	a.periods = periods.NewService(db, a.log)
	a.depreciation = depreciation.NewService(db, a.journal, a.periods, a.log)
	a.templates = templates.NewService(db, a.journal, a.accounts, a.log)
	a.income = reports.NewIncomeStatementGenerator(a.accounts, a.journal, a.periods)
	a.balance = reports.NewBalanceSheetGenerator(a.accounts, a.journal)

	if cfg.Snapshot.Enabled && db.Driver() == store.DriverSQLite {
		a.snapshots, err = snapshot.New(db, cfg.Snapshot, a.log)
		if err != nil {
			return err
		}
		a.snapshots.Register()
	}
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *app) renderer() *reports.Renderer {
	return reports.NewRenderer(a.cfg.Currency)
}

func (a *app) money(d decimal.Decimal) string {
	return reports.FormatMoney(d, a.cfg.Currency)
}

// confirm asks a yes/no question on the command's input. --yes answers yes.
func (a *app) confirm(cmd *cobra.Command, question string) bool {
	if a.yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [s/N] ", question)
	return readYes(cmd.InOrStdin())
}

func readYes(r io.Reader) bool {
	line, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}
