package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NiinoTM/EasyAccounts/internal/buildinfo"
	"github.com/NiinoTM/EasyAccounts/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "easyaccounts",
		Short:   "Double-entry bookkeeping for small businesses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipApp]; ok {
				return nil
			}
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", config.FileName, "path to easyaccounts.yaml")
	rootCmd.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "answer yes to every confirmation")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(a),
		newCategoryCommand(a),
		newTxCommand(a),
		newPeriodCommand(a),
		newAssetCommand(a),
		newTemplateCommand(a),
		newReportCommand(a),
		newBackupCommand(a),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command and closes the books, also when the command fails.
func Execute() error {
	a := &app{}
	err := newRootCommand(a).Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}
