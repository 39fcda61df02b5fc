package cmd

import (
	"github.com/spf13/cobra"

	"github.com/archmagece/ldapforge-sync/pkg/cliutil"
	"github.com/archmagece/ldapforge-sync/pkg/wizard"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ldapforge-sync configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively scaffold config.yml",
	Long: `init walks through the LDAP connection, directory search filters, and
first GitLab instance, then writes the answers to config.yml.
` + cliutil.QuickStartHelp(`  # Scaffold ./config.yml
  ldapforge-sync config init

  # Scaffold a config file at a custom path
  ldapforge-sync config init --output ./config/staging.yml`),
	RunE: runConfigInit,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "config.yml", "path to write the scaffolded config")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	w := wizard.NewConfigInitWizard(configInitOutput)
	_, err := w.Run(cmd.Context())
	return err
}
