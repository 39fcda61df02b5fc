package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	ldapforgesync "github.com/archmagece/ldapforge-sync"
	"github.com/archmagece/ldapforge-sync/pkg/cliutil"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: cliutil.QuickStartHelp(`  # Show full version info
  ldapforge-sync version

  # Show short version number
  ldapforge-sync version --short`),
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")

		if short {
			fmt.Println(ldapforgesync.ShortVersion())
			return
		}

		fmt.Println(ldapforgesync.VersionString())
		fmt.Printf("\nGo version: %s\n", ldapforgesync.VersionInfo()["goVersion"])
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolP("short", "s", false, "Print only the version number")
}
