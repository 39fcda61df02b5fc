// Package cmd implements the CLI commands for ldapforge-sync.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/archmagece/ldapforge-sync/pkg/cliutil"
)

var (
	// appVersion is set by main.go
	appVersion string

	// Global flags
	verbose    bool
	configPath string
	rootFormat string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ldapforge-sync",
	Short: "Reconcile GitLab users, groups, and memberships against an LDAP directory",
	Long: `ldapforge-sync reads an LDAP directory once per run and pushes the
result toward one or more configured GitLab instances: creating and
blocking users, creating and pruning groups, and reconciling group
membership.
` + cliutil.QuickStartHelp(`  # Scaffold config.yml interactively
  ldapforge-sync config init

  # Preview what a run would change, without touching GitLab
  ldapforge-sync sync --dryrun

  # Reconcile every configured instance
  ldapforge-sync sync

  See 'ldapforge-sync sync --help' for instance selection and failure handling.`),
	Version: appVersion,
	Run:     runRoot,
}

func runRoot(cmd *cobra.Command, _ []string) {
	if rootFormat == "" {
		cmd.Help()
		return
	}
	if err := cliutil.ValidateFormat(rootFormat, cliutil.CoreFormats); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cliutil.IsMachineFormat(rootFormat) {
		generateLLMDocs(cmd)
		return
	}
	cmd.Help()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute(version string) {
	appVersion = version
	rootCmd.Version = version

	setCommandGroups(rootCmd)
	applyUsageTemplateRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setCommandGroups(cmd *cobra.Command) {
	coreGroup := &cobra.Group{ID: "core", Title: cliutil.ColorYellowBold + "Core" + cliutil.ColorReset}
	mgmtGroup := &cobra.Group{ID: "mgmt", Title: cliutil.ColorYellowBold + "Configuration" + cliutil.ColorReset}

	cmd.AddGroup(coreGroup, mgmtGroup)

	for _, c := range cmd.Commands() {
		if c.Name() == "help" || c.Name() == "completion" || c.Name() == "version" {
			continue
		}

		switch c.Name() {
		case "sync":
			c.GroupID = coreGroup.ID
		case "config":
			c.GroupID = mgmtGroup.ID
		}
	}
}

func applyUsageTemplateRecursive(cmd *cobra.Command) {
	cmd.SetUsageTemplate(usageTemplate)
	// Cobra does not propagate SilenceUsage/SilenceErrors to child commands.
	// Set on every command so runtime errors never print usage text.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	for _, c := range cmd.Commands() {
		applyUsageTemplateRecursive(c)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "path to config.yml")

	rootCmd.Flags().StringVar(&rootFormat, "format", "", "output format for help (supported: llm)")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	rootCmd.SetUsageTemplate(usageTemplate)
}

const usageTemplate = `{{if .Runnable}}` + cliutil.ColorGreenBold + `Usage:` + cliutil.ColorReset + `
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}` + cliutil.ColorGreenBold + `Usage:` + cliutil.ColorReset + `
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

` + cliutil.ColorGreenBold + `Examples:` + cliutil.ColorReset + `
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

` + cliutil.ColorMagentaBold + `Additional Commands:` + cliutil.ColorReset + `{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

` + cliutil.ColorGreenBold + `Flags:` + cliutil.ColorReset + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

` + cliutil.ColorGreenBold + `Global Flags:` + cliutil.ColorReset + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

func generateLLMDocs(cmd *cobra.Command) {
	fmt.Println("# ldapforge-sync CLI Tool Specification")
	fmt.Println("\nThis document defines the capabilities and interface of the ldapforge-sync CLI for AI Agents.")
	fmt.Println("Hierarchy: Top-level commands (##) -> Subcommands (###)")

	fmt.Println("\n## Global Flags")
	fmt.Println("- `-v, --verbose`: Enable debug-level logging")
	fmt.Println("- `-c, --config <path>`: Path to config.yml (default \"config.yml\")")

	fmt.Println("\n## Available Commands")
	printCommandRecursive(cmd, 2)
}

func printCommandRecursive(cmd *cobra.Command, level int) {
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.Name() == "help" {
			continue
		}

		header := ""
		for i := 0; i < level; i++ {
			header += "#"
		}

		fmt.Printf("\n%s `%s`\n", header, c.Name())
		fmt.Printf("- **Path**: `%s`\n", c.CommandPath())
		fmt.Printf("- **Purpose**: %s\n", c.Short)
		fmt.Printf("- **Usage**: `%s`\n", c.UseLine())

		c.LocalFlags().VisitAll(func(f *pflag.Flag) {
			fmt.Printf("  - `--%s`: %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		})

		printCommandRecursive(c, level+1)
	}
}
