package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archmagece/ldapforge-sync/internal/config"
	"github.com/archmagece/ldapforge-sync/internal/dispatch"
	"github.com/archmagece/ldapforge-sync/internal/logging"
	"github.com/archmagece/ldapforge-sync/pkg/cliutil"
)

var (
	syncDryRun         bool
	syncContinueOnFail bool
	syncFormat         string
)

var syncCmd = &cobra.Command{
	Use:   "sync [instance]",
	Short: "Reconcile GitLab against the LDAP directory",
	Long: `sync ingests the LDAP directory once, then reconciles each configured
GitLab instance toward it in turn: users first, then groups, then group
membership. With an [instance] argument, only that configured instance
is reconciled.
` + cliutil.QuickStartHelp(`  # Preview every instance without changing anything
  ldapforge-sync sync --dryrun

  # Reconcile a single instance, continuing past per-user/group failures
  ldapforge-sync sync primary --continueOnFail`),
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVarP(&syncDryRun, "dryrun", "d", false, "report intended changes without calling GitLab")
	syncCmd.Flags().BoolVar(&syncContinueOnFail, "continueOnFail", false, "log and skip failed users/groups instead of aborting the instance")
	syncCmd.Flags().StringVar(&syncFormat, "format", "default", "result output format ("+strings.Join(cliutil.CoreFormats, "|")+")")
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := cliutil.ValidateFormat(syncFormat, cliutil.CoreFormats); err != nil {
		return err
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	log := logging.New(os.Stderr, level)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	instanceFilter := ""
	if len(args) == 1 {
		instanceFilter = args[0]
	}

	results, err := dispatch.Run(cmd.Context(), cfg, instanceFilter, syncContinueOnFail, syncDryRun, log)
	if printErr := printSyncResults(results, syncFormat); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	return nil
}

// syncResultView is InstanceResult reshaped for machine-readable output:
// error and *Counters don't marshal usefully as-is (error has no exported
// fields; Counters may be nil when the run aborted before this instance).
type syncResultView struct {
	Instance string         `json:"instance"`
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
	Counters map[string]int `json:"counters,omitempty"`
}

func printSyncResults(results []dispatch.InstanceResult, format string) error {
	if cliutil.IsMachineFormat(format) {
		views := make([]syncResultView, 0, len(results))
		for _, r := range results {
			v := syncResultView{Instance: r.Instance, OK: r.Err == nil}
			if r.Err != nil {
				v.Error = r.Err.Error()
			}
			if r.Counters != nil {
				kv := r.Counters.Summary()
				v.Counters = make(map[string]int, len(kv)/2)
				for i := 0; i+1 < len(kv); i += 2 {
					if n, ok := kv[i+1].(int); ok {
						v.Counters[fmt.Sprint(kv[i])] = n
					}
				}
			}
			views = append(views, v)
		}
		return cliutil.WriteJSON(os.Stdout, views, format != "compact")
	}

	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}
		fmt.Printf("%s: %s\n", r.Instance, status)
		if r.Counters != nil {
			kv := r.Counters.Summary()
			for i := 0; i+1 < len(kv); i += 2 {
				fmt.Printf("  %v: %v\n", kv[i], kv[i+1])
			}
		}
	}
	return nil
}
