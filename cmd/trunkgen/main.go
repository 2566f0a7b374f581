// Trunkgen - trunked radio system configuration generator
//
// Builds one control channel plus N voice channel host configurations that
// share an FNE, protocol identifiers and a channel plan, then validates and
// maintains them as a unit.
//
// Command groups:
//
//	trunk      create | validate | update | show   (whole-system operations)
//	iden       calc | bands | init | show          (channel identity plans)
//	netid      info | check                        (protocol identifier ranges)
//	templates  list | render                       (single host documents)
//
// Examples:
//
//	trunkgen trunk create --name skynet --base-dir /opt/dvm --vc-count 3 --nac 0x293
//	trunkgen trunk create --plan metro.hcl
//	trunkgen trunk validate --name skynet --base-dir /opt/dvm
//	trunkgen trunk update --name skynet --base-dir /opt/dvm system.config.nac 700
//	trunkgen iden calc 851.0125 --band 800mhz
//	trunkgen netid check --protocol dmr --site-model tiny dmrNetId=300
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/trunkgen/trunkgen/pkg/audit"
	"github.com/trunkgen/trunkgen/pkg/cli"
	"github.com/trunkgen/trunkgen/pkg/settings"
	"github.com/trunkgen/trunkgen/pkg/util"
	"github.com/trunkgen/trunkgen/pkg/version"
)

var (
	// Global option flags
	verbose    bool
	jsonLog    bool
	auditPath  string
	jsonOutput bool

	// Global state
	userSettings *settings.Settings
	currentUser  = "unknown"
)

// errInvalid is returned after a failed check has already been printed, so
// main exits non-zero without repeating it.
var errInvalid = errors.New("invalid")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, red("Error:"), err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "trunkgen",
	Short:             "Trunked radio system configuration generator",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Trunkgen generates and maintains the host configurations of a trunked
radio system: one control channel and its voice channels, kept consistent
on FNE endpoint, protocol identifiers and channel plan.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set log level: quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if jsonLog {
			util.SetJSONFormat()
		}

		if u, err := user.Current(); err == nil {
			currentUser = u.Username
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		if auditPath == "" {
			auditPath = userSettings.AuditLog
		}
		if auditPath != "" {
			logger, err := audit.NewFileLogger(auditPath, audit.DefaultRotation)
			if err != nil {
				util.Warnf("Could not initialize audit logging: %v", err)
			} else {
				audit.SetDefaultLogger(logger)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "log-json", false, "Write log messages as JSON")
	rootCmd.PersistentFlags().StringVar(&auditPath, "audit-log", "", "Append an audit trail to this file")

	rootCmd.AddGroup(
		&cobra.Group{ID: "system", Title: "Trunked Systems:"},
		&cobra.Group{ID: "plan", Title: "Channel & Identifier Planning:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	trunkCmd.GroupID = "system"
	rootCmd.AddCommand(trunkCmd)

	for _, cmd := range []*cobra.Command{idenCmd, netidCmd, templatesCmd} {
		cmd.GroupID = "plan"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{settingsCmd, auditCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		if version.Version == "dev" {
			fmt.Println("trunkgen dev build (use 'make build' for version info)")
		} else {
			fmt.Printf("trunkgen %s\n", version.Info())
		}
	},
}

// isSettingsOrHelp checks whether cmd (or any ancestor) is a settings, help, or version command.
func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addOutputFlags registers --json as a local flag.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// logAudit records an event, warning rather than failing when the trail
// cannot be written.
func logAudit(e *audit.Event) {
	if err := audit.Log(e); err != nil {
		util.Warnf("Could not write audit event: %v", err)
	}
}

// Color helpers delegate to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
