package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/trunkgen/trunkgen/pkg/audit"
	"github.com/trunkgen/trunkgen/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View audit logs",
	Long: `View the audit trail of generated and modified files.

Every create, update, validate and iden init is logged with:
  - Timestamp
  - User who ran it
  - System affected
  - Operation performed
  - BLAKE2b digests of the files written
  - Success/failure status

The trail is written to --audit-log or the audit_log setting.

Examples:
  trunkgen audit list --system skynet
  trunkgen audit list --last 24h
  trunkgen audit list --user alice --failures`,
}

var (
	auditSystem    string
	auditUser      string
	auditOperation string
	auditLast      string
	auditLimit     int
	auditFailures  bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := audit.Filter{
			System:      auditSystem,
			User:        auditUser,
			Operation:   auditOperation,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}

		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		events, err := audit.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}

		if jsonOutput {
			return printJSON(events)
		}

		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		t := cli.NewTable("TIMESTAMP", "USER", "SYSTEM", "OPERATION", "FILES", "STATUS")
		for _, event := range events {
			status := green("ok")
			if !event.Success {
				status = red("failed")
			}
			t.Row(event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.System,
				event.Operation,
				fmt.Sprintf("%d", len(event.Artifacts)),
				status)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditSystem, "system", "", "Filter by system")
	auditListCmd.Flags().StringVar(&auditUser, "user", "", "Filter by user")
	auditListCmd.Flags().StringVar(&auditOperation, "operation", "", "Filter by operation (e.g. trunk.create)")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Show events from last duration (e.g., 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 100, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed operations")
	addOutputFlags(auditListCmd)

	auditCmd.AddCommand(auditListCmd)
}
