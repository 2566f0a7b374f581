package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/trunkgen/trunkgen/pkg/audit"
	"github.com/trunkgen/trunkgen/pkg/cli"
	"github.com/trunkgen/trunkgen/pkg/iden"
	"github.com/trunkgen/trunkgen/pkg/util"
)

var idenCmd = &cobra.Command{
	Use:   "iden",
	Short: "Channel identity planning",
	Long: `Work with band presets, channel assignments and iden_table.dat files.

Examples:
  trunkgen iden bands
  trunkgen iden calc 851.0125
  trunkgen iden calc 146.0125 --band vhf --channel-id 3
  trunkgen iden init --out /opt/dvm/iden_table.dat --bands 800mhz,900mhz
  trunkgen iden show /opt/dvm/iden_table.dat`,
}

var (
	calcBand      string
	calcChannelID int
	calcTable     string
)

var idenCalcCmd = &cobra.Command{
	Use:   "calc <tx-mhz>",
	Short: "Compute the channel assignment for a transmit frequency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mhz, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid frequency %q", args[0])
		}

		var a iden.Assignment
		switch {
		case calcTable != "":
			t, _, err := iden.LoadTable(calcTable)
			if err != nil {
				return err
			}
			if a, err = iden.AssignFromTable(t, iden.MHzToHz(mhz)); err != nil {
				return err
			}
		case calcBand != "" && !cmd.Flags().Changed("channel-id"):
			id, err := iden.PresetChannelID(calcBand)
			if err != nil {
				return err
			}
			if a, err = iden.CalculateChannelAssignment(mhz, calcBand, id); err != nil {
				return err
			}
		default:
			if a, err = iden.CalculateChannelAssignment(mhz, calcBand, calcChannelID); err != nil {
				return err
			}
		}

		if jsonOutput {
			return printJSON(a)
		}
		if a.Preset != "" {
			fmt.Printf("Band:        %s\n", a.Preset)
		}
		fmt.Printf("Channel ID:  %d\n", a.ChannelID)
		fmt.Printf("Channel No:  %d (0x%03X)\n", a.ChannelNo, a.ChannelNo)
		fmt.Printf("TX:          %s MHz\n", iden.FormatMHz(a.TxHz))
		fmt.Printf("RX:          %s MHz\n", iden.FormatMHz(a.RxHz))
		return nil
	},
}

var idenBandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "List the built-in band presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		presets := iden.Presets()
		if jsonOutput {
			return printJSON(presets)
		}

		t := cli.NewTable("KEY", "SLOT", "NAME", "BASE MHZ", "SPACING", "OFFSET", "TX RANGE")
		for _, p := range presets {
			slot, _ := iden.PresetChannelID(p.Key)
			t.Row(p.Key, strconv.Itoa(slot), p.Name,
				iden.FormatMHz(p.BaseFreqHz),
				fmt.Sprintf("%g kHz", p.SpacingKHz),
				fmt.Sprintf("%+g MHz", p.InputOffsetMHz),
				fmt.Sprintf("%g-%g", p.TxRange.Min, p.TxRange.Max))
		}
		t.Flush()
		return nil
	},
}

var (
	initOut   string
	initBands string
)

var idenInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an identity table from band presets",
	Long: `Write iden_table.dat holding the given band presets at their
conventional slots (every preset when --bands is omitted). An existing file
is kept as .bak.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		t := iden.DefaultTable()
		if initBands != "" {
			t = iden.NewTable()
			for _, key := range util.SplitCommaSeparated(initBands) {
				id, err := iden.PresetChannelID(key)
				if err != nil {
					return err
				}
				e, err := iden.NewEntryFromPreset(id, key)
				if err != nil {
					return err
				}
				if err := t.Add(e); err != nil {
					return err
				}
			}
		}

		event := audit.NewEvent(currentUser, "", audit.OpIdenSave).WithKeyValue("path", initOut)
		if err := t.Save(initOut); err != nil {
			logAudit(event.WithError(err).WithDuration(time.Since(start)))
			return err
		}
		logAudit(event.WithArtifacts([]audit.Artifact{audit.NewArtifact(initOut, t.Bytes())}).
			WithSuccess().WithDuration(time.Since(start)))

		fmt.Printf("Wrote %d identity entries to %s\n", t.Len(), initOut)
		return nil
	},
}

var idenShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show the entries of an identity table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, warnings, err := iden.LoadTable(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(t.Entries())
		}

		tbl := cli.NewTable("ID", "BASE MHZ", "SPACING", "OFFSET", "BANDWIDTH")
		for _, e := range t.Entries() {
			tbl.Row(strconv.Itoa(e.ChannelID), iden.FormatMHz(e.BaseFreqHz),
				fmt.Sprintf("%.2f kHz", e.SpacingKHz),
				fmt.Sprintf("%+.5f MHz", e.InputOffsetMHz),
				fmt.Sprintf("%.1f kHz", e.BandwidthKHz))
		}
		tbl.Flush()
		for _, w := range warnings {
			fmt.Println(yellow("warning: " + w.String()))
		}
		return nil
	},
}

func init() {
	idenCalcCmd.Flags().StringVar(&calcBand, "band", "", "Band preset (default: detect from frequency)")
	idenCalcCmd.Flags().IntVar(&calcChannelID, "channel-id", 0, "Identity slot (default: the band's conventional slot)")
	idenCalcCmd.Flags().StringVar(&calcTable, "table", "", "Resolve against an existing iden_table.dat")
	idenCalcCmd.MarkFlagsMutuallyExclusive("table", "band")
	addOutputFlags(idenCalcCmd)

	addOutputFlags(idenBandsCmd)

	idenInitCmd.Flags().StringVarP(&initOut, "out", "o", iden.FileName, "Output file")
	idenInitCmd.Flags().StringVar(&initBands, "bands", "", "Comma separated band presets (default: all)")

	addOutputFlags(idenShowCmd)

	idenCmd.AddCommand(idenCalcCmd, idenBandsCmd, idenInitCmd, idenShowCmd)
}
