package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trunkgen/trunkgen/pkg/cli"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

var netidCmd = &cobra.Command{
	Use:   "netid",
	Short: "Protocol identifier limits and checks",
	Long: `Show the identifiers each protocol uses and check values against them.

Examples:
  trunkgen netid info --protocol p25
  trunkgen netid info --protocol dmr --site-model tiny
  trunkgen netid check --protocol p25 nac=0x293 sysId=0x001`,
}

var (
	netidProtocol  string
	netidSiteModel string
)

func netidTarget() (netid.Protocol, netid.SiteModel, error) {
	p := userSettings.GetProtocol()
	if netidProtocol != "" {
		var err error
		if p, err = netid.ParseProtocol(netidProtocol); err != nil {
			return "", 0, err
		}
	}
	m, err := netid.ParseSiteModel(netidSiteModel)
	return p, m, err
}

var netidInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "List identifier ranges and defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, m, err := netidTarget()
		if err != nil {
			return err
		}
		params := netid.Info(p, m)
		if jsonOutput {
			return printJSON(params)
		}

		fmt.Printf("%s identifiers\n\n", strings.ToUpper(p.String()))
		t := cli.NewTable("KEY", "RANGE", "DEFAULT", "DESCRIPTION")
		for _, param := range params {
			t.Row(param.Key,
				netid.FormatHexOrDecimal(param.Min, param.Max)+" - "+netid.FormatHexOrDecimal(param.Max, param.Max),
				netid.FormatHexOrDecimal(param.Default, param.Max),
				param.Description)
		}
		t.Flush()
		return nil
	},
}

var netidCheckCmd = &cobra.Command{
	Use:   "check <key=value>...",
	Short: "Check identifier values against protocol limits",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, m, err := netidTarget()
		if err != nil {
			return err
		}

		failed := 0
		for _, arg := range args {
			key, raw, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("expected key=value, got %q", arg)
			}
			v, err := util.ParseInt(raw)
			if err == nil {
				err = netid.ValidateField(p, m, key, v)
			}
			if err != nil {
				failed++
				fmt.Printf("  %s %s: %v\n", cli.Status(false), key, err)
				continue
			}
			fmt.Printf("  %s %s = %s\n", cli.Status(true), key, raw)
		}
		if failed > 0 {
			return errInvalid
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{netidInfoCmd, netidCheckCmd} {
		c.Flags().StringVar(&netidProtocol, "protocol", "", "Protocol: p25, dmr or nxdn (default from settings)")
		c.Flags().StringVar(&netidSiteModel, "site-model", "small", "DMR site model: tiny, small, large or huge")
	}
	addOutputFlags(netidInfoCmd)

	netidCmd.AddCommand(netidInfoCmd, netidCheckCmd)
}
