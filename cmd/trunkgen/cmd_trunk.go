package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/trunkgen/trunkgen/pkg/audit"
	"github.com/trunkgen/trunkgen/pkg/cli"
	"github.com/trunkgen/trunkgen/pkg/iden"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/trunk"
	"github.com/trunkgen/trunkgen/pkg/util"
)

var trunkCmd = &cobra.Command{
	Use:   "trunk",
	Short: "Create, validate and maintain trunked systems",
	Long: `Operate on a whole trunked system: {name}-cc.yml plus {name}-vcNN.yml
(and iden_table.dat when channels are planned by frequency) in one directory.

Examples:
  trunkgen trunk create --name skynet --base-dir /opt/dvm --vc-count 3
  trunkgen trunk create --plan metro.hcl --cc-tx-freq 851.0125 --cc-band 800mhz
  trunkgen trunk validate --name skynet --base-dir /opt/dvm
  trunkgen trunk update --name skynet --base-dir /opt/dvm network.address 10.0.0.5
  trunkgen trunk show --name skynet --base-dir /opt/dvm --json`,
}

var (
	systemName string
	baseDir    string
)

// addSystemFlags registers --name and --base-dir on cmd.
func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&systemName, "name", "", "System name (default from settings)")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Directory holding the system files (default from settings)")
}

// resolveSystem applies settings defaults to --name and --base-dir.
func resolveSystem() (string, string, error) {
	name, dir := systemName, baseDir
	if name == "" {
		name = userSettings.System
	}
	if dir == "" {
		dir = userSettings.GetBaseDir()
	}
	if name == "" {
		return "", "", fmt.Errorf("system name required: use --name or 'trunkgen settings set system <name>'")
	}
	return name, dir, nil
}

// ============================================================================
// trunk create
// ============================================================================

// createFlags holds the trunk create flag values. Only flags the user set
// override the plan file.
var createFlags struct {
	plan, identity, protocol, siteModel, baseConfig string
	vcCount, basePeerID, baseRPCPort                int
	rpcAddress, rpcPassword, modemType              string

	fneAddress, fnePassword string
	fnePort                 int

	restEnable   bool
	restBasePort int
	restPassword string

	ccChannelID, ccChannelNo int
	ccTxMHz                  float64
	ccBand                   string
	vcTxMHz, vcBands         string
	vcChannelIDs, vcNos      string

	ids map[string]*string
}

// idFlag binds an identifier flag to a field key. A non-empty protocol
// restricts the flag to systems of that protocol.
type idFlag struct {
	name, key, usage string
	protocol         netid.Protocol
}

var idFlags = []idFlag{
	{"nac", netid.KeyNAC, "P25 NAC (hex allowed, e.g. 0x293)", netid.ProtocolP25},
	{"p25-net-id", netid.KeyNetID, "P25 WACN", netid.ProtocolP25},
	{"p25-sys-id", netid.KeySysID, "P25 System ID", netid.ProtocolP25},
	{"p25-rfss-id", netid.KeyRFSSID, "P25 RFSS ID", netid.ProtocolP25},
	{"p25-site-id", netid.KeySiteID, "P25 Site ID", netid.ProtocolP25},
	{"color-code", netid.KeyColorCode, "DMR Color Code", netid.ProtocolDMR},
	{"dmr-net-id", netid.KeyDMRNetID, "DMR Network ID", netid.ProtocolDMR},
	{"dmr-site-id", netid.KeySiteID, "DMR Site ID", netid.ProtocolDMR},
	{"ran", netid.KeyRAN, "NXDN RAN", netid.ProtocolNXDN},
	{"nxdn-location-id", netid.KeySysID, "NXDN Location (System) ID", netid.ProtocolNXDN},
	{"site-id", netid.KeySiteID, "Site ID for any protocol", ""},
}

var trunkCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a trunked system",
	Long: `Create a control channel and its voice channels.

Settings come from defaults, then --plan (HCL) and TRUNKGEN_* environment
variables, then any flag given on the command line. Everything is validated
in memory before a single file is written; existing files are kept as .bak.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		opts, err := createOptions(cmd.Flags())
		if err != nil {
			return err
		}

		sys, result, err := trunk.Create(opts)
		event := audit.NewEvent(currentUser, opts.Name, audit.OpTrunkCreate).WithDuration(time.Since(start))
		if result != nil {
			if artifacts, derr := audit.DigestFiles(result.Written); derr == nil {
				event.WithArtifacts(artifacts)
			}
		}
		if err != nil {
			logAudit(event.WithError(err))
			if result != nil {
				printPublishResult(result)
			}
			return err
		}
		logAudit(event.WithSuccess())

		fmt.Printf("Created trunked system %s in %s\n\n", bold(sys.Name), sys.BaseDir)
		printSummary(sys)
		fmt.Println()
		printPublishResult(result)
		return nil
	},
}

// createOptions layers flags the user set over the plan and environment.
func createOptions(flags *pflag.FlagSet) (trunk.Options, error) {
	f := &createFlags
	opts, err := trunk.LoadOptions(f.plan)
	if err != nil {
		return opts, err
	}

	if opts.BaseDir == "" {
		opts.BaseDir = userSettings.GetBaseDir()
	}
	if !flags.Changed("protocol") && f.plan == "" && userSettings.Protocol != "" {
		opts.Protocol = userSettings.GetProtocol()
		opts.IDs = netid.Defaults(opts.Protocol)
	}
	if opts.BaseConfig == "" {
		opts.BaseConfig = userSettings.BaseConfig
	}

	if systemName != "" {
		opts.Name = systemName
	} else if f.plan == "" && userSettings.System != "" {
		opts.Name = userSettings.System
	}
	if baseDir != "" {
		opts.BaseDir = baseDir
	}

	if flags.Changed("protocol") {
		p, err := netid.ParseProtocol(f.protocol)
		if err != nil {
			return opts, err
		}
		if p != opts.Protocol {
			opts.Protocol = p
			opts.IDs = netid.Defaults(p)
		}
	}
	if flags.Changed("site-model") {
		m, err := netid.ParseSiteModel(f.siteModel)
		if err != nil {
			return opts, err
		}
		opts.SiteModel = m
	}

	setString(flags, "identity", f.identity, &opts.Identity)
	setString(flags, "base-config", f.baseConfig, &opts.BaseConfig)
	setString(flags, "rpc-address", f.rpcAddress, &opts.RPCAddress)
	setString(flags, "rpc-password", f.rpcPassword, &opts.RPCPassword)
	setString(flags, "modem-type", f.modemType, &opts.ModemType)
	setInt(flags, "vc-count", f.vcCount, &opts.VoiceCount)
	setInt(flags, "base-peer-id", f.basePeerID, &opts.BasePeerID)
	setInt(flags, "base-rpc-port", f.baseRPCPort, &opts.BaseRPCPort)
	setString(flags, "fne-address", f.fneAddress, &opts.FNE.Address)
	setInt(flags, "fne-port", f.fnePort, &opts.FNE.Port)
	setString(flags, "fne-password", f.fnePassword, &opts.FNE.Password)

	if flags.Changed("rest-enable") {
		if f.restEnable {
			opts.REST = &trunk.RESTOptions{BasePort: f.restBasePort, Password: f.restPassword}
		} else {
			opts.REST = nil
		}
	} else if opts.REST != nil {
		setInt(flags, "base-rest-port", f.restBasePort, &opts.REST.BasePort)
		setString(flags, "rest-password", f.restPassword, &opts.REST.Password)
	}

	for _, idf := range idFlags {
		if !flags.Changed(idf.name) {
			continue
		}
		if idf.protocol != "" && idf.protocol != opts.Protocol {
			return opts, fmt.Errorf("--%s applies to %s systems, this one is %s", idf.name, idf.protocol, opts.Protocol)
		}
		v, err := util.ParseInt(*f.ids[idf.name])
		if err != nil {
			return opts, fmt.Errorf("--%s: invalid number %q", idf.name, *f.ids[idf.name])
		}
		if err := opts.IDs.Set(idf.key, v); err != nil {
			return opts, err
		}
	}

	setInt(flags, "cc-channel-id", f.ccChannelID, &opts.Control.ChannelID)
	setInt(flags, "cc-channel-no", f.ccChannelNo, &opts.Control.ChannelNo)
	if flags.Changed("cc-tx-freq") {
		opts.Control.TxMHz = f.ccTxMHz
	}
	setString(flags, "cc-band", f.ccBand, &opts.Control.Band)

	if flags.Changed("vc-tx-freqs") || flags.Changed("vc-channel-nos") {
		freqs, err := util.ParseFloatList(f.vcTxMHz)
		if err != nil {
			return opts, fmt.Errorf("--vc-tx-freqs: %w", err)
		}
		ids, err := parseIntList(f.vcChannelIDs)
		if err != nil {
			return opts, fmt.Errorf("--vc-channel-ids: %w", err)
		}
		nos, err := parseIntList(f.vcNos)
		if err != nil {
			return opts, fmt.Errorf("--vc-channel-nos: %w", err)
		}
		voices, err := trunk.VoiceSpecs(freqs, util.SplitCommaSeparated(f.vcBands), ids, nos, opts.Control.ChannelID)
		if err != nil {
			return opts, err
		}
		opts.Voices = voices
		if !flags.Changed("vc-count") {
			opts.VoiceCount = len(voices)
		}
	}
	return opts, nil
}

func setString(flags *pflag.FlagSet, name, value string, dst *string) {
	if flags.Changed(name) {
		*dst = value
	}
}

func setInt(flags *pflag.FlagSet, name string, value int, dst *int) {
	if flags.Changed(name) {
		*dst = value
	}
}

// parseIntList parses "1,2,0x10" or a range such as "1-4".
func parseIntList(s string) ([]int, error) {
	var out []int
	for _, item := range util.SplitCommaSeparated(s) {
		if v, err := util.ParseInt(item); err == nil {
			out = append(out, v)
			continue
		}
		expanded, err := util.ExpandRange(item)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", item)
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func printPublishResult(r *trunk.PublishResult) {
	for _, w := range r.Written {
		fmt.Printf("  %s %s\n", green("wrote"), w)
	}
	for _, b := range r.Backups {
		fmt.Printf("  %s %s\n", cli.Dim("backup"), b)
	}
	for _, f := range r.Failed {
		fmt.Printf("  %s %s: %v\n", red("FAILED"), f.Path, f.Err)
	}
}

func printSummary(sys *trunk.System) {
	rows := sys.Summary()
	t := cli.NewTable("ROLE", "IDENTITY", "PEER ID", "RPC PORT", "CHANNEL", "TX MHZ", "RX MHZ")
	peers := make([]int, 0, len(rows))
	for _, row := range rows {
		peers = append(peers, row.PeerID)
		tx, rx := "-", "-"
		if row.TxHz > 0 {
			tx, rx = iden.FormatMHz(row.TxHz), iden.FormatMHz(row.RxHz)
		}
		t.Row(row.Role, row.Identity, strconv.Itoa(row.PeerID), strconv.Itoa(row.RPCPort),
			fmt.Sprintf("%d-%d (0x%03X)", row.ChannelID, row.ChannelNo, row.ChannelNo), tx, rx)
	}
	t.Flush()

	fmt.Println()
	if sys.Control != nil {
		addr, _ := sys.Control.Doc.GetString("network.address")
		port, _ := sys.Control.Doc.GetInt("network.port")
		fmt.Printf("FNE:       %s\n", util.JoinHostPort(addr, port))
	}
	fmt.Printf("Peer IDs:  %s\n", util.CompactRange(peers))
}

// ============================================================================
// trunk validate / update / show
// ============================================================================

var trunkValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a trunked system",
	Long: `Check every instance's identifiers and format, compare every voice
channel against the control channel and look for channel collisions.
Exits 1 when anything is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		sys, err := loadSystem()
		if err != nil {
			return err
		}

		report := sys.Validate()
		event := audit.NewEvent(currentUser, sys.Name, audit.OpTrunkValidate).
			WithProblems(report.Messages()).
			WithDuration(time.Since(start))
		if report.Valid() {
			logAudit(event.WithSuccess())
		} else {
			logAudit(event.WithError(report.Err()))
		}

		if jsonOutput {
			if err := printJSON(report); err != nil {
				return err
			}
		} else {
			printReport(sys, report)
		}
		if !report.Valid() {
			return errInvalid
		}
		return nil
	},
}

func printReport(sys *trunk.System, r *trunk.Report) {
	fmt.Printf("Trunked system %s (%s, %d voice channels)\n\n", bold(sys.Name), sys.Protocol, len(sys.Voices))

	failed := map[string][]string{}
	for _, ie := range r.Instances {
		failed[ie.Instance] = ie.Errors
	}
	for _, in := range sys.Instances() {
		errs := failed[in.ReportKey()]
		fmt.Printf("  %s %s\n", cli.Status(len(errs) == 0), cli.DotPad(in.FileName(sys.Name), 24))
		for _, e := range errs {
			fmt.Printf("      %s\n", red(e))
		}
	}

	if len(r.Mismatches) > 0 {
		fmt.Println("\n" + bold("Consistency:"))
		for _, m := range r.Mismatches {
			fmt.Printf("  %s %s (got %v)\n", red("✗"), m, m.Actual)
		}
	}
	if len(r.Collisions) > 0 {
		fmt.Println("\n" + bold("Channel collisions:"))
		for _, c := range r.Collisions {
			fmt.Printf("  %s %s\n", red("✗"), c)
		}
	}

	fmt.Println()
	if r.Valid() {
		fmt.Println(green("System is valid."))
	} else {
		fmt.Println(red(fmt.Sprintf("%d problems found.", len(r.Messages()))))
	}
}

var trunkUpdateCmd = &cobra.Command{
	Use:   "update <key> <value>",
	Short: "Set a value in every instance of a system",
	Long: `Set a dotted key in the control channel and every voice channel, then
republish them (existing files are kept as .bak).

Values "true"/"false" become booleans and plain digits become integers.

Examples:
  trunkgen trunk update --name skynet system.config.nac 700
  trunkgen trunk update --name skynet network.password NEWSECRET`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		key, value := args[0], args[1]
		sys, err := loadSystem()
		if err != nil {
			return err
		}

		event := audit.NewEvent(currentUser, sys.Name, audit.OpTrunkUpdate).WithKeyValue(key, value)
		if err := sys.UpdateAll(key, trunk.ParseValue(value)); err != nil {
			logAudit(event.WithError(err).WithDuration(time.Since(start)))
			return err
		}
		result, err := sys.SaveAll()
		if result != nil {
			if artifacts, derr := audit.DigestFiles(result.Written); derr == nil {
				event.WithArtifacts(artifacts)
			}
			printPublishResult(result)
		}
		event.WithDuration(time.Since(start))
		if err != nil {
			logAudit(event.WithError(err))
			return err
		}
		logAudit(event.WithSuccess())

		fmt.Printf("\nUpdated %s in %d instances.\n", key, len(sys.Instances()))
		if report := sys.Validate(); !report.Valid() {
			fmt.Println(yellow("Warning: the system no longer validates:"))
			for _, m := range report.Messages() {
				fmt.Printf("  %s\n", m)
			}
		}
		return nil
	},
}

var trunkShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the instances of a system",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sys, err := loadSystem()
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(sys.Summary())
		}

		fmt.Printf("Trunked system %s (%s) in %s\n\n", bold(sys.Name), sys.Protocol, sys.BaseDir)
		printSummary(sys)
		if sys.Iden != nil {
			fmt.Printf("\nIdentity plan: %s (%d entries)\n", filepath.Join(sys.BaseDir, iden.FileName), sys.Iden.Len())
		}
		return nil
	},
}

func loadSystem() (*trunk.System, error) {
	name, dir, err := resolveSystem()
	if err != nil {
		return nil, err
	}
	return trunk.Load(dir, name)
}

func init() {
	f := trunkCreateCmd.Flags()
	addSystemFlags(trunkCreateCmd)
	f.StringVar(&createFlags.plan, "plan", "", "HCL plan file")
	f.StringVar(&createFlags.identity, "identity", "", "Identity prefix (default: system name)")
	f.StringVar(&createFlags.protocol, "protocol", "p25", "Protocol: p25, dmr or nxdn")
	f.StringVar(&createFlags.siteModel, "site-model", "small", "DMR site model: tiny, small, large or huge")
	f.StringVar(&createFlags.baseConfig, "base-config", "", "Base host configuration (default: search for config.example.yml)")
	f.IntVar(&createFlags.vcCount, "vc-count", 2, "Number of voice channels")
	f.IntVar(&createFlags.basePeerID, "base-peer-id", 100000, "Peer ID of the control channel; voice channels follow")
	f.IntVar(&createFlags.baseRPCPort, "base-rpc-port", 9890, "RPC port of the control channel; voice channels follow")
	f.StringVar(&createFlags.rpcAddress, "rpc-address", "127.0.0.1", "RPC address the instances reach each other on")
	f.StringVar(&createFlags.rpcPassword, "rpc-password", "PASSWORD", "RPC password")
	f.StringVar(&createFlags.modemType, "modem-type", trunk.ModemUART, "Modem type: uart or null")
	f.StringVar(&createFlags.fneAddress, "fne-address", "127.0.0.1", "FNE address")
	f.IntVar(&createFlags.fnePort, "fne-port", 62031, "FNE port")
	f.StringVar(&createFlags.fnePassword, "fne-password", "PASSWORD", "FNE password")
	f.BoolVar(&createFlags.restEnable, "rest-enable", false, "Enable the REST API on every instance")
	f.IntVar(&createFlags.restBasePort, "base-rest-port", 8080, "REST port of the control channel; voice channels follow")
	f.StringVar(&createFlags.restPassword, "rest-password", "", "REST API password")
	f.IntVar(&createFlags.ccChannelID, "cc-channel-id", 0, "Control channel identity id (0-15)")
	f.IntVar(&createFlags.ccChannelNo, "cc-channel-no", 0, "Control channel number")
	f.Float64Var(&createFlags.ccTxMHz, "cc-tx-freq", 0, "Control channel TX frequency in MHz")
	f.StringVar(&createFlags.ccBand, "cc-band", "", "Band preset for --cc-tx-freq (default: detect)")
	f.StringVar(&createFlags.vcTxMHz, "vc-tx-freqs", "", "Voice channel TX frequencies in MHz, comma separated")
	f.StringVar(&createFlags.vcBands, "vc-bands", "", "Band presets for --vc-tx-freqs, comma separated")
	f.StringVar(&createFlags.vcChannelIDs, "vc-channel-ids", "", "Voice channel identity ids, comma separated")
	f.StringVar(&createFlags.vcNos, "vc-channel-nos", "", "Voice channel numbers, comma separated or a range (1-4)")

	createFlags.ids = map[string]*string{}
	for _, idf := range idFlags {
		createFlags.ids[idf.name] = f.String(idf.name, "", idf.usage)
	}

	addSystemFlags(trunkValidateCmd)
	addOutputFlags(trunkValidateCmd)
	addSystemFlags(trunkUpdateCmd)
	addSystemFlags(trunkShowCmd)
	addOutputFlags(trunkShowCmd)

	trunkCmd.AddCommand(trunkCreateCmd, trunkValidateCmd, trunkUpdateCmd, trunkShowCmd)
}
