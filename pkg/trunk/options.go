// Package trunk builds, publishes, reloads and cross-checks trunked systems:
// one control-channel host plus N voice-channel hosts sharing an FNE, a set of
// protocol identifiers and a channel plan.
package trunk

import (
	"fmt"
	"strings"

	"github.com/trunkgen/trunkgen/pkg/config"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

// Modem types the host runtime accepts.
const (
	ModemUART = "uart"
	ModemNull = "null"
)

// FNEOptions is the upstream network element every instance connects to.
type FNEOptions struct {
	Address  string
	Port     int
	Password string
}

// RESTOptions enables the REST API on every instance. Ports follow the same
// base-plus-ordinal scheme as RPC ports.
type RESTOptions struct {
	BasePort int
	Password string
}

// LookupOptions controls radio/talkgroup id lookups and FNE transfers.
type LookupOptions struct {
	Update                  bool
	Save                    bool
	AllowActivityTransfer   bool
	AllowDiagnosticTransfer bool
	AllowStatusTransfer     bool

	RadioIDFile     string
	RadioIDTime     int
	RadioIDACL      bool
	TalkgroupIDFile string
	TalkgroupIDTime int
	TalkgroupIDACL  bool
}

// DFSIOptions are per-channel DFSI modem timings.
type DFSIOptions struct {
	RTRT        int // round trip response time, ms
	Jitter      int // ms
	CallTimeout int // seconds
	FullDuplex  bool
}

// ChannelSpec describes one channel. When TxMHz is set the channel id and
// number are computed from the band plan and ChannelID/ChannelNo are ignored.
type ChannelSpec struct {
	ChannelID int
	ChannelNo int
	TxMHz     float64
	Band      string // catalog key; empty auto-detects from TxMHz
	DFSI      *DFSIOptions
}

// Options drives Build.
type Options struct {
	Name       string
	BaseDir    string
	Identity   string // defaults to Name
	Protocol   netid.Protocol
	SiteModel  netid.SiteModel
	VoiceCount int

	FNE         FNEOptions
	BasePeerID  int
	BaseRPCPort int
	RPCAddress  string
	RPCPassword string
	REST        *RESTOptions
	ModemType   string
	Lookups     LookupOptions

	IDs netid.Identifiers

	Control ChannelSpec
	Voices  []ChannelSpec // empty: VC i follows the control channel at channel no + i

	// BaseConfig names the document templates start from. Base, when set,
	// is used instead and is never modified.
	BaseConfig string
	Base       *config.Document
}

// DefaultOptions returns a two-voice-channel P25 system with the stock FNE
// endpoint and port bases.
func DefaultOptions() Options {
	return Options{
		Name:        "trunked",
		Protocol:    netid.ProtocolP25,
		SiteModel:   netid.SiteModelSmall,
		VoiceCount:  2,
		FNE:         FNEOptions{Address: "127.0.0.1", Port: 62031, Password: "PASSWORD"},
		BasePeerID:  100000,
		BaseRPCPort: 9890,
		RPCAddress:  "127.0.0.1",
		RPCPassword: "PASSWORD",
		ModemType:   ModemUART,
		Lookups: LookupOptions{
			Update:                true,
			Save:                  true,
			AllowActivityTransfer: true,
			AllowStatusTransfer:   true,
		},
		IDs: netid.Defaults(netid.ProtocolP25),
	}
}

func (o Options) identity() string {
	if o.Identity != "" {
		return o.Identity
	}
	return o.Name
}

func (o Options) validate() error {
	v := &util.ValidationBuilder{}
	v.Add(o.Name != "", "system name is required")
	v.Add(!strings.ContainsAny(o.Name, `/\`), fmt.Sprintf("system name %q must not contain path separators", o.Name))
	v.Add(o.VoiceCount >= 1, fmt.Sprintf("voice channel count must be at least 1, got %d", o.VoiceCount))
	if _, err := netid.ParseProtocol(string(o.Protocol)); err != nil {
		v.AddErr(err)
	}
	v.Add(o.ModemType == ModemUART || o.ModemType == ModemNull,
		fmt.Sprintf("modem type must be %s or %s, got %q", ModemUART, ModemNull, o.ModemType))
	v.Add(o.BasePeerID > 0, fmt.Sprintf("base peer id must be positive, got %d", o.BasePeerID))
	v.Add(o.RPCAddress == "" || util.IsValidHostAddress(o.RPCAddress), fmt.Sprintf("invalid RPC address %q", o.RPCAddress))
	if len(o.Voices) > 0 && len(o.Voices) != o.VoiceCount {
		v.AddErrorf("%d voice channel specs given for %d voice channels", len(o.Voices), o.VoiceCount)
	}
	return v.Build()
}

func (o Options) baseDocument() (*config.Document, error) {
	if o.Base != nil {
		return o.Base, nil
	}
	doc, src, err := config.BaseDocument(o.BaseConfig)
	if err != nil {
		return nil, err
	}
	util.WithSystem(o.Name).Debugf("templates based on %s", src)
	return doc, nil
}

const defaultRPCAddress = "127.0.0.1"

func (o Options) rpcAddress() string {
	if o.RPCAddress != "" {
		return o.RPCAddress
	}
	return defaultRPCAddress
}
