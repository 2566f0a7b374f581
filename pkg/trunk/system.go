package trunk

import (
	"fmt"

	"github.com/trunkgen/trunkgen/pkg/config"
	"github.com/trunkgen/trunkgen/pkg/iden"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

// Role distinguishes the control channel from voice channels.
type Role string

const (
	RoleControl Role = "control"
	RoleVoice   Role = "voice"
)

// Instance is one host configuration in a trunked system.
type Instance struct {
	Role    Role
	Ordinal int // 0 for the control channel, 1..N for voice channels
	Doc     *config.Document
	Channel Channel
}

// Label is the short name used in messages: "CC" or "VC01".
func (in *Instance) Label() string {
	if in.Role == RoleControl {
		return "CC"
	}
	return fmt.Sprintf("VC%02d", in.Ordinal)
}

// ReportKey names the instance in validation reports.
func (in *Instance) ReportKey() string {
	if in.Role == RoleControl {
		return "control_channel"
	}
	return fmt.Sprintf("voice_channel_%d", in.Ordinal)
}

// FileName is the instance's file name within the system directory.
func (in *Instance) FileName(system string) string {
	if in.Role == RoleControl {
		return ControlFileName(system)
	}
	return VoiceFileName(system, in.Ordinal)
}

// ControlFileName returns "{system}-cc.yml".
func ControlFileName(system string) string {
	return system + "-cc.yml"
}

// VoiceFileName returns "{system}-vcNN.yml".
func VoiceFileName(system string, ordinal int) string {
	return fmt.Sprintf("%s-vc%02d.yml", system, ordinal)
}

// System is a control channel and its voice channels.
type System struct {
	Name      string
	BaseDir   string
	Protocol  netid.Protocol
	SiteModel netid.SiteModel
	Control   *Instance
	Voices    []*Instance
	Iden      *iden.Table // nil when no channel was given by frequency
}

// Instances returns the control channel followed by the voice channels.
func (s *System) Instances() []*Instance {
	out := make([]*Instance, 0, 1+len(s.Voices))
	if s.Control != nil {
		out = append(out, s.Control)
	}
	return append(out, s.Voices...)
}

// Build constructs every instance in memory and validates the result. Nothing
// is written; see Publish and Create.
func Build(opts Options) (*System, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := opts.IDs.Validate(opts.Protocol, opts.SiteModel); err != nil {
		return nil, fmt.Errorf("protocol identifiers: %w", err)
	}

	log := util.WithSystem(opts.Name).WithField("protocol", opts.Protocol)

	plan, err := resolveChannels(opts)
	if err != nil {
		return nil, err
	}

	base, err := opts.baseDocument()
	if err != nil {
		return nil, err
	}

	sys := &System{
		Name:      opts.Name,
		BaseDir:   opts.BaseDir,
		Protocol:  opts.Protocol,
		SiteModel: opts.SiteModel,
		Iden:      plan.table,
	}

	if sys.Control, err = buildControl(opts, base, plan); err != nil {
		return nil, fmt.Errorf("building control channel: %w", err)
	}
	log.Debugf("built control channel %d-%d", plan.control.ChannelID, plan.control.ChannelNo)

	for i := 1; i <= opts.VoiceCount; i++ {
		vc, err := buildVoice(opts, base, plan, i)
		if err != nil {
			return nil, fmt.Errorf("building voice channel %d: %w", i, err)
		}
		sys.Voices = append(sys.Voices, vc)
		util.WithInstance(fmt.Sprintf("%s-VC%02d", opts.identity(), i)).
			Debugf("built voice channel at %d-%d", vc.Channel.ChannelID, vc.Channel.ChannelNo)
	}

	if report := sys.Validate(); !report.Valid() {
		return nil, report.Err()
	}
	log.Infof("built trunked system with %d voice channels", len(sys.Voices))
	return sys, nil
}

// docWriter collects the first Set failure so construction reads top-down.
type docWriter struct {
	doc *config.Document
	err error
}

func (w *docWriter) set(path string, value any) {
	if w.err != nil {
		return
	}
	if err := w.doc.Set(path, value); err != nil {
		w.err = fmt.Errorf("setting %s: %w", path, err)
	}
}

func controlTemplate(p netid.Protocol) string {
	switch p {
	case netid.ProtocolDMR:
		return config.TemplateControlDMR
	case netid.ProtocolNXDN:
		return config.TemplateControlNXDN
	}
	return config.TemplateControlP25
}

// rosterEntry is one voice channel as the control channel addresses it.
type rosterEntry struct {
	ChannelID   int    `yaml:"channelId"`
	ChannelNo   int    `yaml:"channelNo"`
	RPCAddress  string `yaml:"rpcAddress"`
	RPCPort     int    `yaml:"rpcPort"`
	RPCPassword string `yaml:"rpcPassword"`
}

func buildControl(opts Options, base *config.Document, plan *channelPlan) (*Instance, error) {
	doc, err := config.Template(controlTemplate(opts.Protocol), base)
	if err != nil {
		return nil, err
	}

	w := &docWriter{doc: doc}
	w.set("system.identity", opts.identity()+"-CC")
	stampShared(w, opts, 0)
	stampChannel(w, plan.control, opts.Control.DFSI)

	roster := make([]rosterEntry, 0, len(plan.voices))
	for i, vc := range plan.voices {
		roster = append(roster, rosterEntry{
			ChannelID:   vc.ChannelID,
			ChannelNo:   vc.ChannelNo,
			RPCAddress:  opts.rpcAddress(),
			RPCPort:     opts.BaseRPCPort + i + 1,
			RPCPassword: opts.RPCPassword,
		})
	}
	w.set("system.config.voiceChNo", roster)

	if w.err != nil {
		return nil, w.err
	}
	return &Instance{Role: RoleControl, Doc: doc, Channel: plan.control}, nil
}

func buildVoice(opts Options, base *config.Document, plan *channelPlan, ordinal int) (*Instance, error) {
	doc, err := config.Template(config.TemplateVoice, base)
	if err != nil {
		return nil, err
	}
	ch := plan.voices[ordinal-1]

	var dfsi *DFSIOptions
	if len(opts.Voices) >= ordinal {
		dfsi = opts.Voices[ordinal-1].DFSI
	}

	w := &docWriter{doc: doc}
	w.set("system.identity", fmt.Sprintf("%s-VC%02d", opts.identity(), ordinal))
	stampShared(w, opts, ordinal)
	stampChannel(w, ch, dfsi)

	for _, p := range netid.Protocols() {
		if w.err == nil {
			if err := config.SetProtocolFlags(doc, string(p), p == opts.Protocol, false, false); err != nil {
				w.err = err
			}
		}
	}

	w.set("system.config.controlCh.rpcAddress", opts.rpcAddress())
	w.set("system.config.controlCh.rpcPort", opts.BaseRPCPort)
	w.set("system.config.controlCh.rpcPassword", opts.RPCPassword)
	w.set("system.config.controlCh.notifyEnable", true)

	if w.err != nil {
		return nil, w.err
	}
	return &Instance{Role: RoleVoice, Ordinal: ordinal, Doc: doc, Channel: ch}, nil
}

// stampShared writes everything derived from the options and the instance's
// offset from the bases: endpoints, lookups, modem type and identifiers.
func stampShared(w *docWriter, opts Options, offset int) {
	w.set("network.id", opts.BasePeerID+offset)
	w.set("network.address", opts.FNE.Address)
	w.set("network.port", opts.FNE.Port)
	w.set("network.password", opts.FNE.Password)
	w.set("network.rpcPort", opts.BaseRPCPort+offset)
	w.set("network.rpcPassword", opts.RPCPassword)

	if opts.REST != nil {
		w.set("network.restEnable", true)
		w.set("network.restPort", opts.REST.BasePort+offset)
		w.set("network.restPassword", opts.REST.Password)
		if !w.doc.Has("network.restAddress") {
			w.set("network.restAddress", "0.0.0.0")
		}
	} else {
		w.set("network.restEnable", false)
	}

	lk := opts.Lookups
	w.set("network.updateLookups", lk.Update)
	w.set("network.saveLookups", lk.Save)
	w.set("network.allowActivityTransfer", lk.AllowActivityTransfer)
	w.set("network.allowDiagnosticTransfer", lk.AllowDiagnosticTransfer)
	w.set("network.allowStatusTransfer", lk.AllowStatusTransfer)

	// lookups pushed from the FNE replace periodic file reloads
	if lk.Update {
		w.set("system.radio_id.time", 0)
		w.set("system.talkgroup_id.time", 0)
	} else {
		if lk.RadioIDTime > 0 {
			w.set("system.radio_id.time", lk.RadioIDTime)
		}
		if lk.TalkgroupIDTime > 0 {
			w.set("system.talkgroup_id.time", lk.TalkgroupIDTime)
		}
	}
	if lk.RadioIDFile != "" {
		w.set("system.radio_id.file", lk.RadioIDFile)
	}
	w.set("system.radio_id.acl", lk.RadioIDACL)
	if lk.TalkgroupIDFile != "" {
		w.set("system.talkgroup_id.file", lk.TalkgroupIDFile)
	}
	w.set("system.talkgroup_id.acl", lk.TalkgroupIDACL)

	w.set("system.modem.protocol.type", opts.ModemType)

	for _, f := range opts.IDs.Fields() {
		w.set("system.config."+f.Key, f.Value)
	}
	if opts.Protocol == netid.ProtocolDMR {
		w.set(siteModelPath, opts.SiteModel.String())
	}
}

const siteModelPath = "system.config.siteModel"

func stampChannel(w *docWriter, ch Channel, dfsi *DFSIOptions) {
	w.set("system.config.channelId", ch.ChannelID)
	w.set("system.config.channelNo", ch.ChannelNo)
	if ch.HasFrequency() {
		w.set("system.config.txFrequency", ch.TxHz)
		w.set("system.config.rxFrequency", ch.RxHz)
	}
	if dfsi != nil {
		w.set("system.modem.dfsiRtrt", dfsi.RTRT)
		w.set("system.modem.dfsiJitter", dfsi.Jitter)
		w.set("system.modem.dfsiCallTimeout", dfsi.CallTimeout)
		w.set("system.modem.dfsiFullDuplex", dfsi.FullDuplex)
	}
}
