package trunk

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

// EnvPrefix marks environment variables that override plan values. A double
// underscore separates sections: TRUNKGEN_FNE__ADDRESS sets fne.address.
const EnvPrefix = "TRUNKGEN_"

// LoadOptions reads a system plan written in HCL, applies TRUNKGEN_*
// environment overrides and returns the resulting options on top of
// DefaultOptions. An empty path reads the environment only.
//
//	name     = "skynet"
//	protocol = "p25"
//	vc_count = 2
//	fne { address = "10.0.0.1" }
//	ids { nac = "0x293" }
//	control { tx_mhz = 851.0125, band = "800mhz" }
//	voice { tx_mhz = [851.5, 852.0] }
func LoadOptions(path string) (Options, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), hcl.Parser(true)); err != nil {
			return Options{}, fmt.Errorf("loading plan %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{Prefix: EnvPrefix, TransformFunc: envKey}), nil); err != nil {
		return Options{}, fmt.Errorf("loading plan environment: %w", err)
	}

	opts, err := optionsFromPlan(k)
	if err != nil {
		if path != "" {
			return Options{}, fmt.Errorf("plan %s: %w", path, err)
		}
		return Options{}, err
	}
	return opts, nil
}

func envKey(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	return strings.ReplaceAll(key, "__", "."), v
}

// planReader copies present keys into options, collecting parse failures.
type planReader struct {
	k    *koanf.Koanf
	errs util.ValidationBuilder
}

func (r *planReader) str(key string, dst *string) {
	if r.k.Exists(key) {
		*dst = r.k.String(key)
	}
}

func (r *planReader) integer(key string, dst *int) bool {
	if !r.k.Exists(key) {
		return false
	}
	v, err := util.ParseInt(r.k.String(key))
	if err != nil {
		r.errs.AddErrorf("%s: invalid integer %q", key, r.k.String(key))
		return false
	}
	*dst = v
	return true
}

func (r *planReader) boolean(key string, dst *bool) bool {
	if !r.k.Exists(key) {
		return false
	}
	v, err := strconv.ParseBool(r.k.String(key))
	if err != nil {
		r.errs.AddErrorf("%s: invalid boolean %q", key, r.k.String(key))
		return false
	}
	*dst = v
	return true
}

func (r *planReader) float(key string, dst *float64) {
	if !r.k.Exists(key) {
		return
	}
	v, err := strconv.ParseFloat(r.k.String(key), 64)
	if err != nil {
		r.errs.AddErrorf("%s: invalid number %q", key, r.k.String(key))
		return
	}
	*dst = v
}

// list accepts a native list or a comma-separated string.
func (r *planReader) list(key string) []string {
	switch v := r.k.Get(key).(type) {
	case nil:
		return nil
	case string:
		return util.SplitCommaSeparated(v)
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = fmt.Sprint(item)
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

func (r *planReader) ints(key string) []int {
	var out []int
	for _, s := range r.list(key) {
		v, err := util.ParseInt(s)
		if err != nil {
			r.errs.AddErrorf("%s: invalid integer %q", key, s)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (r *planReader) floats(key string) []float64 {
	var out []float64
	for _, s := range r.list(key) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			r.errs.AddErrorf("%s: invalid number %q", key, s)
			continue
		}
		out = append(out, v)
	}
	return out
}

var planIDKeys = map[string]string{
	"ids.nac":        netid.KeyNAC,
	"ids.net_id":     netid.KeyNetID,
	"ids.sys_id":     netid.KeySysID,
	"ids.rfss_id":    netid.KeyRFSSID,
	"ids.site_id":    netid.KeySiteID,
	"ids.color_code": netid.KeyColorCode,
	"ids.dmr_net_id": netid.KeyDMRNetID,
	"ids.ran":        netid.KeyRAN,
}

func optionsFromPlan(k *koanf.Koanf) (Options, error) {
	r := &planReader{k: k}
	opts := DefaultOptions()

	r.str("name", &opts.Name)
	r.str("base_dir", &opts.BaseDir)
	r.str("identity", &opts.Identity)
	r.str("base_config", &opts.BaseConfig)
	r.str("rpc_address", &opts.RPCAddress)
	r.str("rpc_password", &opts.RPCPassword)
	r.str("modem_type", &opts.ModemType)
	r.integer("vc_count", &opts.VoiceCount)
	r.integer("base_peer_id", &opts.BasePeerID)
	r.integer("base_rpc_port", &opts.BaseRPCPort)

	if k.Exists("protocol") {
		p, err := netid.ParseProtocol(k.String("protocol"))
		if err != nil {
			r.errs.AddErr(err)
		} else {
			opts.Protocol = p
			opts.IDs = netid.Defaults(p)
		}
	}
	if k.Exists("site_model") {
		m, err := netid.ParseSiteModel(k.String("site_model"))
		if err != nil {
			r.errs.AddErr(err)
		} else {
			opts.SiteModel = m
		}
	}

	r.str("fne.address", &opts.FNE.Address)
	r.integer("fne.port", &opts.FNE.Port)
	r.str("fne.password", &opts.FNE.Password)

	var restEnable bool
	if r.boolean("rest.enable", &restEnable) && restEnable {
		opts.REST = &RESTOptions{BasePort: 8080}
		r.integer("rest.base_port", &opts.REST.BasePort)
		r.str("rest.password", &opts.REST.Password)
	}

	lk := &opts.Lookups
	r.boolean("lookups.update", &lk.Update)
	r.boolean("lookups.save", &lk.Save)
	r.boolean("lookups.allow_activity_transfer", &lk.AllowActivityTransfer)
	r.boolean("lookups.allow_diagnostic_transfer", &lk.AllowDiagnosticTransfer)
	r.boolean("lookups.allow_status_transfer", &lk.AllowStatusTransfer)
	r.str("lookups.radio_id_file", &lk.RadioIDFile)
	r.integer("lookups.radio_id_time", &lk.RadioIDTime)
	r.boolean("lookups.radio_id_acl", &lk.RadioIDACL)
	r.str("lookups.talkgroup_id_file", &lk.TalkgroupIDFile)
	r.integer("lookups.talkgroup_id_time", &lk.TalkgroupIDTime)
	r.boolean("lookups.talkgroup_id_acl", &lk.TalkgroupIDACL)

	r.identifiers(&opts)

	r.integer("control.channel_id", &opts.Control.ChannelID)
	r.integer("control.channel_no", &opts.Control.ChannelNo)
	r.float("control.tx_mhz", &opts.Control.TxMHz)
	r.str("control.band", &opts.Control.Band)
	if k.Exists("control.dfsi") {
		d := &DFSIOptions{}
		r.integer("control.dfsi.rtrt", &d.RTRT)
		r.integer("control.dfsi.jitter", &d.Jitter)
		r.integer("control.dfsi.call_timeout", &d.CallTimeout)
		r.boolean("control.dfsi.full_duplex", &d.FullDuplex)
		opts.Control.DFSI = d
	}

	voices, err := VoiceSpecs(
		r.floats("voice.tx_mhz"),
		r.list("voice.bands"),
		r.ints("voice.channel_ids"),
		r.ints("voice.channel_nos"),
		opts.Control.ChannelID,
	)
	if err != nil {
		r.errs.AddErr(err)
	}
	opts.Voices = voices

	if r.errs.HasErrors() {
		return Options{}, r.errs.Build()
	}
	return opts, nil
}

// identifiers copies the ids block, rejecting keys the plan's protocol does
// not use.
func (r *planReader) identifiers(opts *Options) {
	valid := make(map[string]bool)
	for _, p := range netid.Info(opts.Protocol, opts.SiteModel) {
		valid[p.Key] = true
	}
	planKeys := make([]string, 0, len(planIDKeys))
	for planKey := range planIDKeys {
		planKeys = append(planKeys, planKey)
	}
	sort.Strings(planKeys)

	for _, planKey := range planKeys {
		idKey := planIDKeys[planKey]
		var v int
		if !r.integer(planKey, &v) {
			continue
		}
		if !valid[idKey] {
			r.errs.AddErrorf("%s does not apply to %s systems", planKey, opts.Protocol)
			continue
		}
		if err := opts.IDs.Set(idKey, v); err != nil {
			r.errs.AddErr(fmt.Errorf("%s: %w", planKey, err))
		}
	}
}

// VoiceSpecs assembles voice channel specs from parallel lists. Frequencies
// take precedence; bands, when given, pair with them one to one. Without
// frequencies, channel numbers pair with ids, and a missing id list puts every
// voice channel on defaultID. All lists empty yields nil.
func VoiceSpecs(txMHz []float64, bands []string, ids, nos []int, defaultID int) ([]ChannelSpec, error) {
	switch {
	case len(txMHz) > 0:
		if len(bands) > 0 && len(bands) != len(txMHz) {
			return nil, fmt.Errorf("%d voice bands given for %d voice frequencies", len(bands), len(txMHz))
		}
		specs := make([]ChannelSpec, len(txMHz))
		for i, f := range txMHz {
			specs[i].TxMHz = f
			if len(bands) > 0 {
				specs[i].Band = bands[i]
			}
		}
		return specs, nil

	case len(nos) > 0:
		if len(ids) > 0 && len(ids) != len(nos) {
			return nil, fmt.Errorf("%d voice channel ids given for %d voice channel numbers", len(ids), len(nos))
		}
		specs := make([]ChannelSpec, len(nos))
		for i, no := range nos {
			specs[i].ChannelNo = no
			specs[i].ChannelID = defaultID
			if len(ids) > 0 {
				specs[i].ChannelID = ids[i]
			}
		}
		return specs, nil

	case len(bands) > 0 || len(ids) > 0:
		return nil, fmt.Errorf("voice bands or channel ids need voice frequencies or channel numbers")
	}
	return nil, nil
}
