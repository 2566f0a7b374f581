package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/trunkgen/trunkgen/pkg/util"
)

// Template names.
const (
	TemplateConventional = "conventional"
	TemplateEnhanced     = "enhanced"
	TemplateControlP25   = "control-channel-p25"
	TemplateControlDMR   = "control-channel-dmr"
	TemplateControlNXDN  = "control-channel-nxdn"
	TemplateVoice        = "voice-channel"
)

// BaseFileName is the stock host configuration shipped with the runtime.
const BaseFileName = "config.example.yml"

// EmbeddedSource is reported by BaseDocument when no file was found.
const EmbeddedSource = "embedded"

// SearchPaths are tried in order when no explicit base document is given.
var SearchPaths = []string{
	"./" + BaseFileName,
	"/opt/dvm/" + BaseFileName,
}

//go:embed base.yml
var embeddedBase []byte

// TemplateInfo names a template and what it is for.
type TemplateInfo struct {
	Name        string
	Description string
}

var templateDescriptions = map[string]string{
	TemplateConventional: "Conventional repeater/hotspot",
	TemplateEnhanced:     "Enhanced conventional repeater/hotspot with grants",
	TemplateControlP25:   "P25 dedicated control channel for trunking",
	TemplateControlDMR:   "DMR dedicated control channel for trunking",
	TemplateControlNXDN:  "NXDN dedicated control channel for trunking",
	TemplateVoice:        "Voice channel for trunking system",
}

// Templates lists the available templates sorted by name.
func Templates() []TemplateInfo {
	out := make([]TemplateInfo, 0, len(templateDescriptions))
	for name, desc := range templateDescriptions {
		out = append(out, TemplateInfo{Name: name, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// protocolFlags is the enable/control/dedicated triple for each protocol.
type protocolFlags struct {
	enable, control, dedicated bool
}

type templateSpec struct {
	identity      string
	authoritative *bool
	supervisor    *bool
	dmr, p25      protocolFlags
	nxdn          protocolFlags
}

func boolPtr(b bool) *bool { return &b }

var templateSpecs = map[string]templateSpec{
	TemplateControlP25: {
		identity:      "CC-P25",
		authoritative: boolPtr(true),
		supervisor:    boolPtr(true),
		p25:           protocolFlags{enable: true, control: true, dedicated: true},
	},
	TemplateControlDMR: {
		identity:      "CC-DMR",
		authoritative: boolPtr(true),
		supervisor:    boolPtr(true),
		dmr:           protocolFlags{enable: true, control: true, dedicated: true},
	},
	TemplateControlNXDN: {
		identity:      "CC-NXDN",
		authoritative: boolPtr(true),
		supervisor:    boolPtr(true),
		nxdn:          protocolFlags{enable: true, control: true, dedicated: true},
	},
	TemplateVoice: {
		identity:      "VC",
		authoritative: boolPtr(false),
		supervisor:    boolPtr(false),
		dmr:           protocolFlags{enable: true},
		p25:           protocolFlags{enable: true},
	},
	TemplateEnhanced: {
		identity: "CONV",
		dmr:      protocolFlags{enable: true, control: true},
		p25:      protocolFlags{enable: true, control: true},
	},
	TemplateConventional: {
		identity: "RPT",
		p25:      protocolFlags{enable: true, control: true},
	},
}

// Template derives a new document from base for the named role. base is
// never modified.
func Template(name string, base *Document) (*Document, error) {
	spec, ok := templateSpecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", util.ErrNotFound, name)
	}

	doc := base.Clone()
	sets := []setting{
		{"system.duplex", true},
		{"system.identity", spec.identity},
	}
	if spec.authoritative != nil {
		sets = append(sets, setting{"system.config.authoritative", *spec.authoritative})
	}
	if spec.supervisor != nil {
		sets = append(sets, setting{"system.config.supervisor", *spec.supervisor})
	}
	for _, s := range sets {
		if err := doc.Set(s.path, s.value); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	}

	for _, p := range []struct {
		name  string
		flags protocolFlags
	}{{"dmr", spec.dmr}, {"p25", spec.p25}, {"nxdn", spec.nxdn}} {
		if err := SetProtocolFlags(doc, p.name, p.flags.enable, p.flags.control, p.flags.dedicated); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
	}
	return doc, nil
}

type setting struct {
	path  string
	value any
}

// SetProtocolFlags writes protocols.<proto>.{enable,control.enable,control.dedicated}.
func SetProtocolFlags(doc *Document, proto string, enable, control, dedicated bool) error {
	prefix := "protocols." + proto
	if err := doc.Set(prefix+".enable", enable); err != nil {
		return err
	}
	if err := doc.Set(prefix+".control.enable", control); err != nil {
		return err
	}
	return doc.Set(prefix+".control.dedicated", dedicated)
}

// EmbeddedBase returns a fresh copy of the built-in fallback document.
func EmbeddedBase() *Document {
	doc, err := Parse(embeddedBase)
	if err != nil {
		panic(fmt.Sprintf("embedded base config: %v", err))
	}
	return doc
}

// BaseDocument loads the document templates start from. An explicit path must
// load. Otherwise SearchPaths are tried in order, then the embedded fallback.
// The returned string names where the document came from.
func BaseDocument(path string) (*Document, string, error) {
	if path != "" {
		doc, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return doc, path, nil
	}

	for _, p := range SearchPaths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		doc, err := Load(p)
		if err != nil {
			util.WithField("file", p).Warnf("could not load base config: %v", err)
			continue
		}
		util.WithField("file", p).Debug("using base config")
		return doc, p, nil
	}

	util.Debugf("no %s found, using embedded base config", BaseFileName)
	return EmbeddedBase(), EmbeddedSource, nil
}
