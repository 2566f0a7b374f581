package trunk

import (
	"fmt"
	"path/filepath"

	"github.com/trunkgen/trunkgen/pkg/config"
	"github.com/trunkgen/trunkgen/pkg/iden"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/util"
)

// ErrSystemNotFound is returned by Load when the control channel file is
// missing. It matches util.ErrNotFound.
var ErrSystemNotFound = fmt.Errorf("trunked system %w", util.ErrNotFound)

// Load reads a published system. Voice channels are discovered as vc01, vc02,
// ... up to the first missing file. The identity table is loaded when present;
// its skipped lines are logged.
func Load(baseDir, name string) (*System, error) {
	ccPath := filepath.Join(baseDir, ControlFileName(name))
	if !util.FileExists(ccPath) {
		return nil, fmt.Errorf("%w: %s", ErrSystemNotFound, ccPath)
	}
	log := util.WithSystem(name).WithField("dir", baseDir)

	ccDoc, err := config.Load(ccPath)
	if err != nil {
		return nil, err
	}

	sys := &System{
		Name:    name,
		BaseDir: baseDir,
		Control: &Instance{Role: RoleControl, Doc: ccDoc, Channel: channelFromDoc(ccDoc)},
	}
	sys.Protocol, sys.SiteModel = detectProtocol(ccDoc)

	for i := 1; ; i++ {
		path := filepath.Join(baseDir, VoiceFileName(name, i))
		if !util.FileExists(path) {
			break
		}
		doc, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		sys.Voices = append(sys.Voices, &Instance{Role: RoleVoice, Ordinal: i, Doc: doc, Channel: channelFromDoc(doc)})
	}

	idenPath := filepath.Join(baseDir, iden.FileName)
	if util.FileExists(idenPath) {
		table, _, err := iden.LoadTable(idenPath)
		if err != nil {
			return nil, err
		}
		sys.Iden = table
	}

	log.Debugf("loaded %s system with %d voice channels", sys.Protocol, len(sys.Voices))
	return sys, nil
}

// channelFromDoc reads an instance's channel. A document without a channel
// assignment gets ChannelID -1 so it never collides.
func channelFromDoc(doc *config.Document) Channel {
	id, okID := doc.GetInt("system.config.channelId")
	no, okNo := doc.GetInt("system.config.channelNo")
	if !okID || !okNo {
		return Channel{ChannelID: -1, ChannelNo: -1}
	}
	ch := Channel{ChannelID: id, ChannelNo: no}
	if tx, ok := doc.GetInt("system.config.txFrequency"); ok {
		ch.TxHz = int64(tx)
	}
	if rx, ok := doc.GetInt("system.config.rxFrequency"); ok {
		ch.RxHz = int64(rx)
	}
	return ch
}

// detectProtocol infers the active protocol from a control channel document:
// the protocol whose control channel is enabled, else the first enabled one.
func detectProtocol(doc *config.Document) (netid.Protocol, netid.SiteModel) {
	model := netid.SiteModelSmall
	if s, ok := doc.GetString(siteModelPath); ok {
		if m, err := netid.ParseSiteModel(s); err == nil {
			model = m
		}
	}

	order := []netid.Protocol{netid.ProtocolP25, netid.ProtocolDMR, netid.ProtocolNXDN}
	for _, p := range order {
		if on, _ := doc.GetBool("protocols." + string(p) + ".control.enable"); on {
			if en, _ := doc.GetBool("protocols." + string(p) + ".enable"); en {
				return p, model
			}
		}
	}
	for _, p := range order {
		if en, _ := doc.GetBool("protocols." + string(p) + ".enable"); en {
			return p, model
		}
	}
	return netid.ProtocolP25, model
}
