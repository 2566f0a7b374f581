package testutil

import (
	"github.com/trunkgen/trunkgen/pkg/config"
	"github.com/trunkgen/trunkgen/pkg/netid"
	"github.com/trunkgen/trunkgen/pkg/trunk"
)

// P25Options returns a two-voice-channel P25 system named "skynet" rooted at
// baseDir, built from the embedded base document.
func P25Options(baseDir string) trunk.Options {
	opts := trunk.DefaultOptions()
	opts.Name = "skynet"
	opts.Identity = "SKYNET"
	opts.BaseDir = baseDir
	opts.VoiceCount = 2
	opts.BasePeerID = 100000
	opts.BaseRPCPort = 9890
	opts.RPCPassword = "rpc-secret"
	opts.IDs = netid.Defaults(netid.ProtocolP25)
	opts.Base = config.EmbeddedBase()
	return opts
}

// DMROptions returns a three-voice-channel DMR system on the tiny site model.
func DMROptions(baseDir string) trunk.Options {
	opts := P25Options(baseDir)
	opts.Name = "dmrnet"
	opts.Identity = "DMRNET"
	opts.Protocol = netid.ProtocolDMR
	opts.SiteModel = netid.SiteModelTiny
	opts.VoiceCount = 3
	opts.IDs = netid.Defaults(netid.ProtocolDMR)
	opts.IDs.DMRNetID = netid.Int(300)
	return opts
}

// PlanHCL is a complete plan file for an 800 MHz P25 system.
const PlanHCL = `
name          = "metro"
identity      = "METRO"
protocol      = "p25"
vc_count      = 2
base_peer_id  = 200000
base_rpc_port = 9900
rpc_password  = "plan-rpc"
modem_type    = "null"

fne {
  address  = "10.1.1.1"
  port     = 62032
  password = "fne-secret"
}

rest {
  enable    = true
  base_port = 8100
  password  = "rest-secret"
}

ids {
  nac     = "0x3A1"
  site_id = 7
}

control {
  tx_mhz = 851.0125
  band   = "800mhz"
}

voice {
  tx_mhz = [851.5125, 852.0125]
  bands  = ["800mhz", "800mhz"]
}
`
