package trunk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trunkgen/trunkgen/pkg/util"
)

// UpdateAll sets path to value in every instance. Nothing is written until
// SaveAll.
func (s *System) UpdateAll(path string, value any) error {
	for _, in := range s.Instances() {
		if err := in.Doc.Set(path, value); err != nil {
			return fmt.Errorf("%s: %w", in.Label(), err)
		}
	}
	util.WithSystem(s.Name).WithField("key", path).Debugf("updated %d instances", len(s.Instances()))
	return nil
}

// ParseValue converts a command-line value: "true"/"false" become bools,
// unsigned decimal strings become ints, anything else stays a string.
func ParseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if s != "" && strings.Trim(s, "0123456789") == "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return s
}

// SummaryRow is one line of a system overview.
type SummaryRow struct {
	Role      string `json:"role"`
	Identity  string `json:"identity"`
	PeerID    int    `json:"peer_id"`
	RPCPort   int    `json:"rpc_port"`
	ChannelID int    `json:"channel_id"`
	ChannelNo int    `json:"channel_no"`
	TxHz      int64  `json:"tx_hz,omitempty"`
	RxHz      int64  `json:"rx_hz,omitempty"`
}

// Summary lists every instance with its identity, endpoints and channel.
func (s *System) Summary() []SummaryRow {
	rows := make([]SummaryRow, 0, 1+len(s.Voices))
	for _, in := range s.Instances() {
		role := "Control Channel"
		if in.Role == RoleVoice {
			role = fmt.Sprintf("Voice Channel %d", in.Ordinal)
		}
		identity, _ := in.Doc.GetString("system.identity")
		peer, _ := in.Doc.GetInt("network.id")
		rpc, _ := in.Doc.GetInt("network.rpcPort")
		rows = append(rows, SummaryRow{
			Role:      role,
			Identity:  identity,
			PeerID:    peer,
			RPCPort:   rpc,
			ChannelID: in.Channel.ChannelID,
			ChannelNo: in.Channel.ChannelNo,
			TxHz:      in.Channel.TxHz,
			RxHz:      in.Channel.RxHz,
		})
	}
	return rows
}
