package server

import (
	"database/sql"

	"l2/lldp/config"
	"l2/lldp/protocol"
	"l2/lldp/sim"
)

// LLDPGlobalInfo ties one agent port to the device and MAC it runs on.
type LLDPGlobalInfo struct {
	Device sim.Device
	Mac    *sim.Mac
	Port   *lldp.LldpPort
	// admin status the port was configured with, restored on enable
	cfgAdminStatus config.AdminStatus
	enabled        bool
}

func (gblInfo *LLDPGlobalInfo) Enable() {
	gblInfo.enabled = true
	if gblInfo.cfgAdminStatus == config.AdminDisabled {
		gblInfo.cfgAdminStatus = config.AdminEnabledRxTx
	}
	gblInfo.Port.SetAdminStatus(gblInfo.cfgAdminStatus)
}

func (gblInfo *LLDPGlobalInfo) Disable() {
	gblInfo.enabled = false
	gblInfo.Port.SetAdminStatus(config.AdminDisabled)
}

func (gblInfo *LLDPGlobalInfo) IsEnabled() bool { return gblInfo.enabled }

type LLDPServer struct {
	Scenario *config.Scenario
	Sim      *sim.Simulation

	lldpDbHdl *sql.DB
	dbPath    string

	// lldp per port global info, keyed by "device/port"
	lldpGblInfo        map[string]*LLDPGlobalInfo
	lldpIntfStateSlice []string

	// lldp global config channel
	GblCfgCh chan *config.Global
	// link state notification channel
	IfStateCh chan *config.PortState

	// lldp exit
	lldpExit chan bool
}

const (
	// Consts Init Size/Capacity
	LLDP_INITIAL_GLOBAL_INFO_CAPACITY = 100
	LLDP_GLOBAL_CFG_CHANNEL_SIZE      = 64
	LLDP_IF_STATE_CHANNEL_SIZE        = 64

	// sqlite tables
	LLDP_INTF_TABLE     = "LLDPIntf"
	LLDP_GLOBAL_TABLE   = "LLDPGlobal"
	LLDP_NEIGHBOR_TABLE = "LLDPNeighbor"
)
