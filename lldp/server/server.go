package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/protocol"
	"l2/lldp/sim"
	"l2/lldp/utils"
)

/* Create lldp server object for the main handler. Every device and link of
 * the scenario is built here, nothing runs until Run is called
 */
func LLDPNewServer(sc *config.Scenario) (*LLDPServer, error) {
	s, err := sim.NewSimulationFromScenario(sc)
	if err != nil {
		return nil, err
	}
	lldpServerInfo := &LLDPServer{
		Scenario: sc,
		Sim:      s,
	}
	// Allocate memory to all the Data Structures
	lldpServerInfo.InitGlobalDS()
	for _, d := range s.Devices() {
		for i, port := range d.Agent().Ports {
			lldpServerInfo.InitL2PortInfo(d, d.Mac(i), port)
		}
	}
	return lldpServerInfo, nil
}

/* Allocate memory to all the object which are being used by LLDP server
 */
func (svr *LLDPServer) InitGlobalDS() {
	svr.lldpGblInfo = make(map[string]*LLDPGlobalInfo, LLDP_INITIAL_GLOBAL_INFO_CAPACITY)
	svr.lldpExit = make(chan bool, 1)
	svr.GblCfgCh = make(chan *config.Global, LLDP_GLOBAL_CFG_CHANNEL_SIZE)
	svr.IfStateCh = make(chan *config.PortState, LLDP_IF_STATE_CHANNEL_SIZE)
}

/* De-Allocate memory to all the object which are being used by LLDP server
 */
func (svr *LLDPServer) DeInitGlobalDS() {
	svr.lldpGblInfo = nil
	svr.lldpIntfStateSlice = nil
}

/* Create global run time information for one agent port
 */
func (svr *LLDPServer) InitL2PortInfo(d sim.Device, mac *sim.Mac, port *lldp.LldpPort) {
	gblInfo := &LLDPGlobalInfo{
		Device:         d,
		Mac:            mac,
		Port:           port,
		cfgAdminStatus: port.Cfg.AdminStatus,
		enabled:        port.Cfg.AdminStatus != config.AdminDisabled,
	}
	svr.lldpGblInfo[port.Name] = gblInfo
	svr.lldpIntfStateSlice = append(svr.lldpIntfStateSlice, port.Name)
}

/*  lldp server: 1) Initialize DB
 *		 2) Read interface overrides from DB
 *		 3) Keep DB open for the neighbor snapshot taken on Stop
 *  An empty dbPath runs without a store.
 */
func (svr *LLDPServer) LLDPStartServer(dbPath string) error {
	svr.dbPath = dbPath
	if dbPath == "" {
		return nil
	}
	if err := svr.InitDB(); err != nil {
		debug.Logger.Err("DB init failed")
		return err
	}
	return svr.ReadDB()
}

// SetCapture records every frame the run submits.
func (svr *LLDPServer) SetCapture(cw *packet.CaptureWriter) {
	svr.Sim.SetCapture(cw)
}

/*  Create os signal handler channel and initiate go routine for that
 */
func (svr *LLDPServer) OSSignalHandle() {
	sigChannel := make(chan os.Signal, 1)
	signalList := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	signal.Notify(sigChannel, signalList...)
	go svr.SignalHandler(sigChannel)
}

/* OS signal handler. The run loop stops at the end of the current tick
 */
func (svr *LLDPServer) SignalHandler(sigChannel <-chan os.Signal) {
	sig := <-sigChannel
	debug.Logger.Alert(fmt.Sprintln("Received signal", sig))
	svr.Exit()
}

// Exit asks a running Run to return after the current tick.
func (svr *LLDPServer) Exit() {
	select {
	case svr.lldpExit <- true:
	default:
	}
}

/* To handle all the channels in lldp server. Everything queued is applied
 * before the next tick so that notifications land between ticks
 */
func (svr *LLDPServer) ChannelHanlder() (exit bool) {
	for {
		select {
		case gbl, ok := <-svr.GblCfgCh:
			if !ok {
				svr.GblCfgCh = nil
				continue
			}
			debug.Logger.Info(fmt.Sprintln("Received Global Config", *gbl))
			svr.UpdateIntfConfig(gbl.Port, gbl.Enable)
		case ifState, ok := <-svr.IfStateCh:
			if !ok {
				svr.IfStateCh = nil
				continue
			}
			svr.UpdateL2IntfStateChange(ifState.Port, ifState.Up)
		case exit = <-svr.lldpExit:
			if exit {
				debug.Logger.Alert("lldp exiting stopping run")
				return exit
			}
		default:
			return false
		}
	}
}

// Run advances the simulation by ticks, draining the channels before each
// tick.  It returns the number of ticks run, which is short of ticks only
// when the server was asked to exit.
func (svr *LLDPServer) Run(ticks int) int {
	for i := 0; i < ticks; i++ {
		if svr.ChannelHanlder() {
			return i
		}
		svr.Sim.Tick()
	}
	return ticks
}

// Now is the current simulation tick.
func (svr *LLDPServer) Now() int { return svr.Sim.Clock.Now }

/*  Enable or disable lldp on a port.  "all" applies to every port
 */
func (svr *LLDPServer) UpdateIntfConfig(intfRef string, enable bool) {
	if intfRef == "all" {
		for _, key := range svr.lldpIntfStateSlice {
			svr.UpdateIntfConfig(key, enable)
		}
		return
	}
	gblInfo, found := svr.lldpGblInfo[intfRef]
	if !found {
		debug.Logger.Err(fmt.Sprintln("No entry for port", intfRef))
		return
	}
	if enable {
		gblInfo.Enable()
	} else {
		gblInfo.Disable()
	}
	debug.Logger.Info(fmt.Sprintln("lldp on", intfRef, "enable", enable))
}

/*  handle link state up/down notifications
 */
func (svr *LLDPServer) UpdateL2IntfStateChange(intfRef string, up bool) {
	if err := svr.Sim.SetLinkState(intfRef, up); err != nil {
		debug.Logger.Err(fmt.Sprintln("link state change failed", err))
		return
	}
	if up {
		debug.Logger.Info("State UP notification for " + intfRef)
	} else {
		debug.Logger.Info("State DOWN notification for " + intfRef)
	}
}

// Stop saves the neighbor tables if a store is open and releases it.
func (svr *LLDPServer) Stop() error {
	if svr.lldpDbHdl == nil {
		return nil
	}
	err := svr.SaveNeighbors()
	svr.CloseDB()
	return err
}
