package server

import (
	"testing"

	"l2/lldp/config"
	"l2/lldp/utils"
	"l2/utils/logging"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const backToBack = `
devices:
  - name: a
    lldp:
      systemName: alpha
  - name: b
    lldp:
      systemName: beta
      systemDescription: second box
links:
  - a: a/0
    b: b/0
`

func UsedForTestOnlyServer(t *testing.T, doc string) *LLDPServer {
	sc, err := config.ParseScenario([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	svr, err := LLDPNewServer(sc)
	if err != nil {
		t.Fatal(err)
	}
	return svr
}

// UsedForTestOnlyOpenDB opens an empty in memory store without reading it.
func UsedForTestOnlyOpenDB(t *testing.T, svr *LLDPServer) {
	svr.dbPath = ":memory:"
	if err := svr.InitDB(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svr.CloseDB)
}

func TestServerIntfStates(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	if n := svr.Run(12); n != 12 || svr.Now() != 12 {
		t.Fatal("ran", n, "now", svr.Now())
	}

	nextIdx, count, states := svr.GetIntfStates(0, 1)
	if nextIdx != 1 || count != 1 || states[0].IntfRef != "a/0" {
		t.Fatal("first page", nextIdx, count, states)
	}
	a := states[0]
	if !a.Enable || !a.Operational || a.AdminStatus != "ENABLED_RX_TX" {
		t.Error("a/0 state", a)
	}
	if a.RxState != "RxWaitForFrame" || a.LocalPort != 1 {
		t.Error("a/0 machine", a.RxState, a.LocalPort)
	}
	if len(a.Neighbors) != 1 {
		t.Fatal("a/0 neighbors", a.Neighbors)
	}
	nbr := a.Neighbors[0]
	if nbr.SystemName != "beta" || nbr.SystemDesc != "second box" || nbr.Pending || nbr.Xpdus != 4 {
		t.Error("a/0 neighbor", nbr)
	}
	if a.FramesOut == 0 || a.FramesIn == 0 || a.XreqOut == 0 || a.XpduIn == 0 {
		t.Error("a/0 counters", a)
	}

	nextIdx, count, states = svr.GetIntfStates(1, 10)
	if nextIdx != 0 || count != 1 || states[0].IntfRef != "b/0" {
		t.Error("last page", nextIdx, count, states)
	}

	if svr.GetIntfState("b/0").Neighbors[0].SystemName != "alpha" {
		t.Error("b/0 neighbor name")
	}
	if svr.GetIntfState("c/0") != nil {
		t.Error("unknown port has state")
	}

	nextIdx, count, intfs := svr.GetIntfs(0, 5)
	if nextIdx != 0 || count != 2 || intfs[1].IntfRef != "b/0" || !intfs[1].Enable {
		t.Error("intfs", nextIdx, count, intfs)
	}
}

func TestServerChannels(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	svr.Run(12)

	// the shutdown frame goes out first, the table is flushed a tick later
	svr.GblCfgCh <- &config.Global{Port: "a/0", Enable: false}
	svr.Run(2)
	a := svr.GetIntfState("a/0")
	if a.Enable || a.AdminStatus != "DISABLED" {
		t.Error("a/0 not disabled", a.Enable, a.AdminStatus)
	}
	if len(a.Neighbors) != 0 {
		t.Error("disabled port kept its neighbors")
	}

	svr.GblCfgCh <- &config.Global{Port: "a/0", Enable: true}
	svr.IfStateCh <- &config.PortState{Port: "b/0", Up: false}
	svr.Run(1)
	a = svr.GetIntfState("a/0")
	if !a.Enable || a.AdminStatus != "ENABLED_RX_TX" {
		t.Error("a/0 not enabled again", a.Enable, a.AdminStatus)
	}
	if a.Operational || svr.GetIntfState("b/0").Operational {
		t.Error("link still up")
	}

	svr.IfStateCh <- &config.PortState{Port: "a/0", Up: true}
	svr.Run(12)
	if len(svr.GetIntfState("a/0").Neighbors) != 1 {
		t.Error("neighbor not relearned")
	}
}

func TestServerUnknownPortLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	debug.SetLogger(logging.NewWriter(zap.New(core)))
	defer debug.SetLogger(nil)

	svr := UsedForTestOnlyServer(t, backToBack)
	svr.GblCfgCh <- &config.Global{Port: "z/9", Enable: true}
	svr.IfStateCh <- &config.PortState{Port: "z/9", Up: true}
	svr.Run(1)
	if logs.Len() != 2 {
		t.Error("expected two errors got", logs.Len())
	}
}

func TestServerExit(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	svr.Exit()
	svr.Exit()
	if n := svr.Run(5); n != 0 {
		t.Error("ran after exit", n)
	}
	if n := svr.Run(5); n != 5 {
		t.Error("exit should be consumed once", n)
	}
}

func TestServerIntfConfigFromDB(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	UsedForTestOnlyOpenDB(t, svr)
	for _, stmt := range []string{
		`INSERT INTO LLDPIntf (IntfRef, Enable, SystemName, PortDescription) VALUES ('b/0', 1, 'bravo', 'uplink')`,
		`INSERT INTO LLDPIntf (IntfRef, Enable) VALUES ('c/0', 0)`,
	} {
		if _, err := svr.lldpDbHdl.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	if err := svr.ReadDB(); err != nil {
		t.Fatal(err)
	}
	svr.Run(12)
	nbr := svr.GetIntfState("a/0").Neighbors[0]
	if nbr.SystemName != "bravo" || nbr.PortDesc != "uplink" {
		t.Error("override not advertised", nbr)
	}

	if err := svr.SaveNeighbors(); err != nil {
		t.Fatal(err)
	}
	saved, err := svr.LoadNeighbors("a/0")
	if err != nil {
		t.Fatal(err)
	}
	if len(saved) != 1 || saved[0] != nbr {
		t.Error("snapshot", saved, nbr)
	}
	// a second snapshot replaces the first
	svr.Run(1)
	if err := svr.SaveNeighbors(); err != nil {
		t.Fatal(err)
	}
	if saved, _ = svr.LoadNeighbors("a/0"); len(saved) != 1 {
		t.Error("snapshot not replaced", saved)
	}

	if err := svr.Stop(); err != nil {
		t.Fatal(err)
	}
	if svr.lldpDbHdl != nil {
		t.Error("store left open")
	}
	if err := svr.Stop(); err != nil {
		t.Error("second stop", err)
	}
}

func TestServerGlobalDisableFromDB(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	UsedForTestOnlyOpenDB(t, svr)
	for _, stmt := range []string{
		`INSERT INTO LLDPGlobal (Vrf, Enable) VALUES ('default', 0)`,
		`INSERT INTO LLDPIntf (IntfRef, Enable, AdminStatus) VALUES ('a/0', 1, 'ENABLED_TX_ONLY')`,
	} {
		if _, err := svr.lldpDbHdl.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	if err := svr.ReadDB(); err != nil {
		t.Fatal(err)
	}
	if st := svr.GetIntfState("a/0"); !st.Enable || st.AdminStatus != "ENABLED_TX_ONLY" {
		t.Error("a/0", st.Enable, st.AdminStatus)
	}
	if st := svr.GetIntfState("b/0"); st.Enable || st.AdminStatus != "DISABLED" {
		t.Error("b/0", st.Enable, st.AdminStatus)
	}

	if err := svr.SaveIntfConfig("b/0", true); err != nil {
		t.Fatal(err)
	}
	if err := svr.ReadDB(); err != nil {
		t.Fatal(err)
	}
	// a port row overrides the global row
	if st := svr.GetIntfState("b/0"); !st.Enable || st.AdminStatus != "ENABLED_RX_TX" {
		t.Error("b/0 after save", st.Enable, st.AdminStatus)
	}
}

func TestServerBadAdminStatusInDB(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	UsedForTestOnlyOpenDB(t, svr)
	if _, err := svr.lldpDbHdl.Exec(`INSERT INTO LLDPIntf (IntfRef, Enable, AdminStatus) VALUES ('a/0', 1, 'SOMETIMES')`); err != nil {
		t.Fatal(err)
	}
	if err := svr.ReadDB(); err == nil {
		t.Error("bad admin status accepted")
	}
}

func TestServerWithoutStore(t *testing.T) {
	svr := UsedForTestOnlyServer(t, backToBack)
	if err := svr.LLDPStartServer(""); err != nil {
		t.Fatal(err)
	}
	if err := svr.Stop(); err != nil {
		t.Error(err)
	}
	if err := svr.LLDPStartServer(":memory:"); err != nil {
		t.Fatal(err)
	}
	if err := svr.Stop(); err != nil {
		t.Error(err)
	}
}
