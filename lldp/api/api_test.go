package api

import (
	"testing"

	"l2/lldp/config"
	"l2/lldp/server"
)

func TestApiLayer(t *testing.T) {
	sc, err := config.ParseScenario([]byte(`
devices:
  - name: a
  - name: b
links:
  - a: a/0
    b: b/0
`))
	if err != nil {
		t.Fatal(err)
	}
	svr, err := server.LLDPNewServer(sc)
	if err != nil {
		t.Fatal(err)
	}
	Init(svr)
	if getInstance() != lldpapi || lldpapi.server != svr {
		t.Fatal("api not bound to server")
	}

	svr.Run(12)
	_, count, states := GetIntfStates(0, 10)
	if count != 2 || len(states[0].Neighbors) != 1 {
		t.Fatal("states", count, states)
	}

	SendGlobalConfig("b/0", false)
	SendPortStateChange("a/0", false)
	// nothing is applied until the server runs
	if !GetIntfState("b/0").Enable {
		t.Error("config applied early")
	}
	svr.Run(1)
	if GetIntfState("b/0").Enable || GetIntfState("a/0").Operational {
		t.Error("requests not applied")
	}
	_, count, intfs := GetIntfs(0, 10)
	if count != 2 || intfs[0].Enable != true || intfs[1].Enable != false {
		t.Error("intfs", intfs)
	}
}
