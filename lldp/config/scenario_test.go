package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testScenario = `
ticks: 40
devices:
  - name: b1
    type: bridge
    ports: 3
    lldp:
      msgTxInterval: 20
      systemName: core
  - name: s1
    lldp:
      adminStatus: ENABLED_TX_ONLY
      scope: "01:80:c2:00:00:00"
  - name: s2
    type: endstation
links:
  - a: b1/0
    b: s1/0
  - a: b1/2
    b: s2/0
    delay: 3
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(testScenario))
	if err != nil {
		t.Fatal(err)
	}
	if sc.Ticks != 40 || len(sc.Devices) != 3 || len(sc.Links) != 2 {
		t.Fatal("scenario shape", sc.Ticks, len(sc.Devices), len(sc.Links))
	}
	b1, _ := sc.Device("b1")
	if b1.Kind != DeviceBridge || b1.Ports != 3 {
		t.Error("b1", b1.Kind, b1.Ports)
	}
	if b1.LLDP.MsgTxInterval != 20 || b1.LLDP.SystemName != "core" {
		t.Error("b1 overrides not applied", b1.LLDP.MsgTxInterval, b1.LLDP.SystemName)
	}
	if b1.LLDP.MsgTxHold != MsgTxHoldDefault || b1.LLDP.SystemDescription != SystemDescriptionDefault {
		t.Error("b1 defaults lost", b1.LLDP.MsgTxHold, b1.LLDP.SystemDescription)
	}
	s1, _ := sc.Device("s1")
	if s1.Kind != DeviceEndStation || s1.Ports != 1 {
		t.Error("s1 defaults", s1.Kind, s1.Ports)
	}
	if s1.LLDP.AdminStatus != AdminEnabledTxOnly || s1.LLDP.ScopeAddr != 0x0180c2000000 {
		t.Error("s1 overrides", s1.LLDP.AdminStatus, s1.LLDP.ScopeAddr)
	}
	s2, _ := sc.Device("s2")
	if s2.LLDP.AdminStatus != AdminEnabledRxTx || !s2.LLDP.ExtensionsEnabled {
		t.Error("s2 should carry defaults")
	}
	if sc.Links[0].Delay != LinkDelayDefault || sc.Links[1].Delay != 3 {
		t.Error("link delays", sc.Links[0].Delay, sc.Links[1].Delay)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown device": "devices:\n  - name: a\nlinks:\n  - a: a/0\n    b: z/0\n",
		"bad port":       "devices:\n  - name: a\n  - name: b\nlinks:\n  - a: a/1\n    b: b/0\n",
		"reused port":    "devices:\n  - name: a\n    type: bridge\n  - name: b\n  - name: c\nlinks:\n  - a: a/0\n    b: b/0\n  - a: c/0\n    b: b/0\n",
		"duplicate":      "devices:\n  - name: a\n  - name: a\n",
		"bad type":       "devices:\n  - name: a\n    type: router\n",
		"bad range":      "devices:\n  - name: a\n    lldp:\n      txCreditMax: 0\n",
		"bad admin":      "devices:\n  - name: a\n    lldp:\n      adminStatus: SOMETIMES\n",
		"negative delay": "devices:\n  - name: a\n  - name: b\nlinks:\n  - a: a/0\n    b: b/0\n    delay: -1\n",
		"endpoint":       "devices:\n  - name: a\n  - name: b\nlinks:\n  - a: a\n    b: b/0\n",
	} {
		if _, err := ParseScenario([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(testScenario), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil || len(sc.Devices) != 3 {
		t.Error("load failed", err)
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseEndpoint(t *testing.T) {
	ep, err := ParseEndpoint("b1/12")
	if err != nil || ep.Device != "b1" || ep.Port != 12 || ep.String() != "b1/12" {
		t.Error("endpoint", ep, err)
	}
	for _, s := range []string{"", "/1", "b1/", "b1/x", "b1/-1"} {
		if _, err := ParseEndpoint(s); err == nil {
			t.Errorf("%q should not parse", s)
		}
	}
}

func TestShippedScenario(t *testing.T) {
	sc, err := LoadScenario("../scenarios/chain.yaml")
	if err != nil {
		t.Fatal(err)
	}
	br, ok := sc.Device("br")
	if !ok || br.Kind != DeviceBridge || br.LLDP.MsgTxInterval != 30 || br.LLDP.MsgTxHold != MsgTxHoldDefault {
		t.Error("bridge", br)
	}
	if h2, _ := sc.Device("h2"); h2.LLDP.AdminStatus != AdminEnabledTxOnly {
		t.Error("h2 admin status", h2.LLDP.AdminStatus)
	}
	if sc.Ticks != 60 || len(sc.Links) != 2 || sc.Links[1].Delay != 2 {
		t.Error("scenario", sc.Ticks, sc.Links)
	}
}
