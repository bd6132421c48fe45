package config

import (
	"errors"
	"testing"
)

func TestDefaultPortConfigValid(t *testing.T) {
	c := DefaultPortConfig()
	if err := c.Validate(); err != nil {
		t.Error("default config invalid", err)
	}
	if c.TxTTL() != 31 {
		t.Error("expected ttl 31 got", c.TxTTL())
	}
}

func TestPortConfigRanges(t *testing.T) {
	for name, mod := range map[string]func(*PortConfig){
		"interval low":  func(c *PortConfig) { c.MsgTxInterval = 0 },
		"interval high": func(c *PortConfig) { c.MsgTxInterval = 3601 },
		"hold":          func(c *PortConfig) { c.MsgTxHold = 101 },
		"fastTx":        func(c *PortConfig) { c.MsgFastTx = 0 },
		"fastInit":      func(c *PortConfig) { c.TxFastInit = 9 },
		"reInit":        func(c *PortConfig) { c.ReInitDelay = 0 },
		"credit":        func(c *PortConfig) { c.TxCreditMax = 11 },
		"budget":        func(c *PortConfig) { c.MaxNeighborMibBytes = -1 },
		"admin":         func(c *PortConfig) { c.AdminStatus = AdminStatus(7) },
		"scope":         func(c *PortConfig) { c.ScopeAddr = 0x24a600010000 },
	} {
		c := DefaultPortConfig()
		mod(&c)
		if err := c.Validate(); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("%s: expected ErrOutOfRange got %v", name, err)
		}
	}
}

func TestTxTTLCapped(t *testing.T) {
	c := DefaultPortConfig()
	c.MsgTxInterval = 3600
	c.MsgTxHold = 100
	if c.TxTTL() != 65535 {
		t.Error("ttl not capped", c.TxTTL())
	}
}

func TestAdminStatusText(t *testing.T) {
	for _, a := range []AdminStatus{AdminDisabled, AdminEnabledTxOnly, AdminEnabledRxOnly, AdminEnabledRxTx} {
		b, _ := a.MarshalText()
		var back AdminStatus
		if err := back.UnmarshalText(b); err != nil || back != a {
			t.Error("admin status round trip", a, back, err)
		}
	}
	if _, err := ParseAdminStatus("sometimes"); err == nil {
		t.Error("expected parse error")
	}
	if !AdminEnabledRxTx.TxEnabled() || !AdminEnabledRxTx.RxEnabled() {
		t.Error("rx/tx should be enabled")
	}
	if AdminEnabledTxOnly.RxEnabled() || AdminEnabledRxOnly.TxEnabled() || AdminDisabled.TxEnabled() {
		t.Error("wrong direction enabled")
	}
}

func TestMacAddrText(t *testing.T) {
	var m MacAddr
	if err := m.UnmarshalText([]byte("01:80:c2:00:00:00")); err != nil || m != 0x0180c2000000 {
		t.Error("mac parse", m, err)
	}
	if m.String() != "01:80:c2:00:00:00" {
		t.Error("mac string", m.String())
	}
	if err := m.UnmarshalText([]byte("nonsense")); err == nil {
		t.Error("expected mac parse error")
	}
}
