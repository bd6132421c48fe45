package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var ErrOutOfRange = errors.New("value out of range")

type AdminStatus int

const (
	AdminDisabled AdminStatus = iota
	AdminEnabledTxOnly
	AdminEnabledRxOnly
	AdminEnabledRxTx
)

var adminStatusStr = map[AdminStatus]string{
	AdminDisabled:      "DISABLED",
	AdminEnabledTxOnly: "ENABLED_TX_ONLY",
	AdminEnabledRxOnly: "ENABLED_RX_ONLY",
	AdminEnabledRxTx:   "ENABLED_RX_TX",
}

func (a AdminStatus) String() string {
	if s, ok := adminStatusStr[a]; ok {
		return s
	}
	return fmt.Sprintf("AdminStatus(%d)", int(a))
}

func ParseAdminStatus(s string) (AdminStatus, error) {
	for a, str := range adminStatusStr {
		if strings.EqualFold(s, str) {
			return a, nil
		}
	}
	return AdminDisabled, fmt.Errorf("unknown admin status %q", s)
}

func (a AdminStatus) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AdminStatus) UnmarshalText(b []byte) error {
	v, err := ParseAdminStatus(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a AdminStatus) TxEnabled() bool { return a == AdminEnabledTxOnly || a == AdminEnabledRxTx }

func (a AdminStatus) RxEnabled() bool { return a == AdminEnabledRxOnly || a == AdminEnabledRxTx }

// MacAddr is a 48 bit address that reads and writes as aa:bb:cc:dd:ee:ff.
type MacAddr uint64

func (m MacAddr) String() string {
	b := make(net.HardwareAddr, 6)
	v := uint64(m)
	for i := 5; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b.String()
}

func (m MacAddr) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MacAddr) UnmarshalText(b []byte) error {
	hw, err := net.ParseMAC(string(b))
	if err != nil {
		return err
	}
	if len(hw) != 6 {
		return fmt.Errorf("%q is not a 48 bit address", string(b))
	}
	var v uint64
	for _, o := range hw {
		v = v<<8 | uint64(o)
	}
	*m = MacAddr(v)
	return nil
}

const (
	MsgTxIntervalDefault       = 10
	MsgTxHoldDefault           = 3
	MsgFastTxDefault           = 1
	TxFastInitDefault          = 4
	ReInitDelayDefault         = 2
	TxCreditMaxDefault         = 5
	MaxNeighborMibBytesDefault = 20000
	XreqRetryFloorDefault      = 5

	ScopeAddrDefault         = MacAddr(0x0180c200000e)
	SystemNameDefault        = "Someone"
	SystemDescriptionDefault = "Somewhere"
	PortDescriptionDefault   = "Something"
)

// PortConfig is the per port LLDP agent configuration.
type PortConfig struct {
	MsgTxInterval       int         `yaml:"msgTxInterval"`
	MsgTxHold           int         `yaml:"msgTxHold"`
	MsgFastTx           int         `yaml:"msgFastTx"`
	TxFastInit          int         `yaml:"txFastInit"`
	ReInitDelay         int         `yaml:"reInitDelay"`
	TxCreditMax         int         `yaml:"txCreditMax"`
	AdminStatus         AdminStatus `yaml:"adminStatus"`
	ExtensionsEnabled   bool        `yaml:"extensionsEnabled"`
	MaxNeighborMibBytes int         `yaml:"maxNeighborMibBytes"`
	XreqRetryFloor      int         `yaml:"xreqRetryFloor"`
	ScopeAddr           MacAddr     `yaml:"scope"`
	SystemName          string      `yaml:"systemName"`
	SystemDescription   string      `yaml:"systemDescription"`
	PortDescription     string      `yaml:"portDescription"`
}

func DefaultPortConfig() PortConfig {
	return PortConfig{
		MsgTxInterval:       MsgTxIntervalDefault,
		MsgTxHold:           MsgTxHoldDefault,
		MsgFastTx:           MsgFastTxDefault,
		TxFastInit:          TxFastInitDefault,
		ReInitDelay:         ReInitDelayDefault,
		TxCreditMax:         TxCreditMaxDefault,
		AdminStatus:         AdminEnabledRxTx,
		ExtensionsEnabled:   true,
		MaxNeighborMibBytes: MaxNeighborMibBytesDefault,
		XreqRetryFloor:      XreqRetryFloorDefault,
		ScopeAddr:           ScopeAddrDefault,
		SystemName:          SystemNameDefault,
		SystemDescription:   SystemDescriptionDefault,
		PortDescription:     PortDescriptionDefault,
	}
}

type paramRange struct {
	name     string
	val      int
	min, max int
}

func (c *PortConfig) Validate() error {
	for _, r := range []paramRange{
		{"msgTxInterval", c.MsgTxInterval, 1, 3600},
		{"msgTxHold", c.MsgTxHold, 1, 100},
		{"msgFastTx", c.MsgFastTx, 1, 3600},
		{"txFastInit", c.TxFastInit, 1, 8},
		{"reInitDelay", c.ReInitDelay, 1, 100},
		{"txCreditMax", c.TxCreditMax, 1, 10},
		{"maxNeighborMibBytes", c.MaxNeighborMibBytes, 0, 1 << 24},
		{"xreqRetryFloor", c.XreqRetryFloor, 1, 3600},
	} {
		if r.val < r.min || r.val > r.max {
			return fmt.Errorf("%s %d not in [%d,%d]: %w", r.name, r.val, r.min, r.max, ErrOutOfRange)
		}
	}
	if _, ok := adminStatusStr[c.AdminStatus]; !ok {
		return fmt.Errorf("adminStatus %d: %w", int(c.AdminStatus), ErrOutOfRange)
	}
	if uint64(c.ScopeAddr)>>40&1 == 0 {
		return fmt.Errorf("scope %s is not a group address: %w", c.ScopeAddr, ErrOutOfRange)
	}
	return nil
}

// TxTTL is msgTxInterval * msgTxHold + 1 capped at 65535.
func (c *PortConfig) TxTTL() int {
	ttl := c.MsgTxInterval*c.MsgTxHold + 1
	if ttl > 65535 {
		ttl = 65535
	}
	return ttl
}

type Intf struct {
	IntfRef string
	Enable  bool
}

type Global struct {
	Port   string
	Enable bool
}

type PortState struct {
	Port string
	Up   bool
}

type NeighborInfo struct {
	ChassisMac string
	PortNum    uint32
	TTL        int
	TTLTimer   int
	TotalSize  int
	SystemName string
	SystemDesc string
	PortDesc   string
	Xpdus      int
	Pending    bool
}

// IntfState is the externally visible state of one LLDP port.
type IntfState struct {
	IntfRef      string
	Enable       bool
	Operational  bool
	AdminStatus  string
	LocalChassis string
	LocalPort    uint32
	RxState      string
	TxState      string
	TxTimerState string
	Neighbors    []NeighborInfo

	FramesOut       uint64
	FramesIn        uint64
	FramesDiscarded uint64
	FramesInErrors  uint64
	Ageouts         uint64
	TooManyNbrs     uint64
	XreqOut         uint64
	XreqIn          uint64
	XpduOut         uint64
	XpduIn          uint64
	ShutdownsIn     uint64
}
