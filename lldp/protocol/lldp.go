// lldp.go
package lldp

import (
	"fmt"

	"l2/lldp/config"
	"l2/lldp/packet"
)

// LinkLayerDiscovery is the set of LLDP agents of one device, all sharing
// the device's chassis id.
type LinkLayerDiscovery struct {
	ChassisMac uint64
	Ports      []*LldpPort
}

func NewLinkLayerDiscovery(chassisMac uint64) *LinkLayerDiscovery {
	return &LinkLayerDiscovery{ChassisMac: chassisMac}
}

// AddPort creates an agent on iss.  Port numbers are assigned in order of
// creation starting at 1.
func (lld *LinkLayerDiscovery) AddPort(name string, iss Transport, cfg config.PortConfig) *LldpPort {
	p := NewLldpPort(name, lld.ChassisMac, uint32(len(lld.Ports)+1), iss, cfg)
	lld.Ports = append(lld.Ports, p)
	LldpLoggerInfo(fmt.Sprintf("port %s added chassis %s port %d", name, packet.Uint64ToMac(lld.ChassisMac), p.PortNum))
	return p
}

func (lld *LinkLayerDiscovery) Port(name string) *LldpPort {
	for _, p := range lld.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Reset returns every agent to its initial state.
func (lld *LinkLayerDiscovery) Reset() {
	for _, p := range lld.Ports {
		p.BEGIN()
	}
}

func (lld *LinkLayerDiscovery) TimerTick() {
	for _, p := range lld.Ports {
		p.TimerTick()
	}
}

// Run drives the receive side of every port before any transmit side.
func (lld *LinkLayerDiscovery) Run(singleStep bool) int {
	n := 0
	for _, p := range lld.Ports {
		n += p.RunRx(singleStep)
	}
	for _, p := range lld.Ports {
		n += p.RunTx(singleStep)
	}
	return n
}
