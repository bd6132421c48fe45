package sim

import (
	"fmt"
	"strconv"

	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/protocol"
	"l2/lldp/utils"
)

// Device is a simulated box with LLDP agents on its ports.
type Device interface {
	Name() string
	Kind() config.DeviceKind
	Agent() *lldp.LinkLayerDiscovery
	Mac(port int) *Mac
	Macs() []*Mac
	TimerTick()
	Run(singleStep bool) int
}

type device struct {
	name  string
	num   uint64
	agent *lldp.LinkLayerDiscovery
	macs  []*Mac
}

func newDevice(reg *Registry, clock *Clock, name string, ports int, cfg config.PortConfig) device {
	num := reg.NextDevice()
	d := device{
		name:  name,
		num:   num,
		agent: lldp.NewLinkLayerDiscovery(MacAddress(num, 0)),
	}
	for i := 0; i < ports; i++ {
		pname := name + "/" + strconv.Itoa(i)
		m := NewMac(pname, MacAddress(num, i+1), clock)
		d.macs = append(d.macs, m)
		d.agent.AddPort(pname, m, cfg)
	}
	return d
}

func (d *device) Name() string                    { return d.name }
func (d *device) Agent() *lldp.LinkLayerDiscovery { return d.agent }
func (d *device) Macs() []*Mac                    { return d.macs }

func (d *device) Mac(port int) *Mac {
	if port < 0 || port >= len(d.macs) {
		return nil
	}
	return d.macs[port]
}

func (d *device) TimerTick() { d.agent.TimerTick() }

// isReserved reports addresses a bridge never forwards.
func isReserved(addr uint64) bool {
	return addr&^0xf == packet.NearestCustomerBridgeDA
}

// Bridge floods every frame not consumed by LLDP out of all its other
// operational ports.  There is no address learning.
type Bridge struct {
	device
	Forwarded uint64
	Filtered  uint64
}

func NewBridge(reg *Registry, clock *Clock, name string, ports int, cfg config.PortConfig) *Bridge {
	return &Bridge{device: newDevice(reg, clock, name, ports, cfg)}
}

func (b *Bridge) Kind() config.DeviceKind { return config.DeviceBridge }

func (b *Bridge) Run(singleStep bool) int {
	n := b.agent.Run(singleStep)
	for i, in := range b.agent.Ports {
		for f := in.Indication(); f != nil; f = in.Indication() {
			if isReserved(f.DstAddr) {
				b.Filtered++
				continue
			}
			for j, out := range b.agent.Ports {
				if j == i || !out.IsOperational() {
					continue
				}
				out.Request(f)
				b.Forwarded++
			}
		}
	}
	return n
}

// Received is a test payload as delivered to an end station.
type Received struct {
	Port    int
	SrcAddr uint64
	VID     uint16
	Payload *packet.TestPayload
}

// EndStation sinks test payloads and can originate them.
type EndStation struct {
	device
	Received []Received
	Ignored  uint64
}

func NewEndStation(reg *Registry, clock *Clock, name string, ports int, cfg config.PortConfig) *EndStation {
	return &EndStation{device: newDevice(reg, clock, name, ports, cfg)}
}

func (e *EndStation) Kind() config.DeviceKind { return config.DeviceEndStation }

func (e *EndStation) Run(singleStep bool) int {
	n := e.agent.Run(singleStep)
	for i, p := range e.agent.Ports {
		for f := p.Indication(); f != nil; f = p.Indication() {
			if f.DstAddr != p.MacAddress() && f.DstAddr&(1<<40) == 0 {
				e.Ignored++
				continue
			}
			switch pl := f.Payload.(type) {
			case *packet.TestPayload:
				e.Received = append(e.Received, Received{Port: i, SrcAddr: f.SrcAddr, Payload: pl})
			case *packet.VlanTag:
				if tp, ok := pl.Inner.(*packet.TestPayload); ok {
					e.Received = append(e.Received, Received{Port: i, SrcAddr: f.SrcAddr, VID: pl.VID, Payload: tp})
					continue
				}
				e.Ignored++
			default:
				e.Ignored++
			}
		}
	}
	return n
}

// SendTest originates a test payload on port to dst.
func (e *EndStation) SendTest(port int, dst uint64, seq uint32, data []byte) error {
	if port < 0 || port >= len(e.agent.Ports) {
		return fmt.Errorf("sim: %s has no port %d", e.name, port)
	}
	p := e.agent.Ports[port]
	p.Request(&packet.Frame{
		DstAddr: dst,
		SrcAddr: p.MacAddress(),
		Payload: &packet.TestPayload{Seq: seq, Data: data},
	})
	debug.Logger.Debug(fmt.Sprintf("%s: test payload %d to %s", p.Name, seq, packet.Uint64ToMac(dst)))
	return nil
}
