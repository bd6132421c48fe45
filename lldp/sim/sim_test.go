package sim

import (
	"bytes"
	"io"
	"testing"
	"time"

	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/protocol"

	"github.com/google/gopacket/pcapgo"
)

func UsedForTestOnlyScenario(t *testing.T, doc string) *Simulation {
	sc, err := config.ParseScenario([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewSimulationFromScenario(sc)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

const backToBack = `
devices:
  - name: a
    type: endstation
    lldp:
      systemName: alpha
      systemDescription: first box
  - name: b
    type: endstation
    lldp:
      systemName: beta
      systemDescription: second box
links:
  - a: a/0
    b: b/0
    delay: 1
`

func TestBackToBack(t *testing.T) {
	s := UsedForTestOnlyScenario(t, backToBack)
	s.Run(12)

	for _, c := range []struct{ local, peer, name, desc string }{
		{"a", "b", "beta", "second box"},
		{"b", "a", "alpha", "first box"},
	} {
		p := s.Device(c.local).Agent().Ports[0]
		if p.Neighbors.Len() != 1 {
			t.Fatal(c.local, "neighbors", p.Neighbors.Len())
		}
		nbr := p.Neighbors.Entries()[0]
		if nbr.ChassisID.ChassisMac() != s.Device(c.peer).Agent().ChassisMac {
			t.Error(c.local, "neighbor chassis", nbr.ChassisID.ChassisMac())
		}
		if nbr.Pending() {
			t.Fatal(c.local, "neighbor still pending")
		}
		x0 := nbr.Xpdu0()
		if len(x0) != 1 || x0[0].Type() != packet.TLVTypeSystemName || x0[0].StringValue() != c.name {
			t.Error(c.local, "system name", x0)
		}
		x1 := nbr.Xpdus[1]
		if x1 == nil || x1.Tlvs[0].Type() != packet.TLVTypeSystemDescription || x1.Tlvs[0].StringValue() != c.desc {
			t.Error(c.local, "system description", x1)
		}
		if len(nbr.Xpdus) != 4 {
			t.Error(c.local, "xpdus", len(nbr.Xpdus))
		}
	}
}

func TestRegistryAddresses(t *testing.T) {
	s := UsedForTestOnlyScenario(t, backToBack)
	a, b := s.Device("a"), s.Device("b")
	if a.Agent().ChassisMac != MacBase+0x10000 || b.Agent().ChassisMac != MacBase+0x20000 {
		t.Error("chassis addresses", a.Agent().ChassisMac, b.Agent().ChassisMac)
	}
	if a.Mac(0).MacAddress() != MacBase+0x10001 {
		t.Error("port address", a.Mac(0).MacAddress())
	}
	if a.Mac(1) != nil {
		t.Error("end station has one port")
	}

	// registries are per run
	if NewRegistry().NextDevice() != 1 {
		t.Error("fresh registry should start at 1")
	}
}

const bridged = `
devices:
  - name: h1
    type: endstation
  - name: br
    type: bridge
    ports: 2
  - name: h2
    type: endstation
links:
  - a: h1/0
    b: br/0
  - a: br/1
    b: h2/0
`

func TestBridgeFloodsButNotLldp(t *testing.T) {
	s := UsedForTestOnlyScenario(t, bridged)
	s.Run(15)

	h1 := s.Device("h1").(*EndStation)
	h2 := s.Device("h2").(*EndStation)
	br := s.Device("br").(*Bridge)

	for _, h := range []*EndStation{h1, h2} {
		p := h.Agent().Ports[0]
		if p.Neighbors.Len() != 1 {
			t.Fatal(h.Name(), "neighbors", p.Neighbors.Len())
		}
		if p.Neighbors.Entries()[0].ChassisID.ChassisMac() != br.Agent().ChassisMac {
			t.Error(h.Name(), "should only see the bridge")
		}
	}
	for _, p := range br.Agent().Ports {
		if p.Neighbors.Len() != 1 {
			t.Error(p.Name, "neighbors", p.Neighbors.Len())
		}
	}
	if br.Forwarded != 0 {
		t.Error("bridge forwarded LLDP traffic", br.Forwarded)
	}

	if err := h1.SendTest(0, h2.Mac(0).MacAddress(), 42, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	s.Run(5)
	if len(h2.Received) != 1 {
		t.Fatal("h2 received", len(h2.Received))
	}
	r := h2.Received[0]
	if r.Payload.Seq != 42 || string(r.Payload.Data) != "hello" || r.SrcAddr != h1.Mac(0).MacAddress() {
		t.Error("bad test payload", r)
	}
	if br.Forwarded != 1 {
		t.Error("forwarded", br.Forwarded)
	}
	if err := h1.SendTest(3, 0, 0, nil); err == nil {
		t.Error("send on a missing port accepted")
	}
}

func TestLinkDownAndUp(t *testing.T) {
	s := UsedForTestOnlyScenario(t, backToBack)
	s.Run(12)
	if err := s.SetLinkState("a/0", false); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	pa := s.Device("a").Agent().Ports[0]
	if st := pa.RxMachineFsm.Machine.Curr.CurrentState(); st != lldp.RxmStateWaitOperational {
		t.Error("rx machine in", lldp.RxmStateStrMap[st])
	}
	if st := pa.TxMachineFsm.Machine.Curr.CurrentState(); st != lldp.TxmStateInitialize {
		t.Error("tx machine in", lldp.TxmStateStrMap[st])
	}

	s.Run(config.MsgTxIntervalDefault*config.MsgTxHoldDefault + 2)
	if pa.Neighbors.Len() != 0 {
		t.Error("neighbor should age out while the link is down")
	}

	s.SetLinkState("b/0", true)
	s.Run(12)
	if pa.Neighbors.Len() != 1 {
		t.Error("neighbor not relearned")
	}
	if err := s.SetLinkState("c/0", true); err == nil {
		t.Error("unknown endpoint accepted")
	}
}

func TestMacDelayAndOrder(t *testing.T) {
	clock := &Clock{}
	a := NewMac("a", 1, clock)
	b := NewMac("b", 2, clock)
	if a.IsOperational() {
		t.Error("unlinked mac is operational")
	}
	if err := Connect(a, b, 2); err != nil {
		t.Fatal(err)
	}
	if err := Connect(a, b, 2); err == nil {
		t.Error("second link accepted")
	}

	for seq := uint32(1); seq <= 3; seq++ {
		a.Submit(&packet.Frame{DstAddr: 2, SrcAddr: 1, Payload: &packet.TestPayload{Seq: seq}})
	}
	clock.Now = 1
	if a.Transmit(1) != 0 || b.Poll() != nil {
		t.Error("frames arrived before the delay")
	}
	clock.Now = 2
	if n := a.Transmit(2); n != 3 {
		t.Error("expected 3 frames got", n)
	}
	for seq := uint32(1); seq <= 3; seq++ {
		f := b.Poll()
		if f == nil {
			t.Fatal("missing frame", seq)
		}
		if tp := f.Payload.(*packet.TestPayload); tp.Seq != seq {
			t.Error("out of order", tp.Seq, seq)
		}
	}

	// a downed link loses queued frames and refuses new ones
	a.Submit(&packet.Frame{DstAddr: 2, SrcAddr: 1, Payload: &packet.TestPayload{Seq: 9}})
	b.SetAdminState(false)
	if a.IsOperational() {
		t.Error("link should be down")
	}
	a.Transmit(10)
	if a.InFlight() != 0 || a.Dropped != 1 {
		t.Error("queue not flushed", a.InFlight(), a.Dropped)
	}
	a.Submit(&packet.Frame{DstAddr: 2, SrcAddr: 1, Payload: &packet.TestPayload{Seq: 10}})
	if a.InFlight() != 0 || a.Dropped != 2 {
		t.Error("submit on a down link", a.InFlight(), a.Dropped)
	}

	Disconnect(a)
	if a.Peer() != nil || b.Peer() != nil {
		t.Error("disconnect")
	}
}

func TestMacDropsGarbage(t *testing.T) {
	clock := &Clock{}
	a := NewMac("a", 1, clock)
	b := NewMac("b", 2, clock)
	Connect(a, b, 0)
	b.in = append(b.in, []byte{1, 2, 3})
	if b.Poll() != nil || b.DecodeErrors != 1 {
		t.Error("garbage should be counted and skipped")
	}
}

func TestCapture(t *testing.T) {
	var buf bytes.Buffer
	cw, err := packet.NewCaptureWriter(&buf, time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	s := UsedForTestOnlyScenario(t, backToBack)
	s.SetCapture(cw)
	s.Run(1)

	r, err := pcapgo.NewReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for {
		data, ci, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if ci.Timestamp.Unix() != 1 {
			t.Error("timestamp should be the tick", ci.Timestamp)
		}
		f, err := packet.DecodeFrame(data)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := f.Lldpdu(); !ok {
			t.Error("captured frame is not LLDP")
		}
		n++
	}
	if n != 2 {
		t.Error("expected one frame per port got", n)
	}
}
