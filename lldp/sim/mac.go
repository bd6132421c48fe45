package sim

import (
	"fmt"

	"l2/lldp/packet"
	"l2/lldp/utils"
)

// Clock is the simulation time shared by every MAC of a run.
type Clock struct {
	Now int
}

type wireFrame struct {
	data   []byte
	txTime int
}

// Mac is one end of a point to point link.  Frames travel as bytes: they
// are encoded on Submit and decoded on Poll, so the two ends never share
// memory.
type Mac struct {
	Name  string
	addr  uint64
	clock *Clock

	adminUp bool
	peer    *Mac
	delay   int

	// frames waiting to cross the link, oldest first
	out []wireFrame
	// frames that have arrived
	in [][]byte

	capture *packet.CaptureWriter

	Dropped      uint64
	DecodeErrors uint64
}

func NewMac(name string, addr uint64, clock *Clock) *Mac {
	return &Mac{Name: name, addr: addr, clock: clock, adminUp: true}
}

func (m *Mac) MacAddress() uint64 { return m.addr }

// IsOperational is true while both ends of a connected link are up.
func (m *Mac) IsOperational() bool {
	return m.adminUp && m.peer != nil && m.peer.adminUp
}

func (m *Mac) Peer() *Mac { return m.peer }

func (m *Mac) SetCapture(c *packet.CaptureWriter) { m.capture = c }

// SetAdminState brings this end of the link up or down.
func (m *Mac) SetAdminState(up bool) {
	m.adminUp = up
}

// Connect joins a and b with a link of the given delay in ticks.
func Connect(a, b *Mac, delay int) error {
	if a == b {
		return fmt.Errorf("sim: %s cannot be linked to itself", a.Name)
	}
	if a.peer != nil || b.peer != nil {
		return fmt.Errorf("sim: %s or %s already linked", a.Name, b.Name)
	}
	if delay < 0 {
		return fmt.Errorf("sim: negative link delay %d", delay)
	}
	a.peer, b.peer = b, a
	a.delay, b.delay = delay, delay
	return nil
}

// Disconnect removes the link, dropping anything in flight.
func Disconnect(m *Mac) {
	if p := m.peer; p != nil {
		p.peer = nil
		p.flush()
		p.in = nil
	}
	m.peer = nil
	m.flush()
	m.in = nil
}

func (m *Mac) flush() {
	m.Dropped += uint64(len(m.out))
	m.out = nil
}

// Submit encodes f and queues it for the link.  Nothing is queued on a
// link that is not operational.
func (m *Mac) Submit(f *packet.Frame) {
	if !m.IsOperational() {
		m.Dropped++
		return
	}
	data, err := f.Marshal()
	if err != nil {
		debug.Logger.Err(fmt.Sprintf("%s: cannot encode %s: %s", m.Name, f, err))
		m.Dropped++
		return
	}
	m.out = append(m.out, wireFrame{data: data, txTime: m.clock.Now})
	if m.capture != nil {
		if err := m.capture.WriteFrame(m.clock.Now, data); err != nil {
			debug.Logger.Warning(fmt.Sprintf("%s: capture: %s", m.Name, err))
		}
	}
}

// Poll decodes and returns the next frame that has arrived, or nil.
// Frames that fail to decode are counted and skipped.
func (m *Mac) Poll() *packet.Frame {
	for len(m.in) > 0 {
		data := m.in[0]
		m.in[0] = nil
		m.in = m.in[1:]
		f, err := packet.DecodeFrame(data)
		if err != nil {
			m.DecodeErrors++
			debug.Logger.Debug(fmt.Sprintf("%s: undecodable frame: %s", m.Name, err))
			continue
		}
		return f
	}
	return nil
}

// Transmit moves every queued frame whose delay has elapsed to the peer,
// in order.  A MAC that is not operational loses its queue.
func (m *Mac) Transmit(now int) int {
	if !m.IsOperational() {
		m.flush()
		return 0
	}
	n := 0
	for len(m.out) > 0 && m.out[0].txTime+m.delay <= now {
		m.peer.in = append(m.peer.in, m.out[0].data)
		m.out[0] = wireFrame{}
		m.out = m.out[1:]
		n++
	}
	return n
}

// InFlight is the number of frames queued for the link.
func (m *Mac) InFlight() int { return len(m.out) }
