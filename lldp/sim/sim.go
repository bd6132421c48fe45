package sim

import (
	"fmt"

	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/utils"
)

// Simulation owns the devices and links of one run and advances them in
// lock step.
type Simulation struct {
	Clock    Clock
	registry *Registry
	devices  []Device
	byName   map[string]Device
	capture  *packet.CaptureWriter
}

func NewSimulation() *Simulation {
	return &Simulation{
		registry: NewRegistry(),
		byName:   make(map[string]Device),
	}
}

// NewSimulationFromScenario builds every device and link the scenario
// describes.
func NewSimulationFromScenario(sc *config.Scenario) (*Simulation, error) {
	s := NewSimulation()
	for _, ds := range sc.Devices {
		if _, err := s.AddDevice(ds); err != nil {
			return nil, err
		}
	}
	for _, l := range sc.Links {
		if err := s.Link(l.A, l.B, l.Delay); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Simulation) AddDevice(ds config.DeviceSpec) (Device, error) {
	if _, ok := s.byName[ds.Name]; ok {
		return nil, fmt.Errorf("sim: duplicate device %s", ds.Name)
	}
	var d Device
	switch ds.Kind {
	case config.DeviceBridge:
		d = NewBridge(s.registry, &s.Clock, ds.Name, ds.Ports, ds.LLDP)
	case config.DeviceEndStation:
		d = NewEndStation(s.registry, &s.Clock, ds.Name, ds.Ports, ds.LLDP)
	default:
		return nil, fmt.Errorf("sim: device %s has unknown type %q", ds.Name, ds.Kind)
	}
	for _, m := range d.Macs() {
		m.SetCapture(s.capture)
	}
	s.devices = append(s.devices, d)
	s.byName[ds.Name] = d
	debug.Logger.Info(fmt.Sprintf("sim: %s %s with %d ports", ds.Kind, ds.Name, ds.Ports))
	return d, nil
}

func (s *Simulation) Device(name string) Device { return s.byName[name] }

func (s *Simulation) Devices() []Device { return s.devices }

// Endpoint resolves "device/port" to its MAC.
func (s *Simulation) Endpoint(ep string) (*Mac, error) {
	e, err := config.ParseEndpoint(ep)
	if err != nil {
		return nil, err
	}
	d := s.byName[e.Device]
	if d == nil {
		return nil, fmt.Errorf("sim: unknown device in %s", ep)
	}
	m := d.Mac(e.Port)
	if m == nil {
		return nil, fmt.Errorf("sim: unknown port in %s", ep)
	}
	return m, nil
}

// Link connects two endpoints.
func (s *Simulation) Link(a, b string, delay int) error {
	ma, err := s.Endpoint(a)
	if err != nil {
		return err
	}
	mb, err := s.Endpoint(b)
	if err != nil {
		return err
	}
	if err := Connect(ma, mb, delay); err != nil {
		return err
	}
	debug.Logger.Info(fmt.Sprintf("sim: link %s - %s delay %d", a, b, delay))
	return nil
}

// SetLinkState brings the link at endpoint ep up or down at both ends.
func (s *Simulation) SetLinkState(ep string, up bool) error {
	m, err := s.Endpoint(ep)
	if err != nil {
		return err
	}
	m.SetAdminState(up)
	if p := m.Peer(); p != nil {
		p.SetAdminState(up)
	}
	debug.Logger.Info(fmt.Sprintf("sim: link at %s up %t", ep, up))
	return nil
}

// SetCapture records every frame submitted from now on.
func (s *Simulation) SetCapture(c *packet.CaptureWriter) {
	s.capture = c
	for _, d := range s.devices {
		for _, m := range d.Macs() {
			m.SetCapture(c)
		}
	}
}

// Tick advances time by one: counters first, then the machines of every
// device, then the links.
func (s *Simulation) Tick() {
	s.Clock.Now++
	for _, d := range s.devices {
		d.TimerTick()
	}
	for _, d := range s.devices {
		d.Run(false)
	}
	for _, d := range s.devices {
		for _, m := range d.Macs() {
			m.Transmit(s.Clock.Now)
		}
	}
}

func (s *Simulation) Run(ticks int) {
	for i := 0; i < ticks; i++ {
		s.Tick()
	}
}
