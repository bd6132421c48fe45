package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type DeviceKind string

const (
	DeviceBridge     DeviceKind = "bridge"
	DeviceEndStation DeviceKind = "endstation"
)

const LinkDelayDefault = 1

// DeviceSpec describes one device of a scenario.  LLDP holds the agent
// configuration applied to each of its ports, defaults filled in.
type DeviceSpec struct {
	Name  string     `yaml:"name"`
	Kind  DeviceKind `yaml:"type"`
	Ports int        `yaml:"ports"`
	LLDP  PortConfig `yaml:"lldp"`
}

func (d *DeviceSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain DeviceSpec
	p := plain{LLDP: DefaultPortConfig()}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = DeviceSpec(p)
	return nil
}

type LinkSpec struct {
	A     string `yaml:"a"`
	B     string `yaml:"b"`
	Delay int    `yaml:"delay"`
}

func (l *LinkSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain LinkSpec
	p := plain{Delay: LinkDelayDefault}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*l = LinkSpec(p)
	return nil
}

type Scenario struct {
	Ticks   int          `yaml:"ticks"`
	Devices []DeviceSpec `yaml:"devices"`
	Links   []LinkSpec   `yaml:"links"`
}

type Endpoint struct {
	Device string
	Port   int
}

func (e Endpoint) String() string { return e.Device + "/" + strconv.Itoa(e.Port) }

// ParseEndpoint reads "device/port".
func ParseEndpoint(s string) (Endpoint, error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return Endpoint{}, fmt.Errorf("endpoint %q is not device/port", s)
	}
	port, err := strconv.Atoi(s[i+1:])
	if err != nil || port < 0 {
		return Endpoint{}, fmt.Errorf("endpoint %q has a bad port number", s)
	}
	return Endpoint{Device: s[:i], Port: port}, nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	sc := &Scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Scenario) Device(name string) (*DeviceSpec, bool) {
	for i := range sc.Devices {
		if sc.Devices[i].Name == name {
			return &sc.Devices[i], true
		}
	}
	return nil, false
}

// Validate fills in port counts and checks names, agent parameters and link
// endpoints.
func (sc *Scenario) Validate() error {
	if sc.Ticks < 0 {
		return fmt.Errorf("scenario: ticks %d: %w", sc.Ticks, ErrOutOfRange)
	}
	seen := make(map[string]bool)
	for i := range sc.Devices {
		d := &sc.Devices[i]
		if d.Name == "" || strings.Contains(d.Name, "/") {
			return fmt.Errorf("scenario: bad device name %q", d.Name)
		}
		if seen[d.Name] {
			return fmt.Errorf("scenario: duplicate device %q", d.Name)
		}
		seen[d.Name] = true
		switch d.Kind {
		case DeviceBridge:
			if d.Ports == 0 {
				d.Ports = 2
			}
		case DeviceEndStation, "":
			d.Kind = DeviceEndStation
			if d.Ports == 0 {
				d.Ports = 1
			}
		default:
			return fmt.Errorf("scenario: device %s has unknown type %q", d.Name, d.Kind)
		}
		if d.Ports < 0 || d.Ports > 0xffff {
			return fmt.Errorf("scenario: device %s ports %d: %w", d.Name, d.Ports, ErrOutOfRange)
		}
		if err := d.LLDP.Validate(); err != nil {
			return fmt.Errorf("scenario: device %s: %w", d.Name, err)
		}
	}
	used := make(map[Endpoint]bool)
	for _, l := range sc.Links {
		if l.Delay < 0 {
			return fmt.Errorf("scenario: link %s-%s delay %d: %w", l.A, l.B, l.Delay, ErrOutOfRange)
		}
		for _, s := range []string{l.A, l.B} {
			ep, err := ParseEndpoint(s)
			if err != nil {
				return fmt.Errorf("scenario: %w", err)
			}
			d, ok := sc.Device(ep.Device)
			if !ok {
				return fmt.Errorf("scenario: link endpoint %s names unknown device", s)
			}
			if ep.Port >= d.Ports {
				return fmt.Errorf("scenario: link endpoint %s: device has %d ports", s, d.Ports)
			}
			if used[ep] {
				return fmt.Errorf("scenario: endpoint %s used by more than one link", s)
			}
			used[ep] = true
		}
	}
	return nil
}
