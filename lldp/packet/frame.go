package packet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/gopacket/layers"
)

var (
	ErrNoPayload        = errors.New("packet: frame has no payload")
	ErrShortFrame       = errors.New("packet: frame too short")
	ErrUnknownEtherType = errors.New("packet: unknown ethertype")
)

// Payload is the closed set of frame contents: *Lldpdu, *TestPayload and
// *VlanTag.
type Payload interface {
	EtherType() layers.EthernetType
	payloadBytes() ([]byte, error)
}

type Frame struct {
	DstAddr uint64
	SrcAddr uint64
	Payload Payload
}

func NewLldpFrame(dst, src uint64, pdu *Lldpdu) *Frame {
	return &Frame{DstAddr: dst, SrcAddr: src, Payload: pdu}
}

// Lldpdu returns the LLDPDU carried directly in the frame, if any.  A tagged
// LLDPDU is not an LLDPDU for this agent.
func (f *Frame) Lldpdu() (*Lldpdu, bool) {
	pdu, ok := f.Payload.(*Lldpdu)
	return pdu, ok
}

func (f *Frame) String() string {
	et := "none"
	if f.Payload != nil {
		et = f.Payload.EtherType().String()
	}
	return fmt.Sprintf("DA %s SA %s type %s", Uint64ToMac(f.DstAddr), Uint64ToMac(f.SrcAddr), et)
}

func (pdu *Lldpdu) EtherType() layers.EthernetType { return EtherTypeLLDP }

func (pdu *Lldpdu) payloadBytes() ([]byte, error) { return pdu.Marshal(), nil }

// TestPayload is a sequence numbered blob used to check forwarding.
type TestPayload struct {
	Seq  uint32
	Data []byte
}

const testPayloadHdrLen = 6

func (tp *TestPayload) EtherType() layers.EthernetType { return EtherTypePlaypen }

func (tp *TestPayload) payloadBytes() ([]byte, error) {
	if len(tp.Data) > 0xffff {
		return nil, fmt.Errorf("packet: test payload of %d octets too large", len(tp.Data))
	}
	b := make([]byte, testPayloadHdrLen+len(tp.Data))
	binary.BigEndian.PutUint32(b[0:4], tp.Seq)
	binary.BigEndian.PutUint16(b[4:6], uint16(len(tp.Data)))
	copy(b[testPayloadHdrLen:], tp.Data)
	return b, nil
}

func unmarshalTestPayload(b []byte) (*TestPayload, error) {
	if len(b) < testPayloadHdrLen {
		return nil, ErrShortFrame
	}
	n := int(binary.BigEndian.Uint16(b[4:6]))
	if len(b) < testPayloadHdrLen+n {
		return nil, ErrShortFrame
	}
	return &TestPayload{
		Seq:  binary.BigEndian.Uint32(b[0:4]),
		Data: append([]byte(nil), b[testPayloadHdrLen:testPayloadHdrLen+n]...),
	}, nil
}

// VlanTag is a C-VLAN tag in front of another payload.
type VlanTag struct {
	VID      uint16
	Priority uint8
	Inner    Payload
}

func (v *VlanTag) EtherType() layers.EthernetType { return EtherTypeCVlan }

// payloadBytes of a tag is the inner payload; the tag itself is a Dot1Q layer.
func (v *VlanTag) payloadBytes() ([]byte, error) {
	if v.Inner == nil {
		return nil, ErrNoPayload
	}
	return v.Inner.payloadBytes()
}
