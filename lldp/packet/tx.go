package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Marshal encodes the frame as an Ethernet II frame.  VLAN tags become
// Dot1Q layers; short frames are padded to the Ethernet minimum.
func (f *Frame) Marshal() ([]byte, error) {
	if f.Payload == nil {
		return nil, ErrNoPayload
	}
	// Construct ethernet information
	eth := &layers.Ethernet{
		SrcMAC:       Uint64ToMac(f.SrcAddr),
		DstMAC:       Uint64ToMac(f.DstAddr),
		EthernetType: f.Payload.EtherType(),
	}
	ls := []gopacket.SerializableLayer{eth}
	p := f.Payload
	for {
		tag, ok := p.(*VlanTag)
		if !ok {
			break
		}
		if tag.Inner == nil {
			return nil, ErrNoPayload
		}
		ls = append(ls, &layers.Dot1Q{
			Priority:       tag.Priority,
			VLANIdentifier: tag.VID,
			Type:           tag.Inner.EtherType(),
		})
		p = tag.Inner
	}
	payload, err := p.payloadBytes()
	if err != nil {
		return nil, err
	}
	ls = append(ls, gopacket.Payload(payload))

	// construct new buffer
	buffer := gopacket.NewSerializeBuffer()
	options := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}
	if err := gopacket.SerializeLayers(buffer, options, ls...); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
