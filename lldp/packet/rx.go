package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const maxVlanTags = 2

// DecodeFrame is the inverse of Frame.Marshal.
func DecodeFrame(data []byte) (*Frame, error) {
	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return nil, err
	}
	payload, err := decodePayload(eth.EthernetType, eth.Payload, 0)
	if err != nil {
		return nil, err
	}
	return &Frame{
		DstAddr: MacToUint64(eth.DstMAC),
		SrcAddr: MacToUint64(eth.SrcMAC),
		Payload: payload,
	}, nil
}

func decodePayload(et layers.EthernetType, b []byte, depth int) (Payload, error) {
	switch et {
	case EtherTypeLLDP:
		return UnmarshalLldpdu(b), nil
	case EtherTypePlaypen:
		return unmarshalTestPayload(b)
	case EtherTypeCVlan:
		if depth >= maxVlanTags {
			return nil, ErrUnknownEtherType
		}
		var q layers.Dot1Q
		if err := q.DecodeFromBytes(b, gopacket.NilDecodeFeedback); err != nil {
			return nil, err
		}
		inner, err := decodePayload(q.Type, q.Payload, depth+1)
		if err != nil {
			return nil, err
		}
		return &VlanTag{VID: q.VLANIdentifier, Priority: q.Priority, Inner: inner}, nil
	}
	return nil, ErrUnknownEtherType
}
