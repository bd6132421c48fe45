package packet

import (
	"testing"
)

func UsedForTestOnlyInfoLldpdu() *Lldpdu {
	return NewLldpdu(
		NewChassisIDTLV(0x24a600010000),
		NewPortIDTLV(1),
		NewTTLTLV(31),
		NewStringTLV(TLVTypeSystemName, "Someone"),
		NewManifestTLV(0x24a600010001, 100, []XpduDescriptor{{1, 1, 1}}),
	)
}

func TestLldpduMarshalUnmarshal(t *testing.T) {
	pdu := UsedForTestOnlyInfoLldpdu()
	b := pdu.Marshal()
	if len(b) != pdu.Size() {
		t.Error("size mismatch", len(b), pdu.Size())
	}
	if b[len(b)-1] != 0 || b[len(b)-2] != 0 {
		t.Error("missing End TLV")
	}
	// padding after End must be ignored
	back := UnmarshalLldpdu(append(b, make([]byte, 20)...))
	if !back.Equal(pdu) {
		t.Error("round trip mismatch", back.Len(), pdu.Len())
	}
}

func TestLldpduStopsAtEnd(t *testing.T) {
	pdu := NewLldpdu(NewChassisIDTLV(1), NewEndTLV(), NewPortIDTLV(2))
	if pdu.Size() != 2+9 {
		t.Error("size should stop at End", pdu.Size())
	}
	back := UnmarshalLldpdu(pdu.Marshal())
	if back.Len() != 1 {
		t.Error("expected 1 TLV got", back.Len())
	}
}

func TestLldpduTruncated(t *testing.T) {
	b := UsedForTestOnlyInfoLldpdu().Marshal()
	back := UnmarshalLldpdu(b[:19])
	// chassis (9) + port (7) fit, ttl (4) is cut
	if back.Len() != 2 {
		t.Error("expected 2 TLVs from truncated buffer got", back.Len())
	}
	if !back.TLV(5).IsEnd() {
		t.Error("out of range position should read as End")
	}
}

func TestLldpduClone(t *testing.T) {
	pdu := UsedForTestOnlyInfoLldpdu()
	c := pdu.Clone()
	pdu.TLVs[2].Put16(2, 0)
	if c.TLV(2).TTL() != 31 {
		t.Error("clone shares bytes with original")
	}
}
