package packet

import (
	"bytes"
	"encoding/binary"

	"github.com/google/gopacket/layers"
)

const (
	TLVHeaderLen = 2
	TLVMaxLength = 511
	TLVMaxType   = 127
)

// TLV is a raw LLDP type/length/value record, header included.  Accessor
// offsets count from the first header octet, so the value starts at offset 2.
//
// A TLV shares its bytes with every copy of the struct; Put methods write
// through to all of them.  Use Clone for an independent record.
type TLV struct {
	raw []byte
}

var endTLV = []byte{0, 0}

// NewTLV allocates a zero filled record.  An invalid type or length yields an
// End record instead.
func NewTLV(tlvType uint8, length int) TLV {
	if tlvType == TLVTypeEnd || tlvType > TLVMaxType || length < 0 || length > TLVMaxLength {
		return TLV{raw: []byte{0, 0}}
	}
	raw := make([]byte, TLVHeaderLen+length)
	binary.BigEndian.PutUint16(raw[0:2], uint16(tlvType)<<9|uint16(length))
	return TLV{raw: raw}
}

// NewEndTLV returns the LLDPDU terminator.
func NewEndTLV() TLV {
	return TLV{raw: []byte{0, 0}}
}

// ParseTLV decodes one record from the front of b, returning false when b is
// too short for the header or for the length it declares.
func ParseTLV(b []byte) (TLV, bool) {
	if len(b) < TLVHeaderLen {
		return TLV{}, false
	}
	length := int(binary.BigEndian.Uint16(b[0:2]) & TLVMaxLength)
	if len(b) < TLVHeaderLen+length {
		return TLV{}, false
	}
	raw := make([]byte, TLVHeaderLen+length)
	copy(raw, b)
	return TLV{raw: raw}, true
}

// TLVFromValue converts a gopacket LLDP value into a TLV.
func TLVFromValue(v *layers.LinkLayerDiscoveryValue) TLV {
	if uint8(v.Type) > TLVMaxType || int(v.Length) > TLVMaxLength || int(v.Length) != len(v.Value) {
		return NewEndTLV()
	}
	t, _ := ParseTLV(EncodeTLV(v))
	return t
}

// Value converts t into the gopacket representation.
func (t TLV) Value() layers.LinkLayerDiscoveryValue {
	return layers.LinkLayerDiscoveryValue{
		Type:   layers.LLDPTLVType(t.Type()),
		Length: uint16(t.Length()),
		Value:  t.GetBytes(TLVHeaderLen, t.Length()),
	}
}

func (t TLV) header() uint16 {
	if len(t.raw) < TLVHeaderLen {
		return 0
	}
	return binary.BigEndian.Uint16(t.raw[0:2])
}

func (t TLV) Type() uint8 { return uint8(t.header() >> 9) }

func (t TLV) Length() int { return int(t.header() & TLVMaxLength) }

// Size is the number of octets the record occupies on the wire.
func (t TLV) Size() int { return TLVHeaderLen + t.Length() }

func (t TLV) IsEnd() bool { return t.Type() == TLVTypeEnd }

// Bytes returns a copy of the encoded record.
func (t TLV) Bytes() []byte {
	if len(t.raw) < TLVHeaderLen {
		return append([]byte(nil), endTLV...)
	}
	return append([]byte(nil), t.raw...)
}

func (t TLV) Equal(o TLV) bool {
	return bytes.Equal(t.Bytes(), o.Bytes())
}

func (t TLV) Clone() TLV {
	return TLV{raw: t.Bytes()}
}

func (t TLV) inRange(off, n int) bool {
	return off >= 0 && n >= 0 && off+n <= len(t.raw)
}

func (t TLV) getN(off, n int) uint64 {
	if !t.inRange(off, n) {
		return 0
	}
	var v uint64
	for _, b := range t.raw[off : off+n] {
		v = v<<8 | uint64(b)
	}
	return v
}

// putN never touches the header.
func (t TLV) putN(off, n int, v uint64) bool {
	if off < TLVHeaderLen || !t.inRange(off, n) {
		return false
	}
	for i := off + n - 1; i >= off; i-- {
		t.raw[i] = byte(v)
		v >>= 8
	}
	return true
}

func (t TLV) Get8(off int) uint8                { return uint8(t.getN(off, 1)) }
func (t TLV) Put8(off int, v uint8) bool        { return t.putN(off, 1, uint64(v)) }
func (t TLV) Get16(off int) uint16              { return uint16(t.getN(off, 2)) }
func (t TLV) Put16(off int, v uint16) bool      { return t.putN(off, 2, uint64(v)) }
func (t TLV) Get24(off int) uint32              { return uint32(t.getN(off, 3)) }
func (t TLV) Put24(off int, v uint32) bool      { return v < 1<<24 && t.putN(off, 3, uint64(v)) }
func (t TLV) Get32(off int) uint32              { return uint32(t.getN(off, 4)) }
func (t TLV) Put32(off int, v uint32) bool      { return t.putN(off, 4, uint64(v)) }
func (t TLV) GetAddr(off int) uint64            { return t.getN(off, 6) }
func (t TLV) PutAddr(off int, addr uint64) bool { return t.putN(off, 6, addr&0xffffffffffff) }
func (t TLV) Get64(off int) uint64              { return t.getN(off, 8) }
func (t TLV) Put64(off int, v uint64) bool      { return t.putN(off, 8, v) }

// GetBytes returns a copy of n octets at off, or nil when out of range.
func (t TLV) GetBytes(off, n int) []byte {
	if !t.inRange(off, n) {
		return nil
	}
	return append([]byte(nil), t.raw[off:off+n]...)
}

func (t TLV) PutBytes(off int, b []byte) bool {
	if off < TLVHeaderLen || !t.inRange(off, len(b)) {
		return false
	}
	copy(t.raw[off:], b)
	return true
}

// GetString reads n octets at off.  Out of range yields "".
func (t TLV) GetString(off, n int) string {
	return string(t.GetBytes(off, n))
}

func (t TLV) PutString(off int, s string) bool {
	return t.PutBytes(off, []byte(s))
}

// EncodeMandatoryTLV builds a chassis id or port id value: subtype then id.
func EncodeMandatoryTLV(Subtype byte, ID []byte) []byte {
	// 1 byte: subtype
	// N bytes: ID
	b := make([]byte, 1+len(ID))
	b[0] = byte(Subtype)
	copy(b[1:], ID)

	return b
}

// Marshall tlv information into binary form
// type : 7 bits
// leng : 9 bits
// value: N bytes
func EncodeTLV(tlv *layers.LinkLayerDiscoveryValue) []byte {
	typeLen := uint16(tlv.Type)<<9 | tlv.Length
	temp := make([]byte, 2+len(tlv.Value))
	binary.BigEndian.PutUint16(temp[0:2], typeLen)
	copy(temp[2:], tlv.Value)
	return temp
}
