package packet

import (
	"github.com/google/gopacket/layers"
)

// XpduDescriptor identifies one extension PDU and its revision.  On the wire
// it is six octets: num, rev, check.
type XpduDescriptor struct {
	Num   uint8
	Rev   uint8
	Check uint32
}

const XpduDescriptorLen = 6

// SameRevision compares number and revision only.
func (d XpduDescriptor) SameRevision(o XpduDescriptor) bool {
	return d.Num == o.Num && d.Rev == o.Rev
}

func (t TLV) getDescriptor(off int) XpduDescriptor {
	return XpduDescriptor{Num: t.Get8(off), Rev: t.Get8(off + 1), Check: t.Get32(off + 2)}
}

func (t TLV) putDescriptor(off int, d XpduDescriptor) bool {
	return t.Put8(off, d.Num) && t.Put8(off+1, d.Rev) && t.Put32(off+2, d.Check)
}

const (
	chassisIDLen = 7
	portIDLen    = 5
	ttlLen       = 2
	ouiLen       = 4
)

// NewChassisIDTLV builds a MAC address subtype chassis id.
func NewChassisIDTLV(mac uint64) TLV {
	v := &layers.LinkLayerDiscoveryValue{
		Type:  layers.LLDPTLVChassisID,
		Value: EncodeMandatoryTLV(byte(layers.LLDPChassisIDSubTypeMACAddr), Uint64ToMac(mac)),
	}
	v.Length = uint16(len(v.Value))
	return TLVFromValue(v)
}

// NewPortIDTLV builds a locally assigned port id holding a 32 bit number.
func NewPortIDTLV(port uint32) TLV {
	t := NewTLV(TLVTypePortID, portIDLen)
	t.Put8(2, byte(layers.LLDPPortIDSubtypeLocal))
	t.Put32(3, port)
	return t
}

// IsChassisID reports whether t is a chassis id this agent can interpret.
func (t TLV) IsChassisID() bool {
	return t.Type() == TLVTypeChassisID && t.Length() >= 2
}

func (t TLV) IsPortID() bool {
	return t.Type() == TLVTypePortID && t.Length() >= 2
}

func (t TLV) ChassisMac() uint64 { return t.GetAddr(3) }

func (t TLV) PortNumber() uint32 { return t.Get32(3) }

func NewTTLTLV(ttl uint16) TLV {
	t := NewTLV(TLVTypeTTL, ttlLen)
	t.Put16(2, ttl)
	return t
}

func (t TLV) IsTTL() bool { return t.Type() == TLVTypeTTL && t.Length() == ttlLen }

func (t TLV) TTL() uint16 { return t.Get16(2) }

// NewStringTLV builds a System Name, System Description, Port Description
// or any other type whose value is a plain string.
func NewStringTLV(tlvType uint8, s string) TLV {
	if len(s) > TLVMaxLength {
		s = s[:TLVMaxLength]
	}
	t := NewTLV(tlvType, len(s))
	t.PutString(2, s)
	return t
}

func (t TLV) StringValue() string { return t.GetString(2, t.Length()) }

// NewOrgSpecificTLV builds an organizationally specific TLV.  oui carries
// the 3 octet OUI in its high bytes and the subtype in the low byte.
func NewOrgSpecificTLV(oui uint32, info []byte) TLV {
	if len(info) > TLVMaxLength-ouiLen {
		info = info[:TLVMaxLength-ouiLen]
	}
	t := NewTLV(TLVTypeOrgSpecific, ouiLen+len(info))
	t.Put32(2, oui)
	t.PutBytes(2+ouiLen, info)
	return t
}

func NewOrgStringTLV(oui uint32, s string) TLV {
	return NewOrgSpecificTLV(oui, []byte(s))
}

func (t TLV) OUI() uint32 { return t.Get32(2) }

func (t TLV) OrgString() string { return t.GetString(2+ouiLen, t.Length()-ouiLen) }

// Manifest layout:
//
//	2  return address (6)
//	8  total size (3)
//	11 descriptor count (1)
//	12 descriptors, 6 octets each
const (
	manifestFixedLen   = 10
	manifestReturnOff  = 2
	manifestTotalOff   = 8
	manifestCountOff   = 11
	manifestDescOff    = 12
	MaxManifestEntries = (TLVMaxLength - manifestFixedLen) / XpduDescriptorLen
)

// NewManifestTLV lists descs for a MIB of totalSize octets.  Requests for
// more descriptors than fit in one TLV, or a total size past 24 bits, yield
// an End record.
func NewManifestTLV(returnAddr uint64, totalSize uint32, descs []XpduDescriptor) TLV {
	if len(descs) > MaxManifestEntries || totalSize >= 1<<24 {
		return NewEndTLV()
	}
	t := NewTLV(TLVTypeManifest, manifestFixedLen+len(descs)*XpduDescriptorLen)
	t.PutAddr(manifestReturnOff, returnAddr)
	t.Put24(manifestTotalOff, totalSize)
	t.Put8(manifestCountOff, uint8(len(descs)))
	for i, d := range descs {
		t.putDescriptor(manifestDescOff+i*XpduDescriptorLen, d)
	}
	return t
}

// IsManifest checks type and that the declared count fits the length.
func (t TLV) IsManifest() bool {
	if t.Type() != TLVTypeManifest || t.Length() < manifestFixedLen {
		return false
	}
	return t.Length() == manifestFixedLen+int(t.Get8(manifestCountOff))*XpduDescriptorLen
}

func (t TLV) ManifestReturnAddr() uint64 { return t.GetAddr(manifestReturnOff) }

func (t TLV) ManifestTotalSize() uint32 { return t.Get24(manifestTotalOff) }

func (t TLV) ManifestDescriptors() []XpduDescriptor {
	n := int(t.Get8(manifestCountOff))
	descs := make([]XpduDescriptor, 0, n)
	for i := 0; i < n; i++ {
		off := manifestDescOff + i*XpduDescriptorLen
		if !t.inRange(off, XpduDescriptorLen) {
			break
		}
		descs = append(descs, t.getDescriptor(off))
	}
	return descs
}

// XREQ layout:
//
//	2  requester address (6)
//	8  scope address (6)
//	14 reserved (1)
//	15 descriptor count (1)
//	16 descriptors
const (
	xreqFixedLen   = 14
	xreqAddrOff    = 2
	xreqScopeOff   = 8
	xreqCountOff   = 15
	xreqDescOff    = 16
	MaxXreqEntries = (TLVMaxLength - xreqFixedLen) / XpduDescriptorLen
)

func NewXREQTLV(requester uint64, scope uint64, descs []XpduDescriptor) TLV {
	if len(descs) > MaxXreqEntries {
		return NewEndTLV()
	}
	t := NewTLV(TLVTypeXREQ, xreqFixedLen+len(descs)*XpduDescriptorLen)
	t.PutAddr(xreqAddrOff, requester)
	t.PutAddr(xreqScopeOff, scope)
	t.Put8(xreqCountOff, uint8(len(descs)))
	for i, d := range descs {
		t.putDescriptor(xreqDescOff+i*XpduDescriptorLen, d)
	}
	return t
}

func (t TLV) IsXREQ() bool {
	if t.Type() != TLVTypeXREQ || t.Length() < xreqFixedLen {
		return false
	}
	return t.Length() == xreqFixedLen+int(t.Get8(xreqCountOff))*XpduDescriptorLen
}

func (t TLV) XREQRequester() uint64 { return t.GetAddr(xreqAddrOff) }

func (t TLV) XREQScope() uint64 { return t.GetAddr(xreqScopeOff) }

func (t TLV) XREQDescriptors() []XpduDescriptor {
	n := int(t.Get8(xreqCountOff))
	descs := make([]XpduDescriptor, 0, n)
	for i := 0; i < n; i++ {
		off := xreqDescOff + i*XpduDescriptorLen
		if !t.inRange(off, XpduDescriptorLen) {
			break
		}
		descs = append(descs, t.getDescriptor(off))
	}
	return descs
}

// XID layout: scope address at 2, descriptor at 8.
const (
	xidLen      = 12
	xidScopeOff = 2
	xidDescOff  = 8
)

func NewXIDTLV(scope uint64, desc XpduDescriptor) TLV {
	t := NewTLV(TLVTypeXID, xidLen)
	t.PutAddr(xidScopeOff, scope)
	t.putDescriptor(xidDescOff, desc)
	return t
}

func (t TLV) IsXID() bool { return t.Type() == TLVTypeXID && t.Length() == xidLen }

func (t TLV) XIDScope() uint64 { return t.GetAddr(xidScopeOff) }

func (t TLV) XIDDescriptor() XpduDescriptor { return t.getDescriptor(xidDescOff) }
