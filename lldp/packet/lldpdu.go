package packet

// Lldpdu is an ordered TLV list.  The End TLV is implicit: Marshal appends
// it and Unmarshal stops at it.
type Lldpdu struct {
	TLVs []TLV
}

func NewLldpdu(tlvs ...TLV) *Lldpdu {
	return &Lldpdu{TLVs: tlvs}
}

func (pdu *Lldpdu) Add(tlvs ...TLV) {
	pdu.TLVs = append(pdu.TLVs, tlvs...)
}

// Len is the number of TLVs before the terminator.
func (pdu *Lldpdu) Len() int { return len(pdu.TLVs) }

// TLV returns the record at pos, or an End record when pos is out of range.
func (pdu *Lldpdu) TLV(pos int) TLV {
	if pos < 0 || pos >= len(pdu.TLVs) {
		return NewEndTLV()
	}
	return pdu.TLVs[pos]
}

// Size is the encoded length including the End TLV.
func (pdu *Lldpdu) Size() int {
	n := TLVHeaderLen
	for _, t := range pdu.TLVs {
		if t.IsEnd() {
			break
		}
		n += t.Size()
	}
	return n
}

func (pdu *Lldpdu) Marshal() []byte {
	b := make([]byte, 0, pdu.Size())
	for _, t := range pdu.TLVs {
		if t.IsEnd() {
			break
		}
		b = append(b, t.Bytes()...)
	}
	return append(b, endTLV...)
}

// UnmarshalLldpdu decodes TLVs until an End TLV or until b is exhausted or
// truncated.  Trailing padding decodes as End.
func UnmarshalLldpdu(b []byte) *Lldpdu {
	pdu := &Lldpdu{}
	for len(b) > 0 {
		t, ok := ParseTLV(b)
		if !ok || t.IsEnd() {
			break
		}
		pdu.TLVs = append(pdu.TLVs, t)
		b = b[t.Size():]
	}
	return pdu
}

func (pdu *Lldpdu) Clone() *Lldpdu {
	c := &Lldpdu{TLVs: make([]TLV, len(pdu.TLVs))}
	for i, t := range pdu.TLVs {
		c.TLVs[i] = t.Clone()
	}
	return c
}

func (pdu *Lldpdu) Equal(o *Lldpdu) bool {
	if len(pdu.TLVs) != len(o.TLVs) {
		return false
	}
	for i := range pdu.TLVs {
		if !pdu.TLVs[i].Equal(o.TLVs[i]) {
			return false
		}
	}
	return true
}
