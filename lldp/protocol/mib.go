// mib.go
package lldp

import (
	"hash/crc32"
	"sort"

	"l2/lldp/packet"
)

type XpduStatus uint8

const (
	XpduCurrent XpduStatus = iota
	XpduNew
	XpduUpdate
	XpduRequested
	XpduRetried
)

var xpduStatusStr = map[XpduStatus]string{
	XpduCurrent:   "CURRENT",
	XpduNew:       "NEW",
	XpduUpdate:    "UPDATE",
	XpduRequested: "REQUESTED",
	XpduRetried:   "RETRIED",
}

func (s XpduStatus) String() string { return xpduStatusStr[s] }

// outstanding means an XREQ naming this entry has not been answered
func (s XpduStatus) outstanding() bool { return s == XpduRequested || s == XpduRetried }

type XpduMapEntry struct {
	Desc   packet.XpduDescriptor
	Status XpduStatus
	Tlvs   []packet.TLV
	// octets taken by Tlvs on the wire
	Size int
}

func NewXpduMapEntry(desc packet.XpduDescriptor, tlvs []packet.TLV) *XpduMapEntry {
	e := &XpduMapEntry{Desc: desc, Status: XpduCurrent}
	e.SetTlvs(tlvs)
	return e
}

// SetTlvs stores private copies of tlvs.
func (e *XpduMapEntry) SetTlvs(tlvs []packet.TLV) {
	e.Tlvs = cloneTlvs(tlvs)
	e.Size = tlvsSize(e.Tlvs)
}

func (e *XpduMapEntry) Clone() *XpduMapEntry {
	c := *e
	c.Tlvs = cloneTlvs(e.Tlvs)
	return &c
}

func cloneTlvs(tlvs []packet.TLV) []packet.TLV {
	c := make([]packet.TLV, len(tlvs))
	for i, t := range tlvs {
		c[i] = t.Clone()
	}
	return c
}

func tlvsSize(tlvs []packet.TLV) int {
	n := 0
	for _, t := range tlvs {
		n += t.Size()
	}
	return n
}

func tlvsEqual(a, b []packet.TLV) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// tlvsCheck is the descriptor check value for an xpdu.
func tlvsCheck(tlvs []packet.TLV) uint32 {
	h := crc32.NewIEEE()
	for _, t := range tlvs {
		h.Write(t.Bytes())
	}
	return h.Sum32()
}

type XpduMap map[uint8]*XpduMapEntry

// Nums returns the xpdu numbers in ascending order.
func (m XpduMap) Nums() []uint8 {
	nums := make([]uint8, 0, len(m))
	for n := range m {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

func (m XpduMap) Size() int {
	n := 0
	for _, e := range m {
		n += e.Size
	}
	return n
}

func (m XpduMap) Clone() XpduMap {
	if m == nil {
		return nil
	}
	c := make(XpduMap, len(m))
	for n, e := range m {
		c[n] = e.Clone()
	}
	return c
}

// MibEntry is the local MIB of a port or the MIB learned from one neighbor.
type MibEntry struct {
	ChassisID packet.TLV
	PortID    packet.TLV
	RxTTL     int
	TTLTimer  int
	TotalSize int
	Xpdus     XpduMap

	// neighbor only
	NborAddr uint64
	NewXpdus XpduMap

	// TTL left over when the timer was shortened to wait for an XPDU
	ttlRemainder int
	compressed   bool
}

// overhead of chassis id, port id and ttl
func mibFixedSize(chassis, port packet.TLV) int {
	return chassis.Size() + port.Size() + packet.NewTTLTLV(0).Size()
}

func newMibEntry(chassis, port packet.TLV) *MibEntry {
	return &MibEntry{
		ChassisID: chassis.Clone(),
		PortID:    port.Clone(),
		Xpdus:     make(XpduMap),
	}
}

// ComputeSize is the octet count of identity, ttl and every xpdu.
func (mib *MibEntry) ComputeSize() int {
	return mibFixedSize(mib.ChassisID, mib.PortID) + mib.Xpdus.Size()
}

// Descriptors lists every xpdu but 0, the content of a Manifest TLV.
func (mib *MibEntry) Descriptors() []packet.XpduDescriptor {
	descs := make([]packet.XpduDescriptor, 0, len(mib.Xpdus))
	for _, n := range mib.Xpdus.Nums() {
		if n == 0 {
			continue
		}
		descs = append(descs, mib.Xpdus[n].Desc)
	}
	return descs
}

func (mib *MibEntry) Matches(chassis, port packet.TLV) bool {
	return mib.ChassisID.Equal(chassis) && mib.PortID.Equal(port)
}

// Xpdu0 returns the TLVs carried in the neighbor's own LLDPDU.
func (mib *MibEntry) Xpdu0() []packet.TLV {
	if e, ok := mib.Xpdus[0]; ok {
		return e.Tlvs
	}
	return nil
}

// Pending reports whether a manifest update is being assembled.
func (mib *MibEntry) Pending() bool { return mib.NewXpdus != nil }

func (mib *MibEntry) IsCompressed() bool { return mib.compressed }

func (mib *MibEntry) refreshTTL(ttl int) {
	mib.RxTTL = ttl
	mib.TTLTimer = ttl
	mib.ttlRemainder = 0
	mib.compressed = false
}

// retryWindow is roughly ttl/32, never less than floor.
func (mib *MibEntry) retryWindow(floor int) int {
	w := (mib.RxTTL+31)/32 + 1
	if w < floor {
		w = floor
	}
	return w
}

// compressTTL shortens the TTL timer so a lost XREQ or XPDU is noticed
// quickly.  A fresh request always restarts the window, otherwise an
// already shortened timer is left alone.
func (mib *MibEntry) compressTTL(floor int, rearm bool) {
	if mib.compressed && !rearm {
		return
	}
	w := mib.retryWindow(floor)
	if !mib.compressed {
		if mib.TTLTimer > w {
			mib.ttlRemainder = mib.TTLTimer - w
		} else {
			mib.ttlRemainder = 0
		}
		mib.compressed = true
	}
	if mib.TTLTimer > w || rearm {
		mib.TTLTimer = w
	}
}

func (mib *MibEntry) restoreTTL() {
	if !mib.compressed {
		return
	}
	mib.TTLTimer += mib.ttlRemainder
	mib.ttlRemainder = 0
	mib.compressed = false
}

// NeighborTable keeps neighbor MIBs in arrival order within a byte budget.
type NeighborTable struct {
	entries []*MibEntry
	used    int
	budget  int
}

func NewNeighborTable(budget int) *NeighborTable {
	return &NeighborTable{budget: budget}
}

func (nt *NeighborTable) Len() int    { return len(nt.entries) }
func (nt *NeighborTable) Used() int   { return nt.used }
func (nt *NeighborTable) Budget() int { return nt.budget }

// Entries returns a snapshot of the table.
func (nt *NeighborTable) Entries() []*MibEntry {
	return append([]*MibEntry(nil), nt.entries...)
}

func (nt *NeighborTable) Find(chassis, port packet.TLV) *MibEntry {
	for _, e := range nt.entries {
		if e.Matches(chassis, port) {
			return e
		}
	}
	return nil
}

// Admit adds e unless its TotalSize would take the table past the budget.
func (nt *NeighborTable) Admit(e *MibEntry) bool {
	if e.TotalSize < 0 || nt.used+e.TotalSize > nt.budget {
		return false
	}
	nt.entries = append(nt.entries, e)
	nt.used += e.TotalSize
	return true
}

// Resize changes the TotalSize of a member, refusing growth past the budget.
func (nt *NeighborTable) Resize(e *MibEntry, size int) bool {
	if size < 0 || nt.used-e.TotalSize+size > nt.budget {
		return false
	}
	nt.used += size - e.TotalSize
	e.TotalSize = size
	return true
}

func (nt *NeighborTable) Delete(e *MibEntry) bool {
	for i, x := range nt.entries {
		if x == e {
			nt.entries = append(nt.entries[:i], nt.entries[i+1:]...)
			nt.used -= e.TotalSize
			return true
		}
	}
	return false
}

func (nt *NeighborTable) SetBudget(budget int) { nt.budget = budget }
