// rx.go
package lldp

import (
	"fmt"

	"l2/lldp/packet"
)

type RxType int

const (
	RxTypeInvalid RxType = iota
	RxTypeNormal
	RxTypeShutdown
	RxTypeManifest
	RxTypeXpdu
	RxTypeXreq
)

var rxTypeStr = map[RxType]string{
	RxTypeInvalid:  "INVALID",
	RxTypeNormal:   "NORMAL",
	RxTypeShutdown: "SHUTDOWN",
	RxTypeManifest: "MANIFEST",
	RxTypeXpdu:     "XPDU",
	RxTypeXreq:     "XREQ",
}

func (t RxType) String() string { return rxTypeStr[t] }

// RxClassify decides what a received LLDPDU is.  unsolicited marks an
// extension PDU that is well formed but not for this agent.
func (p *LldpPort) RxClassify(pdu *packet.Lldpdu) (rxType RxType, unsolicited bool) {
	chassis, port, third := pdu.TLV(0), pdu.TLV(1), pdu.TLV(2)
	if !chassis.IsChassisID() || !port.IsPortID() {
		return RxTypeInvalid, false
	}
	ext := p.Cfg.ExtensionsEnabled

	switch {
	case third.IsTTL():
		rxType = RxTypeNormal
		if third.TTL() == 0 {
			rxType = RxTypeShutdown
		}
	case ext && third.IsXID():
		if third.XIDScope() != p.ScopeAddr() || p.Neighbors.Find(chassis, port) == nil {
			return RxTypeInvalid, true
		}
		rxType = RxTypeXpdu
	case ext && third.IsXREQ():
		if third.XREQScope() != p.ScopeAddr() || !p.LocalMib.Matches(chassis, port) {
			return RxTypeInvalid, true
		}
		rxType = RxTypeXreq
	default:
		return RxTypeInvalid, false
	}

	manifest := false
	for _, t := range pdu.TLVs[3:] {
		switch t.Type() {
		case packet.TLVTypeEnd:
			return rxType, false
		case packet.TLVTypeChassisID, packet.TLVTypePortID, packet.TLVTypeTTL:
			return RxTypeInvalid, false
		case packet.TLVTypeManifest:
			if manifest {
				return RxTypeInvalid, false
			}
			manifest = true
			if !ext {
				continue
			}
			if !t.IsManifest() || rxType == RxTypeXpdu || rxType == RxTypeXreq {
				return RxTypeInvalid, false
			}
			if rxType == RxTypeNormal {
				rxType = RxTypeManifest
			}
		case packet.TLVTypeXID, packet.TLVTypeXREQ:
			if ext {
				return RxTypeInvalid, false
			}
		}
	}
	return rxType, false
}

// rxPayloadTlvs returns the TLVs after the first three, up to End, leaving
// out the Manifest TLV when extensions are on.
func (p *LldpPort) rxPayloadTlvs(pdu *packet.Lldpdu) (tlvs []packet.TLV, manifest packet.TLV) {
	manifest = packet.NewEndTLV()
	if pdu.Len() <= 3 {
		return nil, manifest
	}
	for _, t := range pdu.TLVs[3:] {
		if t.IsEnd() {
			break
		}
		if p.Cfg.ExtensionsEnabled && t.Type() == packet.TLVTypeManifest {
			manifest = t
			continue
		}
		tlvs = append(tlvs, t)
	}
	return tlvs, manifest
}

// rxProcessFrame classifies and applies one LLDPDU.  Dropped frames leave no
// trace beyond the counters.
func (p *LldpPort) rxProcessFrame(f *packet.Frame) {
	pdu, ok := f.Lldpdu()
	if !ok {
		p.Stats.FramesDiscarded++
		return
	}
	p.Stats.FramesIn++

	rxType, unsolicited := p.RxClassify(pdu)
	if rxType == RxTypeInvalid {
		p.Stats.FramesDiscarded++
		if !unsolicited {
			p.Stats.FramesInErrors++
		}
		return
	}
	// a transmit only agent still answers requests for its own xpdus
	if !p.Cfg.AdminStatus.RxEnabled() && rxType != RxTypeXreq {
		p.Stats.FramesDiscarded++
		return
	}

	switch rxType {
	case RxTypeShutdown:
		p.rxShutdown(pdu)
	case RxTypeXreq:
		p.rxXreq(pdu)
	case RxTypeNormal:
		p.rxNormal(f, pdu)
	case RxTypeManifest:
		p.rxManifest(pdu)
	case RxTypeXpdu:
		p.rxXpdu(pdu)
	}
}

func (p *LldpPort) rxShutdown(pdu *packet.Lldpdu) {
	p.Stats.ShutdownsIn++
	if nbr := p.Neighbors.Find(pdu.TLV(0), pdu.TLV(1)); nbr != nil {
		p.rxDeleteInfo(nbr)
	}
}

func (p *LldpPort) rxDeleteInfo(nbr *MibEntry) {
	if p.Neighbors.Delete(nbr) {
		LldpMachineLogger("INFO", RxMachineModuleStr, p.Name,
			fmt.Sprintf("neighbor %s/%d removed", packet.Uint64ToMac(nbr.ChassisID.ChassisMac()), nbr.PortID.PortNumber()))
	}
}

// rxAdmitOrResize finds room for a neighbor MIB of size octets, creating
// the entry if it is new.  Returns nil when the budget forbids it.
func (p *LldpPort) rxAdmitOrResize(pdu *packet.Lldpdu, size int) (nbr *MibEntry, isNew bool) {
	chassis, port := pdu.TLV(0), pdu.TLV(1)
	nbr = p.Neighbors.Find(chassis, port)
	if nbr == nil {
		nbr = newMibEntry(chassis, port)
		nbr.TotalSize = size
		if !p.Neighbors.Admit(nbr) {
			p.Stats.TooManyNeighbors++
			p.Stats.FramesDiscarded++
			return nil, false
		}
		return nbr, true
	}
	if !p.Neighbors.Resize(nbr, size) {
		p.Stats.FramesDiscarded++
		return nil, false
	}
	return nbr, false
}

// rxNormal stores an ordinary advertisement.  Anything learned from an
// earlier manifest is dropped.
func (p *LldpPort) rxNormal(f *packet.Frame, pdu *packet.Lldpdu) {
	tlvs, _ := p.rxPayloadTlvs(pdu)
	size := mibFixedSize(pdu.TLV(0), pdu.TLV(1)) + tlvsSize(tlvs)

	nbr, isNew := p.rxAdmitOrResize(pdu, size)
	if nbr == nil {
		return
	}
	if x0, ok := nbr.Xpdus[0]; !ok || !tlvsEqual(x0.Tlvs, tlvs) {
		nbr.Xpdus = XpduMap{0: NewXpduMapEntry(packet.XpduDescriptor{}, tlvs)}
	} else {
		nbr.Xpdus = XpduMap{0: x0}
	}
	nbr.NewXpdus = nil
	nbr.NborAddr = f.SrcAddr
	nbr.refreshTTL(int(pdu.TLV(2).TTL()))
	if isNew {
		p.newNeighbor = true
	}
}

// rxManifest stores xpdu 0 and starts assembling the xpdus the manifest
// lists.  Entries already held with an identical descriptor are reused.
func (p *LldpPort) rxManifest(pdu *packet.Lldpdu) {
	tlvs, m := p.rxPayloadTlvs(pdu)
	pending := pendingXpdus(p.Neighbors.Find(pdu.TLV(0), pdu.TLV(1)), tlvs, m.ManifestDescriptors())
	// never charge less than the content already in hand
	size := int(m.ManifestTotalSize())
	if least := mibFixedSize(pdu.TLV(0), pdu.TLV(1)) + pending.Size(); size < least {
		size = least
	}

	nbr, isNew := p.rxAdmitOrResize(pdu, size)
	if nbr == nil {
		return
	}
	nbr.NborAddr = m.ManifestReturnAddr()
	if cur, ok := nbr.Xpdus[0]; !ok || !tlvsEqual(cur.Tlvs, tlvs) {
		nbr.Xpdus[0] = pending[0].Clone()
	}
	nbr.NewXpdus = pending
	nbr.refreshTTL(int(pdu.TLV(2).TTL()))
	if isNew {
		p.newNeighbor = true
	}
	p.rxCheckManifest(nbr)
}

// pendingXpdus builds the map a manifest describes.  nbr may be nil.
func pendingXpdus(nbr *MibEntry, xpdu0 []packet.TLV, descs []packet.XpduDescriptor) XpduMap {
	pending := XpduMap{0: NewXpduMapEntry(packet.XpduDescriptor{}, xpdu0)}
	for _, d := range descs {
		if d.Num == 0 {
			continue
		}
		if nbr != nil {
			if e, ok := nbr.NewXpdus[d.Num]; ok && e.Desc == d {
				pending[d.Num] = e.Clone()
				continue
			}
			if e, ok := nbr.Xpdus[d.Num]; ok && e.Desc == d {
				c := e.Clone()
				c.Status = XpduCurrent
				pending[d.Num] = c
				continue
			}
		}
		pending[d.Num] = &XpduMapEntry{Desc: d, Status: XpduUpdate}
	}
	return pending
}

// rxXpdu fills the pending entry the XID names, if it was asked for.
func (p *LldpPort) rxXpdu(pdu *packet.Lldpdu) {
	p.Stats.XpduIn++
	nbr := p.Neighbors.Find(pdu.TLV(0), pdu.TLV(1))
	if nbr == nil || nbr.NewXpdus == nil {
		p.Stats.FramesDiscarded++
		return
	}
	d := pdu.TLV(2).XIDDescriptor()
	e, ok := nbr.NewXpdus[d.Num]
	if !ok || !e.Status.outstanding() || !e.Desc.SameRevision(d) {
		p.Stats.FramesDiscarded++
		return
	}
	tlvs, _ := p.rxPayloadTlvs(pdu)
	// the declared total size only reserves room, the xpdus actually held
	// are charged against the budget too
	size := mibFixedSize(nbr.ChassisID, nbr.PortID) + nbr.NewXpdus.Size() - e.Size + tlvsSize(tlvs)
	if size > nbr.TotalSize && !p.Neighbors.Resize(nbr, size) {
		p.Stats.TooManyNeighbors++
		p.Stats.FramesDiscarded++
		return
	}
	e.SetTlvs(tlvs)
	e.Status = XpduNew
	p.rxCheckManifest(nbr)
}

// rxXreq answers each requested descriptor that matches the current local
// revision with one XPDU.  Stale requests are ignored.
func (p *LldpPort) rxXreq(pdu *packet.Lldpdu) {
	p.Stats.XreqIn++
	x := pdu.TLV(2)
	requester := x.XREQRequester()
	for _, d := range x.XREQDescriptors() {
		e, ok := p.LocalMib.Xpdus[d.Num]
		if !ok || d.Num == 0 || !e.Desc.SameRevision(d) {
			continue
		}
		p.txXpdu(requester, e)
	}
}

// rxCheckManifest requests the next xpdus when nothing is outstanding and
// promotes the pending map once every entry is in.  Returns true when the
// neighbor MIB is complete.
func (p *LldpPort) rxCheckManifest(nbr *MibEntry) bool {
	pending := nbr.NewXpdus
	if pending == nil {
		return true
	}
	outstanding := false
	var updates []uint8
	for _, n := range pending.Nums() {
		switch pending[n].Status {
		case XpduRequested, XpduRetried:
			outstanding = true
		case XpduUpdate:
			updates = append(updates, n)
		}
	}
	if outstanding {
		nbr.compressTTL(p.Cfg.XreqRetryFloor, false)
		return false
	}
	if len(updates) > 0 {
		if len(updates) > XreqMaxDescriptors {
			updates = updates[:XreqMaxDescriptors]
		}
		descs := make([]packet.XpduDescriptor, 0, len(updates))
		for _, n := range updates {
			pending[n].Status = XpduRequested
			descs = append(descs, pending[n].Desc)
		}
		p.txXreq(nbr, descs)
		nbr.compressTTL(p.Cfg.XreqRetryFloor, true)
		return false
	}

	nbr.Xpdus = pending
	nbr.NewXpdus = nil
	nbr.restoreTTL()
	return true
}

// rxCheckTimers handles every neighbor whose TTL timer ran out: retry an
// unanswered request once, otherwise age the neighbor out.
func (p *LldpPort) rxCheckTimers() {
	p.rxInfoAge = false
	for _, nbr := range p.Neighbors.Entries() {
		if nbr.TTLTimer > 0 {
			continue
		}
		if p.portEnabled && nbr.NewXpdus != nil {
			retried := false
			var requested []packet.XpduDescriptor
			for _, n := range nbr.NewXpdus.Nums() {
				switch e := nbr.NewXpdus[n]; e.Status {
				case XpduRetried:
					retried = true
				case XpduRequested:
					requested = append(requested, e.Desc)
				}
			}
			if !retried && len(requested) > 0 {
				for _, d := range requested {
					nbr.NewXpdus[d.Num].Status = XpduRetried
				}
				p.txXreq(nbr, requested)
				nbr.compressTTL(p.Cfg.XreqRetryFloor, true)
				continue
			}
		}
		p.Stats.Ageouts++
		p.rxDeleteInfo(nbr)
	}
}

// rxDeleteAgedInfo removes every neighbor whose TTL timer is zero.
func (p *LldpPort) rxDeleteAgedInfo() {
	p.rxInfoAge = false
	for _, nbr := range p.Neighbors.Entries() {
		if nbr.TTLTimer == 0 {
			p.Stats.Ageouts++
			p.rxDeleteInfo(nbr)
		}
	}
}
