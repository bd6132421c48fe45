// tx.go
package lldp

import (
	"l2/lldp/packet"
)

// txInfoFrame builds the periodic advertisement: identity, ttl, xpdu 0 and,
// when there is more than xpdu 0 to offer, a manifest of the rest.
func (p *LldpPort) txInfoFrame() *packet.Lldpdu {
	mib := p.LocalMib
	pdu := packet.NewLldpdu(mib.ChassisID, mib.PortID, packet.NewTTLTLV(uint16(p.txTTL)))
	pdu.Add(mib.Xpdu0()...)

	p.sentManifest = false
	if p.Cfg.ExtensionsEnabled && len(mib.Xpdus) > 1 {
		descs := mib.Descriptors()
		if len(descs) > packet.MaxManifestEntries {
			descs = descs[:packet.MaxManifestEntries]
		}
		pdu.Add(packet.NewManifestTLV(p.MacAddress(), uint32(mib.TotalSize), descs))
		p.sentManifest = true
	}
	return pdu
}

// txShutdownFrame builds the withdrawal sent when transmit is disabled.
func (p *LldpPort) txShutdownFrame() *packet.Lldpdu {
	return packet.NewLldpdu(p.LocalMib.ChassisID, p.LocalMib.PortID, packet.NewTTLTLV(0))
}

// txXreq asks nbr for the xpdus in descs.  The request is addressed to the
// neighbor's return address and carries the neighbor's identity.
func (p *LldpPort) txXreq(nbr *MibEntry, descs []packet.XpduDescriptor) {
	pdu := packet.NewLldpdu(nbr.ChassisID, nbr.PortID,
		packet.NewXREQTLV(p.MacAddress(), p.ScopeAddr(), descs))
	p.submit(nbr.NborAddr, pdu)
	p.Stats.XreqOut++
}

// txXpdu answers one XREQ descriptor with the local xpdu it names.
func (p *LldpPort) txXpdu(requester uint64, e *XpduMapEntry) {
	pdu := packet.NewLldpdu(p.LocalMib.ChassisID, p.LocalMib.PortID,
		packet.NewXIDTLV(p.ScopeAddr(), e.Desc))
	pdu.Add(e.Tlvs...)
	p.submit(requester, pdu)
	p.Stats.XpduOut++
}
