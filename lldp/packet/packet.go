package packet

import (
	"net"

	"github.com/google/gopacket/layers"
)

const (
	LLDP_PROTO_DST_MAC = "01:80:c2:00:00:0e"
	LLDP_MAX_TTL       = 65535
)

// Scope addresses an agent may be attached to.
const (
	NearestBridgeDA         uint64 = 0x0180c200000e
	NearestNonTPMRBridgeDA  uint64 = 0x0180c2000003
	NearestCustomerBridgeDA uint64 = 0x0180c2000000
)

const (
	EtherTypeLLDP    = layers.EthernetTypeLinkLayerDiscovery
	EtherTypeCVlan   = layers.EthernetTypeDot1Q
	EtherTypePlaypen = layers.EthernetType(0x88b5)
)

// TLV types. Manifest, XREQ and XID live in the reserved range of 802.1AB.
const (
	TLVTypeEnd                = uint8(layers.LLDPTLVEnd)
	TLVTypeChassisID          = uint8(layers.LLDPTLVChassisID)
	TLVTypePortID             = uint8(layers.LLDPTLVPortID)
	TLVTypeTTL                = uint8(layers.LLDPTLVTTL)
	TLVTypePortDescription    = uint8(layers.LLDPTLVPortDescription)
	TLVTypeSystemName         = uint8(layers.LLDPTLVSysName)
	TLVTypeSystemDescription  = uint8(layers.LLDPTLVSysDescription)
	TLVTypeSystemCapabilities = uint8(layers.LLDPTLVSysCapabilities)
	TLVTypeMgmtAddress        = uint8(layers.LLDPTLVMgmtAddress)
	TLVTypeManifest           = uint8(9)
	TLVTypeXREQ               = uint8(10)
	TLVTypeXID                = uint8(11)
	TLVTypeOrgSpecific        = uint8(layers.LLDPTLVOrgSpecific)
)

var tlvTypeStr = map[uint8]string{
	TLVTypeEnd:                "End",
	TLVTypeChassisID:          "ChassisID",
	TLVTypePortID:             "PortID",
	TLVTypeTTL:                "TTL",
	TLVTypePortDescription:    "PortDescription",
	TLVTypeSystemName:         "SystemName",
	TLVTypeSystemDescription:  "SystemDescription",
	TLVTypeSystemCapabilities: "SystemCapabilities",
	TLVTypeMgmtAddress:        "MgmtAddress",
	TLVTypeManifest:           "Manifest",
	TLVTypeXREQ:               "XREQ",
	TLVTypeXID:                "XID",
	TLVTypeOrgSpecific:        "OrgSpecific",
}

func TLVTypeString(t uint8) string {
	if s, ok := tlvTypeStr[t]; ok {
		return s
	}
	return "Reserved"
}

// MacToUint64 packs a 6 byte hardware address into the low 48 bits.
func MacToUint64(mac net.HardwareAddr) uint64 {
	var v uint64
	for i := 0; i < len(mac) && i < 6; i++ {
		v = v<<8 | uint64(mac[i])
	}
	return v
}

func Uint64ToMac(v uint64) net.HardwareAddr {
	mac := make(net.HardwareAddr, 6)
	for i := 5; i >= 0; i-- {
		mac[i] = byte(v)
		v >>= 8
	}
	return mac
}
