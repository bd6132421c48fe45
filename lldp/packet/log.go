package packet

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

func (t TLV) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", TLVTypeString(t.Type()))
	enc.AddInt("length", t.Length())
	switch {
	case t.IsChassisID():
		enc.AddString("chassis", Uint64ToMac(t.ChassisMac()).String())
	case t.IsPortID():
		enc.AddUint32("port", t.PortNumber())
	case t.IsTTL():
		enc.AddUint16("ttl", t.TTL())
	case t.IsManifest():
		enc.AddString("returnAddr", Uint64ToMac(t.ManifestReturnAddr()).String())
		enc.AddUint32("totalSize", t.ManifestTotalSize())
		return enc.AddArray("xpdus", descriptors(t.ManifestDescriptors()))
	case t.IsXREQ():
		enc.AddString("requester", Uint64ToMac(t.XREQRequester()).String())
		enc.AddString("scope", Uint64ToMac(t.XREQScope()).String())
		return enc.AddArray("xpdus", descriptors(t.XREQDescriptors()))
	case t.IsXID():
		enc.AddString("scope", Uint64ToMac(t.XIDScope()).String())
		return enc.AddObject("xpdu", t.XIDDescriptor())
	case t.Type() == TLVTypeSystemName, t.Type() == TLVTypeSystemDescription, t.Type() == TLVTypePortDescription:
		enc.AddString("value", t.StringValue())
	case t.Type() == TLVTypeOrgSpecific:
		enc.AddString("oui", fmt.Sprintf("%08x", t.OUI()))
	}
	return nil
}

func (d XpduDescriptor) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint8("num", d.Num)
	enc.AddUint8("rev", d.Rev)
	enc.AddUint32("check", d.Check)
	return nil
}

type descriptors []XpduDescriptor

func (ds descriptors) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, d := range ds {
		if err := enc.AppendObject(d); err != nil {
			return err
		}
	}
	return nil
}

func (pdu *Lldpdu) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, t := range pdu.TLVs {
		if err := enc.AppendObject(t); err != nil {
			return err
		}
	}
	return nil
}

func (f *Frame) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("da", Uint64ToMac(f.DstAddr).String())
	enc.AddString("sa", Uint64ToMac(f.SrcAddr).String())
	switch p := f.Payload.(type) {
	case *Lldpdu:
		return enc.AddArray("lldpdu", p)
	case *TestPayload:
		enc.AddUint32("testSeq", p.Seq)
	case *VlanTag:
		enc.AddUint16("vid", p.VID)
	}
	return nil
}
