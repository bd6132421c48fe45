// port.go
package lldp

import (
	"errors"
	"fmt"

	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/utils"

	"go.uber.org/zap"
)

// OUI and subtype of the organizationally specific TLV in xpdu 3
const DefaultOrgOUI = 0x000001aa
const DefaultOrgString = "Somehow"

var ErrXpduTooLarge = errors.New("xpdu does not fit in one LLDPDU")

// Transport is the service the port gets from the MAC below it.
type Transport interface {
	// Submit queues f for transmission, dropping it if the link is down
	Submit(f *packet.Frame)
	// Poll returns the next received frame or nil
	Poll() *packet.Frame
	IsOperational() bool
	MacAddress() uint64
}

type PortStats struct {
	FramesOut        uint64
	FramesIn         uint64
	FramesDiscarded  uint64
	FramesInErrors   uint64
	Ageouts          uint64
	TooManyNeighbors uint64
	XreqOut          uint64
	XreqIn           uint64
	XpduOut          uint64
	XpduIn           uint64
	ShutdownsIn      uint64
}

// LldpPort is one LLDP agent attached to one MAC.
type LldpPort struct {
	Name    string
	PortNum uint32
	Cfg     config.PortConfig

	iss Transport

	LocalMib  *MibEntry
	Neighbors *NeighborTable

	// variables shared by the state machines
	portEnabled     bool
	rxInfoAge       bool
	newNeighbor     bool
	localChange     bool
	sentManifest    bool
	txNow           bool
	txTTR           int
	txFast          int
	txCredit        int
	txTTL           int
	txShutdownWhile int

	// LLDPDUs waiting for the receive machine
	rxFrames []*packet.Frame
	// everything else, for the layer above
	indications []*packet.Frame

	Stats PortStats

	RxMachineFsm      *LldpRxMachine
	TxMachineFsm      *LldpTxMachine
	TxTimerMachineFsm *LldpTxTimerMachine
}

// NewLldpPort builds the port, its local MIB from cfg, and its state
// machines, each left in its initial state.
func NewLldpPort(name string, chassisMac uint64, portNum uint32, iss Transport, cfg config.PortConfig) *LldpPort {
	p := &LldpPort{
		Name:      name,
		PortNum:   portNum,
		Cfg:       cfg,
		iss:       iss,
		Neighbors: NewNeighborTable(cfg.MaxNeighborMibBytes),
	}
	p.LocalMib = newMibEntry(packet.NewChassisIDTLV(chassisMac), packet.NewPortIDTLV(portNum))
	p.LocalMib.Xpdus[0] = p.newLocalXpdu(0, []packet.TLV{packet.NewStringTLV(packet.TLVTypeSystemName, cfg.SystemName)})
	p.LocalMib.Xpdus[1] = p.newLocalXpdu(1, []packet.TLV{packet.NewStringTLV(packet.TLVTypeSystemDescription, cfg.SystemDescription)})
	p.LocalMib.Xpdus[2] = p.newLocalXpdu(2, []packet.TLV{packet.NewStringTLV(packet.TLVTypePortDescription, cfg.PortDescription)})
	p.LocalMib.Xpdus[3] = p.newLocalXpdu(3, []packet.TLV{packet.NewOrgStringTLV(DefaultOrgOUI, DefaultOrgString)})
	p.LocalMib.TotalSize = p.LocalMib.ComputeSize()

	p.BEGIN()
	return p
}

func (p *LldpPort) newLocalXpdu(num uint8, tlvs []packet.TLV) *XpduMapEntry {
	return NewXpduMapEntry(packet.XpduDescriptor{Num: num, Rev: 1, Check: tlvsCheck(tlvs)}, tlvs)
}

// BEGIN (re)creates the state machines and drives each to its initialize
// state.
func (p *LldpPort) BEGIN() {
	p.rxFrames = nil
	LldpRxMachineFSMBuild(p)
	LldpTxTimerMachineFSMBuild(p)
	LldpTxMachineFSMBuild(p)

	p.RxMachineFsm.Machine.Start(RxmStateNone)
	p.RxMachineFsm.Machine.ProcessEvent("BEGIN", RxmEventBegin, nil)
	p.TxTimerMachineFsm.Machine.Start(TxTimerStateNone)
	p.TxTimerMachineFsm.Machine.ProcessEvent("BEGIN", TxTimerEventBegin, nil)
	p.TxMachineFsm.Machine.Start(TxmStateNone)
	p.TxMachineFsm.Machine.ProcessEvent("BEGIN", TxmEventBegin, nil)
}

func (p *LldpPort) EnableLogging(ena bool) {
	p.RxMachineFsm.Machine.Curr.EnableLogging(ena)
	p.TxMachineFsm.Machine.Curr.EnableLogging(ena)
	p.TxTimerMachineFsm.Machine.Curr.EnableLogging(ena)
}

func (p *LldpPort) MacAddress() uint64 { return p.iss.MacAddress() }

func (p *LldpPort) IsOperational() bool { return p.iss.IsOperational() }

func (p *LldpPort) ScopeAddr() uint64 { return uint64(p.Cfg.ScopeAddr) }

func (p *LldpPort) TxCredit() int { return p.txCredit }

// TimerTick advances every per port countdown by one tick.
func (p *LldpPort) TimerTick() {
	if p.txTTR > 0 {
		p.txTTR--
	}
	if p.txShutdownWhile > 0 {
		p.txShutdownWhile--
	}
	if p.txCredit < p.Cfg.TxCreditMax {
		p.txCredit++
	}
	if p.txCredit > p.Cfg.TxCreditMax {
		p.txCredit = p.Cfg.TxCreditMax
	}
	for _, nbr := range p.Neighbors.entries {
		if nbr.TTLTimer > 0 {
			nbr.TTLTimer--
			if nbr.TTLTimer == 0 {
				p.rxInfoAge = true
			}
		}
	}
}

// Run gives the receive path, then the transmit path, one pass.
func (p *LldpPort) Run(singleStep bool) int {
	return p.RunRx(singleStep) + p.RunTx(singleStep)
}

// RunRx drains the transport and runs the receive machine.  Frames the
// machine did not take are discarded.
func (p *LldpPort) RunRx(singleStep bool) int {
	p.portEnabled = p.iss.IsOperational()
	p.receive()
	n := p.RxMachineFsm.Run(singleStep)
	if len(p.rxFrames) > 0 {
		p.Stats.FramesDiscarded += uint64(len(p.rxFrames))
		p.rxFrames = nil
	}
	return n
}

func (p *LldpPort) RunTx(singleStep bool) int {
	p.portEnabled = p.iss.IsOperational()
	return p.TxTimerMachineFsm.Run(singleStep) + p.TxMachineFsm.Run(singleStep)
}

// receive sorts ingress frames: LLDPDUs addressed to the scope or to this
// port go to the receive machine, the rest go up as indications.
func (p *LldpPort) receive() {
	for f := p.iss.Poll(); f != nil; f = p.iss.Poll() {
		_, isLldp := f.Lldpdu()
		if isLldp && (f.DstAddr == p.ScopeAddr() || f.DstAddr == p.MacAddress()) {
			if ce := debug.Logger.Zap().Check(zap.DebugLevel, "rx lldpdu"); ce != nil {
				ce.Write(zap.String("port", p.Name), zap.Object("frame", f))
			}
			p.rxFrames = append(p.rxFrames, f)
		} else {
			p.indications = append(p.indications, f)
		}
	}
}

// Indication returns the next frame not consumed by LLDP, or nil.
func (p *LldpPort) Indication() *packet.Frame {
	if len(p.indications) == 0 {
		return nil
	}
	f := p.indications[0]
	p.indications[0] = nil
	p.indications = p.indications[1:]
	return f
}

// Request transmits a frame on behalf of the layer above.
func (p *LldpPort) Request(f *packet.Frame) {
	p.iss.Submit(f)
}

func (p *LldpPort) submit(dst uint64, pdu *packet.Lldpdu) {
	f := packet.NewLldpFrame(dst, p.MacAddress(), pdu)
	if ce := debug.Logger.Zap().Check(zap.DebugLevel, "tx lldpdu"); ce != nil {
		ce.Write(zap.String("port", p.Name), zap.Object("frame", f))
	}
	p.iss.Submit(f)
	p.Stats.FramesOut++
}

// SetXpdu installs tlvs as local xpdu num.  A change bumps the revision,
// refreshes the check and size and flags a local change.
func (p *LldpPort) SetXpdu(num uint8, tlvs []packet.TLV) error {
	size := tlvsSize(tlvs)
	overhead := p.LocalMib.ChassisID.Size() + p.LocalMib.PortID.Size() + packet.NewXIDTLV(0, packet.XpduDescriptor{}).Size() + packet.TLVHeaderLen
	if num == 0 {
		overhead = infoFrameOverhead(p.LocalMib)
	}
	if overhead+size > LldpduMaxSize {
		return fmt.Errorf("xpdu %d of %d octets: %w", num, size, ErrXpduTooLarge)
	}
	e, ok := p.LocalMib.Xpdus[num]
	if ok && tlvsEqual(e.Tlvs, tlvs) {
		return nil
	}
	if !ok {
		if num != 0 && len(p.LocalMib.Descriptors()) >= packet.MaxManifestEntries {
			return fmt.Errorf("xpdu %d: manifest full: %w", num, ErrXpduTooLarge)
		}
		p.LocalMib.Xpdus[num] = p.newLocalXpdu(num, tlvs)
	} else {
		e.SetTlvs(tlvs)
		e.Desc.Rev++
		e.Desc.Check = tlvsCheck(e.Tlvs)
	}
	p.LocalMib.TotalSize = p.LocalMib.ComputeSize()
	p.localChange = true
	return nil
}

// infoFrameOverhead is everything an Info LLDPDU carries besides xpdu 0,
// counting a full Manifest TLV.
func infoFrameOverhead(mib *MibEntry) int {
	manifest := packet.NewManifestTLV(0, 0, make([]packet.XpduDescriptor, packet.MaxManifestEntries))
	return mib.ChassisID.Size() + mib.PortID.Size() + packet.NewTTLTLV(0).Size() + manifest.Size() + packet.TLVHeaderLen
}

// DeleteXpdu removes xpdu num.  Xpdu 0 is emptied rather than removed.
func (p *LldpPort) DeleteXpdu(num uint8) {
	if num == 0 {
		p.SetXpdu(0, nil)
		return
	}
	if _, ok := p.LocalMib.Xpdus[num]; !ok {
		return
	}
	delete(p.LocalMib.Xpdus, num)
	p.LocalMib.TotalSize = p.LocalMib.ComputeSize()
	p.localChange = true
}

func (p *LldpPort) SetSystemName(s string) error {
	p.Cfg.SystemName = s
	return p.SetXpdu(0, []packet.TLV{packet.NewStringTLV(packet.TLVTypeSystemName, s)})
}

func (p *LldpPort) SetSystemDescription(s string) error {
	p.Cfg.SystemDescription = s
	return p.SetXpdu(1, []packet.TLV{packet.NewStringTLV(packet.TLVTypeSystemDescription, s)})
}

func (p *LldpPort) SetPortDescription(s string) error {
	p.Cfg.PortDescription = s
	return p.SetXpdu(2, []packet.TLV{packet.NewStringTLV(packet.TLVTypePortDescription, s)})
}

func (p *LldpPort) SetOrgSpecific(oui uint32, s string) error {
	return p.SetXpdu(3, []packet.TLV{packet.NewOrgStringTLV(oui, s)})
}

// SetAdminStatus takes effect on the next run of the machines.
func (p *LldpPort) SetAdminStatus(a config.AdminStatus) {
	p.Cfg.AdminStatus = a
}
