// 802.1AB-2016 9.2.9 Receive state machine
package lldp

import (
	"strings"

	"l2/utils/fsm"
)

const RxMachineModuleStr = "Rx Machine"

const (
	RxmStateNone = iota + 1
	RxmStateWaitOperational
	RxmStateRxInitialize
	RxmStateWaitFrame
)

var RxmStateStrMap map[fsm.State]string

func RxMachineStrStateMapInit() {
	RxmStateStrMap = make(map[fsm.State]string)
	RxmStateStrMap[RxmStateNone] = "None"
	RxmStateStrMap[RxmStateWaitOperational] = "WaitPortOperational"
	RxmStateStrMap[RxmStateRxInitialize] = "RxInitialize"
	RxmStateStrMap[RxmStateWaitFrame] = "RxWaitForFrame"
}

const (
	RxmEventBegin = iota + 1
	RxmEventNotPortEnabled
	RxmEventRxInfoAge
	RxmEventPortEnabled
	RxmEventRxEnabled
	RxmEventRxDisabled
	RxmEventRcvFrame
	RxmEventTimerExpired
)

// LldpRxMachine holds FSM and current State
type LldpRxMachine struct {
	Machine *fsm.Machine

	// Reference to LldpPort
	p *LldpPort
}

func NewLldpRxMachine(p *LldpPort) *LldpRxMachine {
	return &LldpRxMachine{p: p}
}

func (rxm *LldpRxMachine) LldpRxmLog(msg string) {
	LldpMachineLogger("DEBUG", RxMachineModuleStr, rxm.p.Name, msg)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (rxm *LldpRxMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if rxm.Machine == nil {
		rxm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	rxm.Machine.Rules = r
	rxm.Machine.Curr = &LldpStateEvent{
		strStateMap: RxmStateStrMap,
		logEna:      false,
		logger:      rxm.LldpRxmLog,
		owner:       strings.Join([]string{RxMachineModuleStr, rxm.p.Name}, " "),
	}

	return rxm.Machine
}

// rxEnabled is true while the agent accepts LLDPDUs.  Having advertised a
// manifest keeps it listening for the XPDUs that answer it.
func (rxm *LldpRxMachine) rxEnabled() bool {
	return rxm.p.Cfg.AdminStatus.RxEnabled() || rxm.p.sentManifest
}

// flush drops any frame waiting for the machine.
func (rxm *LldpRxMachine) flush() {
	p := rxm.p
	if len(p.rxFrames) > 0 {
		p.Stats.FramesDiscarded += uint64(len(p.rxFrames))
		p.rxFrames = nil
	}
}

// LldpRxMachineWaitOperational waits for the link.  Pending aging is
// completed before the state is entered.
func (rxm *LldpRxMachine) LldpRxMachineWaitOperational(m fsm.Machine, data interface{}) fsm.State {
	p := rxm.p
	if p.rxInfoAge {
		p.rxDeleteAgedInfo()
	}
	rxm.flush()
	return RxmStateWaitOperational
}

// LldpRxMachineDeleteAgedInfo removes timed out neighbors while the link
// is down.
func (rxm *LldpRxMachine) LldpRxMachineDeleteAgedInfo(m fsm.Machine, data interface{}) fsm.State {
	rxm.p.rxDeleteAgedInfo()
	return m.Curr.CurrentState()
}

func (rxm *LldpRxMachine) LldpRxMachineRxInitialize(m fsm.Machine, data interface{}) fsm.State {
	rxm.flush()
	return RxmStateRxInitialize
}

func (rxm *LldpRxMachine) LldpRxMachineWaitFrame(m fsm.Machine, data interface{}) fsm.State {
	return RxmStateWaitFrame
}

// LldpRxMachineRxFrame dispatches every queued LLDPDU, then waits again.
func (rxm *LldpRxMachine) LldpRxMachineRxFrame(m fsm.Machine, data interface{}) fsm.State {
	p := rxm.p
	frames := p.rxFrames
	p.rxFrames = nil
	for _, f := range frames {
		p.rxProcessFrame(f)
	}
	return RxmStateWaitFrame
}

// LldpRxMachineTimerExpired handles neighbors whose TTL ran out.
func (rxm *LldpRxMachine) LldpRxMachineTimerExpired(m fsm.Machine, data interface{}) fsm.State {
	rxm.p.rxCheckTimers()
	return RxmStateWaitFrame
}

// nextEvent derives the event the current port variables call for.
func (rxm *LldpRxMachine) nextEvent() (fsm.Event, bool) {
	p := rxm.p
	s := rxm.Machine.Curr.CurrentState()

	// global transition, aging in the frame wait state runs first
	if !p.portEnabled && s != RxmStateWaitOperational && !(p.rxInfoAge && s == RxmStateWaitFrame) {
		return RxmEventNotPortEnabled, true
	}

	switch s {
	case RxmStateWaitOperational:
		if p.rxInfoAge {
			return RxmEventRxInfoAge, true
		}
		if p.portEnabled {
			return RxmEventPortEnabled, true
		}
	case RxmStateRxInitialize:
		if p.rxInfoAge {
			return RxmEventRxInfoAge, true
		}
		if rxm.rxEnabled() {
			return RxmEventRxEnabled, true
		}
	case RxmStateWaitFrame:
		if !rxm.rxEnabled() {
			return RxmEventRxDisabled, true
		}
		if len(p.rxFrames) > 0 {
			return RxmEventRcvFrame, true
		}
		if p.rxInfoAge {
			return RxmEventTimerExpired, true
		}
	}
	return 0, false
}

// Run evaluates the machine against the port variables.
func (rxm *LldpRxMachine) Run(singleStep bool) int {
	return machineRun(rxm.Machine, RxMachineModuleStr, singleStep, rxm.nextEvent)
}

func LldpRxMachineFSMBuild(p *LldpPort) *LldpRxMachine {

	rules := fsm.Ruleset{}

	RxMachineStrStateMapInit()

	rxm := NewLldpRxMachine(p)

	//BEGIN -> WAIT PORT OPERATIONAL
	rules.AddRule(RxmStateNone, RxmEventBegin, rxm.LldpRxMachineWaitOperational)
	rules.AddRule(RxmStateWaitOperational, RxmEventBegin, rxm.LldpRxMachineWaitOperational)
	rules.AddRule(RxmStateRxInitialize, RxmEventBegin, rxm.LldpRxMachineWaitOperational)
	rules.AddRule(RxmStateWaitFrame, RxmEventBegin, rxm.LldpRxMachineWaitOperational)

	// NOT PORT ENABLED -> WAIT PORT OPERATIONAL
	rules.AddRule(RxmStateRxInitialize, RxmEventNotPortEnabled, rxm.LldpRxMachineWaitOperational)
	rules.AddRule(RxmStateWaitFrame, RxmEventNotPortEnabled, rxm.LldpRxMachineWaitOperational)

	// RX INFO AGE -> DELETE AGED INFO
	rules.AddRule(RxmStateWaitOperational, RxmEventRxInfoAge, rxm.LldpRxMachineDeleteAgedInfo)
	rules.AddRule(RxmStateRxInitialize, RxmEventRxInfoAge, rxm.LldpRxMachineDeleteAgedInfo)

	// PORT ENABLED -> RX INITIALIZE
	rules.AddRule(RxmStateWaitOperational, RxmEventPortEnabled, rxm.LldpRxMachineRxInitialize)

	// RX ENABLED -> WAIT FOR FRAME
	rules.AddRule(RxmStateRxInitialize, RxmEventRxEnabled, rxm.LldpRxMachineWaitFrame)

	// RX DISABLED -> RX INITIALIZE
	rules.AddRule(RxmStateWaitFrame, RxmEventRxDisabled, rxm.LldpRxMachineRxInitialize)

	// RCV FRAME -> RX FRAME -> WAIT FOR FRAME
	rules.AddRule(RxmStateWaitFrame, RxmEventRcvFrame, rxm.LldpRxMachineRxFrame)

	// RX INFO AGE -> TIMER EXPIRES -> WAIT FOR FRAME
	rules.AddRule(RxmStateWaitFrame, RxmEventTimerExpired, rxm.LldpRxMachineTimerExpired)

	// Create a new FSM and apply the rules
	rxm.Apply(&rules)

	p.RxMachineFsm = rxm
	return rxm
}
