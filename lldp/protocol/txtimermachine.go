// 802.1AB-2016 9.2.10 Transmit timer state machine
package lldp

import (
	"strings"

	"l2/utils/fsm"
)

const TxTimerMachineModuleStr = "Tx Timer Machine"

const (
	TxTimerStateNone = iota + 1
	TxTimerStateInitialize
	TxTimerStateIdle
	TxTimerStateExpires
	TxTimerStateSignalTx
	TxTimerStateFastStart
)

var TxTimerStateStrMap map[fsm.State]string

func TxTimerMachineStrStateMapInit() {
	TxTimerStateStrMap = make(map[fsm.State]string)
	TxTimerStateStrMap[TxTimerStateNone] = "None"
	TxTimerStateStrMap[TxTimerStateInitialize] = "TxTimerInitialize"
	TxTimerStateStrMap[TxTimerStateIdle] = "TxTimerIdle"
	TxTimerStateStrMap[TxTimerStateExpires] = "TxTimerExpires"
	TxTimerStateStrMap[TxTimerStateSignalTx] = "SignalTx"
	TxTimerStateStrMap[TxTimerStateFastStart] = "TxFastStart"
}

const (
	TxTimerEventBegin = iota + 1
	TxTimerEventNotEnabled
	TxTimerEventEnabled
	TxTimerEventNewNeighbor
	TxTimerEventTxTTRExpired
	TxTimerEventLocalChange
	TxTimerEventUnconditionalFallThrough
)

// LldpTxTimerMachine holds FSM and current State
type LldpTxTimerMachine struct {
	Machine *fsm.Machine

	// Reference to LldpPort
	p *LldpPort
}

func NewLldpTxTimerMachine(p *LldpPort) *LldpTxTimerMachine {
	return &LldpTxTimerMachine{p: p}
}

func (ttm *LldpTxTimerMachine) LldpTxTimermLog(msg string) {
	LldpMachineLogger("DEBUG", TxTimerMachineModuleStr, ttm.p.Name, msg)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (ttm *LldpTxTimerMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if ttm.Machine == nil {
		ttm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	ttm.Machine.Rules = r
	ttm.Machine.Curr = &LldpStateEvent{
		strStateMap: TxTimerStateStrMap,
		logEna:      false,
		logger:      ttm.LldpTxTimermLog,
		owner:       strings.Join([]string{TxTimerMachineModuleStr, ttm.p.Name}, " "),
	}

	return ttm.Machine
}

func (ttm *LldpTxTimerMachine) enabled() bool {
	p := ttm.p
	return p.portEnabled && p.Cfg.AdminStatus.TxEnabled()
}

// LldpTxTimerMachineInitialize resets the pacing variables and fills the
// credit bucket.
func (ttm *LldpTxTimerMachine) LldpTxTimerMachineInitialize(m fsm.Machine, data interface{}) fsm.State {
	p := ttm.p
	p.txNow = false
	p.localChange = false
	p.txTTR = 0
	p.txFast = 0
	p.newNeighbor = false
	p.txCredit = p.Cfg.TxCreditMax
	return TxTimerStateInitialize
}

func (ttm *LldpTxTimerMachine) LldpTxTimerMachineIdle(m fsm.Machine, data interface{}) fsm.State {
	return TxTimerStateIdle
}

// LldpTxTimerMachineFastStart arms the fast transmission countdown.
func (ttm *LldpTxTimerMachine) LldpTxTimerMachineFastStart(m fsm.Machine, data interface{}) fsm.State {
	p := ttm.p
	p.newNeighbor = false
	if p.txFast == 0 {
		p.txFast = p.Cfg.TxFastInit
	}
	return TxTimerStateFastStart
}

func (ttm *LldpTxTimerMachine) LldpTxTimerMachineExpires(m fsm.Machine, data interface{}) fsm.State {
	p := ttm.p
	if p.txFast > 0 {
		p.txFast--
	}
	return TxTimerStateExpires
}

// LldpTxTimerMachineSignalTx tells the transmit machine to send and
// schedules the next refresh.
func (ttm *LldpTxTimerMachine) LldpTxTimerMachineSignalTx(m fsm.Machine, data interface{}) fsm.State {
	p := ttm.p
	p.txNow = true
	p.localChange = false
	if p.txFast > 0 {
		p.txTTR = p.Cfg.MsgFastTx
	} else {
		p.txTTR = p.Cfg.MsgTxInterval
	}
	return TxTimerStateSignalTx
}

func (ttm *LldpTxTimerMachine) nextEvent() (fsm.Event, bool) {
	p := ttm.p
	s := ttm.Machine.Curr.CurrentState()

	if !ttm.enabled() && s != TxTimerStateInitialize && s != TxTimerStateNone {
		return TxTimerEventNotEnabled, true
	}

	switch s {
	case TxTimerStateInitialize:
		if ttm.enabled() {
			return TxTimerEventEnabled, true
		}
	case TxTimerStateIdle:
		if p.newNeighbor {
			return TxTimerEventNewNeighbor, true
		}
		if p.txTTR == 0 {
			return TxTimerEventTxTTRExpired, true
		}
		if p.localChange {
			return TxTimerEventLocalChange, true
		}
	case TxTimerStateFastStart, TxTimerStateExpires, TxTimerStateSignalTx:
		return TxTimerEventUnconditionalFallThrough, true
	}
	return 0, false
}

// Run evaluates the machine against the port variables.
func (ttm *LldpTxTimerMachine) Run(singleStep bool) int {
	return machineRun(ttm.Machine, TxTimerMachineModuleStr, singleStep, ttm.nextEvent)
}

func LldpTxTimerMachineFSMBuild(p *LldpPort) *LldpTxTimerMachine {

	rules := fsm.Ruleset{}

	TxTimerMachineStrStateMapInit()

	ttm := NewLldpTxTimerMachine(p)

	//BEGIN -> TX TIMER INITIALIZE
	rules.AddRule(TxTimerStateNone, TxTimerEventBegin, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateInitialize, TxTimerEventBegin, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateIdle, TxTimerEventBegin, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateExpires, TxTimerEventBegin, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateSignalTx, TxTimerEventBegin, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateFastStart, TxTimerEventBegin, ttm.LldpTxTimerMachineInitialize)

	// NOT ENABLED -> TX TIMER INITIALIZE
	rules.AddRule(TxTimerStateIdle, TxTimerEventNotEnabled, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateExpires, TxTimerEventNotEnabled, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateSignalTx, TxTimerEventNotEnabled, ttm.LldpTxTimerMachineInitialize)
	rules.AddRule(TxTimerStateFastStart, TxTimerEventNotEnabled, ttm.LldpTxTimerMachineInitialize)

	// ENABLED -> TX TIMER IDLE
	rules.AddRule(TxTimerStateInitialize, TxTimerEventEnabled, ttm.LldpTxTimerMachineIdle)

	// NEW NEIGHBOR -> TX FAST START
	rules.AddRule(TxTimerStateIdle, TxTimerEventNewNeighbor, ttm.LldpTxTimerMachineFastStart)

	// TXTTR == 0 -> TX TIMER EXPIRES
	rules.AddRule(TxTimerStateIdle, TxTimerEventTxTTRExpired, ttm.LldpTxTimerMachineExpires)

	// LOCAL CHANGE -> SIGNAL TX
	rules.AddRule(TxTimerStateIdle, TxTimerEventLocalChange, ttm.LldpTxTimerMachineSignalTx)

	// UCT
	rules.AddRule(TxTimerStateFastStart, TxTimerEventUnconditionalFallThrough, ttm.LldpTxTimerMachineExpires)
	rules.AddRule(TxTimerStateExpires, TxTimerEventUnconditionalFallThrough, ttm.LldpTxTimerMachineSignalTx)
	rules.AddRule(TxTimerStateSignalTx, TxTimerEventUnconditionalFallThrough, ttm.LldpTxTimerMachineIdle)

	// Create a new FSM and apply the rules
	ttm.Apply(&rules)

	p.TxTimerMachineFsm = ttm
	return ttm
}
