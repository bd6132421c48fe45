// 802.1AB-2016 9.2.8 Transmit state machine
package lldp

import (
	"strings"

	"l2/utils/fsm"
)

const TxMachineModuleStr = "Tx Machine"

const (
	TxmStateNone = iota + 1
	TxmStateInitialize
	TxmStateIdle
	TxmStateShutdownFrame
	TxmStateInfoFrame
)

var TxmStateStrMap map[fsm.State]string

func TxMachineStrStateMapInit() {
	TxmStateStrMap = make(map[fsm.State]string)
	TxmStateStrMap[TxmStateNone] = "None"
	TxmStateStrMap[TxmStateInitialize] = "TxLldpInitialize"
	TxmStateStrMap[TxmStateIdle] = "TxIdle"
	TxmStateStrMap[TxmStateShutdownFrame] = "TxShutdownFrame"
	TxmStateStrMap[TxmStateInfoFrame] = "TxInfoFrame"
}

const (
	TxmEventBegin = iota + 1
	TxmEventNotPortEnabled
	TxmEventTxEnabled
	TxmEventTxDisabled
	TxmEventShutdownWhileExpired
	TxmEventTxNow
	TxmEventUnconditionalFallThrough
)

// LldpTxMachine holds FSM and current State
type LldpTxMachine struct {
	Machine *fsm.Machine

	// Reference to LldpPort
	p *LldpPort
}

func NewLldpTxMachine(p *LldpPort) *LldpTxMachine {
	return &LldpTxMachine{p: p}
}

func (txm *LldpTxMachine) LldpTxmLog(msg string) {
	LldpMachineLogger("DEBUG", TxMachineModuleStr, txm.p.Name, msg)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (txm *LldpTxMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if txm.Machine == nil {
		txm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	txm.Machine.Rules = r
	txm.Machine.Curr = &LldpStateEvent{
		strStateMap: TxmStateStrMap,
		logEna:      false,
		logger:      txm.LldpTxmLog,
		owner:       strings.Join([]string{TxMachineModuleStr, txm.p.Name}, " "),
	}

	return txm.Machine
}

func (txm *LldpTxMachine) LldpTxMachineInitialize(m fsm.Machine, data interface{}) fsm.State {
	return TxmStateInitialize
}

// LldpTxMachineIdle computes the TTL advertised by the next info frames.
func (txm *LldpTxMachine) LldpTxMachineIdle(m fsm.Machine, data interface{}) fsm.State {
	p := txm.p
	p.txTTL = p.Cfg.TxTTL()
	return TxmStateIdle
}

// LldpTxMachineShutdownFrame withdraws the local MIB from neighbors and
// holds off re-initialization for reInitDelay ticks.
func (txm *LldpTxMachine) LldpTxMachineShutdownFrame(m fsm.Machine, data interface{}) fsm.State {
	p := txm.p
	p.submit(p.ScopeAddr(), p.txShutdownFrame())
	p.txCredit--
	p.txShutdownWhile = p.Cfg.ReInitDelay
	p.sentManifest = false
	return TxmStateShutdownFrame
}

// LldpTxMachineInfoFrame sends the local MIB and consumes one credit.
func (txm *LldpTxMachine) LldpTxMachineInfoFrame(m fsm.Machine, data interface{}) fsm.State {
	p := txm.p
	p.submit(p.ScopeAddr(), p.txInfoFrame())
	p.txCredit--
	p.txNow = false
	return TxmStateInfoFrame
}

func (txm *LldpTxMachine) nextEvent() (fsm.Event, bool) {
	p := txm.p
	s := txm.Machine.Curr.CurrentState()
	txEnabled := p.Cfg.AdminStatus.TxEnabled()

	if !p.portEnabled && s != TxmStateInitialize && s != TxmStateNone {
		return TxmEventNotPortEnabled, true
	}

	switch s {
	case TxmStateInitialize:
		if p.portEnabled && txEnabled {
			return TxmEventTxEnabled, true
		}
	case TxmStateIdle:
		if !txEnabled {
			if p.txCredit > 0 {
				return TxmEventTxDisabled, true
			}
		} else if p.txNow && p.txCredit > 0 {
			return TxmEventTxNow, true
		}
	case TxmStateShutdownFrame:
		if p.txShutdownWhile == 0 {
			return TxmEventShutdownWhileExpired, true
		}
	case TxmStateInfoFrame:
		return TxmEventUnconditionalFallThrough, true
	}
	return 0, false
}

// Run evaluates the machine against the port variables.
func (txm *LldpTxMachine) Run(singleStep bool) int {
	return machineRun(txm.Machine, TxMachineModuleStr, singleStep, txm.nextEvent)
}

func LldpTxMachineFSMBuild(p *LldpPort) *LldpTxMachine {

	rules := fsm.Ruleset{}

	TxMachineStrStateMapInit()

	txm := NewLldpTxMachine(p)

	//BEGIN -> TX LLDP INITIALIZE
	rules.AddRule(TxmStateNone, TxmEventBegin, txm.LldpTxMachineInitialize)
	rules.AddRule(TxmStateInitialize, TxmEventBegin, txm.LldpTxMachineInitialize)
	rules.AddRule(TxmStateIdle, TxmEventBegin, txm.LldpTxMachineInitialize)
	rules.AddRule(TxmStateShutdownFrame, TxmEventBegin, txm.LldpTxMachineInitialize)
	rules.AddRule(TxmStateInfoFrame, TxmEventBegin, txm.LldpTxMachineInitialize)

	// NOT PORT ENABLED -> TX LLDP INITIALIZE
	rules.AddRule(TxmStateIdle, TxmEventNotPortEnabled, txm.LldpTxMachineInitialize)
	rules.AddRule(TxmStateShutdownFrame, TxmEventNotPortEnabled, txm.LldpTxMachineInitialize)
	rules.AddRule(TxmStateInfoFrame, TxmEventNotPortEnabled, txm.LldpTxMachineInitialize)

	// TX ENABLED -> TX IDLE
	rules.AddRule(TxmStateInitialize, TxmEventTxEnabled, txm.LldpTxMachineIdle)

	// TX DISABLED -> TX SHUTDOWN FRAME
	rules.AddRule(TxmStateIdle, TxmEventTxDisabled, txm.LldpTxMachineShutdownFrame)

	// SHUTDOWN WHILE == 0 -> TX LLDP INITIALIZE
	rules.AddRule(TxmStateShutdownFrame, TxmEventShutdownWhileExpired, txm.LldpTxMachineInitialize)

	// TX NOW -> TX INFO FRAME
	rules.AddRule(TxmStateIdle, TxmEventTxNow, txm.LldpTxMachineInfoFrame)

	// UCT -> TX IDLE
	rules.AddRule(TxmStateInfoFrame, TxmEventUnconditionalFallThrough, txm.LldpTxMachineIdle)

	// Create a new FSM and apply the rules
	txm.Apply(&rules)

	p.TxMachineFsm = txm
	return txm
}
