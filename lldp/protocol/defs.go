// defs.go
package lldp

import (
	"strconv"
	"strings"

	"l2/utils/fsm"
)

// maximum transitions taken by one machine in one run when not single
// stepping
const MachineMaxLoop = 10

// number of descriptors requested by a single XREQ
const XreqMaxDescriptors = 2

// largest LLDPDU carried in one frame
const LldpduMaxSize = 1500

type LldpStateEvent struct {
	// current State
	s fsm.State
	// previous State
	ps fsm.State
	// current event
	e fsm.Event
	// previous event
	pe fsm.Event

	// event src
	esrc        string
	owner       string
	strStateMap map[fsm.State]string
	logEna      bool
	logger      func(string)
}

func (se *LldpStateEvent) LoggerSet(log func(string))                 { se.logger = log }
func (se *LldpStateEvent) EnableLogging(ena bool)                     { se.logEna = ena }
func (se *LldpStateEvent) IsLoggerEna() bool                          { return se.logEna }
func (se *LldpStateEvent) StateStrMapSet(strMap map[fsm.State]string) { se.strStateMap = strMap }
func (se *LldpStateEvent) PreviousState() fsm.State                   { return se.ps }
func (se *LldpStateEvent) CurrentState() fsm.State                    { return se.s }
func (se *LldpStateEvent) PreviousEvent() fsm.Event                   { return se.pe }
func (se *LldpStateEvent) CurrentEvent() fsm.Event                    { return se.e }
func (se *LldpStateEvent) SetEvent(es string, e fsm.Event) {
	se.esrc = es
	se.pe = se.e
	se.e = e
}
func (se *LldpStateEvent) SetState(s fsm.State) {
	se.ps = se.s
	se.s = s
	if se.IsLoggerEna() && se.ps != se.s {
		se.logger((strings.Join([]string{se.owner, "Src", se.esrc, "OldState", se.strStateMap[se.ps], "Evt", strconv.Itoa(int(se.e)), "NewState", se.strStateMap[s]}, ":")))
	}
}

// machineRun feeds events from next into m until next has nothing to offer,
// one event when singleStep is set.  Returns the number of transitions.
func machineRun(m *fsm.Machine, src string, singleStep bool, next func() (fsm.Event, bool)) int {
	transitions := 0
	for loop := 0; loop < MachineMaxLoop; loop++ {
		e, ok := next()
		if !ok {
			break
		}
		if err := m.ProcessEvent(src, e, nil); err != nil {
			LldpLogger("ERROR", strings.Join([]string{error.Error(err), src, strconv.Itoa(int(e))}, ":"))
			break
		}
		transitions++
		if singleStep {
			break
		}
	}
	return transitions
}
