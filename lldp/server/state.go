//
//Copyright [2016] [SnapRoute Inc]
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//	 Unless required by applicable law or agreed to in writing, software
//	 distributed under the License is distributed on an "AS IS" BASIS,
//	 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//	 See the License for the specific language governing permissions and
//	 limitations under the License.
//
// _______  __       __________   ___      _______.____    __    ____  __  .___________.  ______  __    __
// |   ____||  |     |   ____\  \ /  /     /       |\   \  /  \  /   / |  | |           | /      ||  |  |  |
// |  |__   |  |     |  |__   \  V  /     |   (----` \   \/    \/   /  |  | `---|  |----`|  ,----'|  |__|  |
// |   __|  |  |     |   __|   >   <       \   \      \            /   |  |     |  |     |  |     |   __   |
// |  |     |  `----.|  |____ /  .  \  .----)   |      \    /\    /    |  |     |  |     |  `----.|  |  |  |
// |__|     |_______||_______/__/ \__\ |_______/        \__/  \__/     |__|     |__|      \______||__|  |__|
//

package server

import (
	"fmt"

	"l2/lldp/config"
	"l2/lldp/packet"
	"l2/lldp/protocol"
	"l2/lldp/utils"
)

/*  helper function to pull the well known strings out of a neighbor's
 *  xpdus
 */
func neighborInfo(nbr *lldp.MibEntry) config.NeighborInfo {
	info := config.NeighborInfo{
		ChassisMac: packet.Uint64ToMac(nbr.ChassisID.ChassisMac()).String(),
		PortNum:    nbr.PortID.PortNumber(),
		TTL:        nbr.RxTTL,
		TTLTimer:   nbr.TTLTimer,
		TotalSize:  nbr.TotalSize,
		Xpdus:      len(nbr.Xpdus),
		Pending:    nbr.Pending(),
	}
	for _, num := range nbr.Xpdus.Nums() {
		for _, tlv := range nbr.Xpdus[num].Tlvs {
			switch tlv.Type() {
			case packet.TLVTypeSystemName:
				info.SystemName = tlv.StringValue()
			case packet.TLVTypeSystemDescription:
				info.SystemDesc = tlv.StringValue()
			case packet.TLVTypePortDescription:
				info.PortDesc = tlv.StringValue()
			}
		}
	}
	return info
}

/*  helper function to fill the state of one port from its agent
 */
func (svr *LLDPServer) PopulateTLV(intfRef string, entry *config.IntfState) bool {
	gblInfo, exists := svr.lldpGblInfo[intfRef]
	if !exists {
		debug.Logger.Err(fmt.Sprintln("Entry not found for", intfRef))
		return exists
	}
	port := gblInfo.Port
	entry.IntfRef = intfRef
	entry.Enable = gblInfo.IsEnabled()
	entry.Operational = port.IsOperational()
	entry.AdminStatus = port.Cfg.AdminStatus.String()
	entry.LocalChassis = packet.Uint64ToMac(port.LocalMib.ChassisID.ChassisMac()).String()
	entry.LocalPort = port.PortNum
	entry.RxState = lldp.RxmStateStrMap[port.RxMachineFsm.Machine.Curr.CurrentState()]
	entry.TxState = lldp.TxmStateStrMap[port.TxMachineFsm.Machine.Curr.CurrentState()]
	entry.TxTimerState = lldp.TxTimerStateStrMap[port.TxTimerMachineFsm.Machine.Curr.CurrentState()]

	entry.Neighbors = nil
	for _, nbr := range port.Neighbors.Entries() {
		entry.Neighbors = append(entry.Neighbors, neighborInfo(nbr))
	}

	st := &port.Stats
	entry.FramesOut = st.FramesOut
	entry.FramesIn = st.FramesIn
	entry.FramesDiscarded = st.FramesDiscarded
	entry.FramesInErrors = st.FramesInErrors
	entry.Ageouts = st.Ageouts
	entry.TooManyNbrs = st.TooManyNeighbors
	entry.XreqOut = st.XreqOut
	entry.XreqIn = st.XreqIn
	entry.XpduOut = st.XpduOut
	entry.XpduIn = st.XpduIn
	entry.ShutdownsIn = st.ShutdownsIn
	return exists
}

/*  Server get bulk for lldp intfs
 */
func (svr *LLDPServer) GetIntfs(idx, cnt int) (int, int, []config.Intf) {
	var nextIdx int
	var count int

	if svr.lldpIntfStateSlice == nil {
		debug.Logger.Info("No lldp ports")
		return 0, 0, nil
	}
	length := len(svr.lldpIntfStateSlice)
	result := make([]config.Intf, 0, cnt)
	var i, j int
	for i, j = 0, idx; i < cnt && j < length; j++ {
		key := svr.lldpIntfStateSlice[j]
		gblInfo, exists := svr.lldpGblInfo[key]
		if !exists {
			continue
		}
		result = append(result, config.Intf{IntfRef: key, Enable: gblInfo.IsEnabled()})
		i++
	}
	if j < length {
		nextIdx = j
	}
	count = i
	return nextIdx, count, result
}

/*  Server get bulk for lldp intf state's. nextIdx is 0 once the last port
 *  has been returned
 */
func (svr *LLDPServer) GetIntfStates(idx, cnt int) (int, int, []config.IntfState) {
	var nextIdx int
	var count int

	if svr.lldpIntfStateSlice == nil {
		debug.Logger.Info("No lldp ports")
		return 0, 0, nil
	}

	length := len(svr.lldpIntfStateSlice)
	result := make([]config.IntfState, 0, cnt)

	var i, j int
	for i, j = 0, idx; i < cnt && j < length; j++ {
		var entry config.IntfState
		if !svr.PopulateTLV(svr.lldpIntfStateSlice[j], &entry) {
			return 0, 0, nil
		}
		result = append(result, entry)
		i++
	}

	if j < length {
		nextIdx = j
	}
	count = i
	return nextIdx, count, result
}

/*  Server get lldp interface state per interface
 */
func (svr *LLDPServer) GetIntfState(intfRef string) *config.IntfState {
	entry := config.IntfState{}
	if svr.PopulateTLV(intfRef, &entry) {
		return &entry
	}
	return nil
}
