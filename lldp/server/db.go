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
	"database/sql"
	"fmt"

	"l2/lldp/config"
	"l2/lldp/utils"

	_ "github.com/mattn/go-sqlite3"
)

var lldpSchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + LLDP_GLOBAL_TABLE + ` (
		Vrf TEXT PRIMARY KEY,
		Enable INTEGER NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS ` + LLDP_INTF_TABLE + ` (
		IntfRef TEXT PRIMARY KEY,
		Enable INTEGER NOT NULL,
		AdminStatus TEXT,
		SystemName TEXT,
		SystemDescription TEXT,
		PortDescription TEXT)`,
	`CREATE TABLE IF NOT EXISTS ` + LLDP_NEIGHBOR_TABLE + ` (
		IntfRef TEXT NOT NULL,
		Tick INTEGER NOT NULL,
		ChassisMac TEXT NOT NULL,
		PortNum INTEGER NOT NULL,
		TTL INTEGER NOT NULL,
		TTLTimer INTEGER NOT NULL,
		TotalSize INTEGER NOT NULL,
		SystemName TEXT,
		SystemDescription TEXT,
		PortDescription TEXT,
		Xpdus INTEGER NOT NULL,
		Pending INTEGER NOT NULL,
		PRIMARY KEY (IntfRef, ChassisMac, PortNum))`,
}

func (svr *LLDPServer) InitDB() error {
	debug.Logger.Info("Initializing DB " + svr.dbPath)
	dbHdl, err := sql.Open("sqlite3", svr.dbPath)
	if err != nil {
		debug.Logger.Err(fmt.Sprintln("Failed to Create DB Handle", err))
		return err
	}
	// an in memory database lives and dies with its one connection
	dbHdl.SetMaxOpenConns(1)
	for _, stmt := range lldpSchema {
		if _, err = dbHdl.Exec(stmt); err != nil {
			debug.Logger.Err(fmt.Sprintln("Failed to create lldp tables", err))
			dbHdl.Close()
			return err
		}
	}
	svr.lldpDbHdl = dbHdl
	debug.Logger.Info("DB connection is established")
	return nil
}

func (svr *LLDPServer) CloseDB() {
	if svr.lldpDbHdl == nil {
		return
	}
	debug.Logger.Info("Closed lldp db")
	svr.lldpDbHdl.Close()
	svr.lldpDbHdl = nil
}

func (svr *LLDPServer) readLLDPIntfConfig() error {
	debug.Logger.Info("Reading LLDPIntf from db")
	rows, err := svr.lldpDbHdl.Query(`SELECT IntfRef, Enable, AdminStatus, SystemName,
		SystemDescription, PortDescription FROM ` + LLDP_INTF_TABLE)
	if err != nil {
		debug.Logger.Err(fmt.Sprintln("DB querry failed for LLDPIntf Config", err))
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var intfRef string
		var enable bool
		var adminStatus, sysName, sysDesc, portDesc sql.NullString
		if err := rows.Scan(&intfRef, &enable, &adminStatus, &sysName, &sysDesc, &portDesc); err != nil {
			return err
		}
		gblInfo, exists := svr.lldpGblInfo[intfRef]
		if !exists {
			debug.Logger.Warning(fmt.Sprintln("LLDPIntf entry for unknown port", intfRef))
			continue
		}
		if adminStatus.Valid {
			a, err := config.ParseAdminStatus(adminStatus.String)
			if err != nil {
				return fmt.Errorf("%s %s: %w", LLDP_INTF_TABLE, intfRef, err)
			}
			gblInfo.cfgAdminStatus = a
		}
		debug.Logger.Info(fmt.Sprintln("IntfRef", intfRef, "is set to", enable))
		switch enable {
		case true:
			gblInfo.Enable()
		case false:
			gblInfo.Disable()
		}
		port := gblInfo.Port
		for _, s := range []struct {
			v   sql.NullString
			set func(string) error
		}{
			{sysName, port.SetSystemName},
			{sysDesc, port.SetSystemDescription},
			{portDesc, port.SetPortDescription},
		} {
			if !s.v.Valid {
				continue
			}
			if err := s.set(s.v.String); err != nil {
				return fmt.Errorf("%s %s: %w", LLDP_INTF_TABLE, intfRef, err)
			}
		}
	}
	debug.Logger.Info("Done with LLDPIntf")
	return rows.Err()
}

func (svr *LLDPServer) readLLDPGlobalConfig() error {
	debug.Logger.Info("Reading LLDPGlobal from db")
	rows, err := svr.lldpDbHdl.Query(`SELECT Vrf, Enable FROM ` + LLDP_GLOBAL_TABLE)
	if err != nil {
		debug.Logger.Err(fmt.Sprintln("DB querry failed for LLDPGlobal Config", err))
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var vrf string
		var enable bool
		if err := rows.Scan(&vrf, &enable); err != nil {
			return err
		}
		debug.Logger.Info(fmt.Sprintln("Vrf", vrf, "lldp enable", enable))
		if !enable {
			svr.UpdateIntfConfig("all", false)
		}
	}
	debug.Logger.Info("Done with LLDPGlobal")
	return rows.Err()
}

// ReadDB applies the global switch first so that per interface rows can
// turn individual ports back on.
func (svr *LLDPServer) ReadDB() error {
	if svr.lldpDbHdl == nil {
		debug.Logger.Info("Invalid db HDL")
		return nil
	}
	if err := svr.readLLDPGlobalConfig(); err != nil {
		return err
	}
	return svr.readLLDPIntfConfig()
}

// SaveIntfConfig stores the enable flag of a port, leaving the other
// columns as they are.
func (svr *LLDPServer) SaveIntfConfig(intfRef string, enable bool) error {
	if svr.lldpDbHdl == nil {
		return nil
	}
	_, err := svr.lldpDbHdl.Exec(`INSERT INTO `+LLDP_INTF_TABLE+` (IntfRef, Enable) VALUES (?, ?)
		ON CONFLICT(IntfRef) DO UPDATE SET Enable = excluded.Enable`, intfRef, enable)
	return err
}

// SaveNeighbors replaces the neighbor snapshot with the current tables of
// every port.
func (svr *LLDPServer) SaveNeighbors() error {
	if svr.lldpDbHdl == nil {
		return nil
	}
	tx, err := svr.lldpDbHdl.Begin()
	if err != nil {
		return err
	}
	if _, err = tx.Exec(`DELETE FROM ` + LLDP_NEIGHBOR_TABLE); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO ` + LLDP_NEIGHBOR_TABLE + ` (IntfRef, Tick, ChassisMac,
		PortNum, TTL, TTLTimer, TotalSize, SystemName, SystemDescription, PortDescription,
		Xpdus, Pending) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	n := 0
	for _, key := range svr.lldpIntfStateSlice {
		for _, nbr := range svr.lldpGblInfo[key].Port.Neighbors.Entries() {
			info := neighborInfo(nbr)
			if _, err = stmt.Exec(key, svr.Now(), info.ChassisMac, info.PortNum, info.TTL,
				info.TTLTimer, info.TotalSize, info.SystemName, info.SystemDesc, info.PortDesc,
				info.Xpdus, info.Pending); err != nil {
				tx.Rollback()
				return err
			}
			n++
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	debug.Logger.Info(fmt.Sprintf("Saved %d neighbors at tick %d", n, svr.Now()))
	return nil
}

// LoadNeighbors reads back the last snapshot for one port.
func (svr *LLDPServer) LoadNeighbors(intfRef string) ([]config.NeighborInfo, error) {
	if svr.lldpDbHdl == nil {
		return nil, nil
	}
	rows, err := svr.lldpDbHdl.Query(`SELECT ChassisMac, PortNum, TTL, TTLTimer, TotalSize,
		SystemName, SystemDescription, PortDescription, Xpdus, Pending FROM `+LLDP_NEIGHBOR_TABLE+`
		WHERE IntfRef = ? ORDER BY ChassisMac, PortNum`, intfRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []config.NeighborInfo
	for rows.Next() {
		var info config.NeighborInfo
		if err := rows.Scan(&info.ChassisMac, &info.PortNum, &info.TTL, &info.TTLTimer,
			&info.TotalSize, &info.SystemName, &info.SystemDesc, &info.PortDesc,
			&info.Xpdus, &info.Pending); err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	return result, rows.Err()
}
