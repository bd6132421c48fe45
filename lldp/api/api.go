package api

import (
	"l2/lldp/config"
	"l2/lldp/server"
	"sync"
)

type ApiLayer struct {
	server *server.LLDPServer
}

var lldpapi *ApiLayer = nil
var once sync.Once

/*  Singleton instance should be accesible only within api
 */
func getInstance() *ApiLayer {
	once.Do(func() {
		lldpapi = &ApiLayer{}
	})
	return lldpapi
}

func Init(svr *server.LLDPServer) {
	lldpapi = getInstance()
	lldpapi.server = svr
}

/*  Requests are queued and applied by the server before its next tick
 */
func SendGlobalConfig(intfRef string, enable bool) {
	lldpapi.server.GblCfgCh <- &config.Global{Port: intfRef, Enable: enable}
}

func SendPortStateChange(intfRef string, up bool) {
	lldpapi.server.IfStateCh <- &config.PortState{Port: intfRef, Up: up}
}

func GetIntfs(idx int, cnt int) (int, int, []config.Intf) {
	n, c, result := lldpapi.server.GetIntfs(idx, cnt)
	return n, c, result
}

func GetIntfStates(idx int, cnt int) (int, int, []config.IntfState) {
	n, c, result := lldpapi.server.GetIntfStates(idx, cnt)
	return n, c, result
}

func GetIntfState(intfRef string) *config.IntfState {
	return lldpapi.server.GetIntfState(intfRef)
}
