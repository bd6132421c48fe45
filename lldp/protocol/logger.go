// logger.go
package lldp

import (
	"fmt"
	"strings"

	"l2/lldp/utils"
)

func LldpLogger(t string, msg string) {

	switch t {
	case "INFO":
		debug.Logger.Info(msg)
	case "DEBUG":
		debug.Logger.Debug(msg)
	case "ERROR":
		debug.Logger.Err(msg)
	case "WARNING":
		debug.Logger.Warning(msg)
	}
}

func LldpLoggerInfo(msg string) {
	LldpLogger("INFO", msg)
}

func LldpMachineLogger(t string, m string, port string, msg string) {
	LldpLogger(t, strings.Join([]string{m, fmt.Sprintf("port %s", port), msg}, ":"))
}
