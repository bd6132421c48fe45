package debug

import (
	"l2/utils/logging"
)

// Logger is the process wide LLDP logger.
var Logger *logging.Writer = logging.NewNopLogger()

func SetLogger(logger *logging.Writer) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	Logger = logger
}
