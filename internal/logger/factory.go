package logger

import (
	"github.com/charmbracelet/log"
)

// SetupGlobal switches the global charm log between debug and quiet mode.
func SetupGlobal(debug bool) {
	if debug {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return
	}
	log.SetLevel(log.WarnLevel)
	log.SetReportTimestamp(false)
}
