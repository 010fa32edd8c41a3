package logs

import (
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"
)

// SetAllLoggers sets the level of every logger, keeping the chattiest networking subsystems quieter.
func SetAllLoggers(level logging.LogLevel) {
	logging.SetAllLoggers(level)
	_ = logging.SetLogLevel("addrutil", "INFO")
	_ = logging.SetLogLevel("dht", "ERROR")
	_ = logging.SetLogLevel("dht/RtRefreshManager", "FATAL")
	_ = logging.SetLogLevel("swarm2", "WARN")
	_ = logging.SetLogLevel("connmgr", "WARN")
	_ = logging.SetLogLevel("nat", "INFO")
	_ = logging.SetLogLevel("rcmgr", "WARN")
	_ = logging.SetLogLevel("fx", "WARN")
}

// SetModuleLevels applies overrides in the form <module>:<level>, e.g. das:debug.
func SetModuleLevels(overrides []string) error {
	for _, ll := range overrides {
		module, level, ok := strings.Cut(ll, ":")
		if !ok || module == "" {
			return fmt.Errorf("logs: override must be in form <module>:<level>, got %q", ll)
		}
		if err := logging.SetLogLevel(module, level); err != nil {
			return fmt.Errorf("logs: setting level of %s: %w", module, err)
		}
	}
	return nil
}
