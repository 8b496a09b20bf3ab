package main

import (
	"net"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
)

// setupLogger builds the root logger. --debug wins over the configured
// level.
func setupLogger(level string, debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// splitListenAddr parses "host:port" into its parts, keeping the fallback
// port when the string carries none.
func splitListenAddr(addr string, fallbackPort int) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, fallbackPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, fallbackPort
	}
	return host, port
}
