// File: server/types.go
// Package server provides the broker facade: it accepts connections
// and assigns them to one of two dispatch strategies driving the same
// protocol engine and registry.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"time"
)

// Strategy selects the concurrency model driving connections.
type Strategy string

const (
	// StrategyThreadPerConn dedicates one blocking reader goroutine to
	// each live connection.
	StrategyThreadPerConn Strategy = "tpc"

	// StrategyReactor multiplexes all connections over epoll readiness
	// events serviced by a bounded worker pool. Linux only.
	StrategyReactor Strategy = "reactor"
)

// ParseStrategy maps a selector string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyThreadPerConn:
		return StrategyThreadPerConn, nil
	case StrategyReactor:
		return StrategyReactor, nil
	default:
		return "", fmt.Errorf("unknown server type: %s", s)
	}
}

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr        string        // TCP bind address, e.g. ":7777"
	Strategy          Strategy      // dispatch strategy
	ReactorWorkers    int           // worker pool size for the reactor strategy
	ReadBufferSize    int           // per-connection read buffer size
	CloseDrainTimeout time.Duration // bound on flushing queued responses at close
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:        ":7777",
		Strategy:          StrategyThreadPerConn,
		ReactorWorkers:    4,
		ReadBufferSize:    4 * 1024,
		CloseDrainTimeout: 5 * time.Second,
	}
}
