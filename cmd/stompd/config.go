// File: cmd/stompd/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/momentics/hioload-stomp/server"
)

// fileConfig maps stompd.toml keys onto server runtime settings.
type fileConfig struct {
	Addr              string `toml:"addr"`
	Strategy          string `toml:"strategy"`
	ReactorWorkers    int    `toml:"reactor_workers"`
	ReadBufferSize    int    `toml:"read_buffer_size"`
	CloseDrainSeconds int    `toml:"close_drain_seconds"`
	LogLevel          string `toml:"log_level"`
}

// loadConfig overlays a TOML file onto the defaults. Keys absent from
// the file keep their default values.
func loadConfig(path string) (*server.Config, string, error) {
	cfg := server.DefaultConfig()
	logLevel := ""
	if path == "" {
		return cfg, logLevel, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, "", fmt.Errorf("load stompd config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("strategy") {
		strategy, err := server.ParseStrategy(strings.TrimSpace(raw.Strategy))
		if err != nil {
			return nil, "", err
		}
		cfg.Strategy = strategy
	}
	if meta.IsDefined("reactor_workers") && raw.ReactorWorkers > 0 {
		cfg.ReactorWorkers = raw.ReactorWorkers
	}
	if meta.IsDefined("read_buffer_size") && raw.ReadBufferSize > 0 {
		cfg.ReadBufferSize = raw.ReadBufferSize
	}
	if meta.IsDefined("close_drain_seconds") && raw.CloseDrainSeconds > 0 {
		cfg.CloseDrainTimeout = time.Duration(raw.CloseDrainSeconds) * time.Second
	}
	if meta.IsDefined("log_level") {
		logLevel = strings.TrimSpace(raw.LogLevel)
	}
	return cfg, logLevel, nil
}
