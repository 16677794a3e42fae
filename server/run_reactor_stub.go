//go:build !linux
// +build !linux

// File: server/run_reactor_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/hioload-stomp/reactor"

func (s *Server) runReactor() error {
	// reactor.New reports the unsupported-platform error.
	_, err := reactor.New()
	return err
}
