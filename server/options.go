// File: server/options.go
// Package server defines functional options for the broker facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-stomp/api"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithDirectory injects the authentication/audit collaborator. The
// default is an empty in-memory directory.
func WithDirectory(d api.Directory) Option {
	return func(s *Server) {
		s.directory = d
	}
}

// WithStrategy overrides the configured dispatch strategy.
func WithStrategy(strategy Strategy) Option {
	return func(s *Server) {
		s.cfg.Strategy = strategy
	}
}

// WithReactorWorkers sets the reactor worker pool size.
func WithReactorWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.cfg.ReactorWorkers = n
		}
	}
}
