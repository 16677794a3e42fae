// File: server/server.go
// Package server provides the broker facade encapsulating listener,
// registry, directory, metrics, and the dispatch strategies.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-stomp/api"
	"github.com/momentics/hioload-stomp/directory"
	"github.com/momentics/hioload-stomp/protocol"
	"github.com/momentics/hioload-stomp/registry"
	"github.com/momentics/hioload-stomp/transport"
)

// Server accepts incoming sockets and assigns them to the configured
// dispatch strategy. Both strategies wrap sockets in connection
// handlers registered with the shared registry and drive the same
// protocol engine.
type Server struct {
	cfg       *Config
	log       zerolog.Logger
	directory api.Directory
	registry  *registry.Registry
	metrics   *MetricsRegistry
	listener  *transport.Listener

	nextConnID atomic.Int64
	shutdownCh chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
}

// New constructs a Server bound to cfg.ListenAddr. The socket is bound
// immediately so Addr is valid before Run.
func New(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:        cfg,
		log:        zerolog.Nop(),
		metrics:    NewMetricsRegistry(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.directory == nil {
		s.directory = directory.New(directory.WithLogger(s.log))
	}
	s.registry = registry.New(
		registry.WithLogger(s.log),
		registry.WithMetrics(s.metrics),
	)

	ln, err := transport.Listen(cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	s.listener = ln
	return s, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Registry exposes the shared connection registry.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// Metrics exposes the server's counters.
func (s *Server) Metrics() *MetricsRegistry {
	return s.metrics
}

// Run serves connections under the configured strategy and blocks
// until Shutdown is called or the listener fails.
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.listener.Addr().String()).
		Str("strategy", string(s.cfg.Strategy)).Msg("serving")
	switch s.cfg.Strategy {
	case StrategyReactor:
		return s.runReactor()
	default:
		return s.runThreadPerConn()
	}
}

// Shutdown stops accepting, disconnects every live connection, and
// unblocks Run. Safe to call more than once.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.shutdownCh)
		_ = s.listener.Close()
		s.registry.CloseAll()
	})
	s.wg.Wait()
}

// newConnection builds the handler+engine+codec triple for one
// accepted socket and registers it with the shared registry. closeHook
// (optional) runs once when the handler closes, before other handlers
// can observe the id as gone.
func (s *Server) newConnection(nc *transport.NetConn, closeHook func()) *connHandler {
	id := s.nextConnID.Add(1) - 1
	engine := protocol.NewEngine(s.directory)
	h := newConnHandler(id, nc, protocol.NewCodec(), engine, s.registry,
		s.log, s.cfg.ReadBufferSize, s.cfg.CloseDrainTimeout, s.metrics)
	h.closeHook = closeHook
	s.registry.Register(id, h)
	engine.Start(id, s.registry)
	s.metrics.Inc(MetricConnectionsAccepted)
	s.metrics.Add(MetricConnectionsActive, 1)
	s.log.Debug().Int64("conn_id", id).Str("remote", nc.RemoteAddr().String()).Msg("accepted")
	return h
}

// runThreadPerConn dedicates one blocking reader goroutine per
// connection. Backpressure is implicit in blocking reads and the
// per-connection writer.
func (s *Server) runThreadPerConn() error {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownCh:
				return nil
			default:
				return err
			}
		}
		h := s.newConnection(nc, nil)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			h.readLoop()
		}()
	}
}
