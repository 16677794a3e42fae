//go:build linux
// +build linux

// File: server/run_reactor_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reactor dispatch strategy: a single poller goroutine waits on epoll
// readiness and hands each event to a bounded executor pool. Workers
// drain the ready socket, feed the codec, invoke the engine, then
// re-arm the descriptor. Because successive events for one connection
// may land on different workers, the engine relies on the one-shot
// re-arm discipline for per-connection serialization.

package server

import (
	"github.com/momentics/hioload-stomp/internal/concurrency"
	"github.com/momentics/hioload-stomp/reactor"
)

const pollTimeoutMs = 500

func (s *Server) runReactor() error {
	r, err := reactor.New()
	if err != nil {
		return err
	}
	exec := concurrency.NewExecutor(s.cfg.ReactorWorkers)
	defer func() {
		exec.Close()
		_ = r.Close()
	}()

	// Poller loop: readiness waits happen here; protocol processing
	// never does.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.shutdownCh:
				return
			default:
				if err := r.Poll(pollTimeoutMs); err != nil {
					s.log.Error().Err(err).Msg("reactor poll")
					return
				}
			}
		}
	}()

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
		if err := nc.SetNonblock(true); err != nil {
			s.log.Warn().Err(err).Msg("set nonblock")
			_ = nc.Close()
			continue
		}

		fd := nc.RawFD()
		h := s.newConnection(nc, func() { _ = r.Unregister(fd) })

		cb := func(fd uintptr, ev reactor.FDEventType) {
			submitErr := exec.Submit(func() {
				alive := false
				if ev&reactor.EventRead != 0 {
					alive = h.onReadable()
				}
				if ev&reactor.EventError != 0 {
					s.registry.Disconnect(h.id)
					alive = false
				}
				if alive {
					if err := r.Rearm(fd, reactor.EventRead); err != nil {
						s.registry.Disconnect(h.id)
					}
				}
			})
			if submitErr != nil {
				s.registry.Disconnect(h.id)
			}
		}
		if err := r.Register(fd, reactor.EventRead, cb); err != nil {
			s.log.Warn().Err(err).Int64("conn_id", h.id).Msg("reactor register")
			s.registry.Disconnect(h.id)
		}
	}
}
