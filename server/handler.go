// File: server/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// connHandler binds one socket to one codec and one protocol engine
// instance and owns the per-connection read/write lifecycle. Outbound
// frames pass through an unbounded FIFO drained by a dedicated writer
// goroutine, so concurrent senders (the publisher's goroutine and the
// subscriber's own) never interleave partial frame writes and protocol
// processing never blocks on a slow peer.

package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-stomp/api"
	"github.com/momentics/hioload-stomp/transport"
)

type connHandler struct {
	id    int64
	conn  *transport.NetConn
	codec api.Codec
	proto api.Protocol
	conns api.Connections
	log   zerolog.Logger

	drainTimeout time.Duration
	metrics      *MetricsRegistry

	mu     sync.Mutex
	outbox *queue.Queue

	wake       chan struct{}
	done       chan struct{}
	writerDone chan struct{}
	closed     atomic.Bool
	failed     atomic.Bool
	closeOnce  sync.Once

	// closeHook runs once at close; the reactor strategy uses it to
	// unregister the descriptor.
	closeHook func()

	rbuf []byte
}

func newConnHandler(id int64, conn *transport.NetConn, codec api.Codec, proto api.Protocol,
	conns api.Connections, log zerolog.Logger, readBufferSize int, drainTimeout time.Duration,
	metrics *MetricsRegistry) *connHandler {

	h := &connHandler{
		id:           id,
		conn:         conn,
		codec:        codec,
		proto:        proto,
		conns:        conns,
		log:          log.With().Int64("conn_id", id).Logger(),
		drainTimeout: drainTimeout,
		metrics:      metrics,
		outbox:       queue.New(),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		writerDone:   make(chan struct{}),
		rbuf:         make([]byte, readBufferSize),
	}
	go h.writeLoop()
	return h
}

// Send queues one frame text for delivery. Never blocks.
func (h *connHandler) Send(frame string) error {
	if h.closed.Load() {
		return api.ErrTransportClosed
	}
	h.mu.Lock()
	h.outbox.Add(frame)
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close tears the connection down exactly once. Queued responses are
// flushed (bounded by the drain timeout) before the socket closes, so
// a RECEIPT or ERROR ordered ahead of termination reaches the wire.
func (h *connHandler) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		if h.closeHook != nil {
			h.closeHook()
		}
		if h.metrics != nil {
			h.metrics.Add(MetricConnectionsActive, -1)
		}
		close(h.done)
	})
	return nil
}

// writeLoop is the handler's single writer.
func (h *connHandler) writeLoop() {
	defer close(h.writerDone)
	for {
		select {
		case <-h.wake:
			if !h.drain() {
				return
			}
		case <-h.done:
			if !h.failed.Load() {
				_ = h.conn.SetWriteDeadline(time.Now().Add(h.drainTimeout))
				h.drain()
			}
			_ = h.conn.Close()
			return
		}
	}
}

// drain writes every queued frame. Returns false after a transport
// failure, which marks the handler non-functional and triggers its own
// disconnect path.
func (h *connHandler) drain() bool {
	for {
		h.mu.Lock()
		if h.outbox.Length() == 0 {
			h.mu.Unlock()
			return true
		}
		frame := h.outbox.Remove().(string)
		h.mu.Unlock()

		if _, err := h.conn.Write(h.codec.Encode(frame)); err != nil {
			if h.failed.CompareAndSwap(false, true) {
				h.log.Warn().Err(err).Msg("write failed")
				_ = h.conn.Close()
				h.conns.Disconnect(h.id)
			}
			return false
		}
	}
}

// processBytes feeds raw bytes through the codec and the protocol
// engine. Returns true once the engine has terminated the session; any
// frames decoded after that point are discarded.
func (h *connHandler) processBytes(p []byte) bool {
	for _, frame := range h.codec.Feed(p) {
		h.proto.Process(frame)
		if h.metrics != nil {
			h.metrics.Inc(MetricFramesProcessed)
		}
		if h.proto.ShouldTerminate() {
			h.conns.Disconnect(h.id)
			return true
		}
	}
	return false
}

// readLoop drives the thread-per-connection strategy: block on the
// socket, feed the codec, invoke the engine, until the engine signals
// termination, an I/O error occurs, or the handler is closed
// externally.
func (h *connHandler) readLoop() {
	for {
		n, err := h.conn.Read(h.rbuf)
		if err != nil {
			h.conns.Disconnect(h.id)
			return
		}
		if h.processBytes(h.rbuf[:n]) {
			return
		}
	}
}

// onReadable drives the reactor strategy: drain all currently
// available bytes without blocking. Returns false once the connection
// is finished and must not be re-armed.
func (h *connHandler) onReadable() bool {
	for {
		n, err := h.conn.RawRead(h.rbuf)
		if errors.Is(err, transport.ErrWouldBlock) {
			return !h.closed.Load()
		}
		if err != nil || n == 0 {
			h.conns.Disconnect(h.id)
			return false
		}
		if h.processBytes(h.rbuf[:n]) {
			return false
		}
	}
}

var _ api.ConnectionHandler = (*connHandler)(nil)
