// File: transport/netconn.go
// Package transport provides the TCP listener and the connection
// wrapper used by both dispatch strategies.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// ErrWouldBlock is returned by RawRead when a non-blocking read has no
// data available.
var ErrWouldBlock = errors.New("transport: read would block")

// NetConn wraps a net.Conn with access to its OS-level descriptor, so
// the reactor can watch it and drain it without the runtime poller.
type NetConn struct {
	conn net.Conn
	fd   uintptr
}

// NewNetConn wraps conn, extracting the underlying file descriptor.
func NewNetConn(conn net.Conn) (*NetConn, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, fmt.Errorf("connection does not expose a descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("syscall conn: %w", err)
	}
	var fd uintptr
	if err := raw.Control(func(f uintptr) { fd = f }); err != nil {
		return nil, fmt.Errorf("raw control: %w", err)
	}
	return &NetConn{conn: conn, fd: fd}, nil
}

// Read reads into a preallocated buffer, blocking via the runtime
// poller. Used by the thread-per-connection strategy.
func (n *NetConn) Read(p []byte) (int, error) {
	return n.conn.Read(p)
}

// Write writes buffer contents into the connection.
func (n *NetConn) Write(p []byte) (int, error) {
	return n.conn.Write(p)
}

// Close shuts down the connection.
func (n *NetConn) Close() error {
	return n.conn.Close()
}

// RawFD returns the underlying OS-level file descriptor.
func (n *NetConn) RawFD() uintptr {
	return n.fd
}

// RemoteAddr returns the peer address.
func (n *NetConn) RemoteAddr() net.Addr {
	return n.conn.RemoteAddr()
}

// SetWriteDeadline bounds pending writes; used when draining queued
// responses during close.
func (n *NetConn) SetWriteDeadline(t time.Time) error {
	return n.conn.SetWriteDeadline(t)
}
