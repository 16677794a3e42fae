// File: transport/listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Minimal TCP listener/acceptor for hioload-stomp. The design leaves
// room for future zero-copy and affinity optimizations.

package transport

import (
	"fmt"
	"net"
)

// Listener accepts TCP connections and wraps them as NetConns.
type Listener struct {
	ln net.Listener
}

// Listen opens the TCP listening socket on addr (e.g. ":7777").
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Accept waits for and returns the next connection. TCP_NODELAY is set
// so small protocol frames are not coalesced.
func (l *Listener) Accept() (*NetConn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	nc, err := NewNetConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return nc, nil
}

// Addr returns the bound address; useful with ":0" listeners.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close shuts down the listener.
func (l *Listener) Close() error {
	return l.ln.Close()
}
