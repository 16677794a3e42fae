//go:build linux
// +build linux

// File: transport/netconn_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Raw non-blocking reads for the reactor dispatch path.

package transport

import (
	"golang.org/x/sys/unix"
)

// SetNonblock toggles O_NONBLOCK on the descriptor. The reactor sets
// it before registering the connection with epoll.
func (n *NetConn) SetNonblock(nonblocking bool) error {
	return unix.SetNonblock(int(n.fd), nonblocking)
}

// RawRead performs one non-blocking read on the descriptor. Returns
// ErrWouldBlock when no data is available; n == 0 with a nil error
// means the peer closed the connection.
func (n *NetConn) RawRead(p []byte) (int, error) {
	read, err := unix.Read(int(n.fd), p)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, ErrWouldBlock
		}
		if err == unix.EINTR {
			return 0, ErrWouldBlock
		}
		return 0, err
	}
	return read, nil
}
