//go:build !linux
// +build !linux

// File: transport/netconn_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import "github.com/momentics/hioload-stomp/api"

// SetNonblock is only meaningful under the Linux reactor strategy.
func (n *NetConn) SetNonblock(bool) error {
	return api.ErrNotSupported
}

// RawRead is only available under the Linux reactor strategy.
func (n *NetConn) RawRead([]byte) (int, error) {
	return 0, api.ErrNotSupported
}
