// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared across hioload-stomp layers.

package api

import "fmt"

var (
	ErrTransportClosed = fmt.Errorf("transport is closed")
	ErrServerClosed    = fmt.Errorf("server is closed")
	ErrNotSupported    = fmt.Errorf("operation not supported")
	ErrWouldBlock      = fmt.Errorf("operation would block")
	ErrExecutorClosed  = fmt.Errorf("executor is closed")
)
