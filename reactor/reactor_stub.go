//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"fmt"

	"github.com/momentics/hioload-stomp/api"
)

func newPlatformReactor() (Reactor, error) {
	return nil, fmt.Errorf("reactor dispatch: %w", api.ErrNotSupported)
}
