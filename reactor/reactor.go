// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral readiness reactor interface. The Linux
// implementation uses epoll in one-shot mode: after a callback has
// consumed an event the caller re-arms the descriptor, so one
// connection is never processed by two pool workers at once.

package reactor

// FDEventType is a bitmask of readiness conditions.
type FDEventType uint32

const (
	EventRead FDEventType = 1 << iota
	EventWrite
	EventError
)

// FDCallback handles one readiness event for a registered descriptor.
type FDCallback func(fd uintptr, events FDEventType)

// Reactor multiplexes readiness events for many descriptors.
type Reactor interface {
	// Register adds fd in one-shot mode; cb fires once per arm.
	Register(fd uintptr, events FDEventType, cb FDCallback) error

	// Rearm re-enables notifications for fd after its callback has
	// consumed an event.
	Rearm(fd uintptr, events FDEventType) error

	// Unregister removes fd from the watch list.
	Unregister(fd uintptr) error

	// Poll blocks up to timeoutMs (negative blocks indefinitely),
	// dispatching ready events to their callbacks.
	Poll(timeoutMs int) error

	// Close releases the reactor's resources.
	Close() error
}

// New returns the platform reactor, or an error on platforms without
// one (the reactor dispatch strategy is Linux-only).
func New() (Reactor, error) {
	return newPlatformReactor()
}
