// File: api/interfaces.go
// Package api defines core contracts for hioload-stomp.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Codec turns a raw byte stream into discrete frame texts and back.
// A Codec instance belongs to exactly one connection and is never
// shared between goroutines.
type Codec interface {
	// DecodeByte accumulates one byte. When the byte completes a frame
	// the frame text is returned with ok set; otherwise ok is false.
	DecodeByte(b byte) (frame string, ok bool)

	// Feed accumulates a byte slice and returns every frame completed
	// by it, in arrival order.
	Feed(p []byte) []string

	// Encode serializes a frame text for the wire, appending the frame
	// terminator when the caller omitted it.
	Encode(frame string) []byte
}

// Protocol is a per-connection protocol state machine. Implementations
// hold session state and must tolerate Process being invoked from
// different goroutines across successive calls (reactor dispatch), but
// never concurrently for the same connection.
type Protocol interface {
	// Start binds the protocol instance to its connection id and the
	// shared registry, resetting all session state.
	Start(connID int64, conns Connections)

	// Process interprets one complete frame text.
	Process(frame string)

	// ShouldTerminate reports whether the transport must close once the
	// current response has been flushed.
	ShouldTerminate() bool
}

// ConnectionHandler is a send-capable handle for one live connection.
// Send must be safe for concurrent use; Close must be idempotent.
type ConnectionHandler interface {
	// Send queues one frame text for delivery to the peer.
	Send(frame string) error

	// Close tears the connection down, flushing queued responses first.
	Close() error
}

// Connections is the process-wide connection and subscription registry
// shared by every connection. All methods are safe for arbitrary
// concurrent use.
type Connections interface {
	// Register makes connID eligible to receive sends via handler.
	Register(connID int64, handler ConnectionHandler)

	// Subscribe records that connID listens on destination under the
	// connection's locally chosen subscription id.
	Subscribe(connID int64, destination, subID string)

	// Unsubscribe removes connID from destination. Destinations with no
	// remaining subscribers are removed entirely.
	Unsubscribe(connID int64, destination string)

	// IsSubscribed reports whether connID currently listens on destination.
	IsSubscribed(connID int64, destination string) bool

	// Subscribers returns a snapshot of destination's subscribers as a
	// connID → subscription-id map. The map is owned by the caller.
	Subscribers(destination string) map[int64]string

	// Send delivers one frame to connID. A delivery failure disconnects
	// connID and returns false.
	Send(connID int64, frame string) bool

	// Broadcast delivers one frame independently to every current
	// subscriber of destination. Per-target failures are independent.
	Broadcast(destination, frame string)

	// Disconnect removes connID from the handler map and from every
	// destination, then releases the transport. Safe to call repeatedly
	// and concurrently with any other registry operation.
	Disconnect(connID int64)

	// NextMessageID issues the next process-wide message identifier.
	// Identifiers are strictly increasing and never reused.
	NextMessageID() int64
}

// LoginStatus is the outcome of a Directory login attempt.
type LoginStatus int

const (
	LoginOK LoginStatus = iota
	LoginWrongPassword
	LoginAlreadyLoggedIn
	LoginClientAlreadyConnected
)

// String returns the status name for logs and error messages.
func (s LoginStatus) String() string {
	switch s {
	case LoginOK:
		return "ok"
	case LoginWrongPassword:
		return "wrong password"
	case LoginAlreadyLoggedIn:
		return "already logged in"
	case LoginClientAlreadyConnected:
		return "client already connected"
	default:
		return "unknown"
	}
}

// Directory is the external authentication and audit collaborator. The
// core never persists credentials itself; it consumes this narrow
// contract only.
type Directory interface {
	// Login authenticates username/passcode for connID, enforcing
	// session uniqueness per user and per connection.
	Login(connID int64, username, passcode string) LoginStatus

	// Logout releases any identity associated with connID.
	Logout(connID int64)

	// TrackFileUpload records that username published resource on
	// destination.
	TrackFileUpload(username, resource, destination string)
}
