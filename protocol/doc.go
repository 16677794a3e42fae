// File: protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package protocol implements the STOMP-like wire protocol: the
// null-terminated frame codec, the frame model, and the per-connection
// protocol engine that drives subscribe/publish/disconnect against the
// shared connection registry.
package protocol
