// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api defines the contracts shared by the hioload-stomp layers:
// the frame codec, the per-connection protocol engine, the process-wide
// connection registry, and the external directory collaborator.
//
// Packages under this module depend on api rather than on each other's
// concrete types, so dispatch strategies and tests can substitute
// implementations freely.
package api
