// File: protocol/command.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Inbound commands.
const (
	CommandConnect     = "CONNECT"
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandSend        = "SEND"
	CommandDisconnect  = "DISCONNECT"
)

// Outbound commands.
const (
	CommandConnected = "CONNECTED"
	CommandMessage   = "MESSAGE"
	CommandReceipt   = "RECEIPT"
	CommandError     = "ERROR"
)

// Version is the single protocol version this broker negotiates.
const Version = "1.2"
