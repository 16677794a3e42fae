// File: protocol/headers.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

// Header names used by the protocol. Headers are matched by their
// literal name; values carry no escaping.
const (
	HeaderAcceptVersion = "accept-version"
	HeaderDestination   = "destination"
	HeaderFile          = "file"
	HeaderID            = "id"
	HeaderLogin         = "login"
	HeaderMessage       = "message"
	HeaderMessageID     = "message-id"
	HeaderPasscode      = "passcode"
	HeaderReceipt       = "receipt"
	HeaderReceiptID     = "receipt-id"
	HeaderSubscription  = "subscription"
	HeaderVersion       = "version"
)
