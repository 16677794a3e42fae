// File: protocol/engine.go
// Package protocol implements the per-connection protocol engine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Engine is the command state machine: UNCONNECTED until a successful
// CONNECT, CONNECTED while the session is authenticated, TERMINATED
// once any error or DISCONNECT ends the session. Every error response
// terminates the session; the transport closes after the ERROR frame
// has been flushed.

package protocol

import (
	"strings"

	"github.com/momentics/hioload-stomp/api"
)

// Engine holds one connection's session state and interprets its
// frames. Successive Process calls may arrive on different goroutines
// (reactor dispatch) but never concurrently, so no locking is needed.
type Engine struct {
	connID    int64
	conns     api.Connections
	directory api.Directory

	authenticated bool
	username      string
	passcode      string
	terminate     bool

	// subIDToDest and destToSubID are exact inverses over this
	// session's active subscriptions.
	subIDToDest map[string]string
	destToSubID map[string]string

	// reportedFiles dedupes audit notifications per
	// (user, destination, resource) for the session lifetime.
	reportedFiles map[string]struct{}
}

// NewEngine returns an Engine bound to the given directory. Start must
// be called before the first Process.
func NewEngine(directory api.Directory) *Engine {
	return &Engine{directory: directory}
}

// Start binds the engine to its connection and registry and resets the
// session to empty and unauthenticated.
func (e *Engine) Start(connID int64, conns api.Connections) {
	e.connID = connID
	e.conns = conns
	e.authenticated = false
	e.username = ""
	e.passcode = ""
	e.terminate = false
	e.subIDToDest = make(map[string]string)
	e.destToSubID = make(map[string]string)
	e.reportedFiles = make(map[string]struct{})
}

// ShouldTerminate reports whether the transport must close once the
// current response has been flushed.
func (e *Engine) ShouldTerminate() bool {
	return e.terminate
}

// Process interprets one complete frame text.
func (e *Engine) Process(text string) {
	frame := Parse(text)
	switch frame.Command {
	case CommandConnect:
		e.processConnect(frame)
	case CommandSubscribe:
		e.processSubscribe(frame)
	case CommandUnsubscribe:
		e.processUnsubscribe(frame)
	case CommandSend:
		e.processSend(frame)
	case CommandDisconnect:
		e.processDisconnect(frame)
	default:
		e.fail("Unknown command", frame)
	}
}

// fail sends an ERROR frame (echoing the request's receipt id, if any),
// terminates the session, and disconnects.
func (e *Engine) fail(message string, frame Frame) {
	receipt, _ := frame.Header(HeaderReceipt)
	e.conns.Send(e.connID, ErrorFrame(message, receipt))
	e.terminate = true
	e.conns.Disconnect(e.connID)
}

func (e *Engine) sendReceiptIfRequested(frame Frame) {
	if receipt, ok := frame.Header(HeaderReceipt); ok {
		e.conns.Send(e.connID, ReceiptFrame(receipt))
	}
}

func (e *Engine) processConnect(frame Frame) {
	if e.authenticated {
		e.fail("Already logged in", frame)
		return
	}
	accept, _ := frame.Header(HeaderAcceptVersion)
	if !strings.Contains(accept, Version) {
		e.fail("Unsupported STOMP version (need "+Version+")", frame)
		return
	}
	login, _ := frame.Header(HeaderLogin)
	passcode, _ := frame.Header(HeaderPasscode)
	if login == "" || passcode == "" {
		e.fail("Missing login/passcode", frame)
		return
	}
	switch e.directory.Login(e.connID, login, passcode) {
	case api.LoginAlreadyLoggedIn:
		e.fail("User already logged in", frame)
		return
	case api.LoginWrongPassword:
		e.fail("Wrong password", frame)
		return
	case api.LoginClientAlreadyConnected:
		e.fail("Client already connected", frame)
		return
	}
	e.username = login
	e.passcode = passcode
	e.authenticated = true
	e.conns.Send(e.connID, ConnectedFrame(Version))
	e.sendReceiptIfRequested(frame)
}

func (e *Engine) processSubscribe(frame Frame) {
	if !e.authenticated {
		e.fail("Not logged in", frame)
		return
	}
	destination, hasDest := frame.Header(HeaderDestination)
	subID, hasID := frame.Header(HeaderID)
	if !hasDest || !hasID {
		e.fail("Missing destination or id", frame)
		return
	}
	if _, ok := e.destToSubID[destination]; ok {
		e.fail("Already subscribed to destination", frame)
		return
	}
	if _, ok := e.subIDToDest[subID]; ok {
		e.fail("Subscription id already used", frame)
		return
	}
	e.subIDToDest[subID] = destination
	e.destToSubID[destination] = subID
	e.conns.Subscribe(e.connID, destination, subID)
	e.sendReceiptIfRequested(frame)
}

func (e *Engine) processUnsubscribe(frame Frame) {
	if !e.authenticated {
		e.fail("Not logged in", frame)
		return
	}
	subID, ok := frame.Header(HeaderID)
	if !ok {
		e.fail("Missing id", frame)
		return
	}
	destination, ok := e.subIDToDest[subID]
	if !ok {
		e.fail("Subscription id not found", frame)
		return
	}
	e.conns.Unsubscribe(e.connID, destination)
	delete(e.subIDToDest, subID)
	delete(e.destToSubID, destination)
	e.sendReceiptIfRequested(frame)
}

func (e *Engine) processSend(frame Frame) {
	if !e.authenticated {
		e.fail("Not logged in", frame)
		return
	}
	destination, ok := frame.Header(HeaderDestination)
	if !ok {
		e.fail("Missing destination", frame)
		return
	}
	if !e.conns.IsSubscribed(e.connID, destination) {
		e.fail("Not subscribed to destination", frame)
		return
	}

	// One id per publish, shared by every fan-out copy. Per-subscriber
	// delivery failures are handled inside Send and never abort the
	// remaining deliveries.
	messageID := e.conns.NextMessageID()
	for connID, subID := range e.conns.Subscribers(destination) {
		e.conns.Send(connID, MessageFrame(destination, subID, messageID, frame.Body))
	}

	if file, ok := frame.Header(HeaderFile); ok {
		key := e.username + "\n" + destination + "\n" + file
		if _, seen := e.reportedFiles[key]; !seen {
			e.reportedFiles[key] = struct{}{}
			e.directory.TrackFileUpload(e.username, file, destination)
		}
	}
	e.sendReceiptIfRequested(frame)
}

func (e *Engine) processDisconnect(frame Frame) {
	if !e.authenticated {
		e.fail("Not logged in", frame)
		return
	}
	receipt, ok := frame.Header(HeaderReceipt)
	if !ok {
		e.fail("Missing receipt id", frame)
		return
	}
	// The receipt is queued before any teardown so it reaches the wire
	// ahead of the close.
	e.conns.Send(e.connID, ReceiptFrame(receipt))
	for destination := range e.destToSubID {
		e.conns.Unsubscribe(e.connID, destination)
	}
	e.subIDToDest = make(map[string]string)
	e.destToSubID = make(map[string]string)
	e.terminate = true
	e.directory.Logout(e.connID)
	e.conns.Disconnect(e.connID)
}

var _ api.Protocol = (*Engine)(nil)
