// File: directory/directory.go
// Package directory implements the external authentication and audit
// collaborator consumed by the protocol engine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The directory is the single shared authority for login uniqueness
// and file-upload auditing. It is constructed explicitly and injected
// into the server; nothing here is a package-level singleton.

package directory

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-stomp/api"
)

// UploadRecord is one audited file publication.
type UploadRecord struct {
	Username    string
	Resource    string
	Destination string
	At          time.Time
}

// LoginRecord is one entry of a user's login history.
type LoginRecord struct {
	Username string
	LoginAt  time.Time
	LogoutAt time.Time // zero while the session is active
}

// Directory is an in-memory user store. The first login with an unknown
// username registers it; subsequent logins must present the same
// passcode. Each user has at most one active session and each
// connection at most one identity.
type Directory struct {
	mu         sync.Mutex
	passwords  map[string]string // username → passcode
	activeUser map[string]int64  // username → connID
	activeConn map[int64]string  // connID → username
	history    []LoginRecord
	open       map[string]int // username → index of open history record
	uploads    []UploadRecord
	log        zerolog.Logger
	now        func() time.Time
}

// Option customizes directory construction.
type Option func(*Directory)

// WithLogger attaches a logger for login and audit events.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Directory) { d.log = log }
}

// New returns an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{
		passwords:  make(map[string]string),
		activeUser: make(map[string]int64),
		activeConn: make(map[int64]string),
		open:       make(map[string]int),
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Login authenticates username/passcode for connID.
func (d *Directory) Login(connID int64, username, passcode string) api.LoginStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.activeConn[connID]; ok {
		return api.LoginClientAlreadyConnected
	}
	if _, ok := d.activeUser[username]; ok {
		return api.LoginAlreadyLoggedIn
	}
	if stored, ok := d.passwords[username]; ok {
		if stored != passcode {
			return api.LoginWrongPassword
		}
	} else {
		d.passwords[username] = passcode
	}

	d.activeUser[username] = connID
	d.activeConn[connID] = username
	d.open[username] = len(d.history)
	d.history = append(d.history, LoginRecord{Username: username, LoginAt: d.now()})
	d.log.Info().Int64("conn_id", connID).Str("user", username).Msg("login")
	return api.LoginOK
}

// Logout releases any identity associated with connID. Unknown ids are
// ignored.
func (d *Directory) Logout(connID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	username, ok := d.activeConn[connID]
	if !ok {
		return
	}
	delete(d.activeConn, connID)
	delete(d.activeUser, username)
	if idx, ok := d.open[username]; ok {
		d.history[idx].LogoutAt = d.now()
		delete(d.open, username)
	}
	d.log.Info().Int64("conn_id", connID).Str("user", username).Msg("logout")
}

// TrackFileUpload records that username published resource on
// destination.
func (d *Directory) TrackFileUpload(username, resource, destination string) {
	d.mu.Lock()
	d.uploads = append(d.uploads, UploadRecord{
		Username:    username,
		Resource:    resource,
		Destination: destination,
		At:          d.now(),
	})
	d.mu.Unlock()
	d.log.Info().Str("user", username).Str("resource", resource).
		Str("destination", destination).Msg("file upload tracked")
}

// Uploads returns a snapshot of the audit records.
func (d *Directory) Uploads() []UploadRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]UploadRecord, len(d.uploads))
	copy(out, d.uploads)
	return out
}

// History returns a snapshot of the login history.
func (d *Directory) History() []LoginRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]LoginRecord, len(d.history))
	copy(out, d.history)
	return out
}

// ActiveUser returns the connection currently logged in as username.
func (d *Directory) ActiveUser(username string) (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.activeUser[username]
	return id, ok
}

var _ api.Directory = (*Directory)(nil)
