// File: directory/directory_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package directory_test

import (
	"testing"

	"github.com/momentics/hioload-stomp/api"
	"github.com/momentics/hioload-stomp/directory"
)

func TestFirstLoginRegisters(t *testing.T) {
	d := directory.New()
	if got := d.Login(0, "alice", "secret"); got != api.LoginOK {
		t.Fatalf("first login: %v", got)
	}
	if id, ok := d.ActiveUser("alice"); !ok || id != 0 {
		t.Errorf("active user: %d %v", id, ok)
	}
}

func TestWrongPassword(t *testing.T) {
	d := directory.New()
	d.Login(0, "alice", "secret")
	d.Logout(0)
	if got := d.Login(1, "alice", "other"); got != api.LoginWrongPassword {
		t.Errorf("login: %v", got)
	}
	if _, ok := d.ActiveUser("alice"); ok {
		t.Error("rejected login must not activate the user")
	}
}

func TestUserAlreadyLoggedIn(t *testing.T) {
	d := directory.New()
	d.Login(0, "alice", "secret")
	if got := d.Login(1, "alice", "secret"); got != api.LoginAlreadyLoggedIn {
		t.Errorf("login: %v", got)
	}
}

func TestClientAlreadyConnected(t *testing.T) {
	d := directory.New()
	d.Login(0, "alice", "secret")
	if got := d.Login(0, "bob", "pw"); got != api.LoginClientAlreadyConnected {
		t.Errorf("login: %v", got)
	}
}

func TestLogoutAllowsRelogin(t *testing.T) {
	d := directory.New()
	d.Login(0, "alice", "secret")
	d.Logout(0)
	if got := d.Login(1, "alice", "secret"); got != api.LoginOK {
		t.Errorf("relogin: %v", got)
	}

	// Both the old and the new connection id show up in history.
	history := d.History()
	if len(history) != 2 {
		t.Fatalf("history records: %d", len(history))
	}
	if history[0].LogoutAt.IsZero() {
		t.Error("first record must be closed")
	}
	if !history[1].LogoutAt.IsZero() {
		t.Error("second record must still be open")
	}
}

func TestLogoutUnknownConnIsNoop(t *testing.T) {
	d := directory.New()
	d.Logout(42)
	if len(d.History()) != 0 {
		t.Error("phantom history record")
	}
}

func TestTrackFileUpload(t *testing.T) {
	d := directory.New()
	d.TrackFileUpload("alice", "report.txt", "/files")
	d.TrackFileUpload("bob", "data.bin", "/files")

	uploads := d.Uploads()
	if len(uploads) != 2 {
		t.Fatalf("upload records: %d", len(uploads))
	}
	if uploads[0].Username != "alice" || uploads[0].Resource != "report.txt" || uploads[0].Destination != "/files" {
		t.Errorf("record: %#v", uploads[0])
	}
	if uploads[0].At.IsZero() {
		t.Error("record must be timestamped")
	}
}

func TestLoginStatusStrings(t *testing.T) {
	cases := map[api.LoginStatus]string{
		api.LoginOK:                     "ok",
		api.LoginWrongPassword:          "wrong password",
		api.LoginAlreadyLoggedIn:        "already logged in",
		api.LoginClientAlreadyConnected: "client already connected",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d: got %q want %q", status, got, want)
		}
	}
}
