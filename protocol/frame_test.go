// File: protocol/frame_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol_test

import (
	"testing"

	"github.com/momentics/hioload-stomp/protocol"
)

func TestParseCommandHeadersBody(t *testing.T) {
	f := protocol.Parse("SEND\ndestination:/news\nreceipt:77\n\nhello\nworld")
	if f.Command != "SEND" {
		t.Errorf("command: %q", f.Command)
	}
	if v, ok := f.Header("destination"); !ok || v != "/news" {
		t.Errorf("destination: %q %v", v, ok)
	}
	if v, ok := f.Header("receipt"); !ok || v != "77" {
		t.Errorf("receipt: %q %v", v, ok)
	}
	if f.Body != "hello\nworld" {
		t.Errorf("body: %q", f.Body)
	}
}

func TestParseFirstHeaderOccurrenceWins(t *testing.T) {
	f := protocol.Parse("SUBSCRIBE\nid:0\nid:9\n\n")
	if v, _ := f.Header("id"); v != "0" {
		t.Errorf("expected first occurrence, got %q", v)
	}
}

func TestParseBlankLinesInsideBody(t *testing.T) {
	f := protocol.Parse("SEND\ndestination:/a\n\nfirst\n\nsecond")
	if f.Body != "first\n\nsecond" {
		t.Errorf("body: %q", f.Body)
	}
}

func TestParseTrailingNewlineTrimmed(t *testing.T) {
	f := protocol.Parse("SEND\ndestination:/a\n\nhello\n")
	if f.Body != "hello" {
		t.Errorf("body: %q", f.Body)
	}
}

func TestParseHeaderValueWithColon(t *testing.T) {
	f := protocol.Parse("CONNECT\nlogin:user:with:colons\n\n")
	if v, _ := f.Header("login"); v != "user:with:colons" {
		t.Errorf("split must happen at the first colon only: %q", v)
	}
}

func TestParseEmptyText(t *testing.T) {
	f := protocol.Parse("")
	if f.Command != "" || len(f.Headers) != 0 || f.Body != "" {
		t.Errorf("unexpected frame: %#v", f)
	}
}

func TestOutboundFrameShapes(t *testing.T) {
	if got := protocol.ConnectedFrame("1.2"); got != "CONNECTED\nversion:1.2\n\n" {
		t.Errorf("connected: %q", got)
	}
	if got := protocol.ReceiptFrame("42"); got != "RECEIPT\nreceipt-id:42\n\n" {
		t.Errorf("receipt: %q", got)
	}
	if got := protocol.ErrorFrame("boom", ""); got != "ERROR\nmessage:boom\n\n" {
		t.Errorf("error: %q", got)
	}
	if got := protocol.ErrorFrame("boom", "42"); got != "ERROR\nmessage:boom\nreceipt-id:42\n\n" {
		t.Errorf("error with receipt: %q", got)
	}
	want := "MESSAGE\ndestination:/news\nsubscription:0\nmessage-id:7\n\nhello"
	if got := protocol.MessageFrame("/news", "0", 7, "hello"); got != want {
		t.Errorf("message: %q", got)
	}
}
