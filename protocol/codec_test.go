// File: protocol/codec_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol_test

import (
	"strings"
	"testing"

	"github.com/momentics/hioload-stomp/protocol"
)

func TestCodecRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"CONNECT\naccept-version:1.2\nlogin:alice\npasscode:x\n\n",
		"SEND\ndestination:/news\n\nhello\nworld",
		strings.Repeat("x", 64*1024), // force buffer growth well past the initial capacity
	}
	for _, text := range texts {
		c := protocol.NewCodec()
		var got string
		var frames int
		for _, b := range c.Encode(text) {
			if frame, ok := c.DecodeByte(b); ok {
				got = frame
				frames++
			}
		}
		if frames != 1 {
			t.Fatalf("expected 1 frame, got %d", frames)
		}
		if got != text {
			t.Errorf("round trip mismatch: %q != %q", got, text)
		}
	}
}

func TestCodecNoPartialFrames(t *testing.T) {
	c := protocol.NewCodec()
	for _, b := range []byte("SEND\ndestination:/a\n\nbody") {
		if frame, ok := c.DecodeByte(b); ok {
			t.Fatalf("unexpected frame before terminator: %q", frame)
		}
	}
	frame, ok := c.DecodeByte(0)
	if !ok {
		t.Fatal("terminator did not complete the frame")
	}
	if frame != "SEND\ndestination:/a\n\nbody" {
		t.Errorf("unexpected frame: %q", frame)
	}
}

func TestCodecFeedSplitsMultipleFrames(t *testing.T) {
	c := protocol.NewCodec()
	frames := c.Feed([]byte("first\x00second\x00thi"))
	if len(frames) != 2 || frames[0] != "first" || frames[1] != "second" {
		t.Fatalf("unexpected frames: %#v", frames)
	}
	frames = c.Feed([]byte("rd\x00"))
	if len(frames) != 1 || frames[0] != "third" {
		t.Fatalf("decoder lost partial state across feeds: %#v", frames)
	}
}

func TestEncodeDoesNotDoubleTerminate(t *testing.T) {
	c := protocol.NewCodec()
	out := c.Encode("frame\x00")
	if len(out) != len("frame")+1 {
		t.Errorf("terminator duplicated: %d bytes", len(out))
	}
	if out[len(out)-1] != 0 {
		t.Errorf("missing terminator")
	}
}
