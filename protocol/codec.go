// File: protocol/codec.go
// Package protocol implements the null-terminated frame codec.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frames are UTF-8 text delimited on the wire by a single zero byte.
// The decoder accumulates bytes into a growable buffer and emits one
// complete frame text per terminator; partial frames are never exposed.

package protocol

// FrameTerminator delimits frames on the wire.
const FrameTerminator byte = 0x00

// Codec decodes a raw byte stream into frame texts and encodes frame
// texts back into wire bytes. One instance per connection; not safe for
// concurrent use.
type Codec struct {
	buf []byte
}

// NewCodec returns a Codec with a small initial buffer. The buffer
// grows geometrically as needed and is reused between frames.
func NewCodec() *Codec {
	return &Codec{buf: make([]byte, 0, 1<<10)}
}

// DecodeByte accumulates one byte. When b is the frame terminator the
// buffered bytes are returned as a frame text and the buffer resets.
func (c *Codec) DecodeByte(b byte) (string, bool) {
	if b == FrameTerminator {
		frame := string(c.buf)
		c.buf = c.buf[:0]
		return frame, true
	}
	c.buf = append(c.buf, b)
	return "", false
}

// Feed accumulates p and returns every frame completed by it, in order.
func (c *Codec) Feed(p []byte) []string {
	var frames []string
	for _, b := range p {
		if frame, ok := c.DecodeByte(b); ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

// Encode serializes a frame text, appending the terminator when the
// caller omitted it.
func (c *Codec) Encode(frame string) []byte {
	out := make([]byte, 0, len(frame)+1)
	out = append(out, frame...)
	if len(frame) == 0 || frame[len(frame)-1] != FrameTerminator {
		out = append(out, FrameTerminator)
	}
	return out
}
