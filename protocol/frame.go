// File: protocol/frame.go
// Package protocol implements the frame model.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"strconv"
	"strings"
)

// Header is one name/value pair. Values carry no escaping.
type Header struct {
	Name  string
	Value string
}

// Frame is one parsed protocol message: a command token, an ordered
// header list, and an optional body. Frames are ephemeral; they live
// for the duration of one Process call only.
type Frame struct {
	Command string
	Headers []Header
	Body    string
}

// Parse splits a frame text into command, headers, and body.
//
// The first line is the command. Header lines follow until the first
// blank line; each is name:value split at the first colon, and lines
// without a colon are skipped. Everything after the blank line is the
// body; blank lines inside it become embedded newlines and a single
// trailing newline produced by the reconstruction is trimmed.
func Parse(text string) Frame {
	lines := strings.Split(text, "\n")
	f := Frame{Command: lines[0]}
	i := 1
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++
			break
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		f.Headers = append(f.Headers, Header{Name: line[:colon], Value: line[colon+1:]})
	}
	if i < len(lines) {
		body := strings.Join(lines[i:], "\n")
		body = strings.TrimSuffix(body, "\n")
		f.Body = body
	}
	return f
}

// Header returns the value of the first header named name. Later
// duplicates are ignored.
func (f Frame) Header(name string) (string, bool) {
	for _, h := range f.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// HasHeader reports whether a header named name is present.
func (f Frame) HasHeader(name string) bool {
	_, ok := f.Header(name)
	return ok
}

// render assembles a frame text from command, headers, and body.
func render(command string, headers []Header, body string) string {
	b := &strings.Builder{}
	b.WriteString(command)
	b.WriteByte('\n')
	for _, h := range headers {
		b.WriteString(h.Name)
		b.WriteByte(':')
		b.WriteString(h.Value)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}

// ConnectedFrame is the reply to a successful CONNECT.
func ConnectedFrame(version string) string {
	return render(CommandConnected, []Header{{HeaderVersion, version}}, "")
}

// MessageFrame is one fan-out copy of a published frame, carrying the
// receiving subscriber's own subscription id.
func MessageFrame(destination, subID string, messageID int64, body string) string {
	return render(CommandMessage, []Header{
		{HeaderDestination, destination},
		{HeaderSubscription, subID},
		{HeaderMessageID, strconv.FormatInt(messageID, 10)},
	}, body)
}

// ReceiptFrame acknowledges a request that carried a receipt header.
func ReceiptFrame(receiptID string) string {
	return render(CommandReceipt, []Header{{HeaderReceiptID, receiptID}}, "")
}

// ErrorFrame reports a protocol error, echoing the offending request's
// receipt id when it had one.
func ErrorFrame(message, receiptID string) string {
	headers := []Header{{HeaderMessage, message}}
	if receiptID != "" {
		headers = append(headers, Header{HeaderReceiptID, receiptID})
	}
	return render(CommandError, headers, "")
}
