// File: client/client.go
// Package client implements a minimal blocking client for the
// hioload-stomp wire protocol. It exists for integration tests and
// simple tooling; it is not a high-throughput consumer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/momentics/hioload-stomp/protocol"
)

// Client is a single-connection protocol client. Not safe for
// concurrent use; callers serialize access themselves.
type Client struct {
	conn    net.Conn
	codec   *protocol.Codec
	pending []protocol.Frame
	rbuf    []byte
	receipt int
}

// Dial connects to a broker at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{
		conn:  conn,
		codec: protocol.NewCodec(),
		rbuf:  make([]byte, 4*1024),
	}, nil
}

// Close releases the connection without a protocol-level disconnect.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendRaw writes one frame text to the wire as-is.
func (c *Client) SendRaw(frame string) error {
	_, err := c.conn.Write(c.codec.Encode(frame))
	return err
}

// ReadFrame returns the next inbound frame, waiting up to timeout.
func (c *Client) ReadFrame(timeout time.Duration) (protocol.Frame, error) {
	if len(c.pending) > 0 {
		f := c.pending[0]
		c.pending = c.pending[1:]
		return f, nil
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return protocol.Frame{}, err
	}
	for {
		n, err := c.conn.Read(c.rbuf)
		if err != nil {
			return protocol.Frame{}, err
		}
		for _, text := range c.codec.Feed(c.rbuf[:n]) {
			c.pending = append(c.pending, protocol.Parse(text))
		}
		if len(c.pending) > 0 {
			f := c.pending[0]
			c.pending = c.pending[1:]
			return f, nil
		}
	}
}

// nextReceipt issues a per-client receipt id.
func (c *Client) nextReceipt() string {
	c.receipt++
	return strconv.Itoa(c.receipt)
}

// awaitReceipt reads frames until the matching RECEIPT arrives,
// queueing MESSAGE frames for later ReadFrame calls. An ERROR frame
// aborts the wait and is returned as an error.
func (c *Client) awaitReceipt(receiptID string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("receipt %s: timeout", receiptID)
		}
		f, err := c.ReadFrame(remaining)
		if err != nil {
			return err
		}
		switch f.Command {
		case protocol.CommandReceipt:
			if id, _ := f.Header(protocol.HeaderReceiptID); id == receiptID {
				return nil
			}
		case protocol.CommandError:
			message, _ := f.Header(protocol.HeaderMessage)
			return fmt.Errorf("server error: %s", message)
		default:
			c.pending = append(c.pending, f)
		}
	}
}

// Connect authenticates the session.
func (c *Client) Connect(login, passcode string, timeout time.Duration) error {
	frame := fmt.Sprintf("%s\n%s:%s\n%s:%s\n%s:%s\n\n",
		protocol.CommandConnect,
		protocol.HeaderAcceptVersion, protocol.Version,
		protocol.HeaderLogin, login,
		protocol.HeaderPasscode, passcode)
	if err := c.SendRaw(frame); err != nil {
		return err
	}
	f, err := c.ReadFrame(timeout)
	if err != nil {
		return err
	}
	if f.Command != protocol.CommandConnected {
		message, _ := f.Header(protocol.HeaderMessage)
		return fmt.Errorf("connect refused: %s", message)
	}
	return nil
}

// Subscribe registers a subscription and waits for its receipt.
func (c *Client) Subscribe(destination, subID string, timeout time.Duration) error {
	receipt := c.nextReceipt()
	frame := fmt.Sprintf("%s\n%s:%s\n%s:%s\n%s:%s\n\n",
		protocol.CommandSubscribe,
		protocol.HeaderDestination, destination,
		protocol.HeaderID, subID,
		protocol.HeaderReceipt, receipt)
	if err := c.SendRaw(frame); err != nil {
		return err
	}
	return c.awaitReceipt(receipt, timeout)
}

// Unsubscribe removes a subscription and waits for its receipt.
func (c *Client) Unsubscribe(subID string, timeout time.Duration) error {
	receipt := c.nextReceipt()
	frame := fmt.Sprintf("%s\n%s:%s\n%s:%s\n\n",
		protocol.CommandUnsubscribe,
		protocol.HeaderID, subID,
		protocol.HeaderReceipt, receipt)
	if err := c.SendRaw(frame); err != nil {
		return err
	}
	return c.awaitReceipt(receipt, timeout)
}

// Send publishes body to destination and waits for the receipt.
func (c *Client) Send(destination, body string, timeout time.Duration) error {
	receipt := c.nextReceipt()
	frame := fmt.Sprintf("%s\n%s:%s\n%s:%s\n\n%s",
		protocol.CommandSend,
		protocol.HeaderDestination, destination,
		protocol.HeaderReceipt, receipt,
		body)
	if err := c.SendRaw(frame); err != nil {
		return err
	}
	return c.awaitReceipt(receipt, timeout)
}

// SendFile publishes body to destination carrying a resource id for
// the broker's upload audit.
func (c *Client) SendFile(destination, body, resource string, timeout time.Duration) error {
	receipt := c.nextReceipt()
	frame := fmt.Sprintf("%s\n%s:%s\n%s:%s\n%s:%s\n\n%s",
		protocol.CommandSend,
		protocol.HeaderDestination, destination,
		protocol.HeaderFile, resource,
		protocol.HeaderReceipt, receipt,
		body)
	if err := c.SendRaw(frame); err != nil {
		return err
	}
	return c.awaitReceipt(receipt, timeout)
}

// Disconnect performs a protocol-level disconnect, waiting for the
// acknowledgment receipt, then closes the socket.
func (c *Client) Disconnect(timeout time.Duration) error {
	receipt := c.nextReceipt()
	frame := fmt.Sprintf("%s\n%s:%s\n\n",
		protocol.CommandDisconnect,
		protocol.HeaderReceipt, receipt)
	if err := c.SendRaw(frame); err != nil {
		return err
	}
	if err := c.awaitReceipt(receipt, timeout); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}
