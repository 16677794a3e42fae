// File: server/server_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// End-to-end tests over loopback TCP using the client package. The
// thread-per-connection strategy runs on every platform; the reactor
// strategy has its own linux-only test file.

package server_test

import (
	"strings"
	"testing"
	"time"

	"github.com/momentics/hioload-stomp/client"
	"github.com/momentics/hioload-stomp/directory"
	"github.com/momentics/hioload-stomp/protocol"
	"github.com/momentics/hioload-stomp/server"
)

const ioTimeout = 2 * time.Second

func startServer(t *testing.T, strategy server.Strategy, opts ...server.Option) (*server.Server, string) {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Strategy = strategy
	srv, err := server.New(cfg, opts...)
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	go func() { _ = srv.Run() }()
	t.Cleanup(srv.Shutdown)
	return srv, srv.Addr().String()
}

func dialAndConnect(t *testing.T, addr, login string) *client.Client {
	t.Helper()
	c, err := client.Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := c.Connect(login, "pw", ioTimeout); err != nil {
		t.Fatalf("connect as %s: %v", login, err)
	}
	return c
}

func TestSelfPublishRoundTrip(t *testing.T) {
	_, addr := startServer(t, server.StrategyThreadPerConn)
	c := dialAndConnect(t, addr, "alice")

	if err := c.Subscribe("/news", "0", ioTimeout); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := c.Send("/news", "hello\nworld", ioTimeout); err != nil {
		t.Fatalf("send: %v", err)
	}

	f, err := c.ReadFrame(ioTimeout)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if f.Command != protocol.CommandMessage {
		t.Fatalf("command: %q", f.Command)
	}
	if v, _ := f.Header(protocol.HeaderSubscription); v != "0" {
		t.Errorf("subscription: %q", v)
	}
	if v, _ := f.Header(protocol.HeaderMessageID); v != "0" {
		t.Errorf("message-id: %q", v)
	}
	if f.Body != "hello\nworld" {
		t.Errorf("body: %q", f.Body)
	}
}

func TestFanOutBetweenClients(t *testing.T) {
	_, addr := startServer(t, server.StrategyThreadPerConn)
	alice := dialAndConnect(t, addr, "alice")
	bob := dialAndConnect(t, addr, "bob")

	if err := alice.Subscribe("/news", "7", ioTimeout); err != nil {
		t.Fatalf("alice subscribe: %v", err)
	}
	if err := bob.Subscribe("/news", "3", ioTimeout); err != nil {
		t.Fatalf("bob subscribe: %v", err)
	}
	if err := alice.Send("/news", "breaking", ioTimeout); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, tc := range []struct {
		c     *client.Client
		subID string
	}{{alice, "7"}, {bob, "3"}} {
		f, err := tc.c.ReadFrame(ioTimeout)
		if err != nil {
			t.Fatalf("read for sub %s: %v", tc.subID, err)
		}
		if v, _ := f.Header(protocol.HeaderSubscription); v != tc.subID {
			t.Errorf("subscription: got %q want %q", v, tc.subID)
		}
		if f.Body != "breaking" {
			t.Errorf("body: %q", f.Body)
		}
	}
}

func TestUnsubscribedReceivesNothing(t *testing.T) {
	_, addr := startServer(t, server.StrategyThreadPerConn)
	alice := dialAndConnect(t, addr, "alice")
	bob := dialAndConnect(t, addr, "bob")

	if err := alice.Subscribe("/news", "0", ioTimeout); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := bob.Subscribe("/news", "0", ioTimeout); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := alice.Unsubscribe("0", ioTimeout); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := bob.Send("/news", "hello", ioTimeout); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := alice.ReadFrame(300 * time.Millisecond); err == nil {
		t.Error("unsubscribed client received a message")
	}
}

func TestErrorTerminatesSession(t *testing.T) {
	_, addr := startServer(t, server.StrategyThreadPerConn)
	c, err := client.Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	// SEND before CONNECT: the server must reply with ERROR and then
	// close the socket.
	if err := c.SendRaw("SEND\ndestination:/news\n\nhello"); err != nil {
		t.Fatalf("send raw: %v", err)
	}
	f, err := c.ReadFrame(ioTimeout)
	if err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if f.Command != protocol.CommandError {
		t.Fatalf("command: %q", f.Command)
	}
	if v, _ := f.Header(protocol.HeaderMessage); v != "Not logged in" {
		t.Errorf("message: %q", v)
	}
	if _, err := c.ReadFrame(ioTimeout); err == nil {
		t.Error("socket must be closed after an error")
	}
}

func TestDisconnectThenRelogin(t *testing.T) {
	dir := directory.New()
	_, addr := startServer(t, server.StrategyThreadPerConn, server.WithDirectory(dir))

	c := dialAndConnect(t, addr, "alice")
	if err := c.Disconnect(ioTimeout); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if _, active := dir.ActiveUser("alice"); active {
		t.Error("user still active after disconnect")
	}

	// Same credentials must work on a fresh connection.
	dialAndConnect(t, addr, "alice")
}

func TestDuplicateLoginRejected(t *testing.T) {
	_, addr := startServer(t, server.StrategyThreadPerConn)
	dialAndConnect(t, addr, "alice")

	c, err := client.Dial(addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	err = c.Connect("alice", "pw", ioTimeout)
	if err == nil || !strings.Contains(err.Error(), "User already logged in") {
		t.Errorf("second login: %v", err)
	}
}

func TestFileUploadAudited(t *testing.T) {
	dir := directory.New()
	_, addr := startServer(t, server.StrategyThreadPerConn, server.WithDirectory(dir))

	c := dialAndConnect(t, addr, "alice")
	if err := c.Subscribe("/files", "0", ioTimeout); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := c.SendFile("/files", "payload", "report.txt", ioTimeout); err != nil {
		t.Fatalf("send file: %v", err)
	}

	uploads := dir.Uploads()
	if len(uploads) != 1 || uploads[0].Resource != "report.txt" {
		t.Errorf("uploads: %#v", uploads)
	}
}

func TestMetricsCounters(t *testing.T) {
	srv, addr := startServer(t, server.StrategyThreadPerConn)
	c := dialAndConnect(t, addr, "alice")
	if err := c.Subscribe("/news", "0", ioTimeout); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := c.Send("/news", "hello", ioTimeout); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := c.ReadFrame(ioTimeout); err != nil {
		t.Fatalf("read: %v", err)
	}

	m := srv.Metrics()
	if m.Get(server.MetricConnectionsAccepted) < 1 {
		t.Error("accepted counter never incremented")
	}
	if m.Get(server.MetricFramesProcessed) < 3 {
		t.Errorf("frames processed: %d", m.Get(server.MetricFramesProcessed))
	}
}

func TestShutdownDisconnectsClients(t *testing.T) {
	srv, addr := startServer(t, server.StrategyThreadPerConn)
	c := dialAndConnect(t, addr, "alice")

	srv.Shutdown()
	if _, err := c.ReadFrame(ioTimeout); err == nil {
		t.Error("client socket survived shutdown")
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := server.ParseStrategy("tpc"); err != nil || s != server.StrategyThreadPerConn {
		t.Errorf("tpc: %v %v", s, err)
	}
	if s, err := server.ParseStrategy("reactor"); err != nil || s != server.StrategyReactor {
		t.Errorf("reactor: %v %v", s, err)
	}
	if _, err := server.ParseStrategy("bogus"); err == nil {
		t.Error("bogus strategy accepted")
	}
}
