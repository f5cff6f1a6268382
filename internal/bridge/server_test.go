package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/transport"
)

func startTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	h := newTestHost(t)
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	srv := NewServer(h, reg, opts, log.Nop())
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Close() })
	require.NotEmpty(t, srv.Addrs())
	return srv
}

func dialServer(t *testing.T, name, addr string) transport.Conn {
	t.Helper()
	tr, err := transport.ForName(name, transport.Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := tr.Dial(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn transport.Conn, line string) map[string]any {
	t.Helper()
	require.NoError(t, conn.WriteLine([]byte(line)))
	resp, err := conn.ReadLine()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(resp, &m))

	_, hasResult := m["result"]
	_, hasError := m["error"]
	assert.True(t, hasResult != hasError, "response must carry exactly one of result or error: %s", resp)
	return m
}

func TestServerEndToEnd(t *testing.T) {
	srv := startTestServer(t, Options{Transports: []string{"tcp"}})
	conn := dialServer(t, "tcp", srv.Addrs()[0])

	pong := roundTrip(t, conn, `{"id":"1","command":"Ping"}`)
	assert.Equal(t, "1", pong["id"])
	assert.Equal(t, "pong", pong["result"])

	created := roundTrip(t, conn, `{"command":"CreateEntity","params":{"name":"Hero"}}`)
	result := created["result"].(map[string]any)
	assert.Equal(t, "Hero", result["path"])

	found := roundTrip(t, conn, `{"command":"FindEntity","params":{"name":"Hero"}}`)
	assert.Equal(t, result["id"], found["result"].(map[string]any)["id"])

	unknown := roundTrip(t, conn, `{"id":"x","command":"Frobnicate"}`)
	assert.Equal(t, "Unknown command: Frobnicate", unknown["error"])
	assert.Equal(t, "x", unknown["id"])

	missing := roundTrip(t, conn, `{"command":"FindEntity","params":{"name":"Nobody"}}`)
	assert.Equal(t, "entity not found: Nobody", missing["error"])

	// malformed input answers an error without dropping the connection
	garbled := roundTrip(t, conn, `this is not json`)
	assert.Contains(t, garbled["error"], "malformed request")

	still := roundTrip(t, conn, `{"command":"Ping"}`)
	assert.Equal(t, "pong", still["result"])
}

func TestServerAllTransports(t *testing.T) {
	srv := startTestServer(t, Options{Transports: []string{"tcp", "websocket", "quic"}})
	addrs := srv.Addrs()
	require.Len(t, addrs, 3)

	for i, name := range []string{"tcp", "websocket", "quic"} {
		t.Run(name, func(t *testing.T) {
			conn := dialServer(t, name, addrs[i])
			pong := roundTrip(t, conn, `{"command":"Ping"}`)
			assert.Equal(t, "pong", pong["result"])
		})
	}
}

func TestServerSessionLimit(t *testing.T) {
	srv := startTestServer(t, Options{Transports: []string{"tcp"}, MaxSessions: 1})
	addr := srv.Addrs()[0]

	first := dialServer(t, "tcp", addr)
	pong := roundTrip(t, first, `{"command":"Ping"}`)
	require.Equal(t, "pong", pong["result"])

	second := dialServer(t, "tcp", addr)
	line, err := second.ReadLine()
	require.NoError(t, err, "rejected sessions still get an answer")
	var m map[string]any
	require.NoError(t, json.Unmarshal(line, &m))
	assert.Equal(t, "session limit reached", m["error"])

	// dropping the live session frees the slot
	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 0 },
		2*time.Second, 10*time.Millisecond)

	third := dialServer(t, "tcp", addr)
	pong = roundTrip(t, third, `{"command":"Ping"}`)
	assert.Equal(t, "pong", pong["result"])
}

func TestServerLineLimit(t *testing.T) {
	srv := startTestServer(t, Options{Transports: []string{"tcp"}, MaxLineBytes: 128})
	conn := dialServer(t, "tcp", srv.Addrs()[0])

	long := `{"command":"Ping","params":{"pad":"` + strings.Repeat("x", 512) + `"}}`
	require.NoError(t, conn.WriteLine([]byte(long)))

	line, err := conn.ReadLine()
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(line, &m))
	assert.Equal(t, "request line too long", m["error"])

	// the stream position is unknown after an oversize line, so the server
	// hangs up
	_, err = conn.ReadLine()
	assert.Error(t, err)
}

func TestServerStartErrors(t *testing.T) {
	h := newTestHost(t)
	reg := NewRegistry()
	require.NoError(t, RegisterBuiltins(reg))

	srv := NewServer(h, reg, Options{Addr: "127.0.0.1:0", Transports: []string{"carrier-pigeon"}}, log.Nop())
	require.ErrorIs(t, srv.Start(context.Background()), transport.ErrUnknownTransport)

	srv = NewServer(h, reg, Options{Addr: "0.0.0.0:0"}, log.Nop())
	require.ErrorIs(t, srv.Start(context.Background()), transport.ErrNotLoopback)

	srv = NewServer(h, reg, Options{Addr: "127.0.0.1:0"}, log.Nop())
	require.ErrorIs(t, srv.Stop(), ErrNotStarted)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Close() })
	require.ErrorIs(t, srv.Start(context.Background()), ErrAlreadyStarted)
}

func TestServerStopKeepsSessions(t *testing.T) {
	srv := startTestServer(t, Options{Transports: []string{"tcp"}})
	addr := srv.Addrs()[0]
	conn := dialServer(t, "tcp", addr)

	pong := roundTrip(t, conn, `{"command":"Ping"}`)
	require.Equal(t, "pong", pong["result"])

	require.NoError(t, srv.Stop())

	// no new connections, but the live session still answers
	pong = roundTrip(t, conn, `{"command":"Ping"}`)
	assert.Equal(t, "pong", pong["result"])

	tr, err := transport.ForName("tcp", transport.Options{})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if c, err := tr.Dial(ctx, addr); err == nil {
		// the dial may land before the listener fully closes; the connection
		// must still go nowhere
		_ = c.WriteLine([]byte(`{"command":"Ping"}`))
		_, err := c.ReadLine()
		assert.Error(t, err)
		_ = c.Close()
	}
}
