// Package client is the Go SDK for driving a SceneWire bridge: it dials one
// of the bridge transports, sends command envelopes and reads the matching
// response line. Requests on one client are strictly sequential; the protocol
// answers in order, so a single in-flight request is the correctness model,
// not a limitation.
package client

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/transport"
)

// Config holds configuration for the client.
type Config struct {
	// Addr is the bridge address, host:port.
	Addr string
	// Transport names the wire: tcp, websocket or quic.
	Transport string

	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	MaxLineBytes   int

	// LogLevel is one of debug, info, warn, error or silent. Empty means info.
	LogLevel string
}

// DefaultConfig returns the configuration matching a bridge started with its
// own defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:7777",
		Transport:      "tcp",
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 15 * time.Second,
		MaxLineBytes:   1 << 20,
	}
}

// Client is one connection to a bridge.
type Client struct {
	conn   transport.Conn
	config Config
	logger log.Log

	mu     sync.Mutex
	seq    uint64
	closed int32
}

// Dial connects to the bridge named by config.
func Dial(ctx context.Context, config Config) (*Client, error) {
	if config.Addr == "" {
		config.Addr = "127.0.0.1:7777"
	}
	if config.Transport == "" {
		config.Transport = "tcp"
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 5 * time.Second
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 15 * time.Second
	}

	tr, err := transport.ForName(config.Transport, transport.Options{MaxLineBytes: config.MaxLineBytes})
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()
	conn, err := tr.Dial(dialCtx, config.Addr)
	if err != nil {
		return nil, err
	}

	logger := log.New(log.ParseLevel(config.LogLevel)).With(
		log.String("component", "sdk"),
		log.String("addr", config.Addr))
	logger.Debug("connected", log.String("transport", config.Transport))

	return &Client{conn: conn, config: config, logger: logger}, nil
}

// Close releases the connection. Safe to call twice.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	c.logger.Debug("closing")
	return c.conn.Close()
}

type requestWire struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type responseWire struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Do sends one command and returns its raw result. params may be nil, a
// json.RawMessage, or any value that marshals to a JSON object. A command
// that answers {"error": ...} comes back as a *CommandError.
//
// When ctx expires mid-request the connection is closed and the client is
// unusable: the response stream position cannot be recovered.
func (c *Client) Do(ctx context.Context, command string, params any) (json.RawMessage, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, ErrClientClosed
	}

	req := requestWire{
		ID:      strconv.FormatUint(atomic.AddUint64(&c.seq, 1), 10),
		Command: command,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = raw
	}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	if c.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	if err := c.conn.WriteLine(line); err != nil {
		return nil, err
	}
	resp, err := c.readLine(ctx)
	if err != nil {
		return nil, err
	}

	var wire responseWire
	if err := json.Unmarshal(resp, &wire); err != nil {
		return nil, err
	}
	c.logger.Debug("command answered",
		log.String("command", command),
		log.Duration("took", time.Since(start)),
		log.Bool("ok", wire.Error == nil))

	if wire.Error != nil {
		return nil, &CommandError{Command: command, Message: *wire.Error}
	}
	return wire.Result, nil
}

// readLine waits for one response line, honoring ctx. The underlying reads
// have no deadline of their own, so an expired ctx abandons the connection.
func (c *Client) readLine(ctx context.Context) ([]byte, error) {
	type result struct {
		line []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := c.conn.ReadLine()
		done <- result{line, err}
	}()

	select {
	case r := <-done:
		return r.line, r.err
	case <-ctx.Done():
		_ = c.Close()
		return nil, ctx.Err()
	}
}

// Call runs a command and unmarshals its result into out. A nil out discards
// the result.
func (c *Client) Call(ctx context.Context, command string, params, out any) error {
	raw, err := c.Do(ctx, command, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Ping checks bridge liveness.
func (c *Client) Ping(ctx context.Context) error {
	var pong string
	if err := c.Call(ctx, "Ping", nil, &pong); err != nil {
		return err
	}
	if pong != "pong" {
		return &CommandError{Command: "Ping", Message: "unexpected answer: " + pong}
	}
	return nil
}

// Status reports the bridge's status document.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := c.Call(ctx, "Status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// GetProperty reads one component member as its wire string.
func (c *Client) GetProperty(ctx context.Context, entity, component, property string) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	err := c.Call(ctx, "GetComponentProperty", map[string]string{
		"entity": entity, "component": component, "property": property,
	}, &out)
	return out.Value, err
}

// SetProperty writes one component member from its wire string.
func (c *Client) SetProperty(ctx context.Context, entity, component, property, value string) error {
	return c.Call(ctx, "SetComponentProperty", map[string]string{
		"entity": entity, "component": component, "property": property, "value": value,
	}, nil)
}

// Probe reports whether something accepts TCP connections at addr. It is the
// cheap liveness check for "is a bridge up", no command round trip.
func Probe(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
