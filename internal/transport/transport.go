// Package transport provides the line-oriented connection layer under the
// bridge: every transport delivers the same contract, one request line in,
// one response line out, on loopback addresses only.
package transport

import (
	"context"
	"net"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrUnknownTransport = errors.New("unknown transport")
	ErrNotLoopback      = errors.New("address is not loopback")
	ErrLineTooLong      = errors.New("line exceeds maximum length")
	ErrClosed           = errors.New("connection is closed")
)

// DefaultMaxLineBytes bounds a single request or response line.
const DefaultMaxLineBytes = 1 << 20

// Conn carries newline-delimited envelopes. ReadLine returns one line
// without its trailing newline; WriteLine tolerates a present or absent one.
type Conn interface {
	ReadLine() ([]byte, error)
	WriteLine(line []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// Listener accepts bridge connections.
type Listener interface {
	Accept(ctx context.Context) (Conn, error)
	Addr() net.Addr
	Close() error
}

// Transport binds listeners and dials connections for one wire flavor.
type Transport interface {
	Name() string
	Listen(ctx context.Context, addr string) (Listener, error)
	Dial(ctx context.Context, addr string) (Conn, error)
}

// Options tune a transport instance.
type Options struct {
	MaxLineBytes int
}

func (o Options) maxLine() int {
	if o.MaxLineBytes <= 0 {
		return DefaultMaxLineBytes
	}
	return o.MaxLineBytes
}

type factory func(Options) Transport

var (
	registryMu sync.RWMutex
	registry   = make(map[string]factory)
)

// register adds a transport flavor; called from package init funcs.
func register(name string, f factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// ForName builds the named transport.
func ForName(name string, opts Options) (Transport, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrap(ErrUnknownTransport, name)
	}
	return f(opts), nil
}

// Names lists registered transports, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateLoopback rejects any bind or dial address that does not resolve to
// the loopback interface. The bridge drives a local host process; exposing
// it beyond the machine is never intended.
func ValidateLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.Wrapf(err, "invalid address %q", addr)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return errors.Wrap(ErrNotLoopback, addr)
	}
	return nil
}
