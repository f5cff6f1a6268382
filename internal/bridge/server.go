package bridge

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/protocol"
	"github.com/scenewire/scenewire/internal/transport"
	"github.com/scenewire/scenewire/pkg/concurrent"
)

var (
	ErrAlreadyStarted = errors.New("server already started")
	ErrNotStarted     = errors.New("server not started")
)

// Options configure the bridge server.
type Options struct {
	// Addr is the host:port the default transport binds. The host part must
	// be loopback; transports validate this again before listening.
	Addr           string
	Transports     []string
	MaxSessions    int
	MaxLineBytes   int
	CommandTimeout time.Duration
}

func (o *Options) normalize() {
	if o.Addr == "" {
		o.Addr = "127.0.0.1:7777"
	}
	if len(o.Transports) == 0 {
		o.Transports = []string{"tcp"}
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = 32
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = 10 * time.Second
	}
}

// Server accepts connections on every configured transport and runs one
// session per connection. Stop closes the listeners and lets live sessions
// finish; Close tears the sessions down too.
type Server struct {
	host     *Host
	registry *Registry
	codec    *protocol.Codec
	opts     Options
	log      log.Log

	mu        sync.Mutex
	listeners []transport.Listener
	sessions  map[string]*session

	started int32
	stopped int32

	acceptCtx     context.Context
	acceptCancel  context.CancelFunc
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
	acceptWg      sync.WaitGroup
	sessionWg     sync.WaitGroup
}

func NewServer(host *Host, registry *Registry, opts Options, logger log.Log) *Server {
	opts.normalize()
	if logger == nil {
		logger = log.Nop()
	}
	s := &Server{
		host:     host,
		registry: registry,
		codec:    protocol.NewCodec(),
		opts:     opts,
		log:      logger.With(log.String("component", "bridge")),
		sessions: make(map[string]*session),
	}
	// Batch re-dispatches through the same table the server uses, and Status
	// reports live session counts.
	host.Commands = registry
	host.SessionCount = s.ActiveSessions
	return s
}

// Start binds every configured transport and begins accepting. It returns
// once all listeners are up; accepting runs in the background.
func (s *Server) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return ErrAlreadyStarted
	}
	s.acceptCtx, s.acceptCancel = context.WithCancel(context.Background())
	s.sessionCtx, s.sessionCancel = context.WithCancel(context.Background())

	listeners := make([]transport.Listener, 0, len(s.opts.Transports))
	for _, name := range s.opts.Transports {
		tr, err := transport.ForName(name, transport.Options{MaxLineBytes: s.opts.MaxLineBytes})
		if err != nil {
			closeAll(listeners)
			return err
		}
		addr, err := s.addrFor(name)
		if err != nil {
			closeAll(listeners)
			return err
		}
		ln, err := tr.Listen(ctx, addr)
		if err != nil {
			closeAll(listeners)
			return err
		}
		listeners = append(listeners, ln)
		s.log.Info("bridge listening",
			log.String("transport", name),
			log.String("addr", ln.Addr().String()))
	}

	s.mu.Lock()
	s.listeners = listeners
	s.mu.Unlock()

	s.acceptWg.Add(1)
	go func() {
		defer s.acceptWg.Done()
		_ = concurrent.ForEach(s.acceptCtx, listeners, 0, s.acceptLoop)
	}()
	return nil
}

// addrFor resolves the bind address per transport. tcp and quic share the
// configured port (TCP vs UDP); websocket moves one port up when tcp is also
// enabled so both can bind. Port 0 stays 0 everywhere.
func (s *Server) addrFor(name string) (string, error) {
	host, portStr, err := net.SplitHostPort(s.opts.Addr)
	if err != nil {
		return "", err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", err
	}
	if name == "websocket" && port != 0 {
		for _, other := range s.opts.Transports {
			if other == "tcp" {
				port++
				break
			}
		}
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func (s *Server) acceptLoop(ctx context.Context, ln transport.Listener) error {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) || errors.Is(err, transport.ErrClosed) {
				return nil
			}
			s.log.Warn("accept failed", log.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		s.mu.Lock()
		if len(s.sessions) >= s.opts.MaxSessions {
			s.mu.Unlock()
			s.reject(conn)
			continue
		}
		sess := newSession(conn, s.log)
		s.sessions[sess.id] = sess
		s.mu.Unlock()

		s.sessionWg.Add(1)
		go func() {
			defer s.sessionWg.Done()
			s.runSession(sess)
			s.mu.Lock()
			delete(s.sessions, sess.id)
			s.mu.Unlock()
		}()
	}
}

func (s *Server) reject(conn transport.Conn) {
	resp := protocol.Failure("", protocol.NewError(protocol.CodeUnavailable, "session limit reached"))
	if data, err := s.codec.EncodeResponse(resp); err == nil {
		_ = conn.WriteLine(data)
	}
	_ = conn.Close()
	s.log.Warn("session rejected", log.Int("limit", s.opts.MaxSessions))
}

// Stop closes the listeners and stops accepting. Sessions already connected
// keep running until their peer disconnects.
func (s *Server) Stop() error {
	if atomic.LoadInt32(&s.started) == 0 {
		return ErrNotStarted
	}
	if !atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		return nil
	}
	s.mu.Lock()
	listeners := s.listeners
	s.listeners = nil
	live := len(s.sessions)
	s.mu.Unlock()

	err := closeAll(listeners)
	s.acceptCancel()
	s.acceptWg.Wait()
	s.log.Info("bridge stopped accepting", log.Int("live_sessions", live))
	return err
}

// Close stops accepting and force-closes every live session.
func (s *Server) Close() error {
	err := s.Stop()
	if errors.Is(err, ErrNotStarted) {
		return err
	}
	s.sessionCancel()
	s.mu.Lock()
	for _, sess := range s.sessions {
		_ = sess.conn.Close()
	}
	s.mu.Unlock()
	s.sessionWg.Wait()
	s.log.Info("bridge closed")
	return err
}

func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Addrs reports the bound listener addresses in transport order. Useful when
// the configured port is 0.
func (s *Server) Addrs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := make([]string, 0, len(s.listeners))
	for _, ln := range s.listeners {
		addrs = append(addrs, ln.Addr().String())
	}
	return addrs
}

func closeAll(listeners []transport.Listener) error {
	var errs error
	for _, ln := range listeners {
		if err := ln.Close(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
