package transport

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
)

const quicALPN = "scenewire-quic"

func init() {
	register("quic", func(opts Options) Transport { return &quicTransport{opts: opts} })
}

// quicTransport carries each session on a single bidirectional stream. The
// client opens the stream; the server picks it up on the first read so a
// dialer that never speaks cannot stall the accept loop.
type quicTransport struct {
	opts Options

	tlsOnce sync.Once
	tlsConf *tls.Config
	tlsErr  error
}

func (t *quicTransport) Name() string { return "quic" }

func (t *quicTransport) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  30 * time.Second,
		KeepAlivePeriod: 15 * time.Second,
	}
}

func (t *quicTransport) serverTLS() (*tls.Config, error) {
	t.tlsOnce.Do(func() {
		t.tlsConf, t.tlsErr = loopbackTLS()
	})
	return t.tlsConf, t.tlsErr
}

func (t *quicTransport) Listen(ctx context.Context, addr string) (Listener, error) {
	if err := ValidateLoopback(addr); err != nil {
		return nil, err
	}
	tlsConf, err := t.serverTLS()
	if err != nil {
		return nil, err
	}
	ln, err := quic.ListenAddr(addr, tlsConf, t.quicConfig())
	if err != nil {
		return nil, errors.Wrapf(err, "quic listen %s", addr)
	}
	return &quicListener{ln: ln, opts: t.opts}, nil
}

func (t *quicTransport) Dial(ctx context.Context, addr string) (Conn, error) {
	clientTLS := &tls.Config{
		// The server presents a throwaway self-signed loopback certificate.
		InsecureSkipVerify: true,
		NextProtos:         []string{quicALPN},
	}
	sess, err := quic.DialAddr(ctx, addr, clientTLS, t.quicConfig())
	if err != nil {
		return nil, errors.Wrapf(err, "quic dial %s", addr)
	}
	stream, err := sess.OpenStreamSync(ctx)
	if err != nil {
		_ = sess.CloseWithError(0, "no stream")
		return nil, errors.Wrap(err, "open stream")
	}
	c := &quicConn{sess: sess, maxLine: t.opts.maxLine()}
	c.streamOnce.Do(func() {
		c.line = newLineConn(stream, sess.RemoteAddr(), c.maxLine)
	})
	return c, nil
}

type quicListener struct {
	ln   *quic.Listener
	opts Options
}

func (l *quicListener) Accept(ctx context.Context) (Conn, error) {
	sess, err := l.ln.Accept(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The listener only fails permanently, on Close.
		return nil, errors.Wrapf(ErrClosed, "quic accept: %v", err)
	}
	return &quicConn{sess: sess, maxLine: l.opts.maxLine()}, nil
}

func (l *quicListener) Addr() net.Addr { return l.ln.Addr() }

func (l *quicListener) Close() error { return l.ln.Close() }

type quicConn struct {
	sess    *quic.Conn
	maxLine int

	streamOnce sync.Once
	line       *lineConn
	streamErr  error
}

func (c *quicConn) ensureStream() error {
	c.streamOnce.Do(func() {
		stream, err := c.sess.AcceptStream(context.Background())
		if err != nil {
			c.streamErr = errors.Wrap(err, "accept stream")
			return
		}
		c.line = newLineConn(stream, c.sess.RemoteAddr(), c.maxLine)
	})
	return c.streamErr
}

func (c *quicConn) ReadLine() ([]byte, error) {
	if err := c.ensureStream(); err != nil {
		return nil, err
	}
	return c.line.ReadLine()
}

func (c *quicConn) WriteLine(line []byte) error {
	if err := c.ensureStream(); err != nil {
		return err
	}
	return c.line.WriteLine(line)
}

// Close tears down the whole session, which also aborts a pending stream
// accept and any blocked reads.
func (c *quicConn) Close() error {
	return c.sess.CloseWithError(0, "session closed")
}

func (c *quicConn) RemoteAddr() net.Addr { return c.sess.RemoteAddr() }
