package transport

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

func init() {
	register("tcp", func(opts Options) Transport { return &tcpTransport{opts: opts} })
}

// tcpTransport is the default wire flavor: a plain socket carrying
// newline-delimited JSON.
type tcpTransport struct {
	opts Options
}

func (t *tcpTransport) Name() string { return "tcp" }

func (t *tcpTransport) Listen(ctx context.Context, addr string) (Listener, error) {
	if err := ValidateLoopback(addr); err != nil {
		return nil, err
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "tcp listen %s", addr)
	}
	return &tcpListener{ln: ln, opts: t.opts}, nil
}

func (t *tcpTransport) Dial(ctx context.Context, addr string) (Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "tcp dial %s", addr)
	}
	return newLineConn(c, c.RemoteAddr(), t.opts.maxLine()), nil
}

type tcpListener struct {
	ln   net.Listener
	opts Options
}

func (l *tcpListener) Accept(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := l.ln.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "tcp accept")
	}
	return newLineConn(c, c.RemoteAddr(), l.opts.maxLine()), nil
}

func (l *tcpListener) Addr() net.Addr { return l.ln.Addr() }

func (l *tcpListener) Close() error { return l.ln.Close() }
