package transport

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

func init() {
	register("websocket", func(opts Options) Transport { return &wsTransport{opts: opts} })
}

// wsTransport frames the protocol as one text message per envelope line,
// upgraded on the /ws path. Useful for browser-hosted tooling panels.
type wsTransport struct {
	opts Options
}

func (t *wsTransport) Name() string { return "websocket" }

func (t *wsTransport) Listen(ctx context.Context, addr string) (Listener, error) {
	if err := ValidateLoopback(addr); err != nil {
		return nil, err
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "websocket listen %s", addr)
	}
	l := &wsListener{
		ln:     ln,
		conns:  make(chan Conn, 16),
		closed: make(chan struct{}),
		opts:   t.opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Listeners only ever bind loopback.
				return true
			},
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", l.handleUpgrade)
	l.server = &http.Server{Handler: mux}
	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.closeOnce.Do(func() { close(l.closed) })
		}
	}()
	return l, nil
}

func (t *wsTransport) Dial(ctx context.Context, addr string) (Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	c, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "websocket dial %s", addr)
	}
	c.SetReadLimit(int64(t.opts.maxLine()))
	return &wsConn{conn: c}, nil
}

type wsListener struct {
	ln        net.Listener
	server    *http.Server
	upgrader  websocket.Upgrader
	conns     chan Conn
	closed    chan struct{}
	closeOnce sync.Once
	opts      Options
}

func (l *wsListener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	c, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c.SetReadLimit(int64(l.opts.maxLine()))
	select {
	case l.conns <- &wsConn{conn: c}:
	case <-l.closed:
		_ = c.Close()
	}
}

func (l *wsListener) Accept(ctx context.Context) (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *wsListener) Addr() net.Addr { return l.ln.Addr() }

func (l *wsListener) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return l.server.Shutdown(ctx)
}

// wsConn adapts a websocket connection to the line contract. Writes are
// serialized because the underlying connection permits one writer at a time.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) ReadLine() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			if errors.Is(err, websocket.ErrReadLimit) {
				return nil, ErrLineTooLong
			}
			return nil, err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return bytes.TrimRight(data, "\r\n"), nil
	}
}

func (c *wsConn) WriteLine(line []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	err := c.conn.WriteMessage(websocket.TextMessage, bytes.TrimRight(line, "\n"))
	return errors.Wrap(err, "write message")
}

func (c *wsConn) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }
