package transport

import (
	"bufio"
	"io"
	"net"

	"github.com/pkg/errors"
)

// lineConn frames newline-delimited payloads over any byte stream. It backs
// both the raw TCP flavor and the QUIC stream flavor.
type lineConn struct {
	scanner *bufio.Scanner
	w       io.Writer
	closer  io.Closer
	remote  net.Addr
}

func newLineConn(rw io.ReadWriteCloser, remote net.Addr, maxLine int) *lineConn {
	sc := bufio.NewScanner(rw)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &lineConn{scanner: sc, w: rw, closer: rw, remote: remote}
}

func (c *lineConn) ReadLine() ([]byte, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, ErrLineTooLong
			}
			return nil, err
		}
		return nil, io.EOF
	}
	// The scanner reuses its buffer on the next Scan.
	buf := c.scanner.Bytes()
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

func (c *lineConn) WriteLine(line []byte) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		withNL := make([]byte, 0, len(line)+1)
		withNL = append(withNL, line...)
		line = append(withNL, '\n')
	}
	_, err := c.w.Write(line)
	return errors.Wrap(err, "write line")
}

func (c *lineConn) Close() error {
	return c.closer.Close()
}

func (c *lineConn) RemoteAddr() net.Addr { return c.remote }
