package transport

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForName(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"quic", "tcp", "websocket"}, names, "registered transports")

	tr, err := ForName("tcp", Options{})
	require.NoError(t, err)
	assert.Equal(t, "tcp", tr.Name())

	_, err = ForName("carrier-pigeon", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTransport), "unexpected error: %v", err)
}

func TestValidateLoopback(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:7777", "localhost:7777", "[::1]:7777", "127.0.0.2:0"} {
		assert.NoError(t, ValidateLoopback(addr), "expected %s to pass", addr)
	}
	for _, addr := range []string{"0.0.0.0:7777", ":7777", "192.168.1.5:7777", "example.com:7777", "7777"} {
		assert.Error(t, ValidateLoopback(addr), "expected %s to fail", addr)
	}
}

func TestRejectsNonLoopbackBind(t *testing.T) {
	ctx := context.Background()
	for _, name := range Names() {
		tr, err := ForName(name, Options{})
		require.NoError(t, err)
		_, err = tr.Listen(ctx, "0.0.0.0:0")
		require.Error(t, err, "%s must refuse wildcard binds", name)
		assert.True(t, errors.Is(err, ErrNotLoopback), "%s: unexpected error %v", name, err)
	}
}

func TestTransportRoundTrip(t *testing.T) {
	for _, name := range []string{"tcp", "websocket", "quic"} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			tr, err := ForName(name, Options{})
			require.NoError(t, err)

			ln, err := tr.Listen(ctx, "127.0.0.1:0")
			require.NoError(t, err)
			defer ln.Close()

			serverErr := make(chan error, 1)
			go func() {
				conn, err := ln.Accept(ctx)
				if err != nil {
					serverErr <- err
					return
				}
				defer conn.Close()
				for i := 0; i < 2; i++ {
					line, err := conn.ReadLine()
					if err != nil {
						serverErr <- err
						return
					}
					if err := conn.WriteLine(append([]byte("echo "), line...)); err != nil {
						serverErr <- err
						return
					}
				}
				serverErr <- nil
			}()

			conn, err := tr.Dial(ctx, ln.Addr().String())
			require.NoError(t, err)
			defer conn.Close()

			// Two lines written back to back must come back separately framed.
			require.NoError(t, conn.WriteLine([]byte(`{"command":"Ping"}`)))
			require.NoError(t, conn.WriteLine([]byte(`{"command":"Status"}`+"\n")))

			line, err := conn.ReadLine()
			require.NoError(t, err)
			assert.Equal(t, `echo {"command":"Ping"}`, string(line))

			line, err = conn.ReadLine()
			require.NoError(t, err)
			assert.Equal(t, `echo {"command":"Status"}`, string(line))

			require.NoError(t, <-serverErr)
		})
	}
}

func TestTCPLineLimit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := ForName("tcp", Options{MaxLineBytes: 64})
	require.NoError(t, err)

	ln, err := tr.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	readErr := make(chan error, 1)
	go func() {
		conn, err := ln.Accept(ctx)
		if err != nil {
			readErr <- err
			return
		}
		defer conn.Close()
		_, err = conn.ReadLine()
		readErr <- err
	}()

	conn, err := tr.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteLine([]byte(strings.Repeat("x", 200))))

	err = <-readErr
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLineTooLong), "unexpected error: %v", err)
}
