package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/protocol"
	"github.com/scenewire/scenewire/internal/transport"
)

// session is one connected automation client. Requests are answered strictly
// in arrival order; the loop reads, dispatches, writes, repeats.
type session struct {
	id   string
	conn transport.Conn
	log  log.Log
}

func newSession(conn transport.Conn, logger log.Log) *session {
	id := uuid.NewString()[:8]
	return &session{
		id:   id,
		conn: conn,
		log: logger.With(
			log.String("session", id),
			log.String("remote", conn.RemoteAddr().String())),
	}
}

func (s *Server) runSession(sess *session) {
	sess.log.Debug("session started")
	defer func() {
		_ = sess.conn.Close()
		sess.log.Debug("session ended")
	}()

	for {
		line, err := sess.conn.ReadLine()
		if err != nil {
			if errors.Is(err, transport.ErrLineTooLong) {
				// answer once, then drop: the stream position is unknown
				s.write(sess, protocol.Failure("", protocol.NewError(
					protocol.CodeDecode, "request line too long")))
			}
			return
		}
		resp := s.dispatch(sess, line)
		if !s.write(sess, resp) {
			return
		}
	}
}

func (s *Server) write(sess *session, resp protocol.Response) bool {
	data, err := s.codec.EncodeResponse(resp)
	if err != nil {
		sess.log.Error("response encoding failed", log.Error(err))
		fallback := protocol.Failure(resp.ID, protocol.NewError(
			protocol.CodeInternal, "response encoding failed"))
		if data, err = s.codec.EncodeResponse(fallback); err != nil {
			return false
		}
	}
	if err := sess.conn.WriteLine(data); err != nil {
		return false
	}
	return true
}

// dispatch turns one request line into one response. Decode failures answer
// an error and keep the connection; the envelope never desyncs because every
// line gets exactly one reply.
func (s *Server) dispatch(sess *session, line []byte) protocol.Response {
	req, err := protocol.DecodeRequest(line)
	if err != nil {
		return protocol.Failure("", err)
	}

	cmd, ok := s.registry.Lookup(req.Command)
	if !ok {
		return protocol.Failure(req.ID, protocol.Errorf(
			protocol.CodeUnknownCommand, "Unknown command: %s", req.Command))
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(s.sessionCtx, s.opts.CommandTimeout)
	defer cancel()

	out, err := s.host.Loop.Call(ctx, func() (any, error) {
		return cmd.Handler(ctx, s.host, req.Params)
	})
	took := time.Since(start)
	if err != nil {
		sess.log.Debug("command failed",
			log.String("command", req.Command),
			log.Duration("took", took),
			log.String("code", protocol.CodeOf(err).String()),
			log.Error(err))
		return protocol.Failure(req.ID, err)
	}

	clean, err := protocol.Sanitize(out)
	if err != nil {
		return protocol.Failure(req.ID, err)
	}
	sess.log.Debug("command ok",
		log.String("command", req.Command),
		log.Duration("took", took))
	return protocol.Success(req.ID, clean)
}
