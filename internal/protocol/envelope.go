// Package protocol implements the command envelope: newline-delimited JSON
// requests and responses, the classified error taxonomy, and wire-safe
// flattening of live graph references.
package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/scenewire/scenewire/pkg/generic"
)

var emptyObject = json.RawMessage(`{}`)

// Request is one decoded command envelope. ID is an opaque correlation token
// echoed back in the response; ordering alone already correlates on a
// connection, so it is optional.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// DecodeRequest parses one request line. Absent params normalize to an empty
// object; present params must be a JSON object.
func DecodeRequest(line []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, &Error{Code: CodeDecode, Message: "malformed request", Cause: err}
	}
	if strings.TrimSpace(req.Command) == "" {
		return Request{}, NewError(CodeDecode, "missing command")
	}
	if len(req.Params) == 0 || string(req.Params) == "null" {
		req.Params = emptyObject
	} else if trimmed := bytes.TrimSpace(req.Params); len(trimmed) == 0 || trimmed[0] != '{' {
		return Request{}, NewError(CodeDecode, "params must be an object")
	}
	return req, nil
}

// Response is one command outcome. Exactly one of Result or Err is carried
// on the wire; a nil Result still serializes as an explicit null result.
type Response struct {
	ID     string
	Result any
	Err    *Error
}

func Success(id string, result any) Response {
	return Response{ID: id, Result: result}
}

func Failure(id string, err error) Response {
	return Response{ID: id, Err: AsError(err)}
}

func (r Response) OK() bool { return r.Err == nil }

type successWire struct {
	ID     string `json:"id,omitempty"`
	Result any    `json:"result"`
}

type failureWire struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// MarshalJSON keeps the exactly-one-of shape: a response is either
// {"result": ...} or {"error": "..."}, never both, never neither.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(failureWire{ID: r.ID, Error: r.Err.Message})
	}
	return json.Marshal(successWire{ID: r.ID, Result: r.Result})
}

// UnmarshalJSON is the client-side inverse.
func (r *Response) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID     string          `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *string         `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.ID = wire.ID
	if wire.Error != nil {
		r.Err = NewError(CodeInternal, *wire.Error)
		r.Result = nil
		return nil
	}
	r.Result = wire.Result
	r.Err = nil
	return nil
}

// Codec encodes responses with pooled buffers. Encoded lines carry the
// trailing newline, ready for a line-oriented transport write.
type Codec struct {
	buffers *generic.Pool[*bytes.Buffer]
}

func NewCodec() *Codec {
	return &Codec{
		buffers: generic.NewHotPool(func() *bytes.Buffer { return new(bytes.Buffer) }, 4),
	}
}

func (c *Codec) EncodeResponse(r Response) ([]byte, error) {
	buf := c.buffers.Get()
	defer func() {
		buf.Reset()
		c.buffers.Put(buf)
	}()
	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, &Error{Code: CodeInternal, Message: "encoding response", Cause: err}
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
