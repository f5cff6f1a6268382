package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/core/components"
	"github.com/scenewire/scenewire/internal/core/events/bus"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/mainloop"
	"github.com/scenewire/scenewire/internal/core/scene"
)

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"id":"r1","command":"Ping","params":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, "Ping", req.Command)
	assert.JSONEq(t, `{"x":1}`, string(req.Params))

	req, err = DecodeRequest([]byte(`{"command":"Ping"}`))
	require.NoError(t, err, "absent params should decode")
	assert.Equal(t, `{}`, string(req.Params), "absent params normalize to an empty object")

	req, err = DecodeRequest([]byte(`{"command":"Ping","params":null}`))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(req.Params))
}

func TestDecodeRequestRejects(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"invalid json", `{"command":`},
		{"not an object", `[1,2,3]`},
		{"missing command", `{"params":{}}`},
		{"empty command", `{"command":"  "}`},
		{"params not object", `{"command":"Ping","params":[1]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tc.line))
			require.Error(t, err)
			assert.Equal(t, CodeDecode, CodeOf(err))
		})
	}
}

func TestResponseMarshalExactlyOne(t *testing.T) {
	out, err := json.Marshal(Success("r1", map[string]any{"pong": true}))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"result"`)
	assert.NotContains(t, string(out), `"error"`)

	out, err = json.Marshal(Success("", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":null}`, string(out), "nil result still serializes explicitly")

	out, err = json.Marshal(Failure("r2", NewError(CodeUnknownCommand, "Unknown command: Frobnicate")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r2","error":"Unknown command: Frobnicate"}`, string(out))
	assert.NotContains(t, string(out), `"result"`)
}

func TestResponseUnmarshal(t *testing.T) {
	var ok Response
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","result":{"n":1}}`), &ok))
	assert.True(t, ok.OK())
	assert.Equal(t, "a", ok.ID)

	var fail Response
	require.NoError(t, json.Unmarshal([]byte(`{"error":"boom"}`), &fail))
	require.False(t, fail.OK())
	assert.Equal(t, "boom", fail.Err.Message)
	assert.Nil(t, fail.Result)
}

func TestCodecEncodeIsOneLine(t *testing.T) {
	codec := NewCodec()
	line, err := codec.EncodeResponse(Success("x", map[string]any{"ok": true}))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(line), "\n"), "encoded response must end the line")
	assert.Equal(t, 1, strings.Count(string(line), "\n"), "exactly one line per response")

	var back Response
	require.NoError(t, json.Unmarshal(line, &back))
	assert.True(t, back.OK())
}

func TestSanitizeFlattensReferences(t *testing.T) {
	reg := fields.NewRegistry()
	require.NoError(t, components.RegisterBuiltins(reg))
	sc := scene.New("main", bus.New())
	player, err := sc.NewEntity("Player", nil)
	require.NoError(t, err)
	tr := components.NewTransform()
	require.NoError(t, sc.Attach(player, tr))

	v, err := Sanitize(map[string]any{
		"entity":    player,
		"component": tr,
		"values":    []any{1, "two", player},
	})
	require.NoError(t, err)

	m := v.(map[string]any)
	ent := m["entity"].(map[string]any)
	assert.Equal(t, "Player", ent["name"])
	assert.Equal(t, "Player", ent["path"])
	assert.NotEmpty(t, ent["id"])

	comp := m["component"].(map[string]any)
	assert.Equal(t, "Transform", comp["type"])
	assert.Equal(t, "Player", comp["entity"])

	list := m["values"].([]any)
	assert.Equal(t, "Player", list[2].(map[string]any)["path"])

	// The sanitized tree must be plain JSON shapes.
	_, err = json.Marshal(v)
	require.NoError(t, err)
}

func TestSanitizeDepthGuard(t *testing.T) {
	v := any("leaf")
	for i := 0; i < maxValueDepth+2; i++ {
		v = map[string]any{"next": v}
	}
	_, err := Sanitize(v)
	assert.ErrorIs(t, err, ErrValueDepth)
}

func TestCodeOfClassifies(t *testing.T) {
	cases := []struct {
		err  error
		code Code
	}{
		{nil, CodeOK},
		{fmt.Errorf("find: %w", scene.ErrEntityNotFound), CodeEntityNotFound},
		{fields.ErrMemberNotFound, CodeMemberNotFound},
		{fmt.Errorf("set: %w", fields.ErrConversion), CodeConversion},
		{mainloop.ErrQueueFull, CodeQueueFull},
		{&mainloop.PanicError{Value: "kaboom"}, CodeHostFault},
		{context.DeadlineExceeded, CodeTimeout},
		{NewError(CodeAssetNotFound, "gone"), CodeAssetNotFound},
		{fmt.Errorf("some io failure"), CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, CodeOf(tc.err), "error %v", tc.err)
	}
}

func TestAsErrorPreservesClassification(t *testing.T) {
	orig := NewError(CodeTimeout, "command timed out")
	wrapped := fmt.Errorf("dispatch: %w", orig)
	assert.Same(t, orig, AsError(wrapped))

	plain := AsError(fmt.Errorf("plain"))
	assert.Equal(t, CodeInternal, plain.Code)
	assert.Equal(t, "plain", plain.Message)
}
