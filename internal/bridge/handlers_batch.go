package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/protocol"
)

// maxBatchItems bounds a single batch so one request cannot monopolize the
// main loop for a whole timeout window.
const maxBatchItems = 64

type batchItem struct {
	ID      string          `json:"id,omitempty"`
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type batchParams struct {
	Requests []batchItem `json:"requests"`
}

// handleBatch runs several commands in one round trip and returns one
// response envelope per request, in order. The batch itself already executes
// on the main loop, so sub-handlers are called directly instead of being
// queued again.
func handleBatch(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[batchParams](params)
	if err != nil {
		return nil, err
	}
	if len(p.Requests) == 0 {
		return nil, protocol.NewError(protocol.CodeBadParams, "empty batch")
	}
	if len(p.Requests) > maxBatchItems {
		return nil, protocol.Errorf(protocol.CodeBadParams, "batch exceeds %d requests", maxBatchItems)
	}

	results := make([]protocol.Response, 0, len(p.Requests))
	for _, item := range p.Requests {
		results = append(results, runBatchItem(ctx, h, item))
	}
	return map[string]any{"results": results, "count": len(results)}, nil
}

func runBatchItem(ctx context.Context, h *Host, item batchItem) protocol.Response {
	if err := ctx.Err(); err != nil {
		return protocol.Failure(item.ID, err)
	}
	if item.Command == "" {
		return protocol.Failure(item.ID, protocol.NewError(protocol.CodeDecode, "missing command"))
	}
	if item.Command == "Batch" {
		return protocol.Failure(item.ID, protocol.NewError(protocol.CodeBadParams, "batch cannot nest"))
	}
	cmd, ok := h.Commands.Lookup(item.Command)
	if !ok {
		return protocol.Failure(item.ID, protocol.Errorf(protocol.CodeUnknownCommand, "Unknown command: %s", item.Command))
	}
	out, err := cmd.Handler(ctx, h, item.Params)
	if err != nil {
		return protocol.Failure(item.ID, err)
	}
	clean, err := protocol.Sanitize(out)
	if err != nil {
		return protocol.Failure(item.ID, err)
	}
	return protocol.Success(item.ID, clean)
}
