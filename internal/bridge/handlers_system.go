package bridge

import (
	"context"
	"encoding/json"
	"math"
)

func handlePing(_ context.Context, _ *Host, _ json.RawMessage) (any, error) {
	return "pong", nil
}

func handleStatus(ctx context.Context, h *Host, _ json.RawMessage) (any, error) {
	stats := h.Scene.Stats()
	out := map[string]any{
		"version":       Version,
		"scene":         h.Scene.Name(),
		"uptimeSeconds": math.Round(h.Uptime().Seconds()*10) / 10,
		"entities":      stats.Entities,
		"components":    stats.Components,
		"sessions":      h.sessions(),
		"queueDepth":    h.Loop.QueueDepth(),
		"ticks":         h.Loop.Ticks(),
	}
	if h.Index != nil {
		if n, err := h.Index.Count(ctx); err == nil {
			out["assets"] = n
		}
	}
	return out, nil
}

func handleListCommands(_ context.Context, h *Host, _ json.RawMessage) (any, error) {
	cmds := h.Commands.Commands()
	out := make([]map[string]any, len(cmds))
	for i, cmd := range cmds {
		out[i] = map[string]any{"name": cmd.Name, "summary": cmd.Summary}
	}
	return map[string]any{"commands": out, "count": len(out)}, nil
}
