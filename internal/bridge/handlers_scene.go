package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/protocol"
)

type saveSceneParams struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

func handleSaveScene(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[saveSceneParams](params)
	if err != nil {
		return nil, err
	}
	if p.Path == "" {
		return nil, protocol.NewError(protocol.CodeBadParams, "missing path")
	}
	lib, err := requireLibrary(h)
	if err != nil {
		return nil, err
	}
	name := p.Name
	if name == "" {
		name = h.Scene.Name()
	}
	def := assets.Snapshot(h.Scene, h.Registry, name)
	a, err := lib.Save(p.Path, def)
	if err != nil {
		return nil, err
	}
	if h.Index != nil {
		if err := h.Index.Upsert(ctx, a.Path); err != nil {
			h.logger().Debug("index upsert after save failed",
				log.String("path", a.Path), log.Error(err))
		}
	}
	return map[string]any{
		"path":     a.Path,
		"name":     def.Name,
		"entities": len(def.Children),
	}, nil
}

func handleClearScene(_ context.Context, h *Host, _ json.RawMessage) (any, error) {
	n := h.Scene.Len()
	h.Scene.Clear()
	return map[string]any{"cleared": n}, nil
}
