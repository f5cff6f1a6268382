package bridge

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/scene"
	"github.com/scenewire/scenewire/internal/protocol"
)

func decodeParams[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return v, protocol.NewError(protocol.CodeBadParams, "invalid params: "+err.Error())
	}
	return v, nil
}

// resolveEntity accepts an id, a slash path or a bare name, in that order of
// preference. Bare names follow the scene-order first-match rule.
func resolveEntity(h *Host, ref string) (*scene.Entity, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, protocol.NewError(protocol.CodeBadParams, "missing entity reference")
	}
	if id, err := uuid.Parse(ref); err == nil {
		if e, ok := h.Scene.ByID(id); ok {
			return e, nil
		}
	}
	if strings.Contains(ref, "/") {
		if e, ok := h.Scene.FindPath(ref); ok {
			return e, nil
		}
	} else if e, ok := h.Scene.Find(ref); ok {
		return e, nil
	}
	return nil, protocol.Errorf(protocol.CodeEntityNotFound, "entity not found: %s", ref)
}

func requireComponent(e *scene.Entity, typeName string) (scene.Component, error) {
	if strings.TrimSpace(typeName) == "" {
		return nil, protocol.NewError(protocol.CodeBadParams, "missing component type")
	}
	c, ok := e.Component(typeName)
	if !ok {
		return nil, protocol.Errorf(protocol.CodeComponentNotFound,
			"component not found: %s on %s", typeName, e.Path())
	}
	return c, nil
}

func requireLibrary(h *Host) (*assets.Library, error) {
	if h.Library == nil {
		return nil, protocol.NewError(protocol.CodeUnavailable, "asset library not available")
	}
	return h.Library, nil
}

func requireIndex(h *Host) (*assets.Index, error) {
	if h.Index == nil {
		return nil, protocol.NewError(protocol.CodeUnavailable, "asset index not available")
	}
	return h.Index, nil
}

// newEntity creates an entity and gives it the Transform every scene object
// carries, when the type is registered.
func newEntity(h *Host, name string, parent *scene.Entity) (*scene.Entity, error) {
	e, err := h.Scene.NewEntity(name, parent)
	if err != nil {
		return nil, err
	}
	if ct, ok := h.Registry.Lookup("Transform"); ok {
		_ = h.Scene.Attach(e, ct.New())
	}
	return e, nil
}

func entityInfo(e *scene.Entity) map[string]any {
	comps := e.Components()
	types := make([]string, len(comps))
	for i, c := range comps {
		types[i] = c.TypeName()
	}
	return map[string]any{
		"name":       e.Name(),
		"id":         e.ID().String(),
		"path":       e.Path(),
		"active":     e.Active(),
		"components": types,
	}
}

func entitySummary(e *scene.Entity) map[string]any {
	return map[string]any{
		"name":       e.Name(),
		"path":       e.Path(),
		"active":     e.Active(),
		"components": len(e.Components()),
	}
}
