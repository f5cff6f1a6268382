package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/protocol"
)

type componentParams struct {
	Entity string `json:"entity"`
	Type   string `json:"type"`
}

func handleAddComponent(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[componentParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	c, err := h.Registry.New(p.Type)
	if err != nil {
		return nil, err
	}
	if err := h.Scene.Attach(e, c); err != nil {
		return nil, err
	}
	return protocol.ComponentRef(c), nil
}

func handleRemoveComponent(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[componentParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	if err := h.Scene.Detach(e, p.Type); err != nil {
		return nil, err
	}
	return map[string]any{"removed": p.Type, "entity": e.Path()}, nil
}

func handleListComponents(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[entityParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	comps := e.Components()
	out := make([]map[string]any, len(comps))
	for i, c := range comps {
		out[i] = map[string]any{"type": c.TypeName()}
		if ct, ok := h.Registry.Lookup(c.TypeName()); ok {
			out[i]["members"] = len(ct.Members)
		}
	}
	return map[string]any{"entity": e.Path(), "components": out}, nil
}

func handleListComponentTypes(_ context.Context, h *Host, _ json.RawMessage) (any, error) {
	names := h.Registry.Names()
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		ct, ok := h.Registry.Lookup(name)
		if !ok {
			continue
		}
		members := make([]map[string]any, len(ct.Members))
		for i, m := range ct.Members {
			members[i] = map[string]any{
				"name":     m.Name,
				"type":     m.Type.Tag(),
				"kind":     memberKindName(m),
				"public":   m.Public,
				"settable": m.Settable(),
			}
		}
		entry := map[string]any{"name": ct.Name, "members": members}
		if len(ct.Implements) > 0 {
			entry["implements"] = ct.Implements
		}
		if len(ct.Events) > 0 {
			entry["events"] = ct.Events
		}
		out = append(out, entry)
	}
	return map[string]any{"types": out, "count": len(out)}, nil
}

func memberKindName(m fields.Member) string {
	if m.Kind == fields.MemberField {
		return "field"
	}
	return "property"
}
