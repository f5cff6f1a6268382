package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/protocol"
)

type propertyParams struct {
	Entity    string `json:"entity"`
	Component string `json:"component"`
	Property  string `json:"property"`
}

func handleGetComponentProperty(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[propertyParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	c, err := requireComponent(e, p.Component)
	if err != nil {
		return nil, err
	}
	v, vt, err := h.Registry.Get(c, p.Property)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"entity":    e.Path(),
		"component": c.TypeName(),
		"property":  p.Property,
		"value":     fields.FormatValue(v),
		"type":      vt.Tag(),
	}, nil
}

type setPropertyParams struct {
	propertyParams
	Value        string `json:"value"`
	ValueType    string `json:"valueType,omitempty"`
	RequireValue bool   `json:"requireValue,omitempty"`
}

// handleSetComponentProperty writes one member. Scalars parse against the
// declared member type; reference members resolve the value through the
// tiered lookup and assign null when nothing resolves, unless requireValue
// was set. A failed member lookup leaves the graph untouched.
func handleSetComponentProperty(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[setPropertyParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	c, err := requireComponent(e, p.Component)
	if err != nil {
		return nil, err
	}
	ct, ok := h.Registry.Lookup(c.TypeName())
	if !ok {
		return nil, protocol.Errorf(protocol.CodeUnknownType, "unregistered component type: %s", c.TypeName())
	}
	m, ok := ct.Member(p.Property)
	if !ok {
		return nil, protocol.Errorf(protocol.CodeMemberNotFound,
			"member not found: %s.%s", ct.Name, p.Property)
	}

	var value any
	resolved := true
	switch {
	case m.Type.IsScalar():
		if value, err = fields.ParseScalar(m.Type, p.Value, p.ValueType); err != nil {
			return nil, err
		}
	case p.Value == "" || p.Value == "null":
		value = nil
	default:
		value, resolved = resolveReference(ctx, h, m.Type, p.Value)
		if !resolved {
			if p.RequireValue {
				return nil, protocol.Errorf(protocol.CodeConversion,
					"cannot resolve %q for %s member %s.%s", p.Value, m.Type.Tag(), ct.Name, m.Name)
			}
			h.logger().Debug("reference unresolved, assigning null",
				log.String("member", ct.Name+"."+m.Name),
				log.String("value", p.Value))
			value = nil
		}
	}

	if err := h.Registry.Set(c, p.Property, value); err != nil {
		return nil, err
	}

	out := map[string]any{
		"entity":    e.Path(),
		"component": c.TypeName(),
		"property":  p.Property,
	}
	if v, vt, err := h.Registry.Get(c, p.Property); err == nil {
		out["value"] = fields.FormatValue(v)
		out["type"] = vt.Tag()
	}
	if m.Type.IsReference() {
		out["resolved"] = resolved && value != nil
	}
	return out, nil
}

// resolveReference turns a wire string into a live reference value:
// an entity by name for entity members, one of its components for component
// members, a vault asset by path then by index search for asset members.
func resolveReference(ctx context.Context, h *Host, vt fields.ValueType, raw string) (any, bool) {
	switch vt.Kind {
	case fields.KindEntity:
		if e, err := resolveEntity(h, raw); err == nil {
			return e, true
		}

	case fields.KindComponent:
		if e, err := resolveEntity(h, raw); err == nil {
			for _, c := range e.Components() {
				ct, ok := h.Registry.Lookup(c.TypeName())
				if !ok {
					continue
				}
				if vt.To == "" || ct.AssignableTo(vt.To) {
					return c, true
				}
			}
		}

	case fields.KindAsset:
		if h.Library != nil {
			if a, err := h.Library.Load(raw); err == nil {
				if vt.AssetKind == "" || string(a.Kind()) == vt.AssetKind {
					return a.Link(), true
				}
			}
		}
		if h.Library != nil && h.Index != nil {
			entries, err := h.Index.Search(ctx, raw, assets.Kind(vt.AssetKind))
			if err == nil && len(entries) > 0 {
				if a, err := h.Library.Load(entries[0].Path); err == nil {
					return a.Link(), true
				}
			}
		}
	}
	return nil, false
}
