package protocol

import (
	"errors"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// ErrValueDepth guards against cyclic or absurdly nested results.
var ErrValueDepth = errors.New("result value nested too deep")

const maxValueDepth = 8

// EntityRef is the wire shape of a live entity.
func EntityRef(e *scene.Entity) map[string]any {
	if e == nil {
		return nil
	}
	return map[string]any{
		"name": e.Name(),
		"id":   e.ID().String(),
		"path": e.Path(),
	}
}

// ComponentRef is the wire shape of a live component.
func ComponentRef(c scene.Component) map[string]any {
	if c == nil {
		return nil
	}
	ref := map[string]any{"type": c.TypeName()}
	if owner := c.Entity(); owner != nil {
		ref["entity"] = owner.Path()
	} else {
		ref["entity"] = nil
	}
	return ref
}

// AssetRef is the wire shape of an indexed or loaded asset.
func AssetRef(name, kind, path string) map[string]any {
	return map[string]any{"name": name, "type": kind, "path": path}
}

// Sanitize flattens live graph references inside a result value so the whole
// tree serializes to plain JSON shapes. Maps and slices are rebuilt; other
// values pass through untouched for encoding/json.
func Sanitize(v any) (any, error) {
	return sanitize(v, 0)
}

func sanitize(v any, depth int) (any, error) {
	if depth > maxValueDepth {
		return nil, ErrValueDepth
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case *scene.Entity:
		return EntityRef(x), nil
	case scene.Component:
		return ComponentRef(x), nil
	case *assets.Asset:
		if x == nil {
			return nil, nil
		}
		return AssetRef(x.Def.Name, string(x.Def.Kind), x.Path), nil
	case assets.Entry:
		return AssetRef(x.Name, string(x.Kind), x.Path), nil
	case fields.AssetLink:
		if x.IsZero() {
			return nil, nil
		}
		return AssetRef(x.Name, x.Kind, x.Path), nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			s, err := sanitize(val, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			s, err := sanitize(val, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	default:
		return v, nil
	}
}
