package bridge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/scenewire/scenewire/internal/core/scene"
	"github.com/scenewire/scenewire/pkg/sequence"
)

type createEntityParams struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

func handleCreateEntity(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[createEntityParams](params)
	if err != nil {
		return nil, err
	}
	var parent *scene.Entity
	if p.Parent != "" {
		if parent, err = resolveEntity(h, p.Parent); err != nil {
			return nil, err
		}
	}
	e, err := newEntity(h, p.Name, parent)
	if err != nil {
		return nil, err
	}
	if p.Active != nil {
		e.SetActive(*p.Active)
	}
	return entityInfo(e), nil
}

type entityParams struct {
	Entity string `json:"entity"`
}

func handleDestroyEntity(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[entityParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	path := e.Path()
	if err := h.Scene.Destroy(e); err != nil {
		return nil, err
	}
	return map[string]any{"destroyed": path}, nil
}

type findEntityParams struct {
	Name string `json:"name"`
}

func handleFindEntity(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[findEntityParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Name)
	if err != nil {
		return nil, err
	}
	return entityInfo(e), nil
}

type listEntitiesParams struct {
	Name   string `json:"name,omitempty"`
	Under  string `json:"under,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

func handleListEntities(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[listEntitiesParams](params)
	if err != nil {
		return nil, err
	}

	var scope *scene.Entity
	if p.Under != "" {
		if scope, err = resolveEntity(h, p.Under); err != nil {
			return nil, err
		}
	}

	it := sequence.FromSeq(h.Scene.All())
	if scope != nil {
		prefix := scope.Path() + "/"
		it = it.Filter(func(e *scene.Entity) bool {
			return e == scope || strings.HasPrefix(e.Path(), prefix)
		})
	}
	if p.Name != "" {
		needle := strings.ToLower(p.Name)
		it = it.Filter(func(e *scene.Entity) bool {
			return strings.Contains(strings.ToLower(e.Name()), needle)
		})
	}
	if p.Active != nil {
		want := *p.Active
		it = it.Filter(func(e *scene.Entity) bool { return e.Active() == want })
	}

	out := sequence.ToArray(it, entitySummary)
	if out == nil {
		out = []map[string]any{}
	}
	return map[string]any{"entities": out, "count": len(out)}, nil
}

type setActiveParams struct {
	Entity string `json:"entity"`
	Active bool   `json:"active"`
}

func handleSetEntityActive(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[setActiveParams](params)
	if err != nil {
		return nil, err
	}
	e, err := resolveEntity(h, p.Entity)
	if err != nil {
		return nil, err
	}
	e.SetActive(p.Active)
	return map[string]any{"entity": e.Path(), "active": e.Active()}, nil
}
