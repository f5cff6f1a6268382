package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/core/assets"
	"github.com/scenewire/scenewire/internal/core/scene"
	"github.com/scenewire/scenewire/internal/protocol"
)

type searchAssetsParams struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func handleSearchAssets(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[searchAssetsParams](params)
	if err != nil {
		return nil, err
	}
	idx, err := requireIndex(h)
	if err != nil {
		return nil, err
	}
	kind := assets.Kind(p.Type)
	if kind != assets.KindAny && !kind.Valid() {
		return nil, protocol.Errorf(protocol.CodeBadParams, "unknown asset type: %s", p.Type)
	}
	entries, err := idx.Search(ctx, p.Name, kind)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = protocol.AssetRef(e.Name, string(e.Kind), e.Path)
	}
	return map[string]any{"assets": out, "count": len(out)}, nil
}

type instantiateParams struct {
	Asset  string `json:"asset"`
	Parent string `json:"parent,omitempty"`
	Name   string `json:"name,omitempty"`
}

func handleInstantiateAsset(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[instantiateParams](params)
	if err != nil {
		return nil, err
	}
	lib, err := requireLibrary(h)
	if err != nil {
		return nil, err
	}
	a, err := loadAsset(ctx, h, p.Asset)
	if err != nil {
		return nil, err
	}

	var parent *scene.Entity
	if p.Parent != "" {
		if parent, err = resolveEntity(h, p.Parent); err != nil {
			return nil, err
		}
	}

	root, err := lib.Instantiate(a, h.Scene, h.Registry, parent)
	if err != nil {
		return nil, err
	}
	if p.Name != "" {
		if err := h.Scene.Rename(root, p.Name); err != nil {
			return nil, err
		}
	}
	return map[string]any{
		"entity": entityInfo(root),
		"asset":  protocol.AssetRef(a.Name(), string(a.Kind()), a.Path),
	}, nil
}

// loadAsset resolves an asset reference: vault path first, then an index
// search by name taking the first hit in path order.
func loadAsset(ctx context.Context, h *Host, ref string) (*assets.Asset, error) {
	if ref == "" {
		return nil, protocol.NewError(protocol.CodeBadParams, "missing asset reference")
	}
	a, err := h.Library.Load(ref)
	if err == nil {
		return a, nil
	}
	if h.Index != nil {
		entries, serr := h.Index.Search(ctx, ref, assets.KindAny)
		if serr == nil && len(entries) > 0 {
			return h.Library.Load(entries[0].Path)
		}
	}
	return nil, err
}

func handleRefreshAssetIndex(ctx context.Context, h *Host, _ json.RawMessage) (any, error) {
	idx, err := requireIndex(h)
	if err != nil {
		return nil, err
	}
	n, err := idx.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"indexed": n}, nil
}
