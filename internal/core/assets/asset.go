// Package assets manages the vault: a directory tree of YAML asset
// definitions (prefabs, scripts, UI templates, materials) that commands
// instantiate into the live scene. A sqlite index over the vault backs
// name/kind search, and a filesystem watcher keeps the index current.
package assets

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scenewire/scenewire/internal/core/fields"
)

// Kind categorizes an asset definition.
type Kind string

const (
	KindAny      Kind = ""
	KindPrefab   Kind = "prefab"
	KindScript   Kind = "script"
	KindUI       Kind = "ui"
	KindMaterial Kind = "material"
)

func (k Kind) Valid() bool {
	switch k {
	case KindPrefab, KindScript, KindUI, KindMaterial:
		return true
	}
	return false
}

// Definition is the root document of one asset file.
type Definition struct {
	Name       string         `yaml:"name"`
	Kind       Kind           `yaml:"type"`
	Components []ComponentDef `yaml:"components,omitempty"`
	Children   []NodeDef      `yaml:"children,omitempty"`
}

// NodeDef describes one entity in an asset's subtree. Active defaults to
// true when omitted.
type NodeDef struct {
	Name       string         `yaml:"name"`
	Active     *bool          `yaml:"active,omitempty"`
	Components []ComponentDef `yaml:"components,omitempty"`
	Children   []NodeDef      `yaml:"children,omitempty"`
}

// ComponentDef attaches one component by registered type name. Values hold
// wire-string member assignments applied through the fields registry.
type ComponentDef struct {
	Type   string            `yaml:"type"`
	Values map[string]string `yaml:"values,omitempty"`
}

// Asset is a parsed definition plus its vault location and content hash.
type Asset struct {
	Path string
	Hash uint64
	Def  Definition
}

func (a *Asset) Name() string { return a.Def.Name }
func (a *Asset) Kind() Kind   { return a.Def.Kind }

// Link renders the reference form stored in asset-typed component members.
func (a *Asset) Link() fields.AssetLink {
	return fields.AssetLink{Name: a.Def.Name, Path: a.Path, Kind: string(a.Def.Kind)}
}

// ParseDefinition decodes and validates one asset document.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrBadDefinition, err)
	}
	if strings.TrimSpace(def.Name) == "" {
		return Definition{}, fmt.Errorf("%w: missing name", ErrBadDefinition)
	}
	if !def.Kind.Valid() {
		return Definition{}, fmt.Errorf("%w: unknown type %q", ErrBadDefinition, def.Kind)
	}
	if err := checkNodes(def.Components, def.Children); err != nil {
		return Definition{}, err
	}
	return def, nil
}

func checkNodes(comps []ComponentDef, children []NodeDef) error {
	for _, c := range comps {
		if strings.TrimSpace(c.Type) == "" {
			return fmt.Errorf("%w: component without type", ErrBadDefinition)
		}
	}
	for _, n := range children {
		if strings.TrimSpace(n.Name) == "" {
			return fmt.Errorf("%w: child node without name", ErrBadDefinition)
		}
		if err := checkNodes(n.Components, n.Children); err != nil {
			return err
		}
	}
	return nil
}

// EncodeDefinition renders a definition back to its YAML document form.
func EncodeDefinition(def Definition) ([]byte, error) {
	data, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("encoding asset definition: %w", err)
	}
	return data, nil
}
