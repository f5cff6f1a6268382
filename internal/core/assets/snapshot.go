package assets

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Snapshot captures the scene's current top-level entities as a prefab
// definition. Only scalar and asset members are recorded; entity and
// component references hold live pointers that have no stable file form, so
// they are re-wired after instantiation instead.
func Snapshot(sc *scene.Scene, reg *fields.Registry, name string) Definition {
	def := Definition{Name: name, Kind: KindPrefab}
	for _, e := range sc.Root().Children() {
		def.Children = append(def.Children, snapshotEntity(e, reg))
	}
	return def
}

func snapshotEntity(e *scene.Entity, reg *fields.Registry) NodeDef {
	node := NodeDef{Name: e.Name()}
	if !e.Active() {
		inactive := false
		node.Active = &inactive
	}
	for _, c := range e.Components() {
		cd := ComponentDef{Type: c.TypeName()}
		if ct, ok := reg.Lookup(c.TypeName()); ok {
			for _, m := range ct.Members {
				if m.Kind != fields.MemberField || !m.Public {
					continue
				}
				if !m.Type.IsScalar() && m.Type.Kind != fields.KindAsset {
					continue
				}
				v, err := m.Get(c)
				if err != nil || v == nil {
					continue
				}
				if cd.Values == nil {
					cd.Values = make(map[string]string)
				}
				cd.Values[m.Name] = fields.FormatValue(v)
			}
		}
		node.Components = append(node.Components, cd)
	}
	for _, child := range e.Children() {
		node.Children = append(node.Children, snapshotEntity(child, reg))
	}
	return node
}
