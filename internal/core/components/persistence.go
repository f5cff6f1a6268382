package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// SaveLoadSystem marks where snapshots go and which stores feed them. The
// Inventory reference is untyped on purpose: any component can opt into
// being persisted, and autowiring binds it by member name.
type SaveLoadSystem struct {
	scene.Base
	SavePath  string
	AutoSave  bool
	Inventory scene.Component
}

func NewSaveLoadSystem() *SaveLoadSystem {
	return &SaveLoadSystem{SavePath: "saves/slot0.yaml"}
}

func (*SaveLoadSystem) TypeName() string { return "SaveLoadSystem" }

func saveLoadSystemType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "SaveLoadSystem",
		Events: []string{"OnSaved", "OnLoaded"},
		New:    func() scene.Component { return NewSaveLoadSystem() },
		Members: []fields.Member{
			fields.StringField("SavePath", true, func(s *SaveLoadSystem) string { return s.SavePath }, func(s *SaveLoadSystem, v string) { s.SavePath = v }),
			fields.BoolField("AutoSave", true, func(s *SaveLoadSystem) bool { return s.AutoSave }, func(s *SaveLoadSystem, v bool) { s.AutoSave = v }),
			fields.AnyComponentField("Inventory", true, "", func(s *SaveLoadSystem) scene.Component { return s.Inventory }, func(s *SaveLoadSystem, v scene.Component) { s.Inventory = v }),
		},
	}
}
