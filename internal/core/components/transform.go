package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Transform is the spatial component nearly every entity carries.
type Transform struct {
	scene.Base
	X, Y, Z float64
	Scale   float64
}

func NewTransform() *Transform { return &Transform{Scale: 1} }

func (*Transform) TypeName() string { return "Transform" }

func transformType() fields.ComponentType {
	return fields.ComponentType{
		Name: "Transform",
		New:  func() scene.Component { return NewTransform() },
		Members: []fields.Member{
			fields.FloatField("X", true, func(t *Transform) float64 { return t.X }, func(t *Transform, v float64) { t.X = v }),
			fields.FloatField("Y", true, func(t *Transform) float64 { return t.Y }, func(t *Transform, v float64) { t.Y = v }),
			fields.FloatField("Z", true, func(t *Transform) float64 { return t.Z }, func(t *Transform, v float64) { t.Z = v }),
			fields.FloatField("Scale", true, func(t *Transform) float64 { return t.Scale }, func(t *Transform, v float64) { t.Scale = v }),
		},
	}
}
