package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// PlayerController is the avatar's movement component.
type PlayerController struct {
	scene.Base
	Speed      float64
	JumpHeight float64
	Health     *HealthSystem
}

func NewPlayerController() *PlayerController {
	return &PlayerController{Speed: 5, JumpHeight: 2}
}

func (*PlayerController) TypeName() string { return "PlayerController" }

func playerControllerType() fields.ComponentType {
	return fields.ComponentType{
		Name: "PlayerController",
		New:  func() scene.Component { return NewPlayerController() },
		Members: []fields.Member{
			fields.FloatField("Speed", true, func(p *PlayerController) float64 { return p.Speed }, func(p *PlayerController, v float64) { p.Speed = v }),
			fields.FloatField("JumpHeight", true, func(p *PlayerController) float64 { return p.JumpHeight }, func(p *PlayerController, v float64) { p.JumpHeight = v }),
			fields.ComponentField("Health", true, "HealthSystem", func(p *PlayerController) *HealthSystem { return p.Health }, func(p *PlayerController, v *HealthSystem) { p.Health = v }),
		},
	}
}

// Camera follows a target entity.
type Camera struct {
	scene.Base
	FieldOfView float64
	Follow      *scene.Entity
}

func NewCamera() *Camera { return &Camera{FieldOfView: 60} }

func (*Camera) TypeName() string { return "Camera" }

func cameraType() fields.ComponentType {
	return fields.ComponentType{
		Name: "Camera",
		New:  func() scene.Component { return NewCamera() },
		Members: []fields.Member{
			fields.FloatField("FieldOfView", true, func(c *Camera) float64 { return c.FieldOfView }, func(c *Camera, v float64) { c.FieldOfView = v }),
			fields.EntityField("Follow", true, func(c *Camera) *scene.Entity { return c.Follow }, func(c *Camera, v *scene.Entity) { c.Follow = v }),
		},
	}
}
