package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Canvas is the root of a UI subtree.
type Canvas struct {
	scene.Base
	Scale   float64
	Visible bool
}

func NewCanvas() *Canvas { return &Canvas{Scale: 1, Visible: true} }

func (*Canvas) TypeName() string { return "Canvas" }

func canvasType() fields.ComponentType {
	return fields.ComponentType{
		Name: "Canvas",
		New:  func() scene.Component { return NewCanvas() },
		Members: []fields.Member{
			fields.FloatField("Scale", true, func(c *Canvas) float64 { return c.Scale }, func(c *Canvas, v float64) { c.Scale = v }),
			fields.BoolField("Visible", true, func(c *Canvas) bool { return c.Visible }, func(c *Canvas, v bool) { c.Visible = v }),
		},
	}
}

// UILabel is a static text element.
type UILabel struct {
	scene.Base
	Text     string
	FontSize int
}

func NewUILabel() *UILabel { return &UILabel{FontSize: 14} }

func (*UILabel) TypeName() string { return "UILabel" }

func uiLabelType() fields.ComponentType {
	return fields.ComponentType{
		Name: "UILabel",
		New:  func() scene.Component { return NewUILabel() },
		Members: []fields.Member{
			fields.StringField("Text", true, func(l *UILabel) string { return l.Text }, func(l *UILabel, v string) { l.Text = v }),
			fields.IntField("FontSize", true, func(l *UILabel) int { return l.FontSize }, func(l *UILabel, v int) { l.FontSize = v }),
		},
	}
}
