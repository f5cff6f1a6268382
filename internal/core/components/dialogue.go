package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// DialogueSystem steps through a conversation line by line.
type DialogueSystem struct {
	scene.Base
	Speaker string

	lines []string
	index int
}

func NewDialogueSystem() *DialogueSystem { return &DialogueSystem{} }

func (*DialogueSystem) TypeName() string { return "DialogueSystem" }

func (d *DialogueSystem) SetLines(lines []string) {
	d.lines = lines
	d.index = 0
}

// Advance moves to the next line, reporting false at the end.
func (d *DialogueSystem) Advance() bool {
	if d.index+1 >= len(d.lines) {
		return false
	}
	d.index++
	return true
}

func (d *DialogueSystem) currentLine() string {
	if d.index < len(d.lines) {
		return d.lines[d.index]
	}
	return ""
}

func dialogueSystemType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "DialogueSystem",
		Events: []string{"OnLineShown", "OnDialogueEnded"},
		New:    func() scene.Component { return NewDialogueSystem() },
		Members: []fields.Member{
			fields.StringField("Speaker", true, func(d *DialogueSystem) string { return d.Speaker }, func(d *DialogueSystem, v string) { d.Speaker = v }),
			fields.Property("CurrentLine", fields.String, (*DialogueSystem).currentLine, nil),
		},
	}
}

// DialogueBox renders the bound DialogueSystem's current line.
type DialogueBox struct {
	scene.Base
	Source  *DialogueSystem
	Visible bool
}

func NewDialogueBox() *DialogueBox { return &DialogueBox{} }

func (*DialogueBox) TypeName() string { return "DialogueBox" }

func (b *DialogueBox) text() string {
	if b.Source == nil {
		return ""
	}
	return b.Source.currentLine()
}

func dialogueBoxType() fields.ComponentType {
	return fields.ComponentType{
		Name: "DialogueBox",
		New:  func() scene.Component { return NewDialogueBox() },
		Members: []fields.Member{
			fields.ComponentField("Source", true, "DialogueSystem", func(b *DialogueBox) *DialogueSystem { return b.Source }, func(b *DialogueBox, v *DialogueSystem) { b.Source = v }),
			fields.BoolField("Visible", true, func(b *DialogueBox) bool { return b.Visible }, func(b *DialogueBox, v bool) { b.Visible = v }),
			fields.Property("Text", fields.String, (*DialogueBox).text, nil),
		},
	}
}
