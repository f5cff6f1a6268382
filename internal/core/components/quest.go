package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// QuestSystem tracks the active quest and completion count.
type QuestSystem struct {
	scene.Base
	ActiveQuest string

	completed int
}

func NewQuestSystem() *QuestSystem { return &QuestSystem{} }

func (*QuestSystem) TypeName() string { return "QuestSystem" }

// Complete finishes the active quest and clears it.
func (q *QuestSystem) Complete() bool {
	if q.ActiveQuest == "" {
		return false
	}
	q.ActiveQuest = ""
	q.completed++
	return true
}

func questSystemType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "QuestSystem",
		Events: []string{"OnQuestStarted", "OnQuestCompleted"},
		New:    func() scene.Component { return NewQuestSystem() },
		Members: []fields.Member{
			fields.StringField("ActiveQuest", true, func(q *QuestSystem) string { return q.ActiveQuest }, func(q *QuestSystem, v string) { q.ActiveQuest = v }),
			fields.Property("Completed", fields.Int, func(q *QuestSystem) int { return q.completed }, nil),
		},
	}
}

// QuestTracker is the HUD element bound to a QuestSystem.
type QuestTracker struct {
	scene.Base
	Source  *QuestSystem
	Visible bool
}

func NewQuestTracker() *QuestTracker { return &QuestTracker{Visible: true} }

func (*QuestTracker) TypeName() string { return "QuestTracker" }

func questTrackerType() fields.ComponentType {
	return fields.ComponentType{
		Name: "QuestTracker",
		New:  func() scene.Component { return NewQuestTracker() },
		Members: []fields.Member{
			fields.ComponentField("Source", true, "QuestSystem", func(t *QuestTracker) *QuestSystem { return t.Source }, func(t *QuestTracker, v *QuestSystem) { t.Source = v }),
			fields.BoolField("Visible", true, func(t *QuestTracker) bool { return t.Visible }, func(t *QuestTracker, v bool) { t.Visible = v }),
		},
	}
}
