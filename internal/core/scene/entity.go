package scene

import (
	"strings"

	"github.com/google/uuid"
)

// Entity is a named node in the scene graph. All mutation goes through the
// owning Scene; entities hand out read views only. Mutation-safe access is
// guaranteed by running on the host loop, not by locking.
type Entity struct {
	id         uuid.UUID
	name       string
	active     bool
	parent     *Entity
	children   []*Entity
	components []Component
	scene      *Scene
}

func (e *Entity) ID() uuid.UUID { return e.id }

func (e *Entity) Name() string { return e.name }

func (e *Entity) Active() bool { return e.active }

func (e *Entity) SetActive(v bool) { e.active = v }

// ActiveInHierarchy reports whether this entity and every ancestor up to the
// root are active. Inactive subtrees are skipped by the update tick.
func (e *Entity) ActiveInHierarchy() bool {
	for n := e; n != nil && !n.isRoot(); n = n.parent {
		if !n.active {
			return false
		}
	}
	return true
}

func (e *Entity) Parent() *Entity {
	if e.parent == nil || e.parent.isRoot() {
		return nil
	}
	return e.parent
}

func (e *Entity) Children() []*Entity {
	out := make([]*Entity, len(e.children))
	copy(out, e.children)
	return out
}

func (e *Entity) Components() []Component {
	out := make([]Component, len(e.components))
	copy(out, e.components)
	return out
}

// Component returns the first attached component with the given type name,
// in attach order.
func (e *Entity) Component(typeName string) (Component, bool) {
	for _, c := range e.components {
		if c.TypeName() == typeName {
			return c, true
		}
	}
	return nil, false
}

// Path renders the slash-separated path from the root, e.g. "UI/HealthBar".
// The implicit root contributes nothing.
func (e *Entity) Path() string {
	if e.isRoot() {
		return ""
	}
	var parts []string
	for n := e; n != nil && !n.isRoot(); n = n.parent {
		parts = append(parts, n.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Emit publishes a component event on the scene bus with this entity's path
// as the source. No-op until the entity is part of a scene.
func (e *Entity) Emit(eventType string, data any) {
	if e.scene != nil {
		e.scene.emit(eventType, e.Path(), data)
	}
}

func (e *Entity) isRoot() bool { return e.scene != nil && e.scene.root == e }

// walk visits e and its descendants depth first in insertion order. Returning
// false from visit stops the traversal.
func (e *Entity) walk(visit func(*Entity) bool) bool {
	if !e.isRoot() {
		if !visit(e) {
			return false
		}
	}
	for _, child := range e.children {
		if !child.walk(visit) {
			return false
		}
	}
	return true
}
