// Package scene holds the live object graph the automation bridge operates
// on: a tree of entities, each composed of typed components. The graph is
// single-writer; every mutating call must run on the host loop goroutine.
package scene

import (
	"iter"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/scenewire/scenewire/internal/core/events/bus"
)

// Lifecycle event types published on the bus.
const (
	EventEntityCreated     = "scene.entity.created"
	EventEntityDestroyed   = "scene.entity.destroyed"
	EventComponentAttached = "scene.component.attached"
	EventComponentDetached = "scene.component.detached"
)

type Scene struct {
	name string
	root *Entity
	byID map[uuid.UUID]*Entity
	bus  *bus.Bus
}

type Stats struct {
	Entities   int
	Components int
}

// New creates an empty scene. events may be nil; lifecycle events are then
// dropped.
func New(name string, events *bus.Bus) *Scene {
	s := &Scene{
		name: name,
		byID: make(map[uuid.UUID]*Entity),
		bus:  events,
	}
	s.root = &Entity{id: uuid.New(), name: name, active: true, scene: s}
	return s
}

func (s *Scene) Name() string { return s.name }

// Root returns the implicit container entity. It is never listed, found or
// serialized; it only anchors top-level entities.
func (s *Scene) Root() *Entity { return s.root }

func (s *Scene) Len() int { return len(s.byID) }

func (s *Scene) Stats() Stats {
	st := Stats{Entities: len(s.byID)}
	for _, e := range s.byID {
		st.Components += len(e.components)
	}
	return st
}

// NewEntity creates an entity under parent (nil means top level).
func (s *Scene) NewEntity(name string, parent *Entity) (*Entity, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if parent == nil {
		parent = s.root
	}
	if parent.scene != s {
		return nil, ErrSceneMismatch
	}
	e := &Entity{
		id:     uuid.New(),
		name:   name,
		active: true,
		parent: parent,
		scene:  s,
	}
	parent.children = append(parent.children, e)
	s.byID[e.id] = e
	s.emit(EventEntityCreated, e.Path(), e)
	return e, nil
}

// Destroy removes e and its whole subtree. Components are detached and the
// graph no longer reaches any of the removed entities.
func (s *Scene) Destroy(e *Entity) error {
	if err := s.checkMember(e); err != nil {
		return err
	}
	parent := e.parent
	if i := slices.Index(parent.children, e); i >= 0 {
		parent.children = slices.Delete(parent.children, i, i+1)
	}
	s.tearDown(e)
	return nil
}

// tearDown unbinds a subtree bottom-up so destroy events for children arrive
// before their parent's.
func (s *Scene) tearDown(e *Entity) {
	for _, child := range e.children {
		s.tearDown(child)
	}
	e.children = nil
	path := e.Path()
	for _, c := range e.components {
		c.unbind()
		s.emit(EventComponentDetached, path, c)
	}
	e.components = nil
	delete(s.byID, e.id)
	e.parent = nil
	s.emit(EventEntityDestroyed, path, e)
}

// Reparent moves e (with its subtree) under newParent, nil meaning top level.
func (s *Scene) Reparent(e, newParent *Entity) error {
	if err := s.checkMember(e); err != nil {
		return err
	}
	if newParent == nil {
		newParent = s.root
	}
	if newParent.scene != s {
		return ErrSceneMismatch
	}
	for n := newParent; n != nil; n = n.parent {
		if n == e {
			return ErrReparentCycle
		}
	}
	old := e.parent
	if i := slices.Index(old.children, e); i >= 0 {
		old.children = slices.Delete(old.children, i, i+1)
	}
	e.parent = newParent
	newParent.children = append(newParent.children, e)
	return nil
}

// Rename changes e's name. Paths of the whole subtree follow.
func (s *Scene) Rename(e *Entity, name string) error {
	if err := s.checkMember(e); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	e.name = name
	return nil
}

// Attach binds c to e. A component instance lives on at most one entity.
func (s *Scene) Attach(e *Entity, c Component) error {
	if err := s.checkMember(e); err != nil {
		return err
	}
	if c.Entity() != nil {
		return ErrComponentAttached
	}
	c.bind(e)
	e.components = append(e.components, c)
	s.emit(EventComponentAttached, e.Path(), c)
	return nil
}

// Detach removes the first component of the given type from e.
func (s *Scene) Detach(e *Entity, typeName string) error {
	if err := s.checkMember(e); err != nil {
		return err
	}
	for i, c := range e.components {
		if c.TypeName() == typeName {
			e.components = slices.Delete(e.components, i, i+1)
			c.unbind()
			s.emit(EventComponentDetached, e.Path(), c)
			return nil
		}
	}
	return ErrComponentNotFound
}

// Find returns the first entity with the given name in depth-first,
// insertion-ordered traversal from the root. This is the tie rule for
// duplicate names everywhere in the bridge: scene order wins.
func (s *Scene) Find(name string) (*Entity, bool) {
	var found *Entity
	s.root.walk(func(e *Entity) bool {
		if e.name == name {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}

// FindPath resolves a slash path like "UI/HealthBar" segment by segment,
// applying the same first-match rule per level.
func (s *Scene) FindPath(path string) (*Entity, bool) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, false
	}
	node := s.root
	for _, segment := range strings.Split(path, "/") {
		var next *Entity
		for _, child := range node.children {
			if child.name == segment {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		node = next
	}
	return node, true
}

func (s *Scene) FindAll(name string) []*Entity {
	var out []*Entity
	s.root.walk(func(e *Entity) bool {
		if e.name == name {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (s *Scene) ByID(id uuid.UUID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Walk visits every entity depth first in insertion order, root excluded.
func (s *Scene) Walk(visit func(*Entity) bool) {
	s.root.walk(visit)
}

// All yields every entity in Walk order.
func (s *Scene) All() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		s.root.walk(yield)
	}
}

// Clear destroys every top-level entity.
func (s *Scene) Clear() {
	for _, child := range slices.Clone(s.root.children) {
		_ = s.Destroy(child)
	}
}

// Update ticks every Updatable component in active subtrees. Runs on the
// host loop.
func (s *Scene) Update(dt float64) {
	s.updateSubtree(s.root, dt)
}

func (s *Scene) updateSubtree(e *Entity, dt float64) {
	if !e.isRoot() && !e.active {
		return
	}
	for _, c := range e.components {
		if u, ok := c.(Updatable); ok {
			u.Update(dt)
		}
	}
	for _, child := range e.children {
		s.updateSubtree(child, dt)
	}
}

func (s *Scene) checkMember(e *Entity) error {
	if e == nil {
		return ErrEntityNotFound
	}
	if e.isRoot() {
		return ErrRootImmutable
	}
	if e.scene != s {
		return ErrSceneMismatch
	}
	if _, ok := s.byID[e.id]; !ok {
		return ErrEntityNotFound
	}
	return nil
}

func (s *Scene) emit(eventType, source string, data any) {
	if s.bus == nil {
		return
	}
	_ = s.bus.Emit(eventType, source, data)
}
