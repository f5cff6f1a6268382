// Package fields is the member registry behind the property bridge. Instead
// of reflecting over component structs at call time, every component type
// declares typed accessors up front; get/set then runs through closures that
// already know the member's type. The registry is populated during startup
// and read-only afterwards.
package fields

import (
	"fmt"
	"slices"
	"sync"

	"github.com/scenewire/scenewire/internal/core/scene"
)

// ComponentType describes one registrable component kind: how to construct
// it, which capabilities it implements, its members and its events.
type ComponentType struct {
	Name       string
	Implements []string
	Events     []string
	New        func() scene.Component
	Members    []Member
}

// Member resolves a member by exact name, fields before properties. A field
// and a property may share a name; the field wins.
func (ct ComponentType) Member(name string) (Member, bool) {
	for _, m := range ct.Members {
		if m.Kind == MemberField && m.Name == name {
			return m, true
		}
	}
	for _, m := range ct.Members {
		if m.Kind == MemberProperty && m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

func (ct ComponentType) HasEvent(name string) bool {
	return slices.Contains(ct.Events, name)
}

// AssignableTo reports whether a component of this type satisfies a reference
// declared as accepting `to`: exact type name or implemented capability.
func (ct ComponentType) AssignableTo(to string) bool {
	return ct.Name == to || slices.Contains(ct.Implements, to)
}

type Registry struct {
	mu    sync.RWMutex
	types map[string]ComponentType
	order []string
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]ComponentType)}
}

func (r *Registry) Register(ct ComponentType) error {
	if ct.Name == "" {
		return fmt.Errorf("component type with empty name")
	}
	if ct.New == nil {
		return fmt.Errorf("component type %s has no constructor", ct.Name)
	}
	seen := make(map[string]struct{}, len(ct.Members))
	for _, m := range ct.Members {
		key := fmt.Sprintf("%d:%s", m.Kind, m.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("component type %s declares member %s twice", ct.Name, m.Name)
		}
		seen[key] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[ct.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTypeRegistered, ct.Name)
	}
	r.types[ct.Name] = ct
	r.order = append(r.order, ct.Name)
	return nil
}

func (r *Registry) Lookup(name string) (ComponentType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.types[name]
	return ct, ok
}

// New constructs a fresh, unattached component of the named type.
func (r *Registry) New(name string) (scene.Component, error) {
	ct, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeUnknown, name)
	}
	return ct.New(), nil
}

// Names returns type names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Get resolves and reads a member on a live component.
func (r *Registry) Get(c scene.Component, member string) (any, ValueType, error) {
	ct, ok := r.Lookup(c.TypeName())
	if !ok {
		return nil, ValueType{}, fmt.Errorf("%w: %s", ErrTypeUnknown, c.TypeName())
	}
	m, ok := ct.Member(member)
	if !ok {
		return nil, ValueType{}, fmt.Errorf("%w: %s.%s", ErrMemberNotFound, ct.Name, member)
	}
	v, err := m.Get(c)
	if err != nil {
		return nil, ValueType{}, err
	}
	return v, m.Type, nil
}

// Set resolves and writes a member on a live component. The value must
// already be of the member's Go type; wire-string parsing happens upstream.
func (r *Registry) Set(c scene.Component, member string, value any) error {
	ct, ok := r.Lookup(c.TypeName())
	if !ok {
		return fmt.Errorf("%w: %s", ErrTypeUnknown, c.TypeName())
	}
	m, ok := ct.Member(member)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrMemberNotFound, ct.Name, member)
	}
	if !m.Settable() {
		return fmt.Errorf("%w: %s.%s", ErrMemberReadOnly, ct.Name, member)
	}
	return m.Set(c, value)
}
