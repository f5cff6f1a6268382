package fields

import "github.com/scenewire/scenewire/internal/core/scene"

// MemberKind separates plain data fields from code-mediated properties.
// Member resolution searches fields before properties.
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberProperty
)

// Member is one named, typed accessor on a component. Get and Set operate on
// the interface value and perform the type assertions the old reflection path
// used to do at call time. Set is nil for read-only members.
type Member struct {
	Name   string
	Kind   MemberKind
	Public bool
	Type   ValueType
	Get    func(scene.Component) (any, error)
	Set    func(scene.Component, any) error
}

func (m Member) Settable() bool { return m.Set != nil }

func getter[C scene.Component, V any](get func(C) V) func(scene.Component) (any, error) {
	return func(c scene.Component) (any, error) {
		cc, ok := c.(C)
		if !ok {
			return nil, convErr("component", c)
		}
		return get(cc), nil
	}
}

// IntField declares a plain int field.
func IntField[C scene.Component](name string, public bool, get func(C) int, set func(C, int)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: Int,
		Get: getter(get),
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			n, ok := toInt(v)
			if !ok {
				return convErr("int", v)
			}
			set(cc, n)
			return nil
		},
	}
}

// FloatField declares a plain float64 field.
func FloatField[C scene.Component](name string, public bool, get func(C) float64, set func(C, float64)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: Float,
		Get: getter(get),
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			f, ok := toFloat(v)
			if !ok {
				return convErr("float", v)
			}
			set(cc, f)
			return nil
		},
	}
}

// BoolField declares a plain bool field.
func BoolField[C scene.Component](name string, public bool, get func(C) bool, set func(C, bool)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: Bool,
		Get: getter(get),
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			b, ok := v.(bool)
			if !ok {
				return convErr("bool", v)
			}
			set(cc, b)
			return nil
		},
	}
}

// StringField declares a plain string field.
func StringField[C scene.Component](name string, public bool, get func(C) string, set func(C, string)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: String,
		Get: getter(get),
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			s, ok := v.(string)
			if !ok {
				return convErr("string", v)
			}
			set(cc, s)
			return nil
		},
	}
}

// EntityField declares an entity-handle field. Autowiring assigns the source
// component's owning entity into these.
func EntityField[C scene.Component](name string, public bool, get func(C) *scene.Entity, set func(C, *scene.Entity)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: Entity,
		Get: func(c scene.Component) (any, error) {
			cc, ok := c.(C)
			if !ok {
				return nil, convErr("component", c)
			}
			e := get(cc)
			if e == nil {
				return nil, nil
			}
			return e, nil
		},
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			if v == nil {
				set(cc, nil)
				return nil
			}
			e, ok := v.(*scene.Entity)
			if !ok {
				return convErr("entity", v)
			}
			set(cc, e)
			return nil
		},
	}
}

// Ref constrains typed component references to comparable concrete types so
// nil pointers normalize to null.
type Ref interface {
	comparable
	scene.Component
}

// ComponentField declares a typed component reference. to names the accepted
// component type or capability; T is the concrete pointer type stored.
func ComponentField[C scene.Component, T Ref](name string, public bool, to string, get func(C) T, set func(C, T)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: ComponentOf(to),
		Get: func(c scene.Component) (any, error) {
			cc, ok := c.(C)
			if !ok {
				return nil, convErr("component", c)
			}
			var zero T
			x := get(cc)
			if x == zero {
				return nil, nil
			}
			return x, nil
		},
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			if v == nil {
				var zero T
				set(cc, zero)
				return nil
			}
			x, ok := v.(T)
			if !ok {
				return convErr("component "+to, v)
			}
			set(cc, x)
			return nil
		},
	}
}

// AnyComponentField declares a component reference stored as the interface
// type. Use it when the member accepts a capability rather than one concrete
// type; to names the capability, empty accepting any component.
func AnyComponentField[C scene.Component](name string, public bool, to string, get func(C) scene.Component, set func(C, scene.Component)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: ComponentOf(to),
		Get: func(c scene.Component) (any, error) {
			cc, ok := c.(C)
			if !ok {
				return nil, convErr("component", c)
			}
			x := get(cc)
			if x == nil {
				return nil, nil
			}
			return x, nil
		},
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			if v == nil {
				set(cc, nil)
				return nil
			}
			x, ok := v.(scene.Component)
			if !ok {
				return convErr("component", v)
			}
			set(cc, x)
			return nil
		},
	}
}

// AssetField declares an asset reference of the given kind.
func AssetField[C scene.Component](name string, public bool, kind string, get func(C) AssetLink, set func(C, AssetLink)) Member {
	return Member{
		Name: name, Kind: MemberField, Public: public, Type: AssetOf(kind),
		Get: func(c scene.Component) (any, error) {
			cc, ok := c.(C)
			if !ok {
				return nil, convErr("component", c)
			}
			l := get(cc)
			if l.IsZero() {
				return nil, nil
			}
			return l, nil
		},
		Set: func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			if v == nil {
				set(cc, AssetLink{})
				return nil
			}
			l, ok := v.(AssetLink)
			if !ok {
				return convErr("asset", v)
			}
			set(cc, l)
			return nil
		},
	}
}

// Property declares a code-mediated member. The setter may validate and
// reject; a nil setter makes the property read-only.
func Property[C scene.Component, V any](name string, t ValueType, get func(C) V, set func(C, V) error) Member {
	m := Member{
		Name: name, Kind: MemberProperty, Public: true, Type: t,
		Get: getter(get),
	}
	if set != nil {
		m.Set = func(c scene.Component, v any) error {
			cc, ok := c.(C)
			if !ok {
				return convErr("component", c)
			}
			x, ok := coerceProp[V](t, v)
			if !ok {
				return convErr(t.Tag(), v)
			}
			return set(cc, x)
		}
	}
	return m
}

func coerceProp[V any](t ValueType, v any) (V, bool) {
	var zero V
	switch t.Kind {
	case KindInt:
		if n, ok := toInt(v); ok {
			if x, ok := any(n).(V); ok {
				return x, true
			}
		}
	case KindFloat:
		if f, ok := toFloat(v); ok {
			if x, ok := any(f).(V); ok {
				return x, true
			}
		}
	default:
		if x, ok := v.(V); ok {
			return x, true
		}
	}
	return zero, false
}
