package fields

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/scenewire/scenewire/internal/core/scene"
)

type reactor struct {
	scene.Base
	output  float64
	rods    int
	online  bool
	label   string
	core    *cell
	housing *scene.Entity
}

func (*reactor) TypeName() string { return "Reactor" }

type cell struct {
	scene.Base
	charge float64
}

func (*cell) TypeName() string { return "Cell" }

func reactorType() ComponentType {
	return ComponentType{
		Name:       "Reactor",
		Implements: []string{"PowerSource"},
		Events:     []string{"OnOverheat"},
		New:        func() scene.Component { return &reactor{output: 1} },
		Members: []Member{
			FloatField("Output", true, func(r *reactor) float64 { return r.output }, func(r *reactor, v float64) { r.output = v }),
			IntField("Rods", true, func(r *reactor) int { return r.rods }, func(r *reactor, v int) { r.rods = v }),
			BoolField("Online", true, func(r *reactor) bool { return r.online }, func(r *reactor, v bool) { r.online = v }),
			StringField("label", false, func(r *reactor) string { return r.label }, func(r *reactor, v string) { r.label = v }),
			ComponentField("Core", true, "Cell", func(r *reactor) *cell { return r.core }, func(r *reactor, v *cell) { r.core = v }),
			EntityField("Housing", true, func(r *reactor) *scene.Entity { return r.housing }, func(r *reactor, v *scene.Entity) { r.housing = v }),
			Property("Load", Float, func(r *reactor) float64 { return r.output * 2 }, nil),
			Property("State", String,
				func(r *reactor) string {
					if r.online {
						return "running"
					}
					return "stopped"
				},
				func(r *reactor, v string) error {
					switch v {
					case "running":
						r.online = true
					case "stopped":
						r.online = false
					default:
						return fmt.Errorf("%w: state %q is not running or stopped", ErrConversion, v)
					}
					return nil
				}),
			// shadowed by the Output field above; resolution must prefer fields
			Property("Output", Float, func(r *reactor) float64 { return -1 }, nil),
		},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(reactorType()); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestRegisterDuplicate(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Register(reactorType())
	if !errors.Is(err, ErrTypeRegistered) {
		t.Fatalf("duplicate register = %v, want ErrTypeRegistered", err)
	}
}

func TestNewUnknownType(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := reg.New("Ghost"); !errors.Is(err, ErrTypeUnknown) {
		t.Fatalf("New(Ghost) = %v, want ErrTypeUnknown", err)
	}
	c, err := reg.New("Reactor")
	if err != nil {
		t.Fatalf("New(Reactor): %v", err)
	}
	if c.TypeName() != "Reactor" {
		t.Fatalf("TypeName = %q", c.TypeName())
	}
}

func TestGetSetScalars(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{}

	if err := reg.Set(r, "Output", 9.5); err != nil {
		t.Fatalf("Set float: %v", err)
	}
	if r.output != 9.5 {
		t.Fatalf("output = %v", r.output)
	}
	// ints promote into float members
	if err := reg.Set(r, "Output", 5); err != nil {
		t.Fatalf("Set float from int: %v", err)
	}
	if r.output != 5 {
		t.Fatalf("output = %v", r.output)
	}
	// whole floats narrow into int members
	if err := reg.Set(r, "Rods", float64(12)); err != nil {
		t.Fatalf("Set int from whole float: %v", err)
	}
	if r.rods != 12 {
		t.Fatalf("rods = %d", r.rods)
	}
	if err := reg.Set(r, "Online", true); err != nil {
		t.Fatalf("Set bool: %v", err)
	}
	// non-public members resolve like any other
	if err := reg.Set(r, "label", "alpha"); err != nil {
		t.Fatalf("Set non-public: %v", err)
	}

	v, vt, err := reg.Get(r, "Output")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.(float64) != 5 || vt.Tag() != "float" {
		t.Fatalf("Get = %v (%s)", v, vt.Tag())
	}
}

func TestFieldShadowsProperty(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{output: 3}
	v, _, err := reg.Get(r, "Output")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v.(float64) != 3 {
		t.Fatalf("field/property resolution picked the property: %v", v)
	}
}

func TestConversionErrorNamesTypes(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{}
	err := reg.Set(r, "Output", "not-a-number")
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("Set = %v, want ErrConversion", err)
	}
	if !strings.Contains(err.Error(), "expected float") || !strings.Contains(err.Error(), "given string") {
		t.Fatalf("error %q should name expected and given types", err)
	}
	err = reg.Set(r, "Rods", 2.5)
	if !errors.Is(err, ErrConversion) {
		t.Fatalf("fractional into int = %v, want ErrConversion", err)
	}
}

func TestMemberNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{}
	if _, _, err := reg.Get(r, "Ghost"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("Get = %v, want ErrMemberNotFound", err)
	}
	if err := reg.Set(r, "Ghost", 1); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("Set = %v, want ErrMemberNotFound", err)
	}
}

func TestReadOnlyProperty(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{output: 2}
	v, _, err := reg.Get(r, "Load")
	if err != nil || v.(float64) != 4 {
		t.Fatalf("Get(Load) = %v, %v", v, err)
	}
	if err = reg.Set(r, "Load", 1.0); !errors.Is(err, ErrMemberReadOnly) {
		t.Fatalf("Set(Load) = %v, want ErrMemberReadOnly", err)
	}
}

func TestPropertyValidation(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{}
	if err := reg.Set(r, "State", "running"); err != nil {
		t.Fatalf("Set(State): %v", err)
	}
	if !r.online {
		t.Fatal("property setter did not apply")
	}
	if err := reg.Set(r, "State", "melting"); err == nil {
		t.Fatal("invalid state accepted")
	}
}

func TestReferenceMembers(t *testing.T) {
	reg := newTestRegistry(t)
	r := &reactor{}
	c := &cell{charge: 1}

	if err := reg.Set(r, "Core", c); err != nil {
		t.Fatalf("Set(Core): %v", err)
	}
	if r.core != c {
		t.Fatal("component reference not stored")
	}
	if err := reg.Set(r, "Core", nil); err != nil {
		t.Fatalf("Set(Core, nil): %v", err)
	}
	if r.core != nil {
		t.Fatal("nil assignment did not clear reference")
	}
	// nil pointer reads back as null
	v, _, err := reg.Get(r, "Core")
	if err != nil || v != nil {
		t.Fatalf("Get(Core) = %v, %v; want nil", v, err)
	}

	s := scene.New("t", nil)
	e, _ := s.NewEntity("Housing", nil)
	if err = reg.Set(r, "Housing", e); err != nil {
		t.Fatalf("Set(Housing): %v", err)
	}
	if r.housing != e {
		t.Fatal("entity reference not stored")
	}
}

func TestAssignableTo(t *testing.T) {
	ct := reactorType()
	if !ct.AssignableTo("Reactor") {
		t.Error("exact type should be assignable")
	}
	if !ct.AssignableTo("PowerSource") {
		t.Error("implemented capability should be assignable")
	}
	if ct.AssignableTo("Damageable") {
		t.Error("unrelated capability should not be assignable")
	}
	if !ct.HasEvent("OnOverheat") || ct.HasEvent("OnCooldown") {
		t.Error("event lookup wrong")
	}
}

func TestParseScalar(t *testing.T) {
	cases := []struct {
		vt   ValueType
		raw  string
		want any
		ok   bool
	}{
		{Int, "42", 42, true},
		{Int, "4.2", nil, false},
		{Float, "9.5", 9.5, true},
		{Float, "5", 5.0, true},
		{Float, "many", nil, false},
		{Bool, "true", true, true},
		{Bool, "yes", nil, false},
		{String, "as-is", "as-is", true},
	}
	for _, tc := range cases {
		got, err := ParseScalar(tc.vt, tc.raw, "")
		if tc.ok {
			if err != nil || got != tc.want {
				t.Errorf("ParseScalar(%s, %q) = %v, %v; want %v", tc.vt.Tag(), tc.raw, got, err, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrConversion) {
			t.Errorf("ParseScalar(%s, %q) = %v; want ErrConversion", tc.vt.Tag(), tc.raw, err)
		}
	}
}

func TestFormatValue(t *testing.T) {
	s := scene.New("t", nil)
	e, _ := s.NewEntity("Player", nil)

	cases := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{5, "5"},
		{9.5, "9.5"},
		{5.0, "5"},
		{true, "true"},
		{"txt", "txt"},
		{e, "Player"},
		{AssetLink{}, "null"},
		{AssetLink{Path: "systems/health.yaml"}, "systems/health.yaml"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.v); got != tc.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestValueTypeTags(t *testing.T) {
	if ComponentOf("HealthSystem").Tag() != "component:HealthSystem" {
		t.Error("component tag wrong")
	}
	if AssetOf("prefab").Tag() != "asset:prefab" {
		t.Error("asset tag wrong")
	}
	if Entity.Tag() != "entity" {
		t.Error("entity tag wrong")
	}
	if !Float.IsScalar() || Entity.IsScalar() {
		t.Error("scalar classification wrong")
	}
}
