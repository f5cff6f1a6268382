package fields

import (
	"fmt"
	"math"
	"strconv"

	"github.com/scenewire/scenewire/internal/core/scene"
)

// Kind enumerates the value categories a member can hold.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindEntity
	KindComponent
	KindAsset
)

// ValueType describes a member's declared type. For component references To
// names the accepted component type (or a capability it must implement); for
// asset references AssetKind filters the asset category, empty accepting any.
type ValueType struct {
	Kind      Kind
	To        string
	AssetKind string
}

var (
	Int    = ValueType{Kind: KindInt}
	Float  = ValueType{Kind: KindFloat}
	Bool   = ValueType{Kind: KindBool}
	String = ValueType{Kind: KindString}
	Entity = ValueType{Kind: KindEntity}
)

func ComponentOf(to string) ValueType {
	return ValueType{Kind: KindComponent, To: to}
}

func AssetOf(kind string) ValueType {
	return ValueType{Kind: KindAsset, AssetKind: kind}
}

func (t ValueType) IsScalar() bool {
	switch t.Kind {
	case KindInt, KindFloat, KindBool, KindString:
		return true
	}
	return false
}

func (t ValueType) IsReference() bool { return !t.IsScalar() }

// Tag renders the wire type tag reported alongside get results.
func (t ValueType) Tag() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindEntity:
		return "entity"
	case KindComponent:
		if t.To != "" {
			return "component:" + t.To
		}
		return "component"
	case KindAsset:
		if t.AssetKind != "" {
			return "asset:" + t.AssetKind
		}
		return "asset"
	}
	return "unknown"
}

// AssetLink is the value stored by asset-reference members. The zero value
// means no asset assigned.
type AssetLink struct {
	Name string
	Path string
	Kind string
}

func (l AssetLink) IsZero() bool { return l == AssetLink{} }

// ParseScalar parses a wire string into the member's scalar type. tag is the
// caller-provided hint, used only to sharpen the error message; the declared
// member type decides the parse.
func ParseScalar(t ValueType, raw, tag string) (any, error) {
	given := tag
	if given == "" {
		given = "string"
	}
	switch t.Kind {
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w %q: expected int, given %s", ErrConversion, raw, given)
		}
		return n, nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q: expected float, given %s", ErrConversion, raw, given)
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w %q: expected bool, given %s", ErrConversion, raw, given)
		}
		return b, nil
	case KindString:
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s member takes no scalar", ErrConversion, t.Tag())
}

// FormatValue renders a member value back to its wire string form. References
// render as the owning entity path (component), entity path (entity) or asset
// path; nil references render as "null".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case *scene.Entity:
		if x == nil {
			return "null"
		}
		return x.Path()
	case scene.Component:
		if owner := x.Entity(); owner != nil {
			return owner.Path()
		}
		return x.TypeName()
	case AssetLink:
		if x.IsZero() {
			return "null"
		}
		return x.Path
	default:
		return fmt.Sprintf("%v", x)
	}
}

func convErr(expected string, v any) error {
	return fmt.Errorf("%w: expected %s, given %s", ErrConversion, expected, typeNameOf(v))
}

func typeNameOf(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case string:
		return "string"
	case *scene.Entity:
		return "entity"
	case scene.Component:
		return "component " + x.TypeName()
	case AssetLink:
		return "asset"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x == math.Trunc(x) {
			return int(x), true
		}
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	return 0, false
}
