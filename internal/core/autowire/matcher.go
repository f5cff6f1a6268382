package autowire

import (
	"strings"

	"github.com/scenewire/scenewire/internal/core/fields"
)

// Matcher decides whether a target member can receive the source component.
// Matchers run in rank order; within one rank, members are scanned public
// fields first, then non-public settable fields, then settable properties.
type Matcher struct {
	Name  string
	Match func(member fields.Member, source fields.ComponentType) bool
}

// DefaultMatchers is the standard ranked chain.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{
			Name: "exact-type",
			Match: func(m fields.Member, src fields.ComponentType) bool {
				return m.Type.Kind == fields.KindComponent && m.Type.To == src.Name
			},
		},
		{
			Name: "assignable-type",
			Match: func(m fields.Member, src fields.ComponentType) bool {
				return m.Type.Kind == fields.KindComponent && m.Type.To != "" &&
					src.AssignableTo(m.Type.To) && m.Type.To != src.Name
			},
		},
		{
			Name: "entity-handle",
			Match: func(m fields.Member, _ fields.ComponentType) bool {
				return m.Type.Kind == fields.KindEntity
			},
		},
		{
			Name: "name-contains",
			Match: func(m fields.Member, src fields.ComponentType) bool {
				if m.Type.IsScalar() {
					return false
				}
				needle := normalizeName(src.Name)
				if needle == "" {
					return false
				}
				return strings.Contains(strings.ToLower(m.Name), needle)
			},
		},
	}
}

// normalizeName lowercases and strips the "system" suffix convention, so a
// source named HealthSystem matches members named health, healthSource, etc.
func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "system", "")
}

// scanOrder arranges a component type's settable members for matching.
func scanOrder(ct fields.ComponentType) []fields.Member {
	out := make([]fields.Member, 0, len(ct.Members))
	for _, m := range ct.Members {
		if m.Kind == fields.MemberField && m.Public && m.Settable() {
			out = append(out, m)
		}
	}
	for _, m := range ct.Members {
		if m.Kind == fields.MemberField && !m.Public && m.Settable() {
			out = append(out, m)
		}
	}
	for _, m := range ct.Members {
		if m.Kind == fields.MemberProperty && m.Settable() {
			out = append(out, m)
		}
	}
	return out
}
