package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// HealthSystem tracks hit points and regenerates them over time.
type HealthSystem struct {
	scene.Base
	MaxHealth float64
	Current   float64
	RegenRate float64

	invulnerable bool
	dead         bool
}

func NewHealthSystem() *HealthSystem {
	return &HealthSystem{MaxHealth: 100, Current: 100}
}

func (*HealthSystem) TypeName() string { return "HealthSystem" }

// ApplyDamage reduces health unless the component is invulnerable. Dropping
// to zero marks the component dead; further damage is ignored. Emits the
// declared OnDamaged and OnDeath events through the owning entity.
func (h *HealthSystem) ApplyDamage(amount float64) {
	if h.invulnerable || h.dead || amount <= 0 {
		return
	}
	h.Current -= amount
	if h.Current <= 0 {
		h.Current = 0
		h.dead = true
	}
	if e := h.Entity(); e != nil {
		e.Emit("OnDamaged", map[string]any{"amount": amount, "remaining": h.Current})
		if h.dead {
			e.Emit("OnDeath", nil)
		}
	}
}

func (h *HealthSystem) Heal(amount float64) {
	if h.dead || amount <= 0 {
		return
	}
	h.Current = min(h.Current+amount, h.MaxHealth)
}

func (h *HealthSystem) Dead() bool { return h.dead }

func (h *HealthSystem) Update(dt float64) {
	if h.dead || h.RegenRate <= 0 {
		return
	}
	h.Current = min(h.Current+h.RegenRate*dt, h.MaxHealth)
}

func (h *HealthSystem) percent() float64 {
	if h.MaxHealth <= 0 {
		return 0
	}
	return h.Current / h.MaxHealth
}

func healthSystemType() fields.ComponentType {
	return fields.ComponentType{
		Name:       "HealthSystem",
		Implements: []string{CapDamageable},
		Events:     []string{"OnDamaged", "OnDeath"},
		New:        func() scene.Component { return NewHealthSystem() },
		Members: []fields.Member{
			fields.FloatField("MaxHealth", true, func(h *HealthSystem) float64 { return h.MaxHealth }, func(h *HealthSystem, v float64) { h.MaxHealth = v }),
			fields.FloatField("Current", true, func(h *HealthSystem) float64 { return h.Current }, func(h *HealthSystem, v float64) { h.Current = v }),
			fields.FloatField("RegenRate", true, func(h *HealthSystem) float64 { return h.RegenRate }, func(h *HealthSystem, v float64) { h.RegenRate = v }),
			fields.BoolField("invulnerable", false, func(h *HealthSystem) bool { return h.invulnerable }, func(h *HealthSystem, v bool) { h.invulnerable = v }),
			fields.Property("Percent", fields.Float, (*HealthSystem).percent, nil),
		},
	}
}

// HealthBar is the UI readout bound to a HealthSystem.
type HealthBar struct {
	scene.Base
	Source  *HealthSystem
	Visible bool
	Width   float64
}

func NewHealthBar() *HealthBar { return &HealthBar{Visible: true, Width: 120} }

func (*HealthBar) TypeName() string { return "HealthBar" }

func (b *HealthBar) percent() float64 {
	if b.Source == nil {
		return 0
	}
	return b.Source.percent()
}

func healthBarType() fields.ComponentType {
	return fields.ComponentType{
		Name: "HealthBar",
		New:  func() scene.Component { return NewHealthBar() },
		Members: []fields.Member{
			fields.ComponentField("Source", true, "HealthSystem", func(b *HealthBar) *HealthSystem { return b.Source }, func(b *HealthBar, v *HealthSystem) { b.Source = v }),
			fields.BoolField("Visible", true, func(b *HealthBar) bool { return b.Visible }, func(b *HealthBar, v bool) { b.Visible = v }),
			fields.FloatField("Width", true, func(b *HealthBar) float64 { return b.Width }, func(b *HealthBar, v float64) { b.Width = v }),
			fields.Property("Percent", fields.Float, (*HealthBar).percent, nil),
		},
	}
}
