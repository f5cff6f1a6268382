package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// ManaSystem tracks a spendable resource pool.
type ManaSystem struct {
	scene.Base
	MaxMana   float64
	Current   float64
	RegenRate float64
}

func NewManaSystem() *ManaSystem {
	return &ManaSystem{MaxMana: 50, Current: 50, RegenRate: 1}
}

func (*ManaSystem) TypeName() string { return "ManaSystem" }

// Spend withdraws from the pool, reporting whether enough mana was available.
func (m *ManaSystem) Spend(amount float64) bool {
	if amount <= 0 || m.Current < amount {
		return false
	}
	m.Current -= amount
	return true
}

func (m *ManaSystem) Update(dt float64) {
	if m.RegenRate <= 0 {
		return
	}
	m.Current = min(m.Current+m.RegenRate*dt, m.MaxMana)
}

func manaSystemType() fields.ComponentType {
	return fields.ComponentType{
		Name:       "ManaSystem",
		Implements: []string{CapResource},
		Events:     []string{"OnDepleted"},
		New:        func() scene.Component { return NewManaSystem() },
		Members: []fields.Member{
			fields.FloatField("MaxMana", true, func(m *ManaSystem) float64 { return m.MaxMana }, func(m *ManaSystem, v float64) { m.MaxMana = v }),
			fields.FloatField("Current", true, func(m *ManaSystem) float64 { return m.Current }, func(m *ManaSystem, v float64) { m.Current = v }),
			fields.FloatField("RegenRate", true, func(m *ManaSystem) float64 { return m.RegenRate }, func(m *ManaSystem, v float64) { m.RegenRate = v }),
		},
	}
}

// ManaBar is the UI readout bound to a ManaSystem.
type ManaBar struct {
	scene.Base
	Source  *ManaSystem
	Visible bool
}

func NewManaBar() *ManaBar { return &ManaBar{Visible: true} }

func (*ManaBar) TypeName() string { return "ManaBar" }

func manaBarType() fields.ComponentType {
	return fields.ComponentType{
		Name: "ManaBar",
		New:  func() scene.Component { return NewManaBar() },
		Members: []fields.Member{
			fields.ComponentField("Source", true, "ManaSystem", func(b *ManaBar) *ManaSystem { return b.Source }, func(b *ManaBar, v *ManaSystem) { b.Source = v }),
			fields.BoolField("Visible", true, func(b *ManaBar) bool { return b.Visible }, func(b *ManaBar, v bool) { b.Visible = v }),
		},
	}
}
