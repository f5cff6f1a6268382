package components

import (
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// MeleeCombat attacks any Damageable target in range. Target is declared by
// capability, so autowiring can bind a HealthSystem without MeleeCombat
// knowing the concrete type.
type MeleeCombat struct {
	scene.Base
	AttackDamage   float64
	AttackRange    float64
	AttackCooldown float64
	Target         scene.Component

	cooldownLeft float64
}

func NewMeleeCombat() *MeleeCombat {
	return &MeleeCombat{AttackDamage: 10, AttackRange: 1.5, AttackCooldown: 0.8}
}

func (*MeleeCombat) TypeName() string { return "MeleeCombat" }

// Strike applies damage to the bound target when off cooldown.
func (m *MeleeCombat) Strike() bool {
	if m.cooldownLeft > 0 || m.Target == nil {
		return false
	}
	if h, ok := m.Target.(*HealthSystem); ok {
		h.ApplyDamage(m.AttackDamage)
	}
	m.cooldownLeft = m.AttackCooldown
	return true
}

func (m *MeleeCombat) Update(dt float64) {
	if m.cooldownLeft > 0 {
		m.cooldownLeft = max(m.cooldownLeft-dt, 0)
	}
}

func meleeCombatType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "MeleeCombat",
		Events: []string{"OnAttack"},
		New:    func() scene.Component { return NewMeleeCombat() },
		Members: []fields.Member{
			fields.FloatField("AttackDamage", true, func(m *MeleeCombat) float64 { return m.AttackDamage }, func(m *MeleeCombat, v float64) { m.AttackDamage = v }),
			fields.FloatField("AttackRange", true, func(m *MeleeCombat) float64 { return m.AttackRange }, func(m *MeleeCombat, v float64) { m.AttackRange = v }),
			fields.FloatField("AttackCooldown", true, func(m *MeleeCombat) float64 { return m.AttackCooldown }, func(m *MeleeCombat, v float64) { m.AttackCooldown = v }),
			fields.AnyComponentField("Target", true, CapDamageable, func(m *MeleeCombat) scene.Component { return m.Target }, func(m *MeleeCombat, v scene.Component) { m.Target = v }),
		},
	}
}

// RangedCombat fires a projectile prefab at a Damageable target.
type RangedCombat struct {
	scene.Base
	AttackDamage     float64
	ProjectileSpeed  float64
	ProjectilePrefab fields.AssetLink
	Target           scene.Component
}

func NewRangedCombat() *RangedCombat {
	return &RangedCombat{AttackDamage: 6, ProjectileSpeed: 20}
}

func (*RangedCombat) TypeName() string { return "RangedCombat" }

func rangedCombatType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "RangedCombat",
		Events: []string{"OnFire"},
		New:    func() scene.Component { return NewRangedCombat() },
		Members: []fields.Member{
			fields.FloatField("AttackDamage", true, func(r *RangedCombat) float64 { return r.AttackDamage }, func(r *RangedCombat, v float64) { r.AttackDamage = v }),
			fields.FloatField("ProjectileSpeed", true, func(r *RangedCombat) float64 { return r.ProjectileSpeed }, func(r *RangedCombat, v float64) { r.ProjectileSpeed = v }),
			fields.AssetField("ProjectilePrefab", true, "prefab", func(r *RangedCombat) fields.AssetLink { return r.ProjectilePrefab }, func(r *RangedCombat, v fields.AssetLink) { r.ProjectilePrefab = v }),
			fields.AnyComponentField("Target", true, CapDamageable, func(r *RangedCombat) scene.Component { return r.Target }, func(r *RangedCombat, v scene.Component) { r.Target = v }),
		},
	}
}
