package components

import (
	"fmt"
	"slices"

	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

var aiStates = []string{"idle", "patrol", "chase", "attack", "dead"}

// AIStateMachine is a minimal FSM driving NPC behaviour.
type AIStateMachine struct {
	scene.Base
	CurrentTarget *scene.Entity

	state string
}

func NewAIStateMachine() *AIStateMachine {
	return &AIStateMachine{state: "idle"}
}

func (*AIStateMachine) TypeName() string { return "AIStateMachine" }

func (a *AIStateMachine) State() string { return a.state }

func (a *AIStateMachine) setState(v string) error {
	if !slices.Contains(aiStates, v) {
		return fmt.Errorf("%w: state %q is not one of %v", fields.ErrConversion, v, aiStates)
	}
	a.state = v
	return nil
}

func aiStateMachineType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "AIStateMachine",
		Events: []string{"OnStateChanged"},
		New:    func() scene.Component { return NewAIStateMachine() },
		Members: []fields.Member{
			fields.EntityField("CurrentTarget", true, func(a *AIStateMachine) *scene.Entity { return a.CurrentTarget }, func(a *AIStateMachine, v *scene.Entity) { a.CurrentTarget = v }),
			fields.Property("State", fields.String, (*AIStateMachine).State, (*AIStateMachine).setState),
		},
	}
}

// PatrolSystem ping-pongs the owning entity's Transform between two waypoint
// entities.
type PatrolSystem struct {
	scene.Base
	Speed     float64
	WaypointA *scene.Entity
	WaypointB *scene.Entity

	progress float64
	forward  bool
}

func NewPatrolSystem() *PatrolSystem {
	return &PatrolSystem{Speed: 1, forward: true}
}

func (*PatrolSystem) TypeName() string { return "PatrolSystem" }

func (p *PatrolSystem) Update(dt float64) {
	owner := p.Entity()
	if owner == nil || p.WaypointA == nil || p.WaypointB == nil || p.Speed <= 0 {
		return
	}
	ta := transformOf(p.WaypointA)
	tb := transformOf(p.WaypointB)
	tc := transformOf(owner)
	if ta == nil || tb == nil || tc == nil {
		return
	}

	step := p.Speed * dt
	if p.forward {
		p.progress += step
		if p.progress >= 1 {
			p.progress, p.forward = 1, false
		}
	} else {
		p.progress -= step
		if p.progress <= 0 {
			p.progress, p.forward = 0, true
		}
	}
	tc.X = lerp(ta.X, tb.X, p.progress)
	tc.Y = lerp(ta.Y, tb.Y, p.progress)
	tc.Z = lerp(ta.Z, tb.Z, p.progress)
}

func transformOf(e *scene.Entity) *Transform {
	if c, ok := e.Component("Transform"); ok {
		if t, ok := c.(*Transform); ok {
			return t
		}
	}
	return nil
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func patrolSystemType() fields.ComponentType {
	return fields.ComponentType{
		Name: "PatrolSystem",
		New:  func() scene.Component { return NewPatrolSystem() },
		Members: []fields.Member{
			fields.FloatField("Speed", true, func(p *PatrolSystem) float64 { return p.Speed }, func(p *PatrolSystem, v float64) { p.Speed = v }),
			fields.EntityField("WaypointA", true, func(p *PatrolSystem) *scene.Entity { return p.WaypointA }, func(p *PatrolSystem, v *scene.Entity) { p.WaypointA = v }),
			fields.EntityField("WaypointB", true, func(p *PatrolSystem) *scene.Entity { return p.WaypointB }, func(p *PatrolSystem, v *scene.Entity) { p.WaypointB = v }),
		},
	}
}
