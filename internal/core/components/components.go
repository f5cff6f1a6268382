// Package components holds the built-in component library: the gameplay and
// UI kinds the workflow commands assemble and autowire. Every kind registers
// a typed member descriptor, so the property bridge never reflects.
package components

import (
	"errors"

	"github.com/scenewire/scenewire/internal/core/fields"
)

// Capability names used by Implements declarations and typed references.
const (
	CapDamageable = "Damageable"
	CapResource   = "Resource"
)

// RegisterBuiltins registers every built-in component type. Registration
// order is fixed; it is the order ListComponentTypes reports.
func RegisterBuiltins(reg *fields.Registry) error {
	types := []fields.ComponentType{
		transformType(),
		healthSystemType(),
		healthBarType(),
		manaSystemType(),
		manaBarType(),
		inventorySystemType(),
		inventoryPanelType(),
		equipmentManagerType(),
		meleeCombatType(),
		rangedCombatType(),
		aiStateMachineType(),
		patrolSystemType(),
		dialogueSystemType(),
		dialogueBoxType(),
		questSystemType(),
		questTrackerType(),
		saveLoadSystemType(),
		playerControllerType(),
		cameraType(),
		canvasType(),
		uiLabelType(),
	}
	var errs error
	for _, ct := range types {
		if err := reg.Register(ct); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
