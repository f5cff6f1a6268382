package components

import (
	"slices"

	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// InventorySystem stores item identifiers up to a capacity.
type InventorySystem struct {
	scene.Base
	Capacity int

	items []string
}

func NewInventorySystem() *InventorySystem {
	return &InventorySystem{Capacity: 20}
}

func (*InventorySystem) TypeName() string { return "InventorySystem" }

func (inv *InventorySystem) Add(item string) bool {
	if item == "" || len(inv.items) >= inv.Capacity {
		return false
	}
	inv.items = append(inv.items, item)
	return true
}

func (inv *InventorySystem) Remove(item string) bool {
	if i := slices.Index(inv.items, item); i >= 0 {
		inv.items = slices.Delete(inv.items, i, i+1)
		return true
	}
	return false
}

func (inv *InventorySystem) Items() []string { return slices.Clone(inv.items) }

func (inv *InventorySystem) count() int { return len(inv.items) }

func inventorySystemType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "InventorySystem",
		Events: []string{"OnItemAdded", "OnItemRemoved"},
		New:    func() scene.Component { return NewInventorySystem() },
		Members: []fields.Member{
			fields.IntField("Capacity", true, func(i *InventorySystem) int { return i.Capacity }, func(i *InventorySystem, v int) { i.Capacity = v }),
			fields.Property("Count", fields.Int, (*InventorySystem).count, nil),
		},
	}
}

// InventoryPanel is the grid UI bound to an InventorySystem.
type InventoryPanel struct {
	scene.Base
	Source  *InventorySystem
	Visible bool
	Columns int
}

func NewInventoryPanel() *InventoryPanel {
	return &InventoryPanel{Columns: 5}
}

func (*InventoryPanel) TypeName() string { return "InventoryPanel" }

func inventoryPanelType() fields.ComponentType {
	return fields.ComponentType{
		Name: "InventoryPanel",
		New:  func() scene.Component { return NewInventoryPanel() },
		Members: []fields.Member{
			fields.ComponentField("Source", true, "InventorySystem", func(p *InventoryPanel) *InventorySystem { return p.Source }, func(p *InventoryPanel, v *InventorySystem) { p.Source = v }),
			fields.BoolField("Visible", true, func(p *InventoryPanel) bool { return p.Visible }, func(p *InventoryPanel, v bool) { p.Visible = v }),
			fields.IntField("Columns", true, func(p *InventoryPanel) int { return p.Columns }, func(p *InventoryPanel, v int) { p.Columns = v }),
		},
	}
}

// EquipmentManager resolves equipped slots against an inventory.
type EquipmentManager struct {
	scene.Base
	Inventory *InventorySystem
	MainHand  string
	OffHand   string
}

func NewEquipmentManager() *EquipmentManager { return &EquipmentManager{} }

func (*EquipmentManager) TypeName() string { return "EquipmentManager" }

// Equip moves an item from the linked inventory into the main hand slot.
func (eq *EquipmentManager) Equip(item string) bool {
	if eq.Inventory == nil || !eq.Inventory.Remove(item) {
		return false
	}
	if eq.MainHand != "" {
		eq.Inventory.Add(eq.MainHand)
	}
	eq.MainHand = item
	return true
}

func equipmentManagerType() fields.ComponentType {
	return fields.ComponentType{
		Name:   "EquipmentManager",
		Events: []string{"OnEquipped"},
		New:    func() scene.Component { return NewEquipmentManager() },
		Members: []fields.Member{
			fields.ComponentField("Inventory", true, "InventorySystem", func(e *EquipmentManager) *InventorySystem { return e.Inventory }, func(e *EquipmentManager, v *InventorySystem) { e.Inventory = v }),
			fields.StringField("MainHand", true, func(e *EquipmentManager) string { return e.MainHand }, func(e *EquipmentManager, v string) { e.MainHand = v }),
			fields.StringField("OffHand", true, func(e *EquipmentManager) string { return e.OffHand }, func(e *EquipmentManager, v string) { e.OffHand = v }),
		},
	}
}
