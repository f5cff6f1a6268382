package components

import (
	"slices"
	"testing"

	"github.com/scenewire/scenewire/internal/core/events/bus"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

func registry(t *testing.T) *fields.Registry {
	t.Helper()
	reg := fields.NewRegistry()
	if err := RegisterBuiltins(reg); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	return reg
}

func TestRegisterBuiltins(t *testing.T) {
	reg := registry(t)
	names := reg.Names()
	for _, want := range []string{
		"Transform", "HealthSystem", "HealthBar", "ManaSystem", "ManaBar",
		"InventorySystem", "InventoryPanel", "EquipmentManager",
		"MeleeCombat", "RangedCombat", "AIStateMachine", "PatrolSystem",
		"DialogueSystem", "DialogueBox", "QuestSystem", "QuestTracker",
		"SaveLoadSystem", "PlayerController", "Camera", "Canvas", "UILabel",
	} {
		if !slices.Contains(names, want) {
			t.Errorf("builtin %s not registered", want)
		}
	}
	// constructors must produce components matching their registered name
	for _, name := range names {
		c, err := reg.New(name)
		if err != nil {
			t.Fatalf("New(%s): %v", name, err)
		}
		if c.TypeName() != name {
			t.Errorf("New(%s).TypeName() = %s", name, c.TypeName())
		}
	}
}

func TestHealthSystemDamage(t *testing.T) {
	h := NewHealthSystem()
	h.ApplyDamage(30)
	if h.Current != 70 {
		t.Fatalf("Current = %v after damage", h.Current)
	}
	h.ApplyDamage(100)
	if !h.Dead() || h.Current != 0 {
		t.Fatalf("Dead = %v, Current = %v", h.Dead(), h.Current)
	}
	// dead components ignore further damage and healing
	h.Heal(10)
	if h.Current != 0 {
		t.Fatalf("dead component healed to %v", h.Current)
	}
}

func TestHealthSystemEvents(t *testing.T) {
	events := bus.New()
	s := scene.New("t", events)
	e, _ := s.NewEntity("Boss", nil)
	h := NewHealthSystem()
	_ = s.Attach(e, h)

	var seen []string
	for _, eventType := range []string{"OnDamaged", "OnDeath"} {
		eventType := eventType
		events.Subscribe(eventType, func(ev bus.Event) error {
			if ev.Source != "Boss" {
				t.Errorf("%s source = %q", eventType, ev.Source)
			}
			seen = append(seen, eventType)
			return nil
		})
	}

	h.ApplyDamage(40)
	if !slices.Equal(seen, []string{"OnDamaged"}) {
		t.Fatalf("events after damage = %v", seen)
	}
	h.ApplyDamage(60)
	if !slices.Equal(seen, []string{"OnDamaged", "OnDamaged", "OnDeath"}) {
		t.Fatalf("events after death = %v", seen)
	}
	// dead components go quiet
	h.ApplyDamage(5)
	if len(seen) != 3 {
		t.Fatalf("events after posthumous damage = %v", seen)
	}
}

func TestHealthSystemInvulnerable(t *testing.T) {
	reg := registry(t)
	h := NewHealthSystem()
	if err := reg.Set(h, "invulnerable", true); err != nil {
		t.Fatalf("Set(invulnerable): %v", err)
	}
	h.ApplyDamage(50)
	if h.Current != 100 {
		t.Fatalf("invulnerable component took damage: %v", h.Current)
	}
}

func TestHealthSystemRegen(t *testing.T) {
	h := NewHealthSystem()
	h.RegenRate = 10
	h.ApplyDamage(50)
	h.Update(1)
	if h.Current != 60 {
		t.Fatalf("Current = %v after regen tick", h.Current)
	}
	h.Update(100)
	if h.Current != h.MaxHealth {
		t.Fatalf("regen overshot max: %v", h.Current)
	}
}

func TestHealthBarPercent(t *testing.T) {
	reg := registry(t)
	bar := NewHealthBar()

	v, _, err := reg.Get(bar, "Percent")
	if err != nil || v.(float64) != 0 {
		t.Fatalf("unbound bar Percent = %v, %v", v, err)
	}

	h := NewHealthSystem()
	h.ApplyDamage(25)
	if err = reg.Set(bar, "Source", h); err != nil {
		t.Fatalf("Set(Source): %v", err)
	}
	v, _, err = reg.Get(bar, "Percent")
	if err != nil || v.(float64) != 0.75 {
		t.Fatalf("Percent = %v, %v; want 0.75", v, err)
	}
}

func TestManaSpendAndRegen(t *testing.T) {
	m := NewManaSystem()
	if !m.Spend(20) || m.Current != 30 {
		t.Fatalf("Spend failed, Current = %v", m.Current)
	}
	if m.Spend(100) {
		t.Fatal("overdraw accepted")
	}
	m.Update(5)
	if m.Current != 35 {
		t.Fatalf("Current = %v after regen", m.Current)
	}
}

func TestMeleeCombatStrike(t *testing.T) {
	mc := NewMeleeCombat()
	target := NewHealthSystem()
	mc.Target = target

	if !mc.Strike() {
		t.Fatal("first strike refused")
	}
	if target.Current != 90 {
		t.Fatalf("target Current = %v", target.Current)
	}
	if mc.Strike() {
		t.Fatal("strike ignored cooldown")
	}
	mc.Update(1)
	if !mc.Strike() {
		t.Fatal("strike refused after cooldown elapsed")
	}
}

func TestPatrolSystemMovesOwner(t *testing.T) {
	s := scene.New("t", nil)
	a, _ := s.NewEntity("A", nil)
	b, _ := s.NewEntity("B", nil)
	npc, _ := s.NewEntity("Guard", nil)

	ta := NewTransform()
	tb := NewTransform()
	tb.X = 10
	_ = s.Attach(a, ta)
	_ = s.Attach(b, tb)
	_ = s.Attach(npc, NewTransform())

	patrol := NewPatrolSystem()
	patrol.Speed = 0.5
	patrol.WaypointA = a
	patrol.WaypointB = b
	_ = s.Attach(npc, patrol)

	s.Update(1)
	tn := transformOf(npc)
	if tn.X != 5 {
		t.Fatalf("X = %v after half patrol", tn.X)
	}
	s.Update(1)
	if tn.X != 10 {
		t.Fatalf("X = %v at far waypoint", tn.X)
	}
	// direction flips at the end
	s.Update(1)
	if tn.X != 5 {
		t.Fatalf("X = %v on the way back", tn.X)
	}
}

func TestInventoryAndEquipment(t *testing.T) {
	inv := NewInventorySystem()
	inv.Capacity = 2
	if !inv.Add("sword") || !inv.Add("shield") {
		t.Fatal("adds refused under capacity")
	}
	if inv.Add("potion") {
		t.Fatal("add accepted over capacity")
	}

	eq := NewEquipmentManager()
	if eq.Equip("sword") {
		t.Fatal("equip without inventory accepted")
	}
	eq.Inventory = inv
	if !eq.Equip("sword") || eq.MainHand != "sword" {
		t.Fatalf("equip failed, MainHand = %q", eq.MainHand)
	}
	// swapping returns the old item to the inventory
	if !eq.Equip("shield") {
		t.Fatal("swap refused")
	}
	if !slices.Contains(inv.Items(), "sword") {
		t.Fatalf("swapped-out item lost, items = %v", inv.Items())
	}
}

func TestAIStateValidation(t *testing.T) {
	reg := registry(t)
	ai := NewAIStateMachine()

	if err := reg.Set(ai, "State", "chase"); err != nil {
		t.Fatalf("Set(State): %v", err)
	}
	if ai.State() != "chase" {
		t.Fatalf("State = %q", ai.State())
	}
	if err := reg.Set(ai, "State", "flying"); err == nil {
		t.Fatal("invalid state accepted")
	}
}

func TestDialogueFlow(t *testing.T) {
	d := NewDialogueSystem()
	d.SetLines([]string{"hello", "farewell"})
	box := NewDialogueBox()
	box.Source = d

	if box.text() != "hello" {
		t.Fatalf("text = %q", box.text())
	}
	if !d.Advance() {
		t.Fatal("advance refused")
	}
	if box.text() != "farewell" {
		t.Fatalf("text = %q", box.text())
	}
	if d.Advance() {
		t.Fatal("advance past the end accepted")
	}
}

func TestQuestCompletion(t *testing.T) {
	q := NewQuestSystem()
	if q.Complete() {
		t.Fatal("completing without an active quest accepted")
	}
	q.ActiveQuest = "find-the-key"
	if !q.Complete() || q.ActiveQuest != "" {
		t.Fatalf("complete failed, active = %q", q.ActiveQuest)
	}
	reg := registry(t)
	v, _, err := reg.Get(q, "Completed")
	if err != nil || v.(int) != 1 {
		t.Fatalf("Completed = %v, %v", v, err)
	}
}
