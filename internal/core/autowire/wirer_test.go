package autowire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/core/components"
	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/scene"
)

type fixture struct {
	scene *scene.Scene
	reg   *fields.Registry
	wirer *Wirer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := fields.NewRegistry()
	require.NoError(t, components.RegisterBuiltins(reg))
	sc := scene.New("test", nil)
	return &fixture{scene: sc, reg: reg, wirer: New(sc, reg, nil)}
}

func (f *fixture) entity(t *testing.T, name string, cs ...scene.Component) *scene.Entity {
	t.Helper()
	e, err := f.scene.NewEntity(name, nil)
	require.NoError(t, err)
	for _, c := range cs {
		require.NoError(t, f.scene.Attach(e, c))
	}
	return e
}

func TestExactTypeMatch(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	bar := components.NewHealthBar()
	f.entity(t, "Player", hp)
	f.entity(t, "HealthBar", bar)

	report := f.wirer.Wire([]Pair{{Source: "HealthSystem", Target: "HealthBar"}}, false)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	require.Len(t, report.Wired, 1)
	assert.Equal(t, "Source", report.Wired[0].Member)
	assert.Equal(t, "exact-type", report.Wired[0].Mode)
	assert.Equal(t, "Player", report.Wired[0].SourcePath)
	assert.Same(t, hp, bar.Source)
}

func TestAssignableTypeMatch(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	mc := components.NewMeleeCombat()
	f.entity(t, "Dummy", hp)
	f.entity(t, "Attacker", mc)

	// MeleeCombat.Target is declared Damageable; HealthSystem implements it
	report := f.wirer.Wire([]Pair{{Source: "HealthSystem", Target: "MeleeCombat"}}, false)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	assert.Equal(t, "Target", report.Wired[0].Member)
	assert.Equal(t, "assignable-type", report.Wired[0].Mode)
	assert.Same(t, hp, mc.Target)
}

func TestEntityHandleMatch(t *testing.T) {
	f := newFixture(t)
	pc := components.NewPlayerController()
	cam := components.NewCamera()
	player := f.entity(t, "Player", pc)
	f.entity(t, "MainCamera", cam)

	report := f.wirer.Wire([]Pair{{Source: "PlayerController", Target: "Camera"}}, false)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	assert.Equal(t, "Follow", report.Wired[0].Member)
	assert.Equal(t, "entity-handle", report.Wired[0].Mode)
	assert.Same(t, player, cam.Follow)
}

func TestNameContainsMatch(t *testing.T) {
	f := newFixture(t)
	inv := components.NewInventorySystem()
	sls := components.NewSaveLoadSystem()
	f.entity(t, "Player", inv)
	f.entity(t, "Persistence", sls)

	// SaveLoadSystem.Inventory is untyped; only the normalized name matches
	report := f.wirer.Wire([]Pair{{Source: "InventorySystem", Target: "SaveLoadSystem"}}, false)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	assert.Equal(t, "Inventory", report.Wired[0].Member)
	assert.Equal(t, "name-contains", report.Wired[0].Mode)
	assert.Same(t, inv, sls.Inventory)
}

func TestSubstringTypeResolution(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	bar := components.NewHealthBar()
	f.entity(t, "Player", hp)
	f.entity(t, "UI", bar)

	// neither name is an exact type; both resolve by substring
	report := f.wirer.Wire([]Pair{{Source: "health", Target: "Bar"}}, false)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	assert.Same(t, hp, bar.Source)
}

func TestMissingComponentDoesNotAbortBatch(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	bar := components.NewHealthBar()
	f.entity(t, "Player", hp)
	f.entity(t, "UI", bar)

	report := f.wirer.Wire([]Pair{
		{Source: "GhostSystem", Target: "HealthBar"},
		{Source: "HealthSystem", Target: "HealthBar"},
	}, false)

	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed[0].Reason, "source component not found")
	require.Len(t, report.Wired, 1)
	assert.Same(t, hp, bar.Source)
}

func TestNoMatchingMemberFails(t *testing.T) {
	f := newFixture(t)
	f.entity(t, "Player", components.NewHealthSystem())
	f.entity(t, "Prop", components.NewTransform())

	report := f.wirer.Wire([]Pair{{Source: "HealthSystem", Target: "Transform"}}, false)

	require.Len(t, report.Failed, 1)
	assert.Contains(t, report.Failed[0].Reason, "no matching member")
}

func TestEventFallback(t *testing.T) {
	f := newFixture(t)
	f.entity(t, "Player", components.NewHealthSystem())
	f.entity(t, "Prop", components.NewTransform())

	report := f.wirer.Wire([]Pair{
		{Source: "HealthSystem", Target: "Transform", Event: "OnDeath"},
	}, false)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	assert.Equal(t, "event", report.Wired[0].Mode)
	assert.Empty(t, report.Wired[0].Member)
}

func TestEventFallbackRejectsUndeclaredEvent(t *testing.T) {
	f := newFixture(t)
	f.entity(t, "Player", components.NewHealthSystem())
	f.entity(t, "Prop", components.NewTransform())

	report := f.wirer.Wire([]Pair{
		{Source: "HealthSystem", Target: "Transform", Event: "OnTeleport"},
	}, false)

	require.Len(t, report.Failed, 1)
}

func TestSceneOrderBreaksTies(t *testing.T) {
	f := newFixture(t)
	first := components.NewHealthSystem()
	second := components.NewHealthSystem()
	bar := components.NewHealthBar()
	f.entity(t, "Alpha", first)
	f.entity(t, "Beta", second)
	f.entity(t, "UI", bar)

	report := f.wirer.Wire([]Pair{{Source: "HealthSystem", Target: "HealthBar"}}, false)

	require.True(t, report.AllWired())
	assert.Equal(t, "Alpha", report.Wired[0].SourcePath)
	assert.Same(t, first, bar.Source)
}

func TestAtomicAppliesNothingOnFailure(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	bar := components.NewHealthBar()
	f.entity(t, "Player", hp)
	f.entity(t, "UI", bar)

	report := f.wirer.Wire([]Pair{
		{Source: "HealthSystem", Target: "HealthBar"},
		{Source: "GhostSystem", Target: "HealthBar"},
	}, true)

	// every pair is accounted for: one unresolvable, one withheld
	require.Len(t, report.Failed, 2)
	assert.Empty(t, report.Wired)
	assert.Nil(t, bar.Source, "atomic batch must not partially apply")
}

func TestAtomicAppliesAllOnSuccess(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	bar := components.NewHealthBar()
	cam := components.NewCamera()
	f.entity(t, "Player", hp, components.NewPlayerController())
	f.entity(t, "UI", bar)
	f.entity(t, "MainCamera", cam)

	report := f.wirer.Wire([]Pair{
		{Source: "HealthSystem", Target: "HealthBar"},
		{Source: "PlayerController", Target: "Camera"},
	}, true)

	require.True(t, report.AllWired(), "failures: %v", report.Failed)
	assert.Len(t, report.Wired, 2)
	assert.Same(t, hp, bar.Source)
	assert.NotNil(t, cam.Follow)
}

func TestCustomMatcherChain(t *testing.T) {
	f := newFixture(t)
	hp := components.NewHealthSystem()
	bar := components.NewHealthBar()
	f.entity(t, "Player", hp)
	f.entity(t, "UI", bar)

	// a chain without exact-type cannot wire the typed Source member
	f.wirer.Use(Matcher{
		Name:  "never",
		Match: func(fields.Member, fields.ComponentType) bool { return false },
	})
	report := f.wirer.Wire([]Pair{{Source: "HealthSystem", Target: "HealthBar"}}, false)
	require.Len(t, report.Failed, 1)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "health", normalizeName("HealthSystem"))
	assert.Equal(t, "inventory", normalizeName("InventorySystem"))
	assert.Equal(t, "melee", normalizeName("Melee"))
	assert.Equal(t, "", normalizeName("System"))
}
