package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/core/autowire"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/core/scene"
	"github.com/scenewire/scenewire/internal/protocol"
)

// DefaultSceneStructure lists the marker containers a fresh gameplay scene
// starts with.
var DefaultSceneStructure = []string{
	"--- MANAGERS ---",
	"--- PLAYER ---",
	"--- ENEMIES ---",
	"--- ENVIRONMENT ---",
	"--- UI ---",
}

const (
	managersMarker = "--- MANAGERS ---"
	playerMarker   = "--- PLAYER ---"
	uiMarker       = "--- UI ---"
)

// systemTemplate maps a vault system id to the component pair the workflows
// assemble. A vault definition under Core/<System> takes precedence; the
// builtin component type is the fallback.
type systemTemplate struct {
	System string
	UI     string
}

var systemTemplates = map[string]systemTemplate{
	"health":        {System: "HealthSystem", UI: "HealthBar"},
	"mana":          {System: "ManaSystem", UI: "ManaBar"},
	"inventory":     {System: "InventorySystem", UI: "InventoryPanel"},
	"equipment":     {System: "EquipmentManager"},
	"combat-melee":  {System: "MeleeCombat"},
	"combat-ranged": {System: "RangedCombat"},
	"ai-fsm":        {System: "AIStateMachine"},
	"ai-patrol":     {System: "PatrolSystem"},
	"dialogue":      {System: "DialogueSystem", UI: "DialogueBox"},
	"quest":         {System: "QuestSystem", UI: "QuestTracker"},
	"save-load":     {System: "SaveLoadSystem"},
}

// lookupTemplate resolves a system id. Component type names pass through so
// clients can name registered types directly.
func lookupTemplate(h *Host, id string) (systemTemplate, error) {
	if tpl, ok := systemTemplates[id]; ok {
		return tpl, nil
	}
	if _, ok := h.Registry.Lookup(id); ok {
		return systemTemplate{System: id}, nil
	}
	return systemTemplate{}, protocol.Errorf(protocol.CodeBadParams, "unknown system: %s", id)
}

type structureParams struct {
	Structure []string `json:"structure,omitempty"`
}

func handleSetupSceneStructure(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[structureParams](params)
	if err != nil {
		return nil, err
	}
	return doSetupStructure(h, p.Structure)
}

func doSetupStructure(h *Host, structure []string) (map[string]any, error) {
	if len(structure) == 0 {
		structure = DefaultSceneStructure
	}
	var created, existing []string
	for _, name := range structure {
		if name == "" {
			continue
		}
		if _, ok := h.Scene.Find(name); ok {
			existing = append(existing, name)
			continue
		}
		// markers are bare containers, no Transform
		if _, err := h.Scene.NewEntity(name, nil); err != nil {
			return nil, err
		}
		created = append(created, name)
	}
	return map[string]any{"created": created, "existing": existing}, nil
}

type importSystemParams struct {
	SystemID   string `json:"systemId"`
	SystemPath string `json:"systemPath,omitempty"`
	TargetPath string `json:"targetPath,omitempty"`
}

func handleImportVaultSystem(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[importSystemParams](params)
	if err != nil {
		return nil, err
	}
	if p.SystemID == "" {
		return nil, protocol.NewError(protocol.CodeBadParams, "missing systemId")
	}
	return doImportSystem(ctx, h, p.SystemID, p.SystemPath, p.TargetPath)
}

// doImportSystem brings one system into the scene: instantiated from its
// vault definition when one exists, otherwise assembled from the builtin
// component type.
func doImportSystem(ctx context.Context, h *Host, id, systemPath, targetPath string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tpl, err := lookupTemplate(h, id)
	if err != nil {
		return nil, err
	}

	var parent *scene.Entity
	if targetPath != "" {
		if parent, err = resolveEntity(h, targetPath); err != nil {
			return nil, err
		}
	} else if m, ok := h.Scene.Find(managersMarker); ok {
		parent = m
	}

	path := systemPath
	if path == "" {
		path = "Core/" + tpl.System
	}
	if h.Library != nil {
		if a, lerr := h.Library.Load(path); lerr == nil {
			root, ierr := h.Library.Instantiate(a, h.Scene, h.Registry, parent)
			if ierr == nil {
				return map[string]any{
					"system": id, "entity": root.Path(), "source": "vault",
				}, nil
			}
			h.logger().Warn("vault system instantiation failed, using builtin",
				log.String("system", id),
				log.String("path", path),
				log.Error(ierr))
		}
	}

	e, err := newEntity(h, tpl.System, parent)
	if err != nil {
		return nil, err
	}
	c, err := h.Registry.New(tpl.System)
	if err != nil {
		_ = h.Scene.Destroy(e)
		return nil, err
	}
	if err := h.Scene.Attach(e, c); err != nil {
		_ = h.Scene.Destroy(e)
		return nil, err
	}
	return map[string]any{"system": id, "entity": e.Path(), "source": "builtin"}, nil
}

type setupPlayerParams struct {
	PlayerType  string   `json:"playerType,omitempty"`
	Systems     []string `json:"systems,omitempty"`
	CreateModel bool     `json:"createModel,omitempty"`
}

func handleSetupPlayer(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[setupPlayerParams](params)
	if err != nil {
		return nil, err
	}
	return doSetupPlayer(ctx, h, p)
}

func doSetupPlayer(ctx context.Context, h *Host, p setupPlayerParams) (map[string]any, error) {
	if p.PlayerType == "" {
		p.PlayerType = "3D"
	}
	if p.PlayerType != "2D" && p.PlayerType != "3D" {
		return nil, protocol.Errorf(protocol.CodeBadParams, "playerType must be 2D or 3D, got %s", p.PlayerType)
	}

	player, ok := h.Scene.Find("Player")
	if !ok {
		var parent *scene.Entity
		if m, found := h.Scene.Find(playerMarker); found {
			parent = m
		}
		var err error
		if player, err = newEntity(h, "Player", parent); err != nil {
			return nil, err
		}
	}
	if _, err := ensureComponent(h, player, "PlayerController"); err != nil {
		return nil, err
	}
	if p.CreateModel {
		if _, err := ensureChild(h, player, "PlayerModel"); err != nil {
			return nil, err
		}
	}
	if p.PlayerType == "3D" {
		cam, err := ensureChild(h, player, "MainCamera")
		if err != nil {
			return nil, err
		}
		if _, err := ensureComponent(h, cam, "Camera"); err != nil {
			return nil, err
		}
	}

	attached := make([]map[string]any, 0, len(p.Systems))
	var (
		failures []map[string]any
		pairs    []autowire.Pair
	)
	for _, id := range p.Systems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tpl, err := lookupTemplate(h, id)
		if err != nil {
			failures = append(failures, map[string]any{"system": id, "reason": err.Error()})
			continue
		}
		source, err := attachSystem(h, player, tpl)
		if err != nil {
			failures = append(failures, map[string]any{"system": id, "reason": err.Error()})
			continue
		}
		attached = append(attached, map[string]any{"system": id, "component": tpl.System, "source": source})
		if tpl.UI != "" {
			pairs = append(pairs, autowire.Pair{Source: tpl.System, Target: tpl.UI})
		}
	}

	out := map[string]any{
		"player":     entityInfo(player),
		"playerType": p.PlayerType,
		"attached":   attached,
	}
	if len(failures) > 0 {
		out["failures"] = failures
	}
	if len(pairs) > 0 {
		out["wiring"] = h.Wirer.Wire(pairs, false)
	}
	return out, nil
}

// attachSystem puts one system onto the player: the vault definition becomes
// a child rig when present, the builtin component attaches directly.
func attachSystem(h *Host, player *scene.Entity, tpl systemTemplate) (string, error) {
	if _, ok := player.Component(tpl.System); ok {
		return "existing", nil
	}
	if h.Library != nil {
		if a, err := h.Library.Load("Core/" + tpl.System); err == nil {
			if _, ierr := h.Library.Instantiate(a, h.Scene, h.Registry, player); ierr == nil {
				return "vault", nil
			}
		}
	}
	c, err := h.Registry.New(tpl.System)
	if err != nil {
		return "", err
	}
	if err := h.Scene.Attach(player, c); err != nil {
		return "", err
	}
	return "builtin", nil
}

type setupUIParams struct {
	Systems []string `json:"systems,omitempty"`
	UIStyle string   `json:"uiStyle,omitempty"`
}

func handleSetupGameUI(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[setupUIParams](params)
	if err != nil {
		return nil, err
	}
	return doSetupUI(ctx, h, p)
}

func doSetupUI(ctx context.Context, h *Host, p setupUIParams) (map[string]any, error) {
	switch p.UIStyle {
	case "", "Minimal", "Detailed":
	default:
		return nil, protocol.Errorf(protocol.CodeBadParams, "unknown uiStyle: %s", p.UIStyle)
	}

	canvas, ok := h.Scene.Find("Canvas")
	if !ok {
		var parent *scene.Entity
		if m, found := h.Scene.Find(uiMarker); found {
			parent = m
		}
		var err error
		if canvas, err = newEntity(h, "Canvas", parent); err != nil {
			return nil, err
		}
	}
	if _, err := ensureComponent(h, canvas, "Canvas"); err != nil {
		return nil, err
	}

	elements := make([]string, 0, len(p.Systems))
	var (
		failures []map[string]any
		pairs    []autowire.Pair
	)
	for _, id := range p.Systems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tpl, err := lookupTemplate(h, id)
		if err != nil {
			failures = append(failures, map[string]any{"system": id, "reason": err.Error()})
			continue
		}
		if tpl.UI == "" {
			failures = append(failures, map[string]any{"system": id, "reason": "system has no UI element"})
			continue
		}
		el, err := ensureChild(h, canvas, tpl.UI)
		if err != nil {
			failures = append(failures, map[string]any{"system": id, "reason": err.Error()})
			continue
		}
		if _, err := ensureComponent(h, el, tpl.UI); err != nil {
			failures = append(failures, map[string]any{"system": id, "reason": err.Error()})
			continue
		}
		if p.UIStyle == "Detailed" {
			if _, err := ensureComponent(h, el, "UILabel"); err != nil {
				failures = append(failures, map[string]any{"system": id, "reason": err.Error()})
				continue
			}
		}
		elements = append(elements, el.Path())
		pairs = append(pairs, autowire.Pair{Source: tpl.System, Target: tpl.UI})
	}

	out := map[string]any{
		"canvas":   canvas.Path(),
		"elements": elements,
	}
	if len(failures) > 0 {
		out["failures"] = failures
	}
	if len(pairs) > 0 {
		out["wiring"] = h.Wirer.Wire(pairs, false)
	}
	return out, nil
}

type assembleParams struct {
	Name        string   `json:"name,omitempty"`
	Structure   []string `json:"structure,omitempty"`
	Systems     []string `json:"systems,omitempty"`
	PlayerType  string   `json:"playerType,omitempty"`
	CreateModel bool     `json:"createModel,omitempty"`
	UIStyle     string   `json:"uiStyle,omitempty"`
}

// handleAssemblePrototype runs the whole pipeline: structure, manager
// systems, player, UI. Stages are best effort; a failed stage is reported in
// place and the rest still run.
func handleAssemblePrototype(ctx context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[assembleParams](params)
	if err != nil {
		return nil, err
	}
	name := p.Name
	if name == "" {
		name = "Prototype"
	}

	stages := make(map[string]any, 4)
	record := func(stage string, out map[string]any, err error) {
		if err != nil {
			stages[stage] = map[string]any{"error": err.Error()}
			return
		}
		stages[stage] = out
	}

	out, err := doSetupStructure(h, p.Structure)
	record("structure", out, err)

	systems := make([]map[string]any, 0, len(p.Systems))
	for _, id := range p.Systems {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		sysOut, serr := doImportSystem(ctx, h, id, "", "")
		if serr != nil {
			systems = append(systems, map[string]any{"system": id, "error": serr.Error()})
			continue
		}
		systems = append(systems, sysOut)
	}
	stages["systems"] = systems

	out, err = doSetupPlayer(ctx, h, setupPlayerParams{
		PlayerType:  p.PlayerType,
		Systems:     p.Systems,
		CreateModel: p.CreateModel,
	})
	record("player", out, err)

	out, err = doSetupUI(ctx, h, setupUIParams{Systems: p.Systems, UIStyle: p.UIStyle})
	record("ui", out, err)

	return map[string]any{"prototype": name, "stages": stages}, nil
}

func ensureComponent(h *Host, e *scene.Entity, typeName string) (scene.Component, error) {
	if c, ok := e.Component(typeName); ok {
		return c, nil
	}
	c, err := h.Registry.New(typeName)
	if err != nil {
		return nil, err
	}
	if err := h.Scene.Attach(e, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureChild finds a direct child by name or creates it with a Transform.
func ensureChild(h *Host, parent *scene.Entity, name string) (*scene.Entity, error) {
	for _, child := range parent.Children() {
		if child.Name() == name {
			return child, nil
		}
	}
	return newEntity(h, name, parent)
}
