package bridge

import "errors"

// RegisterBuiltins fills r with the standard command set. The list is the
// public surface ListCommands reports.
func RegisterBuiltins(r *Registry) error {
	commands := []Command{
		{Name: "Ping", Summary: "Liveness probe, answers pong.", Handler: handlePing},
		{Name: "Status", Summary: "Bridge and scene statistics.", Handler: handleStatus},
		{Name: "ListCommands", Summary: "Every registered command with its summary.", Handler: handleListCommands},

		{Name: "CreateEntity", Summary: "Create an entity, optionally under a parent.", Handler: handleCreateEntity},
		{Name: "DestroyEntity", Summary: "Destroy an entity and its subtree.", Handler: handleDestroyEntity},
		{Name: "FindEntity", Summary: "Find one entity by name, path or id.", Handler: handleFindEntity},
		{Name: "ListEntities", Summary: "List entities, filterable by name, subtree and active state.", Handler: handleListEntities},
		{Name: "SetEntityActive", Summary: "Activate or deactivate an entity.", Handler: handleSetEntityActive},

		{Name: "AddComponent", Summary: "Attach a component of a registered type.", Handler: handleAddComponent},
		{Name: "RemoveComponent", Summary: "Detach a component by type.", Handler: handleRemoveComponent},
		{Name: "ListComponents", Summary: "Components attached to an entity.", Handler: handleListComponents},
		{Name: "ListComponentTypes", Summary: "Registered component types and their members.", Handler: handleListComponentTypes},

		{Name: "GetComponentProperty", Summary: "Read a component member.", Handler: handleGetComponentProperty},
		{Name: "SetComponentProperty", Summary: "Write a component member, resolving references.", Handler: handleSetComponentProperty},

		{Name: "LinkComponents", Summary: "Autowire source components to target members.", Handler: handleLinkComponents},

		{Name: "SearchAssets", Summary: "Search the vault index by name and type.", Handler: handleSearchAssets},
		{Name: "InstantiateAsset", Summary: "Instantiate a vault definition into the scene.", Handler: handleInstantiateAsset},
		{Name: "RefreshAssetIndex", Summary: "Rescan the vault and rebuild the index.", Handler: handleRefreshAssetIndex},

		{Name: "SaveScene", Summary: "Snapshot the scene into a vault definition.", Handler: handleSaveScene},
		{Name: "ClearScene", Summary: "Destroy every entity in the scene.", Handler: handleClearScene},

		{Name: "SetupSceneStructure", Summary: "Create the standard marker containers.", Handler: handleSetupSceneStructure},
		{Name: "ImportVaultSystem", Summary: "Import a system from the vault or builtins.", Handler: handleImportVaultSystem},
		{Name: "SetupPlayer", Summary: "Assemble the player entity with systems and wiring.", Handler: handleSetupPlayer},
		{Name: "SetupGameUI", Summary: "Assemble the UI canvas for the given systems.", Handler: handleSetupGameUI},
		{Name: "AssemblePrototype", Summary: "Run structure, systems, player and UI in one pass.", Handler: handleAssemblePrototype},

		{Name: "Batch", Summary: "Run several commands in one round trip.", Handler: handleBatch},
	}
	var errs error
	for _, cmd := range commands {
		if err := r.Register(cmd); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
