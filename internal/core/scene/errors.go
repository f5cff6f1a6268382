package scene

import "errors"

var (
	ErrEntityNotFound    = errors.New("entity not found in scene")
	ErrComponentNotFound = errors.New("component not found on entity")
	ErrComponentAttached = errors.New("component already attached")
	ErrRootImmutable     = errors.New("scene root cannot be modified")
	ErrReparentCycle     = errors.New("reparent would create a cycle")
	ErrEmptyName         = errors.New("entity name is empty")
	ErrSceneMismatch     = errors.New("entity belongs to a different scene")
)
