package assets

import "errors"

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrOutsideVault  = errors.New("path escapes the vault root")
	ErrBadDefinition = errors.New("invalid asset definition")
	ErrIndexClosed   = errors.New("asset index is closed")
)
