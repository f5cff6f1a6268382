package fields

import "errors"

var (
	ErrTypeRegistered = errors.New("component type already registered")
	ErrTypeUnknown    = errors.New("unknown component type")
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberReadOnly = errors.New("member is read-only")
	ErrConversion     = errors.New("cannot convert value")
)
