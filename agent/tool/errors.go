package tool

import "errors"

var (
	ErrNotFound       = errors.New("tool not found")
	ErrAlreadyExists  = errors.New("tool already registered")
	ErrEmptyName      = errors.New("tool name is empty")
	ErrNilHandler     = errors.New("tool handler is nil")
	ErrInvalidSchema  = errors.New("invalid tool input schema")
	ErrUnknownToolset = errors.New("unknown toolset")
)
