package core

import "github.com/pkg/errors"

// errors
var (
	ErrNilCore         = errors.New("orgtree core is nil")
	ErrNilLogger       = errors.New("logger is nil")
	ErrManagerNotFound = errors.New("tree manager not found")
	ErrAlreadyClosed   = errors.New("core is already closed")
)
