package app

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is the panic value of a second Start and of AddLayer
	// after Start.
	ErrAlreadyStarted = errors.New("application has already been started")
	// ErrNotStarted is the panic value of Window and Device before Start.
	ErrNotStarted = errors.New("application has not been started")

	ErrNoWindow      = errors.New("no window attached after app load")
	ErrNoDevice      = errors.New("no graphics device attached after app load")
	ErrSceneNotFound = errors.New("scene file not found")
)

// HookError is a failure returned by a layer hook. It stops the frame loop.
type HookError struct {
	Layer string
	Hook  Hook
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("layer %q %s: %v", e.Layer, e.Hook, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
