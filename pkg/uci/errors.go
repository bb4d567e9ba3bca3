package uci

import "errors"

// Common errors for engine process management.
var (
	// ErrProcessUnavailable is returned when writing to an engine whose
	// subprocess has exited or whose stdin is closed.
	ErrProcessUnavailable = errors.New("engine process unavailable")
	// ErrNoUsableEngines is returned by Set.ReplaceAll when none of the
	// requested engines could be spawned. The previous roster stays active.
	ErrNoUsableEngines = errors.New("no usable engines")
)
