package mixer

import (
	"errors"
)

// Common errors returned by the mixer.
var (
	// ErrInvalidConfig indicates invalid mixer or converter configuration.
	ErrInvalidConfig = errors.New("invalid mixer configuration")

	// ErrTrackRead indicates a track's backing storage could not supply
	// requested samples. Returned from Process only when the mixer was
	// configured with StrictReads; otherwise the samples are replaced
	// with silence.
	ErrTrackRead = errors.New("track read failed")
)
