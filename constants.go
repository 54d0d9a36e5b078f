package mixer

// Buffer sizing constants.
const (
	// queueMaxLen is the per-track capacity, in samples, of the queue of
	// decoded but not yet consumed input feeding a rate converter. Sized
	// generously so variable-rate conversion never under-runs at the
	// largest supported speed ratio.
	queueMaxLen = 65536

	// processLen is the chunk size, in samples, drained from a resampling
	// queue per converter call.
	processLen = 1024

	// cursorWindowLen is the size, in samples, of a track cursor's cached
	// read window.
	cursorWindowLen = 16384

	// defaultBufferSize is the output buffer size, in frames, used when
	// Config.BufferSize is zero.
	defaultBufferSize = 8192
)

// Warp speed bounds. Speeds outside this range are clamped at
// construction, matching the limits of the playback UI this engine serves.
const (
	minWarpSpeed = 0.01
	maxWarpSpeed = 10.0
)

// Channel counts for common layouts.
const (
	monoChannels   = 1
	stereoChannels = 2
	maxOutChannels = 32
)
