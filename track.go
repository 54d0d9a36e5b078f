package mixer

// TrackChannel designates which output channel a track feeds when no
// explicit MixerSpec overrides the default down-mix. Stereo material is
// represented as a pair of Left/Right tracks.
type TrackChannel int

const (
	// ChannelMono tracks feed every output channel.
	ChannelMono TrackChannel = iota
	// ChannelLeft tracks feed output channel 0.
	ChannelLeft
	// ChannelRight tracks feed output channel 1 (or 0 on mono output).
	ChannelRight
)

// Track is the read-only view of one input channel of audio the mixer
// consumes. Implementations expose an ordered sequence of samples at a
// track-specific native rate with random access by absolute sample index.
// A track must not be mutated while a mix session references it.
type Track interface {
	// Rate returns the track's native sample rate in Hz.
	Rate() float64

	// Channel reports the track's default output channel designation.
	Channel() TrackChannel

	// StartTime and EndTime bound the track's valid range in seconds.
	// Requests outside the range yield silence.
	StartTime() float64
	EndTime() float64

	// Gain returns the track's amplitude scalar (1.0 is unity).
	Gain() float64

	// Pan returns the track's pan position in [-1, 1], 0 centered.
	Pan() float64

	// Floats copies len(dst) samples starting at absolute sample index
	// start into dst, zero-filling any portion outside the track's valid
	// range. It returns an error only when backing storage fails to
	// supply samples that should exist.
	Floats(dst []float64, start int64) error

	// EnvelopeValues fills dst with the track's amplitude envelope
	// sampled at t0, t0+tstep, ... Tracks without an envelope fill 1.0.
	EnvelopeValues(dst []float64, t0, tstep float64)
}

// Envelope samples a time-varying amplitude multiplier. Track
// implementations typically delegate EnvelopeValues to one.
type Envelope interface {
	// Value returns the amplitude multiplier at time t.
	Value(t float64) float64

	// Values fills dst with samples at t0, t0+tstep, ...
	Values(dst []float64, t0, tstep float64)
}
