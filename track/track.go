// Package track provides audio track implementations for the mixer: an
// in-memory clip type plus loaders that decode WAV, MP3 and Ogg Vorbis
// files into clips.
package track

import (
	"fmt"
	"math"

	mixer "github.com/tphakala/go-audio-mixer"
	"github.com/tphakala/go-audio-mixer/envelope"
)

// Clip is an in-memory mono sample sequence placed on the timeline. It
// implements mixer.Track. Samples are float64 in [-1, 1]; the clip starts
// at Offset seconds and silence surrounds it.
type Clip struct {
	samples []float64
	rate    float64
	offset  float64

	name    string
	channel mixer.TrackChannel
	gain    float64
	pan     float64
	env     *envelope.Envelope
}

// NewClip wraps samples at the given rate. The clip references the slice,
// it does not copy.
func NewClip(samples []float64, rate float64) *Clip {
	return &Clip{
		samples: samples,
		rate:    rate,
		channel: mixer.ChannelMono,
		gain:    1.0,
	}
}

// SetName sets a display name, used by loaders and logging.
func (c *Clip) SetName(name string) { c.name = name }

// Name returns the display name, possibly empty.
func (c *Clip) Name() string { return c.name }

// SetOffset places the clip start at t seconds on the timeline.
func (c *Clip) SetOffset(t float64) { c.offset = t }

// SetChannel declares which output the clip belongs to under default
// routing.
func (c *Clip) SetChannel(ch mixer.TrackChannel) { c.channel = ch }

// SetGain sets the track gain, a linear factor.
func (c *Clip) SetGain(gain float64) { c.gain = gain }

// SetPan sets the stereo position in [-1, 1].
func (c *Clip) SetPan(pan float64) {
	c.pan = math.Max(-1, math.Min(1, pan))
}

// SetEnvelope attaches a volume envelope, or nil for none.
func (c *Clip) SetEnvelope(e *envelope.Envelope) { c.env = e }

// Envelope returns the attached volume envelope, or nil.
func (c *Clip) Envelope() *envelope.Envelope { return c.env }

// Len returns the clip length in samples.
func (c *Clip) Len() int { return len(c.samples) }

// Rate returns the native sample rate in Hz.
func (c *Clip) Rate() float64 { return c.rate }

// Channel returns the clip's channel designation.
func (c *Clip) Channel() mixer.TrackChannel { return c.channel }

// StartTime returns the timeline position of the first sample.
func (c *Clip) StartTime() float64 { return c.offset }

// EndTime returns the timeline position just past the last sample.
func (c *Clip) EndTime() float64 {
	return c.offset + float64(len(c.samples))/c.rate
}

// Gain returns the track gain.
func (c *Clip) Gain() float64 { return c.gain }

// Pan returns the stereo position.
func (c *Clip) Pan() float64 { return c.pan }

// Floats copies len(dst) samples starting at absolute timeline sample
// start into dst, substituting silence outside the clip.
func (c *Clip) Floats(dst []float64, start int64) error {
	first := int64(math.Floor(c.offset*c.rate + 0.5))
	for i := range dst {
		j := start + int64(i) - first
		if j < 0 || j >= int64(len(c.samples)) {
			dst[i] = 0
			continue
		}
		dst[i] = c.samples[j]
	}
	return nil
}

// EnvelopeValues fills dst with the volume envelope sampled from t0 at
// tstep intervals, or unity when no envelope is attached.
func (c *Clip) EnvelopeValues(dst []float64, t0, tstep float64) {
	if c.env == nil {
		for i := range dst {
			dst[i] = 1.0
		}
		return
	}
	c.env.Values(dst, t0, tstep)
}

// splitChannels turns interleaved samples into per-channel clips with
// left/right designations for stereo, mono otherwise. Extra channels
// beyond two are kept as mono clips.
func splitChannels(data []float64, numChannels int, rate float64, name string) ([]*Clip, error) {
	if numChannels < 1 {
		return nil, fmt.Errorf("%s: no channels", name)
	}
	frames := len(data) / numChannels
	clips := make([]*Clip, numChannels)
	for ch := 0; ch < numChannels; ch++ {
		samples := make([]float64, frames)
		for j := 0; j < frames; j++ {
			samples[j] = data[j*numChannels+ch]
		}
		c := NewClip(samples, rate)
		c.SetName(name)
		if numChannels == 2 {
			if ch == 0 {
				c.SetChannel(mixer.ChannelLeft)
			} else {
				c.SetChannel(mixer.ChannelRight)
			}
		}
		clips[ch] = c
	}
	return clips, nil
}
