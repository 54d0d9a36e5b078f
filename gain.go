package mixer

import (
	"math"
)

// PanGains returns the left and right channel gains for a pan position in
// [-1, 1] under a constant-power law normalized to unity at center: a
// centered track passes both channels at 1.0, a hard pan gives 1.0 on one
// side and 0.0 on the other, and intermediate positions attenuate only the
// far channel.
func PanGains(pan float64) (left, right float64) {
	if pan < -1 {
		pan = -1
	} else if pan > 1 {
		pan = 1
	}
	if pan == 0 {
		// Exactly transparent at center; the trig form lands one ulp off.
		return 1, 1
	}
	theta := (pan + 1) * math.Pi / 4
	left = math.Min(1, math.Sqrt2*math.Cos(theta))
	right = math.Min(1, math.Sqrt2*math.Sin(theta))
	return left, right
}

// channelGain returns the gain a track contributes to output channel c
// under the default policy: pan law on even/odd channels, multiplied by the
// track gain scalar.
func channelGain(t Track, c int) float64 {
	left, right := PanGains(t.Pan())
	if c%2 == 0 {
		return left * t.Gain()
	}
	return right * t.Gain()
}

// computeGains fills dst with the per-channel gain vector for a track.
// When apply is false the per-track gain and pan are bypassed entirely and
// every channel gets unity (raw export and metering path).
func computeGains(t Track, dst []float64, apply bool) {
	for c := range dst {
		if apply {
			dst[c] = channelGain(t, c)
		} else {
			dst[c] = 1.0
		}
	}
}

// channelFlags fills dst with whether the track feeds each output channel,
// from the routing spec when present and the track's channel designation
// otherwise.
func channelFlags(spec *MixerSpec, trackIndex int, t Track, dst []bool) {
	if spec != nil {
		for c := range dst {
			dst[c] = spec.Routed(trackIndex, c)
		}
		return
	}
	for c := range dst {
		dst[c] = false
	}
	switch t.Channel() {
	case ChannelLeft:
		dst[0] = true
	case ChannelRight:
		if len(dst) >= stereoChannels {
			dst[1] = true
		} else {
			dst[0] = true
		}
	default: // mono feeds everything
		for c := range dst {
			dst[c] = true
		}
	}
}
