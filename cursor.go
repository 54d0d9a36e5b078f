package mixer

import (
	"fmt"
	"math"
)

// sampleCursor presents one track as a sequence of native-rate samples
// readable from an arbitrary position, caching a forward-advancing window
// so that sequential mixing does not re-seek track storage on every pull.
// Positions outside the track's valid range read as silence.
type sampleCursor struct {
	track  Track
	strict bool

	startSample int64 // first valid sample, inclusive
	endSample   int64 // last valid sample, exclusive

	window   []float64
	winStart int64
	winLen   int
}

func newSampleCursor(t Track, strict bool) *sampleCursor {
	rate := t.Rate()
	return &sampleCursor{
		track:       t,
		strict:      strict,
		startSample: timeToSamples(t.StartTime(), rate),
		endSample:   timeToSamples(t.EndTime(), rate),
		window:      make([]float64, cursorWindowLen),
		winStart:    math.MinInt64,
	}
}

// timeToSamples converts seconds to an absolute sample index the way track
// storage does, so cursor bounds agree with clip bounds.
func timeToSamples(t, rate float64) int64 {
	return int64(math.Floor(t*rate + 0.5))
}

// Fill copies len(dst) samples starting at absolute position pos into dst.
// Portions outside the track's valid range are zero-filled. A read failure
// zero-fills too unless the cursor is strict, in which case it is returned.
func (c *sampleCursor) Fill(dst []float64, pos int64) error {
	for i := range dst {
		dst[i] = 0
	}

	// Clip the request to the valid range.
	lo := pos
	hi := pos + int64(len(dst))
	if lo < c.startSample {
		lo = c.startSample
	}
	if hi > c.endSample {
		hi = c.endSample
	}

	for lo < hi {
		if lo < c.winStart || lo >= c.winStart+int64(c.winLen) {
			if err := c.load(lo); err != nil {
				if c.strict {
					return err
				}
				return nil
			}
		}
		off := int(lo - c.winStart)
		n := copy(dst[lo-pos:hi-pos], c.window[off:c.winLen])
		lo += int64(n)
	}
	return nil
}

// load refills the cache window starting at pos.
func (c *sampleCursor) load(pos int64) error {
	n := len(c.window)
	if int64(n) > c.endSample-pos {
		n = int(c.endSample - pos)
	}
	if err := c.track.Floats(c.window[:n], pos); err != nil {
		c.winStart = math.MinInt64
		c.winLen = 0
		return fmt.Errorf("%w: at sample %d: %v", ErrTrackRead, pos, err)
	}
	c.winStart = pos
	c.winLen = n
	return nil
}
