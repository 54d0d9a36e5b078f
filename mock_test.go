package mixer

// memTrack is a minimal in-memory Track for tests, mirroring how the
// track package places samples on the timeline.
type memTrack struct {
	samples []float64
	rate    float64
	offset  float64
	gain    float64
	pan     float64
	channel TrackChannel
	env     Envelope
	readErr error
}

func newMemTrack(samples []float64, rate float64) *memTrack {
	return &memTrack{samples: samples, rate: rate, gain: 1.0}
}

func (m *memTrack) Rate() float64         { return m.rate }
func (m *memTrack) Channel() TrackChannel { return m.channel }
func (m *memTrack) StartTime() float64    { return m.offset }
func (m *memTrack) Gain() float64         { return m.gain }
func (m *memTrack) Pan() float64          { return m.pan }

func (m *memTrack) EndTime() float64 {
	return m.offset + float64(len(m.samples))/m.rate
}

func (m *memTrack) Floats(dst []float64, start int64) error {
	if m.readErr != nil {
		return m.readErr
	}
	first := timeToSamples(m.offset, m.rate)
	for i := range dst {
		j := start + int64(i) - first
		if j < 0 || j >= int64(len(m.samples)) {
			dst[i] = 0
			continue
		}
		dst[i] = m.samples[j]
	}
	return nil
}

func (m *memTrack) EnvelopeValues(dst []float64, t0, tstep float64) {
	if m.env == nil {
		for i := range dst {
			dst[i] = 1.0
		}
		return
	}
	m.env.Values(dst, t0, tstep)
}

// rampTrack returns a track whose sample at index i is float64(i),
// convenient for asserting exact positions.
func rampTrack(n int, rate float64) *memTrack {
	s := make([]float64, n)
	for i := range s {
		s[i] = float64(i)
	}
	return newMemTrack(s, rate)
}
