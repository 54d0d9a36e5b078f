package mixer

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-mixer/internal/queue"
)

// Config describes one mix session.
type Config struct {
	// Tracks are the input tracks, referenced not owned. They must stay
	// valid and unmodified for the mixer's lifetime.
	Tracks []Track

	// StartTime and StopTime bound the selected time range in seconds.
	// StopTime < StartTime plays the range backwards.
	StartTime float64
	StopTime  float64

	// Warp selects the time-warp strategy. Zero value means no warp.
	Warp WarpOptions

	// NumChannels is the output channel count.
	NumChannels int

	// BufferSize is the output buffer capacity in frames, reused across
	// Process calls. Zero selects a default.
	BufferSize int

	// Interleaved selects one interleaved output buffer instead of one
	// buffer per channel.
	Interleaved bool

	// Rate is the output sample rate in Hz.
	Rate float64

	// Format is the output sample representation.
	Format SampleFormat

	// HighQuality selects Quality.Best instead of Quality.Fast for rate
	// conversion, as used when rendering rather than playing.
	HighQuality bool

	// Quality pairs the two conversion grades. Zero value means
	// DefaultQualityConfig.
	Quality QualityConfig

	// Spec optionally overrides the default pan/down-mix with an explicit
	// routing matrix. It must match the track and channel counts and is
	// read-only during the session.
	Spec *MixerSpec

	// StrictReads makes Process return track read failures instead of
	// substituting silence. A construction-time policy, not per call.
	StrictReads bool
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Tracks) == 0 {
		return fmt.Errorf("%w: no input tracks", ErrInvalidConfig)
	}
	for i, t := range c.Tracks {
		if t == nil {
			return fmt.Errorf("%w: track %d is nil", ErrInvalidConfig, i)
		}
		if t.Rate() <= 0 {
			return fmt.Errorf("%w: track %d has rate %g", ErrInvalidConfig, i, t.Rate())
		}
	}
	if c.Rate <= 0 {
		return fmt.Errorf("%w: output rate %g", ErrInvalidConfig, c.Rate)
	}
	if c.NumChannels < 1 || c.NumChannels > maxOutChannels {
		return fmt.Errorf("%w: %d output channels (1 to %d)",
			ErrInvalidConfig, c.NumChannels, maxOutChannels)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: negative buffer size", ErrInvalidConfig)
	}
	if c.Format != FormatInt16 && c.Format != FormatInt24 && c.Format != FormatFloat32 {
		return fmt.Errorf("%w: unknown sample format %d", ErrInvalidConfig, int(c.Format))
	}
	if c.Spec != nil {
		if c.Spec.NumTracks() != len(c.Tracks) {
			return fmt.Errorf("%w: routing spec covers %d tracks, have %d",
				ErrInvalidConfig, c.Spec.NumTracks(), len(c.Tracks))
		}
		if c.Spec.NumChannels() != c.NumChannels {
			return fmt.Errorf("%w: routing spec has %d channels, output has %d",
				ErrInvalidConfig, c.Spec.NumChannels(), c.NumChannels)
		}
	}
	return nil
}

// Mixer pulls samples from its input tracks, applies envelope, gain and
// routing, and produces blocks of output frames at a fixed rate and format.
// It is single threaded: Process blocks until frames are produced or the
// range is exhausted, and no method may be called concurrently.
type Mixer struct {
	tracks     []Track
	cursors    []*sampleCursor
	samplePos  []int64
	queues     []*queue.Queue
	converters []*RateConverter

	variableRates bool
	warp          WarpOptions
	applyGains    bool
	strict        bool
	spec          *MixerSpec

	t0    float64
	t1    float64
	time  float64
	speed float64

	rate        float64
	numChannels int
	format      SampleFormat
	interleaved bool
	numBuffers  int
	bufferSize  int

	// Reused working storage.
	temp        [][]float64 // wide-precision accumulation, per buffer
	buffer      [][]byte    // converted output, per buffer
	floatBuffer []float64   // one track's contribution for the call
	envValues   []float64
	gains       []float64
	flags       []bool

	maxOut  int // frame budget of the call in progress
	lastOut int // frames produced by the last Process call
}

// New creates a mixer for one session over the configured tracks.
// Converter construction failures are reported here, before any Process.
func New(cfg *Config) (*Mixer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bufSize := cfg.BufferSize
	if bufSize == 0 {
		bufSize = defaultBufferSize
	}

	qc := cfg.Quality
	if qc == (QualityConfig{}) {
		qc = DefaultQualityConfig()
	}
	quality := qc.Fast
	if cfg.HighQuality {
		quality = qc.Best
	}

	n := len(cfg.Tracks)
	m := &Mixer{
		tracks:        cfg.Tracks,
		cursors:       make([]*sampleCursor, n),
		samplePos:     make([]int64, n),
		queues:        make([]*queue.Queue, n),
		converters:    make([]*RateConverter, n),
		variableRates: cfg.Warp.active(),
		warp:          cfg.Warp,
		applyGains:    true,
		strict:        cfg.StrictReads,
		spec:          cfg.Spec,
		t0:            cfg.StartTime,
		t1:            cfg.StopTime,
		time:          cfg.StartTime,
		speed:         1.0,
		rate:          cfg.Rate,
		numChannels:   cfg.NumChannels,
		format:        cfg.Format,
		interleaved:   cfg.Interleaved,
		bufferSize:    bufSize,
	}

	warpLo, warpHi := cfg.Warp.speedBounds()
	for i, t := range cfg.Tracks {
		m.samplePos[i] = timeToSamples(cfg.StartTime, t.Rate())
		m.cursors[i] = newSampleCursor(t, cfg.StrictReads)

		if m.variableRates || t.Rate() != m.rate {
			factor := m.rate / t.Rate()
			conv, err := NewRateConverter(quality, factor/warpHi, factor/warpLo)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			m.converters[i] = conv
			m.queues[i] = queue.New(queueMaxLen)
		}
	}

	m.numBuffers = m.numChannels
	frames := bufSize
	if m.interleaved {
		m.numBuffers = 1
		frames = bufSize * m.numChannels
	}
	m.temp = make([][]float64, m.numBuffers)
	m.buffer = make([][]byte, m.numBuffers)
	for b := range m.temp {
		m.temp[b] = make([]float64, frames)
		m.buffer[b] = make([]byte, frames*m.format.BytesPerSample())
	}

	envLen := queueMaxLen
	if bufSize > envLen {
		envLen = bufSize
	}
	m.floatBuffer = make([]float64, bufSize)
	m.envValues = make([]float64, envLen)
	m.gains = make([]float64, m.numChannels)
	m.flags = make([]bool, m.numChannels)

	return m, nil
}

// ApplyTrackGains controls whether per-track gain and pan are applied
// during mixing. True by default; disabled for raw export and metering.
func (m *Mixer) ApplyTrackGains(apply bool) {
	m.applyGains = apply
}

// Process produces at most maxFrames output frames into the internal
// buffer, which can be retrieved with Buffer or ChannelBuffer. It returns
// the number of frames produced; 0 with a nil error means the selected
// time range is exhausted. A non-nil error (strict reads only) invalidates
// the buffer contents.
func (m *Mixer) Process(maxFrames int) (int, error) {
	if maxFrames < 0 {
		return 0, fmt.Errorf("%w: negative frame request", ErrInvalidConfig)
	}
	if maxFrames > m.bufferSize {
		maxFrames = m.bufferSize
	}
	m.maxOut = maxFrames
	m.lastOut = 0
	m.clear()

	maxOut := 0
	for i, track := range m.tracks {
		channelFlags(m.spec, i, track, m.flags)

		var (
			out int
			err error
		)
		if m.converters[i] != nil {
			out, err = m.mixVariableRates(i, m.flags)
		} else {
			out, err = m.mixSameRate(i, m.flags)
		}
		if err != nil {
			return 0, err
		}
		if out > maxOut {
			maxOut = out
		}

		// Track the current time from integer sample positions, clamped
		// into the selection; accumulating floats would drift over long
		// mixes.
		t := float64(m.samplePos[i]) / track.Rate()
		if m.t0 > m.t1 {
			m.time = math.Max(math.Min(t, m.time), m.t1)
		} else {
			m.time = math.Min(math.Max(t, m.time), m.t1)
		}
	}

	if m.interleaved {
		encodeSamples(m.format, m.temp[0][:maxOut*m.numChannels], m.buffer[0])
	} else {
		for c := 0; c < m.numBuffers; c++ {
			encodeSamples(m.format, m.temp[c][:maxOut], m.buffer[c])
		}
	}

	m.lastOut = maxOut
	return maxOut, nil
}

// mixSameRate mixes a track whose native rate equals the output rate and
// no warp is active: samples flow straight from the cursor into the
// accumulators.
func (m *Mixer) mixSameRate(i int, flags []bool) (int, error) {
	track := m.tracks[i]
	rate := track.Rate()
	pos := m.samplePos[i]
	t := float64(pos) / rate

	backwards := m.t1 < m.t0
	var tEnd float64
	if backwards {
		tEnd = math.Max(track.StartTime(), m.t1)
	} else {
		tEnd = math.Min(track.EndTime(), m.t1)
	}

	if backwards {
		if t <= tEnd {
			return 0, nil
		}
	} else if t >= tEnd {
		return 0, nil
	}

	remaining := tEnd - t
	if backwards {
		remaining = t - tEnd
	}
	slen := int64(remaining*rate + 0.5)
	if slen > int64(m.maxOut) {
		slen = int64(m.maxOut)
	}
	if slen <= 0 {
		return 0, nil
	}

	// Backwards fetches the slen samples preceding pos; forwards the slen
	// samples from pos on. Envelope times ascend over the fetched window
	// in both cases.
	buf := m.floatBuffer[:slen]
	readStart := pos
	envT0 := t
	if backwards {
		readStart = pos - slen
		envT0 = float64(readStart) / rate
	}
	if err := m.cursors[i].Fill(buf, readStart); err != nil {
		return 0, err
	}

	track.EnvelopeValues(m.envValues[:slen], envT0, 1/rate)
	for j := range buf {
		buf[j] *= m.envValues[j]
	}
	if backwards {
		reverse(buf)
		pos -= slen
	} else {
		pos += slen
	}
	m.samplePos[i] = pos

	computeGains(track, m.gains, m.applyGains)
	m.mixBuffers(flags, buf)
	return int(slen), nil
}

// mixVariableRates mixes a track through its rate converter, keeping a
// queue of decoded native-rate samples ahead of the converter so variable
// ratios never under-run. Envelope values are applied as samples enter the
// queue, at native track time.
func (m *Mixer) mixVariableRates(i int, flags []bool) (int, error) {
	track := m.tracks[i]
	q := m.queues[i]
	conv := m.converters[i]
	trackRate := track.Rate()
	initialWarp := m.rate / m.speed / trackRate
	tstep := 1.0 / trackRate

	backwards := m.t1 < m.t0
	var tEnd float64
	if backwards {
		tEnd = math.Max(track.StartTime(), m.t1)
	} else {
		tEnd = math.Min(track.EndTime(), m.t1)
	}
	endPos := timeToSamples(tEnd, trackRate)
	pos := m.samplePos[i]

	// Unwarped time of the queue head, for the warp curve.
	t := (float64(pos) - float64(q.Len())) / trackRate
	if backwards {
		t = (float64(pos) + float64(q.Len())) / trackRate
	}

	out := 0
	for out < m.maxOut {
		if q.Len() < processLen {
			avail := endPos - pos
			if backwards {
				avail = pos - endPos
			}
			getLen := int64(q.Free())
			if getLen > avail {
				getLen = avail
			}
			if getLen > 0 {
				slot := q.Slot(int(getLen))
				readStart := pos
				if backwards {
					readStart = pos - getLen
				}
				if err := m.cursors[i].Fill(slot, readStart); err != nil {
					return 0, err
				}
				track.EnvelopeValues(m.envValues[:getLen], float64(readStart)/trackRate, tstep)
				for j := range slot {
					slot[j] *= m.envValues[j]
				}
				if backwards {
					reverse(slot)
					pos -= getLen
				} else {
					pos += getLen
				}
				q.Commit(int(getLen))
			}
		}

		thisProcessLen := processLen
		last := q.Len() < processLen
		if last {
			thisProcessLen = q.Len()
		}

		factor := initialWarp
		if m.warp.kind == warpCurve {
			if backwards {
				factor *= m.warp.factor(t-float64(thisProcessLen)/trackRate+tstep, t+tstep)
			} else {
				factor *= m.warp.factor(t, t+float64(thisProcessLen)/trackRate)
			}
		}

		used, produced := conv.Process(factor, q.Pending()[:thisProcessLen], last,
			m.floatBuffer[out:m.maxOut])
		q.Discard(used)
		if backwards {
			t -= float64(used) * tstep
		} else {
			t += float64(used) * tstep
		}
		out += produced

		if last {
			break
		}
	}
	m.samplePos[i] = pos

	computeGains(track, m.gains, m.applyGains)
	m.mixBuffers(flags, m.floatBuffer[:out])
	return out, nil
}

// mixBuffers sums one track's produced samples into the accumulation
// buffers of every routed channel, scaled by the channel gain.
func (m *Mixer) mixBuffers(flags []bool, src []float64) {
	for c := 0; c < m.numChannels; c++ {
		if !flags[c] {
			continue
		}
		gain := m.gains[c]
		if m.interleaved {
			dst := m.temp[0]
			for j, v := range src {
				dst[j*m.numChannels+c] += v * gain
			}
		} else {
			dst := m.temp[c]
			for j, v := range src {
				dst[j] += v * gain
			}
		}
	}
}

func (m *Mixer) clear() {
	for b := range m.temp {
		buf := m.temp[b]
		for j := range buf {
			buf[j] = 0
		}
	}
}

// Buffer returns the output of the most recent Process call: the
// interleaved buffer, or channel 0 for planar output. The slice aliases
// internal storage and is invalidated by the next Process call.
func (m *Mixer) Buffer() []byte {
	n := m.lastOut
	if m.interleaved {
		n *= m.numChannels
	}
	return m.buffer[0][:n*m.format.BytesPerSample()]
}

// ChannelBuffer returns one channel of planar output from the most recent
// Process call, or nil for interleaved mixers and out-of-range channels.
func (m *Mixer) ChannelBuffer(c int) []byte {
	if m.interleaved || c < 0 || c >= m.numBuffers {
		return nil
	}
	return m.buffer[c][:m.lastOut*m.format.BytesPerSample()]
}

// NumChannels returns the output channel count.
func (m *Mixer) NumChannels() int { return m.numChannels }

// Rate returns the output sample rate in Hz.
func (m *Mixer) Rate() float64 { return m.rate }

// Format returns the output sample format.
func (m *Mixer) Format() SampleFormat { return m.format }

// Interleaved reports whether output frames are interleaved in one buffer.
func (m *Mixer) Interleaved() bool { return m.interleaved }

// BufferSize returns the per-call frame capacity.
func (m *Mixer) BufferSize() int { return m.bufferSize }

// CurrentTime returns the current unwarped position within the selection.
// The value is approximate: useful for progress reporting, nothing else.
func (m *Mixer) CurrentTime() float64 {
	return m.time
}

// Restart rewinds processing to the start of the selection. Resampling
// queues and converter state are discarded: their contents encode the old
// position and direction and are invalid after the jump.
func (m *Mixer) Restart() {
	m.time = m.t0
	for i, t := range m.tracks {
		m.samplePos[i] = timeToSamples(m.t0, t.Rate())
	}
	m.clearQueues()
	m.resetConverters()
}

// Reposition moves processing to absolute time t within the selection.
// Pending queue contents are dropped; converter state is additionally
// reset when skipping is true (scrub and seek), and must only be kept when
// the new position continues the current stream.
func (m *Mixer) Reposition(t float64, skipping bool) {
	m.time = t
	if m.t1 < m.t0 {
		m.time = math.Max(m.t1, math.Min(m.t0, m.time))
	} else {
		m.time = math.Max(m.t0, math.Min(m.t1, m.time))
	}

	for i, track := range m.tracks {
		m.samplePos[i] = timeToSamples(m.time, track.Rate())
	}
	m.clearQueues()
	if skipping {
		m.resetConverters()
	}
}

// SetTimesAndSpeed changes the active sub-range and speed multiplier
// without a full restart, as scrubbing does many times per second.
func (m *Mixer) SetTimesAndSpeed(t0, t1, speed float64) {
	m.t0 = t0
	m.t1 = t1
	m.speed = math.Abs(speed)
	m.Reposition(t0, false)
}

func (m *Mixer) clearQueues() {
	for _, q := range m.queues {
		if q != nil {
			q.Clear()
		}
	}
}

func (m *Mixer) resetConverters() {
	for _, c := range m.converters {
		if c != nil {
			c.Reset()
		}
	}
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
