package render_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	mixer "github.com/tphakala/go-audio-mixer"
	"github.com/tphakala/go-audio-mixer/render"
	"github.com/tphakala/go-audio-mixer/track"
)

const testRate = 44100.0

// memSink collects rendered frames in memory.
type memSink struct {
	started  bool
	closed   bool
	channels int
	rate     float64
	format   mixer.SampleFormat
	frames   int64
	writeErr error
}

func (s *memSink) Start(numChannels int, rate float64, format mixer.SampleFormat) error {
	s.started = true
	s.channels = numChannels
	s.rate = rate
	s.format = format
	return nil
}

func (s *memSink) Write(buf []byte, frames int) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.frames += int64(frames)
	return nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

func sineClip(n int, freq float64) *track.Clip {
	s := make([]float64, n)
	w := 2 * math.Pi * freq / testRate
	for i := range s {
		s[i] = 0.5 * math.Sin(w*float64(i))
	}
	return track.NewClip(s, testRate)
}

func newTestMixer(t *testing.T) *mixer.Mixer {
	t.Helper()
	m, err := mixer.New(&mixer.Config{
		Tracks:      []mixer.Track{sineClip(int(testRate), 440)},
		StopTime:    1,
		NumChannels: 2,
		Interleaved: true,
		Rate:        testRate,
		Format:      mixer.FormatInt16,
		BufferSize:  4096,
	})
	require.NoError(t, err)
	return m
}

func TestSession_Run(t *testing.T) {
	sink := &memSink{}
	s, err := render.NewSession(newTestMixer(t), sink)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID())

	frames, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(testRate), frames)
	assert.Equal(t, frames, sink.frames)
	assert.Equal(t, 2, sink.channels)
	assert.True(t, sink.closed)
}

func TestSession_RequiresInterleaved(t *testing.T) {
	m, err := mixer.New(&mixer.Config{
		Tracks:      []mixer.Track{sineClip(100, 440)},
		StopTime:    100 / testRate,
		NumChannels: 2,
		Rate:        testRate,
		Format:      mixer.FormatInt16,
	})
	require.NoError(t, err)

	_, err = render.NewSession(m, &memSink{})
	assert.Error(t, err)
}

func TestSession_SinkErrorClosesSink(t *testing.T) {
	sink := &memSink{writeErr: errors.New("disk full")}
	s, err := render.NewSession(newTestMixer(t), sink)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, sink.closed, "sink must be closed on failure")
}

func TestSession_Background(t *testing.T) {
	defer goleak.VerifyNoLeaks(t)

	sink := &memSink{}
	s, err := render.NewSession(newTestMixer(t), sink)
	require.NoError(t, err)

	res := <-s.Background(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, int64(testRate), res.Frames)
}

func TestSession_Cancel(t *testing.T) {
	defer goleak.VerifyNoLeaks(t)

	sink := &memSink{}
	s, err := render.NewSession(newTestMixer(t), sink)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := <-s.Background(ctx)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.True(t, sink.closed)
}

func TestWAVSink_WritesPlayableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := render.NewSession(newTestMixer(t), render.NewWAVSink(path))
	require.NoError(t, err)

	frames, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(testRate), frames)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, int(testRate), buf.Format.SampleRate)
	assert.Equal(t, int(testRate)*2, len(buf.Data), "frames times channels")

	// The sine must be present, not silence.
	peak := 0
	for _, v := range buf.Data {
		if v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, 10000, "expected roughly half-scale audio")
}
