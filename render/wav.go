package render

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	mixer "github.com/tphakala/go-audio-mixer"
)

const wavPCMFormat = 1

// WAVSink writes rendered audio to a PCM WAV file. The bit depth follows
// the mixer's sample format; float output is written as 32-bit PCM.
type WAVSink struct {
	path string

	file    *os.File
	enc     *wav.Encoder
	scale   float64
	samples []float64
	buf     *audio.IntBuffer
	format  mixer.SampleFormat
}

// NewWAVSink creates a sink writing to path. The file is created on
// Start, not here.
func NewWAVSink(path string) *WAVSink {
	return &WAVSink{path: path}
}

func wavBitDepth(f mixer.SampleFormat) int {
	switch f {
	case mixer.FormatInt16:
		return 16
	case mixer.FormatInt24:
		return 24
	default:
		return 32
	}
}

// Start creates the output file and WAV encoder.
func (s *WAVSink) Start(numChannels int, rate float64, format mixer.SampleFormat) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	bitDepth := wavBitDepth(format)
	s.file = f
	s.format = format
	s.scale = float64(uint64(1)<<(bitDepth-1)) - 1
	s.enc = wav.NewEncoder(f, int(rate), bitDepth, numChannels, wavPCMFormat)
	s.buf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  int(rate),
		},
		SourceBitDepth: bitDepth,
	}
	return nil
}

// Write converts one chunk of interleaved frames and appends it to the
// file.
func (s *WAVSink) Write(buf []byte, frames int) error {
	n := frames * s.buf.Format.NumChannels
	if cap(s.samples) < n {
		s.samples = make([]float64, n)
		s.buf.Data = make([]int, n)
	}
	s.samples = s.samples[:n]
	s.buf.Data = s.buf.Data[:n]

	mixer.DecodeSamples(s.format, buf, s.samples)
	for i, v := range s.samples {
		v = math.Max(-1, math.Min(1, v))
		s.buf.Data[i] = int(math.Round(v * s.scale))
	}
	return s.enc.Write(s.buf)
}

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	if s.enc == nil {
		if s.file != nil {
			return s.file.Close()
		}
		return nil
	}
	if err := s.enc.Close(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
