// Package portaudio plays rendered audio on the default output device.
// It implements render.Sink over a blocking portaudio stream.
package portaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	mixer "github.com/tphakala/go-audio-mixer"
)

const defaultFrames = 1024

// Sink plays interleaved frames on the default audio device.
type Sink struct {
	frames int

	stream      *portaudio.Stream
	numChannels int
	format      mixer.SampleFormat
	buf         []float32 // one hardware period, interleaved
	fill        int       // samples buffered so far
	samples     []float64
}

// NewSink creates a playback sink with the given hardware period in
// frames; 0 selects a default.
func NewSink(frames int) *Sink {
	if frames <= 0 {
		frames = defaultFrames
	}
	return &Sink{frames: frames}
}

// Start initializes portaudio and opens the default output stream.
func (s *Sink) Start(numChannels int, rate float64, format mixer.SampleFormat) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}

	s.numChannels = numChannels
	s.format = format
	s.buf = make([]float32, s.frames*numChannels)
	s.fill = 0

	stream, err := portaudio.OpenDefaultStream(0, numChannels, rate, s.frames, &s.buf)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("portaudio: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("portaudio: %w", err)
	}
	s.stream = stream
	return nil
}

// Write buffers frames and plays each complete hardware period. Blocks on
// the device.
func (s *Sink) Write(buf []byte, frames int) error {
	n := frames * s.numChannels
	if cap(s.samples) < n {
		s.samples = make([]float64, n)
	}
	s.samples = s.samples[:n]
	mixer.DecodeSamples(s.format, buf, s.samples)

	for _, v := range s.samples {
		s.buf[s.fill] = float32(v)
		s.fill++
		if s.fill == len(s.buf) {
			s.fill = 0
			if err := s.stream.Write(); err != nil {
				return fmt.Errorf("portaudio: %w", err)
			}
		}
	}
	return nil
}

// Close plays the zero-padded final period, then stops the stream and
// terminates portaudio.
func (s *Sink) Close() error {
	if s.stream == nil {
		return portaudio.Terminate()
	}

	if s.fill > 0 {
		for i := s.fill; i < len(s.buf); i++ {
			s.buf[i] = 0
		}
		s.fill = 0
		if err := s.stream.Write(); err != nil {
			_ = s.stream.Close()
			_ = portaudio.Terminate()
			return fmt.Errorf("portaudio: %w", err)
		}
	}

	if err := s.stream.Stop(); err != nil {
		_ = s.stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("portaudio: %w", err)
	}
	if err := s.stream.Close(); err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("portaudio: %w", err)
	}
	return portaudio.Terminate()
}
