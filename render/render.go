// Package render drives a mixer to completion, pumping mixed frames into
// a sink. Rendering runs in a worker goroutine so callers can wait,
// observe progress, or cancel through a context.
package render

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	mixer "github.com/tphakala/go-audio-mixer"
	"github.com/tphakala/go-audio-mixer/log"
)

// Sink consumes interleaved mixed audio.
type Sink interface {
	// Start is called once before the first Write.
	Start(numChannels int, rate float64, format mixer.SampleFormat) error

	// Write consumes frames encoded in the session's sample format. The
	// buffer is only valid for the duration of the call.
	Write(buf []byte, frames int) error

	// Close flushes and releases the sink. Called exactly once, also on
	// failed sessions.
	Close() error
}

// Result reports a finished render.
type Result struct {
	Frames int64
	Err    error
}

// Session renders one interleaved mixer into one sink. A session is used
// once; the mixer must not be touched while the session runs.
type Session struct {
	id     string
	mixer  *mixer.Mixer
	sink   Sink
	logger *logrus.Entry
}

// NewSession pairs a mixer with a sink. The mixer must produce
// interleaved output.
func NewSession(m *mixer.Mixer, sink Sink) (*Session, error) {
	if !m.Interleaved() {
		return nil, fmt.Errorf("render: mixer output must be interleaved")
	}
	id := xid.New().String()
	return &Session{
		id:     id,
		mixer:  m,
		sink:   sink,
		logger: log.GetLogger().WithField("session", id),
	}, nil
}

// ID returns the unique session id.
func (s *Session) ID() string { return s.id }

// Run renders until the mixer is exhausted or ctx is cancelled, blocking
// the caller. It returns the total frames delivered to the sink.
func (s *Session) Run(ctx context.Context) (int64, error) {
	m := s.mixer
	s.logger.WithFields(logrus.Fields{
		"rate":     m.Rate(),
		"channels": m.NumChannels(),
	}).Debug("render started")

	if err := s.sink.Start(m.NumChannels(), m.Rate(), m.Format()); err != nil {
		return 0, fmt.Errorf("render: start sink: %w", err)
	}

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			s.closeSink()
			return total, err
		}

		n, err := m.Process(m.BufferSize())
		if err != nil {
			s.closeSink()
			return total, fmt.Errorf("render: %w", err)
		}
		if n == 0 {
			break
		}
		if err := s.sink.Write(m.Buffer(), n); err != nil {
			s.closeSink()
			return total, fmt.Errorf("render: write sink: %w", err)
		}
		total += int64(n)
	}

	if err := s.sink.Close(); err != nil {
		return total, fmt.Errorf("render: close sink: %w", err)
	}
	s.logger.WithField("frames", total).Debug("render finished")
	return total, nil
}

// Background starts Run in a worker goroutine and returns a channel that
// receives the single result when the render ends.
func (s *Session) Background(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		frames, err := s.Run(ctx)
		out <- Result{Frames: frames, Err: err}
	}()
	return out
}

func (s *Session) closeSink() {
	if err := s.sink.Close(); err != nil {
		s.logger.Error("close sink: ", err)
	}
}
