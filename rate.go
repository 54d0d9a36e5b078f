package mixer

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-mixer/internal/dsp"
)

// Quality selects the rate conversion grade.
type Quality int

const (
	// QualityLow uses linear interpolation. Fastest.
	QualityLow Quality = iota
	// QualityMedium uses cubic Hermite interpolation.
	QualityMedium
	// QualityHigh uses a windowed-sinc filter (~90 dB stopband).
	QualityHigh
	// QualityBest uses a longer windowed-sinc filter (~120 dB stopband).
	QualityBest
)

func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityBest:
		return "best"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality parses a quality name as used on command lines.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(s) {
	case "low":
		return QualityLow, nil
	case "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	case "best":
		return QualityBest, nil
	default:
		return 0, fmt.Errorf("%w: unknown quality %q", ErrInvalidConfig, s)
	}
}

// QualityConfig pairs the two conversion grades a mixer chooses between:
// Fast for interactive playback, Best for rendering and export. Both are
// explicit configuration; there is no global preference store.
type QualityConfig struct {
	Fast Quality
	Best Quality
}

// DefaultQualityConfig returns the stock pairing: medium for playback,
// best for export.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{Fast: QualityMedium, Best: QualityBest}
}

// RateConverter converts a stream of mono samples between rates with a
// soxr-style pull contract. When constructed with equal factor bounds it
// locks into constant-ratio mode and ignores the per-call factor;
// otherwise each Process call re-applies the caller's factor as the
// instantaneous output:input ratio.
type RateConverter struct {
	conv     dsp.Converter
	ratio    float64
	constant bool
}

// NewRateConverter creates a converter for ratios in [minFactor,
// maxFactor]. Construction failures (invalid bounds, unknown quality,
// filter design failure) are surfaced here, before any Process call.
func NewRateConverter(quality Quality, minFactor, maxFactor float64) (*RateConverter, error) {
	if minFactor <= 0 || maxFactor <= 0 || minFactor > maxFactor {
		return nil, fmt.Errorf("%w: conversion factor bounds [%g, %g]",
			ErrInvalidConfig, minFactor, maxFactor)
	}

	var (
		conv dsp.Converter
		err  error
	)
	switch quality {
	case QualityLow:
		conv = dsp.NewLinear()
	case QualityMedium:
		conv = dsp.NewCubic()
	case QualityHigh:
		conv, err = dsp.NewSinc(dsp.SincHigh(), minFactor)
	case QualityBest:
		conv, err = dsp.NewSinc(dsp.SincBest(), minFactor)
	default:
		return nil, fmt.Errorf("%w: unknown quality %d", ErrInvalidConfig, int(quality))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &RateConverter{
		conv:     conv,
		ratio:    minFactor,
		constant: minFactor == maxFactor,
	}, nil
}

// Process pulls as many converted samples as fit in out, consuming input
// from in as needed. last signals that no more input will arrive, flushing
// internally buffered state. It returns the input samples consumed and
// output samples produced; producing fewer than len(out) means end of
// stream or upstream starvation, never failure.
func (r *RateConverter) Process(factor float64, in []float64, last bool, out []float64) (consumed, produced int) {
	if r.constant {
		factor = r.ratio
	}
	return r.conv.Process(factor, in, last, out)
}

// Reset discards buffered converter state, as required after a position or
// direction jump.
func (r *RateConverter) Reset() {
	r.conv.Reset()
}
