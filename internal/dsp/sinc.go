package dsp

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

// Quality parameters for the two windowed-sinc grades. Tap counts and
// attenuations are balanced so the Kaiser transition band fits the filter
// length (N ≈ (A-8)/(2.285·2π·Δf)).
const (
	sincHighTaps        = 32
	sincHighPhases      = 64
	sincHighAttenuation = 90.0
	sincHighRolloff     = 0.85

	sincBestTaps        = 64
	sincBestPhases      = 128
	sincBestAttenuation = 120.0
	sincBestRolloff     = 0.88

	// Prototype gain compensates for polyphase decimation of the table.
	nyquist = 0.5
)

// SincSpec selects the filter grade for a sinc converter.
type SincSpec struct {
	Taps        int
	Phases      int
	Attenuation float64
	Rolloff     float64
}

// SincHigh returns the high quality grade (~90 dB stopband).
func SincHigh() SincSpec {
	return SincSpec{
		Taps:        sincHighTaps,
		Phases:      sincHighPhases,
		Attenuation: sincHighAttenuation,
		Rolloff:     sincHighRolloff,
	}
}

// SincBest returns the best quality grade (~120 dB stopband).
func SincBest() SincSpec {
	return SincSpec{
		Taps:        sincBestTaps,
		Phases:      sincBestPhases,
		Attenuation: sincBestAttenuation,
		Rolloff:     sincBestRolloff,
	}
}

// sincConverter implements Kaiser windowed-sinc resampling with a
// phase-interpolated polyphase coefficient table. The cutoff is fixed at
// construction from the lowest ratio the converter must support, so a
// variable-ratio stream never aliases within its declared bounds.
type sincConverter struct {
	*stream
	spec  SincSpec
	table [][]float64 // phases+1 rows of taps coefficients, oldest-first
}

// newSincConverter builds the polyphase table for the given grade.
// minRatio is the smallest output:input ratio the converter will be asked
// to run at; ratios below 1 shrink the cutoff to the output Nyquist.
func newSincConverter(spec SincSpec, minRatio float64) (*sincConverter, error) {
	if minRatio <= 0 {
		return nil, fmt.Errorf("invalid minimum ratio %f", minRatio)
	}

	cutoff := nyquist * spec.Rolloff * math.Min(1.0, minRatio)

	// Oversampled prototype: one row per fractional phase plus a
	// duplicate row so phase interpolation never reads past the table.
	protoLen := spec.Taps*spec.Phases + 1
	if protoLen%2 == 0 {
		protoLen++
	}
	proto, err := designLowPass(protoLen, cutoff/float64(spec.Phases),
		spec.Attenuation, float64(spec.Phases))
	if err != nil {
		return nil, err
	}

	c := &sincConverter{
		stream: newStream(spec.Taps),
		spec:   spec,
		table:  make([][]float64, spec.Phases+1),
	}

	for p := 0; p <= spec.Phases; p++ {
		row := make([]float64, spec.Taps)
		for j := 0; j < spec.Taps; j++ {
			idx := j*spec.Phases + p
			if idx >= len(proto) {
				idx = len(proto) - 1
			}
			// hist is oldest-first; h[j·P+p] weights x[n-j]
			row[spec.Taps-1-j] = proto[idx]
		}
		// Per-row normalization pins the DC gain of every phase to
		// exactly one, which keeps unity passthrough transparent.
		sum := f64.Sum(row)
		if math.Abs(sum) > sincZeroThreshold {
			f64.Scale(row, row, 1.0/sum)
		}
		c.table[p] = row
	}

	return c, nil
}

func (c *sincConverter) Process(ratio float64, in []float64, last bool, out []float64) (int, int) {
	return c.run(ratio, in, last, out, c.interpolate)
}

func (c *sincConverter) Reset() { c.reset() }

// interpolate evaluates the filter at fractional position x by blending the
// two nearest phase rows. The two dot products dominate conversion cost and
// go through the SIMD kernels.
func (c *sincConverter) interpolate(x float64) float64 {
	pos := x * float64(c.spec.Phases)
	p := int(pos)
	if p >= c.spec.Phases {
		p = c.spec.Phases - 1
	}
	frac := pos - float64(p)

	lo := f64.DotProductUnsafe(c.hist, c.table[p])
	hi := f64.DotProductUnsafe(c.hist, c.table[p+1])
	return lo + frac*(hi-lo)
}
