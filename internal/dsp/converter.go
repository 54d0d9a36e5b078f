package dsp

import (
	"math"
)

// Converter converts a mono sample stream from one rate to another.
//
// ratio is the output:input ratio in effect for this call. Implementations
// constructed for a fixed ratio may ignore the argument. Process consumes
// samples from in only as far as needed to fill out, and reports how many
// input samples were consumed and output samples produced. When last is
// true the caller promises no further input; the converter then drains its
// internal state so that the cumulative output length converges on the
// cumulative input length times the ratio.
type Converter interface {
	Process(ratio float64, in []float64, last bool, out []float64) (consumed, produced int)
	Reset()
}

// stream carries the state shared by all converter kinds: a history window
// of recent input samples (oldest first), the fractional read phase within
// the inter-sample interval, and the input/output bookkeeping that drives
// end-of-stream draining.
type stream struct {
	hist  []float64
	phase float64

	// outTarget accumulates ratio once per real input sample; draining
	// stops when the output count reaches its rounded value.
	outTarget float64
	outCount  int64
}

func newStream(histLen int) *stream {
	s := &stream{hist: make([]float64, histLen)}
	s.reset()
	return s
}

func (s *stream) reset() {
	for i := range s.hist {
		s.hist[i] = 0
	}
	// The first shift must land a sample before anything is emitted.
	s.phase = 1.0
	s.outTarget = 0
	s.outCount = 0
}

// shift pushes one sample into the history window, dropping the oldest.
func (s *stream) shift(v float64) {
	copy(s.hist, s.hist[1:])
	s.hist[len(s.hist)-1] = v
}

// run is the converter main loop. interp evaluates one output sample from
// the current history window at fractional position x in [0, 1).
func (s *stream) run(ratio float64, in []float64, last bool, out []float64,
	interp func(x float64) float64) (consumed, produced int) {
	if ratio <= 0 {
		return 0, 0
	}
	step := 1.0 / ratio

	for produced < len(out) {
		// Pull input until the read phase falls inside the window.
		for s.phase >= 1.0 {
			if consumed < len(in) {
				s.shift(in[consumed])
				consumed++
				s.outTarget += ratio
				s.phase -= 1.0
			} else if last && s.outCount < int64(math.Round(s.outTarget)) {
				// Drain: pad with silence until the output budget
				// earned by the consumed input is spent.
				s.shift(0)
				s.phase -= 1.0
			} else {
				return consumed, produced
			}
		}

		// The output budget may only cut the stream off once every real
		// input sample has been consumed; until then outTarget is still
		// growing and stopping here would strand the tail of the input.
		if last && consumed == len(in) &&
			s.outCount >= int64(math.Round(s.outTarget)) {
			return consumed, produced
		}

		out[produced] = interp(s.phase)
		produced++
		s.outCount++
		s.phase += step
	}

	return consumed, produced
}

// NewLinear returns a 2-point interpolating converter.
func NewLinear() Converter {
	return newLinearConverter()
}

// NewCubic returns a 4-point Hermite interpolating converter.
func NewCubic() Converter {
	return newCubicConverter()
}

// NewSinc returns a Kaiser windowed-sinc converter for the given grade.
// minRatio bounds the lowest ratio the converter will run at.
func NewSinc(spec SincSpec, minRatio float64) (Converter, error) {
	return newSincConverter(spec, minRatio)
}

// linearConverter implements 2-point interpolation. Fastest, lowest quality.
type linearConverter struct {
	*stream
}

func newLinearConverter() *linearConverter {
	return &linearConverter{stream: newStream(2)}
}

func (c *linearConverter) Process(ratio float64, in []float64, last bool, out []float64) (int, int) {
	return c.run(ratio, in, last, out, func(x float64) float64 {
		return c.hist[0] + x*(c.hist[1]-c.hist[0])
	})
}

func (c *linearConverter) Reset() { c.reset() }

// Number of history points for cubic Hermite interpolation.
const cubicPoints = 4

// Hermite basis coefficients.
const (
	hermiteCoeff0p5 = 0.5
	hermiteCoeff1p5 = 1.5
	hermiteCoeff2p5 = 2.5
)

// cubicConverter implements 4-point, 3rd-order Hermite interpolation.
// The interpolated segment lies between the two middle history points, so
// the converter carries a fixed two sample latency.
type cubicConverter struct {
	*stream
}

func newCubicConverter() *cubicConverter {
	return &cubicConverter{stream: newStream(cubicPoints)}
}

func (c *cubicConverter) Process(ratio float64, in []float64, last bool, out []float64) (int, int) {
	return c.run(ratio, in, last, out, c.interpolate)
}

func (c *cubicConverter) Reset() { c.reset() }

// interpolate evaluates the Hermite polynomial ((a·x + b)·x + c)·x + d at
// fractional position x between the middle two history points.
func (c *cubicConverter) interpolate(x float64) float64 {
	y0 := c.hist[0]
	y1 := c.hist[1]
	y2 := c.hist[2]
	y3 := c.hist[3]

	coefA := -hermiteCoeff0p5*y0 + hermiteCoeff1p5*y1 - hermiteCoeff1p5*y2 + hermiteCoeff0p5*y3
	coefB := y0 - hermiteCoeff2p5*y1 + 2*y2 - hermiteCoeff0p5*y3
	coefC := -hermiteCoeff0p5*y0 + hermiteCoeff0p5*y2
	coefD := y1

	return ((coefA*x+coefB)*x+coefC)*x + coefD
}
