// Package envelope provides piecewise-linear control envelopes over time.
//
// An Envelope maps time in seconds to a value, interpolating linearly
// between control points and holding the boundary values outside them. It
// serves two mixer roles: per-track volume automation, and playback speed
// curves, where the envelope value is a speed multiplier and the warp
// factor over an interval is the average of 1/speed.
package envelope

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

const (
	// Value bounds; points are clamped on insertion.
	defaultMinValue = 1.0e-7
	defaultMaxValue = 2.0

	timeEpsilon = 1.0e-12
)

// ErrNoPoints is returned when building an envelope with no control points.
var ErrNoPoints = errors.New("envelope: no control points")

// Point is one control point.
type Point struct {
	Time  float64
	Value float64
}

// Envelope is an immutable piecewise-linear function of time. The zero
// value is not usable; use New or Constant.
type Envelope struct {
	points   []Point
	pl       interp.PiecewiseLinear
	min, max float64
}

// Constant returns an envelope equal to v everywhere.
func Constant(v float64) *Envelope {
	e, err := New([]Point{{Time: 0, Value: v}}, defaultMinValue, defaultMaxValue)
	if err != nil {
		panic(err) // one point always succeeds
	}
	return e
}

// New builds an envelope from control points. Points are sorted by time;
// values are clamped into [minValue, maxValue]. Points closer together
// than the time resolution are collapsed, keeping the later one.
func New(points []Point, minValue, maxValue float64) (*Envelope, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if minValue <= 0 || maxValue < minValue {
		return nil, fmt.Errorf("envelope: bad value range [%g, %g]", minValue, maxValue)
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })

	out := pts[:0]
	for _, p := range pts {
		p.Value = math.Min(maxValue, math.Max(minValue, p.Value))
		if n := len(out); n > 0 && p.Time-out[n-1].Time < timeEpsilon {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}

	e := &Envelope{points: out, min: minValue, max: maxValue}
	if len(out) >= 2 {
		xs := make([]float64, len(out))
		ys := make([]float64, len(out))
		for i, p := range out {
			xs[i] = p.Time
			ys[i] = p.Value
		}
		if err := e.pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("envelope: %w", err)
		}
	}
	return e, nil
}

// Len returns the number of control points.
func (e *Envelope) Len() int { return len(e.points) }

// Points returns a copy of the control points in time order.
func (e *Envelope) Points() []Point {
	out := make([]Point, len(e.points))
	copy(out, e.points)
	return out
}

// RangeLower returns the smallest value the envelope can take.
func (e *Envelope) RangeLower() float64 { return e.min }

// RangeUpper returns the largest value the envelope can take.
func (e *Envelope) RangeUpper() float64 { return e.max }

// Value returns the envelope value at time t. Outside the control points
// the nearest boundary value holds.
func (e *Envelope) Value(t float64) float64 {
	pts := e.points
	if len(pts) == 1 || t <= pts[0].Time {
		return pts[0].Value
	}
	if t >= pts[len(pts)-1].Time {
		return pts[len(pts)-1].Value
	}
	return e.pl.Predict(t)
}

// Values fills dst with envelope values at t0, t0+tstep, ...
func (e *Envelope) Values(dst []float64, t0, tstep float64) {
	for i := range dst {
		dst[i] = e.Value(t0 + float64(i)*tstep)
	}
}

// segment returns the control points bracketing time t, extending the
// first and last segments as constants.
func (e *Envelope) segment(t float64) (lo, hi Point) {
	pts := e.points
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Time > t })
	switch {
	case i == 0:
		return Point{Time: math.Inf(-1), Value: pts[0].Value}, pts[0]
	case i == len(pts):
		last := pts[len(pts)-1]
		return last, Point{Time: math.Inf(1), Value: last.Value}
	default:
		return pts[i-1], pts[i]
	}
}

// integralOfInverseSegment integrates 1/v(t) over [t0, t1] within one
// linear segment. For a segment going from v0 to v1 the antiderivative is
// logarithmic; flat segments reduce to (t1-t0)/v.
func integralOfInverseSegment(t0, t1, v0, v1, s0, s1 float64) float64 {
	if t1 <= t0 {
		return 0
	}
	if v0 == v1 || s1 <= s0 {
		return (t1 - t0) / v0
	}
	slope := (v1 - v0) / (s1 - s0)
	a := v0 + (t0-s0)*slope
	b := v0 + (t1-s0)*slope
	return math.Log(b/a) / slope
}

// IntegralOfInverse integrates 1/value over [t0, t1]. Swapped bounds
// negate the result.
func (e *Envelope) IntegralOfInverse(t0, t1 float64) float64 {
	if t1 < t0 {
		return -e.IntegralOfInverse(t1, t0)
	}
	if t1 == t0 {
		return 0
	}

	total := 0.0
	t := t0
	for t < t1 {
		lo, hi := e.segment(t)
		end := math.Min(t1, hi.Time)
		total += integralOfInverseSegment(t, end, lo.Value, hi.Value, lo.Time, hi.Time)
		t = end
	}
	return total
}

// AverageOfInverse returns the mean of 1/value over [t0, t1], the warp
// factor a speed envelope contributes over that interval. Returns 1/value
// at t0 when the interval is empty.
func (e *Envelope) AverageOfInverse(t0, t1 float64) float64 {
	if t1 == t0 {
		return 1 / e.Value(t0)
	}
	return e.IntegralOfInverse(t0, t1) / (t1 - t0)
}

// SolveIntegralOfInverse finds delta such that the integral of 1/value
// over [t0, t0+delta] equals area. It converts warped durations back to
// track time when seeking through a speed curve.
func (e *Envelope) SolveIntegralOfInverse(t0, area float64) float64 {
	if area == 0 {
		return 0
	}
	if area < 0 {
		return -e.solveForward(t0, -area, true)
	}
	return e.solveForward(t0, area, false)
}

func (e *Envelope) solveForward(t0, area float64, backwards bool) float64 {
	t := t0
	remaining := area
	for {
		lo, hi := e.segment(t)
		var v0, v1, bound float64
		if backwards {
			bound = lo.Time
			v0 = e.Value(t)
			v1 = lo.Value
		} else {
			bound = hi.Time
			v0 = e.Value(t)
			v1 = hi.Value
		}

		if math.IsInf(bound, 0) {
			// Constant tail: area = dt / v.
			return math.Abs(t-t0) + remaining*v0
		}

		var segArea float64
		if backwards {
			segArea = integralOfInverseSegment(bound, t, v1, v0, bound, t)
		} else {
			segArea = integralOfInverseSegment(t, bound, v0, v1, t, bound)
		}

		if segArea >= remaining {
			return math.Abs(t-t0) + solveSegment(t, bound, v0, v1, remaining)
		}
		remaining -= segArea
		if backwards {
			t = math.Nextafter(bound, math.Inf(-1))
		} else {
			t = math.Nextafter(bound, math.Inf(1))
		}
	}
}

// solveSegment inverts the per-segment integral: find dt in [0, |s1-s0|]
// with integral of 1/v over dt equal to area.
func solveSegment(s0, s1, v0, v1, area float64) float64 {
	width := math.Abs(s1 - s0)
	if v0 == v1 || width == 0 {
		return area * v0
	}
	slope := (v1 - v0) / width
	// area = ln((v0 + slope*dt)/v0) / slope
	return v0 * (math.Exp(area*slope) - 1) / slope
}

// WarpFactor returns the average of 1/value over [t0, t1], satisfying the
// mixer's warp curve contract.
func (e *Envelope) WarpFactor(t0, t1 float64) float64 {
	return e.AverageOfInverse(t0, t1)
}
