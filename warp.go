package mixer

// WarpCurve maps unwarped time to an instantaneous playback rate
// multiplier, driving variable-ratio resampling. The envelope package
// provides an implementation; any type with these methods will do.
type WarpCurve interface {
	// RangeLower and RangeUpper bound the curve's rate multipliers.
	// They size the converters' ratio bounds at construction.
	RangeLower() float64
	RangeUpper() float64

	// WarpFactor returns the average rate multiplier over [t0, t1].
	WarpFactor(t0, t1 float64) float64
}

type warpKind int

const (
	warpNone warpKind = iota
	warpLinear
	warpCurve
)

// WarpOptions selects how playback time maps to source consumption: not at
// all, by a constant-or-interpolated speed range, or by a time-track curve.
// The zero value means no warp.
type WarpOptions struct {
	kind  warpKind
	min   float64
	max   float64
	curve WarpCurve
}

// NoWarp returns warp options for plain 1:1 playback.
func NoWarp() WarpOptions {
	return WarpOptions{kind: warpNone}
}

// LinearWarp returns warp options bounding the playback speed to
// [minSpeed, maxSpeed]. Values are clamped to the supported speed range.
// Used for scrub and variable-speed play, where the instantaneous speed
// arrives later through SetTimesAndSpeed.
func LinearWarp(minSpeed, maxSpeed float64) WarpOptions {
	if minSpeed < minWarpSpeed {
		minSpeed = minWarpSpeed
	}
	if maxSpeed > maxWarpSpeed {
		maxSpeed = maxWarpSpeed
	}
	if maxSpeed < minSpeed {
		maxSpeed = minSpeed
	}
	return WarpOptions{kind: warpLinear, min: minSpeed, max: maxSpeed}
}

// CurveWarp returns warp options driven by a time-track curve.
func CurveWarp(c WarpCurve) WarpOptions {
	if c == nil {
		return NoWarp()
	}
	return WarpOptions{kind: warpCurve, curve: c}
}

// active reports whether the options force variable-ratio conversion.
func (w WarpOptions) active() bool {
	return w.kind != warpNone
}

// speedBounds returns the lowest and highest rate multipliers the warp can
// demand. No warp pins both to 1.
func (w WarpOptions) speedBounds() (lo, hi float64) {
	switch w.kind {
	case warpLinear:
		return w.min, w.max
	case warpCurve:
		return w.curve.RangeLower(), w.curve.RangeUpper()
	default:
		return 1, 1
	}
}

// factor returns the average rate multiplier over [t0, t1] for curve-driven
// warps and 1 otherwise.
func (w WarpOptions) factor(t0, t1 float64) float64 {
	if w.kind == warpCurve {
		return w.curve.WarpFactor(t0, t1)
	}
	return 1
}
