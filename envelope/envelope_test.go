package envelope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integralTolerance = 1e-9

func mustNew(t *testing.T, points []Point) *Envelope {
	t.Helper()
	e, err := New(points, defaultMinValue, defaultMaxValue)
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, defaultMinValue, defaultMaxValue)
	assert.ErrorIs(t, err, ErrNoPoints)

	_, err = New([]Point{{0, 1}}, -1, 2)
	assert.Error(t, err)

	_, err = New([]Point{{0, 1}}, 2, 1)
	assert.Error(t, err)
}

func TestNew_SortsAndClamps(t *testing.T) {
	e := mustNew(t, []Point{
		{Time: 2, Value: 5.0},  // clamped to max
		{Time: 0, Value: -1.0}, // clamped to min
	})
	require.Equal(t, 2, e.Len())

	pts := e.Points()
	assert.Equal(t, 0.0, pts[0].Time)
	assert.Equal(t, defaultMinValue, pts[0].Value)
	assert.Equal(t, defaultMaxValue, pts[1].Value)
}

func TestConstant(t *testing.T) {
	e := Constant(0.5)
	assert.Equal(t, 0.5, e.Value(-100))
	assert.Equal(t, 0.5, e.Value(0))
	assert.Equal(t, 0.5, e.Value(100))
}

func TestValue_Interpolation(t *testing.T) {
	e := mustNew(t, []Point{{0, 1}, {1, 2}})

	assert.Equal(t, 1.0, e.Value(0))
	assert.Equal(t, 2.0, e.Value(1))
	assert.InDelta(t, 1.5, e.Value(0.5), 1e-12)
	assert.InDelta(t, 1.25, e.Value(0.25), 1e-12)

	// Boundary values hold outside the points.
	assert.Equal(t, 1.0, e.Value(-5))
	assert.Equal(t, 2.0, e.Value(5))
}

func TestValues_SamplesGrid(t *testing.T) {
	e := mustNew(t, []Point{{0, 1}, {1, 2}})
	dst := make([]float64, 5)
	e.Values(dst, 0, 0.25)
	for i, want := range []float64{1, 1.25, 1.5, 1.75, 2} {
		assert.InDelta(t, want, dst[i], 1e-12, "sample %d", i)
	}
}

func TestIntegralOfInverse_Constant(t *testing.T) {
	e := Constant(2.0)
	assert.InDelta(t, 1.5, e.IntegralOfInverse(0, 3), integralTolerance)
	assert.InDelta(t, -1.5, e.IntegralOfInverse(3, 0), integralTolerance, "swapped bounds negate")
	assert.Zero(t, e.IntegralOfInverse(1, 1))
}

func TestIntegralOfInverse_LinearSegment(t *testing.T) {
	// v(t) = 1 + t on [0, 1]: integral of 1/(1+t) dt = ln 2.
	e := mustNew(t, []Point{{0, 1}, {1, 2}})
	assert.InDelta(t, math.Log(2), e.IntegralOfInverse(0, 1), integralTolerance)
}

func TestIntegralOfInverse_SpansSegments(t *testing.T) {
	// Piecewise: 1+t on [0,1], constant 2 on [1,2], plus the constant
	// tails. Integral over [-1, 3] = 1 + ln2 + 0.5 + 0.5.
	e := mustNew(t, []Point{{0, 1}, {1, 2}, {2, 2}})
	want := 1.0 + math.Log(2) + 0.5 + 0.5
	assert.InDelta(t, want, e.IntegralOfInverse(-1, 3), integralTolerance)
}

func TestAverageOfInverse(t *testing.T) {
	e := Constant(2.0)
	assert.InDelta(t, 0.5, e.AverageOfInverse(0, 10), integralTolerance)
	assert.InDelta(t, 0.5, e.AverageOfInverse(3, 3), integralTolerance, "empty interval uses the point value")

	ramp := mustNew(t, []Point{{0, 1}, {1, 2}})
	assert.InDelta(t, math.Log(2), ramp.AverageOfInverse(0, 1), integralTolerance)
}

func TestSolveIntegralOfInverse_RoundTrips(t *testing.T) {
	envelopes := map[string]*Envelope{
		"constant": Constant(2.0),
		"ramp":     mustNew(t, []Point{{0, 0.5}, {1, 2}}),
		"piecewise": mustNew(t, []Point{
			{0, 1}, {0.5, 0.25}, {1, 1.5}, {2, 1.5},
		}),
	}

	for name, e := range envelopes {
		t.Run(name, func(t *testing.T) {
			for _, delta := range []float64{0.1, 0.4, 0.9, 1.7, 3.0} {
				area := e.IntegralOfInverse(0.2, 0.2+delta)
				got := e.SolveIntegralOfInverse(0.2, area)
				assert.InDelta(t, delta, got, 1e-6, "delta %f", delta)
			}
		})
	}
}

func TestSolveIntegralOfInverse_Negative(t *testing.T) {
	e := Constant(2.0)
	// Negative area walks backwards, yielding a negative offset.
	got := e.SolveIntegralOfInverse(1.0, -0.25)
	assert.InDelta(t, -0.5, got, integralTolerance)
	assert.Zero(t, e.SolveIntegralOfInverse(1.0, 0))
}

func TestWarpFactor_MatchesAverageOfInverse(t *testing.T) {
	e := mustNew(t, []Point{{0, 1}, {1, 2}})
	assert.Equal(t, e.AverageOfInverse(0.1, 0.7), e.WarpFactor(0.1, 0.7))
	assert.Equal(t, defaultMinValue, e.RangeLower())
	assert.Equal(t, defaultMaxValue, e.RangeUpper())
}

func TestNew_CollapsesCoincidentPoints(t *testing.T) {
	e := mustNew(t, []Point{{0, 1}, {0, 1.5}, {1, 2}})
	require.Equal(t, 2, e.Len())
	assert.Equal(t, 1.5, e.Points()[0].Value, "later coincident point wins")
}
