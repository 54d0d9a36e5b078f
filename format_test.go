package mixer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleFormat_BytesPerSample(t *testing.T) {
	assert.Equal(t, 2, FormatInt16.BytesPerSample())
	assert.Equal(t, 3, FormatInt24.BytesPerSample())
	assert.Equal(t, 4, FormatFloat32.BytesPerSample())
}

func TestEncodeSamples_Int16(t *testing.T) {
	src := []float64{0, 1, -1, 0.5}
	dst := make([]byte, len(src)*FormatInt16.BytesPerSample())
	encodeSamples(FormatInt16, src, dst)

	back := make([]float64, len(src))
	n := DecodeSamples(FormatInt16, dst, back)
	require.Equal(t, len(src), n)

	assert.Zero(t, back[0])
	assert.InDelta(t, 1.0, back[1], 1e-4)
	assert.InDelta(t, -1.0, back[2], 1.0/maxInt16Scale+1e-9)
	assert.InDelta(t, 0.5, back[3], 1.0/maxInt16Scale)
}

func TestEncodeSamples_IntegerFormatsClip(t *testing.T) {
	src := []float64{2.5, -3.0}
	for _, f := range []SampleFormat{FormatInt16, FormatInt24} {
		dst := make([]byte, len(src)*f.BytesPerSample())
		encodeSamples(f, src, dst)

		back := make([]float64, len(src))
		DecodeSamples(f, dst, back)
		assert.InDelta(t, 1.0, back[0], 1e-4, "%s must clip positive", f)
		assert.InDelta(t, -1.0, back[1], 1e-4, "%s must clip negative", f)
	}
}

func TestEncodeSamples_Int24Negative(t *testing.T) {
	src := []float64{-0.5}
	dst := make([]byte, FormatInt24.BytesPerSample())
	encodeSamples(FormatInt24, src, dst)

	back := make([]float64, 1)
	DecodeSamples(FormatInt24, dst, back)
	assert.InDelta(t, -0.5, back[0], 1.0/maxInt24Scale, "sign extension across 3 bytes")
}

func TestEncodeSamples_Float32NotClipped(t *testing.T) {
	src := []float64{1.75, -2.25}
	dst := make([]byte, len(src)*FormatFloat32.BytesPerSample())
	encodeSamples(FormatFloat32, src, dst)

	back := make([]float64, len(src))
	DecodeSamples(FormatFloat32, dst, back)
	assert.InDelta(t, 1.75, back[0], 1e-6, "float output carries headroom")
	assert.InDelta(t, -2.25, back[1], 1e-6)
}

func TestDecodeSamples_TruncatesToDst(t *testing.T) {
	src := make([]byte, 8) // four int16 samples
	dst := make([]float64, 2)
	n := DecodeSamples(FormatInt16, src, dst)
	assert.Equal(t, 2, n)
}

func TestEncodeSamples_Int16FullScaleRoundTrip(t *testing.T) {
	// Values on the int16 grid survive encode/decode exactly.
	src := []float64{12345 / maxInt16Scale, -32767 / maxInt16Scale}
	dst := make([]byte, len(src)*FormatInt16.BytesPerSample())
	encodeSamples(FormatInt16, src, dst)

	back := make([]float64, len(src))
	DecodeSamples(FormatInt16, dst, back)
	for i := range src {
		assert.True(t, math.Abs(src[i]-back[i]) < 1e-15, "sample %d changed", i)
	}
}
