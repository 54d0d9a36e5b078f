package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-mixer/internal/testutil"
)

const (
	passthroughTolerance = 1e-9
	sincSNRFloor         = 60.0 // dB, mid-band sine through the high grade
)

// drive pushes the whole input through a converter in chunks, flushing at
// the end, and returns everything produced.
func drive(c Converter, ratio float64, in []float64, chunk int) []float64 {
	var out []float64
	buf := make([]float64, chunk)
	pos := 0
	for {
		last := pos >= len(in)
		var feed []float64
		if !last {
			end := pos + chunk
			if end > len(in) {
				end = len(in)
			}
			feed = in[pos:end]
		}
		used, produced := c.Process(ratio, feed, last, buf)
		pos += used
		out = append(out, buf[:produced]...)
		if last && produced == 0 {
			return out
		}
	}
}

func allConverters(t *testing.T, minRatio float64) map[string]Converter {
	t.Helper()
	high, err := NewSinc(SincHigh(), minRatio)
	require.NoError(t, err)
	best, err := NewSinc(SincBest(), minRatio)
	require.NoError(t, err)
	return map[string]Converter{
		"linear": NewLinear(),
		"cubic":  NewCubic(),
		"high":   high,
		"best":   best,
	}
}

// TestConverter_OutputCount verifies that the total output length across
// a full conversion equals the input length times the ratio, rounded.
func TestConverter_OutputCount(t *testing.T) {
	ratios := map[string]float64{
		"downsample 48k to 44.1k": 44100.0 / 48000.0,
		"upsample 44.1k to 48k":   48000.0 / 44100.0,
		"halve":                   0.5,
		"double":                  2.0,
		"unity":                   1.0,
	}
	const inLen = 48000

	for rname, ratio := range ratios {
		t.Run(rname, func(t *testing.T) {
			for cname, conv := range allConverters(t, ratio) {
				in := testutil.Sine(inLen, 440, 48000, 0.5)
				out := drive(conv, ratio, in, 512)
				want := int(math.Round(float64(inLen) * ratio))
				assert.Equal(t, want, len(out), "%s converter", cname)
			}
		})
	}
}

// TestConverter_FinalChunkWithLast verifies that a converter consumes the
// whole final input chunk when it arrives together with the last flag, the
// way the mixer delivers a tail shorter than its block size, instead of
// cutting off at the output budget with input still pending.
func TestConverter_FinalChunkWithLast(t *testing.T) {
	ratios := map[string]float64{
		"downsample 48k to 44.1k": 44100.0 / 48000.0,
		"upsample 44.1k to 48k":   48000.0 / 44100.0,
	}
	const (
		inLen = 48000
		chunk = 1024 // inLen % chunk leaves a 896 sample tail
	)

	for rname, ratio := range ratios {
		t.Run(rname, func(t *testing.T) {
			for cname, conv := range allConverters(t, ratio) {
				in := testutil.Sine(inLen, 440, 48000, 0.5)
				buf := make([]float64, 4096)
				pos, total := 0, 0
				for {
					end := pos + chunk
					last := end >= len(in)
					if end > len(in) {
						end = len(in)
					}
					used, produced := conv.Process(ratio, in[pos:end], last, buf)
					pos += used
					total += produced
					if last && produced == 0 {
						break
					}
				}
				assert.Equal(t, inLen, pos,
					"%s converter stranded %d input samples", cname, inLen-pos)
				want := int(math.Round(float64(inLen) * ratio))
				assert.Equal(t, want, total, "%s converter", cname)
			}
		})
	}
}

// TestConverter_UnityDC verifies that a constant signal passes through
// every grade at unity gain once the filter has warmed up.
func TestConverter_UnityDC(t *testing.T) {
	const level = 0.25
	in := testutil.Constant(4096, level)

	for cname, conv := range allConverters(t, 1.0) {
		out := drive(conv, 1.0, in, 256)
		require.NotEmpty(t, out, "%s converter", cname)

		// Skip the warm-up transient at both edges.
		body := out[256 : len(out)-256]
		for i, v := range body {
			if !assert.InDelta(t, level, v, passthroughTolerance,
				"%s converter sample %d", cname, i) {
				break
			}
		}
	}
}

// TestSincConverter_SineSNR verifies that a mid-band sine survives a 48k
// to 44.1k conversion with high fidelity.
func TestSincConverter_SineSNR(t *testing.T) {
	const (
		inRate  = 48000.0
		outRate = 44100.0
		freq    = 1000.0
	)
	ratio := outRate / inRate

	conv, err := NewSinc(SincHigh(), ratio)
	require.NoError(t, err)

	in := testutil.Sine(int(inRate), freq, inRate, 0.5)
	out := drive(conv, ratio, in, 1024)
	require.NotEmpty(t, out)

	// Compare against an ideal sine at the output rate, allowing for the
	// filter's group delay: scan a small delay range and keep the best.
	body := out[2048 : len(out)-2048]
	bestSNR := math.Inf(-1)
	for delay := 0; delay < SincHigh().Taps; delay++ {
		ref := make([]float64, len(body))
		w := 2 * math.Pi * freq / outRate
		for i := range ref {
			ref[i] = 0.5 * math.Sin(w*float64(i+2048-delay))
		}
		if snr := testutil.SNR(ref, body); snr > bestSNR {
			bestSNR = snr
		}
	}
	assert.Greater(t, bestSNR, sincSNRFloor,
		"expected at least %.0f dB SNR, got %.1f dB", sincSNRFloor, bestSNR)
}

// TestConverter_Reset verifies that Reset restores a converter to its
// fresh state: the same input then produces identical output.
func TestConverter_Reset(t *testing.T) {
	const ratio = 44100.0 / 48000.0
	in := testutil.Sine(8192, 440, 48000, 0.5)

	for cname, conv := range allConverters(t, ratio) {
		first := drive(conv, ratio, in, 512)
		conv.Reset()
		second := drive(conv, ratio, in, 512)

		require.Equal(t, len(first), len(second), "%s converter", cname)
		for i := range first {
			if !assert.InDelta(t, first[i], second[i], 1e-15,
				"%s converter sample %d after reset", cname, i) {
				break
			}
		}
	}
}

// TestConverter_StarvedInput verifies that a converter produces nothing
// beyond its budget when input runs dry without the last flag.
func TestConverter_StarvedInput(t *testing.T) {
	conv := NewCubic()
	out := make([]float64, 128)

	used, produced := conv.Process(1.0, nil, false, out)
	assert.Zero(t, used)
	assert.Zero(t, produced)
}

// TestConverter_InvalidRatio verifies that non-positive ratios are
// rejected without consuming input.
func TestConverter_InvalidRatio(t *testing.T) {
	conv := NewLinear()
	in := testutil.Constant(64, 0.5)
	out := make([]float64, 64)

	used, produced := conv.Process(0, in, false, out)
	assert.Zero(t, used)
	assert.Zero(t, produced)

	used, produced = conv.Process(-1.5, in, false, out)
	assert.Zero(t, used)
	assert.Zero(t, produced)
}

// TestConverter_VariableRatio verifies output accounting when the ratio
// changes between calls, as warped playback does.
func TestConverter_VariableRatio(t *testing.T) {
	conv := NewCubic()
	in := testutil.Sine(20000, 440, 48000, 0.5)
	out := make([]float64, 256)

	ratios := []float64{0.8, 1.0, 1.25, 0.9}
	pos, total := 0, 0
	for i := 0; pos < len(in); i++ {
		ratio := ratios[i%len(ratios)]
		end := pos + 1000
		if end > len(in) {
			end = len(in)
		}
		used, produced := conv.Process(ratio, in[pos:end], false, out)
		pos += used
		total += produced
		require.True(t, used > 0 || produced > 0, "converter stalled")
	}
	assert.Positive(t, total)
	testutil.AssertNoNaNOrInf(t, out[:min(total, len(out))])
}
