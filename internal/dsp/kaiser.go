package dsp

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

const (
	minFilterTaps = 3
	maxFilterTaps = 65535

	// Window normalization
	windowNormalizationFactor = 2.0

	sincCenterTap     = 1.0
	sincZeroThreshold = 1e-10
)

// kaiserWindow generates a Kaiser window of the specified length and β.
// The window is symmetric: w[i] == w[length-1-i].
func kaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)
	if length == 1 {
		window[0] = sincCenterTap
		return window
	}

	// w[n] = I₀(β·sqrt(1 - ((n-α)/α)²)) / I₀(β), α = (N-1)/2
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := besselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha
		arg := beta * math.Sqrt(1.0-x*x)
		window[n] = besselI0(arg) / i0Beta
	}

	return window
}

// designLowPass designs a Kaiser-windowed sinc lowpass FIR prototype.
//
// numTaps should be odd for a symmetric linear-phase response. cutoff is the
// normalized cutoff frequency in (0, 0.5); attenuation is the stopband
// attenuation in dB; gain is the passband gain at DC.
func designLowPass(numTaps int, cutoff, attenuation, gain float64) ([]float64, error) {
	if numTaps < minFilterTaps || numTaps > maxFilterTaps {
		return nil, fmt.Errorf("filter length %d out of range [%d, %d]",
			numTaps, minFilterTaps, maxFilterTaps)
	}
	if cutoff <= 0 || cutoff >= 0.5 {
		return nil, fmt.Errorf("cutoff %f out of range (0, 0.5)", cutoff)
	}

	beta := kaiserBeta(attenuation)
	window := kaiserWindow(numTaps, beta)

	filter := make([]float64, numTaps)
	center := float64(numTaps-1) / windowNormalizationFactor

	for n := range numTaps {
		x := float64(n) - center

		// sinc: sin(2πfc·x)/(πx), limit 2fc at the center tap
		var sincValue float64
		if math.Abs(x) < sincZeroThreshold {
			sincValue = windowNormalizationFactor * cutoff
		} else {
			arg := windowNormalizationFactor * math.Pi * cutoff * x
			sincValue = math.Sin(arg) / (math.Pi * x)
		}

		filter[n] = sincValue * window[n]
	}

	sum := f64.Sum(filter)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(filter, filter, gain/sum)
	}

	return filter, nil
}
