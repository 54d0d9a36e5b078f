// Package dsp implements the streaming sample rate converters used by the
// mixer's rate conversion wrapper. All converters share a pull contract:
// they consume input only as needed to fill the caller's output buffer and
// carry fractional read position across calls, so the ratio may change
// between calls without losing stream continuity.
package dsp

import (
	"math"
)

// Bessel approximation constants. Chebyshev polynomial coefficients from
// Abramowitz & Stegun, "Handbook of Mathematical Functions".
const (
	besselSmallArgThreshold = 3.75

	besselI0Coeff1 = 3.5156229
	besselI0Coeff2 = 3.0899424
	besselI0Coeff3 = 1.2067492
	besselI0Coeff4 = 0.2659732
	besselI0Coeff5 = 0.360768e-1
	besselI0Coeff6 = 0.45813e-2

	besselI0AsympCoeff0 = 0.39894228
	besselI0AsympCoeff1 = 0.1328592e-1
	besselI0AsympCoeff2 = 0.225319e-2
	besselI0AsympCoeff3 = -0.157565e-2
	besselI0AsympCoeff4 = 0.916281e-2
	besselI0AsympCoeff5 = -0.2057706e-1
	besselI0AsympCoeff6 = 0.2635537e-1
	besselI0AsympCoeff7 = -0.1647633e-1
	besselI0AsympCoeff8 = 0.392377e-2
)

// Kaiser β formula constants (Kaiser & Schafer's empirical formulas).
const (
	kaiserAttHigh   = 50.0
	kaiserAttMedium = 21.0

	kaiserBetaHighCoeff1 = 0.1102
	kaiserBetaHighOffset = 8.7

	kaiserBetaMediumCoeff1 = 0.5842
	kaiserBetaMediumPower  = 0.4
	kaiserBetaMediumCoeff2 = 0.07886
)

// besselI0 computes the modified Bessel function of the first kind, order
// zero. Used in Kaiser window calculation for filter design.
//
// For |x| <= 3.75 a direct polynomial series expansion is used; above that
// an asymptotic expansion with exponential scaling. Accuracy is ~15 digits,
// which is more than sufficient for audio filter design.
func besselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(besselI0Coeff1+t*(besselI0Coeff2+t*(besselI0Coeff3+
			t*(besselI0Coeff4+t*(besselI0Coeff5+t*besselI0Coeff6)))))
	}

	t := besselSmallArgThreshold / ax
	result := besselI0AsympCoeff0 + t*(besselI0AsympCoeff1+t*(besselI0AsympCoeff2+
		t*(besselI0AsympCoeff3+t*(besselI0AsympCoeff4+t*(besselI0AsympCoeff5+
			t*(besselI0AsympCoeff6+t*(besselI0AsympCoeff7+t*besselI0AsympCoeff8)))))))

	return math.Exp(ax) * result / math.Sqrt(ax)
}

// kaiserBeta computes the Kaiser window β parameter for the desired stopband
// attenuation in dB, using Kaiser's empirical formula.
func kaiserBeta(attenuation float64) float64 {
	if attenuation > kaiserAttHigh {
		return kaiserBetaHighCoeff1 * (attenuation - kaiserBetaHighOffset)
	}
	if attenuation >= kaiserAttMedium {
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(delta, kaiserBetaMediumPower) +
			kaiserBetaMediumCoeff2*delta
	}
	return 0.0
}
