package pricing

import "math"

// frac1Sqrt2 is 1/√2 rounded the way the legacy pricer computed it
// (1.0 divided by the float64 √2). The correctly rounded constant
// differs in the last bit and shifts the regression values.
const frac1Sqrt2 = 0.7071067811865475

// CDF is a cumulative distribution function for the standard normal
// distribution. The engine accepts any implementation with this shape.
type CDF func(x float64) float64

// NormCDF computes the cumulative distribution function of the standard normal
// distribution at x using the complementary error function:
//
//	Φ(x) = ½·erfc(−x/√2)
//
// It returns a value in [0, 1], with NormCDF(0) == 0.5 and
// NormCDF(-x) == 1 - NormCDF(x). NaN propagates; ±Inf map to 1 and 0.
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x*frac1Sqrt2)
}
