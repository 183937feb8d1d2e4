package trueskill

import "math"

// cdf is the standard normal cumulative distribution function.
func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// pdf is the standard normal density.
func pdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// ppf is the inverse of cdf.
func ppf(p float64) float64 {
	return -math.Sqrt2 * math.Erfcinv(2*p)
}

// vWin is the additive mean correction for a win with the given draw margin,
// both expressed in units of the combined performance deviation.
func vWin(diff, drawMargin float64) float64 {
	x := diff - drawMargin
	denom := cdf(x)
	if denom < 1e-300 {
		// Asymptote of pdf/cdf for a very unlikely win.
		return -x
	}
	return pdf(x) / denom
}

// wWin is the multiplicative variance correction for a win. It lies in (0, 1).
func wWin(diff, drawMargin float64) float64 {
	x := diff - drawMargin
	v := vWin(diff, drawMargin)
	w := v * (v + x)
	switch {
	case math.IsNaN(w) || w <= 0:
		return 0
	case w >= 1:
		return 1 - 1e-12
	}
	return w
}
