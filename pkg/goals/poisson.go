package goals

import "math"

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda)
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	// log space keeps large k from overflowing the factorial
	lf, _ := math.Lgamma(float64(k + 1))
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lf)
}

// PoissonCDF returns P(X <= n) for X ~ Poisson(lambda).
// Computed by summing the PMF terms 0..n, each term derived from the previous one.
func PoissonCDF(n int, lambda float64) float64 {
	if n < 0 {
		return 0
	}
	term := math.Exp(-lambda)
	sum := term
	for k := 1; k <= n; k++ {
		term *= lambda / float64(k)
		// past the mode the terms only shrink, stop once they no longer move the sum
		if float64(k) > lambda && sum+term == sum {
			break
		}
		sum += term
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// TailProb returns the probability of strictly more goals than the line.
// For a half goal line such as 2.5 this is P(X >= 3).
func TailProb(line, lambda float64) float64 {
	return 1 - PoissonCDF(int(math.Floor(line)), lambda)
}
