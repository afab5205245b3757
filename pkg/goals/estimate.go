package goals

import "math"

// EstimateLambda finds the expected goals per match (lambda) whose Poisson tail
// probability over the line matches pOver.
// The objective is the absolute difference |P(X > floor(line)) - pOver|, minimised
// over [LambdaLower, LambdaUpper]. When no lambda in the interval reaches pOver the
// nearest bound is returned, which is the best available approximation rather than an error.
func EstimateLambda(pOver, line float64) float64 {
	objective := func(lambda float64) float64 {
		return math.Abs(TailProb(line, lambda) - pOver)
	}
	m := MinimizeBounded(objective, LambdaLower, LambdaUpper)
	return math.Min(math.Max(m.X, LambdaLower), LambdaUpper)
}

// EstimateLambdaDefault is EstimateLambda against the 2.5 goals line
func EstimateLambdaDefault(pOver float64) float64 {
	return EstimateLambda(pOver, DefaultLine)
}
