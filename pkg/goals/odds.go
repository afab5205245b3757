package goals

// ImpliedProb converts the over/under decimal odds of a goals line into the
// probability of the over, with the bookmaker margin removed by proportional
// normalisation so that both sides sum to exactly 1.
// No validation is done here, odds of zero give a non-finite result.
func ImpliedProb(overOdds, underOdds float64) float64 {
	invOver := 1 / overOdds
	invUnder := 1 / underOdds
	return invOver / (invOver + invUnder)
}

// Overround returns the bookmaker margin of a two way market,
// ie. the amount by which the raw inverse odds exceed 1.
// 2.10/1.75 gives roughly 0.0476 (4.76%)
func Overround(overOdds, underOdds float64) float64 {
	return 1/overOdds + 1/underOdds - 1
}

// Probabilities returns the fair over and under probabilities of the pair
func (o OddsPair) Probabilities() (pOver, pUnder float64) {
	pOver = ImpliedProb(o.Over, o.Under)
	return pOver, 1 - pOver
}
