package goals

import (
	"math"
	"strconv"
)

// ExpectedGoalTimes projects the arrival minute of goals 1..maxGoals for a match
// with lambda expected goals.
// The mean of the k'th goal is 90k/lambda and the median ln(2)*90k/lambda, both
// rounded to 2 decimal places. A lambda of zero gives +Inf minutes and a maxGoals
// below one gives an empty slice.
func ExpectedGoalTimes(lambda float64, maxGoals int) []GoalTime {
	if maxGoals < 1 {
		return []GoalTime{}
	}
	times := make([]GoalTime, 0, maxGoals)
	for k := 1; k <= maxGoals; k++ {
		mean := MatchMinutes * float64(k) / lambda
		median := math.Ln2 * MatchMinutes * float64(k) / lambda
		times = append(times, GoalTime{
			Goal:         k,
			MeanMinute:   Round2(mean),
			MedianMinute: Round2(median),
		})
	}
	return times
}

// Round2 rounds to 2 decimal places. The exact binary value is rounded, so
// 0.625 goes to 0.62 (ties to even) and 2.675, stored just below, to 2.67.
func Round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
