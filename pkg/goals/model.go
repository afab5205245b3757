package goals

// Model constants shared by every stage of the goal timing pipeline.
// The match is treated as a single stationary Poisson process over MatchMinutes.
const (
	MatchMinutes    = 90.0 // regulation time, no stoppage
	DefaultLine     = 2.5  // the usual over/under goals line
	DefaultMaxGoals = 3    // number of goals projected when the caller doesn't say
	MinOdds         = 1.01 // smallest decimal odds accepted by the input surfaces
	MaxMaxGoals     = 20   // most goals a request may project
	MaxLine         = 50.0 // highest goals line a request may use

	// Search interval for the goal rate (expected goals per match)
	LambdaLower = 0.1
	LambdaUpper = 6.0
)

// OddsPair holds the two sides of a goals line in decimal odds format
type OddsPair struct {
	Over  float64 `json:"over_odds"`
	Under float64 `json:"under_odds"`
}

// GoalTime is the projected arrival of the k'th goal of a match, in minutes
type GoalTime struct {
	Goal         int     `json:"goal"`
	MeanMinute   float64 `json:"mean_minute"`
	MedianMinute float64 `json:"median_minute"`
}
