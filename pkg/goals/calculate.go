package goals

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidOdds     = errors.New("invalid odds")
	ErrInvalidLine     = errors.New("invalid goals line")
	ErrInvalidMaxGoals = errors.New("invalid max goals")
)

// Request carries the inputs of one calculation.
// A zero Line or MaxGoals means "use the default".
type Request struct {
	OverOdds  float64 `json:"over_odds" yaml:"over_odds"`
	UnderOdds float64 `json:"under_odds" yaml:"under_odds"`
	Line      float64 `json:"line,omitempty" yaml:"line,omitempty"`
	MaxGoals  int     `json:"max_goals,omitempty" yaml:"max_goals,omitempty"`
}

// Result is everything the pipeline derives from a Request
type Result struct {
	Request    Request    `json:"request"`
	POver      float64    `json:"p_over"`
	PUnder     float64    `json:"p_under"`
	Overround  float64    `json:"overround"`
	Lambda     float64    `json:"lambda"`
	FittedTail float64    `json:"fitted_tail"` // model P(over) at Lambda, differs from POver when Lambda hit a bound
	Times      []GoalTime `json:"times"`
}

// ValidateOdds checks both sides are finite decimal odds of at least MinOdds
func ValidateOdds(over, under float64) error {
	for _, side := range []struct {
		name string
		odds float64
	}{{"over", over}, {"under", under}} {
		if math.IsNaN(side.odds) || math.IsInf(side.odds, 0) {
			return fmt.Errorf("%w: %s odds must be a finite number", ErrInvalidOdds, side.name)
		}
		if side.odds < MinOdds {
			return fmt.Errorf("%w: %s odds must be at least %.2f, got %.4g", ErrInvalidOdds, side.name, MinOdds, side.odds)
		}
	}
	return nil
}

// ValidateLine checks the goals line is a finite number in [0, MaxLine]
func ValidateLine(line float64) error {
	if math.IsNaN(line) || math.IsInf(line, 0) || line < 0 || line > MaxLine {
		return fmt.Errorf("%w: must be between 0 and %g, got %v", ErrInvalidLine, MaxLine, line)
	}
	return nil
}

// ValidateMaxGoals checks between 1 and MaxMaxGoals goals are to be projected
func ValidateMaxGoals(n int) error {
	if n < 1 || n > MaxMaxGoals {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidMaxGoals, MaxMaxGoals, n)
	}
	return nil
}

// WithDefaults fills in a zero Line or MaxGoals
func (r Request) WithDefaults() Request {
	if r.Line == 0 {
		r.Line = DefaultLine
	}
	if r.MaxGoals == 0 {
		r.MaxGoals = DefaultMaxGoals
	}
	return r
}

// Validate checks every field of an already defaulted request
func (r Request) Validate() error {
	if err := ValidateOdds(r.OverOdds, r.UnderOdds); err != nil {
		return err
	}
	if err := ValidateLine(r.Line); err != nil {
		return err
	}
	return ValidateMaxGoals(r.MaxGoals)
}

// Calculate validates the request and runs odds -> probability -> lambda -> goal times
func Calculate(req Request) (*Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pOver := ImpliedProb(req.OverOdds, req.UnderOdds)
	lambda := EstimateLambda(pOver, req.Line)

	return &Result{
		Request:    req,
		POver:      pOver,
		PUnder:     1 - pOver,
		Overround:  Overround(req.OverOdds, req.UnderOdds),
		Lambda:     lambda,
		FittedTail: TailProb(req.Line, lambda),
		Times:      ExpectedGoalTimes(lambda, req.MaxGoals),
	}, nil
}
