package resources

import (
	"fmt"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
	"github.com/richard-senior/goalclock/pkg/protocol"
)

const GoalModelURI = "goalclock://model"

// GoalModelResource describes the assumptions behind every number the tools return
func GoalModelResource() protocol.Resource {
	return protocol.Resource{
		URI:         GoalModelURI,
		Name:        "goal_model",
		Description: "Assumptions of the over/under goal timing model",
		MimeType:    "text/markdown",
		Metadata: map[string]any{
			"match_minutes": goals.MatchMinutes,
			"lambda_lower":  goals.LambdaLower,
			"lambda_upper":  goals.LambdaUpper,
			"default_line":  goals.DefaultLine,
			"min_odds":      goals.MinOdds,
		},
	}
}

// GetResources returns all available resources
func GetResources() []protocol.Resource {
	return []protocol.Resource{GoalModelResource()}
}

// ReadResource returns the content behind a resource URI
func ReadResource(uri string) (*protocol.ResourceContent, error) {
	logger.Info("Handling resource read for:", uri)

	switch uri {
	case GoalModelURI:
		return &protocol.ResourceContent{
			URI:      uri,
			MimeType: "text/markdown",
			Text:     goalModelText(),
		}, nil
	default:
		return nil, fmt.Errorf("resource not found: %s", uri)
	}
}

func goalModelText() string {
	return fmt.Sprintf(`# Goal timing model

- Over/under decimal odds are turned into probabilities by proportional normalisation,
  which removes the bookmaker margin.
- Total goals follow a Poisson distribution with rate λ per %g minute match.
  No stoppage time and no change of scoring rate within the match.
- λ is the value in [%g, %g] whose probability of beating the line (default %g) is closest
  to the over probability. Prices outside that range are answered with the nearest bound.
- The k'th goal is expected at 90k/λ minutes, with median ln(2)·90k/λ minutes.
- Odds below %.2f are rejected, so are lines above %g and more than %d projected goals.
`, goals.MatchMinutes, goals.LambdaLower, goals.LambdaUpper, goals.DefaultLine, goals.MinOdds, goals.MaxLine, goals.MaxMaxGoals)
}
