package tools

import (
	"fmt"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
	"github.com/richard-senior/goalclock/pkg/protocol"
	"github.com/richard-senior/goalclock/pkg/report"
)

// GoalTimesTool returns the goal_times tool definition
func GoalTimesTool() protocol.Tool {
	return protocol.Tool{
		Name: "goal_times",
		Description: `
		Estimates when goals will come in a football match from the bookmaker's over/under odds.
		Removes the bookmaker margin, finds the Poisson goal rate (expected goals per match) that
		matches the over probability and projects the mean and median minute of each goal.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"over_odds": {
					Type:        "number",
					Description: "Decimal odds for over the goals line, eg 2.10",
					Minimum:     ptr(goals.MinOdds),
				},
				"under_odds": {
					Type:        "number",
					Description: "Decimal odds for under the goals line, eg 1.75",
					Minimum:     ptr(goals.MinOdds),
				},
				"line": {
					Type:        "number",
					Description: "The goals line, normally a half goal such as 2.5",
					Minimum:     ptr(0),
					Maximum:     ptr(goals.MaxLine),
					Default:     goals.DefaultLine,
				},
				"max_goals": {
					Type:        "integer",
					Description: "How many goals to project",
					Minimum:     ptr(1),
					Maximum:     ptr(goals.MaxMaxGoals),
					Default:     goals.DefaultMaxGoals,
				},
				"format": {
					Type:        "string",
					Description: "json for the numbers only, markdown to also get a rendered results table",
					Enum:        []string{report.FormatJSON, report.FormatMarkdown},
					Default:     report.FormatMarkdown,
				},
			},
			Required: []string{"over_odds", "under_odds"},
		},
	}
}

// HandleGoalTimesTool runs the whole odds -> goal times pipeline
func HandleGoalTimesTool(params any) (any, error) {
	logger.Info("Handling goal_times tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	req, err := requestFromParams(m)
	if err != nil {
		return nil, err
	}

	res, err := goals.Calculate(currentSettings().ApplyDefaults(req))
	if err != nil {
		logger.Warn("Rejected goal_times request", err)
		return nil, err
	}
	logger.Info("Calculated goal times", res.POver, res.Lambda)

	format, _ := m["format"].(string)
	if format == "" {
		format = report.FormatMarkdown
	}
	switch format {
	case report.FormatJSON:
		return res, nil
	case report.FormatMarkdown:
		md, err := report.Markdown(res)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"result":   res,
			"markdown": md,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func requestFromParams(m map[string]any) (goals.Request, error) {
	var req goals.Request
	var err error
	if req.OverOdds, err = requiredFloat(m, "over_odds"); err != nil {
		return req, err
	}
	if req.UnderOdds, err = requiredFloat(m, "under_odds"); err != nil {
		return req, err
	}
	if req.Line, _, err = floatParam(m, "line"); err != nil {
		return req, err
	}
	if req.MaxGoals, _, err = intParam(m, "max_goals"); err != nil {
		return req, err
	}
	return req, nil
}

// ImpliedProbabilityTool returns the implied_probability tool definition
func ImpliedProbabilityTool() protocol.Tool {
	return protocol.Tool{
		Name:        "implied_probability",
		Description: "Converts over/under decimal odds into margin free probabilities and reports the bookmaker margin",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"over_odds":  {Type: "number", Description: "Decimal odds for the over", Minimum: ptr(goals.MinOdds)},
				"under_odds": {Type: "number", Description: "Decimal odds for the under", Minimum: ptr(goals.MinOdds)},
			},
			Required: []string{"over_odds", "under_odds"},
		},
	}
}

// HandleImpliedProbabilityTool handles the implied_probability tool invocation
func HandleImpliedProbabilityTool(params any) (any, error) {
	logger.Info("Handling implied_probability tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	over, err := requiredFloat(m, "over_odds")
	if err != nil {
		return nil, err
	}
	under, err := requiredFloat(m, "under_odds")
	if err != nil {
		return nil, err
	}
	if err := goals.ValidateOdds(over, under); err != nil {
		return nil, err
	}

	pOver, pUnder := goals.OddsPair{Over: over, Under: under}.Probabilities()
	return map[string]any{
		"p_over":    pOver,
		"p_under":   pUnder,
		"overround": goals.Overround(over, under),
	}, nil
}

// EstimateLambdaTool returns the estimate_lambda tool definition
func EstimateLambdaTool() protocol.Tool {
	return protocol.Tool{
		Name:        "estimate_lambda",
		Description: "Finds the expected goals per match whose Poisson probability of beating the line matches p_over",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"p_over": {Type: "number", Description: "Probability of the over, between 0 and 1", Minimum: ptr(0), Maximum: ptr(1)},
				"line":   {Type: "number", Description: "The goals line", Minimum: ptr(0), Maximum: ptr(goals.MaxLine), Default: goals.DefaultLine},
			},
			Required: []string{"p_over"},
		},
	}
}

// HandleEstimateLambdaTool handles the estimate_lambda tool invocation
func HandleEstimateLambdaTool(params any) (any, error) {
	logger.Info("Handling estimate_lambda tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	pOver, err := requiredFloat(m, "p_over")
	if err != nil {
		return nil, err
	}
	if pOver <= 0 || pOver >= 1 {
		return nil, fmt.Errorf("p_over must be strictly between 0 and 1, got %v", pOver)
	}
	line, ok, err := floatParam(m, "line")
	if err != nil {
		return nil, err
	}
	if !ok || line == 0 {
		line = currentSettings().DefaultLine
	}
	if err := goals.ValidateLine(line); err != nil {
		return nil, err
	}

	lambda := goals.EstimateLambda(pOver, line)
	return map[string]any{
		"lambda":      lambda,
		"line":        line,
		"fitted_tail": goals.TailProb(line, lambda),
		"at_bound":    lambda-goals.LambdaLower < 1e-3 || goals.LambdaUpper-lambda < 1e-3,
	}, nil
}

// GoalTimeTableTool returns the goal_time_table tool definition
func GoalTimeTableTool() protocol.Tool {
	return protocol.Tool{
		Name:        "goal_time_table",
		Description: "Projects the mean and median minute of goals 1..max_goals for a given expected goals per match",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"lambda":    {Type: "number", Description: "Expected goals per 90 minutes, greater than 0"},
				"max_goals": {Type: "integer", Description: "How many goals to project", Minimum: ptr(1), Maximum: ptr(goals.MaxMaxGoals), Default: goals.DefaultMaxGoals},
			},
			Required: []string{"lambda"},
		},
	}
}

// HandleGoalTimeTableTool handles the goal_time_table tool invocation
func HandleGoalTimeTableTool(params any) (any, error) {
	logger.Info("Handling goal_time_table tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	lambda, err := requiredFloat(m, "lambda")
	if err != nil {
		return nil, err
	}
	if lambda <= 0 {
		return nil, fmt.Errorf("lambda must be greater than 0, got %v", lambda)
	}
	maxGoals, ok, err := intParam(m, "max_goals")
	if err != nil {
		return nil, err
	}
	if !ok || maxGoals == 0 {
		maxGoals = currentSettings().DefaultMaxGoals
	}
	if err := goals.ValidateMaxGoals(maxGoals); err != nil {
		return nil, err
	}

	return map[string]any{
		"lambda": lambda,
		"times":  goals.ExpectedGoalTimes(lambda, maxGoals),
	}, nil
}
