package tools

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/pkg/goals"
)

func TestHandleGoalTimesTool(t *testing.T) {
	out, err := HandleGoalTimesTool(map[string]any{
		"over_odds":  2.10,
		"under_odds": "1.75",
	})
	require.NoError(t, err)

	m := out.(map[string]any)
	res := m["result"].(*goals.Result)
	assert.InDelta(t, 0.454545, res.POver, 1e-6)
	assert.Len(t, res.Times, 3)
	assert.Contains(t, m["markdown"], "45.45%")
}

func TestHandleGoalTimesToolJSON(t *testing.T) {
	out, err := HandleGoalTimesTool(map[string]any{
		"over_odds":  1.6,
		"under_odds": 2.3,
		"line":       1.5,
		"max_goals":  float64(5),
		"format":     "json",
	})
	require.NoError(t, err)
	res := out.(*goals.Result)
	assert.Equal(t, 1.5, res.Request.Line)
	assert.Len(t, res.Times, 5)
}

func TestHandleGoalTimesToolErrors(t *testing.T) {
	_, err := HandleGoalTimesTool(nil)
	assert.Error(t, err)

	_, err = HandleGoalTimesTool("2.10")
	assert.Error(t, err)

	_, err = HandleGoalTimesTool(map[string]any{"over_odds": 2.1})
	assert.EqualError(t, err, "under_odds parameter is required")

	_, err = HandleGoalTimesTool(map[string]any{"over_odds": 1.0, "under_odds": 3.0})
	assert.True(t, errors.Is(err, goals.ErrInvalidOdds))

	_, err = HandleGoalTimesTool(map[string]any{"over_odds": "two", "under_odds": 3.0})
	assert.Error(t, err)

	_, err = HandleGoalTimesTool(map[string]any{"over_odds": 2.1, "under_odds": 1.75, "max_goals": 2.5})
	assert.Error(t, err)

	_, err = HandleGoalTimesTool(map[string]any{"over_odds": 2.1, "under_odds": 1.75, "format": "pdf"})
	assert.EqualError(t, err, "unsupported format: pdf")
}

func TestConfiguredDefaults(t *testing.T) {
	s := config.Default()
	s.DefaultMaxGoals = 4
	Configure(s)
	t.Cleanup(func() { Configure(config.Default()) })

	out, err := HandleGoalTimesTool(map[string]any{"over_odds": 2.1, "under_odds": 1.75, "format": "json"})
	require.NoError(t, err)
	assert.Len(t, out.(*goals.Result).Times, 4)
}

func TestHandleImpliedProbabilityTool(t *testing.T) {
	out, err := HandleImpliedProbabilityTool(map[string]any{"over_odds": 2.10, "under_odds": 1.75})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.InDelta(t, 0.454545, m["p_over"], 1e-6)
	assert.InDelta(t, 0.545455, m["p_under"], 1e-6)
	assert.InDelta(t, 0.047619, m["overround"], 1e-6)

	_, err = HandleImpliedProbabilityTool(map[string]any{"over_odds": 0.5, "under_odds": 1.75})
	assert.Error(t, err)
}

func TestHandleEstimateLambdaTool(t *testing.T) {
	out, err := HandleEstimateLambdaTool(map[string]any{"p_over": 0.454545})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.InDelta(t, 2.494, m["lambda"], 0.005)
	assert.Equal(t, 2.5, m["line"])
	assert.Equal(t, false, m["at_bound"])

	out, err = HandleEstimateLambdaTool(map[string]any{"p_over": 0.99})
	require.NoError(t, err)
	assert.Equal(t, true, out.(map[string]any)["at_bound"])

	_, err = HandleEstimateLambdaTool(map[string]any{"p_over": 1.2})
	assert.Error(t, err)
}

func TestHandleGoalTimeTableTool(t *testing.T) {
	out, err := HandleGoalTimeTableTool(map[string]any{"lambda": 2.7})
	require.NoError(t, err)
	times := out.(map[string]any)["times"].([]goals.GoalTime)
	require.Len(t, times, 3)
	assert.Equal(t, goals.GoalTime{Goal: 1, MeanMinute: 33.33, MedianMinute: 23.10}, times[0])

	_, err = HandleGoalTimeTableTool(map[string]any{"lambda": 0})
	assert.Error(t, err)
	_, err = HandleGoalTimeTableTool(map[string]any{"lambda": 2.7, "max_goals": -1})
	assert.Error(t, err)
}

func TestHandleGoalTimeTableToolRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   error
	}{
		{"max goals above cap", map[string]any{"lambda": 2.7, "max_goals": float64(goals.MaxMaxGoals + 1)}, goals.ErrInvalidMaxGoals},
		{"huge max goals", map[string]any{"lambda": 2.7, "max_goals": 1e15}, nil},
		{"max goals beyond int64", map[string]any{"lambda": 2.7, "max_goals": 1e19}, nil},
		{"nan lambda", map[string]any{"lambda": "NaN"}, nil},
		{"inf lambda", map[string]any{"lambda": "+Inf"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out any
			var err error
			require.NotPanics(t, func() { out, err = HandleGoalTimeTableTool(tt.params) })
			require.Error(t, err)
			assert.Nil(t, out)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestHandleGoalTimesToolRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   error
	}{
		{"huge max goals", map[string]any{"over_odds": 2.1, "under_odds": 1.75, "max_goals": 1e15}, nil},
		{"max goals above cap", map[string]any{"over_odds": 2.1, "under_odds": 1.75, "max_goals": 21}, goals.ErrInvalidMaxGoals},
		{"huge line", map[string]any{"over_odds": 2.1, "under_odds": 1.75, "line": 1e10}, goals.ErrInvalidLine},
		{"inf odds", map[string]any{"over_odds": "Inf", "under_odds": 1.75}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = HandleGoalTimesTool(tt.params) })
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestHandleEstimateLambdaToolRejectsNonFinite(t *testing.T) {
	_, err := HandleEstimateLambdaTool(map[string]any{"p_over": "NaN"})
	assert.EqualError(t, err, "p_over must be a finite number")

	_, err = HandleEstimateLambdaTool(map[string]any{"p_over": 0.5, "line": 1e9})
	assert.ErrorIs(t, err, goals.ErrInvalidLine)
}

func TestToolDefinitions(t *testing.T) {
	for _, tool := range []struct {
		name     string
		required []string
		got      []string
	}{
		{"goal_times", []string{"over_odds", "under_odds"}, GoalTimesTool().InputSchema.Required},
		{"implied_probability", []string{"over_odds", "under_odds"}, ImpliedProbabilityTool().InputSchema.Required},
		{"estimate_lambda", []string{"p_over"}, EstimateLambdaTool().InputSchema.Required},
		{"goal_time_table", []string{"lambda"}, GoalTimeTableTool().InputSchema.Required},
	} {
		assert.Equal(t, tool.required, tool.got, tool.name)
	}
	assert.Equal(t, goals.MinOdds, *GoalTimesTool().InputSchema.Properties["over_odds"].Minimum)
	assert.Equal(t, float64(goals.MaxMaxGoals), *GoalTimesTool().InputSchema.Properties["max_goals"].Maximum)
	assert.Equal(t, goals.MaxLine, *EstimateLambdaTool().InputSchema.Properties["line"].Maximum)
}
