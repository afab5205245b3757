package processor

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
)

func init() {
	logger.SetOutput(&bytes.Buffer{})
}

func TestProcessRequestText(t *testing.T) {
	out, err := ProcessRequest([]byte(`{"over_odds": 2.10, "under_odds": 1.75}`))
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "45.45%")
	assert.Contains(t, text, "Median (min)")
	assert.Equal(t, 3, strings.Count(text, "\n1 ")+strings.Count(text, "\n2 ")+strings.Count(text, "\n3 "))
}

func TestProcessRequestJSON(t *testing.T) {
	out, err := ProcessRequest([]byte(`{"over_odds": 2.10, "under_odds": 1.75, "max_goals": 5, "format": "json"}`))
	require.NoError(t, err)

	var res goals.Result
	require.NoError(t, json.Unmarshal(out, &res))
	assert.InDelta(t, 0.454545, res.POver, 1e-6)
	assert.InDelta(t, 2.494, res.Lambda, 0.005)
	assert.Len(t, res.Times, 5)
	assert.Equal(t, goals.DefaultLine, res.Request.Line)
}

func TestProcessRequestYAML(t *testing.T) {
	out, err := ProcessRequest([]byte("over_odds: 1.90\nunder_odds: 1.90\nline: 1.5\nformat: markdown\n"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "50.00%")
	assert.Contains(t, string(out), "| Goal")
}

func TestProcessRequestHTML(t *testing.T) {
	out, err := ProcessRequest([]byte(`{"over_odds": 2.10, "under_odds": 1.75, "format": "HTML"}`))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Find("tbody tr").Length())
}

func TestProcessRequestUsesSettings(t *testing.T) {
	s := config.Default()
	s.DefaultMaxGoals = 2
	out, err := ProcessRequestWithSettings(s, []byte(`{"over_odds": 2.10, "under_odds": 1.75, "format": "json"}`))
	require.NoError(t, err)

	var res goals.Result
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Len(t, res.Times, 2)
}

func TestProcessRequestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"malformed", `{"over_odds": `, CodeInvalidRequest},
		{"odds too low", `{"over_odds": 1.0, "under_odds": 1.75}`, CodeInvalidInput},
		{"missing odds", `{"under_odds": 1.75}`, CodeInvalidInput},
		{"negative line", `{"over_odds": 2.1, "under_odds": 1.75, "line": -1}`, CodeInvalidInput},
		{"huge max goals", `{"over_odds": 2.1, "under_odds": 1.75, "max_goals": 1000000000}`, CodeInvalidInput},
		{"huge line", `line: 1e10
over_odds: 2.1
under_odds: 1.75`, CodeInvalidInput},
		{"bad format", `{"over_odds": 2.1, "under_odds": 1.75, "format": "pdf"}`, CodeUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ProcessRequest([]byte(tt.input))
			require.Error(t, err)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			assert.Equal(t, tt.code, reqErr.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(out, &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestProcessRequestWrapsSentinel(t *testing.T) {
	_, err := ProcessRequest([]byte(`{"over_odds": 2.1, "under_odds": 1.75, "max_goals": -2}`))
	assert.ErrorIs(t, err, goals.ErrInvalidMaxGoals)
}
