package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
	"github.com/richard-senior/goalclock/pkg/report"
)

// maxBodyBytes bounds JSON request bodies, a Request is a handful of numbers
const maxBodyBytes = 1 << 16

// Handler contains dependencies for HTTP handlers
type Handler struct {
	settings *config.Settings
}

// NewHandler creates a new handler
func NewHandler(s *config.Settings) *Handler {
	if s == nil {
		s = config.Default()
	}
	return &Handler{settings: s}
}

// ErrorResponse is the body of every non 2xx JSON response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "goalclock",
	})
}

// CalculateGoalTimes runs the pipeline for a JSON goals.Request
func (h *Handler) CalculateGoalTimes(w http.ResponseWriter, r *http.Request) {
	var req goals.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), err)
		return
	}

	res, err := goals.Calculate(h.settings.ApplyDefaults(req))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	logger.Info("Calculated goal times", res.POver, res.Lambda)
	respondJSON(w, http.StatusOK, res)
}

// pageData feeds the form page
type pageData struct {
	OverOdds  string
	UnderOdds string
	Line      string
	MinOdds   float64
	MaxLine   float64
	Message   string
	Results   template.HTML
}

// Form shows the odds input form filled with the configured defaults
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, pageData{
		OverOdds:  formatOdds(h.settings.FormOverOdds),
		UnderOdds: formatOdds(h.settings.FormUnderOdds),
		Line:      strconv.FormatFloat(h.settings.DefaultLine, 'f', -1, 64),
		MinOdds:   goals.MinOdds,
		MaxLine:   goals.MaxLine,
	})
}

// Submit calculates from the posted form and shows the results under it
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form", err)
		return
	}

	data := pageData{
		OverOdds:  strings.TrimSpace(r.PostFormValue("over_odds")),
		UnderOdds: strings.TrimSpace(r.PostFormValue("under_odds")),
		Line:      strings.TrimSpace(r.PostFormValue("line")),
		MinOdds:   goals.MinOdds,
		MaxLine:   goals.MaxLine,
	}

	req, err := parseForm(data)
	if err == nil {
		var res *goals.Result
		if res, err = goals.Calculate(h.settings.ApplyDefaults(req)); err == nil {
			data.Results, err = report.HTML(res)
		}
	}
	if err != nil {
		logger.Warn("Rejected form submission", err)
		data.Message = correctiveMessage(err)
		h.renderPage(w, http.StatusBadRequest, data)
		return
	}
	h.renderPage(w, http.StatusOK, data)
}

func parseForm(data pageData) (goals.Request, error) {
	var req goals.Request
	var err error
	if req.OverOdds, err = parseNumber(goals.ErrInvalidOdds, "over odds", data.OverOdds); err != nil {
		return req, err
	}
	if req.UnderOdds, err = parseNumber(goals.ErrInvalidOdds, "under odds", data.UnderOdds); err != nil {
		return req, err
	}
	if data.Line != "" {
		if req.Line, err = parseNumber(goals.ErrInvalidLine, "line", data.Line); err != nil {
			return req, err
		}
		// a zero Request line means the default, on the form it is a typo
		if req.Line <= 0 {
			return req, fmt.Errorf("%w: line must be greater than 0", goals.ErrInvalidLine)
		}
	}
	return req, nil
}

func parseNumber(sentinel error, name, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", sentinel, name)
	}
	return f, nil
}

func correctiveMessage(err error) string {
	switch {
	case errors.Is(err, goals.ErrInvalidOdds):
		return fmt.Sprintf("Please enter decimal odds of at least %.2f for both over and under. (%v)", goals.MinOdds, err)
	case errors.Is(err, goals.ErrInvalidLine):
		return fmt.Sprintf("Please enter a goals line greater than 0 and at most %g, eg 2.5.", goals.MaxLine)
	default:
		return err.Error()
	}
}

func formatOdds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error("Failed to render page", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("error encoding response", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		logger.Warn(message, err)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Goal Timing Estimator</title>
</head>
<body>
<h1>Goal Timing Estimator</h1>
<p>Estimate when goals will come from the over/under odds.</p>
<form method="post" action="/">
<label>Over odds <input type="number" name="over_odds" min="{{.MinOdds}}" step="0.01" value="{{.OverOdds}}" required></label>
<label>Under odds <input type="number" name="under_odds" min="{{.MinOdds}}" step="0.01" value="{{.UnderOdds}}" required></label>
<label>Line <input type="number" name="line" min="0.5" max="{{.MaxLine}}" step="0.5" value="{{.Line}}"></label>
<button type="submit">Calculate</button>
</form>
{{- if .Message}}
<p class="error">{{.Message}}</p>
{{- end}}
{{.Results}}
</body>
</html>
`))
