package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
	"github.com/richard-senior/goalclock/pkg/report"
)

// Request is a single CLI calculation. Input may be JSON or YAML.
type Request struct {
	goals.Request `yaml:",inline"`
	Format        string `json:"format,omitempty" yaml:"format,omitempty"` // text (default), json, markdown or html
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error codes of ErrorResponse
const (
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidInput      = "invalid_input"
	CodeUnsupportedFormat = "unsupported_format"
	CodeInternal          = "internal_error"
)

// RequestError is returned alongside the rendered ErrorResponse
type RequestError struct {
	Code string
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// createErrorResponse renders the error body and the matching error
func createErrorResponse(code string, err error) ([]byte, error) {
	var response ErrorResponse
	response.Error.Code = code
	response.Error.Message = err.Error()

	body, merr := json.MarshalIndent(response, "", "  ")
	if merr != nil {
		return nil, merr
	}
	return body, &RequestError{Code: code, Err: err}
}

// ProcessRequest processes a request using the built in defaults
func ProcessRequest(input []byte) ([]byte, error) {
	return ProcessRequestWithSettings(config.Default(), input)
}

// ProcessRequestWithSettings parses a request, runs the goal pipeline and renders the
// result in the requested format. On failure the returned bytes hold an ErrorResponse.
func ProcessRequestWithSettings(s *config.Settings, input []byte) ([]byte, error) {
	request, err := ParseRequest(input)
	if err != nil {
		logger.Error("Failed to parse input", err)
		return createErrorResponse(CodeInvalidRequest, err)
	}
	return Execute(s, request)
}

// ParseRequest decodes a JSON or YAML request
func ParseRequest(input []byte) (Request, error) {
	var request Request
	// YAML is a superset of JSON so one decoder covers both
	if err := yaml.Unmarshal(input, &request); err != nil {
		return request, fmt.Errorf("invalid input: %w", err)
	}
	return request, nil
}

// Execute runs an already parsed request
func Execute(s *config.Settings, request Request) ([]byte, error) {
	format := strings.ToLower(strings.TrimSpace(request.Format))
	if format == "" {
		format = report.FormatText
	}

	logger.Info("Processing request", request.OverOdds, request.UnderOdds)

	res, err := goals.Calculate(s.ApplyDefaults(request.Request))
	if err != nil {
		logger.Warn("Rejected request", err)
		code := CodeInvalidRequest
		if errors.Is(err, goals.ErrInvalidOdds) || errors.Is(err, goals.ErrInvalidLine) || errors.Is(err, goals.ErrInvalidMaxGoals) {
			code = CodeInvalidInput
		}
		return createErrorResponse(code, err)
	}

	return Render(res, format)
}

// Render writes a result in one of the report formats
func Render(res *goals.Result, format string) ([]byte, error) {
	switch format {
	case report.FormatText:
		return []byte(report.Text(res)), nil
	case report.FormatJSON:
		body, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			logger.Error("Failed to marshal response to JSON", err)
			return createErrorResponse(CodeInternal, err)
		}
		return append(body, '\n'), nil
	case report.FormatMarkdown:
		md, err := report.Markdown(res)
		if err != nil {
			return createErrorResponse(CodeInternal, err)
		}
		return []byte(md + "\n"), nil
	case report.FormatHTML:
		fragment, err := report.HTML(res)
		if err != nil {
			return createErrorResponse(CodeInternal, err)
		}
		return []byte(string(fragment) + "\n"), nil
	default:
		return createErrorResponse(CodeUnsupportedFormat, fmt.Errorf("unsupported format: %s", format))
	}
}
