package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
)

// Settings contains every tunable of the goalclock binaries.
// The goal model itself has no knobs, these only shape the input surfaces.
type Settings struct {
	// === LOGGING ===
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)
	LogFile  string `yaml:"log_file"`  // where the MCP server logs (default: /tmp/goalclock.log)

	// === HTTP SURFACE ===
	HTTPAddr    string   `yaml:"http_addr"`    // listen address for serve-http (default: :8090)
	CORSOrigins []string `yaml:"cors_origins"` // origins allowed to call the JSON API

	// === CALCULATION DEFAULTS ===
	DefaultLine     float64 `yaml:"default_line"`      // goals line when a request omits it (default: 2.5)
	DefaultMaxGoals int     `yaml:"default_max_goals"` // goals projected when a request omits it (default: 3)

	// Values pre-filled in the HTML form
	FormOverOdds  float64 `yaml:"form_over_odds"`  // default: 2.10
	FormUnderOdds float64 `yaml:"form_under_odds"` // default: 1.75
}

// Environment variables, all optional
const (
	EnvConfigFile      = "GOALCLOCK_CONFIG"
	EnvLogLevel        = "GOALCLOCK_LOG_LEVEL"
	EnvLogFile         = "GOALCLOCK_LOG_FILE"
	EnvHTTPAddr        = "GOALCLOCK_HTTP_ADDR"
	EnvCORSOrigins     = "GOALCLOCK_CORS_ORIGINS"
	EnvDefaultLine     = "GOALCLOCK_DEFAULT_LINE"
	EnvDefaultMaxGoals = "GOALCLOCK_DEFAULT_MAX_GOALS"
)

// Default returns the settings used when nothing is configured
func Default() *Settings {
	return &Settings{
		LogLevel:        "info",
		LogFile:         logger.DefaultLogFile,
		HTTPAddr:        ":8090",
		CORSOrigins:     []string{"http://localhost:3000"},
		DefaultLine:     goals.DefaultLine,
		DefaultMaxGoals: goals.DefaultMaxGoals,
		FormOverOdds:    2.10,
		FormUnderOdds:   1.75,
	}
}

// Load builds the settings from, in increasing precedence: the defaults, the YAML
// file named by path (or $GOALCLOCK_CONFIG), then a .env file and the environment.
// A missing .env file is not an error, a missing YAML file that was asked for is.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	s := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := s.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (s *Settings) applyEnv() error {
	s.LogLevel = envStr(EnvLogLevel, s.LogLevel)
	s.LogFile = envStr(EnvLogFile, s.LogFile)
	s.HTTPAddr = envStr(EnvHTTPAddr, s.HTTPAddr)

	if v := os.Getenv(EnvCORSOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		s.CORSOrigins = origins
	}

	if v := os.Getenv(EnvDefaultLine); v != "" {
		line, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultLine, err)
		}
		s.DefaultLine = line
	}
	if v := os.Getenv(EnvDefaultMaxGoals); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultMaxGoals, err)
		}
		s.DefaultMaxGoals = n
	}
	return nil
}

// Validate ensures the settings can be used to build valid requests
func (s *Settings) Validate() error {
	if err := goals.ValidateLine(s.DefaultLine); err != nil {
		return fmt.Errorf("default_line: %w", err)
	}
	if s.DefaultLine == 0 {
		return fmt.Errorf("default_line must be greater than 0")
	}
	if err := goals.ValidateMaxGoals(s.DefaultMaxGoals); err != nil {
		return fmt.Errorf("default_max_goals: %w", err)
	}
	if err := goals.ValidateOdds(s.FormOverOdds, s.FormUnderOdds); err != nil {
		return fmt.Errorf("form odds: %w", err)
	}
	if s.HTTPAddr == "" {
		return fmt.Errorf("http_addr must not be empty")
	}
	return nil
}

// ApplyDefaults fills the zero Line and MaxGoals of a request from the settings
func (s *Settings) ApplyDefaults(req goals.Request) goals.Request {
	if req.Line == 0 {
		req.Line = s.DefaultLine
	}
	if req.MaxGoals == 0 {
		req.MaxGoals = s.DefaultMaxGoals
	}
	return req
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
