package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/goals"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 2.5, s.DefaultLine)
	assert.Equal(t, 3, s.DefaultMaxGoals)
	assert.Equal(t, 2.10, s.FormOverOdds)
	assert.Equal(t, 1.75, s.FormUnderOdds)
	assert.Equal(t, logger.DefaultLogFile, s.LogFile)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalclock.yaml")
	yml := "log_level: debug\ndefault_line: 1.5\ndefault_max_goals: 5\ncors_origins:\n  - https://odds.example\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	t.Setenv(EnvDefaultMaxGoals, "4")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9000")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 1.5, s.DefaultLine)
	assert.Equal(t, 4, s.DefaultMaxGoals) // env wins over the file
	assert.Equal(t, "127.0.0.1:9000", s.HTTPAddr)
	assert.Equal(t, []string{"https://odds.example"}, s.CORSOrigins)
}

func TestLoadFromEnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_line: 3.5\n"), 0644))
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvCORSOrigins, "http://a, http://b ,")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3.5, s.DefaultLine)
	assert.Equal(t, []string{"http://a", "http://b"}, s.CORSOrigins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("default_line: [1"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv(EnvDefaultLine, "two and a half")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.DefaultMaxGoals = 0
	assert.ErrorIs(t, s.Validate(), goals.ErrInvalidMaxGoals)

	s = Default()
	s.DefaultMaxGoals = goals.MaxMaxGoals + 1
	assert.ErrorIs(t, s.Validate(), goals.ErrInvalidMaxGoals)

	s = Default()
	s.DefaultLine = -1
	assert.ErrorIs(t, s.Validate(), goals.ErrInvalidLine)

	s = Default()
	s.DefaultLine = 1e10
	assert.ErrorIs(t, s.Validate(), goals.ErrInvalidLine)

	s = Default()
	s.FormUnderOdds = 0.9
	assert.ErrorIs(t, s.Validate(), goals.ErrInvalidOdds)
}

func TestApplyDefaults(t *testing.T) {
	s := Default()
	s.DefaultLine = 1.5
	req := s.ApplyDefaults(goals.Request{OverOdds: 2, UnderOdds: 1.8})
	assert.Equal(t, 1.5, req.Line)
	assert.Equal(t, 3, req.MaxGoals)

	req = s.ApplyDefaults(goals.Request{OverOdds: 2, UnderOdds: 1.8, Line: 0.5, MaxGoals: 1})
	assert.Equal(t, 0.5, req.Line)
	assert.Equal(t, 1, req.MaxGoals)
}
