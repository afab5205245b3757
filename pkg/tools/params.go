package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/richard-senior/goalclock/internal/config"
)

var (
	settingsMu sync.RWMutex
	settings   = config.Default()
)

// Configure sets the defaults used when a tool call omits line or max_goals
func Configure(s *config.Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings = s
}

func currentSettings() *config.Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings
}

func paramsMap(params any) (map[string]any, error) {
	if params == nil {
		return nil, fmt.Errorf("no params given")
	}
	m, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid parameters format")
	}
	return m, nil
}

// floatParam reads a number, numeric strings such as "2.10" are accepted too.
// ok is false when the parameter is absent.
func floatParam(m map[string]any, name string) (v float64, ok bool, err error) {
	raw, present := m[name]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, true, fmt.Errorf("%s must be a number, got %q", name, n)
		}
	default:
		return 0, true, fmt.Errorf("%s must be a number", name)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, fmt.Errorf("%s must be a finite number", name)
	}
	return v, true, nil
}

func requiredFloat(m map[string]any, name string) (float64, error) {
	v, ok, err := floatParam(m, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	return v, nil
}

func intParam(m map[string]any, name string) (int, bool, error) {
	v, ok, err := floatParam(m, name)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v != math.Trunc(v) {
		return 0, true, fmt.Errorf("%s must be a whole number, got %v", name, v)
	}
	// int(v) is undefined outside the int range
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, true, fmt.Errorf("%s is out of range, got %v", name, v)
	}
	return int(v), true, nil
}

func ptr(v float64) *float64 {
	return &v
}
