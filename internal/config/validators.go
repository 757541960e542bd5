package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Validator normalizes a value. An error makes Load fall back to the
// default. An empty value always means the default.
type Validator func(key, value, defaultValue string) (normalized string, err error)

var (
	validatorsMu sync.RWMutex
	validators   = map[string]Validator{}
)

// RegisterValidator registers v for key. Registering a key twice panics.
func RegisterValidator(key string, v Validator) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	if _, exists := validators[key]; exists {
		panic(fmt.Sprintf("validator already registered for key: %s", key))
	}
	validators[key] = v
}

func getValidator(key string) Validator {
	validatorsMu.RLock()
	defer validatorsMu.RUnlock()
	return validators[key]
}

// orDefault wraps check so empty values resolve to the default.
func orDefault(check func(value string) (string, error)) Validator {
	return func(_, value, defaultValue string) (string, error) {
		if value == "" {
			return defaultValue, nil
		}
		return check(value)
	}
}

// PositiveIntValidator accepts integers above zero.
func PositiveIntValidator() Validator {
	return orDefault(func(value string) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return "", fmt.Errorf("%q is not a positive integer", value)
		}
		return strconv.Itoa(n), nil
	})
}

// EnumValidator accepts one of allowed, case-insensitively, and returns it
// lower-cased.
func EnumValidator(allowed ...string) Validator {
	return orDefault(func(value string) (string, error) {
		v := strings.ToLower(strings.TrimSpace(value))
		for _, a := range allowed {
			if v == a {
				return v, nil
			}
		}
		return "", fmt.Errorf("%q is not one of %s", value, strings.Join(allowed, ", "))
	})
}

// BoolValidator accepts 1/0, true/false, yes/no and on/off.
func BoolValidator() Validator {
	return orDefault(func(value string) (string, error) {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "1", "true", "yes", "on":
			return "true", nil
		case "0", "false", "no", "off":
			return "false", nil
		}
		return "", fmt.Errorf("%q is not a boolean", value)
	})
}

// DurationValidator accepts positive Go durations such as 30s or 1m and
// returns them in canonical form.
func DurationValidator() Validator {
	return orDefault(func(value string) (string, error) {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d <= 0 {
			return "", fmt.Errorf("%q is not a positive duration such as 30s or 5m", value)
		}
		return d.String(), nil
	})
}

// HexColorValidator accepts #rgb and #rrggbb colors, lower-cased.
func HexColorValidator() Validator {
	return orDefault(func(value string) (string, error) {
		v := strings.ToLower(strings.TrimSpace(value))
		if (len(v) != 4 && len(v) != 7) || v[0] != '#' {
			return "", fmt.Errorf("%q is not a #rgb or #rrggbb color", value)
		}
		if _, err := strconv.ParseUint(v[1:], 16, 32); err != nil {
			return "", fmt.Errorf("%q is not a #rgb or #rrggbb color", value)
		}
		return v, nil
	})
}

func initValidators() {
	for _, key := range []string{"tab_limit", "drag_threshold", "logging_max_files", "hooks_max_async"} {
		RegisterValidator(key, PositiveIntValidator())
	}
	for _, key := range []string{"liveness_interval", "fetch_timeout", "hooks_async_timeout"} {
		RegisterValidator(key, DurationValidator())
	}
	for _, key := range []string{
		"open_in_new_window", "reverse_order", "open_next_to_parent", "show_context_menu",
		"apply_exclusions_on_copy", "remove_duplicates_in_selection", "check_duplicates_on_copy",
		"use_history", "use_copy_history", "auto_inject",
		"hooks_enabled", "hooks_async", "logging_enabled", "debug", "quiet",
	} {
		RegisterValidator(key, BoolValidator())
	}

	RegisterValidator("history_backend", EnumValidator("sqlite", "memory"))
	RegisterValidator("selection_style", EnumValidator("dashed-blue", "dashed-red", "solid-green", "subtle-gray"))
	RegisterValidator("selection_box_style", EnumValidator("solid", "dashed", "dotted", "subtle"))
	RegisterValidator("highlight_style", EnumValidator("classic-yellow", "underline", "outline", "inverse"))
	RegisterValidator("logging_level", EnumValidator("debug", "info", "warn", "error"))
	RegisterValidator("hooks_failure_mode", EnumValidator("abort", "warn", "ignore"))
	RegisterValidator("selection_box_color", HexColorValidator())
}
