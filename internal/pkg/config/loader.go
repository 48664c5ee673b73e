// Package config provides fail-open environment variable loading.
//
// Every loader returns a usable value: when an environment variable is
// absent, malformed, or fails validation, the supplied default is applied
// and the problem is reported as a warning instead of an error. Callers
// surface warnings through logs and ConfigMetrics so a bad deploy degrades
// to known-good settings rather than crash-looping.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult carries the outcome of loading a single value.
// FallbackApplied is true when a set environment value was rejected and
// the default was used instead; Warnings explains why. An unset variable
// takes the default silently and is not treated as a fallback.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString returns the value of envKey, or defaultValue when unset
// or empty. Plain strings have no validation and produce no warnings.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string and runs it through validator.
// A rejected value falls back to defaultValue with a warning.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%s'",
				envKey, value, err, defaultValue))
		}
	}
	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a time.Duration in time.ParseDuration syntax
// (e.g. "30s", "5m", "1h30m"). Parse and validation failures both fall
// back to defaultValue.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallbackResult(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, value, err, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, value, err, defaultValue))
		}
	}
	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt loads a base-10 integer, falling back to defaultValue on
// parse or validation failure.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallbackResult(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid integer format, falling back to default '%d'",
			envKey, value, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%d'",
				envKey, value, err, defaultValue))
		}
	}
	return ConfigLoadResult{Value: parsed}
}

// LoadEnvBool loads a boolean. Accepted spellings are the strconv set:
// 1, t, T, TRUE, true, True and their false counterparts.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallbackResult(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid boolean format, expected 'true' or 'false', falling back to default '%t'",
			envKey, value, defaultValue))
	}
	return ConfigLoadResult{Value: parsed}
}

func fallbackResult(value interface{}, warning string) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           value,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}
