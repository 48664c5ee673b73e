package config

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestLoadEnvString(t *testing.T) {
	t.Run("TC-1: should return env value when set", func(t *testing.T) {
		t.Setenv("TEST_STRING", "from-env")
		if got := LoadEnvString("TEST_STRING", "default"); got != "from-env" {
			t.Errorf("got %q, want %q", got, "from-env")
		}
	})

	t.Run("TC-2: should return default when unset", func(t *testing.T) {
		if got := LoadEnvString("TEST_STRING_UNSET", "default"); got != "default" {
			t.Errorf("got %q, want %q", got, "default")
		}
	})
}

func TestLoadEnvWithFallback(t *testing.T) {
	rejectFoo := func(s string) error {
		if s == "foo" {
			return fmt.Errorf("foo is not allowed")
		}
		return nil
	}

	t.Run("TC-1: should accept valid value", func(t *testing.T) {
		t.Setenv("TEST_FALLBACK", "bar")
		result := LoadEnvWithFallback("TEST_FALLBACK", "default", rejectFoo)
		if result.Value.(string) != "bar" {
			t.Errorf("got %v, want bar", result.Value)
		}
		if result.FallbackApplied {
			t.Error("fallback should not be applied for a valid value")
		}
	})

	t.Run("TC-2: should fall back with warning on validation failure", func(t *testing.T) {
		t.Setenv("TEST_FALLBACK", "foo")
		result := LoadEnvWithFallback("TEST_FALLBACK", "default", rejectFoo)
		if result.Value.(string) != "default" {
			t.Errorf("got %v, want default", result.Value)
		}
		if !result.FallbackApplied {
			t.Error("fallback should be applied")
		}
		if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "falling back to default") {
			t.Errorf("unexpected warnings: %v", result.Warnings)
		}
	})

	t.Run("TC-3: should use default silently when unset", func(t *testing.T) {
		result := LoadEnvWithFallback("TEST_FALLBACK_UNSET", "default", rejectFoo)
		if result.Value.(string) != "default" {
			t.Errorf("got %v, want default", result.Value)
		}
		if result.FallbackApplied || len(result.Warnings) != 0 {
			t.Errorf("unset variable should not count as fallback: %+v", result)
		}
	})

	t.Run("TC-4: should accept any value with nil validator", func(t *testing.T) {
		t.Setenv("TEST_FALLBACK", "anything")
		result := LoadEnvWithFallback("TEST_FALLBACK", "default", nil)
		if result.Value.(string) != "anything" || result.FallbackApplied {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestLoadEnvDuration(t *testing.T) {
	inRange := func(d time.Duration) error {
		return ValidateDuration(d, time.Second, time.Hour)
	}

	t.Run("TC-1: should parse valid duration", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "30s")
		result := LoadEnvDuration("TEST_DURATION", 5*time.Minute, inRange)
		if result.Value.(time.Duration) != 30*time.Second {
			t.Errorf("got %v, want 30s", result.Value)
		}
		if result.FallbackApplied {
			t.Error("fallback should not be applied")
		}
	})

	t.Run("TC-2: should fall back on parse error", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "not-a-duration")
		result := LoadEnvDuration("TEST_DURATION", 5*time.Minute, inRange)
		if result.Value.(time.Duration) != 5*time.Minute {
			t.Errorf("got %v, want 5m", result.Value)
		}
		if !result.FallbackApplied || len(result.Warnings) != 1 {
			t.Errorf("expected fallback with warning: %+v", result)
		}
	})

	t.Run("TC-3: should fall back when outside validator range", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "48h")
		result := LoadEnvDuration("TEST_DURATION", 5*time.Minute, inRange)
		if result.Value.(time.Duration) != 5*time.Minute {
			t.Errorf("got %v, want 5m", result.Value)
		}
		if !result.FallbackApplied {
			t.Error("fallback should be applied")
		}
	})

	t.Run("TC-4: should use default silently when unset", func(t *testing.T) {
		result := LoadEnvDuration("TEST_DURATION_UNSET", 5*time.Minute, inRange)
		if result.Value.(time.Duration) != 5*time.Minute || result.FallbackApplied {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestLoadEnvInt(t *testing.T) {
	port := func(v int) error {
		return ValidateIntRange(v, 1024, 65535)
	}

	t.Run("TC-1: should parse valid integer", func(t *testing.T) {
		t.Setenv("TEST_INT", "9090")
		result := LoadEnvInt("TEST_INT", 8080, port)
		if result.Value.(int) != 9090 || result.FallbackApplied {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("TC-2: should fall back on non-numeric value", func(t *testing.T) {
		t.Setenv("TEST_INT", "abc")
		result := LoadEnvInt("TEST_INT", 8080, port)
		if result.Value.(int) != 8080 {
			t.Errorf("got %v, want 8080", result.Value)
		}
		if !result.FallbackApplied || !strings.Contains(result.Warnings[0], "invalid integer format") {
			t.Errorf("expected integer-format warning: %+v", result)
		}
	})

	t.Run("TC-3: should fall back when outside validator range", func(t *testing.T) {
		t.Setenv("TEST_INT", "80")
		result := LoadEnvInt("TEST_INT", 8080, port)
		if result.Value.(int) != 8080 || !result.FallbackApplied {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("TC-4: should use default silently when unset", func(t *testing.T) {
		result := LoadEnvInt("TEST_INT_UNSET", 8080, port)
		if result.Value.(int) != 8080 || result.FallbackApplied {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestLoadEnvBool(t *testing.T) {
	t.Run("TC-1: should accept standard true spellings", func(t *testing.T) {
		for _, v := range []string{"1", "t", "T", "true", "TRUE", "True"} {
			t.Setenv("TEST_BOOL", v)
			result := LoadEnvBool("TEST_BOOL", false)
			if result.Value.(bool) != true || result.FallbackApplied {
				t.Errorf("value %q: unexpected result %+v", v, result)
			}
		}
	})

	t.Run("TC-2: should accept standard false spellings", func(t *testing.T) {
		for _, v := range []string{"0", "f", "F", "false", "FALSE", "False"} {
			t.Setenv("TEST_BOOL", v)
			result := LoadEnvBool("TEST_BOOL", true)
			if result.Value.(bool) != false || result.FallbackApplied {
				t.Errorf("value %q: unexpected result %+v", v, result)
			}
		}
	})

	t.Run("TC-3: should fall back on unrecognized value", func(t *testing.T) {
		t.Setenv("TEST_BOOL", "yes")
		result := LoadEnvBool("TEST_BOOL", false)
		if result.Value.(bool) != false {
			t.Errorf("got %v, want false", result.Value)
		}
		if !result.FallbackApplied || !strings.Contains(result.Warnings[0], "invalid boolean format") {
			t.Errorf("expected boolean-format warning: %+v", result)
		}
	})

	t.Run("TC-4: should use default silently when unset", func(t *testing.T) {
		result := LoadEnvBool("TEST_BOOL_UNSET", true)
		if result.Value.(bool) != true || result.FallbackApplied {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}
