package config

import (
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEMPEST_TEST_HOST", "example")
	if got := GetEnv("TEMPEST_TEST_HOST", "fallback"); got != "example" {
		t.Errorf("GetEnv() = %q, want example", got)
	}
	if got := GetEnv("TEMPEST_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv() = %q, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEMPEST_TEST_LIVES", "7")
	t.Setenv("TEMPEST_TEST_BAD", "seven")
	if got := GetEnvInt("TEMPEST_TEST_LIVES", 3); got != 7 {
		t.Errorf("GetEnvInt() = %d, want 7", got)
	}
	if got := GetEnvInt("TEMPEST_TEST_BAD", 3); got != 3 {
		t.Errorf("GetEnvInt() with bad value = %d, want 3", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEMPEST_TEST_TIMEOUT", "250ms")
	t.Setenv("TEMPEST_TEST_NEG", "-1s")
	if got := GetEnvDuration("TEMPEST_TEST_TIMEOUT", time.Second); got != 250*time.Millisecond {
		t.Errorf("GetEnvDuration() = %v, want 250ms", got)
	}
	if got := GetEnvDuration("TEMPEST_TEST_NEG", time.Second); got != time.Second {
		t.Errorf("GetEnvDuration() with negative value = %v, want 1s", got)
	}
}
