package config

import (
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Workers < 1 {
		t.Fatalf("expected at least one worker, got %d", c.Workers)
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	c := Config{Difficulty: 65, Workers: 0, RoundTimeout: -1, MaxAttempts: 0}

	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"difficulty", "workers", "round timeout", "max attempts"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error %q does not mention %s", err, field)
		}
	}
}
