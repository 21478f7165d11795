package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Config holds the settings of a mining session.
type Config struct {
	Difficulty   int           // leading zero hex digits required
	Workers      int           // goroutines racing per block
	RoundTimeout time.Duration // 0 means rounds never time out
	MaxAttempts  int           // mining rounds per payload before giving up
	DumpPath     string        // JSON dump of the chain, empty to skip
	Plot         bool          // render per-block mining durations
}

func Default() Config {
	return Config{
		Difficulty:  4,
		Workers:     runtime.NumCPU(),
		MaxAttempts: 3,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Difficulty < 0 || c.Difficulty > 64 {
		errs = append(errs, fmt.Errorf("difficulty must be between 0 and 64, got %d", c.Difficulty))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.RoundTimeout < 0 {
		errs = append(errs, fmt.Errorf("round timeout must not be negative, got %v", c.RoundTimeout))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}
	return errors.Join(errs...)
}
