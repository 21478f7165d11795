package mining

import (
	"io"
	"log/slog"
)

type options struct {
	logger *slog.Logger
	stats  *Stats
}

type Option func(options) options

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o options) options {
		if logger != nil {
			o.logger = logger
		}
		return o
	}
}

// WithStats records every round in s. Rounds are not recorded by default.
func WithStats(s *Stats) Option {
	return func(o options) options {
		o.stats = s
		return o
	}
}
