package ledger

import (
	"io"
	"log/slog"
	"time"
)

type options struct {
	logger         *slog.Logger
	clock          func() time.Time
	genesisPayload string
}

type Option func(options) options

func defaultOptions() options {
	return options{
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:          time.Now,
		genesisPayload: "Genesis Block",
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

// WithClock sets the source of block timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o options) options {
		if clock != nil {
			o.clock = clock
		}
		return o
	}
}

func WithGenesisPayload(payload string) Option {
	return func(o options) options {
		o.genesisPayload = payload
		return o
	}
}
