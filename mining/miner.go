package mining

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

var (
	ErrInvalidWorkers    = errors.New("worker count must be at least 1")
	ErrInvalidDifficulty = errors.New("difficulty must be between 0 and 64")
	ErrNoSolution        = errors.New("round ended without a solution")
)

// Miner races a fixed number of workers on a block template.
type Miner struct {
	workers    int
	difficulty int
	logger     *slog.Logger
	stats      *Stats
}

// Result describes a finished round. Block is nil when no worker solved the
// puzzle. Outcomes holds one entry per worker, in worker order.
type Result struct {
	Block    *ledger.Block
	Outcomes []ledger.Outcome
	Elapsed  time.Duration
}

// Attempts is the number of hashes computed by all workers of the round.
func (r Result) Attempts() uint64 {
	var total uint64
	for _, o := range r.Outcomes {
		total += o.Attempts
	}
	return total
}

// NewMiner validates its arguments before anything is started.
func NewMiner(workers, difficulty int, opts ...Option) (*Miner, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	if difficulty < 0 || difficulty > ledger.MaxDifficulty {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDifficulty, difficulty)
	}
	o := defaultOptions()
	for _, opt := range opts {
		o = opt(o)
	}
	return &Miner{
		workers:    workers,
		difficulty: difficulty,
		logger:     o.logger,
		stats:      o.stats,
	}, nil
}

func (m *Miner) Workers() int    { return m.workers }
func (m *Miner) Difficulty() int { return m.difficulty }

// MineConcurrently mines template with workers goroutines and returns the
// winning block. See Miner.Mine.
func MineConcurrently(ctx context.Context, template ledger.Block, difficulty, workers int) (*ledger.Block, error) {
	m, err := NewMiner(workers, difficulty)
	if err != nil {
		return nil, err
	}
	res, err := m.Mine(ctx, template)
	if err != nil {
		return nil, err
	}
	return res.Block, nil
}

// Mine runs one round. Every worker searches its own copy of template,
// worker k starting at nonce template.Nonce+k and stepping by the number of
// workers, and all of them share a fresh Signal. The first worker that both
// finds a valid hash and claims the signal wins; the others notice the claim
// and stop. Mine returns only after every worker has stopped.
//
// There is no built-in timeout. When ctx is done before a solution is found
// the signal is claimed on the workers' behalf and Mine returns
// ErrNoSolution.
func (m *Miner) Mine(ctx context.Context, template ledger.Block) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrNoSolution, err)
	}

	signal := NewSignal()
	outcomes := make([]ledger.Outcome, m.workers)
	blocks := make([]ledger.Block, m.workers)
	start := time.Now()

	m.logger.Debug("mining round started",
		"index", template.Index, "difficulty", m.difficulty, "workers", m.workers)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			if signal.Claim() {
				m.logger.Warn("mining round stopped before a solution", "index", template.Index, "cause", ctx.Err())
			}
		case <-done:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			b := template.Clone()
			b.SetNonce(template.Nonce + int64(id))
			outcomes[id] = b.TryMineStride(m.difficulty, int64(m.workers), signal)
			blocks[id] = b
			m.logger.Debug("worker finished",
				"worker", id, "status", outcomes[id].Status, "attempts", outcomes[id].Attempts)
		}(i)
	}
	wg.Wait()
	close(done)

	res := Result{Outcomes: outcomes, Elapsed: time.Since(start)}
	winner := -1
	for i, o := range outcomes {
		if o.Status == ledger.Solved {
			winner = i
			b := blocks[i]
			res.Block = &b
			break
		}
	}

	if m.stats != nil {
		m.stats.Record(RoundStat{
			Index:    template.Index,
			Workers:  m.workers,
			Winner:   winner,
			Attempts: res.Attempts(),
			Duration: res.Elapsed,
			Solved:   res.Block != nil,
		})
	}

	if res.Block == nil {
		return res, fmt.Errorf("%w: block %d", ErrNoSolution, template.Index)
	}

	m.logger.Info("block mined",
		"index", res.Block.Index,
		"nonce", res.Block.Nonce,
		"hash", res.Block.Hash,
		"worker", winner,
		"elapsed", res.Elapsed,
		"hashrate", hashRate(res.Attempts(), res.Elapsed))
	return res, nil
}

func hashRate(attempts uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(attempts) / elapsed.Seconds()
}
