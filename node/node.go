package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/luca-patrignani/pow-ledger/ledger"
	"github.com/luca-patrignani/pow-ledger/mining"
)

// ErrTooManyAttempts is returned by Submit when every attempt lost against a
// block appended by someone else.
var ErrTooManyAttempts = errors.New("payload not appended: chain kept moving")

// Node turns payloads into appended blocks using one chain and one miner.
type Node struct {
	chain       *ledger.Blockchain
	miner       *mining.Miner
	maxAttempts int
	logger      *slog.Logger
}

type option func(Node) Node

func New(chain *ledger.Blockchain, miner *mining.Miner, opts ...option) *Node {
	n := Node{
		chain:       chain,
		miner:       miner,
		maxAttempts: 3,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		n = opt(n)
	}
	return &n
}

func WithLogger(logger *slog.Logger) option {
	return func(n Node) Node {
		if logger != nil {
			n.logger = logger
		}
		return n
	}
}

// WithMaxAttempts bounds how many times Submit mines a payload again after
// a stale tip rejection. Values below 1 are ignored.
func WithMaxAttempts(attempts int) option {
	return func(n Node) Node {
		if attempts >= 1 {
			n.maxAttempts = attempts
		}
		return n
	}
}

func (n *Node) Chain() *ledger.Blockchain { return n.chain }

// Submit mines payload on top of the current tip and appends the winning
// block. If the chain moved on while mining, the payload is mined again on
// the new tip. Any other rejection, and a round ended without a solution,
// is returned as is.
func (n *Node) Submit(ctx context.Context, payload string) (ledger.Block, error) {
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		template := n.chain.Template(payload)
		res, err := n.miner.Mine(ctx, template)
		if err != nil {
			return ledger.Block{}, fmt.Errorf("failed to mine block %d: %w", template.Index, err)
		}

		err = n.chain.Append(*res.Block)
		if err == nil {
			return *res.Block, nil
		}
		if !errors.Is(err, ledger.ErrStaleTip) {
			return ledger.Block{}, err
		}
		n.logger.Info("tip moved while mining, retrying", "index", template.Index, "attempt", attempt)
	}
	return ledger.Block{}, fmt.Errorf("%w after %d attempts", ErrTooManyAttempts, n.maxAttempts)
}

// SubmitAll submits payloads in order and stops at the first failure. It
// returns the blocks appended so far.
func (n *Node) SubmitAll(ctx context.Context, payloads []string) ([]ledger.Block, error) {
	blocks := make([]ledger.Block, 0, len(payloads))
	for i, p := range payloads {
		b, err := n.Submit(ctx, p)
		if err != nil {
			return blocks, fmt.Errorf("payload %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
