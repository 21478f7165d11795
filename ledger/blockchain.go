package ledger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// MaxDifficulty is the length of a hex encoded SHA-256 digest.
const MaxDifficulty = 64

// Blockchain is an append-only, hash-linked sequence of mined blocks.
// It is safe for concurrent use; appends are serialized.
type Blockchain struct {
	mu         sync.RWMutex
	blocks     []Block
	difficulty int
	clock      func() time.Time
	logger     *slog.Logger
}

// ValidationReport lists the indices whose PrevHash does not match the hash
// of the block before them.
type ValidationReport struct {
	Valid         bool  `json:"valid"`
	BrokenIndices []int `json:"broken_indices"`
}

// NewBlockchain creates a chain holding only the genesis block.
// The genesis block has index 0 and previous hash "0" and is not mined.
func NewBlockchain(difficulty int, opts ...Option) (*Blockchain, error) {
	if difficulty < 0 || difficulty > MaxDifficulty {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDifficulty, difficulty)
	}
	o := defaultOptions()
	for _, opt := range opts {
		o = opt(o)
	}

	genesis := NewBlock(0, GenesisPrevHash, o.clock().UnixNano(), o.genesisPayload)
	bc := &Blockchain{
		blocks:     []Block{genesis},
		difficulty: difficulty,
		clock:      o.clock,
		logger:     o.logger,
	}
	bc.logger.Debug("genesis block created", "hash", genesis.Hash, "difficulty", difficulty)
	return bc, nil
}

func (bc *Blockchain) Difficulty() int {
	return bc.difficulty
}

// Template returns the unsealed block that would extend the current tip.
func (bc *Blockchain) Template(payload string) Block {
	tip := bc.Tip()
	return NewBlock(tip.Index+1, tip.Hash, bc.clock().UnixNano(), payload)
}

// Tip returns the most recently appended block.
func (bc *Blockchain) Tip() Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.blocks[len(bc.blocks)-1]
}

func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// GetByIndex returns the block at position index.
func (bc *Blockchain) GetByIndex(index int) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index < 0 || index >= len(bc.blocks) {
		return Block{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return bc.blocks[index], nil
}

// Blocks returns a copy of the chain, genesis first.
func (bc *Blockchain) Blocks() []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	blocks := make([]Block, len(bc.blocks))
	copy(blocks, bc.blocks)
	return blocks
}

// Append adds a mined candidate as the new tip. The candidate must not repeat
// a hash already in the chain and must extend the current tip; it must also
// carry the next index, a hash matching its contents and enough work.
// A rejected candidate leaves the chain untouched and is reported as a
// *RejectError. Append never retries: on ErrStaleTip the caller has to build
// a new template and mine again.
func (bc *Blockchain) Append(candidate Block) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	// A block already in the chain no longer extends the tip either; report
	// it as a duplicate.
	for _, b := range bc.blocks {
		if b.Hash == candidate.Hash {
			return reject(DuplicateHash, candidate)
		}
	}
	tip := bc.blocks[len(bc.blocks)-1]
	if candidate.PrevHash != tip.Hash {
		bc.logger.Warn("block orphaned, chain moved on", "index", candidate.Index, "tip", tip.Index)
		return reject(StaleTip, candidate)
	}
	if candidate.Index != tip.Index+1 {
		return reject(BadIndex, candidate)
	}
	if candidate.Hash != candidate.Digest() {
		return reject(HashMismatch, candidate)
	}
	if !candidate.MeetsDifficulty(bc.difficulty) {
		return reject(InsufficientWork, candidate)
	}

	bc.blocks = append(bc.blocks, candidate)
	bc.logger.Info("block appended", "index", candidate.Index, "nonce", candidate.Nonce, "hash", candidate.Hash)
	return nil
}

// Validate walks the chain and reports every block whose PrevHash differs
// from the hash of its predecessor. It only reads the chain.
func (bc *Blockchain) Validate() ValidationReport {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	report := ValidationReport{Valid: true, BrokenIndices: []int{}}
	for i := 1; i < len(bc.blocks); i++ {
		if bc.blocks[i].PrevHash != bc.blocks[i-1].Hash {
			report.Valid = false
			report.BrokenIndices = append(report.BrokenIndices, i)
		}
	}
	return report
}

// Verify checks the whole chain: the genesis sentinel, and for every later
// block index continuity, linkage, hash integrity, proof of work and hash
// uniqueness. It returns the first violation found.
func (bc *Blockchain) Verify() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	genesis := bc.blocks[0]
	if genesis.Index != 0 || genesis.PrevHash != GenesisPrevHash {
		return fmt.Errorf("invalid genesis block")
	}
	if genesis.Hash != genesis.Digest() {
		return fmt.Errorf("genesis block invalid: %w", ErrHashMismatch)
	}

	seen := map[string]struct{}{genesis.Hash: {}}
	for i := 1; i < len(bc.blocks); i++ {
		if err := bc.validateBlock(bc.blocks[i], bc.blocks[i-1]); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
		if _, ok := seen[bc.blocks[i].Hash]; ok {
			return fmt.Errorf("block %d invalid: %w", i, ErrDuplicateHash)
		}
		seen[bc.blocks[i].Hash] = struct{}{}
	}
	return nil
}

func (bc *Blockchain) validateBlock(current, previous Block) error {
	if current.Index != previous.Index+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrBadIndex, previous.Index+1, current.Index)
	}
	if current.PrevHash != previous.Hash {
		return fmt.Errorf("invalid prev hash: expected %s, got %s", previous.Hash, current.PrevHash)
	}
	if expected := current.Digest(); current.Hash != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expected, current.Hash)
	}
	if !current.MeetsDifficulty(bc.difficulty) {
		return fmt.Errorf("%w: %s", ErrInsufficientWork, current.Hash)
	}
	return nil
}
