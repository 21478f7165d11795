package ledger

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// testSignal is a minimal Canceller for tests of this package.
type testSignal struct {
	claimed atomic.Bool
}

func (s *testSignal) Claim() bool     { return s.claimed.CompareAndSwap(false, true) }
func (s *testSignal) IsClaimed() bool { return s.claimed.Load() }

// lostRace never lets its caller win, but does not look claimed when polled.
type lostRace struct{}

func (lostRace) Claim() bool     { return false }
func (lostRace) IsClaimed() bool { return false }

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Unix(1_700_000_000, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestChain(t *testing.T, difficulty int) *Blockchain {
	t.Helper()
	bc, err := NewBlockchain(difficulty, WithClock(tickingClock()))
	if err != nil {
		t.Fatalf("failed to create blockchain: %v", err)
	}
	return bc
}

// mineNext mines a block extending the current tip.
func mineNext(t *testing.T, bc *Blockchain, payload string) Block {
	t.Helper()
	b := bc.Template(payload)
	out := b.TryMine(bc.Difficulty(), &testSignal{})
	if out.Status != Solved {
		t.Fatalf("expected mining to be solved, got %v", out.Status)
	}
	return b
}

func appendN(t *testing.T, bc *Blockchain, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := bc.Append(mineNext(t, bc, "payload "+string(rune('A'+i)))); err != nil {
			t.Fatalf("unexpected error at block %d: %v", i+1, err)
		}
	}
}

func TestNewBlockchainGenesis(t *testing.T) {
	bc := newTestChain(t, 2)

	if bc.Len() != 1 {
		t.Fatalf("expected 1 block (genesis), got %d", bc.Len())
	}
	genesis := bc.Tip()
	if genesis.Index != 0 {
		t.Fatalf("genesis index should be 0, got %d", genesis.Index)
	}
	if genesis.PrevHash != GenesisPrevHash {
		t.Fatalf("genesis PrevHash should be %q, got %s", GenesisPrevHash, genesis.PrevHash)
	}
	if genesis.Nonce != 0 {
		t.Fatalf("genesis nonce should be 0, got %d", genesis.Nonce)
	}
	if genesis.Payload != "Genesis Block" {
		t.Fatalf("unexpected genesis payload %q", genesis.Payload)
	}
	if genesis.Hash == "" || genesis.Hash != genesis.Digest() {
		t.Fatalf("genesis hash %q does not match its digest", genesis.Hash)
	}
}

func TestNewBlockchainInvalidDifficulty(t *testing.T) {
	for _, d := range []int{-1, MaxDifficulty + 1} {
		if _, err := NewBlockchain(d); !errors.Is(err, ErrInvalidDifficulty) {
			t.Fatalf("difficulty %d: expected ErrInvalidDifficulty, got %v", d, err)
		}
	}
}

func TestWithGenesisPayload(t *testing.T) {
	bc, err := NewBlockchain(1, WithGenesisPayload("hello"))
	if err != nil {
		t.Fatal(err)
	}
	if bc.Tip().Payload != "hello" {
		t.Fatalf("expected genesis payload hello, got %q", bc.Tip().Payload)
	}
}

// TestAppendMinedBlock mines "A" at difficulty 2 with a single worker and
// appends it.
func TestAppendMinedBlock(t *testing.T) {
	bc := newTestChain(t, 2)

	b := mineNext(t, bc, "A")
	if !strings.HasPrefix(b.Hash, "00") {
		t.Fatalf("expected hash with two leading zeros, got %s", b.Hash)
	}
	if err := bc.Append(b); err != nil {
		t.Fatalf("unexpected append error: %v", err)
	}
	if bc.Len() != 2 {
		t.Fatalf("expected 2 blocks, got %d", bc.Len())
	}
	if bc.Tip().Hash != b.Hash {
		t.Fatal("appended block should be the new tip")
	}
}

func TestTemplateExtendsTip(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 2)

	tip := bc.Tip()
	tmpl := bc.Template("next")
	if tmpl.Index != tip.Index+1 {
		t.Fatalf("expected index %d, got %d", tip.Index+1, tmpl.Index)
	}
	if tmpl.PrevHash != tip.Hash {
		t.Fatalf("template should reference tip hash %s, got %s", tip.Hash, tmpl.PrevHash)
	}
	if tmpl.Nonce != 0 {
		t.Fatalf("template nonce should be 0, got %d", tmpl.Nonce)
	}
}

func TestAppendSameBlockTwiceIsDuplicate(t *testing.T) {
	bc := newTestChain(t, 2)
	b := mineNext(t, bc, "A")

	if err := bc.Append(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := bc.Append(b)
	if !errors.Is(err, ErrDuplicateHash) {
		t.Fatalf("expected ErrDuplicateHash, got %v", err)
	}
	var rejected *RejectError
	if !errors.As(err, &rejected) || rejected.Reason != DuplicateHash {
		t.Fatalf("expected *RejectError with DuplicateHash, got %#v", err)
	}
	if bc.Len() != 2 {
		t.Fatalf("chain should be unchanged, got %d blocks", bc.Len())
	}
}

func TestAppendStaleTip(t *testing.T) {
	bc := newTestChain(t, 2)
	first := mineNext(t, bc, "first")
	stale := mineNext(t, bc, "second")

	if err := bc.Append(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := bc.Append(stale)
	if !errors.Is(err, ErrStaleTip) {
		t.Fatalf("expected ErrStaleTip, got %v", err)
	}
	if bc.Len() != 2 {
		t.Fatalf("chain should be unchanged, got %d blocks", bc.Len())
	}
}

func TestAppendBadIndex(t *testing.T) {
	bc := newTestChain(t, 1)
	tip := bc.Tip()
	b := NewBlock(tip.Index+5, tip.Hash, 1, "skip")
	b.TryMine(1, &testSignal{})

	if err := bc.Append(b); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("expected ErrBadIndex, got %v", err)
	}
}

func TestAppendHashMismatch(t *testing.T) {
	bc := newTestChain(t, 1)
	b := mineNext(t, bc, "honest")
	b.Payload = "tampered"

	if err := bc.Append(b); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
	if bc.Len() != 1 {
		t.Fatalf("chain should be unchanged, got %d blocks", bc.Len())
	}
}

func TestAppendInsufficientWork(t *testing.T) {
	bc := newTestChain(t, 3)
	b := bc.Template("lazy")
	// find a nonce whose hash does not start with three zeros
	for b.MeetsDifficulty(3) {
		b.SetNonce(b.Nonce + 1)
	}

	if err := bc.Append(b); !errors.Is(err, ErrInsufficientWork) {
		t.Fatalf("expected ErrInsufficientWork, got %v", err)
	}
}

func TestConcurrentAppendsFromSameTip(t *testing.T) {
	bc := newTestChain(t, 1)
	n := 8
	candidates := make([]Block, n)
	for i := range candidates {
		candidates[i] = mineNext(t, bc, "candidate "+string(rune('a'+i)))
	}

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for _, c := range candidates {
		wg.Add(1)
		go func(c Block) {
			defer wg.Done()
			errs <- bc.Append(c)
		}(c)
	}
	wg.Wait()
	close(errs)

	accepted := 0
	for err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrStaleTip):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted block, got %d", accepted)
	}
	if bc.Len() != 2 {
		t.Fatalf("expected 2 blocks, got %d", bc.Len())
	}
}

func TestValidateCleanChain(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 4)

	for i := 0; i < 3; i++ {
		report := bc.Validate()
		if !report.Valid {
			t.Fatalf("expected valid chain, broken indices %v", report.BrokenIndices)
		}
		if report.BrokenIndices == nil || len(report.BrokenIndices) != 0 {
			t.Fatalf("expected empty broken index list, got %v", report.BrokenIndices)
		}
	}
}

func TestValidateCorruptedPrevHash(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 3)

	bc.blocks[2].PrevHash = "corrupted"

	report := bc.Validate()
	if report.Valid {
		t.Fatal("expected invalid chain")
	}
	if len(report.BrokenIndices) != 1 || report.BrokenIndices[0] != 2 {
		t.Fatalf("expected broken indices [2], got %v", report.BrokenIndices)
	}
	// never fixed
	if bc.blocks[2].PrevHash != "corrupted" {
		t.Fatal("Validate must not modify the chain")
	}
}

func TestValidateReportsEveryBrokenLink(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 5)

	bc.blocks[1].PrevHash = "x"
	bc.blocks[4].PrevHash = "y"

	report := bc.Validate()
	if report.Valid || len(report.BrokenIndices) != 2 ||
		report.BrokenIndices[0] != 1 || report.BrokenIndices[1] != 4 {
		t.Fatalf("expected broken indices [1 4], got %v", report.BrokenIndices)
	}
}

func TestVerifyValidChain(t *testing.T) {
	bc := newTestChain(t, 2)
	appendN(t, bc, 3)

	if err := bc.Verify(); err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	for _, b := range bc.Blocks()[1:] {
		if !b.MeetsDifficulty(2) {
			t.Fatalf("block %d hash %s does not meet difficulty", b.Index, b.Hash)
		}
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 3)

	bc.blocks[2].Payload = "rewritten history"

	err := bc.Verify()
	if !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}
	// linkage is still intact, so Validate does not see it
	if !bc.Validate().Valid {
		t.Fatal("Validate only checks linkage")
	}
}

func TestVerifyInvalidGenesis(t *testing.T) {
	bc := newTestChain(t, 1)
	bc.blocks[0].PrevHash = "1"

	if err := bc.Verify(); err == nil {
		t.Fatal("expected error for invalid genesis")
	}
}

func TestVerifyIndexDiscontinuity(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 2)

	bc.blocks[2].Index = 7

	if err := bc.Verify(); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("expected ErrBadIndex, got %v", err)
	}
}

func TestBlocksReturnsCopy(t *testing.T) {
	bc := newTestChain(t, 1)
	appendN(t, bc, 2)

	blocks := bc.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	blocks[1].Payload = "changed"
	b, err := bc.GetByIndex(1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Payload == "changed" {
		t.Fatal("exported blocks must not alias the chain")
	}
}

func TestGetByIndexOutOfRange(t *testing.T) {
	bc := newTestChain(t, 1)

	for _, i := range []int{-1, 1, 100} {
		if _, err := bc.GetByIndex(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("index %d: expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
}
