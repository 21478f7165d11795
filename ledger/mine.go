package ledger

// Canceller arbitrates a mining race. Claim must return true to exactly one
// caller; IsClaimed lets the others notice and stop.
type Canceller interface {
	Claim() bool
	IsClaimed() bool
}

// Status is the terminal state of a mining attempt.
type Status int

const (
	Cancelled Status = iota
	Solved
)

func (s Status) String() string {
	switch s {
	case Solved:
		return "solved"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome reports how TryMine ended. Nonce and Hash are the block's values at
// the time it stopped; Attempts counts the hashes computed.
type Outcome struct {
	Status   Status
	Nonce    int64
	Hash     string
	Attempts uint64
}

// TryMine searches nonces upward one by one until the hash meets difficulty
// or cancel is claimed by someone else.
func (b *Block) TryMine(difficulty int, cancel Canceller) Outcome {
	return b.TryMineStride(difficulty, 1, cancel)
}

// TryMineStride is TryMine advancing the nonce by stride on every attempt.
//
// Finding a solution and winning the race are one step: the block reports
// Solved only if its own Claim succeeds. A valid hash found after another
// party claimed is discarded and reported as Cancelled.
func (b *Block) TryMineStride(difficulty int, stride int64, cancel Canceller) Outcome {
	if stride < 1 {
		stride = 1
	}
	var attempts uint64
	for {
		if b.MeetsDifficulty(difficulty) {
			if cancel.Claim() {
				return Outcome{Status: Solved, Nonce: b.Nonce, Hash: b.Hash, Attempts: attempts}
			}
			return Outcome{Status: Cancelled, Nonce: b.Nonce, Hash: b.Hash, Attempts: attempts}
		}
		if cancel.IsClaimed() {
			return Outcome{Status: Cancelled, Nonce: b.Nonce, Hash: b.Hash, Attempts: attempts}
		}
		b.SetNonce(b.Nonce + stride)
		attempts++
	}
}
