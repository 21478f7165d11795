package mining

import "sync/atomic"

// Signal is a one-shot cancellation flag shared by the workers of a round.
// The first successful Claim designates the winner; the signal can never be
// reset, so every round needs a new one.
type Signal struct {
	claimed atomic.Bool
}

func NewSignal() *Signal {
	return &Signal{}
}

// Claim moves the signal from open to claimed. It returns true to exactly one
// caller.
func (s *Signal) Claim() bool {
	return s.claimed.CompareAndSwap(false, true)
}

// IsClaimed reports whether someone already claimed the signal.
func (s *Signal) IsClaimed() bool {
	return s.claimed.Load()
}
