package mining

import (
	"sync"
	"time"
)

// RoundStat summarizes one mining round. Winner is -1 if the round was not
// solved.
type RoundStat struct {
	Index    int64         `json:"index"`
	Workers  int           `json:"workers"`
	Winner   int           `json:"winner"`
	Attempts uint64        `json:"attempts"`
	Duration time.Duration `json:"duration"`
	Solved   bool          `json:"solved"`
}

// Stats accumulates round statistics. It is safe for concurrent use.
type Stats struct {
	mu     sync.Mutex
	rounds []RoundStat
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) Record(r RoundStat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, r)
}

// Rounds returns a copy of the recorded rounds in recording order.
func (s *Stats) Rounds() []RoundStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	rounds := make([]RoundStat, len(s.rounds))
	copy(rounds, s.rounds)
	return rounds
}

func (s *Stats) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rounds)
}

func (s *Stats) TotalAttempts() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total uint64
	for _, r := range s.rounds {
		total += r.Attempts
	}
	return total
}

// HashRate is the number of hashes per second over all recorded rounds.
func (s *Stats) HashRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var attempts uint64
	var elapsed time.Duration
	for _, r := range s.rounds {
		attempts += r.Attempts
		elapsed += r.Duration
	}
	return hashRate(attempts, elapsed)
}
