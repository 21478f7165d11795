// Package mining runs the proof-of-work race for the next block.
//
// A round starts one goroutine per worker. Each worker owns a private copy of
// the block template and searches its own slice of the nonce space, so the
// search state is never shared. The only shared state is a Signal: the
// worker whose Claim succeeds is the single winner, and every other worker
// stops as soon as it sees the signal claimed.
//
// Mine blocks until all workers have stopped. A round never times out on its
// own; cancel the context to stop it without a solution.
package mining
