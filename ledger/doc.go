// Package ledger implements an append-only proof-of-work blockchain.
//
// # Core Components
//
// Block: a record identified by the SHA-256 digest of its canonical encoding.
// Its nonce can be searched with TryMine until the digest has enough leading
// zero hex digits.
//
// Blockchain: the ordered chain, genesis first, guarded by a single lock.
// Append accepts a mined block only if it still extends the tip and its hash
// is not already in the chain.
//
// # Integrity
//
// Validate reports every index whose previous hash does not link to its
// predecessor. Verify additionally recomputes hashes and checks proof of
// work. Neither ever modifies the chain.
//
// # Usage
//
// Ask the chain for a Template, mine it (see package mining), then Append the
// result. A StaleTip rejection means another block won in the meantime:
// build a new template and mine again.
package ledger
