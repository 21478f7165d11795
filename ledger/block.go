package ledger

import "strings"

// GenesisPrevHash is the previous hash carried by the genesis block.
const GenesisPrevHash = "0"

// Block is a single hash-linked record of the chain.
//
// Hash always equals Digest() of the current fields: the nonce is only moved
// together with the hash while mining, and a block stored in a Blockchain is
// never mutated again.
type Block struct {
	Index     int64  `json:"index"`
	PrevHash  string `json:"prev_hash"`
	Timestamp int64  `json:"timestamp"`
	Payload   string `json:"payload"`
	Nonce     int64  `json:"nonce"`
	Hash      string `json:"hash"`
}

// NewBlock creates an unsealed block with nonce 0 and its hash already computed.
func NewBlock(index int64, prevHash string, timestamp int64, payload string) Block {
	b := Block{
		Index:     index,
		PrevHash:  prevHash,
		Timestamp: timestamp,
		Payload:   payload,
	}
	b.Hash = b.Digest()
	return b
}

// Digest computes the hex encoded hash of the block fields, ignoring the
// stored Hash.
func (b Block) Digest() string {
	return digest(b.header())
}

// MeetsDifficulty reports whether the stored hash starts with at least
// difficulty '0' hex characters.
func (b Block) MeetsDifficulty(difficulty int) bool {
	return meetsDifficulty(b.Hash, difficulty)
}

// Clone returns an independent copy of the block.
func (b Block) Clone() Block {
	return b
}

// SetNonce changes the nonce and recomputes the hash with it.
func (b *Block) SetNonce(nonce int64) {
	b.Nonce = nonce
	b.Hash = b.Digest()
}

func meetsDifficulty(hash string, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hash) < difficulty {
		return false
	}
	return strings.Count(hash[:difficulty], "0") == difficulty
}
