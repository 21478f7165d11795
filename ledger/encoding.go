package ledger

import (
	"encoding/hex"
	"fmt"

	"go.dedis.ch/kyber/v4/suites"
	"go.dedis.ch/protobuf"
)

// suite provides the hash function used for block identity. Ed25519 hashes
// with SHA-256.
var suite = suites.MustFind("Ed25519")

// header is the canonical, hashed view of a block. Field order is part of the
// encoding and must not change.
type header struct {
	Index     int64
	PrevHash  string
	Timestamp int64
	Payload   string
	Nonce     int64
}

func (b Block) header() *header {
	return &header{
		Index:     b.Index,
		PrevHash:  b.PrevHash,
		Timestamp: b.Timestamp,
		Payload:   b.Payload,
		Nonce:     b.Nonce,
	}
}

// encode returns the canonical byte encoding of h.
func encode(h *header) ([]byte, error) {
	data, err := protobuf.Encode(h)
	if err != nil {
		return nil, fmt.Errorf("failed to encode block header: %w", err)
	}
	return data, nil
}

func digest(h *header) string {
	data, err := encode(h)
	if err != nil {
		// header only holds integers and strings
		panic(err)
	}
	hash := suite.Hash()
	hash.Write(data)
	return hex.EncodeToString(hash.Sum(nil))
}
