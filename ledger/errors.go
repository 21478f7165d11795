package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrStaleTip          = errors.New("candidate does not extend the current tip")
	ErrDuplicateHash     = errors.New("candidate hash already in chain")
	ErrBadIndex          = errors.New("candidate index does not follow the tip")
	ErrHashMismatch      = errors.New("candidate hash does not match its contents")
	ErrInsufficientWork  = errors.New("candidate hash does not meet difficulty")
	ErrInvalidDifficulty = errors.New("difficulty must be between 0 and 64")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

// RejectReason tells why Append refused a candidate.
type RejectReason int

const (
	StaleTip RejectReason = iota + 1
	DuplicateHash
	BadIndex
	HashMismatch
	InsufficientWork
)

func (r RejectReason) String() string {
	switch r {
	case StaleTip:
		return "stale tip"
	case DuplicateHash:
		return "duplicate hash"
	case BadIndex:
		return "bad index"
	case HashMismatch:
		return "hash mismatch"
	case InsufficientWork:
		return "insufficient work"
	default:
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
}

func (r RejectReason) sentinel() error {
	switch r {
	case StaleTip:
		return ErrStaleTip
	case DuplicateHash:
		return ErrDuplicateHash
	case BadIndex:
		return ErrBadIndex
	case HashMismatch:
		return ErrHashMismatch
	case InsufficientWork:
		return ErrInsufficientWork
	default:
		return nil
	}
}

// RejectError is returned by Append. It matches the sentinel of its reason
// with errors.Is.
type RejectError struct {
	Reason RejectReason
	Index  int64
	Hash   string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("block %d rejected: %v", e.Index, e.Reason.sentinel())
}

func (e *RejectError) Unwrap() error {
	return e.Reason.sentinel()
}

func reject(reason RejectReason, candidate Block) error {
	return &RejectError{Reason: reason, Index: candidate.Index, Hash: candidate.Hash}
}
