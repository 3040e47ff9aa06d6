// Package store persists chain observations made while watching: account
// snapshots and signature confirmations.
package store

import (
	"errors"
	"time"

	"github.com/solwatch/solwatch/solana"
)

// ErrNotFound is returned when the requested record has not been seen yet.
var ErrNotFound = errors.New("record not found")

// AccountSnapshot is the observed state of an account at a slot.
type AccountSnapshot struct {
	Key        solana.PubKey
	Slot       uint64
	Lamports   uint64
	RentEpoch  uint64
	Executable bool
	Owner      solana.PubKey
	Data       []byte
	UpdatedAt  time.Time
}

// SignatureStatus is the observed confirmation state of a transaction
// signature.
type SignatureStatus struct {
	Signature solana.Signature
	Slot      uint64
	Confirmed bool
	// TxErr holds the transaction's error object as JSON, empty on
	// success.
	TxErr     string
	UpdatedAt time.Time
}

// Store is the storage interface used by the watcher. A Store must be safe
// for concurrent use.
type Store interface {
	// SetAccount records the latest snapshot of an account.
	SetAccount(snapshot AccountSnapshot) error
	// GetAccount returns the latest recorded snapshot of an account, or
	// ErrNotFound.
	GetAccount(key solana.PubKey) (AccountSnapshot, error)

	// SetSignature records the confirmation state of a signature.
	SetSignature(status SignatureStatus) error
	// GetSignature returns the recorded state of a signature, or
	// ErrNotFound.
	GetSignature(sig solana.Signature) (SignatureStatus, error)

	// Close releases any resources held by the store.
	Close() error
}
