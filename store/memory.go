package store

import (
	"sync"

	"github.com/solwatch/solwatch/solana"
)

// MemoryStore implements an ephemeral in-memory store. Useful for testing
// and for watch sessions that don't need persistence.
func MemoryStore() *memoryStore {
	return &memoryStore{
		accounts:   map[solana.PubKey]AccountSnapshot{},
		signatures: map[solana.Signature]SignatureStatus{},
	}
}

// Assert Store implementation
var _ Store = &memoryStore{}

type memoryStore struct {
	mu sync.Mutex

	accounts   map[solana.PubKey]AccountSnapshot
	signatures map[solana.Signature]SignatureStatus
}

func (s *memoryStore) SetAccount(snapshot AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[snapshot.Key] = snapshot
	return nil
}

func (s *memoryStore) GetAccount(key solana.PubKey) (AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.accounts[key]
	if !ok {
		return AccountSnapshot{}, ErrNotFound
	}
	return snapshot, nil
}

func (s *memoryStore) SetSignature(status SignatureStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signatures[status.Signature] = status
	return nil
}

func (s *memoryStore) GetSignature(sig solana.Signature) (SignatureStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.signatures[sig]
	if !ok {
		return SignatureStatus{}, ErrNotFound
	}
	return status, nil
}

func (s *memoryStore) Close() error {
	return nil
}
