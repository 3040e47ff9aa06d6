// Package badger implements a persistent store.Store using Badger as the
// storage driver.
package badger

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/solwatch/solwatch/solana"
	"github.com/solwatch/solwatch/store"
)

const (
	accountPrefix   = "sol:acct:"
	signaturePrefix = "sol:sig:"
)

// Open returns a store.Store implementation using Badger as the storage
// driver. The store should be .Close()'d after use.
func Open(opts badger.Options) (*badgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

var _ store.Store = &badgerStore{}

type badgerStore struct {
	db *badger.DB
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

func (s *badgerStore) SetAccount(snapshot store.AccountSnapshot) error {
	key := append([]byte(accountPrefix), snapshot.Key[:]...)
	return s.db.Update(func(txn *badger.Txn) error {
		return setItem(txn, key, snapshot)
	})
}

func (s *badgerStore) GetAccount(acct solana.PubKey) (store.AccountSnapshot, error) {
	key := append([]byte(accountPrefix), acct[:]...)
	var snapshot store.AccountSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		return getItem(txn, key, &snapshot)
	})
	if err == badger.ErrKeyNotFound {
		return snapshot, store.ErrNotFound
	}
	return snapshot, err
}

func (s *badgerStore) SetSignature(status store.SignatureStatus) error {
	key := append([]byte(signaturePrefix), status.Signature[:]...)
	return s.db.Update(func(txn *badger.Txn) error {
		return setItem(txn, key, status)
	})
}

func (s *badgerStore) GetSignature(sig solana.Signature) (store.SignatureStatus, error) {
	key := append([]byte(signaturePrefix), sig[:]...)
	var status store.SignatureStatus
	err := s.db.View(func(txn *badger.Txn) error {
		return getItem(txn, key, &status)
	})
	if err == badger.ErrKeyNotFound {
		return status, store.ErrNotFound
	}
	return status, err
}
