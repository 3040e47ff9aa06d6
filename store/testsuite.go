package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/solwatch/solwatch/solana"
)

// TestSuite runs a suite of tests against a store implementation.
func TestSuite(t *testing.T, newStore func() Store) {
	t.Helper()
	t.Run("Account", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		key := solana.PubKey{1, 2, 3}
		if _, err := s.GetAccount(key); err != ErrNotFound {
			t.Errorf("expected not found error, got: %s", err)
		}

		snapshot := AccountSnapshot{
			Key:       key,
			Slot:      42,
			Lamports:  1000,
			Owner:     solana.SystemProgram,
			Data:      []byte("hello"),
			UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		if err := s.SetAccount(snapshot); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		got, err := s.GetAccount(key)
		if err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(got, snapshot) {
			t.Errorf("got: %v; want %v", got, snapshot)
		}

		// Overwrite with a later slot
		snapshot.Slot = 43
		snapshot.Lamports = 900
		if err := s.SetAccount(snapshot); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		got, err = s.GetAccount(key)
		if err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if got.Slot != 43 || got.Lamports != 900 {
			t.Errorf("snapshot was not overwritten: %v", got)
		}
	})

	t.Run("Signature", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		sig := solana.Signature{9, 9, 9}
		if _, err := s.GetSignature(sig); err != ErrNotFound {
			t.Errorf("expected not found error, got: %s", err)
		}

		status := SignatureStatus{
			Signature: sig,
			Slot:      77,
			Confirmed: true,
			UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
		}
		if err := s.SetSignature(status); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		got, err := s.GetSignature(sig)
		if err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(got, status) {
			t.Errorf("got: %v; want %v", got, status)
		}
	})
}
