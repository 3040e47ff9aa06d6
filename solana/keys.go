// Package solana provides the value types that appear on the Solana wire:
// base58-encoded public keys, block hashes and signatures, ed25519 key
// pairs, and binary transaction construction.
package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PubKey is an ed25519 public key, rendered as base58 in JSON.
type PubKey [32]byte

// SystemProgram is the program key that owns plain accounts and handles
// transfers and account creation.
var SystemProgram = PubKey{}

func (p PubKey) String() string {
	return base58.Encode(p[:])
}

// PubKeyFromBase58 parses a base58-encoded public key.
func PubKeyFromBase58(s string) (PubKey, error) {
	var p PubKey
	if err := decode58(s, p[:]); err != nil {
		return p, fmt.Errorf("failed to parse public key: %s", err)
	}
	return p, nil
}

func (p PubKey) MarshalJSON() ([]byte, error) {
	return encode58JSON(p[:]), nil
}

func (p *PubKey) UnmarshalJSON(data []byte) error {
	return decode58JSON(data, p[:])
}

// Hash is a block hash, rendered as base58 in JSON.
type Hash [32]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

// HashFromBase58 parses a base58-encoded block hash.
func HashFromBase58(s string) (Hash, error) {
	var h Hash
	if err := decode58(s, h[:]); err != nil {
		return h, fmt.Errorf("failed to parse hash: %s", err)
	}
	return h, nil
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return encode58JSON(h[:]), nil
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	return decode58JSON(data, h[:])
}

// Signature is an ed25519 signature, rendered as base58 in JSON.
type Signature [64]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

// SignatureFromBase58 parses a base58-encoded signature.
func SignatureFromBase58(str string) (Signature, error) {
	var s Signature
	if err := decode58(str, s[:]); err != nil {
		return s, fmt.Errorf("failed to parse signature: %s", err)
	}
	return s, nil
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return encode58JSON(s[:]), nil
}

func (s *Signature) UnmarshalJSON(data []byte) error {
	return decode58JSON(data, s[:])
}

func decode58(s string, out []byte) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return err
	}
	if len(raw) != len(out) {
		return fmt.Errorf("wrong length: %d != %d", len(raw), len(out))
	}
	copy(out, raw)
	return nil
}

func encode58JSON(raw []byte) []byte {
	s := base58.Encode(raw)
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	out = append(out, s...)
	return append(out, '"')
}

func decode58JSON(data []byte, out []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("expected a base58 string, got: %s", data)
	}
	return decode58(string(data[1:len(data)-1]), out)
}
