package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
)

// KeyPair is an ed25519 signing key. The zero value is unusable; construct
// with GenerateKeyPair, KeyPairFromSeed or LoadKeyPair.
type KeyPair struct {
	priv ed25519.PrivateKey
}

// GenerateKeyPair creates a new random key pair.
func GenerateKeyPair() (KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{priv: priv}, nil
}

// KeyPairFromSeed derives a key pair from a 32-byte seed.
func KeyPairFromSeed(seed [32]byte) KeyPair {
	return KeyPair{priv: ed25519.NewKeyFromSeed(seed[:])}
}

// LoadKeyPair reads a key pair from the JSON byte-array format used by
// solana-keygen (a 64-element array of the private followed by the public
// key bytes).
func LoadKeyPair(path string) (KeyPair, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return KeyPair{}, err
	}
	// solana-keygen writes the key as a JSON array of numbers, not a
	// base64 string, so []byte does not unmarshal directly.
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return KeyPair{}, fmt.Errorf("failed to parse keypair file %q: %s", path, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return KeyPair{}, fmt.Errorf("keypair file %q: wrong key length: %d", path, len(raw))
	}
	priv := make(ed25519.PrivateKey, len(raw))
	for i, b := range raw {
		if b < 0 || b > 255 {
			return KeyPair{}, fmt.Errorf("keypair file %q: byte out of range: %d", path, b)
		}
		priv[i] = byte(b)
	}
	return KeyPair{priv: priv}, nil
}

// Save writes the key pair to path in the solana-keygen JSON format. The
// file is created with owner-only permissions.
func (k KeyPair) Save(path string) error {
	if k.priv == nil {
		return fmt.Errorf("cannot save an empty keypair")
	}
	raw := make([]int, len(k.priv))
	for i, b := range k.priv {
		raw[i] = int(b)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PubKey returns the public half of the key pair.
func (k KeyPair) PubKey() PubKey {
	var p PubKey
	if k.priv == nil {
		return p
	}
	copy(p[:], k.priv.Public().(ed25519.PublicKey))
	return p
}

// Sign signs msg, returning the signature.
func (k KeyPair) Sign(msg []byte) (Signature, error) {
	var s Signature
	if k.priv == nil {
		return s, fmt.Errorf("cannot sign with an empty keypair")
	}
	copy(s[:], ed25519.Sign(k.priv, msg))
	return s, nil
}

// Verify reports whether sig is a valid signature of msg by key.
func Verify(key PubKey, msg []byte, sig Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(key[:]), msg, sig[:])
}
