package solana

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestSystemProgramBase58(t *testing.T) {
	const want = "11111111111111111111111111111111"
	if got := SystemProgram.String(); got != want {
		t.Errorf("got %q; want %q", got, want)
	}
	parsed, err := PubKeyFromBase58(want)
	if err != nil {
		t.Fatal(err)
	}
	if parsed != SystemProgram {
		t.Errorf("round trip changed the key: %s", parsed)
	}
}

func TestPubKeyJSON(t *testing.T) {
	key := KeyPairFromSeed([32]byte{42}).PubKey()

	out, err := json.Marshal(key)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != '"' || out[len(out)-1] != '"' {
		t.Fatalf("expected a JSON string, got: %s", out)
	}

	var back PubKey
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back != key {
		t.Errorf("round trip changed the key: %s != %s", back, key)
	}
}

func TestPubKeyFromBase58Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"0OIl",   // not base58 alphabet
		"abc",    // too short
		"GH7ome3EiwEr7tu9JuTh2dpYWBJK3z69Xm1ZE3MEE6JCGH7", // wrong length
	} {
		if _, err := PubKeyFromBase58(s); err == nil {
			t.Errorf("accepted %q", s)
		}
	}
}

func TestSignVerify(t *testing.T) {
	pair := KeyPairFromSeed([32]byte{7})
	msg := []byte("lamports in flight")

	sig, err := pair.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(pair.PubKey(), msg, sig) {
		t.Error("signature does not verify")
	}
	if Verify(pair.PubKey(), []byte("other message"), sig) {
		t.Error("signature verifies against a different message")
	}
	other := KeyPairFromSeed([32]byte{8})
	if Verify(other.PubKey(), msg, sig) {
		t.Error("signature verifies against a different key")
	}
}

func TestEmptyKeyPair(t *testing.T) {
	var empty KeyPair
	if _, err := empty.Sign([]byte("x")); err == nil {
		t.Error("signing with an empty keypair did not fail")
	}
	if err := empty.Save("/nonexistent/path"); err == nil {
		t.Error("saving an empty keypair did not fail")
	}
}

func TestKeyPairSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "solwatch-keys-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "id.json")

	pair := KeyPairFromSeed([32]byte{9})
	if err := pair.Save(path); err != nil {
		t.Fatal(err)
	}
	// Save refuses to overwrite.
	if err := pair.Save(path); err == nil {
		t.Error("overwriting an existing keypair file did not fail")
	}

	loaded, err := LoadKeyPair(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.PubKey() != pair.PubKey() {
		t.Errorf("loaded key does not match: %s != %s", loaded.PubKey(), pair.PubKey())
	}

	msg := []byte("sign with the loaded key")
	sig, err := loaded.Sign(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(pair.PubKey(), msg, sig) {
		t.Error("signature from the loaded key does not verify")
	}
}

func TestLoadKeyPairSolanaKeygenFormat(t *testing.T) {
	// The file is a JSON array of byte values, private key followed by the
	// public key, as written by solana-keygen.
	pair := KeyPairFromSeed([32]byte{11})
	dir, err := ioutil.TempDir("", "solwatch-keys-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "id.json")
	if err := pair.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("keypair file is not a JSON array of numbers: %s", err)
	}
	if len(raw) != 64 {
		t.Fatalf("got %d elements; want 64", len(raw))
	}
	pub := pair.PubKey()
	tail := make([]byte, 32)
	for i, b := range raw[32:] {
		tail[i] = byte(b)
	}
	if !bytes.Equal(tail, pub[:]) {
		t.Error("last 32 bytes are not the public key")
	}
}
