package solana

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// AccountMeta describes how an instruction touches an account.
type AccountMeta struct {
	Key      PubKey
	Signer   bool
	Writable bool
}

// Instruction is one program invocation within a transaction.
type Instruction struct {
	Program  PubKey
	Accounts []AccountMeta
	Data     []byte
}

// System program instruction indices.
const (
	sysCreateAccount = 0
	sysTransfer      = 2
)

// SystemTransfer builds a system-program instruction moving lamports from
// one account to another.
func SystemTransfer(from, to PubKey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:], sysTransfer)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	return Instruction{
		Program: SystemProgram,
		Accounts: []AccountMeta{
			{Key: from, Signer: true, Writable: true},
			{Key: to, Writable: true},
		},
		Data: data,
	}
}

// SystemCreateAccount builds a system-program instruction funding a new
// account with lamports, allocating space bytes and assigning ownership to
// owner. Both the funder and the new account must sign.
func SystemCreateAccount(from, newAccount, owner PubKey, lamports, space uint64) Instruction {
	data := make([]byte, 52)
	binary.LittleEndian.PutUint32(data[0:], sysCreateAccount)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])
	return Instruction{
		Program: SystemProgram,
		Accounts: []AccountMeta{
			{Key: from, Signer: true, Writable: true},
			{Key: newAccount, Signer: true, Writable: true},
		},
		Data: data,
	}
}

// Transaction assembles instructions against a recent block hash into the
// binary wire format accepted by sendTransaction.
type Transaction struct {
	Blockhash Hash

	instrs []Instruction
}

// Add appends an instruction to the transaction.
func (tx *Transaction) Add(in Instruction) {
	tx.instrs = append(tx.instrs, in)
}

// Sign serializes the transaction message and signs it with each key, in
// order. The keys must match the message's required signers. It returns the
// full signed wire bytes and the signatures in key order.
func (tx *Transaction) Sign(keys ...KeyPair) ([]byte, []Signature, error) {
	accounts, header, err := tx.collectAccounts(keys)
	if err != nil {
		return nil, nil, err
	}
	msg := tx.encodeMessage(accounts, header)

	sigs := make([]Signature, 0, len(keys))
	var buf bytes.Buffer
	buf.Write(appendShortVec(nil, len(keys)))
	for _, key := range keys {
		sig, err := key.Sign(msg)
		if err != nil {
			return nil, nil, err
		}
		sigs = append(sigs, sig)
		buf.Write(sig[:])
	}
	buf.Write(msg)
	return buf.Bytes(), sigs, nil
}

type msgHeader struct {
	numSigned         int
	numReadonlySigned int
	numReadonly       int
}

// collectAccounts orders the referenced accounts the way the message header
// expects: writable signers, readonly signers, writable non-signers, then
// readonly non-signers, with the program keys last among the readonly set.
func (tx *Transaction) collectAccounts(keys []KeyPair) ([]PubKey, msgHeader, error) {
	type accountFlags struct {
		signer   bool
		writable bool
	}
	flags := map[PubKey]*accountFlags{}
	var order []PubKey
	touch := func(key PubKey, signer, writable bool) {
		f, ok := flags[key]
		if !ok {
			f = &accountFlags{}
			flags[key] = f
			order = append(order, key)
		}
		f.signer = f.signer || signer
		f.writable = f.writable || writable
	}
	for _, in := range tx.instrs {
		for _, meta := range in.Accounts {
			touch(meta.Key, meta.Signer, meta.Writable)
		}
		touch(in.Program, false, false)
	}

	var group [4][]PubKey
	for _, key := range order {
		f := flags[key]
		switch {
		case f.signer && f.writable:
			group[0] = append(group[0], key)
		case f.signer:
			group[1] = append(group[1], key)
		case f.writable:
			group[2] = append(group[2], key)
		default:
			group[3] = append(group[3], key)
		}
	}

	header := msgHeader{
		numSigned:         len(group[0]) + len(group[1]),
		numReadonlySigned: len(group[1]),
		numReadonly:       len(group[3]),
	}
	accounts := append(append(append(group[0], group[1]...), group[2]...), group[3]...)

	if header.numSigned != len(keys) {
		return nil, header, fmt.Errorf("transaction requires %d signers, got %d keys", header.numSigned, len(keys))
	}
	for i, key := range keys {
		if accounts[i] != key.PubKey() {
			return nil, header, fmt.Errorf("signer %d does not match account %s", i, accounts[i])
		}
	}
	return accounts, header, nil
}

func (tx *Transaction) encodeMessage(accounts []PubKey, header msgHeader) []byte {
	index := map[PubKey]byte{}
	for i, key := range accounts {
		index[key] = byte(i)
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(header.numSigned))
	buf.WriteByte(byte(header.numReadonlySigned))
	buf.WriteByte(byte(header.numReadonly))
	buf.Write(appendShortVec(nil, len(accounts)))
	for _, key := range accounts {
		buf.Write(key[:])
	}
	buf.Write(tx.Blockhash[:])
	buf.Write(appendShortVec(nil, len(tx.instrs)))
	for _, in := range tx.instrs {
		buf.WriteByte(index[in.Program])
		buf.Write(appendShortVec(nil, len(in.Accounts)))
		for _, meta := range in.Accounts {
			buf.WriteByte(index[meta.Key])
		}
		buf.Write(appendShortVec(nil, len(in.Data)))
		buf.Write(in.Data)
	}
	return buf.Bytes()
}

// appendShortVec appends n in the compact-u16 length encoding: 7 bits per
// byte, least significant first, high bit marking continuation.
func appendShortVec(buf []byte, n int) []byte {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}
