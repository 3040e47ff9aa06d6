package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/solwatch/solwatch/jsonrpc2"
	"github.com/solwatch/solwatch/solana"
)

// CreateAccount submits a transaction creating a new account, funding it
// with lamports, allocating space bytes and assigning ownership to the
// given (program) key. Both the funding key and the new account's key sign.
type CreateAccount struct {
	ReqHeader

	// parameters
	BlockHash solana.Hash
	Sender    solana.KeyPair
	Account   solana.KeyPair
	Owner     solana.PubKey
	Lamports  uint64
	Space     uint64

	// results: the funding and account signatures of the submitted
	// transaction. FundSignature doubles as the transaction id.
	FundSignature solana.Signature
	AcctSignature solana.Signature
}

func (r *CreateAccount) Request() (string, []interface{}, error) {
	tx := solana.Transaction{Blockhash: r.BlockHash}
	tx.Add(solana.SystemCreateAccount(r.Sender.PubKey(), r.Account.PubKey(), r.Owner, r.Lamports, r.Space))
	wire, sigs, err := tx.Sign(r.Sender, r.Account)
	if err != nil {
		return "", nil, err
	}
	r.FundSignature = sigs[0]
	r.AcctSignature = sigs[1]
	return "sendTransaction", []interface{}{
		base64.StdEncoding.EncodeToString(wire),
		map[string]string{"encoding": "base64"},
	}, nil
}

func (r *CreateAccount) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	var sig solana.Signature
	if err := json.Unmarshal(msg.Response.Result, &sig); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
		return
	}
	r.FundSignature = sig
}
