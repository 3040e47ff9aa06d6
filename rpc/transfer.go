package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/solwatch/solwatch/jsonrpc2"
	"github.com/solwatch/solwatch/solana"
)

// Transfer submits a transaction moving lamports between accounts. The
// transaction is built and signed at send time from the parameters, so
// BlockHash must be a recent one (see GetRecentBlockHash).
type Transfer struct {
	ReqHeader

	// parameters
	BlockHash solana.Hash
	Sender    solana.KeyPair
	Receiver  solana.PubKey
	Lamports  uint64

	// result; also populated locally at send time, since the signature is
	// known as soon as the transaction is signed
	Signature solana.Signature
}

func (r *Transfer) Request() (string, []interface{}, error) {
	tx := solana.Transaction{Blockhash: r.BlockHash}
	tx.Add(solana.SystemTransfer(r.Sender.PubKey(), r.Receiver, r.Lamports))
	wire, sigs, err := tx.Sign(r.Sender)
	if err != nil {
		return "", nil, err
	}
	r.Signature = sigs[0]
	return "sendTransaction", []interface{}{
		base64.StdEncoding.EncodeToString(wire),
		map[string]string{"encoding": "base64"},
	}, nil
}

func (r *Transfer) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	var sig solana.Signature
	if err := json.Unmarshal(msg.Response.Result, &sig); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
		return
	}
	r.Signature = sig
}
