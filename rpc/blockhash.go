package rpc

import (
	"encoding/json"

	"github.com/solwatch/solwatch/jsonrpc2"
	"github.com/solwatch/solwatch/solana"
)

// GetRecentBlockHash fetches a recent block hash and the fee schedule that
// goes with it.
type GetRecentBlockHash struct {
	ReqHeader

	// results
	Slot            uint64
	BlockHash       solana.Hash
	LamportsPerSig  uint64
}

func (r *GetRecentBlockHash) Request() (string, []interface{}, error) {
	return "getRecentBlockhash", nil, nil
}

func (r *GetRecentBlockHash) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	var res struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Blockhash     solana.Hash `json:"blockhash"`
			FeeCalculator struct {
				LamportsPerSignature uint64 `json:"lamportsPerSignature"`
			} `json:"feeCalculator"`
		} `json:"value"`
	}
	if err := json.Unmarshal(msg.Response.Result, &res); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
		return
	}
	r.Slot = res.Context.Slot
	r.BlockHash = res.Value.Blockhash
	r.LamportsPerSig = res.Value.FeeCalculator.LamportsPerSignature
}
