package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/solwatch/solwatch/jsonrpc2"
	"github.com/solwatch/solwatch/solana"
)

// GetAccountInfo fetches an account's balance, data and meta-data.
type GetAccountInfo struct {
	ReqHeader

	// parameters
	Account solana.PubKey

	// results
	Slot       uint64
	Lamports   uint64
	RentEpoch  uint64
	Executable bool
	Owner      solana.PubKey
	Data       []byte

	// Exists is false when the account is not found on chain.
	Exists bool
}

func (r *GetAccountInfo) Request() (string, []interface{}, error) {
	return "getAccountInfo", []interface{}{
		r.Account,
		map[string]string{"encoding": "base64"},
	}, nil
}

func (r *GetAccountInfo) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	var res struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value *struct {
			Lamports   uint64        `json:"lamports"`
			Owner      solana.PubKey `json:"owner"`
			Data       []string      `json:"data"`
			Executable bool          `json:"executable"`
			RentEpoch  uint64        `json:"rentEpoch"`
		} `json:"value"`
	}
	if err := json.Unmarshal(msg.Response.Result, &res); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
		return
	}
	r.Slot = res.Context.Slot
	if res.Value == nil {
		return
	}
	r.Exists = true
	r.Lamports = res.Value.Lamports
	r.Owner = res.Value.Owner
	r.Executable = res.Value.Executable
	r.RentEpoch = res.Value.RentEpoch
	if len(res.Value.Data) > 0 {
		data, err := base64.StdEncoding.DecodeString(res.Value.Data[0])
		if err != nil {
			r.SetErrCode(jsonrpc2.ErrCodeParse)
			return
		}
		r.Data = data
	}
}
