package rpc

import (
	"encoding/json"

	"github.com/solwatch/solwatch/jsonrpc2"
	"github.com/solwatch/solwatch/solana"
)

// SignatureSubscribe subscribes to confirmation of a transaction signature.
// The node acknowledges with a subscription id, then pushes a single
// notification once the signature reaches the requested commitment; the
// subscription removes itself after that notification.
type SignatureSubscribe struct {
	SubHeader

	// parameters
	Signature  solana.Signature
	Commitment string // defaults to "finalized"

	// results, populated by the notification
	Slot  uint64
	TxErr json.RawMessage // null when the transaction succeeded

	notified bool
}

func (r *SignatureSubscribe) Request() (string, []interface{}, error) {
	commitment := r.Commitment
	if commitment == "" {
		commitment = "finalized"
	}
	return "signatureSubscribe", []interface{}{
		r.Signature,
		map[string]string{"commitment": commitment},
	}, nil
}

func (r *SignatureSubscribe) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	if err := r.AddNotify(r, msg.Response.Result); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
	}
}

func (r *SignatureSubscribe) Notify(msg *jsonrpc2.Message) bool {
	var params jsonrpc2.NotifyParams
	if err := json.Unmarshal(msg.Request.Params, &params); err != nil {
		// A malformed notification does not cancel the subscription.
		logger.Printf("signatureSubscribe id=%d: unparseable notification: %s", r.SubID(), err)
		return false
	}
	var res struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Err json.RawMessage `json:"err"`
		} `json:"value"`
	}
	if err := json.Unmarshal(params.Result, &res); err != nil {
		logger.Printf("signatureSubscribe id=%d: unparseable result: %s", r.SubID(), err)
		return false
	}
	r.Slot = res.Context.Slot
	if len(res.Value.Err) > 0 && string(res.Value.Err) != "null" {
		r.TxErr = res.Value.Err
	}
	r.notified = true
	r.respond(r)
	// The node cancels a signature subscription after its first
	// notification, so we are done too.
	return true
}

// Confirmed reports whether a confirmation notification arrived without a
// transaction error.
func (r *SignatureSubscribe) Confirmed() bool {
	return r.notified && r.ErrCode() == 0 && r.TxErr == nil
}
