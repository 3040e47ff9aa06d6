package rpc

import (
	"encoding/json"

	"github.com/solwatch/solwatch/jsonrpc2"
)

// GetHealth checks the node's health. An unhealthy node reports
// jsonrpc2.ErrCodeNodeUnhealthy through the error code.
type GetHealth struct {
	ReqHeader

	// result
	Status string
}

func (r *GetHealth) Request() (string, []interface{}, error) {
	return "getHealth", nil, nil
}

func (r *GetHealth) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	if err := json.Unmarshal(msg.Response.Result, &r.Status); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
	}
}

// Healthy reports whether the node answered and considers itself healthy.
func (r *GetHealth) Healthy() bool {
	return r.ErrCode() == 0 && r.Status == "ok"
}
