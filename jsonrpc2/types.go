package jsonrpc2

import (
	"encoding/json"
	"fmt"
)

const Version = "2.0"

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
	ErrCodeServer         = -32000
)

// Server-defined error codes returned by Solana nodes. They are passed
// through to callers unchanged; semantics belong to the caller.
const (
	ErrCodeBlockCleanedUp         = -32001
	ErrCodeSendTxPreflightFail    = -32002
	ErrCodeTxSigVerifyFailure     = -32003
	ErrCodeBlockNotAvailable      = -32004
	ErrCodeNodeUnhealthy          = -32005
	ErrCodeTxPrecompileVerifyFail = -32006
	ErrCodeSlotSkipped            = -32007
	ErrCodeNoSnapshot             = -32008
	ErrCodeLongTermSlotSkipped    = -32009
)

// Request is the method-call half of a Message. The id lives on the
// enclosing Message; a Request without an id is a notification.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the reply half of a Message. Exactly one of Result or Error
// is meaningful.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ErrResponse    `json:"error,omitempty"`
}

// UnmarshalResult decodes the response's result into the given value, or
// returns the response's error.
func (resp *Response) UnmarshalResult(result interface{}) error {
	if resp.Error != nil {
		return resp.Error
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		// No result
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// ErrResponse is a JSON-RPC error object. It implements the error interface.
type ErrResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (err *ErrResponse) Error() string {
	return fmt.Sprintf("%d: %s", err.Code, err.Message)
}

// NotifyParams is the params object carried by a subscription notification.
type NotifyParams struct {
	Subscription uint64          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}
