package rpc

import (
	"encoding/json"
)

// Subscription is a Request whose life does not end at the first response:
// after an acknowledgement carrying a server-assigned subscription id, it
// receives a stream of notifications until removed.
type Subscription interface {
	Request

	// SubID returns the server-assigned subscription id, 0 until the
	// subscription is acknowledged.
	SubID() uint64
}

// SubHeader is the bookkeeping embedded by subscription request types. It
// pins the request to the push channel and tracks the server-assigned
// subscription id.
type SubHeader struct {
	ReqHeader

	subID uint64
}

// SubID returns the server-assigned subscription id, 0 until acknowledged.
func (h *SubHeader) SubID() uint64 { return h.subID }

// Subscriptions are only available on the push channel.
func (h *SubHeader) IsHTTP() bool { return false }

// AddNotify parses the subscription id out of an acknowledgement result and
// registers s in the engine's routing table. Called from the concrete
// type's Response.
func (h *SubHeader) AddNotify(s Subscription, result json.RawMessage) error {
	var subID uint64
	if err := json.Unmarshal(result, &subID); err != nil {
		return err
	}
	h.subID = subID
	return h.client.AddNotify(s)
}

// RemoveNotify removes s from the engine's routing table. No further
// notifications are delivered after it returns.
func (h *SubHeader) RemoveNotify(s Subscription) {
	if h.client != nil {
		h.client.RemoveNotify(s)
	}
}
