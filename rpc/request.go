package rpc

import (
	"time"

	"github.com/solwatch/solwatch/jsonrpc2"
)

// Sub is the callback observer for resolved requests and subscription
// updates. OnResponse receives the originating request with its result
// fields and error code populated; callers type-assert back to the concrete
// request type they sent.
//
// A plain request's callback fires exactly once. A subscription's callback
// fires once per acknowledged notification until the subscription is
// removed.
type Sub interface {
	OnResponse(Request)
}

// SubFunc adapts a function to the Sub interface.
type SubFunc func(Request)

func (f SubFunc) OnResponse(r Request) {
	f(r)
}

// Request is one JSON-RPC call expecting at most one resolving response.
// Concrete request types embed ReqHeader and implement Request and
// Response; subscriptions additionally override Notify and IsHTTP.
type Request interface {
	// Request returns the JSON-RPC method and positional params for this
	// call. It is invoked by the engine at send time.
	Request() (method string, params []interface{}, err error)

	// Response parses the matching reply into the request's result fields.
	// The engine has already recorded the error code from the reply, if
	// any; Response must tolerate an error reply without populating
	// results.
	Response(msg *jsonrpc2.Message)

	// Notify consumes a subscription notification. The engine removes the
	// subscription from its routing table once done is true. Requests that
	// do not accept notifications report done without effect.
	Notify(msg *jsonrpc2.Message) (done bool)

	// IsHTTP reports whether the request may be routed over the HTTP
	// transport. Subscriptions are push-channel only.
	IsHTTP() bool

	// Header exposes the request's engine bookkeeping.
	Header() *ReqHeader
}

// ReqHeader carries the bookkeeping shared by every request: the
// engine-assigned id, the resolved error code, send/receive timestamps and
// the resolution callback. It provides the default Request behaviors:
// HTTP-eligible, no notifications.
type ReqHeader struct {
	client  *Client
	cb      Sub
	id      uint64
	errCode int
	sentAt  time.Time
	recvAt  time.Time
}

// Header returns the request's shared bookkeeping.
func (h *ReqHeader) Header() *ReqHeader { return h }

// ID returns the engine-assigned request id, 0 until sent.
func (h *ReqHeader) ID() uint64 { return h.id }

// ErrCode returns the resolved error code: 0 for none, a negative
// JSON-RPC code from the server, or a client-side synthetic code.
func (h *ReqHeader) ErrCode() int { return h.errCode }

// SetErrCode records an error code on the request.
func (h *ReqHeader) SetErrCode(code int) { h.errCode = code }

// SetSub registers the callback invoked when the request resolves. The
// engine holds the reference only until resolution (or, for subscriptions,
// until removal); it must be set before Send.
func (h *ReqHeader) SetSub(s Sub) { h.cb = s }

// SentAt returns the time the request was handed to a transport.
func (h *ReqHeader) SentAt() time.Time { return h.sentAt }

// RecvAt returns the time the resolving reply arrived.
func (h *ReqHeader) RecvAt() time.Time { return h.recvAt }

// Received reports whether a resolving reply has arrived.
func (h *ReqHeader) Received() bool { return !h.recvAt.IsZero() }

// Client returns the engine this request was sent through, nil before Send.
func (h *ReqHeader) Client() *Client { return h.client }

func (h *ReqHeader) IsHTTP() bool { return true }

func (h *ReqHeader) Notify(msg *jsonrpc2.Message) bool {
	// Not a subscription; ignore and report done.
	return true
}

// respond delivers r to the registered callback, if any.
func (h *ReqHeader) respond(r Request) {
	if h.cb != nil {
		h.cb.OnResponse(r)
	}
}
