package rpc

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/solwatch/solwatch/jsonrpc2"
)

// Stats counts protocol-level events that are not surfaced to any single
// request.
type Stats struct {
	// ParseFailures counts inbound payloads that were not valid JSON-RPC.
	ParseFailures uint64
	// Dropped counts well-formed messages with no matching pending request
	// or live subscription. Late and duplicate delivery is expected, so
	// these are benign.
	Dropped uint64
}

// Client is the dispatch engine. It owns the two transport handles, the
// pending-request correlation table, the request id free-list and the
// subscription routing table.
//
// All exported methods are safe for concurrent use. The engine never holds
// its lock across a callback, so callbacks may call Send.
type Client struct {
	// MaxPending caps the number of concurrent in-flight requests. Sends
	// beyond the cap resolve immediately with ErrCodePendingLimit. Zero
	// means no limit.
	MaxPending int

	mu       sync.Mutex
	httpT    Transport
	wsT      Transport
	pending  []Request // slot per request id; index 0 is reserved
	reuse    []uint64  // released ids, most recently freed first
	subs     map[uint64]Subscription
	inflight int
	stats    Stats
}

// SetHTTPTransport registers the request/response channel. Plain requests
// prefer it when present.
func (c *Client) SetHTTPTransport(t Transport) {
	c.mu.Lock()
	c.httpT = t
	c.mu.Unlock()
}

// SetWSTransport registers the push channel. Subscriptions require it.
func (c *Client) SetWSTransport(t Transport) {
	c.mu.Lock()
	c.wsT = t
	c.mu.Unlock()
}

// Stats returns a snapshot of the engine counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// transport selects the channel for a request's affinity, or nil if none is
// configured.
func (c *Client) transport(req Request) Transport {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !req.IsHTTP() {
		return c.wsT
	}
	if c.httpT != nil {
		return c.httpT
	}
	return c.wsT
}

// Send assigns an id to the request, stores it in the pending table,
// encodes it and hands it to the transport selected by the request's
// affinity. Send does not block on the response; the request's callback
// fires when a matching reply arrives through Dispatch.
//
// Failures resolve the request immediately through its callback with a
// client-side error code: ErrCodeNoTransport if the required channel is
// missing (no id is consumed), ErrCodeTransportSend if encoding or the
// transport write fails (the id is released).
func (c *Client) Send(req Request) {
	h := req.Header()
	h.client = c

	t := c.transport(req)
	if t == nil {
		h.errCode = ErrCodeNoTransport
		h.respond(req)
		return
	}

	c.mu.Lock()
	if c.MaxPending > 0 && c.inflight >= c.MaxPending {
		c.mu.Unlock()
		h.errCode = ErrCodePendingLimit
		h.respond(req)
		return
	}
	id := c.allocID()
	c.pending[id] = req
	c.inflight++
	c.mu.Unlock()
	h.id = id

	msg, err := requestMessage(id, req)
	if err != nil {
		c.release(id)
		h.errCode = ErrCodeTransportSend
		h.respond(req)
		return
	}
	h.sentAt = time.Now()
	if err := t.Send(msg); err != nil {
		logger.Printf("send failed for id=%d method=%q: %s", id, msg.Request.Method, err)
		c.release(id)
		h.errCode = ErrCodeTransportSend
		h.respond(req)
	}
}

// allocID pops the most recently freed id, or grows the pending table. Ids
// start at 1; 0 is reserved for unassigned. Must hold c.mu.
func (c *Client) allocID() uint64 {
	if n := len(c.reuse); n > 0 {
		id := c.reuse[n-1]
		c.reuse = c.reuse[:n-1]
		return id
	}
	if len(c.pending) == 0 {
		c.pending = append(c.pending, nil)
	}
	c.pending = append(c.pending, nil)
	return uint64(len(c.pending) - 1)
}

// release frees a request id back to the free-list.
func (c *Client) release(id uint64) {
	c.mu.Lock()
	if int(id) < len(c.pending) && c.pending[id] != nil {
		c.pending[id] = nil
		c.reuse = append(c.reuse, id)
		c.inflight--
	}
	c.mu.Unlock()
}

// ParseResponse parses a complete inbound payload from either transport and
// dispatches it. Invalid JSON is dropped and counted; it never affects
// pending requests.
func (c *Client) ParseResponse(data []byte) {
	var msg jsonrpc2.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.countParseFailure()
		logger.Printf("dropping unparseable message: %s", err)
		return
	}
	c.Dispatch(&msg)
}

// Dispatch routes an already-parsed inbound message: responses are
// correlated to pending requests by id, notifications are routed to live
// subscriptions by subscription id, and anything else is dropped.
func (c *Client) Dispatch(msg *jsonrpc2.Message) {
	switch {
	case msg.Response != nil && len(msg.ID) > 0:
		c.dispatchResponse(msg)
	case msg.IsNotification():
		c.dispatchNotify(msg)
	default:
		c.countParseFailure()
		logger.Printf("dropping message with invalid shape: %s", msg)
	}
}

func (c *Client) dispatchResponse(msg *jsonrpc2.Message) {
	var id uint64
	if err := json.Unmarshal(msg.ID, &id); err != nil {
		c.countParseFailure()
		logger.Printf("dropping response with unparseable id %s: %s", msg.ID, err)
		return
	}

	c.mu.Lock()
	var req Request
	if id > 0 && id < uint64(len(c.pending)) {
		req = c.pending[id]
	}
	if req == nil {
		// Already resolved, unknown, or stale. Duplicate and late delivery
		// can occur on either transport, so this is not an error.
		c.stats.Dropped++
		c.mu.Unlock()
		return
	}
	_, isSub := req.(Subscription)
	if !isSub || msg.Response.Error != nil {
		// Plain requests resolve on first response. A subscription keeps
		// its slot until removed, unless the server refused it.
		c.pending[id] = nil
		c.reuse = append(c.reuse, id)
		c.inflight--
	}
	c.mu.Unlock()

	h := req.Header()
	h.recvAt = time.Now()
	if msg.Response.Error != nil {
		h.errCode = msg.Response.Error.Code
	} else {
		h.errCode = 0
	}
	req.Response(msg)
	h.respond(req)
}

func (c *Client) dispatchNotify(msg *jsonrpc2.Message) {
	var params jsonrpc2.NotifyParams
	if len(msg.Request.Params) == 0 {
		c.countParseFailure()
		logger.Printf("dropping notification without params: %s", msg)
		return
	}
	if err := json.Unmarshal(msg.Request.Params, &params); err != nil {
		c.countParseFailure()
		logger.Printf("dropping notification with unparseable params: %s", err)
		return
	}

	c.mu.Lock()
	sub := c.subs[params.Subscription]
	if sub == nil {
		// Cancelled or never registered; drop silently.
		c.stats.Dropped++
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	sub.Header().recvAt = time.Now()
	if sub.Notify(msg) {
		c.RemoveNotify(sub)
	}
}

// AddNotify registers a subscription in the routing table under its
// server-assigned subscription id. At most one subscription may own a given
// id at a time.
func (c *Client) AddNotify(s Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subs == nil {
		c.subs = map[uint64]Subscription{}
	}
	if prev, ok := c.subs[s.SubID()]; ok && prev != s {
		return DoubleRegisterError{SubID: s.SubID()}
	}
	c.subs[s.SubID()] = s
	return nil
}

// RemoveNotify removes a subscription from the routing table and releases
// the request id it held. No further notifications are delivered once it
// returns; a notification already being dispatched still completes.
func (c *Client) RemoveNotify(s Subscription) {
	h := s.Header()
	c.mu.Lock()
	if prev, ok := c.subs[s.SubID()]; ok && prev == s {
		delete(c.subs, s.SubID())
	}
	if h.id > 0 && h.id < uint64(len(c.pending)) && c.pending[h.id] == s {
		c.pending[h.id] = nil
		c.reuse = append(c.reuse, h.id)
		c.inflight--
	}
	c.mu.Unlock()
}

func (c *Client) countParseFailure() {
	c.mu.Lock()
	c.stats.ParseFailures++
	c.mu.Unlock()
}

// requestMessage encodes a request into a JSON-RPC message bearing id.
func requestMessage(id uint64, req Request) (*jsonrpc2.Message, error) {
	method, params, err := req.Request()
	if err != nil {
		return nil, err
	}
	msg := &jsonrpc2.Message{
		ID:      json.RawMessage(strconv.FormatUint(id, 10)),
		Version: jsonrpc2.Version,
		Request: &jsonrpc2.Request{Method: method},
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		msg.Request.Params = raw
	}
	return msg, nil
}
