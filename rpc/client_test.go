package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/solwatch/solwatch/jsonrpc2"
)

type fakeTransport struct {
	sent []*jsonrpc2.Message
	err  error
}

func (t *fakeTransport) Send(msg *jsonrpc2.Message) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

type callRecorder struct {
	calls []Request
}

func (r *callRecorder) OnResponse(req Request) {
	r.calls = append(r.calls, req)
}

func responseMsg(id uint64, result string) *jsonrpc2.Message {
	return &jsonrpc2.Message{
		ID:       json.RawMessage(strconv.FormatUint(id, 10)),
		Version:  jsonrpc2.Version,
		Response: &jsonrpc2.Response{Result: json.RawMessage(result)},
	}
}

func errorMsg(id uint64, code int) *jsonrpc2.Message {
	return &jsonrpc2.Message{
		ID:      json.RawMessage(strconv.FormatUint(id, 10)),
		Version: jsonrpc2.Version,
		Response: &jsonrpc2.Response{
			Error: &jsonrpc2.ErrResponse{Code: code, Message: "error"},
		},
	}
}

func notifyMsg(method string, subID uint64, result string) *jsonrpc2.Message {
	params, _ := json.Marshal(jsonrpc2.NotifyParams{
		Subscription: subID,
		Result:       json.RawMessage(result),
	})
	return &jsonrpc2.Message{
		Version: jsonrpc2.Version,
		Request: &jsonrpc2.Request{Method: method, Params: params},
	}
}

// slotWatch is a minimal open-ended subscription used to exercise the
// engine's routing table without the self-cancelling behavior of
// SignatureSubscribe.
type slotWatch struct {
	SubHeader

	slots []uint64
}

func (r *slotWatch) Request() (string, []interface{}, error) {
	return "slotSubscribe", nil, nil
}

func (r *slotWatch) Response(msg *jsonrpc2.Message) {
	if msg.Response.Error != nil {
		return
	}
	if err := r.AddNotify(r, msg.Response.Result); err != nil {
		r.SetErrCode(jsonrpc2.ErrCodeParse)
	}
}

func (r *slotWatch) Notify(msg *jsonrpc2.Message) bool {
	var params jsonrpc2.NotifyParams
	if err := json.Unmarshal(msg.Request.Params, &params); err != nil {
		return false
	}
	var slot uint64
	if err := json.Unmarshal(params.Result, &slot); err != nil {
		return false
	}
	r.slots = append(r.slots, slot)
	r.respond(r)
	return false
}

func TestSendAssignsUniqueIDs(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	seen := map[uint64]bool{}
	for i := 0; i < 5; i++ {
		req := &GetHealth{}
		c.Send(req)
		id := req.ID()
		if id == 0 {
			t.Errorf("request %d was not assigned an id", i)
		}
		if seen[id] {
			t.Errorf("id %d assigned to two pending requests", id)
		}
		seen[id] = true
	}
	if len(transport.sent) != 5 {
		t.Errorf("got %d sent messages; want 5", len(transport.sent))
	}
}

func TestIDReuseAfterResolve(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	first := &GetHealth{}
	c.Send(first)
	id := first.ID()

	c.Dispatch(responseMsg(id, `"ok"`))
	if !first.Received() {
		t.Error("first request was not resolved")
	}

	second := &GetHealth{}
	c.Send(second)
	if second.ID() != id {
		t.Errorf("freed id was not reused: got %d; want %d", second.ID(), id)
	}
}

func TestStaleResponseDropped(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	cb := &callRecorder{}
	req := &GetHealth{}
	req.SetSub(cb)
	c.Send(req)
	id := req.ID()

	c.Dispatch(responseMsg(id, `"ok"`))
	if len(cb.calls) != 1 {
		t.Fatalf("got %d callback calls; want 1", len(cb.calls))
	}

	// Duplicate delivery for an already-resolved id is benign.
	c.Dispatch(responseMsg(id, `"ok"`))
	if len(cb.calls) != 1 {
		t.Errorf("duplicate response re-fired the callback: %d calls", len(cb.calls))
	}
	if got := c.Stats().Dropped; got != 1 {
		t.Errorf("got %d dropped; want 1", got)
	}
}

func TestUnknownIDDropped(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	cb := &callRecorder{}
	req := &GetHealth{}
	req.SetSub(cb)
	c.Send(req)

	c.Dispatch(responseMsg(999, `"ok"`))
	if len(cb.calls) != 0 {
		t.Errorf("callback fired for an unrelated id")
	}
	if req.Received() {
		t.Errorf("pending request was resolved by an unrelated id")
	}
	if got := c.Stats().Dropped; got != 1 {
		t.Errorf("got %d dropped; want 1", got)
	}
}

func TestErrorPropagation(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	cb := &callRecorder{}
	req := &GetHealth{}
	req.SetSub(cb)
	c.Send(req)

	c.Dispatch(errorMsg(req.ID(), jsonrpc2.ErrCodeNodeUnhealthy))
	if len(cb.calls) != 1 {
		t.Fatalf("got %d callback calls; want 1", len(cb.calls))
	}
	if got := req.ErrCode(); got != jsonrpc2.ErrCodeNodeUnhealthy {
		t.Errorf("got error code %d; want %d", got, jsonrpc2.ErrCodeNodeUnhealthy)
	}
	if req.Healthy() {
		t.Error("request with an error code reports healthy")
	}
}

func TestTransportAffinity(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)
	// No push channel configured.

	cb := &callRecorder{}
	sub := &SignatureSubscribe{}
	sub.SetSub(cb)
	c.Send(sub)

	if got := sub.ErrCode(); got != ErrCodeNoTransport {
		t.Errorf("got error code %d; want %d", got, ErrCodeNoTransport)
	}
	if len(cb.calls) != 1 {
		t.Errorf("got %d callback calls; want 1", len(cb.calls))
	}
	if sub.ID() != 0 {
		t.Errorf("failed send consumed id %d", sub.ID())
	}
	if len(transport.sent) != 0 {
		t.Errorf("failed send reached the transport")
	}

	// A plain request without an HTTP channel falls back to the push
	// channel, but fails fast when neither is configured.
	c2 := &Client{}
	req := &GetHealth{}
	c2.Send(req)
	if got := req.ErrCode(); got != ErrCodeNoTransport {
		t.Errorf("got error code %d; want %d", got, ErrCodeNoTransport)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetWSTransport(transport)

	cb := &callRecorder{}
	sub := &slotWatch{}
	sub.SetSub(cb)
	c.Send(sub)

	// Acknowledge with subscription id 42.
	c.Dispatch(responseMsg(sub.ID(), `42`))
	if got := sub.SubID(); got != 42 {
		t.Fatalf("got subscription id %d; want 42", got)
	}
	ackCalls := len(cb.calls)

	for slot := 100; slot < 103; slot++ {
		c.Dispatch(notifyMsg("slotNotification", 42, strconv.Itoa(slot)))
	}
	if got := len(cb.calls) - ackCalls; got != 3 {
		t.Errorf("got %d notification callbacks; want 3", got)
	}
	want := []uint64{100, 101, 102}
	if len(sub.slots) != len(want) {
		t.Fatalf("got %d slots; want %d", len(sub.slots), len(want))
	}
	for i, slot := range want {
		if sub.slots[i] != slot {
			t.Errorf("slot %d: got %d; want %d (out of order?)", i, sub.slots[i], slot)
		}
	}

	c.RemoveNotify(sub)
	c.Dispatch(notifyMsg("slotNotification", 42, "103"))
	if got := len(cb.calls) - ackCalls; got != 3 {
		t.Errorf("notification delivered after removal: %d calls", got)
	}
	if got := c.Stats().Dropped; got != 1 {
		t.Errorf("got %d dropped; want 1", got)
	}
}

func TestSubscriptionReleasesIDOnRemove(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetWSTransport(transport)

	sub := &slotWatch{}
	c.Send(sub)
	id := sub.ID()
	c.Dispatch(responseMsg(id, `42`))

	// The request id stays held while the subscription is live.
	next := &GetHealth{}
	c.Send(next)
	if next.ID() == id {
		t.Fatalf("live subscription's id %d was reassigned", id)
	}

	c.RemoveNotify(sub)
	reused := &GetHealth{}
	c.Send(reused)
	if reused.ID() != id {
		t.Errorf("removed subscription's id was not released: got %d; want %d", reused.ID(), id)
	}
}

func TestMalformedDropped(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	req := &GetHealth{}
	c.Send(req)

	c.ParseResponse([]byte(`{not json`))
	c.ParseResponse([]byte(`{"jsonrpc":"2.0"}`))
	c.ParseResponse([]byte(`{"jsonrpc":"2.0","method":"somethingNotification"}`))

	if got := c.Stats().ParseFailures; got != 3 {
		t.Errorf("got %d parse failures; want 3", got)
	}
	if req.Received() {
		t.Error("malformed input resolved a pending request")
	}

	// The engine is still intact.
	c.Dispatch(responseMsg(req.ID(), `"ok"`))
	if !req.Received() {
		t.Error("request was not resolved after malformed input")
	}
}

func TestSendFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	c := &Client{}
	c.SetHTTPTransport(transport)

	cb := &callRecorder{}
	req := &GetHealth{}
	req.SetSub(cb)
	c.Send(req)

	if got := req.ErrCode(); got != ErrCodeTransportSend {
		t.Errorf("got error code %d; want %d", got, ErrCodeTransportSend)
	}
	if len(cb.calls) != 1 {
		t.Errorf("got %d callback calls; want 1", len(cb.calls))
	}

	// The id was released for reuse.
	id := req.ID()
	transport.err = nil
	next := &GetHealth{}
	c.Send(next)
	if next.ID() != id {
		t.Errorf("failed send did not release its id: got %d; want %d", next.ID(), id)
	}
}

func TestMaxPending(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{MaxPending: 2}
	c.SetHTTPTransport(transport)

	a, b := &GetHealth{}, &GetHealth{}
	c.Send(a)
	c.Send(b)

	over := &GetHealth{}
	c.Send(over)
	if got := over.ErrCode(); got != ErrCodePendingLimit {
		t.Errorf("got error code %d; want %d", got, ErrCodePendingLimit)
	}
	if over.ID() != 0 {
		t.Errorf("over-limit send consumed id %d", over.ID())
	}

	// Resolving one frees a slot.
	c.Dispatch(responseMsg(a.ID(), `"ok"`))
	retry := &GetHealth{}
	c.Send(retry)
	if retry.ErrCode() != 0 {
		t.Errorf("got error code %d after freeing a slot; want 0", retry.ErrCode())
	}
}

func TestCallbackMaySend(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	var followup *GetHealth
	req := &GetHealth{}
	req.SetSub(SubFunc(func(Request) {
		followup = &GetHealth{}
		c.Send(followup)
	}))
	c.Send(req)

	c.Dispatch(responseMsg(req.ID(), `"ok"`))
	if followup == nil {
		t.Fatal("callback did not run")
	}
	if followup.ID() == 0 {
		t.Error("send from within a callback did not assign an id")
	}
}

func TestRequestMessageShape(t *testing.T) {
	transport := &fakeTransport{}
	c := &Client{}
	c.SetHTTPTransport(transport)

	req := &GetHealth{}
	c.Send(req)
	if len(transport.sent) != 1 {
		t.Fatalf("got %d sent messages; want 1", len(transport.sent))
	}
	out, err := json.Marshal(transport.sent[0])
	if err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprintf(`{"id":%d,"jsonrpc":"2.0","method":"getHealth"}`, req.ID())
	if string(out) != want {
		t.Errorf("got: %s; want %s", out, want)
	}
}
