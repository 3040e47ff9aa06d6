package jsonrpc2

import (
	"encoding/json"
	"testing"
)

func TestMessageUnmarshal(t *testing.T) {
	testcases := []struct {
		in             string
		isRequest      bool
		isResponse     bool
		isNotification bool
	}{
		{`{"jsonrpc":"2.0","id":1,"method":"getHealth"}`, true, false, false},
		{`{"jsonrpc":"2.0","id":1,"result":"ok"}`, false, true, false},
		{`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found"}}`, false, true, false},
		{`{"jsonrpc":"2.0","method":"signatureNotification","params":{"subscription":5,"result":{}}}`, true, false, true},
	}
	for i, tc := range testcases {
		var msg Message
		if err := json.Unmarshal([]byte(tc.in), &msg); err != nil {
			t.Errorf("case %d: %s", i, err)
			continue
		}
		if got := msg.Request != nil; got != tc.isRequest {
			t.Errorf("case %d: request half present = %v; want %v", i, got, tc.isRequest)
		}
		if got := msg.Response != nil; got != tc.isResponse {
			t.Errorf("case %d: response half present = %v; want %v", i, got, tc.isResponse)
		}
		if got := msg.IsNotification(); got != tc.isNotification {
			t.Errorf("case %d: IsNotification() = %v; want %v", i, got, tc.isNotification)
		}
	}
}

func TestMessageMarshalRequest(t *testing.T) {
	msg := &Message{
		ID:      json.RawMessage(`7`),
		Version: Version,
		Request: &Request{
			Method: "getAccountInfo",
			Params: json.RawMessage(`["abc"]`),
		},
	}
	out, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":7,"jsonrpc":"2.0","method":"getAccountInfo","params":["abc"]}`
	if string(out) != want {
		t.Errorf("got:  %s\nwant: %s", out, want)
	}
}

func TestMessageMarshalFillsVersion(t *testing.T) {
	msg := &Message{Request: &Request{Method: "getHealth"}}
	out, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"jsonrpc":"2.0","method":"getHealth"}`
	if string(out) != want {
		t.Errorf("got:  %s\nwant: %s", out, want)
	}
}

func TestResponseUnmarshalResult(t *testing.T) {
	var msg Message
	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"result":"ok"}`), &msg); err != nil {
		t.Fatal(err)
	}
	var status string
	if err := msg.Response.UnmarshalResult(&status); err != nil {
		t.Fatal(err)
	}
	if status != "ok" {
		t.Errorf("got %q; want %q", status, "ok")
	}

	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"Node is unhealthy"}}`), &msg); err != nil {
		t.Fatal(err)
	}
	err := msg.Response.UnmarshalResult(&status)
	rpcErr, ok := err.(*ErrResponse)
	if !ok {
		t.Fatalf("got %T; want *ErrResponse", err)
	}
	if rpcErr.Code != ErrCodeNodeUnhealthy {
		t.Errorf("got code %d; want %d", rpcErr.Code, ErrCodeNodeUnhealthy)
	}
}

func TestNotifyParams(t *testing.T) {
	var msg Message
	in := `{"jsonrpc":"2.0","method":"signatureNotification","params":{"subscription":24040,"result":{"context":{"slot":5207624},"value":{"err":null}}}}`
	if err := json.Unmarshal([]byte(in), &msg); err != nil {
		t.Fatal(err)
	}
	if !msg.IsNotification() {
		t.Fatal("expected a notification")
	}
	var params NotifyParams
	if err := json.Unmarshal(msg.Request.Params, &params); err != nil {
		t.Fatal(err)
	}
	if params.Subscription != 24040 {
		t.Errorf("got subscription id %d; want 24040", params.Subscription)
	}
	if len(params.Result) == 0 {
		t.Error("notification result is empty")
	}
}
