package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/solwatch/solwatch/jsonrpc2"
)

const httpContentType = "application/json"

// HTTPTransport implements the request/response channel over HTTP POST.
// Send returns after handing the request to a goroutine; the reply (or a
// synthetic transport error bearing the same id) is delivered to Handler
// through the normal correlation path.
type HTTPTransport struct {
	// Endpoint is the HTTP URL to POST RPC calls to.
	Endpoint string
	// Handler receives replies, usually the owning *Client.
	Handler Handler
	// HTTPClient overrides http.DefaultClient if set.
	HTTPClient *http.Client
	// MaxContentLength is the response size limit (optional).
	MaxContentLength int64
}

var _ Transport = &HTTPTransport{}

func (t *HTTPTransport) Send(msg *jsonrpc2.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	go t.post(msg.ID, body)
	return nil
}

func (t *HTTPTransport) post(id json.RawMessage, body []byte) {
	msg, err := t.roundTrip(body)
	if err != nil {
		logger.Printf("http transport error for id=%s: %s", id, err)
		// Resolve the waiting request with a synthetic local error.
		msg = &jsonrpc2.Message{
			ID:      id,
			Version: jsonrpc2.Version,
			Response: &jsonrpc2.Response{
				Error: &jsonrpc2.ErrResponse{
					Code:    ErrCodeTransportSend,
					Message: err.Error(),
				},
			},
		}
	}
	t.Handler.Dispatch(msg)
}

func (t *HTTPTransport) roundTrip(body []byte) (*jsonrpc2.Message, error) {
	req, err := http.NewRequest(http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", httpContentType)
	req.Header.Set("Accept", httpContentType)

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   fmt.Sprintf("bad status code: %d", resp.StatusCode),
		}
	}
	if t.MaxContentLength > 0 && resp.ContentLength > t.MaxContentLength {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "response too large",
		}
	}

	var r io.Reader = resp.Body
	if t.MaxContentLength > 0 {
		r = io.LimitReader(resp.Body, t.MaxContentLength)
	}
	var msg jsonrpc2.Message
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// HTTPRequestError is used when RPC over HTTP encounters an error during
// transport.
type HTTPRequestError struct {
	Response *http.Response
	Reason   string
}

func (err HTTPRequestError) Error() string {
	return fmt.Sprintf("http rpc request error: %s", err.Reason)
}
