package rpc

import (
	"sync"

	"github.com/solwatch/solwatch/jsonrpc2"
)

// Transport delivers an encoded message toward the node. Send must not
// block on the reply; inbound messages arrive through the Handler given to
// the transport.
type Transport interface {
	Send(msg *jsonrpc2.Message) error
}

// Handler consumes inbound messages delivered by a transport. *Client
// implements it.
type Handler interface {
	Dispatch(msg *jsonrpc2.Message)
}

// CodecTransport adapts a jsonrpc2.Codec (typically a websocket connection)
// into a Transport. Serve pumps inbound messages into a Handler until the
// codec fails.
type CodecTransport struct {
	Codec jsonrpc2.Codec

	mu sync.Mutex // guards writes
}

var _ Transport = &CodecTransport{}

func (t *CodecTransport) Send(msg *jsonrpc2.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Codec.WriteMessage(msg)
}

// Serve reads messages until the codec returns an error, which it reports
// so the caller can deregister any active subscriptions.
func (t *CodecTransport) Serve(h Handler) error {
	for {
		msg, err := t.Codec.ReadMessage()
		if err != nil {
			return err
		}
		h.Dispatch(msg)
	}
}

// Close closes the underlying codec, unblocking Serve.
func (t *CodecTransport) Close() error {
	return t.Codec.Close()
}
