// Websocket codec implementation using the gobwas/ws library
package gobwas

import (
	"context"
	"io"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/solwatch/solwatch/jsonrpc2"
)

type rwc struct {
	io.Reader
	io.Writer
	io.Closer
}

// WebSocketDial returns a Codec that wraps a client-side connection with JSON
// encoding and decoding.
func WebSocketDial(ctx context.Context, url string) (jsonrpc2.Codec, error) {
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	r := wsutil.NewReader(conn, ws.StateClientSide)
	w := wsutil.NewWriter(conn, ws.StateClientSide, ws.OpText)
	return &wsCodec{
		inner: jsonrpc2.IOCodec(rwc{r, w, conn}),
		r:     r,
		w:     w,
	}, nil
}

var _ jsonrpc2.Codec = &wsCodec{}

type wsCodec struct {
	inner jsonrpc2.Codec
	r     *wsutil.Reader
	w     *wsutil.Writer
}

func (codec *wsCodec) ReadMessage() (*jsonrpc2.Message, error) {
	if _, err := codec.r.NextFrame(); err != nil {
		return nil, err
	}
	return codec.inner.ReadMessage()
}

func (codec *wsCodec) WriteMessage(msg *jsonrpc2.Message) error {
	if err := codec.inner.WriteMessage(msg); err != nil {
		return err
	}
	return codec.w.Flush()
}

func (codec *wsCodec) Close() error {
	return codec.inner.Close()
}
