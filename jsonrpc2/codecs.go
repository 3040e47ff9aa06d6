package jsonrpc2

import (
	"encoding/json"
	"io"
)

// Codec is an abstraction for receiving and sending JSONRPC messages.
type Codec interface {
	ReadMessage() (*Message, error)
	WriteMessage(*Message) error
	Close() error
}

var _ Codec = &jsonCodec{}

// IOCodec returns a Codec that wraps JSON encoding and decoding over IO.
func IOCodec(rwc io.ReadWriteCloser) *jsonCodec {
	return &jsonCodec{
		dec:    json.NewDecoder(rwc),
		enc:    json.NewEncoder(rwc),
		closer: rwc,
	}
}

type jsonCodec struct {
	dec    *json.Decoder
	enc    *json.Encoder
	closer io.Closer
}

func (codec *jsonCodec) ReadMessage() (*Message, error) {
	var msg Message
	err := codec.dec.Decode(&msg)
	return &msg, err
}

func (codec *jsonCodec) WriteMessage(msg *Message) error {
	return codec.enc.Encode(msg)
}

func (codec *jsonCodec) Close() error {
	return codec.closer.Close()
}

// DebugCodec logs each message passing through the codec to the package
// logger, prefixed with a label to distinguish multiple connections.
func DebugCodec(label string, codec Codec) Codec {
	return &debugCodec{Codec: codec, label: label}
}

type debugCodec struct {
	Codec
	label string
}

func (codec *debugCodec) ReadMessage() (*Message, error) {
	msg, err := codec.Codec.ReadMessage()
	if err != nil {
		logger.Printf("%s <- error: %s", codec.label, err)
		return msg, err
	}
	logger.Printf("%s <- %s", codec.label, msg)
	return msg, err
}

func (codec *debugCodec) WriteMessage(msg *Message) error {
	err := codec.Codec.WriteMessage(msg)
	if err != nil {
		logger.Printf("%s -> error: %s", codec.label, err)
		return err
	}
	logger.Printf("%s -> %s", codec.label, msg)
	return err
}
