/*
	Package jsonrpc2 implements the JSON-RPC 2.0 wire format used by Solana
	nodes, from the client's side of the connection.

	Message is the framing type: a request, a response, or a server-pushed
	notification (a request with no id), distinguished after parsing.

	Codec is the transport encoding. IOCodec wraps plain JSON over a
	stream; the ws subpackages provide websocket codecs in two
	implementations.

	Request correlation, subscription routing and the typed callback
	contract live in the rpc package; this package only knows about bytes
	and message shapes.
*/
package jsonrpc2
