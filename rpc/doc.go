/*
	Package rpc implements the client-side dispatch engine for talking to a
	Solana node over two transports at once: an HTTP request/response
	channel and a websocket push channel.

	Client owns the pending-request correlation table, the request id
	free-list and the subscription routing table. Callers construct a typed
	request (GetAccountInfo, Transfer, SignatureSubscribe, ...), attach a
	Sub callback, and hand it to Client.Send. The callback fires when a
	matching response or notification arrives; errors are delivered as an
	error code on the request, never returned through the engine.

	Everything in the dispatch path is non-blocking: Send hands bytes to a
	Transport and returns, and resolution happens later when the transport
	feeds an inbound message to Dispatch or ParseResponse.
*/
package rpc
