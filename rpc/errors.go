package rpc

import "fmt"

// Client-side synthetic error codes. They live outside the server-defined
// range so callers can tell a local failure from a node reply.
const (
	// ErrCodeTransportSend is recorded when the transport fails to send a
	// request, or reports a transport-level failure while awaiting the
	// reply.
	ErrCodeTransportSend = -33001

	// ErrCodeNoTransport is recorded when no transport is configured for
	// the request's affinity. No request id is consumed.
	ErrCodeNoTransport = -33002

	// ErrCodePendingLimit is recorded when MaxPending in-flight requests
	// are already outstanding. No request id is consumed.
	ErrCodePendingLimit = -33003
)

// DoubleRegisterError is returned by AddNotify when a different subscription
// already owns the server-assigned subscription id. This is a caller (or
// server) contract violation.
type DoubleRegisterError struct {
	SubID uint64
}

func (err DoubleRegisterError) Error() string {
	return fmt.Sprintf("subscription id %d is already registered", err.SubID)
}
