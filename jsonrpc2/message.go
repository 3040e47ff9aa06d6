package jsonrpc2

import (
	"encoding/json"
)

// Message is a single JSON-RPC frame: a request, a notification (request
// without an id), or a response. The embedded halves flatten into one JSON
// object on the wire.
type Message struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Version string          `json:"jsonrpc"`
	*Request
	*Response
}

// IsNotification returns true if the message is a server-initiated request
// with no id attached.
func (m *Message) IsNotification() bool {
	return m.Request != nil && len(m.ID) == 0
}

func (m *Message) String() string {
	out, err := json.Marshal(m)
	if err != nil {
		return "<failed to encode message>"
	}
	return string(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		Version string          `json:"jsonrpc"`
		Method  *string         `json:"method"`
		Params  json.RawMessage `json:"params"`
		Result  json.RawMessage `json:"result"`
		Error   *ErrResponse    `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ID
	m.Version = raw.Version
	if raw.Method != nil {
		m.Request = &Request{
			Method: *raw.Method,
			Params: raw.Params,
		}
	}
	if raw.Result != nil || raw.Error != nil {
		m.Response = &Response{
			Result: raw.Result,
			Error:  raw.Error,
		}
	}
	return nil
}

func (m *Message) MarshalJSON() ([]byte, error) {
	raw := struct {
		ID      json.RawMessage `json:"id,omitempty"`
		Version string          `json:"jsonrpc"`
		Method  string          `json:"method,omitempty"`
		Params  json.RawMessage `json:"params,omitempty"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *ErrResponse    `json:"error,omitempty"`
	}{
		ID:      m.ID,
		Version: m.Version,
	}
	if raw.Version == "" {
		raw.Version = Version
	}
	if m.Request != nil {
		raw.Method = m.Request.Method
		raw.Params = m.Request.Params
	}
	if m.Response != nil {
		raw.Result = m.Response.Result
		raw.Error = m.Response.Error
	}
	return json.Marshal(raw)
}
