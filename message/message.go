package message

import (
	"bytes"
	"encoding/json"

	"github.com/viant/jsonrpc"
)

// Message represents a decoded inbound JSON-RPC message
type Message struct {
	Method string
	// Id holds the raw id member; it is nil for notifications.
	Id     json.RawMessage
	Params json.RawMessage
}

// IsNotification returns true when message carries no id member
func (m *Message) IsNotification() bool {
	return m.Id == nil
}

// RequestId returns id to be echoed in a reply
func (m *Message) RequestId() jsonrpc.RequestId {
	if m.Id == nil {
		return nil
	}
	return m.Id
}

// Key returns a comparable form of the message id
func (m *Message) Key() string {
	return IdKey(m.Id)
}

// IdKey returns compact form of a raw id, so ids differing only by whitespace compare equal
func IdKey(raw json.RawMessage) string {
	buffer := bytes.Buffer{}
	if err := json.Compact(&buffer, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buffer.String()
}

// Outcome represents a decoding outcome, either Message or Error is set
type Outcome struct {
	Message *Message
	Error   *jsonrpc.Error
	// Cause describes why decoding failed; it is logged, never sent
	Cause error
}
