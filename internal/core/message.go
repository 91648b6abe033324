package core

import (
	"bytes"
	"encoding/json"
	"errors"
)

var ErrBadEnvelope = errors.New("bad envelope")

// Message is the wire envelope for every event in both directions:
//
//	{"type": "call-user", "data": {...}}
//
// Inbound messages may also use the positional form ["call-user", {...}].
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (m *Message) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var parts []json.RawMessage
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		if len(parts) == 0 {
			return ErrBadEnvelope
		}
		if err := json.Unmarshal(parts[0], &m.Type); err != nil {
			return ErrBadEnvelope
		}
		if len(parts) > 1 {
			m.Data = parts[1]
		}
		return nil
	}
	type plain Message
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*m = Message(p)
	return nil
}

// NewMessage builds a Message carrying data encoded as JSON. A nil data leaves
// the payload empty.
func NewMessage(typ string, data any) (Message, error) {
	m := Message{Type: typ}
	if data == nil {
		return m, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	m.Data = raw
	return m, nil
}

// Encode renders an outbound event as a single frame.
func Encode(typ string, data any) (Frame, error) {
	m, err := NewMessage(typ, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
