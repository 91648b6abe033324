package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_Unmarshal_Envelope(t *testing.T) {
	req := require.New(t)

	var m Message
	req.NoError(json.Unmarshal([]byte(`{"type":"register","data":{"identity":"alice"}}`), &m))

	req.Equal(EventRegister, m.Type)
	req.JSONEq(`{"identity":"alice"}`, string(m.Data))
}

func TestMessage_Unmarshal_Positional(t *testing.T) {
	req := require.New(t)

	var m Message
	req.NoError(json.Unmarshal([]byte(` ["register", "alice"]`), &m))
	req.Equal(EventRegister, m.Type)
	req.Equal(`"alice"`, string(m.Data))

	// An event without payload
	var bare Message
	req.NoError(json.Unmarshal([]byte(`["end-call"]`), &bare))
	req.Equal(EventEndCall, bare.Type)
	req.Empty(bare.Data)
}

func TestMessage_Unmarshal_Rejects(t *testing.T) {
	req := require.New(t)

	var m Message
	req.ErrorIs(json.Unmarshal([]byte(`[]`), &m), ErrBadEnvelope)
	req.ErrorIs(json.Unmarshal([]byte(`[42, {}]`), &m), ErrBadEnvelope)
	req.Error(json.Unmarshal([]byte(`{"type":`), &m))
}

func TestEncode_OmitsEmptyPayload(t *testing.T) {
	req := require.New(t)

	f, err := Encode(EventPong, nil)
	req.NoError(err)
	req.JSONEq(`{"type":"pong"}`, string(f))

	f, err = Encode(EventYourID, map[string]string{"id": "c1"})
	req.NoError(err)
	req.JSONEq(`{"type":"your-id","data":{"id":"c1"}}`, string(f))
}
