package orch

import (
	"bytes"
	"encoding/json"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode fills dst from an object payload. A bare JSON string is accepted as
// shorthand and stored in scalar, matching clients that emit
// ("register", "alice").
func decode(raw json.RawMessage, dst any, scalar *string) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"' && scalar != nil:
		if err := json.Unmarshal(raw, scalar); err != nil {
			return err
		}
	default:
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
	}
	return validate.Struct(dst)
}

// Inbound payloads.

type registerPayload struct {
	Identity string `json:"identity" validate:"required"`
}

type callUserPayload struct {
	UserToCall string          `json:"userToCall" validate:"required"`
	SignalData json.RawMessage `json:"signalData"`
	// From and Identity are what the client claims to be; the registered
	// identity of the sending connection is used instead.
	From     string `json:"from"`
	Identity string `json:"identity"`
}

type answerCallPayload struct {
	Signal json.RawMessage `json:"signal"`
	To     string          `json:"to" validate:"required"`
}

type rejectCallPayload struct {
	To string `json:"to" validate:"required"`
}

type endCallPayload struct {
	To string `json:"to"`
}

type createRoomPayload struct {
	Name string `json:"name"`
}

type roomRefPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

// Outbound payloads.

type yourIDPayload struct {
	ID domain.ConnID `json:"id"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type registeredPayload struct {
	User  domain.RegisteredUser   `json:"user"`
	Users []domain.RegisteredUser `json:"users"`
}

type registrationErrorPayload struct {
	Error    string `json:"error"`
	Identity string `json:"identity"`
}

type idRegisteredPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type usersPayload struct {
	Users []domain.RegisteredUser `json:"users"`
}

type unregisteredPayload struct {
	Identity domain.Identity `json:"identity"`
	ID       domain.ConnID   `json:"id"`
}

type disconnectedPayload struct {
	UserID domain.Identity `json:"userId"`
}

type whoAmIPayload struct {
	ID    domain.ConnID          `json:"id"`
	User  *domain.RegisteredUser `json:"user"`
	Rooms []domain.RoomID        `json:"rooms"`
}

type callMadePayload struct {
	Signal json.RawMessage `json:"signal"`
	From   domain.Identity `json:"from"`
	ID     domain.ConnID   `json:"id"`
}

type callAnsweredPayload struct {
	Signal json.RawMessage `json:"signal"`
	From   domain.Identity `json:"from"`
}

type callRejectedPayload struct {
	From domain.Identity `json:"from"`
}

type callEndedPayload struct {
	From   domain.Identity `json:"from"`
	Reason string          `json:"reason,omitempty"`
}

type callErrorPayload struct {
	Error      string `json:"error"`
	UserToCall string `json:"userToCall,omitempty"`
}

type userNotFoundPayload struct {
	UserToCall string `json:"userToCall"`
}

type roomPayload struct {
	Room domain.MeetingRoom `json:"room"`
}

type roomsPayload struct {
	Rooms []domain.MeetingRoom `json:"rooms"`
}

type roomErrorPayload struct {
	Error  string `json:"error"`
	RoomID string `json:"roomId"`
}
