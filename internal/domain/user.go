// Package domain contains entity without logic, just meta-data
package domain

import (
	"encoding/json"
	"strings"
)

const MaxIdentityLen = 64

// ConnID is the transport-assigned handle of one live connection.
type ConnID string

// Identity is the caller-chosen name a connection registers under.
type Identity string

// ParseIdentity validates a raw identity. Matching is exact and case-sensitive,
// so the value is not normalized.
func ParseIdentity(raw string) (Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrIdentityEmpty
	}
	if len(raw) > MaxIdentityLen {
		return "", ErrIdentityTooLong
	}
	return Identity(raw), nil
}

type CallState int

const (
	Idle CallState = iota
	Calling
	InCall
)

func (s CallState) String() string {
	switch s {
	case Calling:
		return "calling"
	case InCall:
		return "in-call"
	default:
		return "idle"
	}
}

// RegisteredUser is one entry of the roster.
// Peer is the call target while Calling and the other party while InCall.
type RegisteredUser struct {
	Handle   ConnID
	Identity Identity
	State    CallState
	Peer     *Identity
}

func (u RegisteredUser) InCall() bool { return u.State == InCall }

// Busy reports whether the user can't take part in a new call.
func (u RegisteredUser) Busy() bool { return u.State != Idle }

// PeerIs reports whether the user's recorded peer is id.
func (u RegisteredUser) PeerIs(id Identity) bool {
	return u.Peer != nil && *u.Peer == id
}

func (u RegisteredUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         ConnID    `json:"id"`
		Identity   Identity  `json:"identity"`
		State      string    `json:"state"`
		InCall     bool      `json:"inCall"`
		InCallWith *Identity `json:"inCallWith"`
	}{
		ID:         u.Handle,
		Identity:   u.Identity,
		State:      u.State.String(),
		InCall:     u.InCall(),
		InCallWith: u.Peer,
	})
}
