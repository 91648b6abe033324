package domain

import (
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

const (
	MaxRoomNameLen  = 64
	DefaultRoomName = "room"
)

type RoomID string

// MeetingRoom groups connections under a name. Participants keeps join order
// and holds each handle at most once.
type MeetingRoom struct {
	ID           RoomID    `json:"roomId"`
	Name         string    `json:"name"`
	CreatedBy    ConnID    `json:"createdBy"`
	Admin        ConnID    `json:"admin"`
	Participants []ConnID  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r MeetingRoom) Has(id ConnID) bool {
	return lo.Contains(r.Participants, id)
}

// Clone returns a copy that shares no slice with the receiver.
func (r MeetingRoom) Clone() MeetingRoom {
	r.Participants = append([]ConnID(nil), r.Participants...)
	return r
}

// RoomName caps raw at MaxRoomNameLen bytes without splitting a rune.
func RoomName(raw string) string {
	if len(raw) > MaxRoomNameLen {
		cut := MaxRoomNameLen
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut]
	}
	if raw == "" {
		return DefaultRoomName
	}
	return raw
}
