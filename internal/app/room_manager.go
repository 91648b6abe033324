package app

import (
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// RoomManager owns the meeting rooms. A room with no participants is deleted
// on the spot. Not safe for concurrent use; the dispatcher serializes access.
type RoomManager struct {
	rooms map[domain.RoomID]*domain.MeetingRoom
	order []domain.RoomID

	now   func() time.Time
	newID func() domain.RoomID
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		rooms: make(map[domain.RoomID]*domain.MeetingRoom),
		now:   time.Now,
		newID: func() domain.RoomID { return domain.RoomID(uuid.NewString()) },
	}
}

func (m *RoomManager) CreateRoom(creator domain.ConnID, name string) domain.MeetingRoom {
	room := &domain.MeetingRoom{
		ID:           m.newID(),
		Name:         domain.RoomName(name),
		CreatedBy:    creator,
		Admin:        creator,
		Participants: []domain.ConnID{creator},
		CreatedAt:    m.now(),
	}
	m.rooms[room.ID] = room
	m.order = append(m.order, room.ID)
	log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Str("name", room.Name).Str("conn", string(creator)).Msg("room created")
	return room.Clone()
}

func (m *RoomManager) Get(id domain.RoomID) (domain.MeetingRoom, bool) {
	room, ok := m.rooms[id]
	if !ok {
		return domain.MeetingRoom{}, false
	}
	return room.Clone(), true
}

// JoinRoom appends handle to the room. Joining twice is a no-op reported by
// joined=false.
func (m *RoomManager) JoinRoom(id domain.RoomID, handle domain.ConnID) (room domain.MeetingRoom, joined bool, err error) {
	r, ok := m.rooms[id]
	if !ok {
		return room, false, domain.ErrRoomNotFound
	}
	if r.Has(handle) {
		return r.Clone(), false, nil
	}
	r.Participants = append(r.Participants, handle)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(handle)).Msg("member joined")
	return r.Clone(), true, nil
}

// LeaveRoom removes handle from the room and deletes the room once it is
// empty. Leaving a room one is not part of changes nothing.
func (m *RoomManager) LeaveRoom(id domain.RoomID, handle domain.ConnID) (room domain.MeetingRoom, deleted bool, err error) {
	r, ok := m.rooms[id]
	if !ok {
		return room, false, domain.ErrRoomNotFound
	}
	deleted = m.removeMember(r, handle)
	return r.Clone(), deleted, nil
}

// DisconnectCleanup removes handle from every room. It returns the rooms that
// lost a member and still exist, and whether anything changed at all.
func (m *RoomManager) DisconnectCleanup(handle domain.ConnID) (survivors []domain.MeetingRoom, changed bool) {
	for _, id := range append([]domain.RoomID(nil), m.order...) {
		r := m.rooms[id]
		if !r.Has(handle) {
			continue
		}
		changed = true
		if !m.removeMember(r, handle) {
			survivors = append(survivors, r.Clone())
		}
	}
	return survivors, changed
}

// List returns every room in creation order.
func (m *RoomManager) List() []domain.MeetingRoom {
	return lo.Map(m.order, func(id domain.RoomID, _ int) domain.MeetingRoom {
		return m.rooms[id].Clone()
	})
}

func (m *RoomManager) Count() int { return len(m.rooms) }

// removeMember reports whether the room was deleted.
func (m *RoomManager) removeMember(r *domain.MeetingRoom, handle domain.ConnID) bool {
	if !r.Has(handle) {
		return false
	}
	r.Participants = lo.Without(r.Participants, handle)
	log.Info().Str("module", "app.rooms").Str("room", string(r.ID)).Str("conn", string(handle)).Msg("member left")
	if len(r.Participants) == 0 {
		delete(m.rooms, r.ID)
		m.order = lo.Without(m.order, r.ID)
		log.Info().Str("module", "app.rooms").Str("room", string(r.ID)).Msg("room deleted")
		return true
	}
	if r.Admin == handle {
		r.Admin = r.Participants[0]
	}
	return false
}

// RoomsOf returns the ids of the rooms handle is part of, in creation order.
func (m *RoomManager) RoomsOf(handle domain.ConnID) []domain.RoomID {
	return lo.Filter(m.order, func(id domain.RoomID, _ int) bool {
		return m.rooms[id].Has(handle)
	})
}
