package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestRoomManager() *RoomManager {
	m := NewRoomManager()
	seq := 0
	m.newID = func() domain.RoomID {
		seq++
		return domain.RoomID(fmt.Sprintf("room-%d", seq))
	}
	m.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestRoomManager_Standup(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()

	// Given c1 creates "standup"
	room := m.CreateRoom("c1", "standup")
	req.Equal("standup", room.Name)
	req.Equal(domain.ConnID("c1"), room.CreatedBy)
	req.Equal(domain.ConnID("c1"), room.Admin)
	req.Equal([]domain.ConnID{"c1"}, room.Participants)

	// When c2 joins
	room, joined, err := m.JoinRoom(room.ID, "c2")
	req.NoError(err)
	req.True(joined)
	req.Equal([]domain.ConnID{"c1", "c2"}, room.Participants)

	// When c1 leaves
	room, deleted, err := m.LeaveRoom(room.ID, "c1")
	req.NoError(err)
	req.False(deleted)
	req.Equal([]domain.ConnID{"c2"}, room.Participants)
	req.Equal(domain.ConnID("c2"), room.Admin)

	// When c2 leaves, the room goes away
	_, deleted, err = m.LeaveRoom(room.ID, "c2")
	req.NoError(err)
	req.True(deleted)
	_, ok := m.Get(room.ID)
	req.False(ok)
	req.Zero(m.Count())
}

func TestRoomManager_CreateRoom_Name(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()

	req.Equal(domain.DefaultRoomName, m.CreateRoom("c1", "").Name)

	long := m.CreateRoom("c1", fmt.Sprintf("%080d", 0))
	req.Len(long.Name, domain.MaxRoomNameLen)
}

func TestRoomManager_JoinRoom_Twice(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()
	room := m.CreateRoom("c1", "r")

	room, joined, err := m.JoinRoom(room.ID, "c1")
	req.NoError(err)
	req.False(joined)
	req.Equal([]domain.ConnID{"c1"}, room.Participants)
}

func TestRoomManager_UnknownRoom(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()

	_, _, err := m.JoinRoom("nope", "c1")
	req.ErrorIs(err, domain.ErrRoomNotFound)
	_, _, err = m.LeaveRoom("nope", "c1")
	req.ErrorIs(err, domain.ErrRoomNotFound)
	req.Zero(m.Count())
}

func TestRoomManager_LeaveRoom_NotMember(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()
	room := m.CreateRoom("c1", "r")

	room, deleted, err := m.LeaveRoom(room.ID, "c9")
	req.NoError(err)
	req.False(deleted)
	req.Equal([]domain.ConnID{"c1"}, room.Participants)
}

func TestRoomManager_DisconnectCleanup(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()

	solo := m.CreateRoom("c1", "solo")
	shared := m.CreateRoom("c1", "shared")
	other := m.CreateRoom("c2", "other")
	_, _, _ = m.JoinRoom(shared.ID, "c2")

	survivors, changed := m.DisconnectCleanup("c1")
	req.True(changed)
	req.Len(survivors, 1)
	req.Equal(shared.ID, survivors[0].ID)
	req.Equal(domain.ConnID("c2"), survivors[0].Admin)

	_, ok := m.Get(solo.ID)
	req.False(ok)
	_, ok = m.Get(other.ID)
	req.True(ok)

	// A handle in no room changes nothing
	survivors, changed = m.DisconnectCleanup("c1")
	req.False(changed)
	req.Empty(survivors)
}

func TestRoomManager_List_CreationOrder(t *testing.T) {
	req := require.New(t)
	m := newTestRoomManager()
	a := m.CreateRoom("c1", "a")
	b := m.CreateRoom("c2", "b")
	c := m.CreateRoom("c3", "c")

	_, _, _ = m.LeaveRoom(b.ID, "c2")

	list := m.List()
	req.Len(list, 2)
	req.Equal(a.ID, list[0].ID)
	req.Equal(c.ID, list[1].ID)
	req.Equal([]domain.RoomID{c.ID}, m.RoomsOf("c3"))

	// Snapshots are detached from the manager
	list[0].Participants[0] = "mallory"
	got, _ := m.Get(a.ID)
	req.Equal([]domain.ConnID{"c1"}, got.Participants)
}
