package orch

import (
	"encoding/json"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleCreateRoom(id domain.ConnID, data json.RawMessage) {
	var p createRoomPayload
	if err := decode(data, &p, &p.Name); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("bad create-room payload")
		o.emit(id, core.EventRoomError, roomErrorPayload{Error: "bad_payload"})
		return
	}
	room := o.Rooms.CreateRoom(id, p.Name)
	o.broadcast(core.EventRoomCreated, roomPayload{Room: room}, "")
}

func (o *Orchestrator) handleJoinRoom(id domain.ConnID, data json.RawMessage) {
	var p roomRefPayload
	if err := decode(data, &p, &p.RoomID); err != nil {
		o.emit(id, core.EventRoomError, roomErrorPayload{Error: domain.ErrRoomNotFound.Error(), RoomID: p.RoomID})
		return
	}
	room, joined, err := o.Rooms.JoinRoom(domain.RoomID(p.RoomID), id)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("conn", string(id)).Str("room", p.RoomID).Msg("join refused")
		o.emit(id, core.EventRoomError, roomErrorPayload{Error: err.Error(), RoomID: p.RoomID})
		return
	}
	if !joined {
		return
	}
	o.emitMany(room.Participants, core.EventRoomUpdated, roomPayload{Room: room})
	o.broadcast(core.EventRoomsUpdated, roomsPayload{Rooms: o.Rooms.List()}, "")
}

func (o *Orchestrator) handleLeaveRoom(id domain.ConnID, data json.RawMessage) {
	var p roomRefPayload
	if err := decode(data, &p, &p.RoomID); err != nil {
		o.emit(id, core.EventRoomError, roomErrorPayload{Error: domain.ErrRoomNotFound.Error(), RoomID: p.RoomID})
		return
	}
	if room, ok := o.Rooms.Get(domain.RoomID(p.RoomID)); ok && !room.Has(id) {
		return
	}
	room, deleted, err := o.Rooms.LeaveRoom(domain.RoomID(p.RoomID), id)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("conn", string(id)).Str("room", p.RoomID).Msg("leave refused")
		o.emit(id, core.EventRoomError, roomErrorPayload{Error: err.Error(), RoomID: p.RoomID})
		return
	}
	if !deleted {
		o.emitMany(room.Participants, core.EventRoomUpdated, roomPayload{Room: room})
	}
	o.broadcast(core.EventRoomsUpdated, roomsPayload{Rooms: o.Rooms.List()}, "")
}

// cleanupRooms drops a vanished connection from its rooms and publishes the
// room list once.
func (o *Orchestrator) cleanupRooms(id domain.ConnID) {
	survivors, changed := o.Rooms.DisconnectCleanup(id)
	for _, room := range survivors {
		o.emitMany(room.Participants, core.EventRoomUpdated, roomPayload{Room: room})
	}
	if changed {
		o.broadcast(core.EventRoomsUpdated, roomsPayload{Rooms: o.Rooms.List()}, id)
	}
}
