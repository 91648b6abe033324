package orch

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Orchestrator is the event dispatcher. Every inbound event runs under one
// lock: the registries are mutated, the resulting notifications are queued in
// an outbox, and the outbox is flushed before the lock is released so each
// connection sees events in commit order.
type Orchestrator struct {
	Conns    *app.Registry
	Presence *app.Presence
	Calls    *app.Calls
	Rooms    *app.RoomManager
	Policy   app.Policy

	mu     sync.Mutex
	outbox []delivery
}

// New wires an orchestrator with fresh registries.
func New(conns *app.Registry, policy app.Policy) *Orchestrator {
	presence := app.NewPresence()
	return &Orchestrator{
		Conns:    conns,
		Presence: presence,
		Calls:    app.NewCalls(presence),
		Rooms:    app.NewRoomManager(),
		Policy:   policy,
	}
}

type delivery struct {
	to     []domain.ConnID
	all    bool
	except domain.ConnID
	typ    string
	data   any
}

func (o *Orchestrator) emit(to domain.ConnID, typ string, data any) {
	o.outbox = append(o.outbox, delivery{to: []domain.ConnID{to}, typ: typ, data: data})
}

func (o *Orchestrator) emitMany(to []domain.ConnID, typ string, data any) {
	if len(to) == 0 {
		return
	}
	o.outbox = append(o.outbox, delivery{to: to, typ: typ, data: data})
}

func (o *Orchestrator) broadcast(typ string, data any, except domain.ConnID) {
	o.outbox = append(o.outbox, delivery{all: true, except: except, typ: typ, data: data})
}

func (o *Orchestrator) broadcastRoster() {
	o.broadcast(core.EventUsersUpdated, usersPayload{Users: o.Presence.Roster()}, "")
}

// flush must run with o.mu held.
func (o *Orchestrator) flush() {
	outbox := o.outbox
	o.outbox = nil

	type slowConn struct {
		id  domain.ConnID
		typ string
	}
	var slow []slowConn
	for _, d := range outbox {
		frame, err := core.Encode(d.typ, d.data)
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("type", d.typ).Msg("encode event")
			continue
		}
		if d.all {
			for _, id := range o.Conns.Broadcast(frame, d.except) {
				slow = append(slow, slowConn{id, d.typ})
			}
			continue
		}
		for _, id := range d.to {
			err := o.Conns.Send(id, frame)
			switch {
			case errors.Is(err, core.ErrBackpressure):
				slow = append(slow, slowConn{id, d.typ})
			case err != nil:
				log.Debug().Err(err).Str("module", "orch").Str("conn", string(id)).Str("type", d.typ).Msg("drop event")
			}
		}
	}

	if o.Policy == nil {
		return
	}
	for _, s := range lo.UniqBy(slow, func(s slowConn) domain.ConnID { return s.id }) {
		switch o.Policy.OnBackPressure(s.id, s.typ) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("conn", string(s.id)).Str("type", s.typ).Msg("kicking slow connection")
			o.Conns.Cancel(s.id)
		case app.DropFrame, app.NoAction:
		}
	}
}

// Connect binds a freshly accepted transport connection and tells the client
// its handle.
func (o *Orchestrator) Connect(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc, clientToken string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.flush()

	o.Conns.Bind(id, conn, cancel, clientToken)
	o.emit(id, core.EventYourID, yourIDPayload{ID: id})
}

// Handle processes one inbound event from connection id.
func (o *Orchestrator) Handle(id domain.ConnID, msg core.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.flush()

	switch msg.Type {
	case core.EventRegister:
		o.handleRegister(id, msg.Data, false)
	case core.EventRegisterID:
		o.handleRegister(id, msg.Data, true)
	case core.EventWhoAmI:
		o.handleWhoAmI(id)
	case core.EventGetUsers:
		o.emit(id, core.EventUsersUpdated, usersPayload{Users: o.Presence.Roster()})
	case core.EventCallUser:
		o.handleCallUser(id, msg.Data)
	case core.EventAnswerCall:
		o.handleAnswerCall(id, msg.Data)
	case core.EventRejectCall:
		o.handleRejectCall(id, msg.Data)
	case core.EventEndCall:
		o.handleEndCall(id, msg.Data)
	case core.EventCreateRoom:
		o.handleCreateRoom(id, msg.Data)
	case core.EventJoinRoom:
		o.handleJoinRoom(id, msg.Data)
	case core.EventLeaveRoom:
		o.handleLeaveRoom(id, msg.Data)
	case core.EventGetRooms:
		o.emit(id, core.EventRoomsUpdated, roomsPayload{Rooms: o.Rooms.List()})
	default:
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("type", msg.Type).Msg("unknown event")
		o.emit(id, core.EventError, errorPayload{Error: "unknown event"})
	}
}

// Disconnect releases everything connection id held. Calls are torn down
// from the user record before the record is removed.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.flush()

	o.Conns.Unbind(id)

	if user, ok := o.Presence.LookupByHandle(id); ok {
		peers := o.Calls.Drop(user.Identity)
		for _, p := range peers {
			o.emit(p.Handle, core.EventCallEnded, callEndedPayload{
				From:   user.Identity,
				Reason: string(user.Identity) + " disconnected",
			})
		}
		o.Presence.Unregister(id)
		o.broadcast(core.EventUserUnregistered, unregisteredPayload{Identity: user.Identity, ID: id}, id)
		o.broadcast(core.EventUserDisconnected, disconnectedPayload{UserID: user.Identity}, id)
		if len(peers) > 0 {
			o.broadcastRoster()
		}
	}

	o.cleanupRooms(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnected")
}

// ListUsers returns the current roster.
func (o *Orchestrator) ListUsers() []domain.RegisteredUser {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Presence.Roster()
}

// ListRooms returns the current rooms in creation order.
func (o *Orchestrator) ListRooms() []domain.MeetingRoom {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.List()
}

func (o *Orchestrator) Room(id domain.RoomID) (domain.MeetingRoom, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Rooms.Get(id)
}
