package orch

import (
	"encoding/json"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleRegister serves both "register" and the older "register-id", which
// additionally expects an id-registered acknowledgement.
func (o *Orchestrator) handleRegister(id domain.ConnID, data json.RawMessage, ack bool) {
	var p registerPayload
	if err := decode(data, &p, &p.Identity); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("bad register payload")
		o.registrationFailed(id, domain.ErrIdentityEmpty, p.Identity, ack)
		return
	}

	user, err := o.Presence.Register(id, p.Identity)
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("conn", string(id)).Str("identity", p.Identity).Msg("registration refused")
		o.registrationFailed(id, err, p.Identity, ack)
		return
	}

	roster := o.Presence.Roster()
	o.emit(id, core.EventRegistered, registeredPayload{User: user, Users: roster})
	if ack {
		o.emit(id, core.EventIDRegistered, idRegisteredPayload{Success: true})
	}
	o.broadcast(core.EventUsersUpdated, usersPayload{Users: roster}, id)
}

func (o *Orchestrator) registrationFailed(id domain.ConnID, err error, identity string, ack bool) {
	o.emit(id, core.EventRegistrationError, registrationErrorPayload{Error: err.Error(), Identity: identity})
	if ack {
		o.emit(id, core.EventIDRegistered, idRegisteredPayload{Success: false, Error: err.Error()})
	}
}

func (o *Orchestrator) handleWhoAmI(id domain.ConnID) {
	resp := whoAmIPayload{ID: id, Rooms: o.Rooms.RoomsOf(id)}
	if user, ok := o.Presence.LookupByHandle(id); ok {
		resp.User = &user
	}
	o.emit(id, core.EventWhoAmI, resp)
}
