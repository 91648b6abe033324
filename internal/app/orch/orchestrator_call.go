package orch

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) handleCallUser(id domain.ConnID, data json.RawMessage) {
	var p callUserPayload
	if err := decode(data, &p, nil); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("bad call-user payload")
		o.emit(id, core.EventUserNotFound, userNotFoundPayload{UserToCall: p.UserToCall})
		return
	}

	caller, callee, err := o.Calls.Call(id, domain.Identity(p.UserToCall))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		o.emit(id, core.EventUserNotFound, userNotFoundPayload{UserToCall: p.UserToCall})
		return
	case err != nil:
		log.Info().Err(err).Str("module", "orch").Str("conn", string(id)).Str("to", p.UserToCall).Msg("call refused")
		o.emit(id, core.EventCallError, callErrorPayload{Error: err.Error(), UserToCall: p.UserToCall})
		return
	}

	o.emit(callee.Handle, core.EventCallMade, callMadePayload{
		Signal: p.SignalData,
		From:   caller.Identity,
		ID:     caller.Handle,
	})
	o.broadcastRoster()
}

func (o *Orchestrator) handleAnswerCall(id domain.ConnID, data json.RawMessage) {
	var p answerCallPayload
	if err := decode(data, &p, nil); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("answer-call without target")
		return
	}

	callee, caller, err := o.Calls.Answer(id, domain.Identity(p.To))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		log.Debug().Str("module", "orch").Str("conn", string(id)).Str("to", p.To).Msg("answer-call target gone")
		return
	case err != nil:
		log.Info().Err(err).Str("module", "orch").Str("conn", string(id)).Str("to", p.To).Msg("answer refused")
		o.emit(id, core.EventCallError, callErrorPayload{Error: err.Error(), UserToCall: p.To})
		return
	}

	o.emit(caller.Handle, core.EventCallAnswered, callAnsweredPayload{Signal: p.Signal, From: callee.Identity})
	o.broadcastRoster()
}

func (o *Orchestrator) handleRejectCall(id domain.ConnID, data json.RawMessage) {
	var p rejectCallPayload
	if err := decode(data, &p, &p.To); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("reject-call without target")
		return
	}

	callee, caller, err := o.Calls.Reject(id, domain.Identity(p.To))
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		o.emit(id, core.EventCallError, callErrorPayload{Error: err.Error(), UserToCall: p.To})
		return
	case err != nil:
		// The caller is gone or talking to someone else; only the callee's own
		// state may have changed.
		o.broadcastRoster()
		return
	}

	o.emit(caller.Handle, core.EventCallRejected, callRejectedPayload{From: callee.Identity})
	o.broadcastRoster()
}

func (o *Orchestrator) handleEndCall(id domain.ConnID, data json.RawMessage) {
	var p endCallPayload
	if err := decode(data, &p, &p.To); err != nil {
		log.Debug().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("bad end-call payload")
	}
	var hint *domain.Identity
	if p.To != "" {
		to := domain.Identity(p.To)
		hint = &to
	}

	user, peer, err := o.Calls.End(id, hint)
	if err != nil {
		o.emit(id, core.EventCallError, callErrorPayload{Error: err.Error()})
		return
	}
	if peer != nil {
		o.emit(peer.Handle, core.EventCallEnded, callEndedPayload{From: user.Identity, Reason: "call ended by " + string(user.Identity)})
	}
	o.broadcastRoster()
}
