package app

import (
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Calls is the call state machine. States live on the Presence records:
//
//	Idle --call--> Calling(target) --answer--> InCall(peer)
//	any  --reject/end/disconnect--> Idle
//
// Only the caller is marked while an invitation rings; the callee stays Idle
// until it answers.
type Calls struct {
	presence *Presence
}

func NewCalls(p *Presence) *Calls {
	return &Calls{presence: p}
}

// Call moves the caller registered on from into Calling(to).
func (c *Calls) Call(from domain.ConnID, to domain.Identity) (caller, callee domain.RegisteredUser, err error) {
	cu := c.presence.userByHandle(from)
	if cu == nil {
		return caller, callee, domain.ErrNotRegistered
	}
	ce, ok := c.presence.byIdentity[to]
	if !ok {
		return caller, callee, domain.ErrUserNotFound
	}
	if ce == cu {
		return caller, callee, domain.ErrSelfCall
	}
	if cu.Busy() || ce.Busy() {
		return caller, callee, domain.ErrUserBusy
	}
	c.presence.SetCallState(cu.Identity, domain.Calling, ref(ce.Identity))
	log.Info().Str("module", "app.calls").Str("from", string(cu.Identity)).Str("to", string(ce.Identity)).Msg("calling")
	return *cu, *ce, nil
}

// Answer puts the callee registered on from and the caller to in a call with
// each other. The caller must still be ringing the callee.
func (c *Calls) Answer(from domain.ConnID, to domain.Identity) (callee, caller domain.RegisteredUser, err error) {
	ce := c.presence.userByHandle(from)
	if ce == nil {
		return callee, caller, domain.ErrNotRegistered
	}
	cr, ok := c.presence.byIdentity[to]
	if !ok {
		return callee, caller, domain.ErrUserNotFound
	}
	if cr.State != domain.Calling || !cr.PeerIs(ce.Identity) {
		return callee, caller, domain.ErrNoPendingCall
	}
	if ce.Busy() {
		return callee, caller, domain.ErrUserBusy
	}
	c.presence.SetCallState(ce.Identity, domain.InCall, ref(cr.Identity))
	c.presence.SetCallState(cr.Identity, domain.InCall, ref(ce.Identity))
	log.Info().Str("module", "app.calls").Str("callee", string(ce.Identity)).Str("caller", string(cr.Identity)).Msg("answered")
	return *ce, *cr, nil
}

// Reject resets the callee registered on from and the caller to. Either side
// is left alone if it is engaged with a third party; a caller engaged
// elsewhere yields ErrNoPendingCall and must not be told anything.
func (c *Calls) Reject(from domain.ConnID, to domain.Identity) (callee, caller domain.RegisteredUser, err error) {
	ce := c.presence.userByHandle(from)
	if ce == nil {
		return callee, caller, domain.ErrNotRegistered
	}
	if ce.Peer == nil || ce.PeerIs(to) {
		c.presence.SetCallState(ce.Identity, domain.Idle, nil)
	}
	cr, ok := c.presence.byIdentity[to]
	if !ok {
		return *ce, caller, domain.ErrUserNotFound
	}
	if cr.Peer != nil && !cr.PeerIs(ce.Identity) {
		return *ce, *cr, domain.ErrNoPendingCall
	}
	c.presence.SetCallState(cr.Identity, domain.Idle, nil)
	log.Info().Str("module", "app.calls").Str("callee", string(ce.Identity)).Str("caller", string(cr.Identity)).Msg("rejected")
	return *ce, *cr, nil
}

// End resets the user registered on from and its peer. When from has no
// recorded peer, hint names the other party; it is honoured only if that user
// points back at from. The returned peer is nil when nobody has to be told.
// A user rung by from is told even if it has started calling someone else
// since; its own state is then left alone. A user in a call with someone
// else is never told.
func (c *Calls) End(from domain.ConnID, hint *domain.Identity) (domain.RegisteredUser, *domain.RegisteredUser, error) {
	u := c.presence.userByHandle(from)
	if u == nil {
		return domain.RegisteredUser{}, nil, domain.ErrNotRegistered
	}
	var peer *domain.RegisteredUser
	ringing := false
	switch {
	case u.Peer != nil:
		peer = c.presence.byIdentity[*u.Peer]
		ringing = u.State == domain.Calling
	case hint != nil:
		if h, ok := c.presence.byIdentity[*hint]; ok && h.PeerIs(u.Identity) {
			peer = h
		}
	}
	c.presence.SetCallState(u.Identity, domain.Idle, nil)
	if peer == nil {
		return *u, nil, nil
	}
	switch {
	case peer.Peer == nil || peer.PeerIs(u.Identity):
		c.presence.SetCallState(peer.Identity, domain.Idle, nil)
	case !ringing || peer.InCall():
		return *u, nil, nil
	}
	log.Info().Str("module", "app.calls").Str("from", string(u.Identity)).Str("peer", string(peer.Identity)).Msg("ended")
	snap := *peer
	return *u, &snap, nil
}

// Drop releases every call identity takes part in: users whose peer is
// identity, and the user identity is ringing unless that user is in another
// call. Each affected user is returned once so it can be told. Users engaged
// elsewhere keep their state. The record
// of identity itself stays registered.
func (c *Calls) Drop(identity domain.Identity) []domain.RegisteredUser {
	u, ok := c.presence.byIdentity[identity]
	if !ok {
		return nil
	}
	affected := c.presence.PeersOf(identity)
	if u.State == domain.Calling && u.Peer != nil {
		if p, ok := c.presence.byIdentity[*u.Peer]; ok && !p.InCall() {
			affected = append(affected, *p)
		}
	}
	affected = lo.UniqBy(affected, func(r domain.RegisteredUser) domain.Identity { return r.Identity })

	out := make([]domain.RegisteredUser, 0, len(affected))
	for _, r := range affected {
		if r.Peer == nil || r.PeerIs(identity) {
			c.presence.SetCallState(r.Identity, domain.Idle, nil)
		}
		snap, _ := c.presence.Get(r.Identity)
		out = append(out, snap)
	}
	c.presence.SetCallState(identity, domain.Idle, nil)
	if len(out) > 0 {
		log.Info().Str("module", "app.calls").Str("identity", string(identity)).Int("peers", len(out)).Msg("dropped calls")
	}
	return out
}

func ref(id domain.Identity) *domain.Identity { return &id }
