package app

import (
	"sort"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Presence owns the roster of registered users, indexed by identity and by
// connection handle. It is not safe for concurrent use: the dispatcher
// serializes every event that touches it.
type Presence struct {
	byIdentity map[domain.Identity]*domain.RegisteredUser
	byHandle   map[domain.ConnID]domain.Identity
}

func NewPresence() *Presence {
	return &Presence{
		byIdentity: make(map[domain.Identity]*domain.RegisteredUser),
		byHandle:   make(map[domain.ConnID]domain.Identity),
	}
}

// Register binds identity to handle. Registering the same pair twice is a
// no-op; the registry is left untouched on every error.
func (p *Presence) Register(handle domain.ConnID, raw string) (domain.RegisteredUser, error) {
	identity, err := domain.ParseIdentity(raw)
	if err != nil {
		return domain.RegisteredUser{}, err
	}
	if u, ok := p.byIdentity[identity]; ok {
		if u.Handle == handle {
			return *u, nil
		}
		return domain.RegisteredUser{}, domain.ErrIdentityTaken
	}
	if _, ok := p.byHandle[handle]; ok {
		return domain.RegisteredUser{}, domain.ErrAlreadyRegistered
	}
	u := &domain.RegisteredUser{Handle: handle, Identity: identity, State: domain.Idle}
	p.byIdentity[identity] = u
	p.byHandle[handle] = identity
	log.Info().Str("module", "app.presence").Str("conn", string(handle)).Str("identity", string(identity)).Msg("registered")
	return *u, nil
}

func (p *Presence) Lookup(identity domain.Identity) (domain.ConnID, bool) {
	if u, ok := p.byIdentity[identity]; ok {
		return u.Handle, true
	}
	return "", false
}

func (p *Presence) LookupByHandle(handle domain.ConnID) (domain.RegisteredUser, bool) {
	if u := p.userByHandle(handle); u != nil {
		return *u, true
	}
	return domain.RegisteredUser{}, false
}

func (p *Presence) Get(identity domain.Identity) (domain.RegisteredUser, bool) {
	if u, ok := p.byIdentity[identity]; ok {
		return *u, true
	}
	return domain.RegisteredUser{}, false
}

// SetCallState overwrites the call state of identity. Unknown identities are
// ignored.
func (p *Presence) SetCallState(identity domain.Identity, state domain.CallState, peer *domain.Identity) {
	u, ok := p.byIdentity[identity]
	if !ok {
		return
	}
	if state == domain.Idle {
		peer = nil
	}
	u.State = state
	u.Peer = peer
	log.Debug().Str("module", "app.presence").Str("identity", string(identity)).Str("state", state.String()).Msg("call state")
}

func (p *Presence) Unregister(handle domain.ConnID) (domain.RegisteredUser, bool) {
	identity, ok := p.byHandle[handle]
	if !ok {
		return domain.RegisteredUser{}, false
	}
	u := p.byIdentity[identity]
	delete(p.byHandle, handle)
	delete(p.byIdentity, identity)
	log.Info().Str("module", "app.presence").Str("conn", string(handle)).Str("identity", string(identity)).Msg("unregistered")
	return *u, true
}

// PeersOf returns every user whose recorded peer is identity.
func (p *Presence) PeersOf(identity domain.Identity) []domain.RegisteredUser {
	var out []domain.RegisteredUser
	for _, u := range p.byIdentity {
		if u.PeerIs(identity) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

// Roster returns a snapshot of all registered users ordered by identity.
func (p *Presence) Roster() []domain.RegisteredUser {
	out := make([]domain.RegisteredUser, 0, len(p.byIdentity))
	for _, u := range p.byIdentity {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity < out[j].Identity })
	return out
}

func (p *Presence) Count() int { return len(p.byIdentity) }

func (p *Presence) userByHandle(handle domain.ConnID) *domain.RegisteredUser {
	identity, ok := p.byHandle[handle]
	if !ok {
		return nil
	}
	return p.byIdentity[identity]
}
