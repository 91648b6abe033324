package app

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

var ErrUnknownConnection = errors.New("unknown connection")

type connEntry struct {
	Conn        core.SignalConnection
	Cancel      context.CancelFunc
	ClientToken string
}

// Registry maps live connection handles to their transport endpoints.
// Other registries only store handles and resolve them here on delivery.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) Bind(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc, clientToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn, Cancel: cancel, ClientToken: clientToken}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("client", clientToken).Msg("bound connection")
}

func (r *Registry) Unbind(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
}

func (r *Registry) Get(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) ClientToken(id domain.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.ClientToken
	}
	return ""
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Send enqueues f for one connection without blocking.
func (r *Registry) Send(id domain.ConnID, f core.Frame) error {
	conn, ok := r.Get(id)
	if !ok {
		return ErrUnknownConnection
	}
	return conn.TrySend(f)
}

// Broadcast enqueues f for every connection except the given one and returns
// the handles whose outbound queue was full.
func (r *Registry) Broadcast(f core.Frame, except domain.ConnID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var slow []domain.ConnID
	for id, e := range r.conns {
		if id == except {
			continue
		}
		if err := e.Conn.TrySend(f); errors.Is(err, core.ErrBackpressure) {
			slow = append(slow, id)
		}
	}
	log.Debug().Str("module", "app.registry").Int("conns", len(r.conns)).Int("slow", len(slow)).Msg("broadcast result")
	return slow
}

// Cancel stops the connection's context; the transport reports the
// disconnect once its pumps exit.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("canceled connection")
	return true
}
