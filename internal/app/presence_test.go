package app

import (
	"testing"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestPresence_Register_UniqueIdentity(t *testing.T) {
	req := require.New(t)
	p := NewPresence()

	// Given alice is registered
	alice, err := p.Register("c1", "alice")
	req.NoError(err)
	req.Equal(domain.Identity("alice"), alice.Identity)
	req.Equal(domain.Idle, alice.State)
	req.Nil(alice.Peer)

	// When another connection claims the same identity
	_, err = p.Register("c2", "alice")

	// Then it is refused and the registry is unchanged
	req.ErrorIs(err, domain.ErrIdentityTaken)
	req.Equal(1, p.Count())
	handle, ok := p.Lookup("alice")
	req.True(ok)
	req.Equal(domain.ConnID("c1"), handle)
	_, ok = p.LookupByHandle("c2")
	req.False(ok)
}

func TestPresence_Register_CaseSensitive(t *testing.T) {
	req := require.New(t)
	p := NewPresence()

	_, err := p.Register("c1", "alice")
	req.NoError(err)
	_, err = p.Register("c2", "Alice")
	req.NoError(err)

	req.Equal(2, p.Count())
}

func TestPresence_Register_SameConnection(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	_, err := p.Register("c1", "alice")
	req.NoError(err)

	// Registering the same pair again is harmless
	again, err := p.Register("c1", "alice")
	req.NoError(err)
	req.Equal(domain.ConnID("c1"), again.Handle)

	// A second identity on the same connection is not
	_, err = p.Register("c1", "bob")
	req.ErrorIs(err, domain.ErrAlreadyRegistered)
	req.Equal(1, p.Count())
}

func TestPresence_Register_InvalidIdentity(t *testing.T) {
	req := require.New(t)
	p := NewPresence()

	_, err := p.Register("c1", "   ")
	req.ErrorIs(err, domain.ErrIdentityEmpty)

	long := make([]byte, domain.MaxIdentityLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = p.Register("c1", string(long))
	req.ErrorIs(err, domain.ErrIdentityTooLong)

	req.Zero(p.Count())
}

func TestPresence_Unregister(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	_, _ = p.Register("c1", "alice")

	removed, ok := p.Unregister("c1")
	req.True(ok)
	req.Equal(domain.Identity("alice"), removed.Identity)

	_, ok = p.Lookup("alice")
	req.False(ok)
	_, ok = p.Unregister("c1")
	req.False(ok)

	// The identity is free again
	_, err := p.Register("c2", "alice")
	req.NoError(err)
}

func TestPresence_Roster_SortedSnapshot(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	_, _ = p.Register("c3", "carol")
	_, _ = p.Register("c1", "alice")
	_, _ = p.Register("c2", "bob")

	roster := p.Roster()
	req.Len(roster, 3)
	req.Equal([]domain.Identity{"alice", "bob", "carol"}, []domain.Identity{roster[0].Identity, roster[1].Identity, roster[2].Identity})

	// Mutating the snapshot does not touch the registry
	roster[0].State = domain.InCall
	alice, _ := p.Get("alice")
	req.Equal(domain.Idle, alice.State)
}

func TestPresence_SetCallState_IdleClearsPeer(t *testing.T) {
	req := require.New(t)
	p := NewPresence()
	_, _ = p.Register("c1", "alice")
	bob := domain.Identity("bob")

	p.SetCallState("alice", domain.InCall, &bob)
	alice, _ := p.Get("alice")
	req.True(alice.InCall())
	req.True(alice.PeerIs("bob"))
	req.Len(p.PeersOf("bob"), 1)

	p.SetCallState("alice", domain.Idle, &bob)
	alice, _ = p.Get("alice")
	req.False(alice.InCall())
	req.Nil(alice.Peer)
	req.Empty(p.PeersOf("bob"))

	// Unknown identities are ignored
	p.SetCallState("nobody", domain.InCall, &bob)
	req.Equal(1, p.Count())
}
