package signal

import (
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow_SlidingWindow(t *testing.T) {
	req := require.New(t)
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }
	id := domain.ConnID("c1")

	// Given two events inside the window
	req.True(rl.Allow(id))
	req.True(rl.Allow(id))

	// Then the third one is refused
	req.False(rl.Allow(id))

	// And other connections are unaffected
	req.True(rl.Allow(domain.ConnID("c2")))

	// When the window slides past the first events
	now = now.Add(1500 * time.Millisecond)

	// Then the connection may send again
	req.True(rl.Allow(id))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Second)
	for range 100 {
		require.True(t, rl.Allow(domain.ConnID("c1")))
	}
}

func TestRateLimiter_Forget(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(1, time.Minute)
	id := domain.ConnID("c1")

	req.True(rl.Allow(id))
	req.False(rl.Allow(id))

	rl.Forget(id)
	req.True(rl.Allow(id))
}
