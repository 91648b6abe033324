package app

import "github.com/dkeye/Relay/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a connection whose outbound queue is full.
type Policy interface {
	OnBackPressure(conn domain.ConnID, event string) BackpressureAction
}

// SimplePolicy kicks any connection that cannot keep up: a client that missed
// a signaling event has no way to recover it.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnID, string) BackpressureAction {
	return KickMember
}
