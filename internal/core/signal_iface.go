package core

import "errors"

// Frame is one encoded outbound message.
type Frame []byte

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
//
//go:generate mockgen -destination=mocks/signal_connection.go -package=mocks . SignalConnection
type SignalConnection interface {
	// TrySend enqueues f without blocking. It returns ErrBackpressure when the
	// outbound queue is full and ErrConnectionClosed after Close.
	TrySend(f Frame) error
	Close()
}
