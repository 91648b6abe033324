package app

import (
	"testing"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/core/mocks"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRegistry_BindSendUnbind(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	conn := mocks.NewMockSignalConnection(ctrl)
	r := NewRegistry()

	frame := core.Frame(`{"type":"pong"}`)
	conn.EXPECT().TrySend(frame).Return(nil).Times(1)

	r.Bind("c1", conn, nil, "token-1")
	req.Equal(1, r.Count())
	req.Equal("token-1", r.ClientToken("c1"))
	req.NoError(r.Send("c1", frame))

	r.Unbind("c1")
	req.Zero(r.Count())
	req.ErrorIs(r.Send("c1", frame), ErrUnknownConnection)
	req.Empty(r.ClientToken("c1"))
}

func TestRegistry_Broadcast_ReportsSlow(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	fast := mocks.NewMockSignalConnection(ctrl)
	slow := mocks.NewMockSignalConnection(ctrl)
	sender := mocks.NewMockSignalConnection(ctrl)
	r := NewRegistry()
	r.Bind("fast", fast, nil, "")
	r.Bind("slow", slow, nil, "")
	r.Bind("sender", sender, nil, "")

	fast.EXPECT().TrySend(gomock.Any()).Return(nil)
	slow.EXPECT().TrySend(gomock.Any()).Return(core.ErrBackpressure)
	sender.EXPECT().TrySend(gomock.Any()).Times(0)

	got := r.Broadcast(core.Frame("x"), "sender")
	req.Equal([]domain.ConnID{"slow"}, got)
}

func TestRegistry_Cancel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	r := NewRegistry()
	canceled := 0
	r.Bind("c1", mocks.NewMockSignalConnection(ctrl), func() { canceled++ }, "")

	req.True(r.Cancel("c1"))
	req.Equal(1, canceled)
	req.False(r.Cancel("ghost"))
}
