package swarm

import (
	"bytes"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/types"
)

const testTimeout = 10 * time.Second

func newSwarm(t *testing.T) *Swarm {
	t.Helper()
	key, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.SocketTimeout = 5 * time.Second
	s, err := New(key, cfg)
	require.NoError(t, err)
	require.NoError(t, s.Listen())
	t.Cleanup(s.Exit)
	return s
}

// waitEvent 以所有者身份驱动 s，直到出现满足 match 的事件
func waitEvent(t *testing.T, s *Swarm, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(testTimeout)
	for {
		for ev, ok := s.Poll(); ok; ev, ok = s.Poll() {
			if match(ev) {
				return ev
			}
		}
		select {
		case <-s.Ready():
		case <-deadline:
			t.Fatal("等待事件超时")
			return nil
		}
	}
}

func connectedTo(peer types.PeerID) func(Event) bool {
	return func(ev Event) bool {
		c, ok := ev.(PeerConnected)
		return ok && c.Peer == peer
	}
}

func disconnectedFrom(peer types.PeerID) func(Event) bool {
	return func(ev Event) bool {
		d, ok := ev.(PeerDisconnected)
		return ok && d.Peer == peer
	}
}

func isFrame(ev Event) bool {
	_, ok := ev.(FrameReceived)
	return ok
}

func connect(t *testing.T, a, b *Swarm) {
	t.Helper()
	b.AddAddrs(a.LocalPeer(), a.ListenAddr())
	require.NoError(t, b.Dial(a.LocalPeer()))
	waitEvent(t, b, connectedTo(a.LocalPeer()))
	waitEvent(t, a, connectedTo(b.LocalPeer()))
}

func TestSwarm_SendOrDialFlushesPending(t *testing.T) {
	a := newSwarm(t)
	b := newSwarm(t)

	data := []byte{0x00, 0x01, 0xfe, 0xff}
	b.AddAddrs(a.LocalPeer(), a.ListenAddr())
	require.NoError(t, b.SendOrDial(a.LocalPeer(), wire.Relay(b.LocalPeer(), a.LocalPeer(), data)))

	ev := waitEvent(t, b, connectedTo(a.LocalPeer())).(PeerConnected)
	assert.Equal(t, wire.RoleNode, ev.Role)
	assert.True(t, b.IsConnected(a.LocalPeer()))

	waitEvent(t, a, connectedTo(b.LocalPeer()))
	got := waitEvent(t, a, isFrame).(FrameReceived)
	assert.Equal(t, b.LocalPeer(), got.From)
	assert.Equal(t, wire.TypeRelay, got.Frame.Type)
	assert.True(t, bytes.Equal(data, got.Frame.Data))
	assert.Equal(t, a.LocalPeer(), got.Frame.Dst)
}

func TestSwarm_SendOrderPreserved(t *testing.T) {
	a := newSwarm(t)
	b := newSwarm(t)
	connect(t, a, b)

	for i := 0; i < 50; i++ {
		require.NoError(t, a.Send(b.LocalPeer(), wire.Relay(a.LocalPeer(), b.LocalPeer(), []byte{byte(i)})))
	}
	for i := 0; i < 50; i++ {
		got := waitEvent(t, b, isFrame).(FrameReceived)
		require.Equal(t, []byte{byte(i)}, got.Frame.Data)
	}
}

func TestSwarm_Errors(t *testing.T) {
	a := newSwarm(t)
	b := newSwarm(t)

	assert.ErrorIs(t, a.Send(b.LocalPeer(), wire.Goodbye(a.LocalPeer())), ErrNoConnection)
	assert.ErrorIs(t, a.Dial(b.LocalPeer()), ErrNoAddresses)
	assert.ErrorIs(t, a.SendOrDial(b.LocalPeer(), wire.Goodbye(a.LocalPeer())), ErrNoAddresses)
	assert.ErrorIs(t, a.Dial(a.LocalPeer()), ErrDialToSelf)
	assert.ErrorIs(t, a.Listen(), ErrAlreadyListening)

	big := wire.Relay(a.LocalPeer(), b.LocalPeer(), make([]byte, wire.MaxFrameSize))
	assert.ErrorIs(t, a.Send(b.LocalPeer(), big), wire.ErrFrameTooLarge)
	assert.ErrorIs(t, a.SendOrDial(b.LocalPeer(), big), wire.ErrFrameTooLarge)
}

func TestSwarm_DuplicateConnectionTieBreak(t *testing.T) {
	a := newSwarm(t)
	b := newSwarm(t)
	connect(t, a, b)

	// 绕过 Dial 的已连接检查，制造第二条连接
	a.AddAddrs(b.LocalPeer(), b.ListenAddr())
	a.wg.Add(1)
	go a.dialPeer(b.LocalPeer(), []ma.Multiaddr{b.ListenAddr()})

	smallerDials := a.LocalPeer() < b.LocalPeer()
	settled := func() bool {
		ca, cb := a.conns[b.LocalPeer()], b.conns[a.LocalPeer()]
		return ca != nil && cb != nil &&
			ca.outbound == smallerDials && cb.outbound == !smallerDials &&
			len(a.retired) == 0 && len(b.retired) == 0
	}

	deadline := time.After(testTimeout)
	for !settled() {
		for _, s := range []*Swarm{a, b} {
			for _, ok := s.Poll(); ok; _, ok = s.Poll() {
			}
		}
		select {
		case <-a.Ready():
		case <-b.Ready():
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("重复连接未收敛")
		}
	}

	require.NoError(t, a.Send(b.LocalPeer(), wire.Relay(a.LocalPeer(), b.LocalPeer(), []byte("kept"))))
	got := waitEvent(t, b, isFrame).(FrameReceived)
	assert.Equal(t, []byte("kept"), got.Frame.Data)
	assert.Equal(t, []types.PeerID{b.LocalPeer()}, a.Peers())
}

func TestSwarm_DialFailureDropsPending(t *testing.T) {
	a := newSwarm(t)
	dead := newSwarm(t)
	addr := dead.ListenAddr()
	peer := dead.LocalPeer()
	dead.Exit()

	a.AddAddrs(peer, addr)
	require.NoError(t, a.SendOrDial(peer, wire.Relay(a.LocalPeer(), peer, []byte("x"))))
	require.Len(t, a.pending[peer], 1)

	deadline := time.After(testTimeout)
	for a.dialing[peer] {
		a.Poll()
		select {
		case <-a.Ready():
		case <-deadline:
			t.Fatal("拨号未结束")
		}
	}
	assert.Empty(t, a.pending[peer])
	assert.False(t, a.IsConnected(peer))
}

func TestSwarm_PeerIDMismatch(t *testing.T) {
	a := newSwarm(t)
	b := newSwarm(t)
	other := newSwarm(t)

	// 以 other 的身份拨号 a 的地址
	b.AddAddrs(other.LocalPeer(), a.ListenAddr())
	require.NoError(t, b.Dial(other.LocalPeer()))

	deadline := time.After(testTimeout)
	for b.dialing[other.LocalPeer()] {
		b.Poll()
		select {
		case <-b.Ready():
		case <-deadline:
			t.Fatal("拨号未结束")
		}
	}
	assert.False(t, b.IsConnected(other.LocalPeer()))
	assert.False(t, b.IsConnected(a.LocalPeer()))
}

func TestSwarm_ExitSendsGoodbye(t *testing.T) {
	a := newSwarm(t)
	b := newSwarm(t)
	connect(t, a, b)

	a.Exit()
	assert.ErrorIs(t, a.Send(b.LocalPeer(), wire.Goodbye(a.LocalPeer())), ErrSwarmClosed)
	assert.ErrorIs(t, a.Listen(), ErrSwarmClosed)

	waitEvent(t, b, disconnectedFrom(a.LocalPeer()))
	assert.False(t, b.IsConnected(a.LocalPeer()))
	assert.Empty(t, b.Peers())

	// 重复调用无副作用
	a.Exit()
}

func TestDialError(t *testing.T) {
	err := &DialError{Peer: "12D3KooWabcdefghijk"}
	assert.Contains(t, err.Error(), "unknown error")
	assert.Nil(t, err.Unwrap())

	err.Errors = []error{ErrNoAddresses}
	assert.ErrorIs(t, err, ErrNoAddresses)
}
