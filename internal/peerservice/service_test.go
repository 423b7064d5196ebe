package peerservice

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-janus/config"
	"github.com/dep2p/go-janus/internal/core/swarm"
	"github.com/dep2p/go-janus/internal/core/wire"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/types"
)

const testTimeout = 10 * time.Second

func testConfig(known ...config.KnownPeer) *config.Config {
	cfg := config.NewConfig()
	cfg.PeerService.ListenAddr = "/ip4/127.0.0.1/tcp/0"
	cfg.PeerService.SocketTimeout = config.Duration(5 * time.Second)
	cfg.PeerService.KnownPeers = known
	return cfg
}

func newKey(t *testing.T) crypto.PrivateKey {
	t.Helper()
	key, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return key
}

func startService(t *testing.T, known ...config.KnownPeer) (*PeerService, *Descriptor) {
	t.Helper()
	return startWith(t, testConfig(known...), newKey(t))
}

func startWith(t *testing.T, cfg *config.Config, key crypto.PrivateKey) (*PeerService, *Descriptor) {
	t.Helper()
	svc, err := New(cfg, key)
	require.NoError(t, err)

	d, err := svc.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = d.Shutdown(ctx)
	})
	return svc, d
}

func knownPeer(svc *PeerService) config.KnownPeer {
	return config.KnownPeer{PeerID: svc.LocalPeer().String(), Addrs: []string{svc.ListenAddr().String()}}
}

// recvUntil 读取出站通知直到满足 match
func recvUntil(t *testing.T, d *Descriptor, match func(OutPeerNotification) bool) OutPeerNotification {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	for {
		n, err := d.Recv(ctx)
		require.NoError(t, err)
		if match(n) {
			return n
		}
	}
}

func isConnected(peer types.PeerID) func(OutPeerNotification) bool {
	return func(n OutPeerNotification) bool {
		c, ok := n.(PeerConnected)
		return ok && c.Peer == peer
	}
}

func isRelay(n OutPeerNotification) bool {
	_, ok := n.(RelayReceived)
	return ok
}

func isNetworkState(n OutPeerNotification) bool {
	_, ok := n.(NetworkStateReceived)
	return ok
}

// freeListenAddr 预先取得一个空闲的 loopback 端口
func freeListenAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return fmt.Sprintf("/ip4/127.0.0.1/tcp/%d", port)
}

// relayEventually 重复中继直到 to 收到，连接切换期间单条数据可能丢失
func relayEventually(t *testing.T, from, to *Descriptor, src, dst types.PeerID) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		require.NoError(t, from.Send(Relay{Src: src, Dst: dst, Data: []byte("ping")}))

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		for {
			n, err := to.Recv(ctx)
			if err != nil {
				break
			}
			if r, ok := n.(RelayReceived); ok {
				cancel()
				assert.Equal(t, src, r.Src)
				assert.Equal(t, []byte("ping"), r.Data)
				return
			}
		}
		cancel()
	}
	t.Fatalf("%s 未收到来自 %s 的中继", dst.ShortString(), src.ShortString())
}

// connectPair 通过网络状态让 a 拨号 b
func connectPair(t *testing.T) (a *PeerService, da *Descriptor, b *PeerService, db *Descriptor) {
	t.Helper()
	b, db = startService(t)
	a, da = startService(t, knownPeer(b))

	require.NoError(t, da.Send(NetworkState{Dst: b.LocalPeer(), State: []types.PeerID{a.LocalPeer()}}))

	recvUntil(t, da, isConnected(b.LocalPeer()))
	recvUntil(t, db, isConnected(a.LocalPeer()))
	n := recvUntil(t, db, isNetworkState).(NetworkStateReceived)
	assert.Equal(t, a.LocalPeer(), n.Src)
	assert.Equal(t, []types.PeerID{a.LocalPeer()}, n.State)
	return a, da, b, db
}

func TestPeerService_RelayIsByteExact(t *testing.T) {
	a, da, b, db := connectPair(t)

	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i * 7)
	}
	require.NoError(t, da.Send(Relay{Src: a.LocalPeer(), Dst: b.LocalPeer(), Data: data}))

	got := recvUntil(t, db, isRelay).(RelayReceived)
	assert.Equal(t, a.LocalPeer(), got.Src)
	assert.Equal(t, b.LocalPeer(), got.Dst)
	assert.True(t, bytes.Equal(data, got.Data))

	// 反方向复用同一连接
	require.NoError(t, db.Send(Relay{Src: b.LocalPeer(), Dst: a.LocalPeer(), Data: []byte{}}))
	back := recvUntil(t, da, isRelay).(RelayReceived)
	assert.Equal(t, b.LocalPeer(), back.Src)
	assert.Empty(t, back.Data)
}

func TestPeerService_RelayOrder(t *testing.T) {
	a, da, b, db := connectPair(t)

	for i := 0; i < 100; i++ {
		require.NoError(t, da.Send(Relay{Src: a.LocalPeer(), Dst: b.LocalPeer(), Data: []byte{byte(i)}}))
	}
	for i := 0; i < 100; i++ {
		got := recvUntil(t, db, isRelay).(RelayReceived)
		require.Equal(t, []byte{byte(i)}, got.Data)
	}
}

func TestPeerService_RelayToUnconnectedIsDropped(t *testing.T) {
	a, da, b, db := connectPair(t)
	stranger := newKey(t)
	strangerID, err := crypto.PeerIDFromPrivateKey(stranger)
	require.NoError(t, err)

	require.NoError(t, da.Send(Relay{Src: a.LocalPeer(), Dst: strangerID, Data: []byte("lost")}))
	require.NoError(t, da.Send(NetworkState{Dst: strangerID}))
	require.NoError(t, da.Send(Relay{Src: a.LocalPeer(), Dst: b.LocalPeer(), Data: []byte("kept")}))

	got := recvUntil(t, db, isRelay).(RelayReceived)
	assert.Equal(t, []byte("kept"), got.Data)
}

func TestPeerService_SimultaneousDial(t *testing.T) {
	ka, kb := newKey(t), newKey(t)
	idA, err := crypto.PeerIDFromPrivateKey(ka)
	require.NoError(t, err)
	idB, err := crypto.PeerIDFromPrivateKey(kb)
	require.NoError(t, err)
	addrA, addrB := freeListenAddr(t), freeListenAddr(t)

	cfgA := testConfig(config.KnownPeer{PeerID: idB.String(), Addrs: []string{addrB}})
	cfgA.PeerService.ListenAddr = addrA
	cfgB := testConfig(config.KnownPeer{PeerID: idA.String(), Addrs: []string{addrA}})
	cfgB.PeerService.ListenAddr = addrB

	_, da := startWith(t, cfgA, ka)
	_, db := startWith(t, cfgB, kb)

	// 双方同时拨号
	require.NoError(t, da.Send(NetworkState{Dst: idB, State: []types.PeerID{idA}}))
	require.NoError(t, db.Send(NetworkState{Dst: idA, State: []types.PeerID{idB}}))

	recvUntil(t, da, isNetworkState)
	recvUntil(t, db, isNetworkState)

	// 两端保留同一条连接，双向中继都可达
	relayEventually(t, da, db, idA, idB)
	relayEventually(t, db, da, idB, idA)
}

func TestPeerService_OversizedRelayKeepsConnection(t *testing.T) {
	a, da, b, db := connectPair(t)

	require.NoError(t, da.Send(Relay{Src: a.LocalPeer(), Dst: b.LocalPeer(), Data: make([]byte, 2*wire.MaxFrameSize)}))
	require.NoError(t, da.Send(Relay{Src: a.LocalPeer(), Dst: b.LocalPeer(), Data: []byte("after")}))

	n := recvUntil(t, db, func(n OutPeerNotification) bool {
		switch n.(type) {
		case RelayReceived, PeerDisconnected:
			return true
		}
		return false
	})
	got, ok := n.(RelayReceived)
	require.True(t, ok, "连接被断开: %v", n)
	assert.Equal(t, []byte("after"), got.Data)
}

func TestBehaviour_ClientSourceMustMatch(t *testing.T) {
	id := func() types.PeerID {
		p, err := crypto.PeerIDFromPrivateKey(newKey(t))
		require.NoError(t, err)
		return p
	}
	client, other, node := id(), id(), id()
	b := &Behaviour{}

	forged := swarm.FrameReceived{From: client, Role: wire.RoleClient, Frame: wire.Relay(other, node, []byte("x"))}
	assert.Nil(t, b.convert(forged))

	own := swarm.FrameReceived{From: client, Role: wire.RoleClient, Frame: wire.Relay(client, node, []byte("x"))}
	assert.Equal(t, RelayReceived{Src: client, Dst: node, Data: []byte("x")}, b.convert(own))

	// 节点间转发保留原始来源
	relayed := swarm.FrameReceived{From: node, Role: wire.RoleNode, Frame: wire.Relay(other, client, []byte("y"))}
	assert.Equal(t, RelayReceived{Src: other, Dst: client, Data: []byte("y")}, b.convert(relayed))
}

func TestPeerService_StartTwice(t *testing.T) {
	svc, _ := startService(t)
	_, err := svc.Start()
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestPeerService_SendBeforeStart(t *testing.T) {
	b, db := startService(t)

	a, err := New(testConfig(knownPeer(b)), newKey(t))
	require.NoError(t, err)
	require.NoError(t, a.Descriptor().Send(NetworkState{Dst: b.LocalPeer()}))

	da, err := a.Start()
	require.NoError(t, err)
	defer da.Exit()

	recvUntil(t, db, isConnected(a.LocalPeer()))
}

func TestPeerService_Shutdown(t *testing.T) {
	a, da, b, db := connectPair(t)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, da.Shutdown(ctx))

	select {
	case <-da.Done():
	default:
		t.Fatal("Done 未关闭")
	}

	assert.ErrorIs(t, da.Send(Relay{Src: a.LocalPeer(), Dst: b.LocalPeer()}), ErrChannelClosed)

	// 剩余通知读完后返回 ErrChannelClosed
	for {
		_, err := da.Recv(ctx)
		if err != nil {
			assert.ErrorIs(t, err, ErrChannelClosed)
			break
		}
	}
	_, ok := da.TryRecv()
	assert.False(t, ok)

	// 对端收到告别
	recvUntil(t, db, func(n OutPeerNotification) bool {
		d, ok := n.(PeerDisconnected)
		return ok && d.Peer == a.LocalPeer()
	})

	// 重复退出无副作用
	da.Exit()
	require.NoError(t, da.Shutdown(ctx))
}

func TestModule_Lifecycle(t *testing.T) {
	key := newKey(t)
	var (
		svc  *PeerService
		desc *Descriptor
	)

	app := fxtest.New(t,
		fx.Supply(testConfig()),
		fx.Provide(func() crypto.PrivateKey { return key }),
		Module,
		fx.Populate(&svc, &desc),
	)
	app.RequireStart()

	require.NotNil(t, svc.ListenAddr())
	assert.Same(t, svc.Descriptor(), desc)

	app.RequireStop()
	select {
	case <-desc.Done():
	case <-time.After(testTimeout):
		t.Fatal("服务未退出")
	}
}
