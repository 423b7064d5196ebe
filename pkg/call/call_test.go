package call

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dep2p/go-janus/pkg/address"
	"github.com/dep2p/go-janus/pkg/lib/crypto"
	"github.com/dep2p/go-janus/pkg/types"
)

func newIdentity(t testing.TB) (crypto.PrivateKey, types.PeerID) {
	t.Helper()
	priv, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	id, err := crypto.PeerIDFromPrivateKey(priv)
	require.NoError(t, err)
	return priv, id
}

// ============================================================================
//                              构建器
// ============================================================================

func TestRegistrationCall(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)

	c, err := RegistrationCall(self, relay, "IPFS.multiaddr", key)
	require.NoError(t, err)

	require.NotNil(t, c.Target)
	assert.True(t, c.Target.Equal(address.ServicePath("provide")))

	serviceID, ok := c.StringArg(ArgServiceID)
	assert.True(t, ok)
	assert.Equal(t, "IPFS.multiaddr", serviceID)

	require.NotNil(t, c.ReplyTo)
	assert.NoError(t, address.Verify(*c.ReplyTo))
	assert.True(t, c.ReplyTo.Unsigned().Equal(address.RelayPath(relay, self)))

	assert.Equal(t, "Delegate provide service IPFS.multiaddr", c.Name)
	assert.NotEmpty(t, c.UUID)
	assert.NoError(t, c.Validate())
}

func TestRegistrationCall_WrongKeyAborts(t *testing.T) {
	_, self := newIdentity(t)
	_, relay := newIdentity(t)
	otherKey, _ := newIdentity(t)

	c, err := RegistrationCall(self, relay, "IPFS.multiaddr", otherKey)
	assert.ErrorIs(t, err, address.ErrInvalidAddress)
	assert.Nil(t, c)
}

func TestReplyCall(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)
	callerKey, caller := newIdentity(t)

	dest, err := address.SignedRelayPath(relay, caller, callerKey)
	require.NoError(t, err)

	payload := map[string]any{"multiaddr": "/ip4/127.0.0.1/tcp/5001"}
	c, err := ReplyCall(relay, self, dest, "req-1", payload, key, WithName("Reply on IPFS.multiaddr"))
	require.NoError(t, err)

	assert.True(t, c.Target.Equal(dest))
	assert.NoError(t, address.Verify(*c.ReplyTo))
	assert.Equal(t, "Reply on IPFS.multiaddr", c.Name)

	ma, _ := c.StringArg("multiaddr")
	assert.Equal(t, "/ip4/127.0.0.1/tcp/5001", ma)
	msgID, _ := c.StringArg(ArgMsgID)
	assert.Equal(t, "req-1", msgID)

	// payload 未被修改
	assert.Len(t, payload, 1)
}

func TestReplyCall_NullCorrelation(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)

	c, err := ReplyCall(relay, self, address.ServicePath("x"), "", nil, key)
	require.NoError(t, err)

	v, ok := c.Arguments.GetFields()[ArgMsgID]
	require.True(t, ok)
	_, isNull := v.GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)
}

func TestReplyCall_Rejects(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)

	_, err := ReplyCall(relay, self, address.Path{}, "id", nil, key)
	assert.ErrorIs(t, err, ErrNoTarget)

	_, err = ReplyCall(relay, self, address.ServicePath("x"), "id", map[string]any{"bad": make(chan int)}, key)
	assert.ErrorIs(t, err, ErrMalformedCall)
}

// 10000 个信封的 UUID 两两不同，关联 ID 可以重复
func TestUUIDsAreDistinct(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)
	dest := address.ServicePath("x")

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 5000; i++ {
		reg, err := RegistrationCall(self, relay, "svc", key)
		require.NoError(t, err)
		reply, err := ReplyCall(relay, self, dest, "same-correlation", nil, key)
		require.NoError(t, err)

		for _, id := range []string{reg.UUID, reply.UUID} {
			_, dup := seen[id]
			require.False(t, dup, "duplicate uuid %s", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, 10000)
}

// ============================================================================
//                              校验与编码
// ============================================================================

func TestValidate(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)
	target := address.ServicePath("provide")
	unsigned := address.RelayPath(relay, self)

	assert.ErrorIs(t, (&FunctionCall{Target: &target}).Validate(), ErrNoUUID)
	assert.ErrorIs(t, (&FunctionCall{UUID: "u"}).Validate(), ErrNoTarget)
	assert.ErrorIs(t, (&FunctionCall{UUID: "u", Target: &address.Path{}}).Validate(), ErrNoTarget)
	assert.ErrorIs(t, (&FunctionCall{UUID: "u", Target: &target, ReplyTo: &unsigned}).Validate(), ErrUnsignedReplyTo)

	signed, err := address.SignedRelayPath(relay, self, key)
	require.NoError(t, err)
	assert.NoError(t, (&FunctionCall{UUID: "u", Target: &target, ReplyTo: &signed}).Validate())
	assert.NoError(t, (&FunctionCall{UUID: "u", Target: &target}).Validate())
}

func TestMarshalUnmarshal(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)

	c, err := RegistrationCall(self, relay, "IPFS.multiaddr", key)
	require.NoError(t, err)

	data, err := Marshal(c)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, c.UUID, got.UUID)
	assert.Equal(t, c.Name, got.Name)
	assert.True(t, c.Target.Equal(*got.Target))
	assert.True(t, c.ReplyTo.Equal(*got.ReplyTo))
	assert.True(t, proto.Equal(c.Arguments, got.Arguments))
	assert.NoError(t, got.Validate())
}

func TestMarshal_RejectsInvalid(t *testing.T) {
	_, err := Marshal(&FunctionCall{UUID: "u"})
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestUnmarshal_Malformed(t *testing.T) {
	_, err := Unmarshal([]byte{0x12, 0x05, 0x01})
	assert.ErrorIs(t, err, ErrMalformedCall)

	// target 字段中是非法路径
	_, err = Unmarshal([]byte{0x12, 0x02, 0x09, 0x00})
	assert.ErrorIs(t, err, ErrMalformedCall)
}

func TestJSON(t *testing.T) {
	key, self := newIdentity(t)
	_, relay := newIdentity(t)

	c, err := RegistrationCall(self, relay, "IPFS.multiaddr", key)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target":"/service/provide"`)

	var got FunctionCall
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, c.UUID, got.UUID)
	assert.True(t, c.ReplyTo.Equal(*got.ReplyTo))
	assert.True(t, proto.Equal(c.Arguments, got.Arguments))
}
