package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-janus/pkg/lib/crypto"
)

// TestNewConfig 测试默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultIPFSServiceID, cfg.IPFS.ServiceID)
	assert.Equal(t, 10*time.Second, cfg.IPFS.Interval.Duration())
	assert.Equal(t, 10, cfg.IPFS.MaxRegistrations)
}

func TestFromJSON(t *testing.T) {
	key, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	id, err := crypto.PeerIDFromPrivateKey(key)
	require.NoError(t, err)

	data := []byte(`{
		"peer_service": {
			"listen_addr": "/ip4/127.0.0.1/tcp/7777",
			"known_peers": [{"peer_id": "` + id.String() + `", "addrs": ["/ip4/10.0.0.1/tcp/9999"]}]
		},
		"ipfs": {"interval": "250ms", "max_registrations": 3}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/ip4/127.0.0.1/tcp/7777", cfg.PeerService.ListenAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.IPFS.Interval.Duration())
	assert.Equal(t, 3, cfg.IPFS.MaxRegistrations)
	// 未出现的字段保留默认值
	assert.Equal(t, DefaultIPFSServiceID, cfg.IPFS.ServiceID)
	assert.Equal(t, 20*time.Second, cfg.PeerService.SocketTimeout.Duration())

	peer, addrs, err := cfg.PeerService.KnownPeers[0].Parse()
	require.NoError(t, err)
	assert.Equal(t, id, peer)
	require.Len(t, addrs, 1)
	assert.Equal(t, "/ip4/10.0.0.1/tcp/9999", addrs[0].String())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad listen addr", func(c *Config) { c.PeerService.ListenAddr = "not-a-multiaddr" }},
		{"zero socket timeout", func(c *Config) { c.PeerService.SocketTimeout = 0 }},
		{"bad known peer", func(c *Config) {
			c.PeerService.KnownPeers = []KnownPeer{{PeerID: "garbage"}}
		}},
		{"bad bootstrap", func(c *Config) { c.IPFS.Bootstrap = "" }},
		{"empty service id", func(c *Config) { c.IPFS.ServiceID = "" }},
		{"zero interval", func(c *Config) { c.IPFS.Interval = 0 }},
		{"negative registrations", func(c *Config) { c.IPFS.MaxRegistrations = -1 }},
		{"small window", func(c *Config) { c.Yamux.MaxStreamWindowSize = 1024 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalJSON([]byte(`1000`)))
	assert.Equal(t, time.Microsecond, d.Duration())

	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	out, err := Duration(10 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"10s"`, string(out))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "janus.json")
	data, err := NewConfig().ToJSON()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
