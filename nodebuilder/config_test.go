package nodebuilder

import (
	"bytes"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWriteRead(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	in := DefaultConfig()

	err := in.Encode(buf)
	require.NoError(t, err)
	encoded := buf.String()

	var out Config
	err = out.Decode(buf)
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	again := bytes.NewBuffer(nil)
	require.NoError(t, out.Encode(again))
	assert.Equal(t, encoded, again.String())
	assert.Equal(t, in.DASer.Confidence, out.DASer.Confidence)
	assert.Equal(t, in.RPC.Endpoints, out.RPC.Endpoints)
	assert.Equal(t, in.Node.ShutdownTimeout, out.Node.ShutdownTimeout)
}

// TestUpdateConfig tests that updating an outdated config
// using a new default config applies the correct values and
// preserves old custom values.
func TestUpdateConfig(t *testing.T) {
	oldCfg := new(Config)
	_, err := toml.Decode(outdatedConfig, oldCfg)
	require.NoError(t, err)

	newCfg := DefaultConfig()
	// values the outdated config misses
	newCfg.RPC.PollInterval = time.Second * 7
	newCfg.Gateway.Port = "7777"

	cfg, err := updateConfig(oldCfg, newCfg)
	require.NoError(t, err)

	// ensure this config field is not overridden
	assert.Equal(t, []string{"wss://rpc.example.org:443/ws"}, cfg.RPC.Endpoints)
	assert.Equal(t, 99.5, cfg.DASer.Confidence)
	assert.Equal(t, uint32(3), cfg.DASer.AppID)
	// ensure missing fields are filled from the new config
	assert.Equal(t, newCfg.RPC.PollInterval, cfg.RPC.PollInterval)
	assert.Equal(t, newCfg.Gateway.Port, cfg.Gateway.Port)
	assert.Equal(t, newCfg.Share.CacheSize, cfg.Share.CacheSize)
	assert.Equal(t, newCfg.P2P.ListenAddresses, cfg.P2P.ListenAddresses)
}

const outdatedConfig = `
[RPC]
  Endpoints = ["wss://rpc.example.org:443/ws"]

[DASer]
  Confidence = 99.5
  AppID = 3
`
