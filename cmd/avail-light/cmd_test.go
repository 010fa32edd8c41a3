package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/nodebuilder"
)

func TestLight(t *testing.T) {
	store := filepath.Join(t.TempDir(), ".avail-light")

	t.Run("init", func(t *testing.T) {
		output := &bytes.Buffer{}
		rootCmd.SetOut(output)
		rootCmd.SetArgs([]string{
			"light",
			"init",
			"--node.store", store,
			"--das.app-id", "4",
			"--rpc.endpoints", "wss://rpc.example.org:443/ws",
		})
		err := rootCmd.ExecuteContext(context.Background())
		require.NoError(t, err)
		require.True(t, nodebuilder.IsInit(store))

		cfg, err := nodebuilder.LoadConfig(filepath.Join(store, "config.toml"))
		require.NoError(t, err)
		assert.Equal(t, uint32(4), cfg.DASer.AppID)
		assert.Equal(t, []string{"wss://rpc.example.org:443/ws"}, cfg.RPC.Endpoints)
	})

	t.Run("config-update", func(t *testing.T) {
		output := &bytes.Buffer{}
		rootCmd.SetOut(output)
		rootCmd.SetArgs([]string{
			"light",
			"config-update",
			"--node.store", store,
		})
		err := rootCmd.ExecuteContext(context.Background())
		require.NoError(t, err)

		cfg, err := nodebuilder.LoadConfig(filepath.Join(store, "config.toml"))
		require.NoError(t, err)
		assert.Equal(t, uint32(4), cfg.DASer.AppID)
	})

	t.Run("config-remove", func(t *testing.T) {
		output := &bytes.Buffer{}
		rootCmd.SetOut(output)
		rootCmd.SetArgs([]string{
			"light",
			"config-remove",
			"--node.store", store,
		})
		err := rootCmd.ExecuteContext(context.Background())
		require.NoError(t, err)
		require.False(t, nodebuilder.IsInit(store))
	})
}

func TestLight_InvalidFlag(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"light",
		"init",
		"--node.store", filepath.Join(t.TempDir(), ".avail-light"),
		"--das.confidence", "100",
	})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	output := &bytes.Buffer{}
	rootCmd.SetOut(output)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, output.String(), "Semantic version:")
}
