package rpc

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	flags := Flags()

	endpoints := flags.Lookup(endpointsFlag)
	require.NotNil(t, endpoints)
	assert.Equal(t, "[]", endpoints.Value.String())

	timeout := flags.Lookup(timeoutFlag)
	require.NotNil(t, timeout)
	assert.Equal(t, "0s", timeout.Value.String())

	interval := flags.Lookup(pollIntervalFlag)
	require.NotNil(t, interval)
	assert.Equal(t, "0s", interval.Value.String())
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name:     "no flags keep defaults",
			args:     nil,
			expected: DefaultConfig(),
		},
		{
			name: "all flags",
			args: []string{
				"--" + endpointsFlag, "ws://a:9944,wss://b:443",
				"--" + timeoutFlag, "5s",
				"--" + pollIntervalFlag, "1s",
			},
			expected: Config{
				Endpoints:    []string{"ws://a:9944", "wss://b:443"},
				Timeout:      5 * time.Second,
				PollInterval: time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().AddFlagSet(Flags())
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg := DefaultConfig()
			require.NoError(t, ParseFlags(cmd, &cfg))
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no endpoints", func(c *Config) { c.Endpoints = nil }, true},
		{"bad scheme", func(c *Config) { c.Endpoints = []string{"tcp://host:1"} }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
