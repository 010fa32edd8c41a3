package share

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/getters"
	"github.com/availproject/avail-light-go/share/sharetest"
)

func TestNewCache_WithoutRouting(t *testing.T) {
	ctx := context.Background()
	blk := sharetest.RandBlock(t, 1, 2, 4)

	cache, err := newCache(cacheParams{Config: DefaultConfig()})
	require.NoError(t, err)
	require.IsType(t, &getters.MemStore{}, cache)

	cells := []share.Cell{blk.Cell(share.Position{Row: 0, Col: 1})}
	require.NoError(t, cache.PutCells(ctx, blk.Header, cells))

	got, err := cache.GetCells(ctx, blk.Header, []share.Position{{Row: 0, Col: 1}, {Row: 1, Col: 1}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, cells[0].Position, got[0].Position)
	require.Equal(t, cells[0].Data, got[0].Data)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.CacheSize = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RPCBatchSize = 0
	require.Error(t, cfg.Validate())
}

func TestParseFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(Flags())
	require.NoError(t, cmd.ParseFlags([]string{"--" + disableVerificationFlag, "--" + disableRPCFlag}))

	cfg := DefaultConfig()
	ParseFlags(cmd, &cfg)
	require.True(t, cfg.DisableVerification)
	require.True(t, cfg.DisableRPC)
}

func TestConstructModule_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = -1

	app := fx.New(ConstructModule(&cfg), fx.Invoke(func(*getters.Fetcher) {}))
	require.Error(t, app.Err())
}
