package p2p

import (
	"context"
	"testing"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/routing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/availproject/avail-light-go/das"
	moddas "github.com/availproject/avail-light-go/nodebuilder/das"
	"github.com/availproject/avail-light-go/nodebuilder/node"
	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/getters"
	"github.com/availproject/avail-light-go/share/sharetest"
)

func TestKey_Persisted(t *testing.T) {
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())

	first, err := Key(ds)
	require.NoError(t, err)
	second, err := Key(ds)
	require.NoError(t, err)
	require.True(t, first.Equals(second))

	other, err := Key(ds_sync.MutexWrap(datastore.NewMapDatastore()))
	require.NoError(t, err)
	require.False(t, first.Equals(other))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Bootstrappers = []string{"/ip4/127.0.0.1/tcp/37000"}
	require.Error(t, cfg.Validate(), "bootstrapper without peer id")

	cfg = DefaultConfig()
	cfg.ListenAddresses = []string{"not a multiaddr"}
	require.Error(t, cfg.Validate())

	cfg.Disabled = true
	require.NoError(t, cfg.Validate())
}

func TestParseFlags(t *testing.T) {
	bootstrapper := "/ip4/127.0.0.1/tcp/37000/p2p/12D3KooWDgG69kXfmSiHjUErN2ahpUC1SXpSfB2urrqMZ6aWC8NS"

	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(Flags())
	require.NoError(t, cmd.ParseFlags([]string{
		"--" + bootstrappersFlag, bootstrapper,
		"--" + listenFlag, "/ip4/127.0.0.1/tcp/0",
		"--" + dhtServerFlag,
	}))

	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(cmd, &cfg))
	assert.Equal(t, []string{bootstrapper}, cfg.Bootstrappers)
	assert.Equal(t, []string{"/ip4/127.0.0.1/tcp/0"}, cfg.ListenAddresses)
	assert.True(t, cfg.DHTServer)
	assert.False(t, cfg.Disabled)
	require.NoError(t, cfg.Validate())

	cmd = &cobra.Command{}
	cmd.Flags().AddFlagSet(Flags())
	require.NoError(t, cmd.ParseFlags([]string{"--" + bootstrappersFlag, "garbage"}))
	require.Error(t, ParseFlags(cmd, &cfg))
}

func TestConstructModule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ListenAddresses = []string{"/ip4/127.0.0.1/tcp/0"}
	cfg.DHTServer = true

	var (
		vs    routing.ValueStore
		d     *dht.IpfsDHT
		hooks []moddas.Hook
	)
	app := fxtest.New(t,
		fx.Supply(fx.Annotate(
			ds_sync.MutexWrap(datastore.NewMapDatastore()),
			fx.As(new(datastore.Batching)),
		)),
		fx.Provide(func() context.Context { return context.Background() }),
		fx.Provide(func() prometheus.Registerer { return prometheus.NewRegistry() }),
		fx.Provide(node.GetBuildInfo),
		ConstructModule(&cfg),
		fx.Populate(&vs, &d),
		fx.Invoke(fx.Annotate(
			func(hs []moddas.Hook) { hooks = hs },
			fx.ParamTags(`group:"das_hooks"`),
		)),
	).RequireStart()
	defer app.RequireStop()

	require.NotNil(t, vs)
	require.Len(t, hooks, 1)
	hooks[0](context.Background(), das.Outcome{Block: 1})

	blk := sharetest.RandBlock(t, 1, 2, 4)
	pos := share.Position{Row: 1, Col: 2}
	value, err := blk.Cell(pos).MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, d.Validator.Validate(getters.CellKey(1, pos), value))
	require.Error(t, d.Validator.Validate(getters.CellKey(1, pos), []byte("garbage")))
}

func TestConstructModule_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Disabled = true

	type optionalParams struct {
		fx.In

		VS routing.ValueStore `optional:"true"`
	}
	var vs routing.ValueStore
	fxtest.New(t,
		ConstructModule(&cfg),
		fx.Invoke(func(p optionalParams) { vs = p.VS }),
	).RequireStart().RequireStop()
	require.Nil(t, vs)
}
