package nodebuilder

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/header/headertest"
	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/getters"
	"github.com/availproject/avail-light-go/share/sharetest"
)

// blockFetcher serves every cell of the given blocks.
type blockFetcher map[uint32]*sharetest.Block

func (f blockFetcher) Fetch(_ context.Context, hdr *header.BlockHeader, positions []share.Position) getters.Results {
	res := make(getters.Results, len(positions))
	for _, pos := range positions {
		blk, ok := f[hdr.Number]
		if !ok {
			res[pos] = getters.FetchResult{Status: getters.NotFoundAnywhere}
			continue
		}
		res[pos] = getters.FetchResult{Status: getters.Found, Source: getters.SourceRPC, Cell: blk.Cell(pos)}
	}
	return res
}

func testNode(t *testing.T) *Node {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.P2P.Disabled = true
	cfg.Gateway.Address = "127.0.0.1"
	cfg.Gateway.Port = "0"
	require.NoError(t, Init(*cfg, dir))

	store, err := OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	chain := headertest.NewChain(t, 1, 3, 2, 4)
	fetcher := make(blockFetcher)
	headers := make([]*header.BlockHeader, 0, len(chain))
	for _, blk := range chain {
		fetcher[blk.Header.Number] = blk
		headers = append(headers, blk.Header)
	}
	hstore := headertest.NewStore(headers...)

	nd, err := New(store,
		fx.Decorate(func(header.Getter) header.Getter { return hstore }),
		fx.Decorate(func(header.Subscriber) header.Subscriber { return hstore }),
		fx.Decorate(func(das.Fetcher) das.Fetcher { return fetcher }),
	)
	require.NoError(t, err)
	return nd
}

func TestNode_Lifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	nd := testNode(t)
	require.Nil(t, nd.Host)
	require.NotNil(t, nd.GatewayServer)

	require.NoError(t, nd.Start(ctx))
	require.NoError(t, nd.DASer.WaitCatchUp(ctx))
	require.Eventually(t, func() bool {
		latest, err := nd.DASer.LatestProcessedBlock(ctx)
		return err == nil && latest == 3
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + nd.GatewayServer.ListenAddr() + "/v1/mode")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"LightClient"`, string(body))

	require.NoError(t, nd.Stop(ctx))
}

func TestNode_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(), dir))
	store, err := OpenStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	cfg := DefaultConfig()
	cfg.RPC.Endpoints = []string{"ftp://127.0.0.1:9944"}
	_, err = NewWithConfig(store, cfg)
	require.Error(t, err)
}
