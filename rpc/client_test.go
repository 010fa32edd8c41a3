package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/header/headertest"
	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/proof"
	"github.com/availproject/avail-light-go/share/sharetest"
)

type chainHandler struct {
	store *headertest.Store
}

func (h *chainHandler) GetFinalizedHead(ctx context.Context) (*header.BlockHeader, error) {
	return h.store.Head(ctx)
}

func (h *chainHandler) GetHeaderByNumber(ctx context.Context, number uint32) (*header.BlockHeader, error) {
	hdr, err := h.store.GetByHeight(ctx, uint64(number))
	if errors.Is(err, header.ErrNotFound) {
		return nil, nil
	}
	return hdr, err
}

type kateHandler struct {
	blocks map[uint32]*sharetest.Block
}

func (k *kateHandler) QueryProof(_ context.Context, block uint32, positions []share.Position) ([]share.Cell, error) {
	blk, ok := k.blocks[block]
	if !ok {
		return nil, errors.New("unknown block")
	}
	cells := make([]share.Cell, 0, len(positions))
	for _, pos := range positions {
		if blk.Header.Contains(pos) {
			cells = append(cells, blk.Cell(pos))
		}
	}
	return cells, nil
}

// newNode starts a node serving the given blocks and counts requests it receives.
func newNode(t *testing.T, blocks ...*sharetest.Block) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	headers := make([]*header.BlockHeader, 0, len(blocks))
	kate := &kateHandler{blocks: make(map[uint32]*sharetest.Block)}
	for _, blk := range blocks {
		headers = append(headers, blk.Header)
		kate.blocks[blk.Header.Number] = blk
	}

	rpc := jsonrpc.NewServer()
	rpc.Register(ChainNamespace, &chainHandler{store: headertest.NewStore(headers...)})
	rpc.Register(KateNamespace, kate)

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		rpc.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	chain := headertest.NewChain(t, 1, 3, 4, 8, 1)
	srv, _ := newNode(t, chain...)

	client, err := NewClient([]string{srv.URL}, time.Second*5)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	head, err := client.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, chain[2].Header.Hash(), head.Hash())

	h, err := client.GetByHeight(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, chain[1].Header.Hash(), h.Hash())
	assert.Equal(t, chain[1].Header.DataRoot(), h.DataRoot())

	_, err = client.GetByHeight(ctx, 10)
	assert.ErrorIs(t, err, header.ErrNotFound)

	positions := []share.Position{{Row: 0, Col: 1}, {Row: 3, Col: 7}, {Row: 9, Col: 0}}
	cells, err := client.GetCells(ctx, h, positions)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	for _, cell := range cells {
		assert.Equal(t, chain[1].Cell(cell.Position), cell)
		assert.NoError(t, proof.NMTVerifier{}.Verify(h, cell))
	}
}

func TestClient_Failover(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	t.Cleanup(cancel)

	chain := headertest.NewChain(t, 1, 1, 2, 4)
	good, goodRequests := newNode(t, chain...)

	var badRequests atomic.Int32
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		badRequests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(bad.Close)

	client, err := NewClient([]string{bad.URL, good.URL}, time.Second*5)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	_, err = client.Head(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, badRequests.Load())

	// the working endpoint is kept for following requests
	_, err = client.GetByHeight(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, badRequests.Load())
	assert.EqualValues(t, 2, goodRequests.Load())

	bad.Close()
	good.Close()
	_, err = client.Head(ctx)
	assert.Error(t, err)
}

func TestNewClient_NoEndpoints(t *testing.T) {
	_, err := NewClient(nil, time.Second)
	assert.ErrorIs(t, err, ErrNoEndpoints)
}
