package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/libs/utils"
	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/getters"
)

var (
	log    = logging.Logger("rpc")
	tracer = otel.Tracer("rpc")
)

// ErrNoEndpoints is returned when the client is created without any endpoint.
var ErrNoEndpoints = errors.New("rpc: no endpoints")

var (
	_ header.Getter  = (*Client)(nil)
	_ getters.Getter = (*Client)(nil)
)

// conn is a connection to a single endpoint, one client per namespace.
type conn struct {
	chain ChainAPI
	kate  KateAPI

	closers []jsonrpc.ClientCloser
}

func (c *conn) close() {
	for _, closer := range c.closers {
		closer()
	}
}

// Client talks to the nodes of the chain. Requests go to the endpoint that served the last
// successful request. When it fails, the remaining endpoints are tried in random order with the
// failed endpoint tried last.
type Client struct {
	endpoints []string
	timeout   time.Duration

	lk    sync.Mutex
	conns map[string]*conn
	last  string
}

// NewClient creates a Client over the given endpoints. Every request is bounded by timeout.
func NewClient(endpoints []string, timeout time.Duration) (*Client, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	return &Client{
		endpoints: endpoints,
		timeout:   timeout,
		conns:     make(map[string]*conn, len(endpoints)),
		last:      endpoints[0],
	}, nil
}

// Close closes connections to all endpoints.
func (c *Client) Close() {
	c.lk.Lock()
	defer c.lk.Unlock()
	for addr, cn := range c.conns {
		cn.close()
		delete(c.conns, addr)
	}
}

// Head returns the header of the latest finalized block.
func (c *Client) Head(ctx context.Context) (*header.BlockHeader, error) {
	var h *header.BlockHeader
	err := c.do(ctx, func(ctx context.Context, cn *conn) (err error) {
		h, err = cn.chain.GetFinalizedHead(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, header.ErrNotFound
	}
	return h, nil
}

// GetByHeight returns the header of the finalized block at the given height.
func (c *Client) GetByHeight(ctx context.Context, height uint64) (*header.BlockHeader, error) {
	if height > uint64(^uint32(0)) {
		return nil, fmt.Errorf("rpc: height %d out of range", height)
	}

	var h *header.BlockHeader
	err := c.do(ctx, func(ctx context.Context, cn *conn) (err error) {
		h, err = cn.chain.GetHeaderByNumber(ctx, uint32(height))
		return err
	})
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, header.ErrNotFound
	}
	return h, nil
}

// GetCells fetches cells with their proofs.
func (c *Client) GetCells(ctx context.Context, hdr *header.BlockHeader, positions []share.Position) (_ []share.Cell, err error) {
	ctx, span := tracer.Start(ctx, "rpc/get-cells")
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	var cells []share.Cell
	err = c.do(ctx, func(ctx context.Context, cn *conn) (err error) {
		cells, err = cn.kate.QueryProof(ctx, hdr.Number, positions)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}

func (c *Client) do(ctx context.Context, call func(context.Context, *conn) error) error {
	var errs []error
	for _, addr := range c.order() {
		cn, err := c.connect(addr)
		if err == nil {
			err = c.call(ctx, cn, call)
		}
		if err == nil {
			c.lk.Lock()
			c.last = addr
			c.lk.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.Warnw("request to endpoint failed", "endpoint", addr, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", addr, err))
	}
	return fmt.Errorf("rpc: all endpoints failed: %w", errors.Join(errs...))
}

func (c *Client) call(ctx context.Context, cn *conn, call func(context.Context, *conn) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return call(ctx, cn)
}

// order returns endpoints to try: the last used one first, then the rest in random order.
func (c *Client) order() []string {
	c.lk.Lock()
	last := c.last
	c.lk.Unlock()

	rest := make([]string, 0, len(c.endpoints))
	for _, addr := range c.endpoints {
		if addr != last {
			rest = append(rest, addr)
		}
	}
	rand.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
	return append([]string{last}, rest...)
}

// connect lazily creates clients of the endpoint. Websocket connections outlive single requests,
// so they are not bound to the request context.
func (c *Client) connect(addr string) (*conn, error) {
	c.lk.Lock()
	defer c.lk.Unlock()
	if cn, ok := c.conns[addr]; ok {
		return cn, nil
	}

	cn := &conn{}
	var modules = map[string]interface{}{
		ChainNamespace: &cn.chain.Internal,
		KateNamespace:  &cn.kate.Internal,
	}
	for name, module := range modules {
		closer, err := jsonrpc.NewClient(context.Background(), addr, name, module, http.Header{})
		if err != nil {
			cn.close()
			return nil, fmt.Errorf("connecting to %s: %w", addr, err)
		}
		cn.closers = append(cn.closers, closer)
	}
	c.conns[addr] = cn
	return cn, nil
}
