package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/das"
	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/store"
)

type testAvailability struct {
	*store.Store
	mode das.Mode
}

func (a testAvailability) Mode() das.Mode {
	return a.mode
}

func (a testAvailability) LatestProcessedBlock(ctx context.Context) (uint32, error) {
	return a.LatestProcessed(ctx)
}

func newTestServer(t *testing.T, mode das.Mode, commits ...store.Commit) *Server {
	t.Helper()
	results := store.NewStore(ds_sync.MutexWrap(datastore.NewMapDatastore()))
	for _, c := range commits {
		require.NoError(t, results.Commit(context.Background(), c))
	}

	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	srv := NewServer("127.0.0.1", "0", []string{"*"})
	handler := NewHandler(testAvailability{Store: results, mode: mode}, registry)
	handler.RegisterEndpoints(srv)
	handler.RegisterMiddleware(srv)
	return srv
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func confidenceCommit(block uint32, verified int) store.Commit {
	rec := das.Compute(block, verified)
	return store.Commit{Block: block, State: das.Done, Confidence: &rec}
}

func TestConfidenceEndpoint(t *testing.T) {
	srv := newTestServer(t, das.Mode{},
		confidenceCommit(1, 4),
		store.Commit{Block: 2, State: das.Done},
		confidenceCommit(5, 7),
	)

	rec := get(t, srv, "/v1/confidence/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConfidenceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Block)
	assert.Equal(t, 93.75, resp.Confidence)
	assert.EqualValues(t, 5232467296, resp.SerializedConfidence)

	// processed without a confidence record
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/v1/confidence/2").Code)
	// not processed yet
	assert.Equal(t, http.StatusAccepted, get(t, srv, "/v1/confidence/6").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/v1/confidence/abc").Code)
}

func TestLatestBlockEndpoint(t *testing.T) {
	srv := newTestServer(t, das.Mode{})
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/v1/latest_block").Code)
	assert.Equal(t, http.StatusAccepted, get(t, srv, "/v1/confidence/1").Code)

	srv = newTestServer(t, das.Mode{}, confidenceCommit(3, 4), confidenceCommit(9, 4))
	rec := get(t, srv, "/v1/latest_block")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"latest_block": 9}`, rec.Body.String())
}

func TestModeEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, das.Mode{}), "/v1/mode")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"LightClient"`, rec.Body.String())

	appID := uint32(3)
	rec = get(t, newTestServer(t, das.Mode{AppID: &appID}), "/v1/mode")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"AppClient": 3}`, rec.Body.String())
}

func TestAppDataEndpoint(t *testing.T) {
	appID := uint32(3)
	payload := []byte("data")
	data := &share.AppData{
		AppID:       appID,
		BlockNumber: 4,
		Extrinsics:  [][]byte{share.EncodeExtrinsic(appID, payload)},
	}
	conf := das.Compute(4, 4)
	pending := das.Compute(2, 4)
	srv := newTestServer(t, das.Mode{AppID: &appID},
		store.Commit{Block: 2, State: das.ConfidenceComputed, Confidence: &pending},
		store.Commit{Block: 4, State: das.Done, Confidence: &conf, AppData: data},
	)

	rec := get(t, srv, "/v1/appdata/4")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AppDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, data.Extrinsics, resp.Extrinsics)

	rec = get(t, srv, "/v1/appdata/4?decode=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, [][]byte{payload}, resp.Extrinsics)

	// reconstruction did not succeed yet
	assert.Equal(t, http.StatusAccepted, get(t, srv, "/v1/appdata/2").Code)
	// never processed and below the latest block
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/v1/appdata/3").Code)

	light := newTestServer(t, das.Mode{})
	assert.Equal(t, http.StatusBadRequest, get(t, light, "/v1/appdata/4").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, das.Mode{})

	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","mode":"LightClient"}`, rec.Body.String())

	processed := newTestServer(t, das.Mode{}, confidenceCommit(9, 8))
	rec = get(t, processed, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","mode":"LightClient","latest_block":9}`, rec.Body.String())

	rec = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_counter 1")
}

func TestServer_StartStop(t *testing.T) {
	srv := newTestServer(t, das.Mode{})
	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	require.NotEmpty(t, srv.ListenAddr())

	req, err := http.NewRequest(http.MethodGet, "http://"+srv.ListenAddr()+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	require.NoError(t, srv.Stop(ctx))
	assert.Empty(t, srv.ListenAddr())
}

func TestMiddleware(t *testing.T) {
	srv := newTestServer(t, das.Mode{})

	rec := get(t, srv, "/v1/mode")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// metrics keep the exposition format of the registry
	rec = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")

	req := httptest.NewRequest(http.MethodPost, "/metrics", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestBoundLookups(t *testing.T) {
	var deadline time.Time
	handler := boundLookups(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		var ok bool
		deadline, ok = r.Context().Deadline()
		require.True(t, ok)
	}))

	start := time.Now()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/mode", nil))
	assert.WithinDuration(t, start.Add(time.Second), deadline, 500*time.Millisecond)
}
