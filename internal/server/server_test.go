package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/blend-actions/internal/actions"
	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/models"
	"github.com/kelsos/blend-actions/internal/storage"
)

func newTestServer(t *testing.T, store storage.Store, opts ...actions.Option) *httptest.Server {
	srv := New(Config{
		Port:     59010,
		Log:      zerolog.Nop(),
		Resolver: actions.NewResolver(store, opts...),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postActions(t *testing.T, ts *httptest.Server, body string) (*http.Response, map[string]json.RawMessage) {
	resp, err := http.Post(ts.URL+"/api/1/actions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestHandlePing(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStore())

	resp, err := http.Get(ts.URL + "/api/1/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	var ping models.PingResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ping))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, ping.Result)
}

func TestHandleActions(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddCollateral(models.CollateralRecord{
		Timestamp:  100,
		Ledger:     5,
		Pool:       "P1",
		Asset:      "USDC",
		Collateral: amount.NewInt128(1000),
		Delta:      amount.NewInt128(1000),
		Source:     "addr1",
	})
	ts := newTestServer(t, store)

	resp, envelope := postActions(t, ts, `{"addresses":["addr1","addr2"]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{
		"addr1": [{"kind":"Collateral","timestamp":100,"ledger":5,"pool":"P1","asset":"USDC","tvl":1000,"delta":1000,"source":"addr1"}],
		"addr2": []
	}`, string(envelope["result"]))
}

func TestHandleActionsEmpty(t *testing.T) {
	ts := newTestServer(t, storage.NewMemoryStore())

	resp, envelope := postActions(t, ts, `{"addresses":[]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, string(envelope["result"]))
}

func TestHandleActionsErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t, storage.NewMemoryStore())

		resp, envelope := postActions(t, ts, `{"addresses":"addr1"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(envelope["message"]), "invalid actions request")
	})

	t.Run("lookup failure returns no partial result", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.AddCollateral(models.CollateralRecord{Source: "X", Collateral: amount.NewInt128(1)})
		store.FailBorrows("Y", errors.New("index unavailable"))
		ts := newTestServer(t, store)

		resp, envelope := postActions(t, ts, `{"addresses":["X","Y"]}`)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "null", string(envelope["result"]))
		assert.Contains(t, string(envelope["message"]), "index unavailable")
	})

	t.Run("overflow under the error policy", func(t *testing.T) {
		store := storage.NewMemoryStore()
		store.AddBorrow(models.BorrowRecord{Source: "X", Borrowed: amount.MustParseInt128("9223372036854775808")})
		ts := newTestServer(t, store)

		resp, _ := postActions(t, ts, `{"addresses":["X"]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("unknown route", func(t *testing.T) {
		ts := newTestServer(t, storage.NewMemoryStore())

		resp, err := http.Get(ts.URL + "/api/1/actions")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
