package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/blend-actions/internal/actions"
	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/config"
	"github.com/kelsos/blend-actions/internal/models"
	"github.com/kelsos/blend-actions/internal/server"
	"github.com/kelsos/blend-actions/internal/storage"
)

func newClient(url string) *APIClient {
	cfg := config.NewConfig()
	cfg.ServerURL = url
	cfg.APIReadyTimeout = 3
	c := NewAPIClient(cfg)
	c.retryDelay = time.Millisecond
	return c
}

func TestResolveActions(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddBorrow(models.BorrowRecord{
		Timestamp: 7,
		Ledger:    2,
		Pool:      "P1",
		Asset:     "XLM",
		Borrowed:  amount.NewInt128(400),
		Delta:     amount.NewInt128(-100),
		Source:    "addr1",
	})
	srv := server.New(server.Config{Log: zerolog.Nop(), Resolver: actions.NewResolver(store)})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	got, err := newClient(ts.URL).ResolveActions(context.Background(), []string{"addr1"})
	require.NoError(t, err)
	assert.Equal(t, models.ActionsByAddress{
		"addr1": {{Kind: models.ActionBorrow, Timestamp: 7, Ledger: 2, Pool: "P1", Asset: "XLM", TVL: 400, Delta: -100, Source: "addr1"}},
	}, got)
}

func TestResolveActionsServerError(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailCollaterals("addr1", errors.New("index offline"))
	srv := server.New(server.Config{Log: zerolog.Nop(), Resolver: actions.NewResolver(store)})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	_, err := newClient(ts.URL).ResolveActions(context.Background(), []string{"addr1"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "index offline")
}

func TestWaitForAPIReady(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"result": true}`))
	}))
	defer ts.Close()

	assert.True(t, newClient(ts.URL).WaitForAPIReady(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}

func TestWaitForAPIReadyGivesUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	assert.False(t, newClient(ts.URL).WaitForAPIReady(context.Background()))
}
