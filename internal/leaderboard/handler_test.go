package leaderboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type topProviderStub struct {
	entries  []Entry
	err      error
	gotLimit int
}

func (s *topProviderStub) Top(_ context.Context, limit int) ([]Entry, error) {
	s.gotLimit = limit
	return s.entries, s.err
}

func TestHandler_Top(t *testing.T) {
	provider := &topProviderStub{
		entries: []Entry{
			{Rank: 1, Username: "mila", Coins: 300},
		},
	}

	router := mux.NewRouter()
	handler := NewHandler(provider)
	handler.SetupRoutes(router.PathPrefix("/leaderboard").Subrouter())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/leaderboard/top", nil)
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, defaultTopLimit, provider.gotLimit)
	assert.JSONEq(t, `[{"rank":1,"username":"mila","coins":300}]`, rr.Body.String())

	// explicit limit, capped at the max
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/leaderboard/top?limit=500", nil)
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, maxTopLimit, provider.gotLimit)

	// invalid limit
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/leaderboard/top?limit=abc", nil)
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Top_error(t *testing.T) {
	provider := &topProviderStub{
		err: errors.New("redis down"),
	}

	router := mux.NewRouter()
	handler := NewHandler(provider)
	handler.SetupRoutes(router.PathPrefix("/leaderboard").Subrouter())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/leaderboard/top", nil)
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
