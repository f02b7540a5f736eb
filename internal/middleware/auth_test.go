package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitquest/internal/auth"
)

type loginCheckerStub struct {
	// token to user
	sessions map[string]*auth.User
}

func (c *loginCheckerStub) GetLoggedUser(_ context.Context, token string) (*auth.User, error) {
	user, ok := c.sessions[token]
	if !ok {
		return nil, auth.ErrNotLoggedIn
	}
	return user, nil
}

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	testUser := &auth.User{ID: 7, Username: "mila"}
	checker := &loginCheckerStub{
		sessions: map[string]*auth.User{
			"valid-token": testUser,
		},
	}

	var gotUser *auth.User
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	authMiddleware := NewAuthMiddlewareHandler(checker)
	handler := authMiddleware.AuthCheck()(nextHandler)

	t.Run("allowed path passes without token", func(t *testing.T) {
		gotUser = nil
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/version", nil)
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, gotUser)
	})

	t.Run("allowed prefix passes without token", func(t *testing.T) {
		gotUser = nil
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/leaderboard/top", nil)
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, gotUser)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/workouts/today", nil)
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/workouts/today", nil)
		req.Header.Set(AuthTokenHeader, "nope")
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token injects user", func(t *testing.T) {
		gotUser = nil
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/workouts/today", nil)
		req.Header.Set(AuthTokenHeader, "valid-token")
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, *testUser, *gotUser)
	})

	t.Run("options request short circuits", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", "/workouts/complete", nil)
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
