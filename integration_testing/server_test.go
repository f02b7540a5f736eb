package integration_testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitquest/internal/workouts"
)

func doRequest(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != "" {
		reqBody = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Origin", "test")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-FITQUEST-TOKEN", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, respBody
}

func TestServer_WorkoutFlow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	suite := newSuite(ctx)
	defer suite.cleanup()

	username := gofakeit.Username()
	password := gofakeit.Password(true, true, true, false, false, 12)
	credsJson := fmt.Sprintf(`{"username": %q, "password": %q}`, username, password)

	// register seeds the user state document
	resp, body := doRequest(t, "POST", "/a/register", "", credsJson)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// same username again is rejected
	resp, _ = doRequest(t, "POST", "/a/register", "", credsJson)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doRequest(t, "POST", "/a/login", "", credsJson)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)
	token := loginResp.Token

	// the session resolves back to the registered account
	resp, body = doRequest(t, "GET", "/a/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var profile struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, username, profile.Username)
	assert.NotZero(t, profile.ID)

	// hydration: the fresh document carries the full plan catalog
	resp, body = doRequest(t, "GET", "/workouts/state", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var state workouts.UserState
	require.NoError(t, json.Unmarshal(body, &state))
	require.NotEmpty(t, state.Plans)
	assert.Zero(t, state.Coins)

	planID := state.Plans[0].ID
	exerciseID := state.Plans[0].Exercises[0].ID
	targetReps := state.Plans[0].Exercises[0].TargetReps

	completeJson := fmt.Sprintf(
		`{"planId": %q, "exercises": [{"id": %q, "completedReps": %d}], "duration": 20}`,
		planID, exerciseID, targetReps,
	)
	resp, body = doRequest(t, "POST", "/workouts/complete", token, completeJson)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var result workouts.CompleteWorkoutResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.NotEmpty(t, result.WorkoutID)
	assert.GreaterOrEqual(t, result.CoinsEarned, 5)
	assert.Equal(t, 1, result.Streak)

	// the same exercise cannot be completed twice in one cycle
	resp, _ = doRequest(t, "POST", "/workouts/complete", token, completeJson)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doRequest(t, "GET", "/workouts/today", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var todayResp struct {
		TodayStats *workouts.TodayStats `json:"todayStats"`
	}
	require.NoError(t, json.Unmarshal(body, &todayResp))
	require.NotNil(t, todayResp.TodayStats)
	assert.Equal(t, 1, todayResp.TodayStats.WorkoutsCompleted)
	assert.Equal(t, 20, todayResp.TodayStats.TotalDuration)

	// client push, replayed with the same idempotency key
	syncJson := `{"dailyStats": {"date": "2025-03-10", "calories": 12, "exercisesCompleted": 5, "workoutsCount": 1}}`
	for i := 0; i < 2; i++ {
		req, err := http.NewRequest("POST", serverEndpoint+"/workouts/sync", bytes.NewReader([]byte(syncJson)))
		require.NoError(t, err)
		req.Header.Set("Origin", "test")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-FITQUEST-TOKEN", token)
		req.Header.Set("X-Idempotency-Key", "integration-sync-key")
		syncResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		require.NoError(t, syncResp.Body.Close())
		require.Equal(t, http.StatusOK, syncResp.StatusCode)
	}

	// rewards stayed server-owned through the push
	resp, body = doRequest(t, "GET", "/workouts/state", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, result.User.Coins, state.Coins)
	assert.Equal(t, 1, state.TotalWorkouts)

	// the workout pushed the user onto the public leaderboard
	resp, body = doRequest(t, "GET", "/leaderboard/top", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), username)

	resp, _ = doRequest(t, "GET", "/a/logout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the token died with the session
	resp, _ = doRequest(t, "GET", "/workouts/state", token, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
