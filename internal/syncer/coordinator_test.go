package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordedPush struct {
	idempotencyKey string
	payload        string
}

type pusherRecorder struct {
	mu       sync.Mutex
	pushes   []recordedPush
	failures int // fail this many attempts before succeeding
	pushed   chan struct{}
}

func newPusherRecorder() *pusherRecorder {
	return &pusherRecorder{
		pushed: make(chan struct{}, 100),
	}
}

func (p *pusherRecorder) Push(_ context.Context, idempotencyKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, recordedPush{
		idempotencyKey: idempotencyKey,
		payload:        string(payload),
	})
	p.pushed <- struct{}{}
	if p.failures > 0 {
		p.failures--
		return errors.New("push failed")
	}
	return nil
}

func (p *pusherRecorder) allPushes() []recordedPush {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedPush{}, p.pushes...)
}

func waitForPush(t *testing.T, p *pusherRecorder) {
	t.Helper()
	select {
	case <-p.pushed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for push")
	}
	// let the coordinator record the result of the push
	time.Sleep(50 * time.Millisecond)
}

type syncState struct {
	Coins int `json:"coins"`
}

func TestCoordinator_DebounceCollapsesBurst(t *testing.T) {
	pusher := newPusherRecorder()
	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay: 100 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	})
	defer coordinator.Close()

	require.NoError(t, coordinator.StateChanged(syncState{Coins: 1}))
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 2}))
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 3}))

	waitForPush(t, pusher)

	pushes := pusher.allPushes()
	require.Len(t, pushes, 1)
	assert.JSONEq(t, `{"coins":3}`, pushes[0].payload)
}

func TestCoordinator_DedupeIdenticalPayload(t *testing.T) {
	pusher := newPusherRecorder()
	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay: 10 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	})

	require.NoError(t, coordinator.StateChanged(syncState{Coins: 10}))
	waitForPush(t, pusher)

	// identical payload is not resent
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 10}))
	coordinator.Close()

	assert.Len(t, pusher.allPushes(), 1)
}

func TestCoordinator_HydrationSuppression(t *testing.T) {
	pusher := newPusherRecorder()
	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay:          10 * time.Millisecond,
		SuppressAfterHydration: time.Hour,
		RetryBackoff:           time.Millisecond,
	})

	now := time.Now()
	coordinator.nowFunc = func() time.Time { return now }

	require.NoError(t, coordinator.Hydrated(syncState{Coins: 5}))

	// inside the suppression window nothing goes out, not even real changes
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 6}))

	// window over, hydrated state itself is still never echoed back
	now = now.Add(2 * time.Hour)
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 5}))

	// a real change goes through
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 7}))
	waitForPush(t, pusher)
	coordinator.Close()

	pushes := pusher.allPushes()
	require.Len(t, pushes, 1)
	assert.JSONEq(t, `{"coins":7}`, pushes[0].payload)
}

func TestCoordinator_RetriesWithSameIdempotencyKey(t *testing.T) {
	pusher := newPusherRecorder()
	pusher.failures = 2

	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay: 10 * time.Millisecond,
		MaxAttempts:   3,
		RetryBackoff:  time.Millisecond,
	})

	require.NoError(t, coordinator.StateChanged(syncState{Coins: 42}))
	waitForPush(t, pusher)
	waitForPush(t, pusher)
	waitForPush(t, pusher)
	coordinator.Close()

	pushes := pusher.allPushes()
	require.Len(t, pushes, 3)
	assert.Equal(t, pushes[0].idempotencyKey, pushes[1].idempotencyKey)
	assert.Equal(t, pushes[0].idempotencyKey, pushes[2].idempotencyKey)
}

func TestCoordinator_GivesUpAfterMaxAttempts(t *testing.T) {
	pusher := newPusherRecorder()
	pusher.failures = 100 // never succeeds

	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay: 10 * time.Millisecond,
		MaxAttempts:   2,
		RetryBackoff:  time.Millisecond,
	})

	require.NoError(t, coordinator.StateChanged(syncState{Coins: 1}))
	waitForPush(t, pusher)
	waitForPush(t, pusher)
	time.Sleep(50 * time.Millisecond)
	require.Len(t, pusher.allPushes(), 2)

	// the next organic change re-attempts, with a fresh key
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 2}))
	waitForPush(t, pusher)
	coordinator.Close()

	pushes := pusher.allPushes()
	require.GreaterOrEqual(t, len(pushes), 3)
	assert.NotEqual(t, pushes[0].idempotencyKey, pushes[2].idempotencyKey)
}

type slowPusher struct {
	mu      sync.Mutex
	pushes  []string
	delay   time.Duration
	started chan struct{}
}

func (p *slowPusher) Push(ctx context.Context, _ string, payload []byte) error {
	p.started <- struct{}{}
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, string(payload))
	return nil
}

func TestCoordinator_InFlightPushDoesNotBlockCallers(t *testing.T) {
	pusher := &slowPusher{
		delay:   300 * time.Millisecond,
		started: make(chan struct{}, 10),
	}
	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay: 10 * time.Millisecond,
		RetryBackoff:  time.Millisecond,
	})

	require.NoError(t, coordinator.StateChanged(syncState{Coins: 1}))

	select {
	case <-pusher.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the push to start")
	}

	// changes arriving while a push is in flight must return immediately
	begin := time.Now()
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 2}))
	require.NoError(t, coordinator.StateChanged(syncState{Coins: 3}))
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	// the latest of them goes out once the in-flight push is done
	coordinator.Close()

	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	require.Len(t, pusher.pushes, 2)
	assert.JSONEq(t, `{"coins":1}`, pusher.pushes[0])
	assert.JSONEq(t, `{"coins":3}`, pusher.pushes[1])
}

func TestCoordinator_CloseFlushesPending(t *testing.T) {
	pusher := newPusherRecorder()
	coordinator := NewCoordinator(pusher, Config{
		DebounceDelay: time.Hour, // would never fire on its own
		RetryBackoff:  time.Millisecond,
	})

	require.NoError(t, coordinator.StateChanged(syncState{Coins: 99}))
	coordinator.Close()

	pushes := pusher.allPushes()
	require.Len(t, pushes, 1)
	assert.JSONEq(t, `{"coins":99}`, pushes[0].payload)
}
