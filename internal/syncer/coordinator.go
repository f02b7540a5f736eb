package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Pusher sends one serialized state payload to the authoritative store.
// The idempotency key stays the same across retries of the same payload.
type Pusher interface {
	Push(ctx context.Context, idempotencyKey string, payload []byte) error
}

type Config struct {
	// DebounceDelay collapses bursts of local changes into one push.
	DebounceDelay time.Duration
	// PushTimeout bounds a single push attempt, independent of the debounce.
	PushTimeout time.Duration
	// SuppressAfterHydration is the window after a fresh server pull during
	// which local "changes" are assumed to be echoes of that pull.
	SuppressAfterHydration time.Duration
	// MaxAttempts bounds retries of a single payload. After that the payload
	// is dropped, the next organic state change re-attempts synchronization.
	MaxAttempts int
	// RetryBackoff is the initial backoff between attempts, doubled each time.
	RetryBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		DebounceDelay:          3 * time.Second,
		PushTimeout:            10 * time.Second,
		SuppressAfterHydration: 2 * time.Second,
		MaxAttempts:            3,
		RetryBackoff:           500 * time.Millisecond,
	}
}

// Coordinator is the client-side write-behind loop. Local state mutations
// are applied optimistically by the caller, the coordinator only mirrors
// them to the server: deduplicated by content hash, debounced, retried
// with backoff, and suppressed right after hydration.
type Coordinator struct {
	pusher  Pusher
	cfg     Config
	changes chan []byte
	done    chan struct{}
	wg      sync.WaitGroup

	mu            sync.Mutex
	lastSentHash  [sha256.Size]byte
	hasLastSent   bool
	suppressUntil time.Time

	nowFunc func() time.Time
}

func NewCoordinator(pusher Pusher, cfg Config) *Coordinator {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultConfig().DebounceDelay
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = DefaultConfig().PushTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultConfig().RetryBackoff
	}

	c := &Coordinator{
		pusher:  pusher,
		cfg:     cfg,
		changes: make(chan []byte),
		done:    make(chan struct{}),
		nowFunc: time.Now,
	}

	c.wg.Add(1)
	go c.run()

	return c
}

// StateChanged registers a local state mutation. The payload is serialized
// and scheduled for a debounced push, unless it matches the last payload
// successfully sent or arrives inside the hydration suppression window.
func (c *Coordinator) StateChanged(state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal sync payload: %w", err)
	}

	payloadHash := sha256.Sum256(payload)

	c.mu.Lock()
	if c.nowFunc().Before(c.suppressUntil) {
		c.mu.Unlock()
		log.Tracef("syncer: change inside hydration suppression window, skipping")
		return nil
	}
	if c.hasLastSent && payloadHash == c.lastSentHash {
		c.mu.Unlock()
		log.Tracef("syncer: payload identical to last sent, skipping")
		return nil
	}
	c.mu.Unlock()

	select {
	case c.changes <- payload:
	case <-c.done:
	}
	return nil
}

// Hydrated marks the given server state as the synchronization baseline.
// It opens the suppression window and makes an identical local payload a
// no-op, so a fresh pull is never echoed straight back to the server.
func (c *Coordinator) Hydrated(state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal hydrated payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSentHash = sha256.Sum256(payload)
	c.hasLastSent = true
	c.suppressUntil = c.nowFunc().Add(c.cfg.SuppressAfterHydration)
	return nil
}

// Close stops the loop. A pending debounced payload is pushed one last
// time before returning.
func (c *Coordinator) Close() {
	close(c.done)
	c.wg.Wait()
}

func (c *Coordinator) run() {
	defer c.wg.Done()

	var (
		pending  []byte
		timer    *time.Timer
		timerC   <-chan time.Time
		pushDone chan struct{}
	)

	// pushes run off the loop so callers never wait on one; while a push
	// is in flight new changes keep replacing pending, latest wins
	startPush := func(payload []byte) {
		pushDone = make(chan struct{})
		go func() {
			defer close(pushDone)
			c.push(payload)
		}()
	}

	for {
		select {
		case payload := <-c.changes:
			pending = payload
			// re-arm, at most one pending push per change burst
			if timer == nil {
				timer = time.NewTimer(c.cfg.DebounceDelay)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(c.cfg.DebounceDelay)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if pushDone != nil {
				// a push is still in flight, the payload waits its turn
				continue
			}
			startPush(pending)
			pending = nil
		case <-pushDone:
			pushDone = nil
			if pending != nil && timer == nil {
				startPush(pending)
				pending = nil
			}
		case <-c.done:
			if timer != nil {
				timer.Stop()
			}
			if pushDone != nil {
				<-pushDone
			}
			if pending != nil {
				c.push(pending)
			}
			return
		}
	}
}

func (c *Coordinator) push(payload []byte) {
	idempotencyKey := uuid.NewString()
	backoff := c.cfg.RetryBackoff

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.PushTimeout)
		err := c.pusher.Push(ctx, idempotencyKey, payload)
		cancel()

		if err == nil {
			c.mu.Lock()
			c.lastSentHash = sha256.Sum256(payload)
			c.hasLastSent = true
			c.mu.Unlock()
			log.Tracef("syncer: push [%s] done, attempt %d", idempotencyKey, attempt)
			return
		}

		log.Errorf("syncer: push [%s] attempt %d: %s", idempotencyKey, attempt, err)

		if attempt == c.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-c.done:
			return
		}
	}

	// dropped, the next organic state change re-attempts the sync
	log.Errorf("syncer: push [%s] gave up after %d attempts", idempotencyKey, c.cfg.MaxAttempts)
}
