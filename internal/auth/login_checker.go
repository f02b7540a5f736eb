package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// LoginChecker resolves a session token to the logged-in user.
type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// GetLoggedUser returns the user bound to the token, or ErrNotLoggedIn
// when the token is unknown or the session is past its TTL.
func (c *LoginChecker) GetLoggedUser(ctx context.Context, token string) (*User, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := c.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}

	var sess session
	if err := json.Unmarshal([]byte(cmd.Val()), &sess); err != nil {
		return nil, err
	}

	createdAt := time.Unix(sess.CreatedAt, 0)
	if time.Since(createdAt) > c.ttl {
		return nil, ErrNotLoggedIn
	}

	return &sess.User, nil
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	if _, err := c.GetLoggedUser(ctx, token); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
