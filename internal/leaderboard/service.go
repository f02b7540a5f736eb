package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitquest/internal/telemetry/tracing"
)

const (
	leaderboardKey = "fitquest-leaderboard"

	// top lists are cached briefly, the board tolerates slightly stale reads
	topCacheExpireSeconds = 60
)

type Entry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Coins    int    `json:"coins"`
}

// Service keeps the all-time coins leaderboard in a redis sorted set,
// with a small in-process cache in front of the top list reads.
type Service struct {
	redisClient *redis.Client
	cache       *freecache.Cache
}

func NewService(redisClient *redis.Client) *Service {
	megabyte := 1024 * 1024
	return &Service{
		redisClient: redisClient,
		cache:       freecache.NewCache(10 * megabyte),
	}
}

// SetScore stores the user's current coins total. Coins only grow except
// on workout deletion, so a plain ZADD is enough.
func (s *Service) SetScore(ctx context.Context, username string, coins int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "leaderboard.setScore")
	defer span.End()

	return s.redisClient.ZAdd(ctx, leaderboardKey, &redis.Z{
		Score:  float64(coins),
		Member: username,
	}).Err()
}

func (s *Service) Top(ctx context.Context, limit int) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "leaderboard.top")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := fmt.Sprintf("top::%d", limit)
	if cachedBytes, err := s.cache.Get([]byte(cacheKey)); err == nil {
		var entries []Entry
		if err := json.Unmarshal(cachedBytes, &entries); err == nil {
			log.Tracef("found top %d leaderboard in cache", limit)
			return entries, nil
		}
		log.Errorf("failed to unmarshal cached leaderboard top %d: %s", limit, err)
	}

	zs, err := s.redisClient.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}

	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		username, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Rank:     i + 1,
			Username: username,
			Coins:    int(z.Score),
		})
	}

	if entriesBytes, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set([]byte(cacheKey), entriesBytes, topCacheExpireSeconds); err != nil {
			log.Errorf("failed to cache leaderboard top %d: %s", limit, err)
		}
	}

	return entries, nil
}
