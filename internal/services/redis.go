package services

import (
	"context"
	"fmt"
	"time"

	"minesweeper-backend/internal/config"
	"minesweeper-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisService(cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	_, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	service := &RedisService{
		client: client,
		ctx:    ctx,
	}

	return service, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

func (s *RedisService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var recordWinScript = redis.NewScript(`
	local key = KEYS[1]
	local elapsed = tonumber(ARGV[1])

	redis.call("HINCRBY", key, "wins", 1)

	local best = redis.call("HGET", key, "best_time")
	if not best or tonumber(best) > elapsed then
		redis.call("HSET", key, "best_time", elapsed)
		return 1
	end

	return 0
`)

// RecordWin counts a win and keeps endTime as best time when it beats the
// stored one.
func (s *RedisService) RecordWin(ctx context.Context, endTime int64) error {
	err := recordWinScript.Run(ctx, s.client, []string{KeyStats}, endTime).Err()
	if err != nil {
		return fmt.Errorf("%w: failed to record win: %v", ErrStatsUnavailable, err)
	}
	return nil
}

func (s *RedisService) RecordLoss(ctx context.Context) error {
	if err := s.client.HIncrBy(ctx, KeyStats, "losses", 1).Err(); err != nil {
		return fmt.Errorf("%w: failed to record loss: %v", ErrStatsUnavailable, err)
	}
	return nil
}

func (s *RedisService) GetStats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats

	res := s.client.HGetAll(ctx, KeyStats)
	fields, err := res.Result()
	if err != nil {
		return stats, fmt.Errorf("%w: failed to get stats: %v", ErrStatsUnavailable, err)
	}
	if err := res.Scan(&stats); err != nil {
		return stats, fmt.Errorf("failed to decode stats: %w", err)
	}
	_, stats.HasBestTime = fields["best_time"]

	return stats, nil
}

func (s *RedisService) ResetStats(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyStats).Err(); err != nil {
		return fmt.Errorf("%w: failed to reset stats: %v", ErrStatsUnavailable, err)
	}
	return nil
}

// CheckRateLimit counts one action for playerID in a fixed window and
// reports whether the player is still under limit.
func (s *RedisService) CheckRateLimit(playerID string, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, playerID, action)

	count, err := s.client.Incr(s.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if count == 1 {
		s.client.Expire(s.ctx, key, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisService) ClearRateLimit(playerID string, action string) error {
	key := fmt.Sprintf(KeyRateLimit, playerID, action)
	return s.client.Del(s.ctx, key).Err()
}
