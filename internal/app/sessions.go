// internal/app/sessions.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ovalhq/pavilion/internal/models"
)

const (
	timeFormat    = "2006-01-02 15:04:05"
	sessionKeyTpl = "session:%s" // session:${token}
	tokenPrefix   = "sk-pvln-"
)

// SessionStore holds login sessions. The redis implementation is the real
// one; tests substitute an in-memory double.
type SessionStore interface {
	Create(ctx context.Context, user *models.User) (string, error)
	Fetch(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	Close() error
}

type RedisSessions struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessions(redisURL string, ttl time.Duration) (*RedisSessions, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSessions{redis: client, ttl: ttl}, nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 12)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (s *RedisSessions) Create(ctx context.Context, user *models.User) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	now := time.Now().UTC()

	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"user_id":            user.ID,
		"username":           user.Username,
		"role":               user.Role,
		"request_count":      0,
		"created_dttm_utc":   now.Format(timeFormat),
		"last_seen_dttm_utc": now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return token, nil
}

func (s *RedisSessions) Fetch(ctx context.Context, token string) (*models.Session, error) {
	key := fmt.Sprintf(sessionKeyTpl, token)

	values, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNoSession
	}

	pipe := s.redis.Pipeline()
	pipe.HIncrBy(ctx, key, "request_count", 1)
	pipe.HSet(ctx, key, "last_seen_dttm_utc", time.Now().UTC().Format(timeFormat))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update session stats: %w", err)
	}

	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	lastSeenTime, _ := time.Parse(timeFormat, values["last_seen_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.Session{
		UserID:       values["user_id"],
		Username:     values["username"],
		Role:         values["role"],
		RequestCount: reqCount,
		CreatedTime:  createdTime,
		LastSeenTime: lastSeenTime,
	}, nil
}

func (s *RedisSessions) Delete(ctx context.Context, token string) error {
	key := fmt.Sprintf(sessionKeyTpl, token)
	return s.redis.Del(ctx, key).Err()
}

func (s *RedisSessions) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
