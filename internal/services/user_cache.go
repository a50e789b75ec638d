package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Mykyta-Harashchenko/contacthub/internal/config"
	"github.com/Mykyta-Harashchenko/contacthub/internal/models"
	"github.com/Mykyta-Harashchenko/contacthub/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// UserCache is a Redis-backed cache in front of the bearer-token user lookup.
// A nil *UserCache is a safe no-op so the auth path works without Redis.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache returns nil when Redis is disabled or unreachable.
func NewUserCache(cfg *config.RedisConfig) *UserCache {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warnf("[UserCache] Redis unavailable, user cache disabled: %v", err)
		client.Close()
		return nil
	}

	return &UserCache{client: client, ttl: 15 * time.Minute}
}

func (c *UserCache) Get(email string) *models.User {
	if c == nil {
		return nil
	}

	data, err := c.client.Get(context.Background(), userCacheKey(email)).Bytes()
	if err != nil {
		return nil
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}
	return &user
}

func (c *UserCache) Set(user *models.User) {
	if c == nil || user == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	c.client.Set(context.Background(), userCacheKey(user.Email), data, c.ttl)
}

// Invalidate drops the cached entry; called whenever a flag the auth gate
// relies on changes (confirmation, avatar update).
func (c *UserCache) Invalidate(email string) {
	if c == nil {
		return
	}
	c.client.Del(context.Background(), userCacheKey(email))
}

func (c *UserCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func userCacheKey(email string) string {
	return "user:" + email
}
