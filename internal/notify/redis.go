package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisTransport publishes messages on the Redis channel named by their topic.
type RedisTransport struct {
	rdb *goredis.Client
}

func NewRedisTransport(ctx context.Context, url string) (*RedisTransport, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisTransport{rdb: rdb}, nil
}

func NewRedisTransportFromClient(rdb *goredis.Client) *RedisTransport {
	return &RedisTransport{rdb: rdb}
}

func (t *RedisTransport) Send(ctx context.Context, msg Message) error {
	if t == nil || t.rdb == nil {
		return fmt.Errorf("redis transport not initialized")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return t.rdb.Publish(ctx, msg.Topic, raw).Err()
}

func (t *RedisTransport) Ping(ctx context.Context) error {
	return t.rdb.Ping(ctx).Err()
}

func (t *RedisTransport) Close() error {
	if t == nil || t.rdb == nil {
		return nil
	}
	return t.rdb.Close()
}
