package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName  = "ledgerreplay"
	pingTimeout = 5 * time.Second
)

// NewClient parses redisURL, connects and verifies the server answers.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = clientName
	}

	client := redis.NewClient(opts)

	if err := Ping(client)(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Ping returns a readiness probe for client. Each probe is bounded by a
// short timeout even when ctx has none.
func Ping(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}
