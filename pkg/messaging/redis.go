package messaging

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(opts Options) (*redis.Client, error) {
	ro := &redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.TLS {
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(ro)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// publisher is the part of redis.Cmdable used for publishing.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Publisher publishes JSON-encoded messages on Redis pub/sub channels.
type Publisher struct {
	client publisher
}

func NewPublisher(client publisher) *Publisher {
	return &Publisher{client: client}
}

// Publish encodes message as JSON and publishes it on channel.
func (p *Publisher) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}
	return nil
}

// NopPublisher drops every message. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}
