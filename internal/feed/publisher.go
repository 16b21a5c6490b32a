package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Channel carries every pickup change event.
const Channel = "greencycle.pickups.changes"

// Publisher fans pickup change events out over Redis pub/sub.
type Publisher struct {
	rdb *goredis.Client
}

func NewPublisher(addr string) (*Publisher, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Publisher{rdb: rdb}, nil
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal feed event: %w", err)
	}

	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}

	return nil
}

// Subscribe opens a subscription on the change channel for the hub.
func (p *Publisher) Subscribe(ctx context.Context) *goredis.PubSub {
	return p.rdb.Subscribe(ctx, Channel)
}

func (p *Publisher) Close() error { return p.rdb.Close() }
