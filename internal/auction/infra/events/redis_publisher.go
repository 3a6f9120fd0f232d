package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bidcraft/engine/internal/auction/domain"
	"github.com/redis/go-redis/v9"
)

// listingChannel names the pub/sub channel for one listing's events.
func listingChannel(listingID string) string {
	return fmt.Sprintf("bidcraft:listing:%s", listingID)
}

// RedisPublisher pushes domain events onto a per-listing redis pub/sub
// channel so other nodes (and the notification workers) see accepted
// bids and closed listings without sharing a process.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event) error {
	data, err := json.Marshal(envelope{Event: event.EventName(), Payload: event})
	if err != nil {
		return fmt.Errorf("redis publisher: marshal %s: %w", event.EventName(), err)
	}
	if err := p.rdb.Publish(ctx, listingChannel(event.Listing().String()), data).Err(); err != nil {
		return fmt.Errorf("redis publisher: publish %s: %w", event.EventName(), err)
	}
	return nil
}
