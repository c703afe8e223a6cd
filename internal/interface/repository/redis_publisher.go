package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"flightsurety-service/internal/domain/entity"
	"flightsurety-service/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisStreamPublisher appends ledger events to a capped Redis stream
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a publisher writing to stream, trimmed to about maxLen entries
func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) repository.EventPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

func streamValues(e entity.Event) (map[string]interface{}, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":      e.ID,
		"type":    string(e.Type),
		"payload": string(payload),
	}, nil
}

// Publish adds the batch in one pipeline round trip
func (p *RedisStreamPublisher) Publish(ctx context.Context, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, e := range events {
		values, err := streamValues(e)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", e.ID, err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: true,
			Values: values,
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append events to %s: %w", p.stream, err)
	}
	return nil
}
