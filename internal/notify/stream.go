package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"printhub/console/internal/models"
)

// streamMaxLen bounds the stream; the alert worker is expected to keep up.
const streamMaxLen = 10000

// StreamPublisher appends notifications to a Redis stream for the alert worker.
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) Append(ctx context.Context, owner models.Owner, notifications []models.Notification) error {
	pipe := p.client.Pipeline()
	for _, n := range notifications {
		body, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode notification: %w", err)
		}
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: map[string]any{
				"type":         TypeLowToner,
				"username":     owner.Username,
				"notification": string(body),
			},
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
