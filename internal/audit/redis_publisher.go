package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/itops-service/internal/domain"
	"github.com/spec-kit/itops-service/internal/events"
)

// RedisPublisherName identifies the handler in logs and metrics.
const RedisPublisherName = "redis_publisher"

// Publisher sends a payload on a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisPublisher forwards committed events to external subscribers.
type RedisPublisher struct {
	pub    Publisher
	prefix string
}

func NewRedisPublisher(pub Publisher, prefix string) *RedisPublisher {
	return &RedisPublisher{pub: pub, prefix: prefix}
}

// Channel returns the pub/sub channel for one resource family.
func Channel(prefix string, kind domain.ResourceKind) string {
	return prefix + ":" + string(kind)
}

func (p *RedisPublisher) Register(d *events.Dispatcher) {
	d.SubscribeAll(RedisPublisherName, p.Handle)
}

func (p *RedisPublisher) Handle(ctx context.Context, evt events.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.pub.Publish(ctx, Channel(p.prefix, evt.EntityKind), payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
