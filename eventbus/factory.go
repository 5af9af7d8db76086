package eventbus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/events"
	"github.com/0xmhha/indexer-go/internal/config"
)

// noopPublisher discards every event; used when no external bus is
// configured so callers never need a nil check.
type noopPublisher struct{}

var _ Publisher = noopPublisher{}

func (noopPublisher) Connect(ctx context.Context) error                        { return nil }
func (noopPublisher) Publish(ctx context.Context, _ *events.DomainEvent) error { return nil }
func (noopPublisher) Close() error                                             { return nil }

// New builds the Publisher named by cfg.Type ("redis", "kafka", or
// "local"/"" for a no-op), then connects it.
func New(ctx context.Context, cfg config.EventBusConfig, nodeID string, logger *zap.Logger) (Publisher, error) {
	var pub Publisher
	var err error

	switch cfg.Type {
	case "redis":
		pub, err = NewRedisPublisher(cfg.Redis, nodeID, logger)
	case "kafka":
		pub, err = NewKafkaPublisher(cfg.Kafka, nodeID, logger)
	case "", "local":
		return noopPublisher{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown eventbus type %q", ErrInvalidConfiguration, cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := pub.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect %s eventbus: %w", cfg.Type, err)
	}
	return pub, nil
}
