package eventbus

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/events"
	"github.com/0xmhha/indexer-go/internal/config"
)

// RedisPublisher streams domain events to Redis Pub/Sub, one channel per
// event kind under a configured prefix.
type RedisPublisher struct {
	client        redis.UniversalClient
	config        config.EventBusRedisConfig
	nodeID        string
	channelPrefix string

	connected atomic.Bool

	publishedCount atomic.Uint64
	errorCount     atomic.Uint64

	logger *zap.Logger
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a RedisPublisher. Connect must be called before
// Publish.
func NewRedisPublisher(cfg config.EventBusRedisConfig, nodeID string, logger *zap.Logger) (*RedisPublisher, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("%w: no Redis addresses configured", ErrInvalidConfiguration)
	}

	channelPrefix := cfg.ChannelPrefix
	if channelPrefix == "" {
		channelPrefix = "indexer-events"
	}

	return &RedisPublisher{
		config:        cfg,
		nodeID:        nodeID,
		channelPrefix: channelPrefix,
		logger:        logger.With(zap.String("component", "redis-publisher")),
	}, nil
}

// Connect builds the Redis client (standalone or cluster, per
// config.ClusterMode) and verifies it with a Ping.
func (rp *RedisPublisher) Connect(ctx context.Context) error {
	var tlsConfig *tls.Config
	if rp.config.TLS.Enabled {
		var err error
		tlsConfig, err = buildTLSConfig(rp.config.TLS)
		if err != nil {
			return fmt.Errorf("failed to build TLS config: %w", err)
		}
	}

	if rp.config.ClusterMode {
		rp.client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        rp.config.Addresses,
			Password:     rp.config.Password,
			PoolSize:     rp.config.PoolSize,
			MinIdleConns: rp.config.MinIdleConns,
			DialTimeout:  rp.config.DialTimeout,
			ReadTimeout:  rp.config.ReadTimeout,
			WriteTimeout: rp.config.WriteTimeout,
			TLSConfig:    tlsConfig,
		})
	} else {
		rp.client = redis.NewClient(&redis.Options{
			Addr:         rp.config.Addresses[0],
			Password:     rp.config.Password,
			DB:           rp.config.DB,
			PoolSize:     rp.config.PoolSize,
			MinIdleConns: rp.config.MinIdleConns,
			DialTimeout:  rp.config.DialTimeout,
			ReadTimeout:  rp.config.ReadTimeout,
			WriteTimeout: rp.config.WriteTimeout,
			TLSConfig:    tlsConfig,
		})
	}

	if err := rp.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	rp.connected.Store(true)
	rp.logger.Info("connected to Redis",
		zap.Strings("addresses", rp.config.Addresses),
		zap.Bool("cluster_mode", rp.config.ClusterMode),
	)
	return nil
}

func buildTLSConfig(cfg config.TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		ServerName:         cfg.ServerName,
	}

	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", cfg.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", cfg.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate/key pair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Publish sends event on the "<prefix>:<eventType>" channel.
func (rp *RedisPublisher) Publish(ctx context.Context, event *events.DomainEvent) error {
	if !rp.connected.Load() {
		return ErrNotConnected
	}

	data, err := encodeEvent(event, rp.nodeID)
	if err != nil {
		rp.errorCount.Add(1)
		return fmt.Errorf("failed to encode event: %w", err)
	}

	channel := fmt.Sprintf("%s:%s", rp.channelPrefix, event.Type())

	publishCtx, cancel := context.WithTimeout(ctx, rp.writeTimeout())
	defer cancel()

	if err := rp.client.Publish(publishCtx, channel, data).Err(); err != nil {
		rp.errorCount.Add(1)
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}

	rp.publishedCount.Add(1)
	return nil
}

func (rp *RedisPublisher) writeTimeout() time.Duration {
	if rp.config.WriteTimeout > 0 {
		return rp.config.WriteTimeout
	}
	return 5 * time.Second
}

// Close closes the Redis client.
func (rp *RedisPublisher) Close() error {
	if !rp.connected.CompareAndSwap(true, false) {
		return nil
	}
	if rp.client == nil {
		return nil
	}
	if err := rp.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}
	rp.logger.Info("disconnected from Redis",
		zap.Uint64("published", rp.publishedCount.Load()),
		zap.Uint64("errors", rp.errorCount.Load()),
	)
	return nil
}
