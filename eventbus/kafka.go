package eventbus

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/events"
	"github.com/0xmhha/indexer-go/internal/config"
)

// KafkaPublisher streams domain events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	config config.EventBusKafkaConfig
	nodeID string

	connected atomic.Bool

	messagesWritten atomic.Uint64
	errorCount      atomic.Uint64

	logger *zap.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a KafkaPublisher. Connect must be called before
// Publish.
func NewKafkaPublisher(cfg config.EventBusKafkaConfig, nodeID string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: no Kafka brokers configured", ErrInvalidConfiguration)
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: no Kafka topic configured", ErrInvalidConfiguration)
	}

	return &KafkaPublisher{
		config: cfg,
		nodeID: nodeID,
		logger: logger.With(zap.String("component", "kafka-publisher")),
	}, nil
}

// Connect builds the underlying kafka.Writer, configuring compression, TLS,
// and SASL according to the EventBusKafkaConfig.
func (kp *KafkaPublisher) Connect(ctx context.Context) error {
	var compression compress.Codec
	switch kp.config.Compression {
	case "gzip":
		compression = &compress.GzipCodec
	case "snappy":
		compression = &compress.SnappyCodec
	case "lz4":
		compression = &compress.Lz4Codec
	case "zstd":
		compression = &compress.ZstdCodec
	}

	var tlsConfig *tls.Config
	if kp.config.TLS.Enabled {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: kp.config.TLS.InsecureSkipVerify,
			ServerName:         kp.config.TLS.ServerName,
		}
	}

	var transport *kafka.Transport
	if kp.config.SASLUsername != "" && kp.config.SASLPassword != "" {
		mechanism, err := createSASLMechanism(kp.config)
		if err != nil {
			return fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		transport = &kafka.Transport{SASL: mechanism, TLS: tlsConfig}
	} else if tlsConfig != nil {
		transport = &kafka.Transport{TLS: tlsConfig}
	}

	writerConfig := kafka.WriterConfig{
		Brokers:      kp.config.Brokers,
		Topic:        kp.config.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    kp.config.BatchSize,
		BatchTimeout: time.Duration(kp.config.LingerMs) * time.Millisecond,
		Async:        true,
	}
	if compression != nil {
		writerConfig.CompressionCodec = compression
	}

	writer := kafka.NewWriter(writerConfig)
	if transport != nil {
		writer.Transport = transport
	}

	switch kp.config.RequiredAcks {
	case 0:
		writer.RequiredAcks = kafka.RequireNone
	case 1:
		writer.RequiredAcks = kafka.RequireOne
	default:
		writer.RequiredAcks = kafka.RequireAll
	}

	kp.writer = writer
	kp.connected.Store(true)

	kp.logger.Info("connected to Kafka",
		zap.Strings("brokers", kp.config.Brokers),
		zap.String("topic", kp.config.Topic),
		zap.String("compression", kp.config.Compression),
	)
	return nil
}

func createSASLMechanism(cfg config.EventBusKafkaConfig) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "", "PLAIN":
		return plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.SASLMechanism)
	}
}

// Publish writes event to the configured Kafka topic, keyed by its hashId
// so all events for one ethscription land on the same partition.
func (kp *KafkaPublisher) Publish(ctx context.Context, event *events.DomainEvent) error {
	if !kp.connected.Load() {
		return ErrNotConnected
	}

	data, err := encodeEvent(event, kp.nodeID)
	if err != nil {
		kp.errorCount.Add(1)
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Record.HashID.Hex()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type())},
			{Key: "node_id", Value: []byte(kp.nodeID)},
		},
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		kp.errorCount.Add(1)
		return fmt.Errorf("failed to write to Kafka: %w", err)
	}

	kp.messagesWritten.Add(1)
	return nil
}

// Close flushes and closes the Kafka writer.
func (kp *KafkaPublisher) Close() error {
	if !kp.connected.CompareAndSwap(true, false) {
		return nil
	}
	if kp.writer == nil {
		return nil
	}
	if err := kp.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	kp.logger.Info("disconnected from Kafka",
		zap.Uint64("messages_written", kp.messagesWritten.Load()),
		zap.Uint64("errors", kp.errorCount.Load()),
	)
	return nil
}
