package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/indexer-go/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the indexer
type Config struct {
	RPC        RPCConfig        `yaml:"rpc"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	Contracts  ContractsConfig  `yaml:"contracts"`
	Validation ValidationConfig `yaml:"validation"`
	API        APIConfig        `yaml:"api"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
}

// RPCConfig holds RPC client configuration
type RPCConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path     string `yaml:"path"`
	ReadOnly bool   `yaml:"readonly"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IndexerConfig holds indexer-specific configuration: the backfill range,
// worker/batch sizing, and the Reorg Guard's window and confirmation depth.
type IndexerConfig struct {
	Workers       int           `yaml:"workers"`
	ChunkSize     int           `yaml:"chunk_size"`
	OriginBlock   uint64        `yaml:"origin_block"`
	Confirmations uint64        `yaml:"confirmations"`
	WindowLength  uint64        `yaml:"window_length"`
	MaxAttempts   int           `yaml:"max_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// ContractsConfig holds the on-chain addresses the Transaction Classifier
// dispatches logs against (§4.3's always-on log dispatch table).
type ContractsConfig struct {
	Marketplace string `yaml:"marketplace"`
	Auction     string `yaml:"auction"`
	Points      string `yaml:"points"`
	Bridge      string `yaml:"bridge"`
}

// ValidationConfig configures the external ethscriptions provider that
// client.Validator queries for batch transfers. A blank BaseURL is not
// special-cased: those validation calls then fail.
type ValidationConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Enabled                  bool     `yaml:"enabled"`
	Host                     string   `yaml:"host"`
	Port                     int      `yaml:"port"`
	EnableWebSocket          bool     `yaml:"enable_websocket"`
	EnableWebSocketKeepAlive bool     `yaml:"enable_websocket_keepalive"`
	EnableCORS               bool     `yaml:"enable_cors"`
	AllowedOrigins           []string `yaml:"allowed_origins"`
}

// EventBusConfig holds EventBus configuration for distributed operations
type EventBusConfig struct {
	// Type is the event bus type: "local", "redis" or "kafka". Validate also
	// accepts "hybrid", which eventbus.New rejects as an unknown type.
	Type string `yaml:"type"`
	// PublishBufferSize is the size of the publish buffer
	PublishBufferSize int `yaml:"publish_buffer_size"`
	// HistorySize is the number of events to keep in history for replay
	HistorySize int `yaml:"history_size"`
	// Redis holds Redis EventBus configuration
	Redis EventBusRedisConfig `yaml:"redis"`
	// Kafka holds Kafka EventBus configuration
	Kafka EventBusKafkaConfig `yaml:"kafka"`
}

// EventBusRedisConfig holds Redis Pub/Sub EventBus configuration
type EventBusRedisConfig struct {
	// Enabled indicates whether Redis EventBus is active
	Enabled bool `yaml:"enabled"`
	// Addresses is the list of Redis server addresses (supports cluster mode)
	Addresses []string `yaml:"addresses"`
	// Password is the Redis password
	Password string `yaml:"password,omitempty"`
	// DB is the Redis database number (ignored in cluster mode)
	DB int `yaml:"db"`
	// PoolSize is the maximum number of socket connections
	PoolSize int `yaml:"pool_size"`
	// MinIdleConns is the minimum number of idle connections
	MinIdleConns int `yaml:"min_idle_conns"`
	// MaxRetries is the maximum number of retries before giving up
	MaxRetries int `yaml:"max_retries"`
	// DialTimeout is the timeout for establishing new connections
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// ReadTimeout is the timeout for socket reads
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout is the timeout for socket writes
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// ChannelPrefix is the prefix for Redis Pub/Sub channels
	ChannelPrefix string `yaml:"channel_prefix"`
	// TLS holds TLS configuration for secure connections
	TLS TLSConfig `yaml:"tls"`
	// ClusterMode indicates whether to use Redis Cluster
	ClusterMode bool `yaml:"cluster_mode"`
}

// EventBusKafkaConfig holds Kafka EventBus configuration
type EventBusKafkaConfig struct {
	// Enabled indicates whether Kafka EventBus is active
	Enabled bool `yaml:"enabled"`
	// Brokers is the list of Kafka broker addresses
	Brokers []string `yaml:"brokers"`
	// Topic is the Kafka topic for events
	Topic string `yaml:"topic"`
	// GroupID is the consumer group ID
	GroupID string `yaml:"group_id"`
	// ClientID is the client ID for this producer
	ClientID string `yaml:"client_id"`
	// SecurityProtocol is the security protocol: "PLAINTEXT", "SSL", "SASL_PLAINTEXT", "SASL_SSL"
	SecurityProtocol string `yaml:"security_protocol"`
	// SASLMechanism is the SASL mechanism: "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"
	SASLMechanism string `yaml:"sasl_mechanism"`
	// SASLUsername is the SASL username
	SASLUsername string `yaml:"sasl_username,omitempty"`
	// SASLPassword is the SASL password
	SASLPassword string `yaml:"sasl_password,omitempty"`
	// BatchSize is the maximum size of a message batch
	BatchSize int `yaml:"batch_size"`
	// LingerMs is the time to wait for the batch to fill
	LingerMs int `yaml:"linger_ms"`
	// Compression is the compression type: "none", "gzip", "snappy", "lz4", "zstd"
	Compression string `yaml:"compression"`
	// RequiredAcks is the number of acknowledgments required: 1 or -1 (all).
	// SetDefaults treats 0 as unset and replaces it with -1.
	RequiredAcks int `yaml:"required_acks"`
	// TLS holds TLS configuration for secure connections
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS configuration for secure connections
type TLSConfig struct {
	// Enabled indicates whether TLS is enabled
	Enabled bool `yaml:"enabled"`
	// CertFile is the path to the client certificate file
	CertFile string `yaml:"cert_file,omitempty"`
	// KeyFile is the path to the client key file
	KeyFile string `yaml:"key_file,omitempty"`
	// CAFile is the path to the CA certificate file
	CAFile string `yaml:"ca_file,omitempty"`
	// InsecureSkipVerify disables server certificate verification
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
	// ServerName is the expected server name for verification
	ServerName string `yaml:"server_name,omitempty"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults sets default values for the configuration
func (c *Config) SetDefaults() {
	// RPC defaults
	if c.RPC.Timeout == 0 {
		c.RPC.Timeout = constants.DefaultQueryTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	// Indexer defaults
	if c.Indexer.Workers == 0 {
		c.Indexer.Workers = constants.DefaultNumWorkers
	}
	if c.Indexer.ChunkSize == 0 {
		c.Indexer.ChunkSize = constants.DefaultMaxPaginationLimit
	}
	if c.Indexer.Confirmations == 0 {
		c.Indexer.Confirmations = constants.DefaultConfirmations
	}
	if c.Indexer.WindowLength == 0 {
		c.Indexer.WindowLength = constants.DefaultWindowLength
	}
	if c.Indexer.MaxAttempts == 0 {
		c.Indexer.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.Indexer.RetryDelay == 0 {
		c.Indexer.RetryDelay = constants.DefaultRetryDelay
	}

	// API defaults
	if c.API.Host == "" {
		c.API.Host = constants.DefaultAPIHost
	}
	if c.API.Port == 0 {
		c.API.Port = constants.DefaultAPIPort
	}
	if c.API.AllowedOrigins == nil {
		c.API.AllowedOrigins = []string{"*"}
	}

	// Validation defaults
	if c.Validation.Timeout == 0 {
		c.Validation.Timeout = 10 * time.Second
	}

	// EventBus defaults
	if c.EventBus.Type == "" {
		c.EventBus.Type = "local"
	}
	if c.EventBus.PublishBufferSize == 0 {
		c.EventBus.PublishBufferSize = 1000
	}
	if c.EventBus.HistorySize == 0 {
		c.EventBus.HistorySize = 100
	}
	// Redis EventBus defaults
	if c.EventBus.Redis.PoolSize == 0 {
		c.EventBus.Redis.PoolSize = 100
	}
	if c.EventBus.Redis.MinIdleConns == 0 {
		c.EventBus.Redis.MinIdleConns = 10
	}
	if c.EventBus.Redis.MaxRetries == 0 {
		c.EventBus.Redis.MaxRetries = 3
	}
	if c.EventBus.Redis.DialTimeout == 0 {
		c.EventBus.Redis.DialTimeout = 5 * time.Second
	}
	if c.EventBus.Redis.ReadTimeout == 0 {
		c.EventBus.Redis.ReadTimeout = 3 * time.Second
	}
	if c.EventBus.Redis.WriteTimeout == 0 {
		c.EventBus.Redis.WriteTimeout = 3 * time.Second
	}
	if c.EventBus.Redis.ChannelPrefix == "" {
		c.EventBus.Redis.ChannelPrefix = "indexer:events"
	}
	// Kafka EventBus defaults
	if c.EventBus.Kafka.Topic == "" {
		c.EventBus.Kafka.Topic = "indexer-events"
	}
	if c.EventBus.Kafka.GroupID == "" {
		c.EventBus.Kafka.GroupID = "indexer-group"
	}
	if c.EventBus.Kafka.SecurityProtocol == "" {
		c.EventBus.Kafka.SecurityProtocol = "PLAINTEXT"
	}
	if c.EventBus.Kafka.BatchSize == 0 {
		c.EventBus.Kafka.BatchSize = 16384
	}
	if c.EventBus.Kafka.LingerMs == 0 {
		c.EventBus.Kafka.LingerMs = 5
	}
	if c.EventBus.Kafka.Compression == "" {
		c.EventBus.Kafka.Compression = "snappy"
	}
	if c.EventBus.Kafka.RequiredAcks == 0 {
		c.EventBus.Kafka.RequiredAcks = -1 // All replicas
	}

}

// LoadFromEnv loads configuration from environment variables
// Environment variables take precedence over file configuration
func (c *Config) LoadFromEnv() error {
	// RPC configuration
	if endpoint := os.Getenv("INDEXER_RPC_ENDPOINT"); endpoint != "" {
		c.RPC.Endpoint = endpoint
	}
	if timeout := os.Getenv("INDEXER_RPC_TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_RPC_TIMEOUT: %w", err)
		}
		c.RPC.Timeout = duration
	}

	// Database configuration
	if path := os.Getenv("INDEXER_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if readonly := os.Getenv("INDEXER_DB_READONLY"); readonly != "" {
		val, err := strconv.ParseBool(readonly)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_DB_READONLY: %w", err)
		}
		c.Database.ReadOnly = val
	}

	// Log configuration
	if level := os.Getenv("INDEXER_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("INDEXER_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}

	// Indexer configuration
	if workers := os.Getenv("INDEXER_WORKERS"); workers != "" {
		val, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_WORKERS: %w", err)
		}
		c.Indexer.Workers = val
	}
	if chunkSize := os.Getenv("INDEXER_CHUNK_SIZE"); chunkSize != "" {
		val, err := strconv.Atoi(chunkSize)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_CHUNK_SIZE: %w", err)
		}
		c.Indexer.ChunkSize = val
	}
	if startHeight := os.Getenv("INDEXER_START_HEIGHT"); startHeight != "" {
		val, err := strconv.ParseUint(startHeight, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_START_HEIGHT: %w", err)
		}
		c.Indexer.OriginBlock = val
	}

	// API configuration
	if enabled := os.Getenv("INDEXER_API_ENABLED"); enabled != "" {
		val, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_API_ENABLED: %w", err)
		}
		c.API.Enabled = val
	}
	if host := os.Getenv("INDEXER_API_HOST"); host != "" {
		c.API.Host = host
	}
	if port := os.Getenv("INDEXER_API_PORT"); port != "" {
		val, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_API_PORT: %w", err)
		}
		c.API.Port = val
	}
	if enableWebSocket := os.Getenv("INDEXER_API_WEBSOCKET"); enableWebSocket != "" {
		val, err := strconv.ParseBool(enableWebSocket)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_API_WEBSOCKET: %w", err)
		}
		c.API.EnableWebSocket = val
	}
	if enableWebSocketKeepAlive := os.Getenv("INDEXER_API_WEBSOCKET_KEEPALIVE"); enableWebSocketKeepAlive != "" {
		val, err := strconv.ParseBool(enableWebSocketKeepAlive)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_API_WEBSOCKET_KEEPALIVE: %w", err)
		}
		c.API.EnableWebSocketKeepAlive = val
	}
	if enableCORS := os.Getenv("INDEXER_API_CORS_ENABLED"); enableCORS != "" {
		val, err := strconv.ParseBool(enableCORS)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_API_CORS_ENABLED: %w", err)
		}
		c.API.EnableCORS = val
	}
	if allowedOrigins := os.Getenv("INDEXER_API_CORS_ALLOWED_ORIGINS"); allowedOrigins != "" {
		origins := make([]string, 0)
		for _, origin := range strings.Split(allowedOrigins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) == 0 {
			origins = []string{"*"}
		}
		c.API.AllowedOrigins = origins
	}

	// EventBus configuration
	if ebType := os.Getenv("INDEXER_EVENTBUS_TYPE"); ebType != "" {
		c.EventBus.Type = ebType
	}
	if bufferSize := os.Getenv("INDEXER_EVENTBUS_PUBLISH_BUFFER_SIZE"); bufferSize != "" {
		val, err := strconv.Atoi(bufferSize)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_EVENTBUS_PUBLISH_BUFFER_SIZE: %w", err)
		}
		c.EventBus.PublishBufferSize = val
	}
	if historySize := os.Getenv("INDEXER_EVENTBUS_HISTORY_SIZE"); historySize != "" {
		val, err := strconv.Atoi(historySize)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_EVENTBUS_HISTORY_SIZE: %w", err)
		}
		c.EventBus.HistorySize = val
	}
	// Redis EventBus configuration
	if redisEnabled := os.Getenv("INDEXER_EVENTBUS_REDIS_ENABLED"); redisEnabled != "" {
		val, err := strconv.ParseBool(redisEnabled)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_EVENTBUS_REDIS_ENABLED: %w", err)
		}
		c.EventBus.Redis.Enabled = val
	}
	if redisAddrs := os.Getenv("INDEXER_EVENTBUS_REDIS_ADDRESSES"); redisAddrs != "" {
		addrs := make([]string, 0)
		for _, addr := range strings.Split(redisAddrs, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				addrs = append(addrs, addr)
			}
		}
		c.EventBus.Redis.Addresses = addrs
	}
	if redisPassword := os.Getenv("INDEXER_EVENTBUS_REDIS_PASSWORD"); redisPassword != "" {
		c.EventBus.Redis.Password = redisPassword
	}
	if redisDB := os.Getenv("INDEXER_EVENTBUS_REDIS_DB"); redisDB != "" {
		val, err := strconv.Atoi(redisDB)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_EVENTBUS_REDIS_DB: %w", err)
		}
		c.EventBus.Redis.DB = val
	}
	if redisCluster := os.Getenv("INDEXER_EVENTBUS_REDIS_CLUSTER_MODE"); redisCluster != "" {
		val, err := strconv.ParseBool(redisCluster)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_EVENTBUS_REDIS_CLUSTER_MODE: %w", err)
		}
		c.EventBus.Redis.ClusterMode = val
	}
	// Kafka EventBus configuration
	if kafkaEnabled := os.Getenv("INDEXER_EVENTBUS_KAFKA_ENABLED"); kafkaEnabled != "" {
		val, err := strconv.ParseBool(kafkaEnabled)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_EVENTBUS_KAFKA_ENABLED: %w", err)
		}
		c.EventBus.Kafka.Enabled = val
	}
	if kafkaBrokers := os.Getenv("INDEXER_EVENTBUS_KAFKA_BROKERS"); kafkaBrokers != "" {
		brokers := make([]string, 0)
		for _, broker := range strings.Split(kafkaBrokers, ",") {
			broker = strings.TrimSpace(broker)
			if broker != "" {
				brokers = append(brokers, broker)
			}
		}
		c.EventBus.Kafka.Brokers = brokers
	}
	if kafkaTopic := os.Getenv("INDEXER_EVENTBUS_KAFKA_TOPIC"); kafkaTopic != "" {
		c.EventBus.Kafka.Topic = kafkaTopic
	}
	if kafkaGroupID := os.Getenv("INDEXER_EVENTBUS_KAFKA_GROUP_ID"); kafkaGroupID != "" {
		c.EventBus.Kafka.GroupID = kafkaGroupID
	}
	if kafkaClientID := os.Getenv("INDEXER_EVENTBUS_KAFKA_CLIENT_ID"); kafkaClientID != "" {
		c.EventBus.Kafka.ClientID = kafkaClientID
	}
	if kafkaSASLUser := os.Getenv("INDEXER_EVENTBUS_KAFKA_SASL_USERNAME"); kafkaSASLUser != "" {
		c.EventBus.Kafka.SASLUsername = kafkaSASLUser
	}
	if kafkaSASLPass := os.Getenv("INDEXER_EVENTBUS_KAFKA_SASL_PASSWORD"); kafkaSASLPass != "" {
		c.EventBus.Kafka.SASLPassword = kafkaSASLPass
	}

	// Contract addresses the Transaction Classifier dispatches logs against
	if addr := os.Getenv("INDEXER_CONTRACTS_MARKETPLACE"); addr != "" {
		c.Contracts.Marketplace = addr
	}
	if addr := os.Getenv("INDEXER_CONTRACTS_AUCTION"); addr != "" {
		c.Contracts.Auction = addr
	}
	if addr := os.Getenv("INDEXER_CONTRACTS_POINTS"); addr != "" {
		c.Contracts.Points = addr
	}
	if addr := os.Getenv("INDEXER_CONTRACTS_BRIDGE"); addr != "" {
		c.Contracts.Bridge = addr
	}

	// Reorg Guard and Coordinator retry configuration
	if originBlock := os.Getenv("INDEXER_ORIGIN_BLOCK"); originBlock != "" {
		val, err := strconv.ParseUint(originBlock, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_ORIGIN_BLOCK: %w", err)
		}
		c.Indexer.OriginBlock = val
	}
	if confirmations := os.Getenv("INDEXER_CONFIRMATIONS"); confirmations != "" {
		val, err := strconv.ParseUint(confirmations, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_CONFIRMATIONS: %w", err)
		}
		c.Indexer.Confirmations = val
	}
	if windowLength := os.Getenv("INDEXER_WINDOW_LENGTH"); windowLength != "" {
		val, err := strconv.ParseUint(windowLength, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_WINDOW_LENGTH: %w", err)
		}
		c.Indexer.WindowLength = val
	}
	if maxAttempts := os.Getenv("INDEXER_MAX_ATTEMPTS"); maxAttempts != "" {
		val, err := strconv.Atoi(maxAttempts)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_MAX_ATTEMPTS: %w", err)
		}
		c.Indexer.MaxAttempts = val
	}
	if retryDelay := os.Getenv("INDEXER_RETRY_DELAY"); retryDelay != "" {
		duration, err := time.ParseDuration(retryDelay)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_RETRY_DELAY: %w", err)
		}
		c.Indexer.RetryDelay = duration
	}

	// Validation (external ethscriptions-provider cross-check)
	if baseURL := os.Getenv("INDEXER_VALIDATION_BASE_URL"); baseURL != "" {
		c.Validation.BaseURL = baseURL
	}
	if timeout := os.Getenv("INDEXER_VALIDATION_TIMEOUT"); timeout != "" {
		duration, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid INDEXER_VALIDATION_TIMEOUT: %w", err)
		}
		c.Validation.Timeout = duration
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate RPC configuration
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("RPC endpoint is required")
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("RPC timeout must be positive")
	}

	// Validate database configuration
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	// Validate log configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Log.Level)
	}

	validLogFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format %q, must be one of: json, console", c.Log.Format)
	}

	// Validate indexer configuration
	if c.Indexer.Workers <= 0 {
		return fmt.Errorf("worker count must be positive")
	}
	if c.Indexer.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.Indexer.WindowLength == 0 {
		return fmt.Errorf("reorg window length must be positive")
	}
	if c.Indexer.Confirmations == 0 || c.Indexer.Confirmations > c.Indexer.WindowLength {
		return fmt.Errorf("confirmations must be positive and no greater than window length")
	}

	// Validate EventBus configuration
	validEventBusTypes := map[string]bool{
		"local":  true,
		"redis":  true,
		"kafka":  true,
		"hybrid": true,
	}
	if !validEventBusTypes[c.EventBus.Type] {
		return fmt.Errorf("invalid eventbus type %q, must be one of: local, redis, kafka, hybrid", c.EventBus.Type)
	}
	if c.EventBus.PublishBufferSize <= 0 {
		return fmt.Errorf("eventbus publish buffer size must be positive")
	}
	if c.EventBus.HistorySize < 0 {
		return fmt.Errorf("eventbus history size cannot be negative")
	}
	// Validate Redis configuration if enabled
	if c.EventBus.Redis.Enabled {
		if len(c.EventBus.Redis.Addresses) == 0 {
			return fmt.Errorf("redis eventbus enabled but no addresses configured")
		}
		if c.EventBus.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis pool size must be positive")
		}
	}
	// Validate Kafka configuration if enabled
	if c.EventBus.Kafka.Enabled {
		if len(c.EventBus.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka eventbus enabled but no brokers configured")
		}
		if c.EventBus.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	return nil
}

// Load is a convenience method that loads configuration in the following order:
// 1. Set defaults
// 2. Load from file (if provided)
// 3. Load from environment variables (override file)
// 4. Validate
func Load(configFile string) (*Config, error) {
	cfg := NewConfig()

	// Load from file if provided
	if configFile != "" {
		if err := cfg.LoadFromFile(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Load from environment variables (override file)
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Set defaults for any missing values
	cfg.SetDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
