package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/0xmhha/indexer-go/api"
	"github.com/0xmhha/indexer-go/classify"
	"github.com/0xmhha/indexer-go/client"
	"github.com/0xmhha/indexer-go/coordinator"
	"github.com/0xmhha/indexer-go/events"
	"github.com/0xmhha/indexer-go/eventbus"
	"github.com/0xmhha/indexer-go/internal/config"
	"github.com/0xmhha/indexer-go/internal/logger"
	"github.com/0xmhha/indexer-go/ownership"
	"github.com/0xmhha/indexer-go/queue"
	"github.com/0xmhha/indexer-go/reorg"
	"github.com/0xmhha/indexer-go/storage"
	"github.com/0xmhha/indexer-go/writers"
	"github.com/joho/godotenv"
)

var (
	// Version information (injected at build time)
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	// Define command-line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file (YAML)")
		showVersion = flag.Bool("version", false, "Show version information and exit")
		rpcEndpoint = flag.String("rpc", "", "Ethereum RPC endpoint URL")
		dbPath      = flag.String("db", "", "Database path")
		originBlock = flag.Uint64("origin-block", 0, "Block height to backfill from when storage has no checkpoint")
		workers     = flag.Int("workers", 100, "Worker count (validated and logged; blocks are processed one at a time by a single worker)")
		batchSize   = flag.Int("batch-size", 100, "Chunk size (validated and logged; blocks are not fetched in batches)")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		logFormat   = flag.String("log-format", "", "Log format (json, console)")

		// API server flags
		enableAPI       = flag.Bool("api", false, "Enable API server")
		apiHost         = flag.String("api-host", "", "API server host")
		apiPort         = flag.Int("api-port", 0, "API server port")
		enableWebSocket = flag.Bool("websocket", false, "Enable WebSocket API")
	)

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		fmt.Printf("indexer-go version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override config with command-line flags
	applyFlags(cfg, *rpcEndpoint, *dbPath, *originBlock, *workers, *batchSize, *logLevel, *logFormat)
	applyAPIFlags(cfg, *enableAPI, *apiHost, *apiPort, *enableWebSocket)

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := initLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Log startup information
	log.Info("Starting indexer",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_time", buildTime),
		zap.String("rpc_endpoint", cfg.RPC.Endpoint),
		zap.String("db_path", cfg.Database.Path),
		zap.Uint64("origin_block", cfg.Indexer.OriginBlock),
		zap.Int("workers", cfg.Indexer.Workers),
		zap.Int("batch_size", cfg.Indexer.ChunkSize),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize components
	log.Info("Initializing components...")

	// Initialize Ethereum client
	ethClient, err := client.NewClient(&client.Config{
		Endpoint: cfg.RPC.Endpoint,
		Timeout:  cfg.RPC.Timeout,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to create Ethereum client", zap.Error(err))
	}
	defer ethClient.Close()

	log.Info("Connected to Ethereum node",
		zap.String("endpoint", cfg.RPC.Endpoint),
	)

	// Test connection
	chainID, err := ethClient.GetChainID(ctx)
	if err != nil {
		log.Fatal("Failed to get chain ID", zap.Error(err))
	}
	log.Info("Connected to chain",
		zap.String("chain_id", chainID.String()),
	)

	// Initialize storage
	storageConfig := storage.DefaultConfig(cfg.Database.Path)
	storageConfig.ReadOnly = false
	store, err := storage.NewPebbleStorage(storageConfig, log)
	if err != nil {
		log.Fatal("Failed to create storage", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close storage", zap.Error(err))
		}
	}()

	log.Info("Storage initialized",
		zap.String("path", cfg.Database.Path),
	)

	// Get latest checkpointed block
	lastBlock, err := store.GetLastBlock(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("No blocks indexed yet, backfilling from origin block",
				zap.Uint64("origin_block", cfg.Indexer.OriginBlock),
			)
		} else {
			log.Warn("Failed to get last checkpointed block",
				zap.Error(err),
			)
		}
	} else {
		log.Info("Resuming after last checkpointed block",
			zap.Uint64("last_block", lastBlock),
		)
	}

	// Initialize EventBus
	eventBus := events.NewEventBus(1000, 100)
	go eventBus.Run()
	defer eventBus.Stop()

	log.Info("EventBus initialized",
		zap.Int("publish_buffer", 1000),
		zap.Int("subscribe_buffer", 100),
	)

	// Initialize the external event publisher (Redis/Kafka/no-op per
	// cfg.EventBus.Type) and forward every in-process event to it.
	nodeID := uuid.NewString()
	publisher, err := eventbus.New(ctx, cfg.EventBus, nodeID, log)
	if err != nil {
		log.Fatal("Failed to initialize external event bus", zap.Error(err))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close external event bus", zap.Error(err))
		}
	}()

	if externalSub := eventBus.Subscribe("external-publisher", events.AllEventTypes(), nil, 256); externalSub != nil {
		go func() {
			for event := range externalSub.Channel {
				domainEvent, ok := event.(*events.DomainEvent)
				if !ok {
					continue
				}
				publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := publisher.Publish(publishCtx, domainEvent); err != nil {
					log.Warn("Failed to publish event externally", zap.Error(err))
				}
				cancel()
			}
		}()
	}

	// Initialize the Reorg Guard, ownership state machine, and derived-state
	// writers that sit between the chain client and storage.
	guard := reorg.New(store, log)
	machine := ownership.New(store, log)
	marketplace := writers.NewMarketplace(store, log)
	auction := writers.NewAuction(store, machine, log)
	points := writers.NewPoints(store, ethClient, common.HexToAddress(cfg.Contracts.Points), log)
	bridge := writers.NewBridge(store, nil, log)

	// Initialize the hashId validator used for batch transfers. An empty
	// base URL is passed through as is; validation calls then fail.
	validator := client.NewValidator(client.ValidateConfig{
		BaseURL: cfg.Validation.BaseURL,
		Timeout: cfg.Validation.Timeout,
	}, log)

	blockQueue := queue.New()
	metrics := coordinator.NewMetrics(prometheus.DefaultRegisterer)

	coord := coordinator.New(
		ethClient,
		validator,
		store,
		blockQueue,
		guard,
		machine,
		marketplace,
		auction,
		points,
		bridge,
		eventBus,
		metrics,
		log,
		coordinator.Config{
			OriginBlock: cfg.Indexer.OriginBlock,
			Addresses: classify.Addresses{
				Marketplace: common.HexToAddress(cfg.Contracts.Marketplace),
				Auction:     common.HexToAddress(cfg.Contracts.Auction),
				Points:      common.HexToAddress(cfg.Contracts.Points),
				Bridge:      common.HexToAddress(cfg.Contracts.Bridge),
			},
			MaxAttempts: cfg.Indexer.MaxAttempts,
			RetryDelay:  cfg.Indexer.RetryDelay,
		},
	)

	log.Info("Coordinator initialized, starting indexing...")

	// Initialize and start API server if enabled
	var apiServer *api.Server
	if cfg.API.Enabled {
		log.Info("Initializing API server...")

		apiConfig := &api.Config{
			Host:            cfg.API.Host,
			Port:            cfg.API.Port,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			EnableCORS:      cfg.API.EnableCORS,
			AllowedOrigins:  cfg.API.AllowedOrigins,
			MaxHeaderBytes:  1 << 20, // 1 MB
			EnableWebSocket: cfg.API.EnableWebSocket,
			WebSocketPath:   "/ws",
			ShutdownTimeout: 30 * time.Second,
		}

		var err error
		apiServer, err = api.NewServer(apiConfig, log, store)
		if err != nil {
			log.Fatal("Failed to create API server", zap.Error(err))
		}
		apiServer.SetEventBus(eventBus)

		// Start API server in goroutine
		go func() {
			if err := apiServer.Start(); err != nil {
				log.Error("API server failed", zap.Error(err))
			}
		}()

		log.Info("API server started",
			zap.String("address", apiConfig.Address()),
			zap.Bool("websocket", apiConfig.EnableWebSocket),
		)
	}

	// Start the coordinator in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- coord.Run(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel() // Cancel context to stop the coordinator
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Coordinator stopped with error", zap.Error(err))
		}
	}

	// Wait a bit for graceful shutdown
	log.Info("Shutting down gracefully...")

	// Stop API server if it was started
	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop API server gracefully", zap.Error(err))
		}
	}

	time.Sleep(time.Second * 2)

	// Get final statistics
	finalBlock, err := store.GetLastBlock(ctx)
	if err == nil {
		log.Info("Final statistics",
			zap.Uint64("last_block", finalBlock),
		)
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Warn("Failed to read final checkpointed block",
			zap.Error(err),
		)
	}

	log.Info("Indexer stopped")
}

// loadConfig loads configuration from file and environment variables
func loadConfig(configFile string) (*config.Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads environment variables from a .env file if it exists.
func loadDotEnv() error {
	info, err := os.Stat(".env")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat .env: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf(".env exists but is a directory")
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// applyFlags applies command-line flags to configuration
func applyFlags(cfg *config.Config, rpcEndpoint, dbPath string, originBlock uint64, workers, batchSize int, logLevel, logFormat string) {
	if rpcEndpoint != "" {
		cfg.RPC.Endpoint = rpcEndpoint
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if originBlock > 0 {
		cfg.Indexer.OriginBlock = originBlock
	}
	if workers > 0 {
		cfg.Indexer.Workers = workers
	}
	if batchSize > 0 {
		cfg.Indexer.ChunkSize = batchSize
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
}

// applyAPIFlags applies API-related command-line flags to configuration
func applyAPIFlags(cfg *config.Config, enableAPI bool, apiHost string, apiPort int, enableWebSocket bool) {
	if enableAPI {
		cfg.API.Enabled = true
	}
	if apiHost != "" {
		cfg.API.Host = apiHost
	}
	if apiPort > 0 {
		cfg.API.Port = apiPort
	}
	if enableWebSocket {
		cfg.API.EnableWebSocket = true
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *config.Config) error {
	if cfg.RPC.Endpoint == "" {
		return fmt.Errorf("RPC endpoint is required (use --rpc or set INDEXER_RPC_ENDPOINT)")
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required (use --db or set INDEXER_DATABASE_PATH)")
	}
	if cfg.Indexer.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if cfg.Indexer.ChunkSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	return nil
}

// initLogger initializes the logger based on configuration
func initLogger(level, format string) (*zap.Logger, error) {
	if format == "json" || format == "production" {
		return logger.NewProduction()
	}

	// Default to development logger
	cfg := logger.Config{
		Level:       level,
		Encoding:    "console",
		Development: true,
	}
	return logger.NewWithConfig(&cfg)
}
