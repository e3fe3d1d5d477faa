package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app_service "wallet-activity-analyzer/internal/application/service"
	"wallet-activity-analyzer/internal/domain/entity"
	"wallet-activity-analyzer/internal/domain/repository"
	domain_service "wallet-activity-analyzer/internal/domain/service"
	"wallet-activity-analyzer/internal/infrastructure/blockchain"
	"wallet-activity-analyzer/internal/infrastructure/config"
	"wallet-activity-analyzer/internal/infrastructure/database"
	"wallet-activity-analyzer/internal/infrastructure/logger"
	"wallet-activity-analyzer/internal/infrastructure/messaging"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.NATS),
		fx.Supply(&cfg.Neo4J),
		fx.Supply(&cfg.Alchemy),
		fx.Supply(&cfg.Analytics),
		fx.Provide(func() *zap.Logger { return log.Logger }),

		// Infrastructure providers
		fx.Provide(
			database.NewNeo4JClient,
			func(client *database.Neo4JClient, cfg *config.Config, log *logger.Logger) repository.SnapshotRepository {
				if !cfg.Neo4J.Enabled {
					return nil
				}
				return database.NewNeo4JSnapshotRepository(client, log)
			},
			func(cfg *config.Config, log *logger.Logger) repository.WalletDataProvider {
				if !cfg.Alchemy.Enabled || cfg.Alchemy.APIKey == "" {
					return nil
				}
				return blockchain.NewAlchemyClient(&cfg.Alchemy, log)
			},
			messaging.NewNATSConsumer,
			messaging.NewNATSPublisher,
		),

		// Application providers
		fx.Provide(
			app_service.NewAnalyticsApplicationService,
			app_service.NewSnapshotCollectionService,
		),

		// Lifecycle hooks
		fx.Invoke(startAnalyzer),
		fx.Invoke(startHealthServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	// Stop the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// startAnalyzer wires the snapshot sources to the analytics pipeline
func startAnalyzer(
	lifecycle fx.Lifecycle,
	consumer *messaging.NATSConsumer,
	publisher *messaging.NATSPublisher,
	analytics domain_service.AnalyticsService,
	collector *app_service.SnapshotCollectionService,
	snapshotRepo repository.SnapshotRepository,
	log *zap.Logger,
	cfg *config.Config,
	neo4jClient *database.Neo4JClient,
) {
	// The pipeline goroutines outlive OnStart, so they run on their own
	// context cancelled from OnStop rather than the hook context.
	runCtx, stop := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting analytics service...")

			if cfg.Neo4J.Enabled {
				log.Info("Connecting to Neo4J wallet graph")
				if err := neo4jClient.Connect(ctx); err != nil {
					return fmt.Errorf("failed to connect to Neo4J: %w", err)
				}
			}

			if err := consumer.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect snapshot consumer: %w", err)
			}
			if err := publisher.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect result publisher: %w", err)
			}

			// One bootstrap run over the already-indexed wallets, when a
			// snapshot source is available.
			if snapshotRepo != nil {
				go bootstrapAnalysis(runCtx, collector, analytics, publisher, snapshotRepo, log, cfg)
			}

			// Continuous batch processing of incoming snapshot events.
			go processSnapshots(runCtx, consumer.GetMessageChannel(), analytics, publisher, log, cfg)

			log.Info("Analytics service started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping analytics service...")
			stop()
			if cfg.Neo4J.Enabled {
				if err := neo4jClient.Close(ctx); err != nil {
					log.Error("Failed to close Neo4J connection", zap.Error(err))
				}
			}
			if err := publisher.Disconnect(); err != nil {
				log.Error("Failed to disconnect publisher", zap.Error(err))
			}
			return consumer.Disconnect()
		},
	})
}

// bootstrapAnalysis analyzes the wallets already present in the graph once
// at startup.
func bootstrapAnalysis(
	ctx context.Context,
	collector *app_service.SnapshotCollectionService,
	analytics domain_service.AnalyticsService,
	publisher *messaging.NATSPublisher,
	snapshotRepo repository.SnapshotRepository,
	log *zap.Logger,
	cfg *config.Config,
) {
	addresses, err := snapshotRepo.ListTrackedAddresses(ctx, cfg.App.BatchSize)
	if err != nil {
		log.Error("Failed to list tracked addresses", zap.Error(err))
		return
	}
	if len(addresses) == 0 {
		log.Info("No tracked wallets found, skipping bootstrap analysis")
		return
	}

	batch, err := collector.CollectBatch(ctx, addresses)
	if err != nil {
		log.Error("Failed to collect bootstrap batch", zap.Error(err))
		return
	}

	payload, err := analytics.Analyze(ctx, batch, time.Now().UTC())
	if err != nil {
		log.Error("Bootstrap analysis failed", zap.Error(err))
		return
	}
	if err := publisher.PublishAnalytics(ctx, payload); err != nil {
		log.Error("Failed to publish bootstrap analytics", zap.Error(err))
	}
}

// processSnapshots batches incoming snapshot events and runs the full
// analysis over each batch. The batch is flushed when full or when the batch
// window elapses, whichever comes first.
func processSnapshots(
	ctx context.Context,
	msgChan <-chan *entity.WalletSnapshot,
	analytics domain_service.AnalyticsService,
	publisher *messaging.NATSPublisher,
	log *zap.Logger,
	cfg *config.Config,
) {
	batch := make([]*entity.WalletSnapshot, 0, cfg.App.BatchSize)
	ticker := time.NewTicker(cfg.App.BatchWindow)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		snapshots := make([]*entity.WalletSnapshot, len(batch))
		copy(snapshots, batch)
		batch = batch[:0]

		payload, err := analytics.Analyze(ctx, snapshots, time.Now().UTC())
		if err != nil {
			log.Error("Failed to analyze snapshot batch",
				zap.Error(err),
				zap.Int("batch_size", len(snapshots)))
			return
		}
		if err := publisher.PublishAnalytics(ctx, payload); err != nil {
			log.Error("Failed to publish analytics", zap.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case snapshot := <-msgChan:
			if snapshot == nil {
				// Channel closed
				flush()
				return
			}
			batch = append(batch, snapshot)
			if len(batch) >= cfg.App.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// startHealthServer starts the health check server
func startHealthServer(
	lifecycle fx.Lifecycle,
	cfg *config.Config,
	logger *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting health server...", zap.Int("port", cfg.App.HTTPPort))

			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ok"}`))
			})

			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", cfg.App.HTTPPort),
				Handler: mux,
			}

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Health server error", zap.Error(err))
				}
			}()

			logger.Info("Health server started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping health server...")
			return nil
		},
	})
}
