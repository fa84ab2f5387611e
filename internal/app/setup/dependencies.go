package setup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-dish-request-service/internal/config"
	"github.com/LavaJover/shvark-dish-request-service/internal/domain"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/dynamostore"
	publisher "github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/memory"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-dish-request-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

type Dependencies struct {
	Config       *config.DishConfig
	Logger       *slog.Logger
	DB           *gorm.DB
	Registry     *prometheus.Registry
	Metrics      *metrics.OfferMetrics
	Publisher    domain.OfferEventPublisher
	Repositories *Repositories

	closers []func() error
}

type Repositories struct {
	RequestRepo domain.DishRequestRepository
	OfferRepo   domain.OfferRepository
	HistoryRepo domain.OfferHistoryRepository
}

func InitializeDependencies(ctx context.Context, cfg *config.DishConfig, log *slog.Logger) (*Dependencies, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:   cfg,
		Logger:   log,
		Registry: registry,
		Metrics:  metrics.NewOfferMetrics(registry),
	}

	repos, err := deps.initRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("repositories: %w", err)
	}
	deps.Repositories = repos

	var publishers fanoutPublisher
	if cfg.KafkaService.Enabled {
		offerPublisher, err := initOfferPublisher(cfg, log)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("offer publisher: %w", err)
		}
		publishers = append(publishers, offerPublisher)
		deps.closers = append(deps.closers, offerPublisher.Close)
	}
	if cfg.Notification.WebhookURL != "" {
		publishers = append(publishers, notifier.NewWebhookNotifier(
			cfg.Notification.WebhookURL,
			cfg.Notification.WebhookSecret,
			cfg.Notification.WebhookTimeout,
			log,
		))
	}
	switch len(publishers) {
	case 0:
	case 1:
		deps.Publisher = publishers[0]
	default:
		deps.Publisher = publishers
	}

	return deps, nil
}

func (d *Dependencies) initRepositories(ctx context.Context) (*Repositories, error) {
	cfg := d.Config
	switch cfg.Storage.Driver {
	case DriverPostgres, "":
		db := postgres.MustInitDB(cfg)
		if cfg.Storage.MigrationsPath != "" {
			if err := migrate.RunMigrations(db, cfg.Storage.MigrationsPath, d.Logger); err != nil {
				return nil, err
			}
		}
		if sqlDB, err := db.DB(); err == nil {
			d.closers = append(d.closers, sqlDB.Close)
		}
		d.DB = db
		return &Repositories{
			RequestRepo: repository.NewDefaultDishRequestRepository(db),
			OfferRepo:   repository.NewDefaultOfferRepository(db),
			HistoryRepo: logger.NewPGOfferEventLogger(db),
		}, nil

	case DriverDynamoDB:
		client, err := dynamostore.NewClient(ctx, cfg.Storage.DynamoDB)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			RequestRepo: dynamostore.NewDishRequestRepository(client, cfg.Storage.DynamoDB.RequestsTable),
			OfferRepo:   dynamostore.NewOfferRepository(client, cfg.Storage.DynamoDB.OffersTable),
			HistoryRepo: dynamostore.NewOfferHistoryRepository(client, cfg.Storage.DynamoDB.HistoryTable),
		}, nil

	case DriverMemory:
		d.Logger.Warn("using in-memory storage; data is lost on restart")
		return &Repositories{
			RequestRepo: memory.NewDishRequestRepository(),
			OfferRepo:   memory.NewOfferRepository(),
			HistoryRepo: memory.NewOfferHistoryRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func initOfferPublisher(cfg *config.DishConfig, log *slog.Logger) (*publisher.KafkaPublisher, error) {
	kafkaConfig := publisher.KafkaConfig{
		Brokers:    []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)},
		Topic:      cfg.KafkaService.Topic,
		Username:   cfg.KafkaService.Username,
		Password:   cfg.KafkaService.Password,
		Mechanism:  cfg.KafkaService.Mechanism,
		TLSEnabled: cfg.KafkaService.TLSEnabled,
	}
	return publisher.NewKafkaPublisher(kafkaConfig, log)
}

// Close releases the publisher and the database pool.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
