package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/db"
	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/metrics"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/search"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
)

// app holds the long-lived dependencies shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *gorm.DB
	repo    *repo.GormRepo
	events  events.Publisher
	search  search.Searcher
	elastic *search.ElasticSearcher
	metrics *metrics.Metrics

	auth    *service.AuthService
	catalog *service.CatalogService
	cart    *service.CartService
	orders  *service.OrderService
	admin   *service.AdminService
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(openCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      gdb,
		repo:    &repo.GormRepo{DB: gdb},
		metrics: metrics.New(cfg.ServiceName),
		events:  events.Nop{},
	}

	if len(cfg.KafkaBrokers) > 0 {
		a.events = events.NewKafkaPublisher(cfg.KafkaBrokers)
		logger.Info("events_kafka_enabled", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS not set")
	}

	dbSearch := &search.DBSearcher{Repo: a.repo}
	a.search = dbSearch
	if cfg.ESURL != "" {
		esCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := search.NewClient(esCtx, cfg)
		cancel()
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "url", cfg.ESURL, "error", err)
		} else {
			a.elastic = &search.ElasticSearcher{Client: client, IndexName: cfg.ESIndex, Repo: a.repo, Fallback: dbSearch}
			a.search = a.elastic
			logger.Info("elasticsearch_enabled", "url", cfg.ESURL, "index", cfg.ESIndex)
		}
	}

	a.auth = &service.AuthService{
		Repo:        a.repo,
		Events:      a.events,
		Metrics:     a.metrics,
		Secret:      cfg.SessionSecret,
		IdleTimeout: cfg.SessionIdleTimeout,
		MaxAge:      cfg.SessionMaxAge,
	}
	a.catalog = &service.CatalogService{Repo: a.repo, Searcher: a.search, Events: a.events}
	a.cart = &service.CartService{Repo: a.repo, Events: a.events, Metrics: a.metrics}
	a.orders = &service.OrderService{Repo: a.repo, Events: a.events, Metrics: a.metrics}
	a.admin = &service.AdminService{Repo: a.repo}

	return a, nil
}

func (a *app) close() {
	if err := a.events.Close(); err != nil {
		a.logger.Warn("events_close_failed", "error", err)
	}
	if err := db.Close(a.db); err != nil {
		a.logger.Warn("db_close_failed", "error", err)
	}
}
