// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Akshat090803/ecommerce-final-project/internal/config"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/cart"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/catalog"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/checkout"
	"github.com/Akshat090803/ecommerce-final-project/internal/domain/order"
	"github.com/Akshat090803/ecommerce-final-project/internal/infrastructure/database/postgres"
	"github.com/Akshat090803/ecommerce-final-project/internal/infrastructure/database/redis"
	"github.com/Akshat090803/ecommerce-final-project/internal/infrastructure/messaging/rabbitmq"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http/handlers"
	"github.com/Akshat090803/ecommerce-final-project/internal/interfaces/http/routes"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/auth"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/logger"
	"github.com/Akshat090803/ecommerce-final-project/internal/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := postgres.NewConnection(cfg, logger.Component(log, "postgres"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, logger.Component(log, "redis"))
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), logger.Component(log, "migration"))
	if err := migration.RunAutoMigrations(ctx); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	migration.CreateIndexes(ctx)

	// Seed the sample catalog in development
	if cfg.IsDevelopment() {
		if err := migration.SeedDevelopmentData(ctx); err != nil {
			log.WithError(err).Warn("Data seeding failed")
		}
		if _, err := migration.TableInfo(ctx); err != nil {
			log.WithError(err).Warn("Failed to read table info")
		}
	}

	m := metrics.New()

	catalogReader := catalog.NewCachedReader(
		catalog.NewRepository(db.GetDB()),
		redisClient.GetClient(),
		cfg.Catalog.CacheTTL,
		logger.Component(log, "catalog"),
	)
	orderStore := order.NewGormStore(db.GetDB())

	checkoutService := checkout.NewService(orderStore, cfg.Checkout.AtomicOrders, m, logger.Component(log, "checkout"))
	if cfg.RabbitMQ.URL != "" {
		publisher, closePublisher, err := newPublisher(cfg)
		if err != nil {
			log.WithError(err).Warn("Order notifications disabled")
		} else {
			defer closePublisher()
			checkoutService.SetNotifier(publisher)
			log.WithField("queue", cfg.RabbitMQ.Queue).Info("✅ Order notifications enabled")
		}
	}

	server := http.NewServer(cfg, http.Options{
		Routes: routes.Dependencies{
			Catalog:      catalogReader,
			Orders:       orderStore,
			Checkout:     checkoutService,
			CartSessions: handlers.NewCartSessions(cart.NewRedisPersister(redisClient.GetClient(), cfg.Cart.SessionTTL), cfg, logger.Component(log, "cart")),
			JWT:          auth.NewJWTManager(cfg),
			Logger:       logger.Component(log, "http"),
		},
		Database:    db,
		Cache:       redisClient,
		RedisClient: redisClient.GetClient(),
		Metrics:     m,
	}, logger.Component(log, "http"))

	log.Info("✅ All systems operational!")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	if cfg.Reconcile.Enabled {
		reconciler := order.NewReconciler(orderStore, cfg.Reconcile.Interval, cfg.Reconcile.GracePeriod, m, logger.Component(log, "reconciler"))
		g.Go(func() error {
			reconciler.Run(gctx)
			return nil
		})
	}

	// Wait for interrupt signal or a failed component, then shut down
	g.Go(func() error {
		<-gctx.Done()
		log.Info("👋 Shutting down gracefully...")

		// Give server 30 seconds to shutdown gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Server stopped with error")
		return
	}

	log.Info("✅ Server shutdown completed")
}

func newPublisher(cfg *config.Config) (*rabbitmq.Publisher, func(), error) {
	conn, err := rabbitmq.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, nil, err
	}

	publisher, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQ.Queue)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return publisher, func() {
		_ = publisher.Close()
		_ = conn.Close()
	}, nil
}
