package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/ecommerce-api/internal/auth"
	authsqlite "github.com/jcmexdev/ecommerce-api/internal/auth/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/cart"
	cartsqlite "github.com/jcmexdev/ecommerce-api/internal/cart/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/catalog"
	catsqlite "github.com/jcmexdev/ecommerce-api/internal/catalog/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/config"
	"github.com/jcmexdev/ecommerce-api/internal/events"
	"github.com/jcmexdev/ecommerce-api/internal/httpx"
	"github.com/jcmexdev/ecommerce-api/internal/order"
	plsqlite "github.com/jcmexdev/ecommerce-api/internal/order/placementlog/sqlite"
	ordersqlite "github.com/jcmexdev/ecommerce-api/internal/order/sqlite"
	appcache "github.com/jcmexdev/ecommerce-api/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/metrics"
	"github.com/jcmexdev/ecommerce-api/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-api/internal/storage/sqlite"
	"github.com/jcmexdev/ecommerce-api/internal/user"
	usersqlite "github.com/jcmexdev/ecommerce-api/internal/user/sqlite"
)

const serviceName = "ecommerce-api"

func main() {
	telemetry.InitLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := telemetry.SetupTracer(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			slog.Error("failed to set up tracer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Error("tracer shutdown", "error", err)
			}
		}()
	}

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var productCache appcache.Cache
	if cfg.RedisAddr != "" {
		productCache = appcache.NewRedisCache(cfg.RedisAddr, serviceName)
		slog.Info("catalog cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	catSvc := catalog.NewService(catsqlite.NewRepository(db), productCache, cfg.CacheTTL)
	cartSvc := cart.NewService(cartsqlite.NewRepository(db), catSvc)
	orderSvc := order.NewService(ordersqlite.NewRepository(db), catSvc, cartSvc, plsqlite.NewRepository(db))
	profileSvc := user.NewService(usersqlite.NewRepository(db))
	authSvc := auth.NewService(authsqlite.NewRepository(db))

	kafkaClient := events.NewClient(cfg.KafkaBrokers)
	if kafkaClient.Enabled() {
		relay := events.NewRelay(events.NewOutbox(db), kafkaClient.NewWriter(events.TopicOrders), cfg.OutboxInterval)
		go relay.Run(ctx)
		slog.Info("outbox relay started", "brokers", cfg.KafkaBrokers, "topic", events.TopicOrders)
	}

	m := metrics.NewServerMetrics(serviceName)
	h := httpx.NewHandler(catSvc, cartSvc, orderSvc, profileSvc, m)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpx.NewRouter(h, authSvc, m),
	}

	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
