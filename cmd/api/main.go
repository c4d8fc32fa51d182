package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/shipquote/internal/adapters/distancematrix"
	"github.com/samirrijal/shipquote/internal/adapters/http"
	"github.com/samirrijal/shipquote/internal/adapters/memcache"
	natsadapter "github.com/samirrijal/shipquote/internal/adapters/nats"
	"github.com/samirrijal/shipquote/internal/adapters/postgres"
	"github.com/samirrijal/shipquote/internal/adapters/redis"
	"github.com/samirrijal/shipquote/internal/adapters/valkey"
	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/core/usecases"
	"github.com/samirrijal/shipquote/internal/pkg/config"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
	"github.com/samirrijal/shipquote/internal/pkg/metrics"
	"github.com/samirrijal/shipquote/internal/pkg/telemetry"
)

// resultCache is what the services and the readiness probe need from a cache backend.
type resultCache interface {
	ports.CacheService
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load("shipquote-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Result cache
	cache, closeCache := openCache(ctx, cfg.Cache)
	defer closeCache()

	// Distance engine: in-process memo, optional remote matrix provider, Haversine fallback
	memo := memcache.NewDistanceMemo(cfg.Cache.DistanceSize, time.Duration(cfg.Cache.DistanceTTL)*time.Second)
	matrix := distancematrix.New(cfg.Distance, slog.Default())
	var remote []ports.DistanceStrategy
	if matrix.Configured() {
		remote = append(remote, usecases.NewRemoteStrategy(matrix, time.Duration(cfg.Distance.TimeoutMS)*time.Millisecond))
	} else {
		slog.Info("distance provider not configured, using haversine only")
	}
	engine := usecases.NewDistanceEngine(memo, remote...)

	distanceMode, err := domain.ParseDistanceMode(cfg.Distance.Mode)
	if err != nil {
		log.Fatalf("distance mode: %v", err)
	}

	// NATS
	var publisher ports.EventPublisher
	var orderEvents http.OrderEventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		orderEvents = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Repos
	orderRepo := postgres.NewOrderRepo(db)
	warehouseRepo := postgres.NewWarehouseRepo(db)
	productRepo := postgres.NewProductRepo(db)
	sellerRepo := postgres.NewSellerRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	inventoryRepo := postgres.NewInventoryRepo(db)

	// Use cases
	recorder := metrics.NewShippingRecorder()
	simulator := usecases.NewSimulator(engine, usecases.NewInventoryChecker(inventoryRepo), distanceMode)
	recommendationSvc := usecases.NewRecommendationService(orderRepo, warehouseRepo, simulator, cache, publisher, recorder)
	recommendationSvc.SetResultTTL(cfg.Cache.ResultTTL)
	warehouseSvc := usecases.NewWarehouseService(warehouseRepo, sellerRepo, productRepo, cache)
	chargeSvc := usecases.NewShippingChargeService(warehouseSvc, customerRepo, productRepo, engine, cache, recorder)
	orderShippingSvc := usecases.NewOrderShippingService(orderRepo, productRepo, warehouseSvc, engine, cache, recorder)
	simulationSvc := usecases.NewSimulationService(orderRepo, productRepo, warehouseSvc, engine)

	// Order updates from other services drop stale recommendations.
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("order update subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		if err := sub.SubscribeOrderUpdates(ctx, recommendationSvc.Invalidate); err != nil {
			slog.Warn("subscribe order updates failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Distance:        engine,
		DistanceMode:    string(distanceMode),
		Recommendations: recommendationSvc,
		Simulations:     simulationSvc,
		Warehouses:      warehouseSvc,
		Charges:         chargeSvc,
		OrderShipping:   orderShippingSvc,
		Recorder:        recorder,
		OrderEvents:     orderEvents,
		NATS:            natsConn,
		DB:              db,
		Cache:           cache,
		RateLimit:       cfg.Server.RateLimit,
	}
	if matrix.Configured() {
		deps.RemoteDistance = matrix
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Shipquote API",
	})

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "distance_mode", distanceMode, "cache", cfg.Cache.Driver)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// openCache connects the configured result cache. A remote backend that cannot
// be reached degrades to the in-process cache.
func openCache(ctx context.Context, cfg config.CacheConfig) (resultCache, func()) {
	memory := func() (resultCache, func()) {
		return memcache.NewCache(cfg.DistanceSize*4, time.Duration(cfg.ResultTTL)*time.Second), func() {}
	}

	switch strings.ToLower(cfg.Driver) {
	case "valkey":
		c, err := valkey.New(cfg.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, using in-process cache", "error", err)
			return memory()
		}
		return c, c.Close
	case "redis":
		c, err := redis.New(ctx, cfg.Addr)
		if err != nil {
			slog.Warn("redis unavailable, using in-process cache", "error", err)
			return memory()
		}
		return c, c.Close
	default:
		return memory()
	}
}
