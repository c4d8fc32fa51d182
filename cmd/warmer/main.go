package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/shipquote/internal/adapters/distancematrix"
	"github.com/samirrijal/shipquote/internal/adapters/memcache"
	"github.com/samirrijal/shipquote/internal/adapters/postgres"
	"github.com/samirrijal/shipquote/internal/adapters/valkey"
	"github.com/samirrijal/shipquote/internal/core/domain"
	"github.com/samirrijal/shipquote/internal/core/ports"
	"github.com/samirrijal/shipquote/internal/core/usecases"
	"github.com/samirrijal/shipquote/internal/pkg/config"
	"github.com/samirrijal/shipquote/internal/pkg/logging"
	"github.com/samirrijal/shipquote/internal/workflows"
)

func main() {
	trigger := flag.Bool("trigger", false, "start one warm-up run and exit")
	recent := flag.Int("recent", workflows.DefaultWarmupOrders, "number of recent orders to warm")
	flag.Parse()

	cfg, err := config.Load("shipquote-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if *trigger {
		run, err := c.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
			ID:        "warm-recommendations-" + time.Now().UTC().Format("20060102T150405"),
			TaskQueue: cfg.Temporal.TaskQueue,
		}, workflows.WarmRecommendationsWorkflow, workflows.WarmupInput{RecentOrders: *recent})
		if err != nil {
			log.Fatalf("start workflow: %v", err)
		}
		slog.Info("warm-up started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
		return
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Warming only pays off against the shared cache the API reads.
	cache, err := valkey.New(cfg.Cache.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	mode, err := domain.ParseDistanceMode(cfg.Distance.Mode)
	if err != nil {
		log.Fatalf("distance mode: %v", err)
	}
	memo := memcache.NewDistanceMemo(cfg.Cache.DistanceSize, time.Duration(cfg.Cache.DistanceTTL)*time.Second)
	var remote []ports.DistanceStrategy
	if matrix := distancematrix.New(cfg.Distance, slog.Default()); matrix.Configured() {
		remote = append(remote, usecases.NewRemoteStrategy(matrix, time.Duration(cfg.Distance.TimeoutMS)*time.Millisecond))
	}
	engine := usecases.NewDistanceEngine(memo, remote...)

	orders := postgres.NewOrderRepo(db)
	simulator := usecases.NewSimulator(engine, usecases.NewInventoryChecker(postgres.NewInventoryRepo(db)), mode)
	recommendations := usecases.NewRecommendationService(orders, postgres.NewWarehouseRepo(db), simulator, cache, nil, nil)
	recommendations.SetResultTTL(cfg.Cache.ResultTTL)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.WarmRecommendationsWorkflow)
	w.RegisterActivity(&workflows.RecommendationActivities{
		Orders:      orders,
		Recommender: recommendations,
	})

	slog.Info("warmer worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
