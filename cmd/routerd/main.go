// Command routerd loads a token graph and runs a handful of route
// queries against it, printing each RouteResult as JSON. It wires the
// full ambient and domain stack (config, logging, metrics, tracing,
// caching, rate limiting, audit) but performs no HTTP or RPC request
// framing of its own; it is a demonstration harness, not a server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"tokenroute/internal/graph"
	"tokenroute/pkg/audit"
	"tokenroute/pkg/cache"
	"tokenroute/pkg/config"
	"tokenroute/pkg/database"
	"tokenroute/pkg/logger"
	"tokenroute/pkg/metrics"
	"tokenroute/pkg/ratelimit"
	"tokenroute/pkg/telemetry"
	"tokenroute/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "routerd: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)

	ctx := context.Background()

	tracing, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracing", "error", err)
	}
	defer func() { _ = tracing.Shutdown(ctx) }()

	auditLogger := mustBuildAuditLogger(ctx, cfg)
	defer func() { _ = auditLogger.Close() }()

	routeCache := mustBuildRouteCache(cfg)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(&ratelimit.Config{
			Requests:        cfg.RateLimit.Requests,
			Window:          cfg.RateLimit.Window,
			BurstSize:       cfg.RateLimit.BurstSize,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		})
		defer func() { _ = limiter.Close() }()
	}

	service := router.New(router.Options{
		Cache:   routeCache,
		Limiter: limiter,
		Audit:   auditLogger,
		Metrics: m,
	})

	g := sampleGraph()
	weth := graph.NewTokenKey("WETH", "eth")
	usdcArb := graph.NewTokenKey("USDC", "arb")

	logger.Log.Info("routerd starting", "version", cfg.App.Version, "environment", cfg.App.Environment)

	runSolve(ctx, service, g, router.Query{
		Source: weth, Target: usdcArb, Algorithm: router.AlgorithmClassical,
		MaxHops: cfg.Solver.DefaultMaxHops, CallerID: "routerd-demo",
	})
	runSolve(ctx, service, g, router.Query{
		Source: weth, Target: usdcArb, Algorithm: router.AlgorithmPSB,
		MaxHops: cfg.Solver.DefaultMaxHops, CallerID: "routerd-demo",
	})
	runCompare(ctx, service, g, router.Query{
		Source: weth, Target: usdcArb,
		MaxHops: cfg.Solver.DefaultMaxHops, CallerID: "routerd-demo",
	})
}

func runSolve(ctx context.Context, service *router.RouteService, g graph.RouteGraph, q router.Query) {
	outcome, err := service.Solve(ctx, g, q)
	if err != nil {
		logger.Log.Error("solve failed", "algorithm", q.Algorithm, "error", err)
		return
	}
	printJSON(outcome)
}

func runCompare(ctx context.Context, service *router.RouteService, g graph.RouteGraph, q router.Query) {
	outcome, err := service.SolveBoth(ctx, g, q)
	if err != nil {
		logger.Log.Error("solve_both failed", "error", err)
		return
	}
	printJSON(outcome)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Log.Error("failed to marshal result", "error", err)
		return
	}
	fmt.Println(string(data))
}

func mustBuildAuditLogger(ctx context.Context, cfg *config.Config) audit.Logger {
	if !cfg.Audit.Enabled {
		return &audit.NoopLogger{}
	}

	if cfg.Audit.Backend != "database" {
		l, err := audit.New(&audit.Config{
			Enabled:     cfg.Audit.Enabled,
			Backend:     cfg.Audit.Backend,
			BufferSize:  cfg.Audit.BufferSize,
			FlushPeriod: cfg.Audit.FlushPeriod,
		})
		if err != nil {
			logger.Fatal("failed to build audit logger", "error", err)
		}
		return l
	}

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to postgres for audit log", "error", err)
	}

	if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, database.Migrations, database.MigrationsDir); err != nil {
		logger.Fatal("failed to run audit log migrations", "error", err)
	}

	return audit.NewPostgresLogger(db)
}

func mustBuildRouteCache(cfg *config.Config) *cache.RouteCache {
	if !cfg.Cache.Enabled {
		return cache.NewRouteCache(cache.NewMemoryCache(cache.DefaultOptions()), cfg.Cache.DefaultTTL)
	}

	backend, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Fatal("failed to build route cache", "error", err)
	}
	return cache.NewRouteCache(backend, cfg.Cache.DefaultTTL)
}

// sampleGraph is a small fixture covering both same-chain swaps and
// cross-chain bridges, enough to exercise both solvers.
func sampleGraph() graph.RouteGraph {
	weth := graph.NewTokenKey("WETH", "eth")
	usdcEth := graph.NewTokenKey("USDC", "eth")
	usdcArb := graph.NewTokenKey("USDC", "arb")
	arbWeth := graph.NewTokenKey("WETH", "arb")
	daiEth := graph.NewTokenKey("DAI", "eth")

	g := graph.RouteGraph{}
	g.AddEdge(weth, graph.Edge{Target: usdcEth, Kind: graph.Swap, Rate: 3200.0, Gas: 0.002, Dex: "uniswap-v3", PoolAddress: "0xabc"})
	g.AddEdge(weth, graph.Edge{Target: daiEth, Kind: graph.Swap, Rate: 3190.0, Gas: 0.0025, Dex: "curve", PoolAddress: "0xdef"})
	g.AddEdge(daiEth, graph.Edge{Target: usdcEth, Kind: graph.Swap, Rate: 0.999, Gas: 0.0005, Dex: "curve", PoolAddress: "0x111"})
	g.AddEdge(usdcEth, graph.Edge{Target: usdcArb, Kind: graph.Bridge, Rate: 0.998, Gas: 0.01, BridgeFee: 0.002, Dex: "across"})
	g.AddEdge(weth, graph.Edge{Target: arbWeth, Kind: graph.Bridge, Rate: 0.995, Gas: 0.012, BridgeFee: 0.005, Dex: "hop"})
	g.AddEdge(arbWeth, graph.Edge{Target: usdcArb, Kind: graph.Swap, Rate: 3150.0, Gas: 0.0015, Dex: "camelot", PoolAddress: "0x222"})

	return g
}
