package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"enforcer/internal/config"
	"enforcer/internal/cooldown"
	"enforcer/internal/dispatch"
	"enforcer/internal/engine"
	"enforcer/internal/logger"
	"enforcer/internal/policy"
	"enforcer/internal/runtime"
	"enforcer/pkg/health"
	"enforcer/pkg/metrics"
	"enforcer/pkg/middleware"
	"enforcer/pkg/ratelimit"
	"enforcer/pkg/retry"
)

const (
	detectTimeout   = 5 * time.Second
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

type App struct {
	cfg        *config.Config
	configPath string
	logger     logger.Logger

	runtime    runtime.Runtime
	store      *policy.Store
	cooldowns  *cooldown.Tracker
	dispatcher *dispatch.Dispatcher
	engine     *engine.Engine
	server     *http.Server
}

func NewApp(cfg *config.Config, configPath string, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetComponent("enforcer")
	}
	return &App{
		cfg:        cfg,
		configPath: configPath,
		logger:     log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initRuntime(ctx); err != nil {
		return fmt.Errorf("failed to initialize container runtime: %w", err)
	}

	if err := a.initEngine(); err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	metrics.RegisterEngineMetrics()
	metrics.RegisterDispatchMetrics()
	if a.cfg.RateLimit.Enabled {
		metrics.RegisterServerMetrics()
	}

	if err := a.initHTTPServer(); err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	return nil
}

func (a *App) initRuntime(ctx context.Context) error {
	if a.cfg.Runtime.Kind == string(runtime.KindNone) {
		a.runtime = runtime.NewNopRuntime()
		a.logger.WarnwCtx(ctx, "Runtime disabled, kill and quarantine actions are no-ops")
		return nil
	}

	rt, err := runtime.Detect(a.cfg.Runtime.Kind, a.cfg.Runtime.SocketPath)
	if err != nil {
		return err
	}
	a.runtime = rt

	pingCtx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()
	if err := rt.Ping(pingCtx); err != nil {
		// The daemon may come up later; the health endpoint keeps probing.
		a.logger.WarnwCtx(ctx, "Container runtime unreachable at startup",
			"runtime", rt.Kind(),
			"error", err,
		)
	} else {
		a.logger.InfowCtx(ctx, "Container runtime connected", "runtime", rt.Kind())
	}
	return nil
}

func (a *App) initEngine() error {
	snap, err := policy.NewSnapshot(a.cfg.ToPolicies(), a.cfg.ExcludedContainers)
	if err != nil {
		return err
	}
	a.store = policy.NewStore(snap)
	a.cooldowns = cooldown.NewTracker()

	executor := dispatch.NewExecutor(a.runtime, dispatch.ExecutorConfig{
		DryRun:           a.cfg.DryRun,
		GlobalWebhookURL: a.cfg.Webhook.GlobalURL,
		RuntimeTimeout:   a.cfg.Dispatch.RuntimeTimeout,
		WebhookTimeout:   a.cfg.Dispatch.WebhookTimeout,
		WebhookRetry:     retryPolicy(a.cfg.Dispatch.WebhookRetry),
	}, a.logger)

	a.dispatcher = dispatch.NewDispatcher(executor, dispatch.DispatcherConfig{
		Workers:     a.cfg.Dispatch.Workers,
		QueueSize:   a.cfg.Dispatch.QueueSize,
		GracePeriod: a.cfg.Dispatch.GracePeriod,
	}, a.logger)

	a.engine = engine.New(a.store, a.cooldowns, a.dispatcher, a.logger)
	return nil
}

func (a *App) initHTTPServer() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(a.logger))

	if a.cfg.RateLimit.Enabled {
		rlCfg := ratelimit.DefaultConfig()
		rlCfg.RPS = a.cfg.RateLimit.RPS
		rlCfg.Burst = a.cfg.RateLimit.Burst
		router.Use(ratelimit.Middleware(rlCfg))
	}

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewRuntimeChecker(a.runtime, string(a.runtime.Kind())))

	handler := engine.NewHandler(a.engine, healthRegistry, a.runtime.Kind(), a.logger)
	handler.RegisterRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(gCtx, "HTTP server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		return a.Shutdown()
	})

	g.Go(func() error {
		err := a.dispatcher.Start(gCtx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	g.Go(func() error {
		err := a.cooldowns.StartSweeper(gCtx, sweepInterval, a.engine.MaxCooldownAge)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	if a.cfg.Reload.Enabled && a.configPath != "" {
		g.Go(func() error {
			err := config.Watch(gCtx, a.configPath, a.logger, a.applyConfig)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// applyConfig swaps the policy snapshot in place. Server, runtime, and
// dispatch settings need a restart; only policies and exclusions reload.
func (a *App) applyConfig(cfg *config.Config) {
	snap, err := a.store.Replace(cfg.ToPolicies(), cfg.ExcludedContainers)
	if err != nil {
		a.logger.Errorw("Rejected reloaded policies, previous snapshot stays active",
			"error", err,
		)
		return
	}
	a.logger.Infow("Policy snapshot replaced",
		"version", snap.Version,
		"policies", len(snap.Policies),
	)
}

func (a *App) Shutdown() error {
	a.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	return nil
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	p := retry.DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialInterval > 0 {
		p.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		p.MaxInterval = cfg.MaxInterval
	}
	if cfg.Multiplier > 0 {
		p.Multiplier = cfg.Multiplier
	}
	if cfg.MaxElapsedTime > 0 {
		p.MaxElapsedTime = cfg.MaxElapsedTime
	}
	return p
}
