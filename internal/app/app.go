// Package app wires configuration, storage, domain services, and the HTTP
// server into a running process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/luxewear/storefront/internal/domain/order"
	"github.com/luxewear/storefront/internal/domain/pricing"
	"github.com/luxewear/storefront/internal/domain/promo"
	"github.com/luxewear/storefront/internal/handler"
	"github.com/luxewear/storefront/internal/session"
	"github.com/luxewear/storefront/internal/storage/postgres"
	"github.com/luxewear/storefront/internal/storage/redis"
	"github.com/luxewear/storefront/pkg/health"
	"github.com/luxewear/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	taxRate, err := cfg.Tax()
	if err != nil {
		return err
	}
	methods, err := cfg.ShippingMethods()
	if err != nil {
		return err
	}

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New(health.Options{Interval: 10 * time.Second, Timeout: 5 * time.Second})
	healthSvc.AddReadiness("postgres", health.PingCheck(pool))
	healthSvc.AddLiveness("goroutines", health.GoroutineCountCheck(10000))

	// Cart snapshots in Redis are optional; without them sessions are
	// memory-only and carts do not survive restarts.
	var snapshots session.SnapshotStore
	if cfg.RedisAddr != "" {
		store, err := redis.New(ctx, cfg.RedisAddr, cfg.SnapshotTTL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() {
			_ = store.Close()
		}()
		healthSvc.AddReadiness("redis", health.PingCheck(store))
		snapshots = store
	} else {
		lg.Info("Redis address not set, cart snapshots disabled")
	}

	healthSvc.Start(ctx)
	healthSvc.SetReady(true)

	// Repositories and domain services.
	productRepo := postgres.NewProductRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	promoRepo := postgres.NewPromoRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	validator := promo.NewRepoValidator(promoRepo)
	engine := pricing.NewEngine(taxRate, validator)
	orderSvc := order.NewService(engine, methods, orderRepo, validator)
	sessions := session.NewManager(snapshots, cfg.SessionTTL)
	sessions.StartCleanup(ctx, time.Hour)

	// HTTP routes: API + health probes on one server.
	h := handler.NewHandler(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		productRepo,
		reviewRepo,
		engine,
		orderSvc,
		orderRepo,
		sessions,
	)
	mux := h.Routes()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)

	var root http.Handler = httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Instrument("storefront", m.MeterProvider()),
		httpmiddleware.LogRequests(),
	)
	root = otelhttp.NewHandler(root, "storefront",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           root,
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
