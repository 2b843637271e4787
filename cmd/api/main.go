package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/auth"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/cart"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/catalog"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/checkout"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/config"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/coupon"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/db"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/events"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/health"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/notify"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/obs"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/order"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/ratelimit"
	"github.com/FitnessFreakCoder/Freshmart-project/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "freshmart")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "freshmart-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, "freshmart-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	asynqClient := asynq.NewClientFromRedisClient(redisClient)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	validate := validator.New()

	productRepo := repo.Products{Pool: pool}
	couponRepo := repo.Coupons{Pool: pool}
	usageRepo := repo.CouponUsage{Pool: pool}
	orderRepo := repo.Orders{Pool: pool}

	bus := &events.Bus{
		Logger:    logger,
		Notifiers: []events.Notifier{notify.Enqueuer{Client: asynqClient}},
	}

	catalogSvc := &catalog.Service{Store: productRepo}
	catalogHandler := &catalog.Handler{Svc: catalogSvc, Validate: validate}

	couponSvc := &coupon.Service{
		Store:  couponRepo,
		Ledger: usageRepo,
		Orders: orderRepo,
		Policy: coupon.Policy{},
	}
	couponHandler := &coupon.Handler{Svc: couponSvc, Admin: couponRepo, Validate: validate}

	cartSvc := &cart.Service{Products: productRepo, Coupons: couponSvc}
	cartHandler := &cart.Handler{Svc: cartSvc, Validate: validate}

	checkoutSvc := &checkout.Service{
		Products: productRepo,
		Orders:   orderRepo,
		Coupons:  couponSvc,
		Events:   bus,
	}
	checkoutHandler := &checkout.Handler{Svc: checkoutSvc, Validate: validate}

	orderHandler := &order.Handler{Store: orderRepo, Events: bus}

	authMW := auth.Middleware{Tokens: auth.Tokens{
		Secret:    []byte(cfg.JWTSecret),
		Issuer:    "freshmart",
		Audience:  "freshmart-api",
		ClockSkew: 30 * time.Second,
	}}

	couponRate := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "rl:coupon:"},
		Config: ratelimit.Config{
			Key:    ratelimit.ByUserOrIP,
			Window: cfg.CouponValidateWin,
			Max:    cfg.CouponValidateMax,
		},
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("coupon rate limiter unavailable")
		},
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.List)
		v.Get("/products/{productId}", catalogHandler.Get)
		v.Get("/categories", catalogHandler.Categories)

		v.Group(func(g chi.Router) {
			g.Use(authMW.Authenticate)
			g.Get("/coupons", couponHandler.List)
			g.With(couponRate.Middleware).Post("/coupons/validate", couponHandler.ValidateCode)
			g.Post("/cart/quote", cartHandler.Quote)
		})

		v.Group(func(g chi.Router) {
			g.Use(authMW.RequireAuth)
			g.Post("/orders", checkoutHandler.Create)
			g.Get("/orders", orderHandler.List)
			g.Get("/orders/{orderId}", orderHandler.Get)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMW.RequireStaff)
			admin.Post("/products", catalogHandler.Create)
			admin.Put("/products/{productId}", catalogHandler.Update)
			admin.Delete("/products/{productId}", catalogHandler.Delete)
			admin.Delete("/categories/{name}", catalogHandler.DeleteCategory)
			admin.Get("/coupons", couponHandler.AdminList)
			admin.Post("/coupons", couponHandler.Create)
			admin.Put("/coupons/{code}", couponHandler.Update)
			admin.Delete("/coupons/{code}", couponHandler.Delete)
			admin.Get("/orders", orderHandler.AdminList)
			admin.Patch("/orders/{orderId}/status", orderHandler.UpdateStatus)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	case <-runCtx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}
