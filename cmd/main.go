package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/config"
	"github.com/oksasatya/go-community-market/internal/container"
	"github.com/oksasatya/go-community-market/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-community-market/internal/infrastructure/postgres"
	"github.com/oksasatya/go-community-market/internal/infrastructure/supabase"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/internal/metrics"
	"github.com/oksasatya/go-community-market/internal/router"
	"github.com/oksasatya/go-community-market/internal/session"
	"github.com/oksasatya/go-community-market/pkg/helpers"
	"github.com/oksasatya/go-community-market/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Store
	if cfg.UsesMemoryStore() {
		logger.Warn("STORE_DRIVER=memory; rows are lost on restart")
		container.SetMemoryStore(memory.NewStore())
	} else {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
	}

	// Redis is optional: without it rate limits are off, stats are not cached
	// and session events stay in this process.
	if rdb := connectRedis(ctx, cfg, logger); rdb != nil {
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	initOptionalBackends(ctx, cfg, logger)
	defer func() {
		if gcs := container.GetGCS(); gcs != nil {
			_ = gcs.Close()
		}
		container.GetRabbitPub().Close()
	}()

	// Auth
	container.SetJWT(helpers.NewJWTManager(cfg.CredentialJWTSecret, cfg.CredentialTokenTTL))
	container.SetVerifier(supabase.NewVerifier(cfg.SupabaseJWTSecret))
	if cfg.SupabaseURL != "" {
		container.SetDirectory(supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey))
	} else {
		logger.Warn("SUPABASE_URL not set; sign-up and sign-in are unavailable")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)
	container.SetMetrics(reg, collector)

	// Session events
	sessions := session.NewStore(container.GetRedis(), cfg.SessionChannel, logger)
	if err := sessions.Start(ctx); err != nil {
		log.Fatalf("failed to start session store: %v", err)
	}
	defer func() { _ = sessions.Close() }()
	unsubscribe := sessions.Subscribe(collector.RecordSessionEvent)
	defer unsubscribe()
	container.SetSessions(sessions)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{cfg.SiteURL}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(middleware.RequestLogger(logger))
	}
	r.Use(middleware.Metrics(collector))

	// Registry: auto-register modules using container
	registry := router.NewRegistry(r)
	registry.Use(middleware.Identity(container.GetVerifier(), sessions, logger))
	router.InitModules(registry)
	registry.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

func connectRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.WithError(err).Warn("redis unavailable; continuing without it")
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// initOptionalBackends connects GCS, Elasticsearch and RabbitMQ when they
// are configured. A failure disables the feature instead of stopping startup.
func initOptionalBackends(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("GCS unavailable; image uploads disabled")
		} else {
			container.SetGCS(gcs)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = helpers.PingES(pingCtx, es)
			cancel()
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; search falls back to the store")
		} else {
			container.SetES(es)
		}
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; notifications disabled")
		} else {
			container.SetRabbitPub(pub)
		}
	}
}
