package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/config"
	"github.com/oksasatya/go-community-market/internal/infrastructure/memory"
	"github.com/oksasatya/go-community-market/internal/infrastructure/supabase"
	"github.com/oksasatya/go-community-market/internal/metrics"
	"github.com/oksasatya/go-community-market/internal/session"
	"github.com/oksasatya/go-community-market/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons. Optional components stay nil
// when their backend is not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	memStore    *memory.Store
	redisClient *redis.Client
	gcsClient   *storage.Client
	esClient    *elasticsearch.Client
	rabbitPub   *helpers.RabbitPublisher

	jwtManager *helpers.JWTManager
	verifier   *supabase.Verifier
	directory  *supabase.Client
	sessions   *session.Store

	promRegistry *prometheus.Registry
	collector    *metrics.Collector
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger { return logger }
func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool { return pgPool }
func SetMemoryStore(s *memory.Store) { memStore = s }
func GetMemoryStore() *memory.Store { return memStore }
func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client { return redisClient }
func SetGCS(s *storage.Client) { gcsClient = s }
func GetGCS() *storage.Client { return gcsClient }
func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client { return esClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher { return rabbitPub }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.NewJWTManager(cfg.CredentialJWTSecret, cfg.CredentialTokenTTL)
}

func SetVerifier(v *supabase.Verifier) { verifier = v }
func GetVerifier() *supabase.Verifier {
	if verifier != nil {
		return verifier
	}
	return supabase.NewVerifier(cfg.SupabaseJWTSecret)
}

func SetDirectory(d *supabase.Client) { directory = d }
func GetDirectory() *supabase.Client { return directory }

func SetSessions(s *session.Store) { sessions = s }
func GetSessions() *session.Store { return sessions }

func SetMetrics(reg *prometheus.Registry, c *metrics.Collector) {
	promRegistry = reg
	collector = c
}
func GetMetricsRegistry() *prometheus.Registry { return promRegistry }
func GetMetrics() *metrics.Collector { return collector }
