package router

import (
	"context"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/internal/container"
	repo "github.com/oksasatya/go-community-market/internal/domain/repository"
	pginfra "github.com/oksasatya/go-community-market/internal/infrastructure/postgres"
	"github.com/oksasatya/go-community-market/internal/infrastructure/search"
	"github.com/oksasatya/go-community-market/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/router/modules"
	tpl "github.com/oksasatya/go-community-market/pkg/mailer/templates"
)

type Repositories struct {
	Profiles repo.ProfileRepository
	Products repo.ProductRepository
	Comments repo.CommentRepository
	Accounts repo.AccountRepository
}

// buildRepositories picks the in-memory store when one was registered,
// Postgres otherwise.
func buildRepositories() Repositories {
	if st := container.GetMemoryStore(); st != nil {
		return Repositories{Profiles: st.Profiles(), Products: st.Products(), Comments: st.Comments(), Accounts: st.Accounts()}
	}
	pool := container.GetPGPool()
	return Repositories{
		Profiles: pginfra.NewProfileRepository(pool),
		Products: pginfra.NewProductRepository(pool),
		Comments: pginfra.NewCommentRepository(pool),
		Accounts: pginfra.NewAccountRepository(pool),
	}
}

type Services struct {
	Profiles    *application.ProfileService
	Products    *application.ProductService
	Comments    *application.CommentService
	Dashboard   *application.DashboardService
	Auth        *application.AuthService
	Credentials *application.CredentialService
}

// buildServices converts the container's optional singletons into interface
// values, keeping absent backends as untyped nil.
func buildServices(r Repositories) Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var directory application.Directory
	if d := container.GetDirectory(); d != nil {
		directory = d
	}
	var profileMetrics application.ProfileMetrics
	if m := container.GetMetrics(); m != nil {
		profileMetrics = m
	}
	var images application.ImageStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		images = storage.NewImageStore(gcs, cfg.GCSBucket)
	}
	var index application.ProductIndex
	if es := container.GetES(); es != nil {
		index = search.NewProductIndex(es, cfg.ESProductsIndex)
	}
	var jobs application.JobPublisher
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		jobs = pub
	}
	var sessions application.SessionPublisher
	if s := container.GetSessions(); s != nil {
		sessions = s
	}

	notifier := application.NewNotifier(jobs, tpl.BrandFromConfig(cfg), logger)
	profiles := application.NewProfileService(r.Profiles, directory, profileMetrics, logger)

	return Services{
		Profiles:    profiles,
		Products:    application.NewProductService(r.Products, profiles, images, index, logger),
		Comments:    application.NewCommentService(r.Comments, r.Products, profiles, notifier, logger),
		Dashboard:   application.NewDashboardService(r.Profiles, r.Products, r.Comments, container.GetRedis(), cfg.StatsCacheTTL, logger),
		Auth:        application.NewAuthService(directory, profiles, sessions, notifier, logger),
		Credentials: application.NewCredentialService(r.Accounts, container.GetJWT(), logger),
	}
}

func healthChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	svc := buildServices(buildRepositories())

	r.Add(modules.NewSystemModule(handlers.NewSystemHandler(cfg.AppName, healthChecks()), container.GetMetricsRegistry(), cfg.MetricsEnabled))
	r.Add(modules.NewSessionModule(handlers.NewSessionHandler(svc.Auth, logger, cfg.CookieDomain, cfg.CookieSecure), rdb))
	r.Add(modules.NewCredentialModule(handlers.NewCredentialHandler(svc.Credentials, logger), container.GetJWT(), rdb))
	r.Add(modules.NewProductModule(
		handlers.NewProductHandler(svc.Products, logger, cfg.MaxImageBytes),
		handlers.NewCommentHandler(svc.Comments, logger),
		rdb,
	))
	r.Add(modules.NewDashboardModule(handlers.NewDashboardHandler(svc.Dashboard, svc.Profiles, logger), rdb))
}
