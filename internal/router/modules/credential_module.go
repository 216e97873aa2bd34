package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/pkg/helpers"
)

// CredentialModule wires the standalone email/password service.
// Public: POST /api/auth/register, POST /api/auth/login
// Protected (credential token): GET /api/auth/me
type CredentialModule struct {
	Handler *handlers.CredentialHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewCredentialModule(h *handlers.CredentialHandler, jwt *helpers.JWTManager, rdb *redis.Client) *CredentialModule {
	return &CredentialModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *CredentialModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP

	g := rg.Group("/auth")
	g.POST("/register", registerLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.GET("/me", middleware.CredentialAuth(m.JWT), m.Handler.Me)
}
