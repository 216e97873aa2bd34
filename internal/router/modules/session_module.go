package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
)

// SessionModule wires the directory-backed auth surface.
// Public: POST /api/session/signup, POST /api/session/signin
// Protected: POST /api/session/signout, GET /api/session
type SessionModule struct {
	Handler *handlers.SessionHandler
	Redis   *redis.Client
}

func NewSessionModule(h *handlers.SessionHandler, rdb *redis.Client) *SessionModule {
	return &SessionModule{Handler: h, Redis: rdb}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	signUpLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	signInLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/session/signup", signUpLimiter, m.Handler.SignUp)
	rg.POST("/session/signin", signInLimiter, m.Handler.SignIn)

	auth := rg.Group("/session", middleware.RequireIdentity())
	{
		auth.GET("", m.Handler.Current)
		auth.POST("/signout", m.Handler.SignOut)
	}
}
