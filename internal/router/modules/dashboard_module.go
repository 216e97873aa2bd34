package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
)

// DashboardModule wires site aggregates and the caller's own listings.
// Public: GET /api/stats, GET /api/products/recent
// Protected: GET /api/me/products, GET /api/me/comments, GET|PUT /api/me/profile
type DashboardModule struct {
	Handler *handlers.DashboardHandler
	Redis   *redis.Client
}

func NewDashboardModule(h *handlers.DashboardHandler, rdb *redis.Client) *DashboardModule {
	return &DashboardModule{Handler: h, Redis: rdb}
}

func (m *DashboardModule) Register(rg *gin.RouterGroup) {
	rg.GET("/stats", m.Handler.Stats)
	rg.GET("/products/recent", m.Handler.Recent)

	me := rg.Group("/me")
	me.Use(
		middleware.RequireIdentity(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		me.GET("/products", m.Handler.MyProducts)
		me.GET("/comments", m.Handler.MyComments)
		me.GET("/profile", m.Handler.GetProfile)
		me.PUT("/profile", m.Handler.UpdateProfile)
	}
}
