package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
)

// ProductModule wires products, their comments and search.
// Public: GET /api/products, GET /api/products/:id, GET /api/products/:id/comments,
// GET /api/search/products
// Protected: product create/update/delete/image, comment create/delete
type ProductModule struct {
	Products *handlers.ProductHandler
	Comments *handlers.CommentHandler
	Redis    *redis.Client
}

func NewProductModule(p *handlers.ProductHandler, cm *handlers.CommentHandler, rdb *redis.Client) *ProductModule {
	return &ProductModule{Products: p, Comments: cm, Redis: rdb}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	searchLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/products", m.Products.List)
	rg.GET("/products/:id", m.Products.Get)
	rg.GET("/products/:id/comments", m.Comments.List)
	rg.GET("/search/products", searchLimiter, m.Products.Search)

	auth := rg.Group("/products")
	auth.Use(
		middleware.RequireIdentity(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("", m.Products.Create)
		auth.PUT("/:id", m.Products.Update)
		auth.DELETE("/:id", m.Products.Delete)
		auth.POST("/:id/image", middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil), m.Products.UploadImage)
		auth.POST("/:id/comments", m.Comments.Create)
		auth.DELETE("/:id/comments/:commentId", m.Comments.Delete)
	}
}
