package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	handlers "github.com/oksasatya/go-community-market/internal/interface/http"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/internal/metrics"
)

// SystemModule serves liveness and scrape endpoints.
// Public: GET /api/health
// Private networks only: GET /api/metrics, GET /api/debug/vars
type SystemModule struct {
	Handler        *handlers.SystemHandler
	Gatherer       prometheus.Gatherer
	MetricsEnabled bool
}

func NewSystemModule(h *handlers.SystemHandler, gatherer prometheus.Gatherer, metricsEnabled bool) *SystemModule {
	return &SystemModule{Handler: h, Gatherer: gatherer, MetricsEnabled: metricsEnabled}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Handler.Health)

	private := rg.Group("/", middleware.RestrictTo(middleware.AllowPrivateIP()))
	if m.MetricsEnabled && m.Gatherer != nil {
		private.GET("/metrics", gin.WrapH(metrics.Handler(m.Gatherer)))
	}
	private.GET("/debug/vars", gin.WrapH(expvar.Handler()))
}
