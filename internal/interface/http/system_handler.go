package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-community-market/pkg/response"
)

// Pinger is a dependency checked by the health endpoint.
type Pinger func(ctx context.Context) error

type SystemHandler struct {
	AppName string
	Checks  map[string]Pinger
}

func NewSystemHandler(appName string, checks map[string]Pinger) *SystemHandler {
	return &SystemHandler{AppName: appName, Checks: checks}
}

// Health reports 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.Checks))
	for name, ping := range h.Checks {
		if err := ping(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}
	if status != http.StatusOK {
		response.Error[any](c, status, "degraded", deps)
		return
	}
	response.Success(c, status, gin.H{"app": h.AppName, "dependencies": deps}, "ok", nil)
}
