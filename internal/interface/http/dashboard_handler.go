package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/pkg/response"
	"github.com/oksasatya/go-community-market/pkg/validation"
)

type DashboardHandler struct {
	Svc      *application.DashboardService
	Profiles *application.ProfileService
	Logger   *logrus.Logger
}

func NewDashboardHandler(svc *application.DashboardService, profiles *application.ProfileService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{Svc: svc, Profiles: profiles, Logger: logger}
}

type updateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,notblank,max=50"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Website  *string `json:"website" binding:"omitempty,max=200"`
}

func (h *DashboardHandler) Stats(c *gin.Context) {
	response.Success(c, http.StatusOK, h.Svc.Stats(c.Request.Context()), "stats", nil)
}

func (h *DashboardHandler) Recent(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"products": h.Svc.RecentProducts(c.Request.Context())}, "recent products", nil)
}

func (h *DashboardHandler) MyProducts(c *gin.Context) {
	out := h.Svc.UserProducts(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	response.Success(c, http.StatusOK, gin.H{"products": out}, "your products", nil)
}

func (h *DashboardHandler) MyComments(c *gin.Context) {
	out := h.Svc.UserComments(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	response.Success(c, http.StatusOK, gin.H{"comments": out}, "your comments", nil)
}

func (h *DashboardHandler) GetProfile(c *gin.Context) {
	p, err := h.Profiles.EnsureProfile(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p}, "profile", nil)
}

func (h *DashboardHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Profiles.UpdateProfile(c.Request.Context(), middleware.IdentityFrom(c), application.UpdateProfileInput{
		Username: req.Username,
		Bio:      req.Bio,
		Website:  req.Website,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p}, "profile updated", nil)
}
