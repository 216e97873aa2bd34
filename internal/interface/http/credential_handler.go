package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/pkg/response"
	"github.com/oksasatya/go-community-market/pkg/validation"
)

// CredentialHandler serves the standalone email/password service.
type CredentialHandler struct {
	Svc    *application.CredentialService
	Logger *logrus.Logger
}

func NewCredentialHandler(svc *application.CredentialService, logger *logrus.Logger) *CredentialHandler {
	return &CredentialHandler{Svc: svc, Logger: logger}
}

type credentialRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *CredentialHandler) Register(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing fields", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, application.ErrAccountExists):
		response.Error[any](c, http.StatusConflict, "user exists", nil)
		return
	case errors.Is(err, application.ErrMissingFields):
		response.Error[any](c, http.StatusBadRequest, "missing fields", nil)
		return
	case err != nil:
		h.logFailure(c, err, "register failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"id": a.ID, "email": a.Email}, "user created", nil)
}

func (h *CredentialHandler) Login(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing fields", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, application.ErrInvalidCredentials), errors.Is(err, application.ErrMissingFields):
		response.Error[any](c, http.StatusUnauthorized, "bad credentials", nil)
		return
	case err != nil:
		h.logFailure(c, err, "login failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", nil)
}

func (h *CredentialHandler) Me(c *gin.Context) {
	a, err := h.Svc.Me(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if errors.Is(err, application.ErrInvalidCredentials) {
		response.Error[any](c, http.StatusUnauthorized, "account not found", nil)
		return
	}
	if err != nil {
		h.logFailure(c, err, "account lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.Success(c, http.StatusOK, a, "account", nil)
}

func (h *CredentialHandler) logFailure(c *gin.Context, err error, msg string) {
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error(msg)
	}
}
