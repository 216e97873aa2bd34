package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/pkg/helpers"
	"github.com/oksasatya/go-community-market/pkg/response"
	"github.com/oksasatya/go-community-market/pkg/validation"
)

// SessionHandler is the sign-up, sign-in and sign-out surface backed by the
// auth directory.
type SessionHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewSessionHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *SessionHandler {
	return &SessionHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Username string `json:"username" binding:"required,notblank,max=50"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *SessionHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.SignUp(c.Request.Context(), application.SignUpInput{Email: req.Email, Password: req.Password, Username: req.Username})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	msg := "account created"
	if res.Session != nil {
		h.Cookies.SetSession(c, res.Session.AccessToken, res.Session.ExpiresAt, res.Session.RefreshToken)
	} else {
		msg = "account created, check your email to confirm it"
	}
	response.Success(c, http.StatusCreated, res, msg, nil)
}

func (h *SessionHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetSession(c, res.Session.AccessToken, res.Session.ExpiresAt, res.Session.RefreshToken)
	response.Success(c, http.StatusOK, res, "signed in", gin.H{"expires_at": res.Session.ExpiresAt})
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	if err := h.Svc.SignOut(c.Request.Context(), middleware.IdentityFrom(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "signed out", nil)
}

// Current returns the caller's identity and reconciled profile.
func (h *SessionHandler) Current(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	p, err := h.Svc.Session(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": id, "profile": p}, "session", gin.H{"expires_at": id.ExpiresAt})
}
