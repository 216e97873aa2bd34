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

type CommentHandler struct {
	Svc    *application.CommentService
	Logger *logrus.Logger
}

func NewCommentHandler(svc *application.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Svc: svc, Logger: logger}
}

type createCommentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=2000"`
}

func (h *CommentHandler) List(c *gin.Context) {
	out, err := h.Svc.ListByProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"comments": out}, "comments", nil)
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	v, err := h.Svc.Create(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req.Content)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"comment": v}, "comment created", nil)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	err := h.Svc.Delete(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "comment deleted", nil)
}
