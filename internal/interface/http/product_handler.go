package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/internal/interface/middleware"
	"github.com/oksasatya/go-community-market/pkg/response"
	"github.com/oksasatya/go-community-market/pkg/validation"
)

type ProductHandler struct {
	Svc           *application.ProductService
	Logger        *logrus.Logger
	MaxImageBytes int64
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger, MaxImageBytes: maxImageBytes}
}

// Request bodies never carry an owner; it always comes from the identity.
type createProductRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"required,notblank"`
	ImageURL    string `json:"image_url" binding:"omitempty,url"`
}

type updateProductRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,notblank"`
	ImageURL    *string `json:"image_url"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive draft"`
}

type listProductsQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Search string `form:"search"`
}

func (h *ProductHandler) List(c *gin.Context) {
	var q listProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	page, err := h.Svc.List(c.Request.Context(), application.ListProductsInput{Page: q.Page, Limit: q.Limit, Search: q.Search})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page, "products", nil)
}

// Get reports any failure as not found.
func (h *ProductHandler) Get(c *gin.Context) {
	d, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if application.ReasonOf(err) != application.ReasonNotFound && h.Logger != nil {
			h.Logger.WithError(err).WithField("product_id", c.Param("id")).Error("product detail failed")
		}
		response.Error[any](c, http.StatusNotFound, "product not found", gin.H{"reason": string(application.ReasonNotFound)})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": d}, "product", nil)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.IdentityFrom(c), application.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"product": p}, "product created", nil)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), application.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": p}, "product updated", nil)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "product deleted", nil)
}

// UploadImage accepts a multipart "image" field.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	if h.MaxImageBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxImageBytes+1<<20)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "image file is required", gin.H{"image": "is required"})
		return
	}
	if h.MaxImageBytes > 0 && fh.Size > h.MaxImageBytes {
		response.Error[any](c, http.StatusBadRequest, "image too large", gin.H{"image": "must be at most " + strconv.FormatInt(h.MaxImageBytes, 10) + " bytes"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable image", nil)
		return
	}
	defer func() { _ = f.Close() }()

	p, err := h.Svc.UploadImage(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"product": p}, "image uploaded", nil)
}

func (h *ProductHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	out, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"products": out}, "search results", gin.H{"count": len(out)})
}
