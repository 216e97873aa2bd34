package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every /api endpoint answers with.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

func envelope[T any](c *gin.Context, status int, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString("request_id"),
		Success:   status < http.StatusBadRequest,
		Message:   message,
	}
}

// Success writes data with status (200 when zero).
func Success[T any](c *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := envelope[T](c, status, message)
	resp.Data, resp.Meta = data, meta
	c.JSON(status, resp)
	return resp
}

// Error writes a failure with optional details (400 when status is zero).
func Error[T any](c *gin.Context, status int, message string, details interface{}) APIResponse[T] {
	resp := failure[T](c, status, message, details)
	c.JSON(resp.Status, resp)
	return resp
}

// Abort is Error for middleware: it also stops the handler chain.
func Abort(c *gin.Context, status int, message string, details interface{}) {
	resp := failure[any](c, status, message, details)
	c.AbortWithStatusJSON(resp.Status, resp)
}

func failure[T any](c *gin.Context, status int, message string, details interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := envelope[T](c, status, message)
	resp.Success = false
	resp.Error = details
	return resp
}
