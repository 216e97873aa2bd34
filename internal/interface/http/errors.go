package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-market/internal/application"
	"github.com/oksasatya/go-community-market/pkg/response"
)

var reasonStatus = map[application.Reason]int{
	application.ReasonUnauthenticated: http.StatusUnauthorized,
	application.ReasonForbidden:       http.StatusForbidden,
	application.ReasonInvalidInput:    http.StatusBadRequest,
	application.ReasonNotFound:        http.StatusNotFound,
	application.ReasonStore:           http.StatusInternalServerError,
	application.ReasonInternal:        http.StatusInternalServerError,
}

// StatusFor maps a service error onto its HTTP status.
func StatusFor(err error) int {
	if st, ok := reasonStatus[application.ReasonOf(err)]; ok {
		return st
	}
	return http.StatusInternalServerError
}

// writeError renders a service error. Server-side failures are logged with
// the request id.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := StatusFor(err)
	reason := application.ReasonOf(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, status, application.PublicMessage(err), gin.H{"reason": string(reason)})
}
