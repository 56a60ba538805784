package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "crf-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MutationResponse is the body of every write endpoint.
type MutationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// bindError answers a malformed request body.
func bindError(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Detail: err.Error()})
}

// handleError converts usecase errors to HTTP responses. Internal errors are
// logged and never echoed to the client.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	status := apperrors.HTTPStatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, ErrorResponse{Detail: http.StatusText(status)})
		return
	}

	c.JSON(status, ErrorResponse{Detail: err.Error()})
}
