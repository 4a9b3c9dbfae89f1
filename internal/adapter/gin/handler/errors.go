package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "library-service/pkg/errors"
	"library-service/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError converts usecase errors to HTTP responses. Internal errors are
// logged and their details withheld from the client.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	status, code := pkgerrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context(), log).Error("request failed", zap.Error(err))
		c.JSON(status, ErrorResponse{Error: code, Message: "An internal error occurred"})
		return
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
