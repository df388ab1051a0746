package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-share-api/internal/domain/file"
)

// writeError maps service errors onto HTTP statuses. Server side failures are
// logged with op; client errors are not.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	status, msg := http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, file.ErrValidation):
		status, msg = http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, file.ErrUnauthorized):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, file.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, file.ErrStorage):
		status, msg = http.StatusBadGateway, "storage unavailable"
	case errors.Is(err, file.ErrShareTokenExhausted):
		status, msg = http.StatusServiceUnavailable, "could not allocate share token, retry"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(op+" error", zap.Error(err))
	}

	c.JSON(status, gin.H{"error": msg})
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), file.ErrValidation.Error()+": ")
	if msg == "" {
		return file.ErrValidation.Error()
	}
	return msg
}
