package handlers

import (
	"context"
	"errors"
	"net/http"

	"autocare/database/repository"
	"autocare/models"
	"autocare/services/auth"
	"autocare/services/notification"
	"autocare/services/provider"
	"autocare/services/user"
	"autocare/services/vehicle"
	"autocare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps the error taxonomy to an HTTP status.
func statusFor(err error) int {
	var (
		notFound   *repository.NotFoundError
		invalid    *models.ValidationError
		forbidden  *models.ForbiddenError
		conflict   *models.ConflictError
		session    *auth.SessionError
		unknownSSO *auth.UnknownProviderError
		exhausted  *provider.FallbackExhaustedError
		remote     *repository.RemoteStoreError
		upstream   *auth.OAuthProviderError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &unknownSSO):
		return http.StatusBadRequest
	case errors.As(err, &forbidden), errors.Is(err, vehicle.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, user.ErrInvalidCredentials), errors.As(err, &session):
		return http.StatusUnauthorized
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &exhausted):
		return http.StatusServiceUnavailable
	case errors.As(err, &remote), errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the toast-shaped error body for a failed action.
func respondError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("Request failed", zap.String("action", action), zap.Int("status", status), zap.Error(err))
	}
	n := notification.FromError(action, err)
	c.AbortWithStatusJSON(status, utils.ErrorResponse{Title: n.Title, Description: n.Description})
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		getLogger(c).Debug("Invalid request body", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "Please check the form and try again.")
		return false
	}
	return true
}
