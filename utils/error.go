package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply. It mirrors the
// notification shape so clients can show it as a toast.
type ErrorResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zap.L().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Title:       "Something went wrong",
					Description: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, title string, description string) {
	zap.L().Warn(title, zap.Int("status", status), zap.String("description", description))
	c.AbortWithStatusJSON(status, ErrorResponse{Title: title, Description: description})
}
