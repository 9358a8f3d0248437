package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"autocare/models"
	"autocare/services/auth"
	"autocare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxSession = "session"
	ctxUserID  = "userID"
	ctxRole    = "role"
)

// SessionGetter resolves a bearer token to a live session.
type SessionGetter interface {
	GetSession(ctx context.Context, token string) (*auth.Session, error)
}

// BearerToken reads the token from the Authorization header, falling back to
// the access_token query parameter used by websocket clients.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query("access_token")
}

// RequireSession aborts with 401 unless the request carries a live session.
func RequireSession(sessions SessionGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Sign in required", "Please sign in to continue.")
			return
		}

		session, err := sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidSession) {
				zap.L().Error("Session lookup failed", zap.Error(err))
				utils.JSONError(c, http.StatusServiceUnavailable, "Something went wrong", "We couldn't verify your session. Please try again.")
				return
			}
			utils.JSONError(c, http.StatusUnauthorized, "Session expired", "Please sign in again.")
			return
		}

		c.Set(ctxSession, session)
		c.Set(ctxUserID, session.UserID)
		c.Set(ctxRole, session.Role)
		c.Next()
	}
}

// CurrentSession returns the session set by RequireSession.
func CurrentSession(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*auth.Session)
	return s, ok
}

// CurrentActor returns the caller identity; zero when unauthenticated.
func CurrentActor(c *gin.Context) models.Actor {
	userID := c.GetString(ctxUserID)
	role, _ := c.Get(ctxRole)
	r, _ := role.(models.Role)
	return models.Actor{UserID: userID, Role: r}
}
