package middleware

import (
	"net/http"

	"autocare/models"
	"autocare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireRole allows the request through only for the listed roles. It must
// run after RequireSession.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor := CurrentActor(c)
		if !allowed[actor.Role] {
			zap.L().Warn("Role not permitted",
				zap.String("user_id", actor.UserID),
				zap.String("role", string(actor.Role)),
				zap.String("path", c.FullPath()),
			)
			utils.JSONError(c, http.StatusForbidden, "Not allowed", "Your account can't do that.")
			return
		}
		c.Next()
	}
}
