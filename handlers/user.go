package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/models"
	"autocare/services/user"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users user.UserService
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Users.GetByID(c.Request.Context(), middleware.CurrentActor(c).UserID)
	if err != nil {
		respondError(c, "load your profile", err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var patch models.UserPatch
	if !bindJSON(c, &patch) {
		return
	}
	actor := middleware.CurrentActor(c)
	u, err := h.Users.Update(c.Request.Context(), actor, actor.UserID, patch)
	if err != nil {
		respondError(c, "update your profile", err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// List handles GET /admin/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		respondError(c, "load users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Delete handles DELETE /admin/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		respondError(c, "delete the account", err)
		return
	}
	c.Status(http.StatusNoContent)
}
