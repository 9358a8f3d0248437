package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/models"
	"autocare/services/provider"

	"github.com/gin-gonic/gin"
)

type ProviderHandler struct {
	Providers provider.ProviderService
}

// Lookup handles GET /providers?location=. The response always carries a
// list; source tells the client whether it came from the fallback.
func (h *ProviderHandler) Lookup(c *gin.Context) {
	res, err := h.Providers.LookupProviders(c.Request.Context(), c.Query("location"))
	if err != nil {
		respondError(c, "load service providers", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ProviderHandler) Get(c *gin.Context) {
	p, err := h.Providers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "load the provider", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProviderHandler) Register(c *gin.Context) {
	var profile models.ProviderProfile
	if !bindJSON(c, &profile) {
		return
	}
	p, err := h.Providers.Register(c.Request.Context(), middleware.CurrentActor(c).UserID, profile)
	if err != nil {
		respondError(c, "register your business", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProviderHandler) Update(c *gin.Context) {
	var patch models.ProviderPatch
	if !bindJSON(c, &patch) {
		return
	}
	p, err := h.Providers.UpdateProfile(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, "update the provider", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProviderHandler) Delete(c *gin.Context) {
	if err := h.Providers.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		respondError(c, "delete the provider", err)
		return
	}
	c.Status(http.StatusNoContent)
}
