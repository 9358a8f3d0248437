package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/models"
	"autocare/services/catalogue"

	"github.com/gin-gonic/gin"
)

// CatalogueHandler serves the /services endpoints.
type CatalogueHandler struct {
	Catalogue catalogue.CatalogueService
}

func (h *CatalogueHandler) List(c *gin.Context) {
	list, err := h.Catalogue.List(c.Request.Context(), c.Query("provider_id"))
	if err != nil {
		respondError(c, "load services", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogueHandler) Create(c *gin.Context) {
	var in models.ServiceInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.Catalogue.Create(c.Request.Context(), middleware.CurrentActor(c), in)
	if err != nil {
		respondError(c, "add the service", err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *CatalogueHandler) Update(c *gin.Context) {
	var patch models.ServicePatch
	if !bindJSON(c, &patch) {
		return
	}
	s, err := h.Catalogue.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, "update the service", err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *CatalogueHandler) Delete(c *gin.Context) {
	if err := h.Catalogue.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		respondError(c, "remove the service", err)
		return
	}
	c.Status(http.StatusNoContent)
}
