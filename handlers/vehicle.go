package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/models"
	"autocare/services/vehicle"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	Vehicles vehicle.VehicleService
}

func (h *VehicleHandler) List(c *gin.Context) {
	list, err := h.Vehicles.List(c.Request.Context(), middleware.CurrentActor(c).UserID)
	if err != nil {
		respondError(c, "load your vehicles", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var in models.VehicleInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := h.Vehicles.Create(c.Request.Context(), middleware.CurrentActor(c).UserID, in)
	if err != nil {
		respondError(c, "add the vehicle", err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	var patch models.VehiclePatch
	if !bindJSON(c, &patch) {
		return
	}
	v, err := h.Vehicles.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, "update the vehicle", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	if err := h.Vehicles.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		respondError(c, "remove the vehicle", err)
		return
	}
	c.Status(http.StatusNoContent)
}
