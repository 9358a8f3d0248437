package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/models"
	"autocare/services/booking"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Bookings booking.BookingService
}

func (h *BookingHandler) List(c *gin.Context) {
	list, err := h.Bookings.List(c.Request.Context(), middleware.CurrentActor(c).UserID)
	if err != nil {
		respondError(c, "load your bookings", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, "load the booking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req models.BookingRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), middleware.CurrentActor(c).UserID, req)
	if err != nil {
		respondError(c, "create the booking", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// Update handles PATCH /bookings/:id. A patch carrying only a status goes
// through UpdateStatus so the owner is told about provider-side changes.
func (h *BookingHandler) Update(c *gin.Context) {
	var patch models.BookingPatch
	if !bindJSON(c, &patch) {
		return
	}
	ctx, actor, id := c.Request.Context(), middleware.CurrentActor(c), c.Param("id")

	var (
		b   *models.Booking
		err error
	)
	if patch.Status != nil && patch == (models.BookingPatch{Status: patch.Status}) {
		b, err = h.Bookings.UpdateStatus(ctx, actor, id, *patch.Status)
	} else {
		b, err = h.Bookings.Update(ctx, actor, id, patch)
	}
	if err != nil {
		respondError(c, "update the booking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	b, err := h.Bookings.Cancel(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, "cancel the booking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.Bookings.Delete(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		respondError(c, "delete the booking", err)
		return
	}
	c.Status(http.StatusNoContent)
}
