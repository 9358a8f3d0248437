package handlers

import (
	"net/http"

	"autocare/middleware"
	"autocare/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GeolocationHandler struct {
	Notifier notification.Notifier
}

// Locate handles GET /geolocation. It runs behind Geolocator.Middleware and
// always answers 200; the toast tells the user which way it went.
func (h *GeolocationHandler) Locate(c *gin.Context) {
	userID := middleware.CurrentActor(c).UserID
	geo, err := middleware.GeoFromContext(c)
	if err != nil {
		getLogger(c).Info("Location unavailable", zap.Error(err))
		n := notification.Info("Location unavailable", "We couldn't detect your location. You can still search by city.")
		h.Notifier.Notify(c.Request.Context(), notification.ForUser(n, userID))
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}

	n := notification.Info("Location detected", "Showing providers near "+geo.Place()+".")
	h.Notifier.Notify(c.Request.Context(), notification.ForUser(n, userID))
	c.JSON(http.StatusOK, gin.H{
		"available": true,
		"location":  geo.Place(),
		"coordinates": gin.H{
			"lat": geo.Latitude,
			"lng": geo.Longitude,
		},
	})
}
