package routes

import (
	"time"

	"autocare/handlers"
	"autocare/middleware"
	"autocare/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Guards are the request filters routes depend on.
type Guards struct {
	Sessions    middleware.SessionGetter
	Geolocator  *middleware.Geolocator
	RateLimiter *middleware.RateLimiter
}

// RegisterAuthRoutes registers sign-up, sign-in and session endpoints.
func RegisterAuthRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, session gin.HandlerFunc) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", hb.Auth.SignUp)
		auth.POST("/login", hb.Auth.SignIn)
		auth.POST("/logout", hb.Auth.SignOut)
		auth.GET("/oauth/:provider", hb.Auth.OAuth)
		auth.GET("/oauth/:provider/callback", hb.Auth.OAuthCallback)
		auth.GET("/session", session, hb.Auth.Session)
	}
}

// RegisterProviderRoutes registers provider lookup and profile endpoints.
func RegisterProviderRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, session gin.HandlerFunc) {
	providers := api.Group("/providers")
	{
		providers.GET("", hb.Providers.Lookup)
		providers.GET("/:id", hb.Providers.Get)

		protected := providers.Group("", session)
		protected.POST("", middleware.RequireRole(models.RoleProvider, models.RoleAdmin), hb.Providers.Register)
		protected.PATCH("/:id", hb.Providers.Update)
		protected.DELETE("/:id", hb.Providers.Delete)
	}
}

// RegisterVehicleRoutes registers the signed-in user's garage.
func RegisterVehicleRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, session gin.HandlerFunc) {
	vehicles := api.Group("/vehicles", session)
	{
		vehicles.GET("", hb.Vehicles.List)
		vehicles.POST("", hb.Vehicles.Create)
		vehicles.PATCH("/:id", hb.Vehicles.Update)
		vehicles.DELETE("/:id", hb.Vehicles.Delete)
	}
}

// RegisterBookingRoutes registers booking lifecycle endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, session gin.HandlerFunc) {
	bookings := api.Group("/bookings", session)
	{
		bookings.GET("", hb.Bookings.List)
		bookings.POST("", hb.Bookings.Create)
		bookings.GET("/:id", hb.Bookings.Get)
		bookings.PATCH("/:id", hb.Bookings.Update)
		bookings.DELETE("/:id", hb.Bookings.Delete)
		bookings.POST("/:id/cancel", hb.Bookings.Cancel)
	}
}

// RegisterServiceRoutes registers the provider service catalogue.
func RegisterServiceRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, session gin.HandlerFunc) {
	services := api.Group("/services")
	{
		services.GET("", hb.Catalogue.List)

		protected := services.Group("", session)
		protected.POST("", hb.Catalogue.Create)
		protected.PATCH("/:id", hb.Catalogue.Update)
		protected.DELETE("/:id", hb.Catalogue.Delete)
	}
}

// RegisterUserRoutes registers profile and admin endpoints.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, session gin.HandlerFunc) {
	users := api.Group("/users", session)
	{
		users.GET("/me", hb.Users.Me)
		users.PATCH("/me", hb.Users.UpdateMe)
	}

	admin := api.Group("/admin", session, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", hb.Users.List)
		admin.DELETE("/users/:id", hb.Users.Delete)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, g Guards) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	if g.RateLimiter != nil {
		r.Use(g.RateLimiter.Middleware())
	}

	session := middleware.RequireSession(g.Sessions)
	api := r.Group("/api")

	RegisterAuthRoutes(api, hb, session)
	RegisterProviderRoutes(api, hb, session)
	RegisterVehicleRoutes(api, hb, session)
	RegisterBookingRoutes(api, hb, session)
	RegisterServiceRoutes(api, hb, session)
	RegisterUserRoutes(api, hb, session)

	geo := []gin.HandlerFunc{session}
	if g.Geolocator != nil {
		geo = append(geo, g.Geolocator.Middleware())
	}
	api.GET("/geolocation", append(geo, hb.Geolocation.Locate)...)
	api.GET("/notifications/ws", session, hb.Notifications.Stream)
	api.GET("/health", hb.Health.Health)
}
