package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"autocare/config"
	"autocare/cron"
	"autocare/database"
	bookingRepo "autocare/database/repository/booking"
	providerRepo "autocare/database/repository/provider"
	serviceRepo "autocare/database/repository/service"
	userRepoPkg "autocare/database/repository/user"
	vehicleRepo "autocare/database/repository/vehicle"
	"autocare/handlers"
	"autocare/middleware"
	"autocare/models"
	"autocare/routes"
	"autocare/services/auth"
	"autocare/services/booking"
	"autocare/services/catalogue"
	"autocare/services/mock"
	"autocare/services/notification"
	"autocare/services/provider"
	"autocare/services/query"
	"autocare/services/tasks"
	"autocare/services/user"
	"autocare/services/vehicle"
	"autocare/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Remote store.
	db, err := database.Connect(ctx, database.Options{
		Driver: cfg.StoreDriver,
		URL:    cfg.DatabaseURL,
		Name:   cfg.DatabaseName,
	}, logger)
	if err != nil {
		logger.Fatal("main: failed to connect to remote store", zap.Error(err))
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("main: failed to prepare remote store", zap.Error(err))
	}

	// Query cache.
	checks := map[string]utils.HealthCheck{"store": db.Ping}
	var cache query.Cache
	var redisClient *redis.Client
	if cfg.CacheDriver == "memory" {
		cache = query.NewMemoryCache()
	} else {
		redisClient, err = utils.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
		if err != nil {
			logger.Fatal("main: failed to connect to redis", zap.Error(err))
		}
		cache = query.NewRedisCache(redisClient)
		checks["cache"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	queryClient := query.NewClient(cache, query.Options{
		StaleTime: cfg.QueryStaleTime,
		Retry:     cfg.QueryRetry,
	}, logger)

	// Notifications.
	hub := notification.NewHub(logger)
	go hub.Run(ctx)
	notifier := notification.Multi{notification.LogNotifier{Logger: logger}, hub}

	// Repositories.
	provRepo := providerRepo.NewStoreProviderRepo(database.Table[models.ProviderRow](db, database.ProvidersTable), logger)
	userRepo := userRepoPkg.NewStoreUserRepo(database.Table[models.User](db, database.UsersTable), logger)
	bookRepo := bookingRepo.NewStoreBookingRepo(database.Table[models.Booking](db, database.BookingsTable), logger)
	vehRepo := vehicleRepo.NewStoreVehicleRepo(database.Table[models.Vehicle](db, database.VehiclesTable), logger)
	svcRepo := serviceRepo.NewStoreServiceRepo(database.Table[models.Service](db, database.ServicesTable), logger)

	// Background reminders.
	var reminders booking.ReminderScheduler
	var worker *cron.ReminderWorker
	if cfg.RemindersEnabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		reminders = tasks.NewReminderScheduler(asynqClient, time.Local, logger)

		worker = cron.NewReminderWorker(redisOpt, bookRepo, notifier, logger)
		worker.Start(ctx)
	}

	// Services.
	fallback := mock.NewGenerator()
	userService, err := user.NewDefaultUserService(userRepo, queryClient, notifier, logger)
	if err != nil {
		logger.Fatal("main: user service", zap.Error(err))
	}
	providerService, err := provider.NewDefaultProviderService(provRepo, queryClient, fallback, notifier, logger)
	if err != nil {
		logger.Fatal("main: provider service", zap.Error(err))
	}
	bookingService, err := booking.NewDefaultBookingService(bookRepo, vehRepo, provRepo, fallback, queryClient, notifier, reminders, logger)
	if err != nil {
		logger.Fatal("main: booking service", zap.Error(err))
	}
	vehicleService, err := vehicle.NewDefaultVehicleService(vehRepo, queryClient, notifier, logger)
	if err != nil {
		logger.Fatal("main: vehicle service", zap.Error(err))
	}
	catalogueService, err := catalogue.NewDefaultCatalogueService(svcRepo, provRepo, queryClient, notifier, logger)
	if err != nil {
		logger.Fatal("main: catalogue service", zap.Error(err))
	}

	authService, err := auth.NewService(auth.Options{
		Secret:           jwtSecret(cfg, logger),
		TTL:              cfg.SessionTTL,
		RedirectURL:      cfg.OAuthRedirectURL,
		AllowedRedirects: cfg.OAuthAllowedRedirects,
		OAuth: map[string]auth.OAuthClient{
			"google": {ClientID: cfg.OAuthGoogleClientID, ClientSecret: cfg.OAuthGoogleClientSecret},
			"github": {ClientID: cfg.OAuthGitHubClientID, ClientSecret: cfg.OAuthGitHubClientSecret},
		},
	}, cache, logger)
	if err != nil {
		logger.Fatal("main: auth service", zap.Error(err))
	}
	authService.OnAuthStateChange(func(event auth.Event, s *auth.Session) {
		logger.Info("Auth state changed", zap.String("event", string(event)), zap.String("user_id", s.UserID))
	})

	health := utils.NewHealthMonitor(checks)
	health.Start(ctx, 30*time.Second)

	limiter := middleware.NewRateLimiter(cfg.MaxRequestsPerMin)
	go limiter.RunSweeper(ctx, time.Minute)

	var geolocator *middleware.Geolocator
	if cfg.GeolocationEnabled {
		geolocator = middleware.NewGeolocator(cfg.GeolocationURL, logger)
	}

	handlerBundle := &handlers.HandlerBundle{
		Auth:          &handlers.AuthHandler{Users: userService, Auth: authService},
		Providers:     &handlers.ProviderHandler{Providers: providerService},
		Bookings:      &handlers.BookingHandler{Bookings: bookingService},
		Vehicles:      &handlers.VehicleHandler{Vehicles: vehicleService},
		Catalogue:     &handlers.CatalogueHandler{Catalogue: catalogueService},
		Users:         &handlers.UserHandler{Users: userService},
		Geolocation:   &handlers.GeolocationHandler{Notifier: notifier},
		Notifications: handlers.NewNotificationHandler(hub),
		Health:        &handlers.HealthHandler{Monitor: health},
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("main: invalid TRUSTED_PROXIES", zap.Error(err))
	}
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger(logger))
	routes.RegisterRoutes(router, handlerBundle, routes.Guards{
		Sessions:    authService,
		Geolocator:  geolocator,
		RateLimiter: limiter,
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("store", db.Driver))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := db.Close(shutdownCtx); err != nil {
		logger.Warn("main: failed to close remote store", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}

// jwtSecret returns the configured signing secret. Outside production an
// empty secret is replaced by a random one, so sessions do not survive restarts.
func jwtSecret(cfg config.Config, logger *zap.Logger) []byte {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret)
	}
	if config.IsProduction() {
		logger.Fatal("main: JWT_SECRET is required in production")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Fatal("main: failed to generate JWT secret", zap.Error(err))
	}
	logger.Warn("JWT_SECRET not set; using a random secret for this process")
	return []byte(hex.EncodeToString(b))
}
