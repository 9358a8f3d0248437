package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"autocare/database"
	bookingRepo "autocare/database/repository/booking"
	providerRepo "autocare/database/repository/provider"
	serviceRepo "autocare/database/repository/service"
	userRepo "autocare/database/repository/user"
	vehicleRepo "autocare/database/repository/vehicle"
	"autocare/database/store"
	"autocare/handlers"
	"autocare/middleware"
	"autocare/models"
	"autocare/services/auth"
	"autocare/services/booking"
	"autocare/services/catalogue"
	"autocare/services/mock"
	"autocare/services/notification"
	"autocare/services/provider"
	"autocare/services/query"
	"autocare/services/user"
	"autocare/services/vehicle"
	"autocare/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	toasts *notification.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cache := query.NewMemoryCache()
	qc := query.NewClient(cache, query.Options{StaleTime: time.Minute}, nil)
	rec := &notification.Recorder{}

	provs := providerRepo.NewStoreProviderRepo(store.NewMemoryTable[models.ProviderRow](database.ProvidersTable), nil)
	users := userRepo.NewStoreUserRepo(store.NewMemoryTable[models.User](database.UsersTable), nil)
	books := bookingRepo.NewStoreBookingRepo(store.NewMemoryTable[models.Booking](database.BookingsTable), nil)
	vehs := vehicleRepo.NewStoreVehicleRepo(store.NewMemoryTable[models.Vehicle](database.VehiclesTable), nil)
	svcs := serviceRepo.NewStoreServiceRepo(store.NewMemoryTable[models.Service](database.ServicesTable), nil)

	userSvc, err := user.NewDefaultUserService(users, qc, rec, nil)
	require.NoError(t, err)
	providerSvc, err := provider.NewDefaultProviderService(provs, qc, mock.NewGenerator(), rec, nil)
	require.NoError(t, err)
	bookingSvc, err := booking.NewDefaultBookingService(books, vehs, provs, mock.NewGenerator(), qc, rec, nil, nil)
	require.NoError(t, err)
	vehicleSvc, err := vehicle.NewDefaultVehicleService(vehs, qc, rec, nil)
	require.NoError(t, err)
	catalogueSvc, err := catalogue.NewDefaultCatalogueService(svcs, provs, qc, rec, nil)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.Options{
		Secret:           []byte("routes-test"),
		RedirectURL:      "http://localhost:8080/api/auth/oauth/{provider}/callback",
		AllowedRedirects: []string{"https://app.example.com/auth/"},
		OAuth:            map[string]auth.OAuthClient{"google": {ClientID: "google-client", ClientSecret: "shh"}},
	}, cache, nil)
	require.NoError(t, err)

	hb := &handlers.HandlerBundle{
		Auth:          &handlers.AuthHandler{Users: userSvc, Auth: authSvc},
		Providers:     &handlers.ProviderHandler{Providers: providerSvc},
		Bookings:      &handlers.BookingHandler{Bookings: bookingSvc},
		Vehicles:      &handlers.VehicleHandler{Vehicles: vehicleSvc},
		Catalogue:     &handlers.CatalogueHandler{Catalogue: catalogueSvc},
		Users:         &handlers.UserHandler{Users: userSvc},
		Geolocation:   &handlers.GeolocationHandler{Notifier: rec},
		Notifications: handlers.NewNotificationHandler(notification.NewHub(nil)),
		Health:        &handlers.HealthHandler{Monitor: utils.NewHealthMonitor(nil)},
	}

	r := gin.New()
	r.Use(utils.ErrorHandler())
	RegisterRoutes(r, hb, Guards{Sessions: authSvc, RateLimiter: middleware.NewRateLimiter(10000)})
	return &testServer{router: r, toasts: rec}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type sessionBody struct {
	Session auth.Session      `json:"session"`
	User    models.PublicUser `json:"user"`
}

func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "s3cret-pass", "name": "Test Driver",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[sessionBody](t, w).Session.Token
}

func TestBookingFlowAgainstMockProviders(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "driver@example.com")

	w := s.do(t, http.MethodGet, "/api/providers?location=Austin,%20TX", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	lookup := decode[provider.LookupResult](t, w)
	assert.Equal(t, provider.SourceMock, lookup.Source)
	require.NotEmpty(t, lookup.Providers)
	chosen := lookup.Providers[0]

	w = s.do(t, http.MethodPost, "/api/vehicles", token, models.VehicleInput{
		Make: "Honda", Model: "Civic", Year: 2019, LicensePlate: "abc123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	car := decode[models.Vehicle](t, w)

	w = s.do(t, http.MethodPost, "/api/bookings", token, models.BookingRequest{
		ServiceType: "Oil Change",
		Date:        "2030-01-15",
		Time:        "10:00",
		VehicleID:   car.ID,
		ProviderID:  chosen.ID,
		Provider:    &chosen,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Booking](t, w)
	assert.Equal(t, models.BookingPending, created.Status)
	assert.Equal(t, chosen.Name, created.Provider.Name)

	w = s.do(t, http.MethodGet, "/api/bookings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Booking](t, w), 1)

	w = s.do(t, http.MethodPatch, "/api/bookings/"+created.ID, token, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.BookingConfirmed, decode[models.Booking](t, w).Status)

	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BookingCancelled, decode[models.Booking](t, w).Status)
}

func TestErrorResponsesUseToastShape(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "driver@example.com")

	w := s.do(t, http.MethodGet, "/api/bookings/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode[utils.ErrorResponse](t, w)
	assert.Equal(t, "Not found", body.Title)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/vehicles", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/users", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/vehicles", token, map[string]any{"make": "Honda"}).Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", "", models.SignInRequest{Email: "driver@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "invalid email or password")
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "driver@example.com")

	w := s.do(t, http.MethodGet, "/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "driver@example.com", decode[sessionBody](t, w).User.Email)

	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/auth/session", token, nil).Code)
}

func TestGeolocationWithoutLocatorReportsUnavailable(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "driver@example.com")

	w := s.do(t, http.MethodGet, "/api/geolocation", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available":false}`, w.Body.String())

	all := s.toasts.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "Location unavailable", all[len(all)-1].Title)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/health", "", nil).Code)
}

func TestOAuthStartAndCallbackGuards(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/auth/oauth/google?redirect_to="+url.QueryEscape("https://evil.example.net/steal"), "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/oauth/google?redirect_to="+url.QueryEscape("https://app.example.com/auth/done"), "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	start := decode[struct {
		URL string `json:"url"`
	}](t, w)
	authorize, err := url.Parse(start.URL)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/auth/oauth/google/callback", authorize.Query().Get("redirect_uri"))
	state := authorize.Query().Get("state")
	require.NotEmpty(t, state)

	w = s.do(t, http.MethodGet, "/api/auth/oauth/google/callback?state=never-issued&code=abc", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/oauth/google/callback?error=access_denied&state="+state, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/oauth/github/callback?code=abc&state="+state, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
