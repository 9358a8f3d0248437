package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"autocare/database/repository"
	"autocare/models"
	"autocare/services/auth"
	"autocare/services/provider"
	"autocare/services/user"
	"autocare/services/vehicle"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&repository.NotFoundError{Table: "bookings", ID: "b"}, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", &repository.NotFoundError{}), http.StatusNotFound},
		{&models.ValidationError{Field: "date"}, http.StatusBadRequest},
		{&auth.UnknownProviderError{Provider: "myspace"}, http.StatusBadRequest},
		{vehicle.ErrNotOwner, http.StatusForbidden},
		{&models.ForbiddenError{}, http.StatusForbidden},
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{&auth.SessionError{Reason: "expired"}, http.StatusUnauthorized},
		{user.ErrEmailTaken, http.StatusConflict},
		{&provider.FallbackExhaustedError{Err: errors.New("boom")}, http.StatusServiceUnavailable},
		{&repository.RemoteStoreError{Err: errors.New("boom")}, http.StatusBadGateway},
		{&auth.OAuthProviderError{Provider: "google", Err: errors.New("invalid_grant")}, http.StatusBadGateway},
		{auth.ErrOAuthState, http.StatusUnauthorized},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), "%v", tc.err)
	}
}

func TestRespondErrorHidesErrorText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, "create the booking", &repository.RemoteStoreError{Table: "bookings", Op: "insert", Err: errors.New("pq: connection reset")})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Contains(t, w.Body.String(), `"title":"Something went wrong"`)
}
