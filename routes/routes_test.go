package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-backend/controllers"
	"booking-backend/middleware"
)

const secret = "routes-secret"

func testRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(Options{
		CORSOrigins: origins,
		JWTSecret:   secret,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, Controllers{
		Auth:       &controllers.AuthController{},
		Booking:    &controllers.BookingController{},
		Payment:    &controllers.PaymentController{},
		Property:   &controllers.PropertyController{},
		Room:       &controllers.RoomController{},
		PeakSeason: &controllers.PeakSeasonController{},
		Catalog:    &controllers.CatalogController{},
	})
}

func request(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := middleware.IssueToken(secret, "user-1", role, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func TestHealth(t *testing.T) {
	w := request(testRouter(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := testRouter()
	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/bookings"},
		{http.MethodGet, "/api/bookings/user/me"},
		{http.MethodGet, "/api/bookings/b1"},
		{http.MethodPost, "/api/bookings/b1/cancel"},
		{http.MethodGet, "/api/payments/b1/status"},
		{http.MethodPost, "/api/admin/bookings/expire-overdue"},
		{http.MethodPost, "/api/properties"},
		{http.MethodDelete, "/api/rooms/r1"},
		{http.MethodPut, "/api/peak-season/p1"},
		{http.MethodPost, "/api/locations"},
	}
	for _, tc := range cases {
		w := request(r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
	}
}

func TestAdminRoutesRejectUsers(t *testing.T) {
	r := testRouter()
	user := token(t, "USER")
	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/payments/b1/complete"},
		{http.MethodPost, "/api/admin/bookings/expire-overdue"},
		{http.MethodPost, "/api/properties"},
		{http.MethodPut, "/api/rooms/r1"},
		{http.MethodPost, "/api/rooms/r1/peak-season/bulk"},
		{http.MethodDelete, "/api/facilities/f1"},
		{http.MethodPut, "/api/property-types/t1"},
	}
	for _, tc := range cases {
		w := request(r, tc.method, tc.path, user)
		assert.Equal(t, http.StatusForbidden, w.Code, tc.method+" "+tc.path)
	}
}

func TestAdminReachesHandler(t *testing.T) {
	// an empty body fails binding, which proves the guards let the request through
	w := request(testRouter(), http.MethodPost, "/api/properties", token(t, "ADMIN"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	r := testRouter("https://stay.example.com")
	req := httptest.NewRequest(http.MethodOptions, "/api/bookings", nil)
	req.Header.Set("Origin", "https://stay.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://stay.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
