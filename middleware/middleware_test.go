package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, sub, role string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "role": Role(c)})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	w := get(protectedRouter(), signToken(t, testSecret, "user-1", "user", time.Now().Add(time.Hour)))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["user"])
	assert.Equal(t, "USER", body["role"])
}

func TestIssuedTokenPassesAuth(t *testing.T) {
	tok, err := IssueToken(testSecret, "admin-1", "ADMIN", time.Hour, time.Now())
	require.NoError(t, err)

	w := get(protectedRouter(RequireRole("ADMIN")), tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin-1")

	stale, err := IssueToken(testSecret, "admin-1", "ADMIN", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(protectedRouter(), stale).Code)
}

func TestAuthRejects(t *testing.T) {
	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"wrong secret": signToken(t, "other", "user-1", "USER", time.Now().Add(time.Hour)),
		"expired":      signToken(t, testSecret, "user-1", "USER", time.Now().Add(-time.Minute)),
		"no subject":   signToken(t, testSecret, "", "USER", time.Now().Add(time.Hour)),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			w := get(protectedRouter(), token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "error.unauthorized")
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(RequireRole("ADMIN"))

	w := get(r, signToken(t, testSecret, "user-1", "USER", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, signToken(t, testSecret, "admin-1", "ADMIN", time.Now().Add(time.Hour)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), StructuredLogger(logger), Recovery(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/ok?x=1", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	assert.Contains(t, buf.String(), `"path":"/ok?x=1"`)

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), "error.internal")
	assert.Contains(t, buf.String(), "panic recovered")
}
