package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"booking-backend/utils"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// Claims is the access token payload: sub carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth requires a valid HS256 bearer token and stores the user id and role in the context.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, "error.unauthorized", "missing bearer token")
			return
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			utils.AbortJSONError(c, http.StatusUnauthorized, "error.unauthorized", msg)
			return
		}
		if claims.Subject == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, "error.unauthorized", "token has no subject")
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(roleKey, strings.ToUpper(claims.Role))
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				c.Next()
				return
			}
		}
		utils.AbortJSONError(c, http.StatusForbidden, "error.forbidden", "insufficient role")
	}
}

func UserID(c *gin.Context) string { return c.GetString(userIDKey) }

func Role(c *gin.Context) string { return c.GetString(roleKey) }

// IssueToken signs an HS256 access token for userID that expires after ttl.
func IssueToken(secret, userID, role string, ttl time.Duration, now time.Time) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return tok.SignedString([]byte(secret))
}
