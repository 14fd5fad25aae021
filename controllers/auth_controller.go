package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"booking-backend/middleware"
	"booking-backend/models"
	"booking-backend/services"
	"booking-backend/utils"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	Auth   Authenticator
	Secret string
	TTL    time.Duration
}

func NewAuthController(auth Authenticator, secret string, ttl time.Duration) *AuthController {
	return &AuthController{Auth: auth, Secret: secret, TTL: ttl}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload) {
		return
	}

	u, err := ac.Auth.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "invalid credentials")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	token, err := middleware.IssueToken(ac.Secret, u.ID, string(u.Role), ac.TTL, now)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": now.Add(ac.TTL).UTC(),
		"user":      u,
	})
}
