package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"booking-backend/middleware"
	"booking-backend/models"
	"booking-backend/services"
	"booking-backend/utils"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:      http.StatusBadRequest,
	services.KindNotFound:        http.StatusNotFound,
	services.KindConflict:        http.StatusConflict,
	services.KindForbidden:       http.StatusForbidden,
	services.KindPaymentMismatch: http.StatusUnprocessableEntity,
	services.KindUpstream:        http.StatusBadGateway,
}

// respondError writes the error envelope for err. Internal failures are logged
// and reported without detail.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		slog.Error("request failed",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error")
		return
	}
	if status == http.StatusBadGateway {
		slog.Warn("upstream failure", "request_id", c.GetString("request_id"), "error", err)
	}
	utils.JSONError(c, status, "error."+strings.ToLower(string(kind)), err.Error())
}

func badRequest(c *gin.Context, message string) {
	utils.JSONError(c, http.StatusBadRequest, "error.validation", message)
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return false
	}
	return true
}

func actor(c *gin.Context) services.Actor {
	return services.Actor{UserID: middleware.UserID(c), Role: models.Role(middleware.Role(c))}
}

func parseDate(c *gin.Context, field, raw string) (time.Time, bool) {
	t, err := utils.ParseDate(raw)
	if err != nil {
		badRequest(c, field+": "+err.Error())
		return time.Time{}, false
	}
	return t, true
}

// parseStay parses both stay dates and answers 400 when either is malformed.
func parseStay(c *gin.Context, rawIn, rawOut string) (time.Time, time.Time, bool) {
	in, ok := parseDate(c, "checkIn", rawIn)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	out, ok := parseDate(c, "checkOut", rawOut)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}

func parseOptionalDate(c *gin.Context, field string, raw *string) (*time.Time, bool) {
	if raw == nil {
		return nil, true
	}
	t, ok := parseDate(c, field, *raw)
	if !ok {
		return nil, false
	}
	return &t, true
}
