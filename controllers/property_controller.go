package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"booking-backend/middleware"
	"booking-backend/models"
	"booking-backend/services"
	"booking-backend/utils"
)

type propertyRequest struct {
	Title                string                `json:"title" binding:"required"`
	Description          string                `json:"description"`
	TypeID               string                `json:"typeId" binding:"required"`
	LocationID           string                `json:"locationId" binding:"required"`
	MaxGuests            int                   `json:"maxGuests" binding:"required,gte=1"`
	Bedrooms             int                   `json:"bedrooms" binding:"gte=0"`
	Beds                 int                   `json:"beds" binding:"gte=0"`
	Bathrooms            int                   `json:"bathrooms" binding:"gte=0"`
	MinNights            int                   `json:"minNights"`
	MaxNights            *int                  `json:"maxNights"`
	BasePricePerNightIdr int64                 `json:"basePricePerNightIdr" binding:"gte=0"`
	Status               models.PropertyStatus `json:"status"`
	FacilityIDs          []string              `json:"facilityIds"`
}

func (r propertyRequest) input(adminID string) services.PropertyInput {
	in := services.PropertyInput{
		AdminUserID:          adminID,
		Title:                r.Title,
		Description:          r.Description,
		TypeID:               r.TypeID,
		LocationID:           r.LocationID,
		MaxGuests:            r.MaxGuests,
		Bedrooms:             r.Bedrooms,
		Beds:                 r.Beds,
		Bathrooms:            r.Bathrooms,
		MinNights:            r.MinNights,
		MaxNights:            r.MaxNights,
		BasePricePerNightIdr: r.BasePricePerNightIdr,
		Status:               models.PropertyStatus(strings.ToUpper(string(r.Status))),
		FacilityIDs:          utils.NormalizeIDs(r.FacilityIDs),
	}
	if in.MinNights == 0 {
		in.MinNights = 1
	}
	return in
}

type PropertyController struct {
	PropertySvc *services.PropertyService
	RoomSvc     *services.RoomService
}

func NewPropertyController(props *services.PropertyService, rooms *services.RoomService) *PropertyController {
	return &PropertyController{PropertySvc: props, RoomSvc: rooms}
}

// propertyFilter reads the listing filter from the query string.
func propertyFilter(c *gin.Context) (services.PropertyFilter, bool) {
	var f services.PropertyFilter
	optString := func(key string) *string {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			return &v
		}
		return nil
	}
	if s := optString("status"); s != nil {
		st := models.PropertyStatus(strings.ToUpper(*s))
		if !st.Valid() {
			badRequest(c, "status must be DRAFT, ACTIVE or INACTIVE")
			return f, false
		}
		f.Status = &st
	}
	f.LocationID = optString("locationId")
	f.TypeID = optString("typeId")
	f.AdminUserID = optString("adminUserId")

	ints := []struct {
		key string
		set func(int64)
	}{
		{"minPrice", func(v int64) { f.MinPrice = &v }},
		{"maxPrice", func(v int64) { f.MaxPrice = &v }},
		{"minGuests", func(v int64) { n := int(v); f.MinGuests = &n }},
		{"page", func(v int64) { f.Page = int(v) }},
		{"limit", func(v int64) { f.Limit = int(v) }},
	}
	for _, p := range ints {
		raw := optString(p.key)
		if raw == nil {
			continue
		}
		v, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil || v < 0 {
			badRequest(c, p.key+" must be a non-negative number")
			return f, false
		}
		p.set(v)
	}
	return f.Normalize(), true
}

// ---------------------------
// GET /api/properties
// ---------------------------
func (pc *PropertyController) List(c *gin.Context) {
	f, ok := propertyFilter(c)
	if !ok {
		return
	}
	props, total, err := pc.PropertySvc.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONPage(c, http.StatusOK, props, f.Page, f.Limit, total)
}

// ---------------------------
// GET /api/properties/:id
// ---------------------------
func (pc *PropertyController) Get(c *gin.Context) {
	p, err := pc.PropertySvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, p)
}

// ---------------------------
// GET /api/properties/:id/rooms
// ---------------------------
func (pc *PropertyController) Rooms(c *gin.Context) {
	rooms, err := pc.RoomSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// ---------------------------
// POST /api/properties
// ---------------------------
func (pc *PropertyController) Create(c *gin.Context) {
	var req propertyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := pc.PropertySvc.Create(c.Request.Context(), req.input(middleware.UserID(c)))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Property created", p)
}

// ---------------------------
// PUT /api/properties/:id
// ---------------------------
func (pc *PropertyController) Update(c *gin.Context) {
	var req propertyRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := pc.PropertySvc.Update(c.Request.Context(), c.Param("id"), req.input(""))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Property updated", p)
}

// ---------------------------
// DELETE /api/properties/:id
// ---------------------------
func (pc *PropertyController) Delete(c *gin.Context) {
	if err := pc.PropertySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Property deleted", nil)
}
