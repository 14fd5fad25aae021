package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"booking-backend/services"
	"booking-backend/utils"
)

type roomRequest struct {
	PropertyID           string   `json:"propertyId" binding:"required"`
	Name                 string   `json:"name" binding:"required"`
	Description          string   `json:"description"`
	MaxGuests            int      `json:"maxGuests" binding:"required,gte=1"`
	Beds                 int      `json:"beds" binding:"gte=0"`
	Bathrooms            int      `json:"bathrooms" binding:"gte=0"`
	BasePricePerNightIdr int64    `json:"basePricePerNightIdr" binding:"gte=0"`
	FacilityIDs          []string `json:"facilityIds"`
}

func (r roomRequest) input() services.RoomInput {
	return services.RoomInput{
		PropertyID:           r.PropertyID,
		Name:                 strings.TrimSpace(r.Name),
		Description:          r.Description,
		MaxGuests:            r.MaxGuests,
		Beds:                 r.Beds,
		Bathrooms:            r.Bathrooms,
		BasePricePerNightIdr: r.BasePricePerNightIdr,
		FacilityIDs:          utils.NormalizeIDs(r.FacilityIDs),
	}
}

type RoomController struct {
	RoomSvc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{RoomSvc: svc}
}

// GET /api/rooms?propertyId=
func (rc *RoomController) List(c *gin.Context) {
	rooms, err := rc.RoomSvc.List(c.Request.Context(), c.Query("propertyId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/rooms/:id
func (rc *RoomController) Get(c *gin.Context) {
	room, err := rc.RoomSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms
func (rc *RoomController) Create(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.RoomSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Room created", room)
}

// PUT /api/rooms/:id
func (rc *RoomController) Update(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	room, err := rc.RoomSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Room updated", room)
}

// DELETE /api/rooms/:id
func (rc *RoomController) Delete(c *gin.Context) {
	if err := rc.RoomSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Room deleted", nil)
}
