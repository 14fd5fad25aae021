package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"booking-backend/models"
	"booking-backend/services"
	"booking-backend/utils"
)

type peakSeasonRequest struct {
	StartDate       string                `json:"startDate" binding:"required"`
	EndDate         string                `json:"endDate" binding:"required"`
	AdjustmentType  models.AdjustmentType `json:"adjustmentType" binding:"required"`
	AdjustmentValue *float64              `json:"adjustmentValue" binding:"required"`
	Note            *string               `json:"note"`
	IsActive        *bool                 `json:"isActive"`
}

type bulkPeakSeasonRequest struct {
	Rates []peakSeasonRequest `json:"rates" binding:"required,min=1,dive"`
}

type peakSeasonUpdateRequest struct {
	StartDate       *string                `json:"startDate"`
	EndDate         *string                `json:"endDate"`
	AdjustmentType  *models.AdjustmentType `json:"adjustmentType"`
	AdjustmentValue *float64               `json:"adjustmentValue"`
	Note            *string                `json:"note"`
	IsActive        *bool                  `json:"isActive"`
}

func (r peakSeasonRequest) input(c *gin.Context) (services.PeakSeasonRateInput, bool) {
	start, ok := parseDate(c, "startDate", r.StartDate)
	if !ok {
		return services.PeakSeasonRateInput{}, false
	}
	end, ok := parseDate(c, "endDate", r.EndDate)
	if !ok {
		return services.PeakSeasonRateInput{}, false
	}
	return services.PeakSeasonRateInput{
		StartDate:       start,
		EndDate:         end,
		AdjustmentType:  r.AdjustmentType,
		AdjustmentValue: *r.AdjustmentValue,
		Note:            r.Note,
		IsActive:        r.IsActive,
	}, true
}

type PeakSeasonController struct {
	PeakSvc *services.PeakSeasonService
}

func NewPeakSeasonController(svc *services.PeakSeasonService) *PeakSeasonController {
	return &PeakSeasonController{PeakSvc: svc}
}

// GET /api/rooms/:id/peak-season?includeInactive=true
func (pc *PeakSeasonController) List(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	rates, err := pc.PeakSvc.List(c.Request.Context(), c.Param("id"), includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rates)
}

// GET /api/peak-season/:id
func (pc *PeakSeasonController) Get(c *gin.Context) {
	rate, err := pc.PeakSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rate)
}

// POST /api/rooms/:id/peak-season
func (pc *PeakSeasonController) Create(c *gin.Context) {
	var req peakSeasonRequest
	if !bindJSON(c, &req) {
		return
	}
	in, ok := req.input(c)
	if !ok {
		return
	}
	rate, err := pc.PeakSvc.Create(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Peak season rate created", rate)
}

// POST /api/rooms/:id/peak-season/bulk
func (pc *PeakSeasonController) BulkCreate(c *gin.Context) {
	var req bulkPeakSeasonRequest
	if !bindJSON(c, &req) {
		return
	}
	items := make([]services.PeakSeasonRateInput, 0, len(req.Rates))
	for _, r := range req.Rates {
		in, ok := r.input(c)
		if !ok {
			return
		}
		items = append(items, in)
	}
	rates, err := pc.PeakSvc.BulkCreate(c.Request.Context(), c.Param("id"), items)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Peak season rates created", rates)
}

// PUT /api/peak-season/:id
func (pc *PeakSeasonController) Update(c *gin.Context) {
	var req peakSeasonUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	start, ok := parseOptionalDate(c, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := parseOptionalDate(c, "endDate", req.EndDate)
	if !ok {
		return
	}
	rate, err := pc.PeakSvc.Update(c.Request.Context(), c.Param("id"), services.PeakSeasonRateUpdate{
		StartDate:       start,
		EndDate:         end,
		AdjustmentType:  req.AdjustmentType,
		AdjustmentValue: req.AdjustmentValue,
		Note:            req.Note,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Peak season rate updated", rate)
}

// DELETE /api/peak-season/:id
func (pc *PeakSeasonController) Delete(c *gin.Context) {
	if err := pc.PeakSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Peak season rate deleted", nil)
}
