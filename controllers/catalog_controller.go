package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booking-backend/services"
	"booking-backend/utils"
)

// CatalogController serves the small lookup tables: facilities, property types and locations.
type CatalogController struct {
	FacilitySvc     *services.FacilityService
	PropertyTypeSvc *services.PropertyTypeService
	LocationSvc     *services.LocationService
}

func NewCatalogController(f *services.FacilityService, pt *services.PropertyTypeService, l *services.LocationService) *CatalogController {
	return &CatalogController{FacilitySvc: f, PropertyTypeSvc: pt, LocationSvc: l}
}

type facilityRequest struct {
	Name string  `json:"name" binding:"required"`
	Icon *string `json:"icon"`
}

type propertyTypeRequest struct {
	Name string `json:"name" binding:"required"`
}

type locationRequest struct {
	Country string `json:"country" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"address"`
}

// ----------------------------------------------------
// Facilities
// ----------------------------------------------------

func (cc *CatalogController) ListFacilities(c *gin.Context) {
	out, err := cc.FacilitySvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

func (cc *CatalogController) CreateFacility(c *gin.Context) {
	var req facilityRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := cc.FacilitySvc.Create(c.Request.Context(), services.FacilityInput{Name: req.Name, Icon: req.Icon})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Facility created", f)
}

func (cc *CatalogController) UpdateFacility(c *gin.Context) {
	var req facilityRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := cc.FacilitySvc.Update(c.Request.Context(), c.Param("id"), services.FacilityInput{Name: req.Name, Icon: req.Icon})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Facility updated", f)
}

func (cc *CatalogController) DeleteFacility(c *gin.Context) {
	if err := cc.FacilitySvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Facility deleted", nil)
}

// ----------------------------------------------------
// Property types
// ----------------------------------------------------

func (cc *CatalogController) ListPropertyTypes(c *gin.Context) {
	out, err := cc.PropertyTypeSvc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

func (cc *CatalogController) CreatePropertyType(c *gin.Context) {
	var req propertyTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	pt, err := cc.PropertyTypeSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Property type created", pt)
}

func (cc *CatalogController) UpdatePropertyType(c *gin.Context) {
	var req propertyTypeRequest
	if !bindJSON(c, &req) {
		return
	}
	pt, err := cc.PropertyTypeSvc.Update(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Property type updated", pt)
}

func (cc *CatalogController) DeletePropertyType(c *gin.Context) {
	if err := cc.PropertyTypeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Property type deleted", nil)
}

// ----------------------------------------------------
// Locations
// ----------------------------------------------------

func (cc *CatalogController) ListLocations(c *gin.Context) {
	out, err := cc.LocationSvc.List(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

func (cc *CatalogController) CreateLocation(c *gin.Context) {
	var req locationRequest
	if !bindJSON(c, &req) {
		return
	}
	loc, err := cc.LocationSvc.Create(c.Request.Context(), services.LocationInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, "Location created", loc)
}

func (cc *CatalogController) UpdateLocation(c *gin.Context) {
	var req locationRequest
	if !bindJSON(c, &req) {
		return
	}
	loc, err := cc.LocationSvc.Update(c.Request.Context(), c.Param("id"), services.LocationInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Location updated", loc)
}

func (cc *CatalogController) DeleteLocation(c *gin.Context) {
	if err := cc.LocationSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Location deleted", nil)
}
