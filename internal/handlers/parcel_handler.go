package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/devenirpromoteur/realify-api/internal/errors"
	"github.com/devenirpromoteur/realify-api/internal/middleware"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/services"
)

// ParcelHandler handles cadastre parcel HTTP requests.
type ParcelHandler struct {
	service services.ParcelService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
	}
}

// ParcelRequest represents the body for creating or updating a parcel.
type ParcelRequest struct {
	Section    string   `json:"section" binding:"required"`
	PlotNumber string   `json:"plotNumber" binding:"required"`
	Address    *string  `json:"address"`
	Surface    *float64 `json:"surface" binding:"omitempty,gte=0"`
}

// ParcelListResponse represents the response for the parcel list endpoint.
type ParcelListResponse struct {
	Parcels []models.CadastreParcel `json:"parcels"`
	Count   int                     `json:"count"`
}

// List handles GET /api/v1/fiches/:ficheId/parcels.
func (h *ParcelHandler) List(c *gin.Context) {
	parcels, err := h.service.ListParcels(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, ParcelListResponse{
		Parcels: parcels,
		Count:   len(parcels),
	})
}

// Create handles POST /api/v1/fiches/:ficheId/parcels.
func (h *ParcelHandler) Create(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req ParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Creating parcel", map[string]interface{}{
			"fiche_id": c.Param("ficheId"),
			"section":  req.Section,
			"plot":     req.PlotNumber,
		})
	}

	created, err := h.service.CreateParcel(c.Request.Context(), models.CadastreParcel{
		FicheID:    c.Param("ficheId"),
		Section:    req.Section,
		PlotNumber: req.PlotNumber,
		Address:    req.Address,
		Surface:    req.Surface,
	})
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/fiches/:ficheId/parcels/:parcelId.
func (h *ParcelHandler) Update(c *gin.Context) {
	var req ParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	updated, err := h.service.UpdateParcel(c.Request.Context(), models.CadastreParcel{
		ID:         c.Param("parcelId"),
		FicheID:    c.Param("ficheId"),
		Section:    req.Section,
		PlotNumber: req.PlotNumber,
		Address:    req.Address,
		Surface:    req.Surface,
	})
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/fiches/:ficheId/parcels/:parcelId.
func (h *ParcelHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteParcel(c.Request.Context(), c.Param("ficheId"), c.Param("parcelId")); err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
