package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/devenirpromoteur/realify-api/internal/errors"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/store"
	"github.com/devenirpromoteur/realify-api/internal/valuation"
)

// ExistingValueHandler handles the existing-value table of a fiche through
// its synchronized store.
type ExistingValueHandler struct {
	manager *store.Manager
}

// NewExistingValueHandler creates a new ExistingValueHandler instance.
func NewExistingValueHandler(manager *store.Manager) *ExistingValueHandler {
	return &ExistingValueHandler{
		manager: manager,
	}
}

// AddEntryRequest represents the optional body for creating an entry.
type AddEntryRequest struct {
	ParcelID string `json:"parcelId"`
}

// ExistingValuePatch represents a partial update; absent fields are left
// unchanged.
type ExistingValuePatch struct {
	PropertyType            *string  `json:"propertyType" binding:"omitempty,oneof=housing parking other"`
	SurfaceOrCount          *float64 `json:"surfaceOrCount" binding:"omitempty,gte=0"`
	DepreciationCoefficient *float64 `json:"depreciationCoefficient" binding:"omitempty,gte=0"`
	PricePerUnit            *float64 `json:"pricePerUnit" binding:"omitempty,gte=0"`
	CapRate                 *float64 `json:"capRate" binding:"omitempty,gte=0"`
	ConditionCoefficient    *float64 `json:"conditionCoefficient" binding:"omitempty,gte=0"`
	ExternalReferenceValue  *float64 `json:"externalReferenceValue" binding:"omitempty,gte=0"`
}

// AssignParcelRequest represents the body for linking an entry to a parcel.
type AssignParcelRequest struct {
	ParcelID string `json:"parcelId" binding:"required"`
}

// ExistingValueListResponse represents the list endpoint response, sync state
// included so clients can surface in-flight writes and fetch failures.
type ExistingValueListResponse struct {
	Entries    []models.ExistingValueEntry `json:"entries"`
	Count      int                         `json:"count"`
	SavingID   string                      `json:"savingId,omitempty"`
	DeletingID string                      `json:"deletingId,omitempty"`
	LastError  string                      `json:"lastError,omitempty"`
}

// List handles GET /api/v1/fiches/:ficheId/existing-values.
func (h *ExistingValueHandler) List(c *gin.Context) {
	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	s := set.ExistingValues
	c.JSON(http.StatusOK, ExistingValueListResponse{
		Entries:    s.Entries(),
		Count:      len(s.Entries()),
		SavingID:   s.SavingID(),
		DeletingID: s.DeletingID(),
		LastError:  s.LastError(),
	})
}

// Totals handles GET /api/v1/fiches/:ficheId/existing-values/totals.
func (h *ExistingValueHandler) Totals(c *gin.Context) {
	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, valuation.Aggregate(set.ExistingValues.Entries()))
}

// Add handles POST /api/v1/fiches/:ficheId/existing-values.
func (h *ExistingValueHandler) Add(c *gin.Context) {
	var req AddEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body", nil)
			return
		}
	}

	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	created, err := set.ExistingValues.Add(c.Request.Context(), req.ParcelID)
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PATCH /api/v1/fiches/:ficheId/existing-values/:entryId.
func (h *ExistingValueHandler) Update(c *gin.Context) {
	var req ExistingValuePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	updated, err := set.ExistingValues.Update(c.Request.Context(), c.Param("entryId"), func(e models.ExistingValueEntry) models.ExistingValueEntry {
		if req.PropertyType != nil {
			e.PropertyType = models.PropertyType(*req.PropertyType)
		}
		if req.SurfaceOrCount != nil {
			e.SurfaceOrCount = req.SurfaceOrCount
		}
		if req.DepreciationCoefficient != nil {
			e.DepreciationCoefficient = req.DepreciationCoefficient
		}
		if req.PricePerUnit != nil {
			e.PricePerUnit = req.PricePerUnit
		}
		if req.CapRate != nil {
			e.CapRate = req.CapRate
		}
		if req.ConditionCoefficient != nil {
			e.ConditionCoefficient = req.ConditionCoefficient
		}
		if req.ExternalReferenceValue != nil {
			e.ExternalReferenceValue = req.ExternalReferenceValue
		}
		return e
	})
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AssignParcel handles PATCH /api/v1/fiches/:ficheId/existing-values/:entryId/parcel.
func (h *ExistingValueHandler) AssignParcel(c *gin.Context) {
	var req AssignParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	updated, err := set.ExistingValues.AssignParcel(c.Request.Context(), c.Param("entryId"), req.ParcelID)
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/fiches/:ficheId/existing-values/:entryId.
func (h *ExistingValueHandler) Delete(c *gin.Context) {
	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	if err := set.ExistingValues.Delete(c.Request.Context(), c.Param("entryId")); err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
