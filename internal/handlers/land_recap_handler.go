package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/devenirpromoteur/realify-api/internal/errors"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/store"
)

// LandRecapHandler handles the land-recap table of a fiche through its
// synchronized store.
type LandRecapHandler struct {
	manager *store.Manager
}

// NewLandRecapHandler creates a new LandRecapHandler instance.
func NewLandRecapHandler(manager *store.Manager) *LandRecapHandler {
	return &LandRecapHandler{
		manager: manager,
	}
}

// LandRecapPatch represents a partial update; absent fields are left
// unchanged.
type LandRecapPatch struct {
	OccupationType *string `json:"occupationType" binding:"omitempty,oneof=bare_land commercial residential office warehouse industrial other"`
	OwnerStatus    *string `json:"ownerStatus" binding:"omitempty,oneof=legal_entity natural_person joint_ownership sci co_ownership other"`
	OwnerName      *string `json:"ownerName"`
	Notes          *string `json:"notes"`
	ResidentStatus *string `json:"residentStatus" binding:"omitempty,oneof=tenants owner_occupiers vacant other"`
}

// LandRecapListResponse represents the list endpoint response with sync state.
type LandRecapListResponse struct {
	Entries    []models.LandRecapEntry `json:"entries"`
	Count      int                     `json:"count"`
	SavingID   string                  `json:"savingId,omitempty"`
	DeletingID string                  `json:"deletingId,omitempty"`
	LastError  string                  `json:"lastError,omitempty"`
}

// List handles GET /api/v1/fiches/:ficheId/land-recaps.
func (h *LandRecapHandler) List(c *gin.Context) {
	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	s := set.LandRecaps
	c.JSON(http.StatusOK, LandRecapListResponse{
		Entries:    s.Entries(),
		Count:      len(s.Entries()),
		SavingID:   s.SavingID(),
		DeletingID: s.DeletingID(),
		LastError:  s.LastError(),
	})
}

// Add handles POST /api/v1/fiches/:ficheId/land-recaps.
func (h *LandRecapHandler) Add(c *gin.Context) {
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

	created, err := set.LandRecaps.Add(c.Request.Context(), req.ParcelID)
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PATCH /api/v1/fiches/:ficheId/land-recaps/:entryId.
func (h *LandRecapHandler) Update(c *gin.Context) {
	var req LandRecapPatch
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

	updated, err := set.LandRecaps.Update(c.Request.Context(), c.Param("entryId"), func(e models.LandRecapEntry) models.LandRecapEntry {
		if req.OccupationType != nil {
			e.OccupationType = models.OccupationType(*req.OccupationType)
		}
		if req.OwnerStatus != nil {
			e.OwnerStatus = models.OwnerStatus(*req.OwnerStatus)
		}
		if req.OwnerName != nil {
			e.OwnerName = *req.OwnerName
		}
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		if req.ResidentStatus != nil {
			e.ResidentStatus = models.ResidentStatus(*req.ResidentStatus)
		}
		return e
	})
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// AssignParcel handles PATCH /api/v1/fiches/:ficheId/land-recaps/:entryId/parcel.
func (h *LandRecapHandler) AssignParcel(c *gin.Context) {
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

	updated, err := set.LandRecaps.AssignParcel(c.Request.Context(), c.Param("entryId"), req.ParcelID)
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/fiches/:ficheId/land-recaps/:entryId.
func (h *LandRecapHandler) Delete(c *gin.Context) {
	set, err := h.manager.ForFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	if err := set.LandRecaps.Delete(c.Request.Context(), c.Param("entryId")); err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
