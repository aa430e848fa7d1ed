package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/devenirpromoteur/realify-api/internal/errors"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/services"
)

// FicheHandler handles fiche (project dossier) HTTP requests.
type FicheHandler struct {
	service services.FicheService
}

// NewFicheHandler creates a new FicheHandler instance.
func NewFicheHandler(service services.FicheService) *FicheHandler {
	return &FicheHandler{
		service: service,
	}
}

// FicheRequest represents the body for creating or updating a fiche.
type FicheRequest struct {
	Name               string  `json:"name" binding:"required"`
	Address            *string `json:"address"`
	CadastralReference *string `json:"cadastralReference"`
}

// FicheListResponse represents the response for the fiche list endpoint.
type FicheListResponse struct {
	Fiches []models.Fiche `json:"fiches"`
	Count  int            `json:"count"`
}

// List handles GET /api/v1/fiches.
func (h *FicheHandler) List(c *gin.Context) {
	fiches, err := h.service.ListFiches(c.Request.Context())
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, FicheListResponse{
		Fiches: fiches,
		Count:  len(fiches),
	})
}

// Get handles GET /api/v1/fiches/:ficheId.
func (h *FicheHandler) Get(c *gin.Context) {
	fiche, err := h.service.GetFiche(c.Request.Context(), c.Param("ficheId"))
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, fiche)
}

// Create handles POST /api/v1/fiches.
func (h *FicheHandler) Create(c *gin.Context) {
	var req FicheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	created, err := h.service.CreateFiche(c.Request.Context(), models.Fiche{
		Name:               req.Name,
		Address:            req.Address,
		CadastralReference: req.CadastralReference,
	})
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/fiches/:ficheId.
func (h *FicheHandler) Update(c *gin.Context) {
	var req FicheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	updated, err := h.service.UpdateFiche(c.Request.Context(), models.Fiche{
		ID:                 c.Param("ficheId"),
		Name:               req.Name,
		Address:            req.Address,
		CadastralReference: req.CadastralReference,
	})
	if err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/fiches/:ficheId.
func (h *FicheHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteFiche(c.Request.Context(), c.Param("ficheId")); err != nil {
		apierrors.FromFault(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
