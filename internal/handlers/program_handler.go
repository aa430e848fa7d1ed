package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/devenirpromoteur/realify-api/internal/errors"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/program"
)

// ProgramHandler computes building program summaries. The program lives in
// the client; nothing here touches storage.
type ProgramHandler struct{}

// NewProgramHandler creates a new ProgramHandler instance.
func NewProgramHandler() *ProgramHandler {
	return &ProgramHandler{}
}

// ProgramEntryRequest represents one building of the submitted program.
type ProgramEntryRequest struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Footprint               float64 `json:"footprint" binding:"gte=0"`
	Levels                  int     `json:"levels" binding:"gte=0"`
	AtticCoefficient        float64 `json:"atticCoefficient"`
	FloorAreaCoefficient    float64 `json:"floorAreaCoefficient" binding:"gte=0"`
	SocialHousingPercentage float64 `json:"socialHousingPercentage" binding:"gte=0,lte=100"`
}

// ProgramSummaryRequest represents the body for the summary endpoint.
type ProgramSummaryRequest struct {
	Entries []ProgramEntryRequest `json:"entries" binding:"dive"`
	Config  models.ProgramConfig  `json:"config" binding:"required"`
}

// Summarize handles POST /api/v1/program/summary.
// It recomputes every building's floor areas and aggregates them into market
// and social tenure summaries.
func (h *ProgramHandler) Summarize(c *gin.Context) {
	var req ProgramSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	entries := make([]models.BuildingProgramEntry, len(req.Entries))
	for i, e := range req.Entries {
		if !models.ValidAtticCoefficient(e.AtticCoefficient) {
			apierrors.BadRequest(c, "atticCoefficient must be 0, 0.45 or 0.85", map[string]interface{}{
				"entry": e.ID,
			})
			return
		}
		entries[i] = models.BuildingProgramEntry{
			ID:                      e.ID,
			Name:                    e.Name,
			Footprint:               e.Footprint,
			Levels:                  e.Levels,
			AtticCoefficient:        e.AtticCoefficient,
			FloorAreaCoefficient:    e.FloorAreaCoefficient,
			SocialHousingPercentage: e.SocialHousingPercentage,
		}
	}

	c.JSON(http.StatusOK, program.Summarize(entries, req.Config))
}
