package program

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devenirpromoteur/realify-api/internal/models"
)

func TestComputeFloorArea(t *testing.T) {
	// (100*3 + 100*0.45) * 0.85 = 293.25
	assert.InDelta(t, 293.25, ComputeFloorArea(100, 3, 0.45, 0.85), 1e-9)
}

func TestComputeFloorArea_NoAttic(t *testing.T) {
	assert.InDelta(t, 500, ComputeFloorArea(250, 2, 0, 1.0), 1e-9)
}

func TestDerive(t *testing.T) {
	e := models.BuildingProgramEntry{
		Footprint:               100,
		Levels:                  3,
		AtticCoefficient:        0.45,
		FloorAreaCoefficient:    0.85,
		SocialHousingPercentage: 30,
	}
	d := Derive(e)
	assert.InDelta(t, 293.25, d.FloorArea, 1e-9)
	assert.InDelta(t, 87.975, d.SocialFloorArea, 1e-9)
	// input untouched
	assert.Zero(t, e.FloorArea)
}

func TestUnitCount_RoundHalfUp(t *testing.T) {
	// 1000/60 = 16.67 -> 17
	assert.Equal(t, 17, unitCount(1000, 60))
	// exact half rounds up
	assert.Equal(t, 8, unitCount(750, 100))
	assert.Equal(t, 0, unitCount(1000, 0))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 2, roundHalfUp(1.5))
	assert.Equal(t, 1, roundHalfUp(1.49))
	assert.Equal(t, -1, roundHalfUp(-1.5))
}

func TestSummarize(t *testing.T) {
	entries := []models.BuildingProgramEntry{
		{Footprint: 100, Levels: 3, AtticCoefficient: 0.45, FloorAreaCoefficient: 0.85, SocialHousingPercentage: 30},
		{Footprint: 200, Levels: 4, AtticCoefficient: 0, FloorAreaCoefficient: 1.0, SocialHousingPercentage: 0},
	}
	cfg := models.ProgramConfig{
		ShabCoefficientMarket:     0.9,
		ShabCoefficientSocial:     0.85,
		AvgUnitSurfaceMarket:      60,
		AvgUnitSurfaceSocial:      55,
		ParkingIndoorRatioMarket:  1.0,
		ParkingOutdoorRatioMarket: 0.5,
		ParkingIndoorRatioSocial:  0.5,
		ParkingOutdoorRatioSocial: 0.5,
	}

	s := Summarize(entries, cfg)

	// entry areas: 293.25 and 800
	assert.InDelta(t, 1093.25, s.TotalFloorArea, 1e-9)
	assert.InDelta(t, 87.975, s.Social.FloorArea, 1e-9)
	assert.InDelta(t, 1005.275, s.Market.FloorArea, 1e-9)

	assert.InDelta(t, 904.7475, s.Market.LivableArea, 1e-9)
	assert.InDelta(t, 74.77875, s.Social.LivableArea, 1e-9)

	// 904.7475/60 = 15.08 -> 15 ; 74.77875/55 = 1.36 -> 1
	assert.Equal(t, 15, s.Market.Units)
	assert.Equal(t, 1, s.Social.Units)

	// parking consumes rounded units
	assert.Equal(t, 15, s.Market.ParkingIndoor)
	assert.Equal(t, 8, s.Market.ParkingOutdoor) // 7.5 -> 8
	assert.Equal(t, 1, s.Social.ParkingIndoor)  // 0.5 -> 1
	assert.Equal(t, 1, s.Social.ParkingOutdoor)

	// derived entries returned with areas filled in
	assert.InDelta(t, 293.25, s.Entries[0].FloorArea, 1e-9)
	assert.InDelta(t, 800, s.Entries[1].FloorArea, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, models.ProgramConfig{AvgUnitSurfaceMarket: 60, AvgUnitSurfaceSocial: 55})
	assert.Zero(t, s.TotalFloorArea)
	assert.Zero(t, s.Market.Units)
	assert.Zero(t, s.Social.Units)
	assert.Empty(t, s.Entries)
}
