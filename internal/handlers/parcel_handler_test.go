package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apierrors "github.com/devenirpromoteur/realify-api/internal/errors"
	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/middleware"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// MockParcelService is a mock implementation of services.ParcelService.
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) ListParcels(ctx context.Context, ficheID string) ([]models.CadastreParcel, error) {
	args := m.Called(ctx, ficheID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CadastreParcel), args.Error(1)
}

func (m *MockParcelService) CreateParcel(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.CadastreParcel), args.Error(1)
}

func (m *MockParcelService) UpdateParcel(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(models.CadastreParcel), args.Error(1)
}

func (m *MockParcelService) DeleteParcel(ctx context.Context, ficheID, id string) error {
	args := m.Called(ctx, ficheID, id)
	return args.Error(0)
}

// setupParcelTestRouter creates a test router with middleware and parcel routes.
func setupParcelTestRouter(handler *ParcelHandler, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	// Register routes
	v1 := router.Group("/api/v1")
	{
		parcels := v1.Group("/fiches/:ficheId/parcels")
		{
			parcels.GET("", handler.List)
			parcels.POST("", handler.Create)
			parcels.PUT("/:parcelId", handler.Update)
			parcels.DELETE("/:parcelId", handler.Delete)
		}
	}

	return router
}

func TestParcelHandler_List(t *testing.T) {
	mockService := new(MockParcelService)
	handler := NewParcelHandler(mockService)
	router := setupParcelTestRouter(handler, logger.New("test"))

	parcels := []models.CadastreParcel{
		{ID: "p-1", FicheID: "fiche-1", Section: "AB", PlotNumber: "0042"},
		{ID: "p-2", FicheID: "fiche-1", Section: "AC", PlotNumber: "0007"},
	}
	mockService.On("ListParcels", mock.Anything, "fiche-1").Return(parcels, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fiches/fiche-1/parcels", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response ParcelListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "p-1", response.Parcels[0].ID)
}

func TestParcelHandler_Create(t *testing.T) {
	mockService := new(MockParcelService)
	handler := NewParcelHandler(mockService)
	router := setupParcelTestRouter(handler, logger.New("test"))

	created := models.CadastreParcel{
		ID:         "p-1",
		FicheID:    "fiche-1",
		Section:    "AB",
		PlotNumber: "0042",
	}
	mockService.On("CreateParcel", mock.Anything, mock.MatchedBy(func(p models.CadastreParcel) bool {
		return p.FicheID == "fiche-1" && p.Section == "AB" && p.PlotNumber == "0042"
	})).Return(created, nil)

	body := bytes.NewBufferString(`{"section":"AB","plotNumber":"0042"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fiches/fiche-1/parcels", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.CadastreParcel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "p-1", response.ID)
	mockService.AssertExpectations(t)
}

func TestParcelHandler_Create_MissingSection(t *testing.T) {
	mockService := new(MockParcelService)
	handler := NewParcelHandler(mockService)
	router := setupParcelTestRouter(handler, logger.New("test"))

	body := bytes.NewBufferString(`{"plotNumber":"0042"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fiches/fiche-1/parcels", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response apierrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, apierrors.ErrValidation, response.Error.Code)
	mockService.AssertNotCalled(t, "CreateParcel", mock.Anything, mock.Anything)
}

func TestParcelHandler_Update_NotFound(t *testing.T) {
	mockService := new(MockParcelService)
	handler := NewParcelHandler(mockService)
	router := setupParcelTestRouter(handler, logger.New("test"))

	mockService.On("UpdateParcel", mock.Anything, mock.Anything).
		Return(models.CadastreParcel{}, faults.New(faults.KindNotFound, "Cadastre parcel not found"))

	body := bytes.NewBufferString(`{"section":"AB","plotNumber":"0042"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/fiches/fiche-1/parcels/p-missing", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response apierrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, apierrors.ErrNotFound, response.Error.Code)
}

func TestParcelHandler_Delete(t *testing.T) {
	mockService := new(MockParcelService)
	handler := NewParcelHandler(mockService)
	router := setupParcelTestRouter(handler, logger.New("test"))

	mockService.On("DeleteParcel", mock.Anything, "fiche-1", "p-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/fiches/fiche-1/parcels/p-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

func TestParcelHandler_Delete_TransientFailure(t *testing.T) {
	mockService := new(MockParcelService)
	handler := NewParcelHandler(mockService)
	router := setupParcelTestRouter(handler, logger.New("test"))

	mockService.On("DeleteParcel", mock.Anything, "fiche-1", "p-1").
		Return(faults.New(faults.KindTransient, "Connection refused"))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/fiches/fiche-1/parcels/p-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response apierrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, apierrors.ErrInternalServer, response.Error.Code)
}
