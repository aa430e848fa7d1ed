package services

import (
	"context"
	"strings"

	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/repository"
	"github.com/devenirpromoteur/realify-api/internal/store"
)

// ParcelService defines the interface for cadastre parcel business logic.
// Every mutation ends with a reconciliation pass so the per-parcel tables of
// the fiche stay in step with the parcel list.
type ParcelService interface {
	// ListParcels retrieves all parcels of a fiche, oldest first.
	// Returns empty slice if none exist (not an error).
	ListParcels(ctx context.Context, ficheID string) ([]models.CadastreParcel, error)

	// CreateParcel validates and creates a parcel, then reconciles dependent
	// stores so the new parcel gains its prefilled entries.
	CreateParcel(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error)

	// UpdateParcel validates and saves a parcel's editable fields, then
	// reconciles so dependent entries pick up the new section/plot number.
	UpdateParcel(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error)

	// DeleteParcel removes a parcel, then reconciles so dependent entries
	// referencing it are removed as well.
	DeleteParcel(ctx context.Context, ficheID, id string) error
}

// parcelService is the concrete implementation of ParcelService.
type parcelService struct {
	repo    repository.ParcelRepository
	manager *store.Manager
	log     *logger.Logger
}

// NewParcelService creates a new instance of ParcelService.
func NewParcelService(repo repository.ParcelRepository, manager *store.Manager, log *logger.Logger) ParcelService {
	return &parcelService{
		repo:    repo,
		manager: manager,
		log:     log,
	}
}

func (s *parcelService) ListParcels(ctx context.Context, ficheID string) ([]models.CadastreParcel, error) {
	if ficheID == "" {
		return nil, faults.New(faults.KindValidation, "Missing fiche id")
	}
	return s.repo.ListByFiche(ctx, ficheID)
}

func (s *parcelService) CreateParcel(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error) {
	if err := validateParcel(p); err != nil {
		return models.CadastreParcel{}, err
	}

	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		s.log.Error("Failed to create parcel", err, map[string]interface{}{
			"fiche_id": p.FicheID,
		})
		return models.CadastreParcel{}, err
	}

	s.log.Info("Parcel created", map[string]interface{}{
		"fiche_id":  created.FicheID,
		"parcel_id": created.ID,
		"section":   created.Section,
		"plot":      created.PlotNumber,
	})

	s.reconcile(ctx, created.FicheID)
	return created, nil
}

func (s *parcelService) UpdateParcel(ctx context.Context, p models.CadastreParcel) (models.CadastreParcel, error) {
	if err := validateParcel(p); err != nil {
		return models.CadastreParcel{}, err
	}
	if p.ID == "" {
		return models.CadastreParcel{}, faults.New(faults.KindValidation, "Missing parcel id")
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.log.Error("Failed to save parcel", err, map[string]interface{}{
			"fiche_id":  p.FicheID,
			"parcel_id": p.ID,
		})
		return models.CadastreParcel{}, err
	}

	s.reconcile(ctx, p.FicheID)
	return p, nil
}

func (s *parcelService) DeleteParcel(ctx context.Context, ficheID, id string) error {
	if ficheID == "" || id == "" {
		return faults.New(faults.KindValidation, "Missing fiche or parcel id")
	}

	if err := s.repo.Delete(ctx, ficheID, id); err != nil {
		s.log.Error("Failed to delete parcel", err, map[string]interface{}{
			"fiche_id":  ficheID,
			"parcel_id": id,
		})
		return err
	}

	s.log.Info("Parcel deleted", map[string]interface{}{
		"fiche_id":  ficheID,
		"parcel_id": id,
	})

	s.reconcile(ctx, ficheID)
	return nil
}

// reconcile reloads the parcel list and pushes it to the fiche's dependent
// stores. A failed reload only skips the pass; the parcel mutation itself has
// already succeeded and the next pass catches up.
func (s *parcelService) reconcile(ctx context.Context, ficheID string) {
	parcels, err := s.repo.ListByFiche(ctx, ficheID)
	if err != nil {
		s.log.Error("Failed to reload parcels for reconciliation", err, map[string]interface{}{
			"fiche_id": ficheID,
		})
		return
	}
	s.manager.Reconcile(ctx, ficheID, parcels)
}

func validateParcel(p models.CadastreParcel) error {
	if p.FicheID == "" {
		return faults.New(faults.KindValidation, "Missing fiche id")
	}
	if strings.TrimSpace(p.Section) == "" {
		return faults.New(faults.KindValidation, "Section is required")
	}
	if strings.TrimSpace(p.PlotNumber) == "" {
		return faults.New(faults.KindValidation, "Plot number is required")
	}
	if p.Surface != nil && *p.Surface < 0 {
		return faults.New(faults.KindValidation, "Surface must not be negative")
	}
	return nil
}
