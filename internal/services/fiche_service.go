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

// FicheService defines the interface for fiche (project dossier) business logic.
type FicheService interface {
	// ListFiches retrieves all fiches, most recently updated first.
	ListFiches(ctx context.Context) ([]models.Fiche, error)

	// GetFiche retrieves one fiche by id.
	GetFiche(ctx context.Context, id string) (models.Fiche, error)

	// CreateFiche validates and creates a fiche.
	CreateFiche(ctx context.Context, f models.Fiche) (models.Fiche, error)

	// UpdateFiche validates and saves a fiche's editable fields.
	UpdateFiche(ctx context.Context, f models.Fiche) (models.Fiche, error)

	// DeleteFiche removes a fiche with all its dependent rows and evicts its
	// in-memory working state.
	DeleteFiche(ctx context.Context, id string) error
}

type ficheService struct {
	repo    repository.FicheRepository
	manager *store.Manager
	log     *logger.Logger
}

// NewFicheService creates a new instance of FicheService.
func NewFicheService(repo repository.FicheRepository, manager *store.Manager, log *logger.Logger) FicheService {
	return &ficheService{
		repo:    repo,
		manager: manager,
		log:     log,
	}
}

func (s *ficheService) ListFiches(ctx context.Context) ([]models.Fiche, error) {
	return s.repo.List(ctx)
}

func (s *ficheService) GetFiche(ctx context.Context, id string) (models.Fiche, error) {
	if id == "" {
		return models.Fiche{}, faults.New(faults.KindValidation, "Missing fiche id")
	}
	return s.repo.Get(ctx, id)
}

func (s *ficheService) CreateFiche(ctx context.Context, f models.Fiche) (models.Fiche, error) {
	if strings.TrimSpace(f.Name) == "" {
		return models.Fiche{}, faults.New(faults.KindValidation, "Name is required")
	}

	created, err := s.repo.Insert(ctx, f)
	if err != nil {
		s.log.Error("Failed to create fiche", err, nil)
		return models.Fiche{}, err
	}

	s.log.Info("Fiche created", map[string]interface{}{
		"fiche_id": created.ID,
		"name":     created.Name,
	})
	return created, nil
}

func (s *ficheService) UpdateFiche(ctx context.Context, f models.Fiche) (models.Fiche, error) {
	if f.ID == "" {
		return models.Fiche{}, faults.New(faults.KindValidation, "Missing fiche id")
	}
	if strings.TrimSpace(f.Name) == "" {
		return models.Fiche{}, faults.New(faults.KindValidation, "Name is required")
	}

	if err := s.repo.Update(ctx, f); err != nil {
		s.log.Error("Failed to save fiche", err, map[string]interface{}{
			"fiche_id": f.ID,
		})
		return models.Fiche{}, err
	}
	return f, nil
}

func (s *ficheService) DeleteFiche(ctx context.Context, id string) error {
	if id == "" {
		return faults.New(faults.KindValidation, "Missing fiche id")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("Failed to delete fiche", err, map[string]interface{}{
			"fiche_id": id,
		})
		return err
	}

	s.manager.Evict(id)
	s.log.Info("Fiche deleted", map[string]interface{}{
		"fiche_id": id,
	})
	return nil
}
