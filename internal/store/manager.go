package store

import (
	"context"
	"sync"
	"time"

	"github.com/devenirpromoteur/realify-api/internal/config"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/notify"
	"github.com/devenirpromoteur/realify-api/internal/reconcile"
	"github.com/devenirpromoteur/realify-api/internal/repository"
	"github.com/devenirpromoteur/realify-api/internal/valuation"
)

// Set bundles the synchronized stores of one fiche with the reconciler that
// keeps them in step with its parcel list.
type Set struct {
	ExistingValues *Store[models.ExistingValueEntry]
	LandRecaps     *Store[models.LandRecapEntry]
	Reconciler     *reconcile.Reconciler
}

// Manager owns one Set per fiche, created lazily on first access and primed
// with a fetch of every dependent table.
type Manager struct {
	parcelRepo repository.ParcelRepository
	evRepo     repository.ExistingValueRepository
	lrRepo     repository.LandRecapRepository
	notifier   notify.Notifier
	log        *logger.Logger
	sync       config.SyncConfig

	mu   sync.Mutex
	sets map[string]*Set
}

// NewManager creates a Manager over the given repositories.
func NewManager(
	parcelRepo repository.ParcelRepository,
	evRepo repository.ExistingValueRepository,
	lrRepo repository.LandRecapRepository,
	notifier notify.Notifier,
	log *logger.Logger,
	syncCfg config.SyncConfig,
) *Manager {
	return &Manager{
		parcelRepo: parcelRepo,
		evRepo:     evRepo,
		lrRepo:     lrRepo,
		notifier:   notifier,
		log:        log,
		sync:       syncCfg,
		sets:       make(map[string]*Set),
	}
}

// ForFiche returns the store set of a fiche, creating and priming it on
// first access: the parcel list is loaded, both stores fetch their rows, and
// the reconciler is seeded with the list those rows already reflect.
func (m *Manager) ForFiche(ctx context.Context, ficheID string) (*Set, error) {
	m.mu.Lock()
	if set, ok := m.sets[ficheID]; ok {
		m.mu.Unlock()
		return set, nil
	}
	m.mu.Unlock()

	parcels, err := m.parcelRepo.ListByFiche(ctx, ficheID)
	if err != nil {
		return nil, err
	}
	refs := make([]models.ParcelRef, len(parcels))
	for i, p := range parcels {
		refs[i] = p.Ref()
	}

	set := &Set{
		ExistingValues: New(ficheID, m.evRepo, ExistingValueHooks(), m.notifier, m.log, m.sync.DebounceWindow, m.sync.RemoteTimeout),
		LandRecaps:     New(ficheID, m.lrRepo, LandRecapHooks(), m.notifier, m.log, m.sync.DebounceWindow, m.sync.RemoteTimeout),
	}
	set.Reconciler = reconcile.New(m.log, set.ExistingValues, set.LandRecaps)
	set.Reconciler.Seed(refs)

	if err := set.ExistingValues.Fetch(ctx); err != nil {
		return nil, err
	}
	if err := set.LandRecaps.Fetch(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sets[ficheID]; ok {
		// Lost the race to another request; use theirs.
		return existing, nil
	}
	m.sets[ficheID] = set
	return set, nil
}

// Reconcile pushes a fresh parcel list to a fiche's store set, if one is
// loaded. Called by the parcel service after every parcel mutation.
func (m *Manager) Reconcile(ctx context.Context, ficheID string, parcels []models.CadastreParcel) {
	m.mu.Lock()
	set, ok := m.sets[ficheID]
	m.mu.Unlock()
	if !ok {
		return
	}

	refs := make([]models.ParcelRef, len(parcels))
	for i, p := range parcels {
		refs[i] = p.Ref()
	}
	set.Reconciler.Apply(ctx, refs)
}

// Evict drops a fiche's store set, releasing its working state. Called when
// the fiche is deleted.
func (m *Manager) Evict(ficheID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, ficheID)
}

// Drain waits for pending debounced writes across all loaded fiches, up to
// the context deadline. Used during shutdown.
func (m *Manager) Drain(ctx context.Context) {
	for {
		m.mu.Lock()
		pending := 0
		for _, set := range m.sets {
			pending += set.ExistingValues.QueueLen() + set.LandRecaps.QueueLen()
		}
		m.mu.Unlock()

		if pending == 0 {
			return
		}
		select {
		case <-ctx.Done():
			m.log.Warn("Shutdown with unsaved entries", map[string]interface{}{
				"pending": pending,
			})
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// ExistingValueHooks wires the valuation engine and parcel prefill for
// existing-value entries.
func ExistingValueHooks() Hooks[models.ExistingValueEntry] {
	return Hooks[models.ExistingValueEntry]{
		Derive: valuation.Derive,
		NewFromParcel: func(ficheID string, p models.ParcelRef) models.ExistingValueEntry {
			e := models.ExistingValueEntry{
				FicheID:      ficheID,
				Section:      p.Section,
				PlotNumber:   p.PlotNumber,
				PropertyType: models.PropertyHousing,
			}
			if p.ID != "" {
				pid := p.ID
				e.ParcelID = &pid
			}
			return e
		},
		SetParcel: func(e models.ExistingValueEntry, p models.ParcelRef) models.ExistingValueEntry {
			pid := p.ID
			e.ParcelID = &pid
			e.Section = p.Section
			e.PlotNumber = p.PlotNumber
			return e
		},
		Label: "existing value",
	}
}

// LandRecapHooks wires parcel prefill for land-recap entries.
func LandRecapHooks() Hooks[models.LandRecapEntry] {
	return Hooks[models.LandRecapEntry]{
		NewFromParcel: func(ficheID string, p models.ParcelRef) models.LandRecapEntry {
			e := models.LandRecapEntry{
				FicheID:        ficheID,
				Section:        p.Section,
				PlotNumber:     p.PlotNumber,
				OccupationType: models.OccupationBareLand,
				OwnerStatus:    models.OwnerOther,
				ResidentStatus: models.ResidentOther,
			}
			if p.ID != "" {
				pid := p.ID
				e.ParcelID = &pid
			}
			return e
		},
		SetParcel: func(e models.LandRecapEntry, p models.ParcelRef) models.LandRecapEntry {
			pid := p.ID
			e.ParcelID = &pid
			e.Section = p.Section
			e.PlotNumber = p.PlotNumber
			return e
		},
		Label: "land recap",
	}
}
