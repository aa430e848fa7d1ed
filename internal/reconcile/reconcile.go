// Package reconcile keeps dependent per-parcel stores in step with the
// cadastre parcel list: new parcels gain a prefilled dependent entry, removed
// parcels lose theirs, and edited parcels have their cached display fields
// propagated. Applying the same parcel list twice is a no-op.
package reconcile

import (
	"context"
	"sync"

	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// Dependent is a store that mirrors the parcel list. Implemented by
// store.Store for each entity.
type Dependent interface {
	SetParcels(parcels []models.ParcelRef)
	ReferencedParcelIDs() map[string]struct{}
	AdoptParcel(ctx context.Context, p models.ParcelRef) error
	DropParcelEntries(ctx context.Context, parcelID string) error
	RefreshParcel(ctx context.Context, p models.ParcelRef)
}

// Reconciler applies parcel-list changes to a set of dependent stores. It
// remembers the last applied list so that edits can be detected by id.
type Reconciler struct {
	log  *logger.Logger
	deps []Dependent

	mu    sync.Mutex
	known map[string]models.ParcelRef
}

// New creates a Reconciler over the given dependent stores.
func New(log *logger.Logger, deps ...Dependent) *Reconciler {
	return &Reconciler{
		log:   log,
		deps:  deps,
		known: make(map[string]models.ParcelRef),
	}
}

// Seed records the current parcel list without reconciling. Used right after
// the dependent stores have fetched, when their rows already reflect it.
func (r *Reconciler) Seed(parcels []models.ParcelRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known = indexByID(parcels)
	for _, dep := range r.deps {
		dep.SetParcels(parcels)
	}
}

// Apply reconciles every dependent store against the new parcel list.
// Removals run before adoptions so a replaced parcel does not trip the
// duplicate-assignment rule. Errors are logged and do not stop the pass; the
// next Apply retries whatever failed.
func (r *Reconciler) Apply(ctx context.Context, parcels []models.ParcelRef) {
	r.mu.Lock()
	previous := r.known
	current := indexByID(parcels)
	r.known = current
	r.mu.Unlock()

	for _, dep := range r.deps {
		dep.SetParcels(parcels)
	}

	// Removed parcels: drop dependent entries and their backing rows.
	for id := range previous {
		if _, ok := current[id]; !ok {
			for _, dep := range r.deps {
				if err := dep.DropParcelEntries(ctx, id); err != nil {
					r.log.Error("Failed to drop entries of removed parcel", err, map[string]interface{}{
						"parcel_id": id,
					})
				}
			}
		}
	}

	// Edited parcels: same id, changed section/plot-number.
	for id, p := range current {
		if prev, ok := previous[id]; ok && (prev.Section != p.Section || prev.PlotNumber != p.PlotNumber) {
			for _, dep := range r.deps {
				dep.RefreshParcel(ctx, p)
			}
		}
	}

	// New parcels: any parcel no dependent entry references yet.
	for _, p := range parcels {
		for _, dep := range r.deps {
			if _, ok := dep.ReferencedParcelIDs()[p.ID]; !ok {
				if err := dep.AdoptParcel(ctx, p); err != nil {
					r.log.Error("Failed to adopt new parcel", err, map[string]interface{}{
						"parcel_id": p.ID,
					})
				}
			}
		}
	}
}

func indexByID(parcels []models.ParcelRef) map[string]models.ParcelRef {
	m := make(map[string]models.ParcelRef, len(parcels))
	for _, p := range parcels {
		m[p.ID] = p
	}
	return m
}
