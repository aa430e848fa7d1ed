package store

import (
	"context"

	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/models"
)

// AdoptParcel creates a dependent entry prefilled from a parcel that has no
// entry yet. Used by cross-module reconciliation when the parent parcel list
// gains a parcel.
func (s *Store[E]) AdoptParcel(ctx context.Context, p models.ParcelRef) error {
	_, err := s.Add(ctx, p.ID)
	return err
}

// DropParcelEntries removes every entry referencing a parcel that no longer
// exists in the parent list. The backing rows are hard-deleted; a row already
// gone remotely is benign.
func (s *Store[E]) DropParcelEntries(ctx context.Context, parcelID string) error {
	for {
		s.mu.Lock()
		id := ""
		for _, e := range s.entries {
			if e.ParcelRefID() == parcelID {
				id = e.EntryID()
				break
			}
		}
		s.mu.Unlock()

		if id == "" {
			return nil
		}
		if err := s.Delete(ctx, id); err != nil && !faults.Is(err, faults.KindNotFound) {
			return err
		}
	}
}

// RefreshParcel updates the cached section/plot-number display fields of
// every entry referencing an edited parcel, leaving all other fields alone,
// and schedules the usual debounced write for each touched entry.
func (s *Store[E]) RefreshParcel(ctx context.Context, p models.ParcelRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.ParcelRefID() == p.ID {
			s.entries[i] = s.hooks.SetParcel(e, p)
			s.scheduleFlushLocked(ctx, e.EntryID())
		}
	}
}
