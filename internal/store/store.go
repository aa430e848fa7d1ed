// Package store implements the synchronized entry store shared by the
// per-parcel tables (existing values, land recaps): an in-memory working set
// per fiche with optimistic mutation, per-entry debounced write-back to the
// remote table, single-flight create/delete and rollback on remote failure.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/notify"
	"github.com/devenirpromoteur/realify-api/internal/session"
)

// Entry is the contract row types must satisfy to be managed by a Store.
type Entry interface {
	EntryID() string
	ParcelRefID() string
}

// Remote is the table collaborator a Store writes through to. The
// repositories implement it per entity.
type Remote[E Entry] interface {
	Select(ctx context.Context, ficheID string) ([]E, error)
	Insert(ctx context.Context, e E) (E, error)
	Update(ctx context.Context, e E) error
	Delete(ctx context.Context, ficheID, id string) error
}

// Hooks parameterizes a Store with the entity-specific pieces: derived-field
// recomputation, prefill from a parcel, and parcel (re)assignment.
type Hooks[E Entry] struct {
	// Derive recomputes derived fields. May be nil when the entity has none.
	Derive func(E) E
	// NewFromParcel builds a fresh entry prefilled from a parcel. The parcel
	// may be the zero ParcelRef when the fiche has no parcels yet.
	NewFromParcel func(ficheID string, p models.ParcelRef) E
	// SetParcel reassigns the entry's parcel reference and cached
	// section/plot-number display fields.
	SetParcel func(E, models.ParcelRef) E
	// Label names the entity in toasts ("existing value", "land recap").
	Label string
}

// In-flight guards: at most one create and one delete may be in flight per
// store, a deliberate simplicity-over-throughput tradeoff.
var (
	ErrCreateInFlight = faults.New(faults.KindConflict, "A creation is already in progress")
	ErrDeleteInFlight = faults.New(faults.KindConflict, "A deletion is already in progress")
)

// Store is the synchronized working set of one entity table for one fiche.
// Local state is mutated synchronously before any remote call is issued, so
// readers never observe stale data after their own action; remote failures
// roll the optimistic change back.
type Store[E Entry] struct {
	ficheID  string
	remote   Remote[E]
	hooks    Hooks[E]
	notifier notify.Notifier
	log      *logger.Logger
	debounce time.Duration
	timeout  time.Duration

	mu         sync.Mutex
	entries    []E
	parcels    []models.ParcelRef
	creating   bool
	savingID   string
	deletingID string
	lastError  string
	timers     map[string]*time.Timer
	// saved holds the last server-confirmed value per entry id; it is the
	// rollback target for failed debounced writes.
	saved map[string]E
}

// New creates a Store for one fiche.
func New[E Entry](ficheID string, remote Remote[E], hooks Hooks[E], notifier notify.Notifier, log *logger.Logger, debounce, timeout time.Duration) *Store[E] {
	return &Store[E]{
		ficheID:  ficheID,
		remote:   remote,
		hooks:    hooks,
		notifier: notifier,
		log:      log,
		debounce: debounce,
		timeout:  timeout,
		timers:   make(map[string]*time.Timer),
		saved:    make(map[string]E),
	}
}

// Entries returns a snapshot of the working set in display order.
func (s *Store[E]) Entries() []E {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]E, len(s.entries))
	copy(out, s.entries)
	return out
}

// LastError returns the banner message from the last failed fetch, or "".
func (s *Store[E]) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// SavingID returns the id of the entry whose debounced write is in flight, or "".
func (s *Store[E]) SavingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savingID
}

// DeletingID returns the id of the entry whose delete is in flight, or "".
func (s *Store[E]) DeletingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletingID
}

// SetParcels replaces the observed parent parcel list. The list is externally
// owned and never mutated by the store.
func (s *Store[E]) SetParcels(parcels []models.ParcelRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parcels = make([]models.ParcelRef, len(parcels))
	copy(s.parcels, parcels)
}

// ReferencedParcelIDs recomputes the set of parcel ids referenced by the
// working set. It is derived state, never cached, so it cannot drift.
func (s *Store[E]) ReferencedParcelIDs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referencedLocked()
}

func (s *Store[E]) referencedLocked() map[string]struct{} {
	used := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		if pid := e.ParcelRefID(); pid != "" {
			used[pid] = struct{}{}
		}
	}
	return used
}

// Fetch loads the working set from the remote table, resolving each row's
// parcel reference against the observed parcel list and recomputing derived
// fields. On remote failure the existing entries are left untouched
// (stale-but-consistent) and the error banner is set.
func (s *Store[E]) Fetch(ctx context.Context) error {
	if _, err := session.Require(ctx); err != nil {
		return err
	}
	if s.ficheID == "" {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.remote.Select(rctx, s.ficheID)
	if err != nil {
		s.mu.Lock()
		s.lastError = faults.Message(err)
		s.mu.Unlock()
		s.log.Error("Failed to fetch entries", err, map[string]interface{}{
			"entity":   s.hooks.Label,
			"fiche_id": s.ficheID,
		})
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]E, 0, len(rows))
	s.saved = make(map[string]E, len(rows))
	for _, row := range rows {
		e := s.resolveParcelLocked(row)
		if s.hooks.Derive != nil {
			e = s.hooks.Derive(e)
		}
		s.entries = append(s.entries, e)
		s.saved[e.EntryID()] = e
	}
	s.lastError = ""
	return nil
}

// resolveParcelLocked re-links a fetched row to the observed parcel list,
// matching by parcel id first and by (section, plot number) second.
func (s *Store[E]) resolveParcelLocked(e E) E {
	if pid := e.ParcelRefID(); pid != "" {
		for _, p := range s.parcels {
			if p.ID == pid {
				return s.hooks.SetParcel(e, p)
			}
		}
	}
	return e
}

// Add creates a new entry. The prefill parcel is the one passed, else the
// first observed parcel not yet referenced, else the first observed parcel,
// else an empty stub. Creation is single-flight; the remote insert assigns
// the id and the new entry is prepended on success. Failure performs no local
// mutation.
func (s *Store[E]) Add(ctx context.Context, parcelID string) (E, error) {
	var zero E
	if _, err := session.Require(ctx); err != nil {
		return zero, err
	}
	if s.ficheID == "" {
		return zero, faults.New(faults.KindValidation, "Missing fiche id")
	}

	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return zero, ErrCreateInFlight
	}
	prefill, err := s.prefillParcelLocked(parcelID)
	if err != nil {
		s.mu.Unlock()
		return zero, err
	}
	s.creating = true
	s.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.remote.Insert(rctx, s.hooks.NewFromParcel(s.ficheID, prefill))

	s.mu.Lock()
	s.creating = false
	if err != nil {
		s.mu.Unlock()
		s.toast(ctx, notify.SeverityError, "Creation failed", faults.Message(err))
		return zero, err
	}

	if s.hooks.Derive != nil {
		created = s.hooks.Derive(created)
	}
	s.entries = append([]E{created}, s.entries...)
	s.saved[created.EntryID()] = created
	s.mu.Unlock()

	s.toast(ctx, notify.SeveritySuccess, "Created", "New "+s.hooks.Label+" added")
	return created, nil
}

func (s *Store[E]) prefillParcelLocked(parcelID string) (models.ParcelRef, error) {
	if parcelID != "" {
		for _, p := range s.parcels {
			if p.ID == parcelID {
				return p, nil
			}
		}
		return models.ParcelRef{}, faults.New(faults.KindNotFound, "Parcel not found")
	}

	used := s.referencedLocked()
	for _, p := range s.parcels {
		if _, ok := used[p.ID]; !ok {
			return p, nil
		}
	}
	if len(s.parcels) > 0 {
		return s.parcels[0], nil
	}
	return models.ParcelRef{}, nil
}

// Update applies mutate to the entry synchronously, recomputes derived
// fields, and schedules a debounced remote write. Rapid successive edits to
// the same entry coalesce into the last value only; edits to different
// entries are independent.
func (s *Store[E]) Update(ctx context.Context, id string, mutate func(E) E) (E, error) {
	var zero E
	if _, err := session.Require(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	i, ok := s.indexLocked(id)
	if !ok {
		s.mu.Unlock()
		return zero, faults.New(faults.KindNotFound, s.entityNotFound())
	}

	e := mutate(s.entries[i])
	if s.hooks.Derive != nil {
		e = s.hooks.Derive(e)
	}
	s.entries[i] = e
	s.scheduleFlushLocked(ctx, id)
	s.mu.Unlock()

	return e, nil
}

// AssignParcel links the entry to a parcel. If any other entry already
// references that parcel the assignment is rejected with a Conflict and no
// change is made; otherwise the parcel reference and cached display fields
// are updated optimistically and the same debounced write as Update is
// scheduled.
func (s *Store[E]) AssignParcel(ctx context.Context, id, parcelID string) (E, error) {
	var zero E
	if _, err := session.Require(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	i, ok := s.indexLocked(id)
	if !ok {
		s.mu.Unlock()
		return zero, faults.New(faults.KindNotFound, s.entityNotFound())
	}

	var parcel models.ParcelRef
	found := false
	for _, p := range s.parcels {
		if p.ID == parcelID {
			parcel = p
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return zero, faults.New(faults.KindNotFound, "Parcel not found")
	}

	for _, other := range s.entries {
		if other.EntryID() != id && other.ParcelRefID() == parcelID {
			s.mu.Unlock()
			return zero, faults.New(faults.KindConflict, "This parcel is already assigned to another entry")
		}
	}

	e := s.hooks.SetParcel(s.entries[i], parcel)
	if s.hooks.Derive != nil {
		e = s.hooks.Derive(e)
	}
	s.entries[i] = e
	s.scheduleFlushLocked(ctx, id)
	s.mu.Unlock()

	return e, nil
}

// Delete removes the entry optimistically, then confirms with the remote
// table. Deletes are single-flight across the whole store. A NotFound from
// the remote means someone already deleted the row and counts as success; any
// other failure restores the entry to exactly its pre-delete position and
// state.
func (s *Store[E]) Delete(ctx context.Context, id string) error {
	if _, err := session.Require(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.deletingID != "" {
		s.mu.Unlock()
		return ErrDeleteInFlight
	}
	i, ok := s.indexLocked(id)
	if !ok {
		s.mu.Unlock()
		return faults.New(faults.KindNotFound, s.entityNotFound())
	}

	// A pending debounced write must not resurrect the row.
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}

	snapshot := s.entries[i]
	index := i
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.deletingID = id
	s.mu.Unlock()

	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.remote.Delete(rctx, s.ficheID, id)

	s.mu.Lock()
	s.deletingID = ""
	if err != nil && !faults.Is(err, faults.KindNotFound) {
		// Full rollback to the pre-delete state, same position included.
		if index > len(s.entries) {
			index = len(s.entries)
		}
		s.entries = append(s.entries[:index:index], append([]E{snapshot}, s.entries[index:]...)...)
		s.mu.Unlock()
		s.toast(ctx, notify.SeverityError, "Deletion failed", faults.Message(err))
		return err
	}
	delete(s.saved, id)
	s.mu.Unlock()

	s.toast(ctx, notify.SeveritySuccess, "Deleted", upperFirst(s.hooks.Label)+" removed")
	return nil
}

// QueueLen reports how many debounced writes are pending. Used by shutdown to
// decide whether to wait.
func (s *Store[E]) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// scheduleFlushLocked (re)arms the debounce timer for one entry. The caller
// holds s.mu. The flush runs detached from the request's cancelation but
// keeps its values, the session included.
func (s *Store[E]) scheduleFlushLocked(ctx context.Context, id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	dctx := context.WithoutCancel(ctx)
	s.timers[id] = time.AfterFunc(s.debounce, func() {
		s.flush(dctx, id)
	})
}

// flush writes one entry's current value to the remote table. A failed write
// rolls the entry back to its last server-confirmed value, keeping local and
// remote state convergent; NotFound counts as failure here, unlike on delete.
func (s *Store[E]) flush(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.timers, id)
	i, ok := s.indexLocked(id)
	if !ok {
		// Deleted while the timer was pending.
		s.mu.Unlock()
		return
	}
	e := s.entries[i]
	s.savingID = id
	s.mu.Unlock()

	err := func() error {
		if _, err := session.Require(ctx); err != nil {
			return err
		}
		rctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.remote.Update(rctx, e)
	}()

	s.mu.Lock()
	s.savingID = ""
	if err != nil {
		if prev, ok := s.saved[id]; ok {
			if j, ok := s.indexLocked(id); ok {
				s.entries[j] = prev
			}
		}
		s.mu.Unlock()
		s.log.Error("Failed to save entry", err, map[string]interface{}{
			"entity":   s.hooks.Label,
			"entry_id": id,
			"fiche_id": s.ficheID,
		})
		s.toast(ctx, notify.SeverityError, "Save failed", faults.Message(err))
		return
	}
	s.saved[id] = e
	s.mu.Unlock()

	s.toast(ctx, notify.SeveritySuccess, "Saved", upperFirst(s.hooks.Label)+" saved")
}

func (s *Store[E]) indexLocked(id string) (int, bool) {
	for i, e := range s.entries {
		if e.EntryID() == id {
			return i, true
		}
	}
	return 0, false
}

func (s *Store[E]) entityNotFound() string {
	return upperFirst(s.hooks.Label) + " not found"
}

func (s *Store[E]) toast(ctx context.Context, severity notify.Severity, title, description string) {
	s.notifier.Push(context.WithoutCancel(ctx), notify.Toast{
		Title:       title,
		Description: description,
		Severity:    severity,
	})
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}
