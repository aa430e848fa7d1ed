package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devenirpromoteur/realify-api/internal/faults"
	"github.com/devenirpromoteur/realify-api/internal/logger"
	"github.com/devenirpromoteur/realify-api/internal/models"
	"github.com/devenirpromoteur/realify-api/internal/notify"
	"github.com/devenirpromoteur/realify-api/internal/session"
)

// MockRemote is a mock implementation of Remote[models.ExistingValueEntry].
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Select(ctx context.Context, ficheID string) ([]models.ExistingValueEntry, error) {
	args := m.Called(ctx, ficheID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExistingValueEntry), args.Error(1)
}

func (m *MockRemote) Insert(ctx context.Context, e models.ExistingValueEntry) (models.ExistingValueEntry, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(models.ExistingValueEntry), args.Error(1)
}

func (m *MockRemote) Update(ctx context.Context, e models.ExistingValueEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRemote) Delete(ctx context.Context, ficheID, id string) error {
	args := m.Called(ctx, ficheID, id)
	return args.Error(0)
}

const testDebounce = 20 * time.Millisecond

func newTestStore(remote Remote[models.ExistingValueEntry]) *Store[models.ExistingValueEntry] {
	log := logger.New("production")
	return New("fiche-1", remote, ExistingValueHooks(), notify.NewLogNotifier(log), log, testDebounce, time.Second)
}

func authedContext() context.Context {
	return session.WithContext(context.Background(), &session.Session{
		ID:     "sess-1",
		UserID: "user-1",
		Email:  "dev@example.com",
	})
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(s string) *string { return &s }

func entry(id string, parcelID string) models.ExistingValueEntry {
	e := models.ExistingValueEntry{
		ID:           id,
		FicheID:      "fiche-1",
		PropertyType: models.PropertyHousing,
	}
	if parcelID != "" {
		e.ParcelID = strPtr(parcelID)
	}
	return e
}

func TestStore_RequiresSession(t *testing.T) {
	s := newTestStore(new(MockRemote))
	ctx := context.Background()

	err := s.Fetch(ctx)
	assert.True(t, faults.Is(err, faults.KindNotAuthenticated))

	_, err = s.Add(ctx, "")
	assert.True(t, faults.Is(err, faults.KindNotAuthenticated))

	_, err = s.Update(ctx, "ev-1", func(e models.ExistingValueEntry) models.ExistingValueEntry { return e })
	assert.True(t, faults.Is(err, faults.KindNotAuthenticated))

	err = s.Delete(ctx, "ev-1")
	assert.True(t, faults.Is(err, faults.KindNotAuthenticated))
}

func TestFetch_ResolvesParcelsAndDerives(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	s.SetParcels([]models.ParcelRef{
		{ID: "p-1", Section: "AB", PlotNumber: "0042"},
	})

	row := entry("ev-1", "p-1")
	row.SurfaceOrCount = floatPtr(120)
	row.DepreciationCoefficient = floatPtr(0.9)
	row.PricePerUnit = floatPtr(3500)
	row.ConditionCoefficient = floatPtr(1)
	remote.On("Select", mock.Anything, "fiche-1").Return([]models.ExistingValueEntry{row}, nil)

	err := s.Fetch(authedContext())
	require.NoError(t, err)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "AB", entries[0].Section)
	assert.Equal(t, "0042", entries[0].PlotNumber)
	assert.InDelta(t, 378.0, entries[0].ComputedValue, 0.001)
	assert.Empty(t, s.LastError())
}

func TestFetch_RemoteFailureKeepsEntries(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "")}, nil).Once()
	require.NoError(t, s.Fetch(ctx))

	remote.On("Select", mock.Anything, "fiche-1").
		Return(nil, faults.New(faults.KindTransient, "Connection refused")).Once()
	err := s.Fetch(ctx)
	assert.Error(t, err)

	// Stale but intact, with the banner set.
	assert.Len(t, s.Entries(), 1)
	assert.Equal(t, "Connection refused", s.LastError())
}

func TestAdd_PrependsAndPrefillsUnusedParcel(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()
	s.SetParcels([]models.ParcelRef{
		{ID: "p-1", Section: "AB", PlotNumber: "0042"},
		{ID: "p-2", Section: "AC", PlotNumber: "0007"},
	})

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "p-1")}, nil)
	require.NoError(t, s.Fetch(ctx))

	// p-1 is taken so the prefill must pick p-2.
	remote.On("Insert", mock.Anything, mock.MatchedBy(func(e models.ExistingValueEntry) bool {
		return e.ParcelID != nil && *e.ParcelID == "p-2" && e.Section == "AC"
	})).Return(entry("ev-2", "p-2"), nil)

	created, err := s.Add(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "ev-2", created.ID)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "ev-2", entries[0].ID)
	assert.Equal(t, "ev-1", entries[1].ID)
}

func TestAdd_UnknownParcelRejected(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)

	_, err := s.Add(authedContext(), "p-missing")
	assert.True(t, faults.Is(err, faults.KindNotFound))
	remote.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestAdd_SingleFlight(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()
	s.SetParcels([]models.ParcelRef{{ID: "p-1", Section: "AB", PlotNumber: "0042"}})

	release := make(chan struct{})
	remote.On("Insert", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(entry("ev-1", "p-1"), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.Add(ctx, "")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		_, err := s.Add(ctx, "")
		return err == ErrCreateInFlight
	}, time.Second, time.Millisecond)

	close(release)
	<-done
	remote.AssertNumberOfCalls(t, "Insert", 1)
}

func TestUpdate_DebounceCoalesces(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	remote.On("Update", mock.Anything, mock.MatchedBy(func(e models.ExistingValueEntry) bool {
		return e.SurfaceOrCount != nil && *e.SurfaceOrCount == 3
	})).Return(nil)

	// Three rapid edits must produce a single remote write carrying the last
	// value.
	for _, v := range []float64{1, 2, 3} {
		v := v
		_, err := s.Update(ctx, "ev-1", func(e models.ExistingValueEntry) models.ExistingValueEntry {
			e.SurfaceOrCount = &v
			return e
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return s.QueueLen() == 0 && s.SavingID() == ""
	}, time.Second, time.Millisecond)
	time.Sleep(2 * testDebounce)

	remote.AssertNumberOfCalls(t, "Update", 1)
}

func TestUpdate_IndependentEntriesFlushSeparately(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", ""), entry("ev-2", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	remote.On("Update", mock.Anything, mock.Anything).Return(nil)

	for _, id := range []string{"ev-1", "ev-2"} {
		_, err := s.Update(ctx, id, func(e models.ExistingValueEntry) models.ExistingValueEntry {
			e.SurfaceOrCount = floatPtr(50)
			return e
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return s.QueueLen() == 0 && s.SavingID() == ""
	}, time.Second, time.Millisecond)

	remote.AssertNumberOfCalls(t, "Update", 2)
}

func TestUpdate_FlushFailureRollsBack(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	row := entry("ev-1", "")
	row.SurfaceOrCount = floatPtr(100)
	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{row}, nil)
	require.NoError(t, s.Fetch(ctx))

	remote.On("Update", mock.Anything, mock.Anything).
		Return(faults.New(faults.KindTransient, "Connection refused"))

	_, err := s.Update(ctx, "ev-1", func(e models.ExistingValueEntry) models.ExistingValueEntry {
		e.SurfaceOrCount = floatPtr(999)
		return e
	})
	require.NoError(t, err)

	// The optimistic value is visible until the flush fails.
	assert.Equal(t, 999.0, *s.Entries()[0].SurfaceOrCount)

	require.Eventually(t, func() bool {
		entries := s.Entries()
		return len(entries) == 1 && *entries[0].SurfaceOrCount == 100
	}, time.Second, time.Millisecond)
}

func TestUpdate_UnknownEntry(t *testing.T) {
	s := newTestStore(new(MockRemote))

	_, err := s.Update(authedContext(), "ev-missing", func(e models.ExistingValueEntry) models.ExistingValueEntry {
		return e
	})
	assert.True(t, faults.Is(err, faults.KindNotFound))
}

func TestAssignParcel_RejectsDuplicateAssignment(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()
	s.SetParcels([]models.ParcelRef{
		{ID: "p-1", Section: "AB", PlotNumber: "0042"},
	})

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "p-1"), entry("ev-2", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	_, err := s.AssignParcel(ctx, "ev-2", "p-1")
	assert.True(t, faults.Is(err, faults.KindConflict))

	// No optimistic change and no scheduled write.
	assert.Nil(t, s.Entries()[1].ParcelID)
	assert.Equal(t, 0, s.QueueLen())
	remote.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssignParcel_UpdatesDisplayFields(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()
	s.SetParcels([]models.ParcelRef{
		{ID: "p-1", Section: "AB", PlotNumber: "0042"},
	})

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	remote.On("Update", mock.Anything, mock.Anything).Return(nil)

	e, err := s.AssignParcel(ctx, "ev-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "p-1", *e.ParcelID)
	assert.Equal(t, "AB", e.Section)
	assert.Equal(t, "0042", e.PlotNumber)

	require.Eventually(t, func() bool { return s.QueueLen() == 0 && s.SavingID() == "" }, time.Second, time.Millisecond)
}

func TestDelete_RemoteNotFoundIsSuccess(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	remote.On("Delete", mock.Anything, "fiche-1", "ev-1").
		Return(faults.New(faults.KindNotFound, "Existing value not found"))

	err := s.Delete(ctx, "ev-1")
	require.NoError(t, err)
	assert.Empty(t, s.Entries())
}

func TestDelete_FailureRestoresPosition(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-x", ""), entry("ev-y", ""), entry("ev-z", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	remote.On("Delete", mock.Anything, "fiche-1", "ev-y").
		Return(faults.New(faults.KindTransient, "Connection refused"))

	err := s.Delete(ctx, "ev-y")
	assert.Error(t, err)

	// The entry comes back in its original position, not at an end.
	entries := s.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "ev-x", entries[0].ID)
	assert.Equal(t, "ev-y", entries[1].ID)
	assert.Equal(t, "ev-z", entries[2].ID)
}

func TestDelete_SingleFlight(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", ""), entry("ev-2", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	release := make(chan struct{})
	remote.On("Delete", mock.Anything, "fiche-1", "ev-1").
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Delete(ctx, "ev-1"))
	}()

	require.Eventually(t, func() bool {
		return s.Delete(ctx, "ev-2") == ErrDeleteInFlight
	}, time.Second, time.Millisecond)

	close(release)
	<-done
	assert.Len(t, s.Entries(), 1)
}

func TestDelete_CancelsPendingFlush(t *testing.T) {
	remote := new(MockRemote)
	s := newTestStore(remote)
	ctx := authedContext()

	remote.On("Select", mock.Anything, "fiche-1").
		Return([]models.ExistingValueEntry{entry("ev-1", "")}, nil)
	require.NoError(t, s.Fetch(ctx))

	_, err := s.Update(ctx, "ev-1", func(e models.ExistingValueEntry) models.ExistingValueEntry {
		e.SurfaceOrCount = floatPtr(10)
		return e
	})
	require.NoError(t, err)

	remote.On("Delete", mock.Anything, "fiche-1", "ev-1").Return(nil)
	require.NoError(t, s.Delete(ctx, "ev-1"))

	// The debounced write was stopped with the entry gone.
	time.Sleep(3 * testDebounce)
	remote.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, s.Entries())
}
