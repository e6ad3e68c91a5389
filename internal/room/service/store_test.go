package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"archiviz/internal/common/apperr"
	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
	"archiviz/internal/room/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Fakes
// ============================================================

type fakeSuggester struct {
	release chan struct{}
	result  models.Suggestion
	err     error
}

func (f *fakeSuggester) Suggest(ctx context.Context) (models.Suggestion, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

type memoryDesigns struct {
	mu      sync.Mutex
	designs map[string]models.Design
}

func newMemoryDesigns() *memoryDesigns {
	return &memoryDesigns{designs: make(map[string]models.Design)}
}

func (m *memoryDesigns) Save(_ context.Context, d models.Design) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.designs[d.ID] = d
	return nil
}

func (m *memoryDesigns) Get(_ context.Context, id string) (*models.Design, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.designs[id]
	if !ok {
		return nil, apperr.NotFoundf("design %s not found", id)
	}
	return &d, nil
}

func (m *memoryDesigns) List(_ context.Context) ([]models.DesignSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DesignSummary{}
	for _, d := range m.designs {
		out = append(out, models.DesignSummary{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

func (m *memoryDesigns) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.designs[id]; !ok {
		return apperr.NotFoundf("design %s not found", id)
	}
	delete(m.designs, id)
	return nil
}

func fullSuggestion(color string) models.Suggestion {
	out := models.Suggestion{}
	for _, side := range models.AllSides {
		out[side] = models.SurfaceFinish{Color: color, Roughness: 0.4, Metalness: 0.3}
	}
	return out
}

func newStore(t *testing.T, sug *fakeSuggester, opts Options) *Store {
	t.Helper()
	if sug == nil {
		sug = &fakeSuggester{result: fullSuggestion("#abcdef")}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(sug, newMemoryDesigns(), logger, opts)
}

func ptr[T any](v T) *T { return &v }

// ============================================================
// Sessions
// ============================================================

func TestStore_CreateGetDelete(t *testing.T) {
	store := newStore(t, nil, Options{})

	id, initial := store.Create()
	require.NotEmpty(t, id)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(id)
	require.NoError(t, err)
	assert.Equal(t, initial, got)

	require.NoError(t, store.Delete(id))
	_, err = store.Get(id)
	assert.True(t, apperr.Is(err, apperr.TypeNotFound))
	assert.True(t, apperr.Is(store.Delete(id), apperr.TypeNotFound))
}

func TestStore_ItemLifecycle(t *testing.T) {
	store := newStore(t, nil, Options{})
	id, _ := store.Create()

	v, err := store.AddItem(id, models.ItemDoor, "std_door")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	itemID := v.Items[0].ID
	assert.Equal(t, itemID, v.Selection.ItemID)

	_, err = store.AddItem(id, models.ItemType("skylight"), "x")
	assert.True(t, apperr.Is(err, apperr.TypeValidation))

	v, err = store.BeginDrag(id, itemID)
	require.NoError(t, err)
	assert.Equal(t, itemID, v.Selection.DragItemID)

	v, err = store.Drag(id, itemID, geometry.Vec3{X: 100, Y: 100}, false)
	require.NoError(t, err)
	assert.InDelta(t, 5-0.9, v.Items[0].X, 1e-12)

	v, err = store.EndDrag(id, itemID)
	require.NoError(t, err)
	assert.Empty(t, v.Selection.DragItemID)

	v, err = store.RemoveItem(id, itemID)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
}

func TestStore_DragInWorldSpace(t *testing.T) {
	store := newStore(t, nil, Options{})
	id, _ := store.Create()
	v, err := store.AddItem(id, models.ItemWindow, "sq_win")
	require.NoError(t, err)
	itemID := v.Items[0].ID
	_, err = store.BeginDrag(id, itemID)
	require.NoError(t, err)

	world := geometry.SurfaceTransform(models.WallNorth, v.Dimensions).ToWorld(geometry.Vec3{X: 1.5, Y: 0.5})
	v, err = store.Drag(id, itemID, world, true)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, v.Items[0].X, 1e-9)
	assert.InDelta(t, 0.5, v.Items[0].Y, 1e-9)
}

func TestStore_ValidationErrors(t *testing.T) {
	store := newStore(t, nil, Options{})
	id, _ := store.Create()

	_, err := store.SelectSide(id, models.RoomSide("roof"))
	assert.True(t, apperr.Is(err, apperr.TypeValidation))

	_, err = store.UpdateSide(id, models.RoomSide("roof"), state.SideUpdate{})
	assert.True(t, apperr.Is(err, apperr.TypeValidation))

	_, err = store.SetDimensions("missing", state.DimensionsUpdate{Width: ptr(3.0)})
	assert.True(t, apperr.Is(err, apperr.TypeNotFound))
}

func TestStore_ReclampOption(t *testing.T) {
	store := newStore(t, nil, Options{ReclampOnResize: true})
	id, _ := store.Create()
	v, _ := store.AddItem(id, models.ItemDoor, "std_door")
	itemID := v.Items[0].ID
	store.BeginDrag(id, itemID)
	store.Drag(id, itemID, geometry.Vec3{X: 4}, false)

	v, err := store.SetDimensions(id, state.DimensionsUpdate{Width: ptr(4.0)})
	require.NoError(t, err)
	assert.InDelta(t, 2-0.9, v.Items[0].X, 1e-12)
}

// ============================================================
// Subscriptions
// ============================================================

func TestStore_SubscribeLatestWins(t *testing.T) {
	store := newStore(t, nil, Options{})
	id, initial := store.Create()

	ch, cancel, err := store.Subscribe(id)
	require.NoError(t, err)
	defer cancel()

	first := <-ch
	assert.Equal(t, initial.Version, first.Version)

	store.SelectSide(id, models.Floor)
	store.SelectSide(id, models.Ceiling)
	store.SelectSide(id, models.WallEast)

	latest := <-ch
	assert.Equal(t, models.WallEast, latest.Selection.Side)
	assert.Equal(t, initial.Version+3, latest.Version)
}

func TestStore_DeleteClosesSubscribers(t *testing.T) {
	store := newStore(t, nil, Options{})
	id, _ := store.Create()
	ch, cancel, err := store.Subscribe(id)
	require.NoError(t, err)
	<-ch

	require.NoError(t, store.Delete(id))
	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, cancel)
}

// ============================================================
// AI suggestion
// ============================================================

func TestStore_RequestSuggestion(t *testing.T) {
	store := newStore(t, nil, Options{NotificationTTL: time.Hour})
	id, _ := store.Create()
	store.UpdateSide(id, models.Floor, state.SideUpdate{Motif: ptr(models.MotifTiles)})

	v, err := store.RequestSuggestion(context.Background(), id)
	require.NoError(t, err)

	assert.False(t, v.Generating)
	assert.Equal(t, "#abcdef", v.Sides[models.WallWest].Color)
	assert.Equal(t, models.MotifTiles, v.Sides[models.Floor].Motif)
	require.NotNil(t, v.Notification)
	assert.Equal(t, models.NotifyInfo, v.Notification.Kind)
}

func TestStore_RequestSuggestion_Failure(t *testing.T) {
	sug := &fakeSuggester{err: errors.New("boom")}
	store := newStore(t, sug, Options{NotificationTTL: time.Hour})
	id, before := store.Create()

	_, err := store.RequestSuggestion(context.Background(), id)
	assert.True(t, apperr.Is(err, apperr.TypeExternal))

	v, err := store.Get(id)
	require.NoError(t, err)
	assert.False(t, v.Generating)
	assert.Equal(t, before.Sides, v.Sides)
	require.NotNil(t, v.Notification)
	assert.Equal(t, models.NotifyError, v.Notification.Kind)
}

func TestStore_RequestSuggestion_RejectsWhileInFlight(t *testing.T) {
	sug := &fakeSuggester{release: make(chan struct{}), result: fullSuggestion("#123456")}
	store := newStore(t, sug, Options{NotificationTTL: time.Hour})
	id, _ := store.Create()

	done := make(chan error, 1)
	go func() {
		_, err := store.RequestSuggestion(context.Background(), id)
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, _ := store.Get(id)
		return v.Generating
	}, time.Second, 5*time.Millisecond)

	_, err := store.RequestSuggestion(context.Background(), id)
	assert.True(t, apperr.Is(err, apperr.TypeConflict))

	v, err := store.SelectSide(id, models.Floor)
	require.NoError(t, err)
	assert.True(t, v.Generating)

	close(sug.release)
	require.NoError(t, <-done)

	v, _ = store.Get(id)
	assert.Equal(t, "#123456", v.Sides[models.Ceiling].Color)
	assert.Equal(t, models.Floor, v.Selection.Side)
}

func TestStore_NotificationClears(t *testing.T) {
	store := newStore(t, nil, Options{NotificationTTL: 20 * time.Millisecond})
	id, _ := store.Create()

	_, err := store.RequestSuggestion(context.Background(), id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		v, _ := store.Get(id)
		return v.Notification == nil
	}, time.Second, 5*time.Millisecond)
}

func TestStore_InFlightNoticeOutlivesTTL(t *testing.T) {
	sug := &fakeSuggester{release: make(chan struct{}), result: fullSuggestion("#123456")}
	store := newStore(t, sug, Options{NotificationTTL: 20 * time.Millisecond})
	id, _ := store.Create()

	done := make(chan error, 1)
	go func() {
		_, err := store.RequestSuggestion(context.Background(), id)
		done <- err
	}()

	require.Eventually(t, func() bool {
		v, _ := store.Get(id)
		return v.Generating
	}, time.Second, 5*time.Millisecond)

	time.Sleep(80 * time.Millisecond)
	v, err := store.Get(id)
	require.NoError(t, err)
	assert.True(t, v.Generating)
	require.NotNil(t, v.Notification)
	assert.Equal(t, models.NotifyInfo, v.Notification.Kind)

	close(sug.release)
	require.NoError(t, <-done)

	require.Eventually(t, func() bool {
		v, _ := store.Get(id)
		return v.Notification == nil
	}, time.Second, 5*time.Millisecond)
}

func TestStore_NotificationExpiryFollowsOption(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store := newStore(t, nil, Options{
		NotificationTTL: 10 * time.Minute,
		Now:             func() time.Time { return now },
	})
	id, _ := store.Create()

	v, err := store.RequestSuggestion(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, v.Notification)
	assert.Equal(t, now.Add(10*time.Minute), v.Notification.ExpiresAt)
}

// ============================================================
// Designs
// ============================================================

func TestStore_SaveAndLoadDesign(t *testing.T) {
	store := newStore(t, nil, Options{})
	id, _ := store.Create()
	store.SetDimensions(id, state.DimensionsUpdate{Width: ptr(14.0)})
	store.UpdateSide(id, models.WallNorth, state.SideUpdate{Color: ptr("#222222")})

	_, err := store.SaveDesign(context.Background(), id, "")
	assert.True(t, apperr.Is(err, apperr.TypeValidation))

	d, err := store.SaveDesign(context.Background(), id, "Dark north")
	require.NoError(t, err)
	require.NotEmpty(t, d.ID)

	list, err := store.ListDesigns(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, _ := store.Create()
	v, err := store.LoadDesign(context.Background(), other, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 14.0, v.Dimensions.Width)
	assert.Equal(t, "#222222", v.Sides[models.WallNorth].Color)

	_, err = store.LoadDesign(context.Background(), other, "ghost")
	assert.True(t, apperr.Is(err, apperr.TypeNotFound))

	require.NoError(t, store.DeleteDesign(context.Background(), d.ID))
	_, err = store.GetDesign(context.Background(), d.ID)
	assert.True(t, apperr.Is(err, apperr.TypeNotFound))
}

func TestStore_ImportDesign(t *testing.T) {
	store := newStore(t, nil, Options{})

	d, err := store.ImportDesign(context.Background(), models.Design{ID: "ignored", Name: "Imported"})
	require.NoError(t, err)
	assert.NotEqual(t, "ignored", d.ID)
	assert.False(t, d.CreatedAt.IsZero())
}
