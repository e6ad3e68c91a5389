package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"archiviz/internal/common/middleware"
	"archiviz/internal/common/response"
	"archiviz/internal/room/mapper"
	"archiviz/internal/room/models"
	"archiviz/internal/room/repository"
	"archiviz/internal/room/service"
	"archiviz/internal/suggest"

	"github.com/gofiber/fiber/v3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app   *fiber.App
	store *service.Store
}

func newTestEnv(t *testing.T, limit fiber.Handler) *testEnv {
	t.Helper()

	db, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "designs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.New(db)
	require.NoError(t, repo.Init(context.Background()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := service.NewStore(suggest.NewPalette(), repo, logger, service.Options{NotificationTTL: time.Hour})

	app := fiber.New()
	NewRoomHandler(store, logger).Register(app, repo, limit)
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) createRoom(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/rooms", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createRoomResponse](t, resp)
	require.NotEmpty(t, created.ID)
	return created.ID
}

// ============================================================
// Rooms
// ============================================================

func TestHealthAndCatalog(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]json.RawMessage](t, resp)
	assert.Contains(t, doc, "doors")
	assert.Contains(t, doc, "stairs")
}

func TestRoomEditingFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createRoom(t)
	base := "/rooms/" + id

	resp := env.do(t, http.MethodPut, base+"/dimensions", map[string]any{"width": 12, "height": -1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[models.ViewState](t, resp)
	assert.Equal(t, 12.0, v.Dimensions.Width)
	assert.Equal(t, 6.0, v.Dimensions.Height)

	resp = env.do(t, http.MethodPatch, base+"/sides/wall_north", map[string]any{"color": "#e2725b", "motif": "shiplap"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decode[models.ViewState](t, resp)
	assert.Equal(t, models.MotifShiplap, v.Sides[models.WallNorth].Motif)

	resp = env.do(t, http.MethodPost, base+"/items", map[string]any{"type": "door", "preset": "std_door"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decode[models.ViewState](t, resp)
	require.Len(t, v.Items, 1)
	itemID := v.Items[0].ID

	resp = env.do(t, http.MethodPost, base+"/items/"+itemID+"/drag/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, base+"/items/"+itemID+"/drag", map[string]any{"x": 100, "y": 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decode[models.ViewState](t, resp)
	assert.InDelta(t, 6-0.9, v.Items[0].X, 1e-12)
	assert.InDelta(t, -3+2.1, v.Items[0].Y, 1e-12)

	resp = env.do(t, http.MethodPost, base+"/items/"+itemID+"/drag/end", nil)
	v = decode[models.ViewState](t, resp)
	assert.Empty(t, v.Selection.DragItemID)

	resp = env.do(t, http.MethodGet, base+"/scene", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scene := decode[mapper.Scene](t, resp)
	assert.Len(t, scene.Surfaces, 6)

	resp = env.do(t, http.MethodGet, base+"/surfaces/wall_north/svg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	svg, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(svg), `id="`+itemID+`"`)

	resp = env.do(t, http.MethodDelete, base+"/items/"+itemID, nil)
	v = decode[models.ViewState](t, resp)
	assert.Empty(t, v.Items)

	resp = env.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSelect(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createRoom(t)

	resp := env.do(t, http.MethodPost, "/rooms/"+id+"/select", map[string]any{"side": "floor"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[models.ViewState](t, resp)
	assert.Equal(t, models.Floor, v.Selection.Side)

	resp = env.do(t, http.MethodPost, "/rooms/"+id+"/select", map[string]any{"side": "roof"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/rooms/"+id+"/select", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createRoom(t)

	resp := env.do(t, http.MethodGet, "/rooms/missing", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[response.ErrorResponse](t, resp)
	assert.Equal(t, "not_found", body.Error)
	assert.Equal(t, http.StatusNotFound, body.Code)

	req := httptest.NewRequest(http.MethodPut, "/rooms/"+id+"/dimensions", strings.NewReader("{oops"))
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/rooms/"+id+"/items", map[string]any{"type": "skylight"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/rooms/"+id+"/items/x/drag", map[string]any{"space": "screen"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/rooms/"+id+"/surfaces/roof/svg", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ============================================================
// Suggestion
// ============================================================

func TestSuggestion(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createRoom(t)

	resp := env.do(t, http.MethodPost, "/rooms/"+id+"/suggestion", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[models.ViewState](t, resp)

	assert.False(t, v.Generating)
	require.NotNil(t, v.Notification)
	assert.Equal(t, "New style applied successfully!", v.Notification.Message)
}

func TestSuggestion_RateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	env := newTestEnv(t, limiter.Handler())
	id := env.createRoom(t)

	resp := env.do(t, http.MethodPost, "/rooms/"+id+"/suggestion", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/rooms/"+id+"/suggestion", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/rooms/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ============================================================
// Designs
// ============================================================

func TestDesigns(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createRoom(t)

	env.do(t, http.MethodPut, "/rooms/"+id+"/dimensions", map[string]any{"length": 14})

	resp := env.do(t, http.MethodPost, "/rooms/"+id+"/designs", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/rooms/"+id+"/designs", map[string]any{"name": "Long hall"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	saved := decode[models.Design](t, resp)

	resp = env.do(t, http.MethodGet, "/designs", nil)
	list := decode[[]models.DesignSummary](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Long hall", list[0].Name)

	resp = env.do(t, http.MethodGet, "/designs/"+saved.ID+"?format=yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	yamlBody, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(yamlBody), "length: 14")

	other := env.createRoom(t)
	resp = env.do(t, http.MethodPost, "/rooms/"+other+"/designs/"+saved.ID+"/load", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decode[models.ViewState](t, resp)
	assert.Equal(t, 14.0, v.Dimensions.Length)

	resp = env.do(t, http.MethodDelete, "/designs/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/designs/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImportDesign(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "cabin.yaml")
	require.NoError(t, err)
	part.Write([]byte("name: Cabin\ndimensions:\n  width: 7\nsides:\n  floor:\n    motif: wood_planks\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/designs/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	d := decode[models.Design](t, resp)
	assert.Equal(t, "Cabin", d.Name)
	assert.Equal(t, 7.0, d.Dimensions.Width)
	assert.Equal(t, models.MotifWoodPlanks, d.Sides[models.Floor].Motif)

	req = httptest.NewRequest(http.MethodPost, "/designs/import", strings.NewReader("x"))
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ============================================================
// Events
// ============================================================

func TestEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	id := env.createRoom(t)

	go func() {
		time.Sleep(100 * time.Millisecond)
		env.store.SelectSide(id, models.Ceiling)
		time.Sleep(50 * time.Millisecond)
		env.store.Delete(id)
	}()

	req := httptest.NewRequest(http.MethodGet, "/rooms/"+id+"/events", nil)
	resp, err := env.app.Test(req, fiber.TestConfig{Timeout: 3 * time.Second})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	stream := string(body)
	assert.Contains(t, stream, "event: state")
	assert.Contains(t, stream, `"side":"ceiling"`)
	assert.Contains(t, stream, "event: closed")
}
