package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"archiviz/internal/common/apperr"
	"archiviz/internal/common/response"
	"archiviz/internal/room/catalog"
	"archiviz/internal/room/geometry"
	"archiviz/internal/room/mapper"
	"archiviz/internal/room/models"
	"archiviz/internal/room/service"
	"archiviz/internal/room/state"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Room Handler
// ============================================================

type RoomHandler struct {
	store  *service.Store
	logger *slog.Logger
}

func NewRoomHandler(store *service.Store, logger *slog.Logger) *RoomHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomHandler{store: store, logger: logger}
}

type createRoomResponse struct {
	ID    string           `json:"id"`
	State models.ViewState `json:"state"`
}

type selectRequest struct {
	Side   *models.RoomSide `json:"side"`
	ItemID *string          `json:"item_id"`
}

type addItemRequest struct {
	Type   models.ItemType `json:"type"`
	Preset string          `json:"preset"`
}

type dragRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Space string  `json:"space"`
}

type saveDesignRequest struct {
	Name string `json:"name"`
}

// roomID достаёт id комнаты и кладёт его в locals для логгера запросов.
func roomID(c fiber.Ctx) string {
	id := c.Params("id")
	c.Locals("room_id", id)
	return id
}

func decodeBody(c fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return apperr.Validation("empty body")
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return apperr.WrapValidation("invalid json", err)
	}
	return nil
}

func (h *RoomHandler) reply(c fiber.Ctx, v models.ViewState, err error) error {
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(v)
}

// Catalog отдаёт пресеты, мотивы и палитры.
func (h *RoomHandler) Catalog(c fiber.Ctx) error {
	return c.JSON(catalog.Full())
}

// ============================================================
// Sessions
// ============================================================

func (h *RoomHandler) Create(c fiber.Ctx) error {
	id, v := h.store.Create()
	c.Locals("room_id", id)
	return c.Status(http.StatusCreated).JSON(createRoomResponse{ID: id, State: v})
}

func (h *RoomHandler) Get(c fiber.Ctx) error {
	v, err := h.store.Get(roomID(c))
	return h.reply(c, v, err)
}

func (h *RoomHandler) Delete(c fiber.Ctx) error {
	if err := h.store.Delete(roomID(c)); err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Editing
// ============================================================

func (h *RoomHandler) SetDimensions(c fiber.Ctx) error {
	id := roomID(c)
	var req state.DimensionsUpdate
	if err := decodeBody(c, &req); err != nil {
		return response.Error(c, h.logger, err)
	}
	v, err := h.store.SetDimensions(id, req)
	return h.reply(c, v, err)
}

// Select меняет выбранную поверхность и/или элемент.
func (h *RoomHandler) Select(c fiber.Ctx) error {
	id := roomID(c)
	var req selectRequest
	if err := decodeBody(c, &req); err != nil {
		return response.Error(c, h.logger, err)
	}
	if req.Side == nil && req.ItemID == nil {
		return response.Error(c, h.logger, apperr.Validation("side or item_id required"))
	}

	v, err := h.store.Get(id)
	if err == nil && req.Side != nil {
		v, err = h.store.SelectSide(id, *req.Side)
	}
	if err == nil && req.ItemID != nil {
		v, err = h.store.SelectItem(id, *req.ItemID)
	}
	return h.reply(c, v, err)
}

func (h *RoomHandler) UpdateSide(c fiber.Ctx) error {
	id := roomID(c)
	var req state.SideUpdate
	if err := decodeBody(c, &req); err != nil {
		return response.Error(c, h.logger, err)
	}
	v, err := h.store.UpdateSide(id, models.RoomSide(c.Params("side")), req)
	return h.reply(c, v, err)
}

func (h *RoomHandler) AddItem(c fiber.Ctx) error {
	id := roomID(c)
	var req addItemRequest
	if err := decodeBody(c, &req); err != nil {
		return response.Error(c, h.logger, err)
	}
	v, err := h.store.AddItem(id, req.Type, req.Preset)
	return h.reply(c, v, err)
}

func (h *RoomHandler) RemoveItem(c fiber.Ctx) error {
	v, err := h.store.RemoveItem(roomID(c), c.Params("itemId"))
	return h.reply(c, v, err)
}

// ============================================================
// Drag
// ============================================================

func (h *RoomHandler) DragStart(c fiber.Ctx) error {
	v, err := h.store.BeginDrag(roomID(c), c.Params("itemId"))
	return h.reply(c, v, err)
}

// Drag принимает точку пересечения указателя с плоскостью стены:
// space=local (по умолчанию) или space=world.
func (h *RoomHandler) Drag(c fiber.Ctx) error {
	id := roomID(c)
	var req dragRequest
	if err := decodeBody(c, &req); err != nil {
		return response.Error(c, h.logger, err)
	}

	var world bool
	switch req.Space {
	case "", "local":
	case "world":
		world = true
	default:
		return response.Error(c, h.logger, apperr.Validationf("unknown space %q", req.Space))
	}

	point := geometry.Vec3{X: req.X, Y: req.Y, Z: req.Z}
	v, err := h.store.Drag(id, c.Params("itemId"), point, world)
	return h.reply(c, v, err)
}

func (h *RoomHandler) DragEnd(c fiber.Ctx) error {
	v, err := h.store.EndDrag(roomID(c), c.Params("itemId"))
	return h.reply(c, v, err)
}

// ============================================================
// AI suggestion
// ============================================================

// Suggest запрашивает цветовую схему и отвечает итоговым состоянием.
// Промежуточные состояния приходят подписчикам через /events.
func (h *RoomHandler) Suggest(c fiber.Ctx) error {
	v, err := h.store.RequestSuggestion(context.Background(), roomID(c))
	if apperr.Is(err, apperr.TypeExternal) {
		return response.ErrorWithMessage(c, h.logger, err, "Failed to generate AI suggestion.")
	}
	return h.reply(c, v, err)
}

// ============================================================
// Rendering
// ============================================================

func (h *RoomHandler) Scene(c fiber.Ctx) error {
	v, err := h.store.Get(roomID(c))
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(mapper.BuildScene(v))
}

func (h *RoomHandler) SurfaceSVG(c fiber.Ctx) error {
	v, err := h.store.Get(roomID(c))
	if err != nil {
		return response.Error(c, h.logger, err)
	}

	svg, err := mapper.RenderSurfaceSVG(v, models.RoomSide(c.Params("side")))
	if err != nil {
		return response.Error(c, h.logger, apperr.WrapValidation(err.Error(), err))
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// ============================================================
// Designs
// ============================================================

func (h *RoomHandler) SaveDesign(c fiber.Ctx) error {
	id := roomID(c)
	var req saveDesignRequest
	if err := decodeBody(c, &req); err != nil {
		return response.Error(c, h.logger, err)
	}

	d, err := h.store.SaveDesign(context.Background(), id, req.Name)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.Status(http.StatusCreated).JSON(d)
}

func (h *RoomHandler) LoadDesign(c fiber.Ctx) error {
	v, err := h.store.LoadDesign(context.Background(), roomID(c), c.Params("designId"))
	return h.reply(c, v, err)
}
