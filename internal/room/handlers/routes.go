package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// Register подключает маршруты конфигуратора. suggestLimit ограничивает
// частоту обращений к AI; nil - без ограничения.
func (h *RoomHandler) Register(r fiber.Router, db Pinger, suggestLimit fiber.Handler) {
	if suggestLimit == nil {
		suggestLimit = func(c fiber.Ctx) error { return c.Next() }
	}

	r.Get("/health/live", LivenessProbe)
	r.Get("/health/ready", h.ReadinessProbe(db))

	r.Get("/catalog", h.Catalog)

	// Rooms
	r.Post("/rooms", h.Create)
	r.Get("/rooms/:id", h.Get)
	r.Delete("/rooms/:id", h.Delete)
	r.Get("/rooms/:id/events", h.Events)
	r.Put("/rooms/:id/dimensions", h.SetDimensions)
	r.Post("/rooms/:id/select", h.Select)
	r.Patch("/rooms/:id/sides/:side", h.UpdateSide)
	r.Post("/rooms/:id/items", h.AddItem)
	r.Delete("/rooms/:id/items/:itemId", h.RemoveItem)
	r.Post("/rooms/:id/items/:itemId/drag/start", h.DragStart)
	r.Post("/rooms/:id/items/:itemId/drag", h.Drag)
	r.Post("/rooms/:id/items/:itemId/drag/end", h.DragEnd)
	r.Post("/rooms/:id/suggestion", suggestLimit, h.Suggest)
	r.Get("/rooms/:id/scene", h.Scene)
	r.Get("/rooms/:id/surfaces/:side/svg", h.SurfaceSVG)
	r.Post("/rooms/:id/designs", h.SaveDesign)
	r.Post("/rooms/:id/designs/:designId/load", h.LoadDesign)

	// Designs
	r.Get("/designs", h.ListDesigns)
	r.Post("/designs/import", h.ImportDesign)
	r.Get("/designs/:designId", h.GetDesign)
	r.Delete("/designs/:designId", h.DeleteDesign)
}
