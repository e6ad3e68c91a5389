package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"archiviz/internal/common/response"

	"github.com/gofiber/fiber/v3"
)

// keepAliveInterval - период комментариев, по которым видно отключение клиента.
var keepAliveInterval = 15 * time.Second

// Events стримит снимки состояния комнаты как Server-Sent Events.
// Поток завершается событием closed, когда комнату удаляют.
func (h *RoomHandler) Events(c fiber.Ctx) error {
	id := roomID(c)
	updates, cancel, err := h.store.Subscribe(id)
	if err != nil {
		return response.Error(c, h.logger, err)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case v, ok := <-updates:
				if !ok {
					fmt.Fprint(w, "event: closed\ndata: {}\n\n")
					w.Flush()
					return
				}
				data, err := json.Marshal(v)
				if err != nil {
					h.logger.Error("encode state event", "room_id", id, "error", err)
					return
				}
				fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", v.Version, data)
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}

			if err := w.Flush(); err != nil {
				h.logger.Debug("event stream closed by client", "room_id", id)
				return
			}
		}
	})
}
