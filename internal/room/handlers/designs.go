package handlers

import (
	"context"
	"io"
	"net/http"

	"archiviz/internal/common/apperr"
	"archiviz/internal/common/response"
	"archiviz/internal/room/parser"

	"github.com/gofiber/fiber/v3"
)

// maxDesignFileSize ограничивает импортируемый файл дизайна.
const maxDesignFileSize = 1 << 20

func (h *RoomHandler) ListDesigns(c fiber.Ctx) error {
	list, err := h.store.ListDesigns(context.Background())
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.JSON(list)
}

// GetDesign отдаёт дизайн в JSON или, при format=yaml, файлом для импорта.
func (h *RoomHandler) GetDesign(c fiber.Ctx) error {
	d, err := h.store.GetDesign(context.Background(), c.Params("designId"))
	if err != nil {
		return response.Error(c, h.logger, err)
	}

	switch c.Query("format") {
	case "", "json":
		return c.JSON(d)
	case "yaml":
		data, err := parser.EncodeYAML(*d)
		if err != nil {
			return response.Error(c, h.logger, apperr.WrapInternal("encode design", err))
		}
		c.Set("Content-Type", "application/yaml")
		c.Set("Content-Disposition", `attachment; filename="`+d.ID+`.yaml"`)
		return c.Send(data)
	default:
		return response.Error(c, h.logger, apperr.Validationf("unknown format %q", c.Query("format")))
	}
}

func (h *RoomHandler) DeleteDesign(c fiber.Ctx) error {
	if err := h.store.DeleteDesign(context.Background(), c.Params("designId")); err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ImportDesign принимает файл дизайна (yaml/json/jsonc) в поле file.
func (h *RoomHandler) ImportDesign(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, h.logger, apperr.WrapValidation("file required in multipart/form-data", err))
	}
	if fileHeader.Size > maxDesignFileSize {
		return response.Error(c, h.logger, apperr.Validation("design file too large"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, h.logger, apperr.WrapInternal("failed to open file", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDesignFileSize))
	if err != nil {
		return response.Error(c, h.logger, apperr.WrapInternal("failed to read file", err))
	}

	design, err := parser.ParseDesign(fileHeader.Filename, data)
	if err != nil {
		return response.Error(c, h.logger, err)
	}

	saved, err := h.store.ImportDesign(context.Background(), design)
	if err != nil {
		return response.Error(c, h.logger, err)
	}
	return c.Status(http.StatusCreated).JSON(saved)
}
