package parser

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"archiviz/internal/common/apperr"
	"archiviz/internal/room/catalog"
	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
	"archiviz/internal/room/motif"
	"archiviz/internal/room/state"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ============================================================
// File structures
// ============================================================

type fileDimensions struct {
	Width  *float64 `json:"width" yaml:"width"`
	Length *float64 `json:"length" yaml:"length"`
	Height *float64 `json:"height" yaml:"height"`
}

type fileSide struct {
	Color     *string           `json:"color" yaml:"color"`
	Roughness *float64          `json:"roughness" yaml:"roughness"`
	Metalness *float64          `json:"metalness" yaml:"metalness"`
	Motif     *models.MotifType `json:"motif" yaml:"motif"`
}

type fileItem struct {
	ID     string          `json:"id" yaml:"id"`
	Type   models.ItemType `json:"type" yaml:"type"`
	Preset string          `json:"preset" yaml:"preset"`
	Wall   models.RoomSide `json:"wall" yaml:"wall"`
	X      float64         `json:"x" yaml:"x"`
	Y      *float64        `json:"y" yaml:"y"`
	Width  float64         `json:"width" yaml:"width"`
	Height float64         `json:"height" yaml:"height"`
	Color  string          `json:"color" yaml:"color"`
}

type fileDesign struct {
	Name       string                       `json:"name" yaml:"name"`
	Dimensions fileDimensions               `json:"dimensions" yaml:"dimensions"`
	Sides      map[models.RoomSide]fileSide `json:"sides" yaml:"sides"`
	Items      []fileItem                   `json:"items" yaml:"items"`
}

// ============================================================
// Parser
// ============================================================

// ParseDesign разбирает файл дизайна (.yaml, .yml, .json, .jsonc).
// Отсутствующие поля берутся по умолчанию, некорректные записи
// отбрасываются теми же правилами, что и правки в редакторе.
func ParseDesign(name string, data []byte) (models.Design, error) {
	var doc fileDesign

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return models.Design{}, apperr.WrapValidation("invalid YAML design", err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return models.Design{}, apperr.WrapValidation("invalid JSON design", err)
		}
	default:
		return models.Design{}, apperr.Validationf("unsupported design file %q", ext)
	}

	if doc.Name == "" {
		doc.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return build(doc), nil
}

func build(doc fileDesign) models.Design {
	s := state.SetDimensions(state.New(), state.DimensionsUpdate{
		Width:  doc.Dimensions.Width,
		Length: doc.Dimensions.Length,
		Height: doc.Dimensions.Height,
	}, false)

	for _, side := range models.AllSides {
		fs, ok := doc.Sides[side]
		if !ok {
			continue
		}
		s = state.UpdateSide(s, side, state.SideUpdate{
			Color:     fs.Color,
			Roughness: fs.Roughness,
			Metalness: fs.Metalness,
			Motif:     fs.Motif,
		})
	}

	items := make([]models.RoomItem, 0, len(doc.Items))
	seen := make(map[string]bool, len(doc.Items))
	for _, fi := range doc.Items {
		item, ok := resolveItem(fi, s.Dimensions)
		if !ok {
			continue
		}
		if !models.ValidItemID(item.ID) || seen[item.ID] {
			item.ID = uuid.NewString()
		}
		seen[item.ID] = true
		items = append(items, item)
	}

	d := models.Design{Dimensions: s.Dimensions, Sides: s.Sides, Items: items}
	loaded := state.LoadDesign(state.New(), d)
	return state.Snapshot(loaded, "", doc.Name, d.CreatedAt)
}

// resolveItem дополняет элемент данными пресета и прижимает его к стене.
// Некорректный цвет заменяется цветом пресета; без пресета элемент отбрасывается.
func resolveItem(fi fileItem, dims models.RoomDimensions) (models.RoomItem, bool) {
	if !fi.Type.Valid() || !fi.Wall.IsWall() {
		return models.RoomItem{}, false
	}

	item := models.RoomItem{
		ID:     fi.ID,
		Type:   fi.Type,
		Wall:   fi.Wall,
		X:      fi.X,
		Width:  fi.Width,
		Height: fi.Height,
		Color:  fi.Color,
	}
	if fi.Preset != "" {
		p, ok := catalog.Lookup(fi.Type, fi.Preset)
		if !ok {
			return models.RoomItem{}, false
		}
		if item.Width <= 0 {
			item.Width = p.Width
		}
		if item.Height <= 0 {
			item.Height = p.Height
		}
		if !motif.ValidColor(item.Color) {
			item.Color = p.Color
		}
	}
	if !motif.ValidColor(item.Color) || item.Width <= 0 || item.Height <= 0 {
		return models.RoomItem{}, false
	}

	wallW, wallH := dims.SurfaceSize(item.Wall)
	switch {
	case fi.Y != nil:
		item.Y = *fi.Y
	case item.Type.FloorSnapped():
		item.Y = geometry.FloorY(item.Height, wallH)
	}
	return geometry.ClampItem(item, wallW, wallH), true
}

// ============================================================
// Export
// ============================================================

type exportDesign struct {
	Name       string                               `yaml:"name"`
	Dimensions models.RoomDimensions                `yaml:"dimensions"`
	Sides      map[models.RoomSide]models.SideState `yaml:"sides"`
	Items      []models.RoomItem                    `yaml:"items"`
}

// EncodeYAML сериализует дизайн в формат, который понимает ParseDesign.
func EncodeYAML(d models.Design) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(exportDesign{
		Name:       d.Name,
		Dimensions: d.Dimensions,
		Sides:      d.Sides,
		Items:      d.Items,
	}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
