package catalog

import (
	"archiviz/internal/room/models"
)

// ============================================================
// Architectural presets
// ============================================================

type Preset struct {
	ID     string          `json:"id"`
	Type   models.ItemType `json:"type"`
	Label  string          `json:"label"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Color  string          `json:"color"`
}

var doors = []Preset{
	{ID: "std_door", Type: models.ItemDoor, Label: "Standard Door", Width: 1.8, Height: 4.2, Color: "#4a3728"},
	{ID: "tall_door", Type: models.ItemDoor, Label: "Grand Portal", Width: 2.2, Height: 5.2, Color: "#2d2d2d"},
	{ID: "wide_door", Type: models.ItemDoor, Label: "Double Doors", Width: 3.5, Height: 4.2, Color: "#5c4033"},
	{ID: "sliding_door", Type: models.ItemDoor, Label: "Glass Slider", Width: 4.0, Height: 4.0, Color: "#a5f3fc"},
}

var windows = []Preset{
	{ID: "sq_win", Type: models.ItemWindow, Label: "Square Window", Width: 2.5, Height: 2.5, Color: "#e0f2fe"},
	{ID: "ribbon_win", Type: models.ItemWindow, Label: "Ribbon Window", Width: 8.0, Height: 1.2, Color: "#bae6fd"},
	{ID: "picture_win", Type: models.ItemWindow, Label: "Picture Window", Width: 4.5, Height: 4.5, Color: "#f0f9ff"},
	{ID: "porthole", Type: models.ItemWindow, Label: "Tall Narrow", Width: 1.0, Height: 4.5, Color: "#e0f2fe"},
}

var stairs = []Preset{
	{ID: "straight_stairs", Type: models.ItemStairs, Label: "Straight Flight", Width: 3.0, Height: 4.0, Color: "#78716c"},
	{ID: "landing_stairs", Type: models.ItemStairs, Label: "Half Flight", Width: 2.0, Height: 2.0, Color: "#a8a29e"},
	{ID: "loft_stairs", Type: models.ItemStairs, Label: "Loft Ladder", Width: 1.6, Height: 5.6, Color: "#44403c"},
}

// Presets возвращает пресеты для типа элемента.
func Presets(t models.ItemType) []Preset {
	switch t {
	case models.ItemDoor:
		return doors
	case models.ItemWindow:
		return windows
	case models.ItemStairs:
		return stairs
	}
	return nil
}

// Lookup ищет пресет по типу и id. Промах не является ошибкой.
func Lookup(t models.ItemType, id string) (Preset, bool) {
	for _, p := range Presets(t) {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// ============================================================
// Motifs
// ============================================================

var motifsByCategory = map[models.SurfaceCategory][]models.MotifType{
	models.CategoryWall:    {models.MotifNone, models.MotifPVCPanels, models.MotifShiplap, models.MotifMolding},
	models.CategoryFloor:   {models.MotifNone, models.MotifWoodPlanks, models.MotifTiles},
	models.CategoryCeiling: {models.MotifNone, models.MotifCoffered, models.MotifPerimeterTrim},
}

func Motifs(category models.SurfaceCategory) []models.MotifType {
	return motifsByCategory[category]
}

// MotifAllowed проверяет, что мотив доступен для поверхности.
func MotifAllowed(side models.RoomSide, motif models.MotifType) bool {
	for _, m := range Motifs(side.Category()) {
		if m == motif {
			return true
		}
	}
	return false
}

// ============================================================
// Defaults
// ============================================================

var DefaultDimensions = models.RoomDimensions{Width: 10, Length: 10, Height: 6}

// InitialConfig возвращает новую копию материалов по умолчанию.
func InitialConfig() models.RoomConfig {
	return models.RoomConfig{
		models.WallNorth: {Color: "#f8fafc", Roughness: 0.8, Metalness: 0.1, Motif: models.MotifNone},
		models.WallSouth: {Color: "#f8fafc", Roughness: 0.8, Metalness: 0.1, Motif: models.MotifNone},
		models.WallEast:  {Color: "#f1f5f9", Roughness: 0.8, Metalness: 0.1, Motif: models.MotifNone},
		models.WallWest:  {Color: "#f1f5f9", Roughness: 0.8, Metalness: 0.1, Motif: models.MotifNone},
		models.Floor:     {Color: "#334155", Roughness: 0.6, Metalness: 0.2, Motif: models.MotifNone},
		models.Ceiling:   {Color: "#ffffff", Roughness: 0.9, Metalness: 0.0, Motif: models.MotifNone},
	}
}

var SideLabels = map[models.RoomSide]string{
	models.WallNorth: "North Wall",
	models.WallSouth: "South Wall",
	models.WallEast:  "East Wall",
	models.WallWest:  "West Wall",
	models.Floor:     "Floor",
	models.Ceiling:   "Ceiling",
}

type Palette struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

var Palettes = []Palette{
	{Name: "Modern Minimalist", Colors: []string{"#ffffff", "#f1f5f9", "#94a3b8", "#1e293b", "#0f172a"}},
	{Name: "Nordic Forest", Colors: []string{"#2d4a53", "#7a9d96", "#f2f2f2", "#bfbfbf", "#4a5759"}},
	{Name: "Sunset Terracotta", Colors: []string{"#e2725b", "#f9dcc4", "#f8ad9d", "#ffb5a7", "#fcd5ce"}},
	{Name: "Industrial Loft", Colors: []string{"#2b2d42", "#8d99ae", "#edf2f4", "#ef233c", "#d90429"}},
}

// ============================================================
// Catalog document
// ============================================================

type Document struct {
	Doors      []Preset                                      `json:"doors"`
	Windows    []Preset                                      `json:"windows"`
	Stairs     []Preset                                      `json:"stairs"`
	Motifs     map[models.SurfaceCategory][]models.MotifType `json:"motifs"`
	Palettes   []Palette                                     `json:"palettes"`
	SideLabels map[models.RoomSide]string                    `json:"side_labels"`
}

// Full собирает каталог для отдачи клиенту.
func Full() Document {
	return Document{
		Doors:      doors,
		Windows:    windows,
		Stairs:     stairs,
		Motifs:     motifsByCategory,
		Palettes:   Palettes,
		SideLabels: SideLabels,
	}
}
