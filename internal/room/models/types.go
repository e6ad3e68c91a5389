package models

import (
	"strings"
	"time"
)

// ============================================================
// Surfaces
// ============================================================

// RoomSide - одна из шести поверхностей комнаты.
type RoomSide string

const (
	WallNorth RoomSide = "wall_north"
	WallSouth RoomSide = "wall_south"
	WallEast  RoomSide = "wall_east"
	WallWest  RoomSide = "wall_west"
	Floor     RoomSide = "floor"
	Ceiling   RoomSide = "ceiling"
)

// AllSides перечисляет поверхности в порядке отображения в панели.
var AllSides = []RoomSide{WallNorth, WallSouth, WallEast, WallWest, Floor, Ceiling}

func (s RoomSide) Valid() bool {
	switch s {
	case WallNorth, WallSouth, WallEast, WallWest, Floor, Ceiling:
		return true
	}
	return false
}

// IsWall истинно только для четырёх стен.
func (s RoomSide) IsWall() bool {
	return s.Valid() && strings.HasPrefix(string(s), "wall_")
}

// SurfaceCategory группирует поверхности для выбора мотивов.
type SurfaceCategory string

const (
	CategoryWall    SurfaceCategory = "wall"
	CategoryFloor   SurfaceCategory = "floor"
	CategoryCeiling SurfaceCategory = "ceiling"
)

func (s RoomSide) Category() SurfaceCategory {
	switch s {
	case Floor:
		return CategoryFloor
	case Ceiling:
		return CategoryCeiling
	}
	return CategoryWall
}

// ============================================================
// Items & motifs
// ============================================================

// ItemType - вид архитектурного элемента на стене.
type ItemType string

const (
	ItemDoor   ItemType = "door"
	ItemWindow ItemType = "window"
	ItemStairs ItemType = "stairs"
)

func (t ItemType) Valid() bool {
	return t == ItemDoor || t == ItemWindow || t == ItemStairs
}

// FloorSnapped истинно для элементов, нижний край которых прижат к полу.
func (t ItemType) FloorSnapped() bool {
	return t == ItemDoor || t == ItemStairs
}

// MotifType - декоративная раскладка поверхности.
type MotifType string

const (
	MotifNone          MotifType = "none"
	MotifPVCPanels     MotifType = "pvc_panels"
	MotifShiplap       MotifType = "shiplap"
	MotifMolding       MotifType = "molding"
	MotifWoodPlanks    MotifType = "wood_planks"
	MotifTiles         MotifType = "tiles"
	MotifCoffered      MotifType = "coffered"
	MotifPerimeterTrim MotifType = "perimeter_trim"
)

// ============================================================
// Room state
// ============================================================

// RoomDimensions - размеры комнаты в метрах.
type RoomDimensions struct {
	Width  float64 `json:"width" yaml:"width" cbor:"1,keyasint"`
	Length float64 `json:"length" yaml:"length" cbor:"2,keyasint"`
	Height float64 `json:"height" yaml:"height" cbor:"3,keyasint"`
}

// SurfaceSize возвращает ширину и высоту плоскости поверхности.
func (d RoomDimensions) SurfaceSize(side RoomSide) (float64, float64) {
	switch side {
	case WallNorth, WallSouth:
		return d.Width, d.Height
	case WallEast, WallWest:
		return d.Length, d.Height
	default:
		return d.Width, d.Length
	}
}

// SideState - материал и мотив одной поверхности.
type SideState struct {
	Color     string    `json:"color" yaml:"color" cbor:"1,keyasint"`
	Roughness float64   `json:"roughness" yaml:"roughness" cbor:"2,keyasint"`
	Metalness float64   `json:"metalness" yaml:"metalness" cbor:"3,keyasint"`
	Motif     MotifType `json:"motif" yaml:"motif" cbor:"4,keyasint"`
}

type RoomConfig map[RoomSide]SideState

func (c RoomConfig) Clone() RoomConfig {
	out := make(RoomConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// RoomItem - дверь, окно или лестница на стене. X и Y задают центр
// элемента в координатах стены.
type RoomItem struct {
	ID     string   `json:"id" yaml:"id" cbor:"1,keyasint"`
	Type   ItemType `json:"type" yaml:"type" cbor:"2,keyasint"`
	Wall   RoomSide `json:"wall" yaml:"wall" cbor:"3,keyasint"`
	X      float64  `json:"x" yaml:"x" cbor:"4,keyasint"`
	Y      float64  `json:"y" yaml:"y" cbor:"5,keyasint"`
	Width  float64  `json:"width" yaml:"width" cbor:"6,keyasint"`
	Height float64  `json:"height" yaml:"height" cbor:"7,keyasint"`
	Color  string   `json:"color" yaml:"color" cbor:"8,keyasint"`
}

const maxItemIDLen = 64

// ValidItemID допускает латиницу, цифры, '-' и '_', не длиннее 64 символов.
// Такой id безопасно выводить в атрибуты SVG и пути API.
func ValidItemID(id string) bool {
	if id == "" || len(id) > maxItemIDLen {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ============================================================
// View state
// ============================================================

type Selection struct {
	Side       RoomSide `json:"side"`
	ItemID     string   `json:"item_id,omitempty"`
	DragItemID string   `json:"drag_item_id,omitempty"`
}

type NotificationKind string

const (
	NotifyInfo  NotificationKind = "info"
	NotifyError NotificationKind = "error"
)

// Notification - всплывающее сообщение. Нулевой ExpiresAt означает,
// что сообщение висит, пока его не заменят.
type Notification struct {
	Seq       uint64           `json:"seq"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	ExpiresAt time.Time        `json:"expires_at,omitzero"`
}

// ViewState - неизменяемый снимок состояния редактора. Version растёт
// на единицу при каждом фактическом изменении.
type ViewState struct {
	Version      uint64         `json:"version"`
	Dimensions   RoomDimensions `json:"dimensions"`
	Sides        RoomConfig     `json:"sides"`
	Items        []RoomItem     `json:"items"`
	Selection    Selection      `json:"selection"`
	Generating   bool           `json:"generating"`
	Notification *Notification  `json:"notification,omitempty"`
}

// FindItem ищет элемент по id.
func (s ViewState) FindItem(id string) (RoomItem, int, bool) {
	for i, item := range s.Items {
		if item.ID == id {
			return item, i, true
		}
	}
	return RoomItem{}, -1, false
}

// ItemsOn возвращает элементы, размещённые на стене.
func (s ViewState) ItemsOn(side RoomSide) []RoomItem {
	var out []RoomItem
	for _, item := range s.Items {
		if item.Wall == side {
			out = append(out, item)
		}
	}
	return out
}

// ============================================================
// Designs
// ============================================================

// Design - сохранённый снимок комнаты без состояния выделения.
type Design struct {
	ID         string         `json:"id" cbor:"1,keyasint"`
	Name       string         `json:"name" cbor:"2,keyasint"`
	Dimensions RoomDimensions `json:"dimensions" cbor:"3,keyasint"`
	Sides      RoomConfig     `json:"sides" cbor:"4,keyasint"`
	Items      []RoomItem     `json:"items" cbor:"5,keyasint"`
	CreatedAt  time.Time      `json:"created_at" cbor:"-"`
}

// DesignSummary используется в списках без полезной нагрузки.
type DesignSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ============================================================
// Suggestions
// ============================================================

// SurfaceFinish - часть SideState, которую заменяет AI-подсказка.
type SurfaceFinish struct {
	Color     string  `json:"color"`
	Roughness float64 `json:"roughness"`
	Metalness float64 `json:"metalness"`
}

// Suggestion содержит отделку для всех шести поверхностей.
type Suggestion map[RoomSide]SurfaceFinish
