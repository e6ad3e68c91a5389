package state

import (
	"math"
	"time"

	"archiviz/internal/room/catalog"
	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
	"archiviz/internal/room/motif"
)

// NotificationTTL - время жизни всплывающего уведомления.
const NotificationTTL = 3 * time.Second

const (
	msgGenerating = "Gemini is designing your space..."
	msgApplied    = "New style applied successfully!"
	msgFailed     = "Failed to generate AI suggestion."
)

// ============================================================
// Construction
// ============================================================

// New возвращает начальное состояние редактора.
func New() models.ViewState {
	return models.ViewState{
		Dimensions: catalog.DefaultDimensions,
		Sides:      catalog.InitialConfig(),
		Items:      []models.RoomItem{},
		Selection:  models.Selection{Side: models.WallNorth},
	}
}

// commit фиксирует одно фактическое изменение.
func commit(s models.ViewState) models.ViewState {
	s.Version++
	return s
}

func cloneItems(items []models.RoomItem) []models.RoomItem {
	out := make([]models.RoomItem, len(items))
	copy(out, items)
	return out
}

// ============================================================
// Dimensions
// ============================================================

// DimensionsUpdate - частичное изменение размеров; nil-поля не трогаются.
type DimensionsUpdate struct {
	Width  *float64 `json:"width,omitempty"`
	Length *float64 `json:"length,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func positive(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v > 0
}

// SetDimensions применяет корректные (конечные, > 0) размеры и молча
// игнорирует остальные. При reclamp элементы заново прижимаются к стенам.
func SetDimensions(s models.ViewState, upd DimensionsUpdate, reclamp bool) models.ViewState {
	dims := s.Dimensions
	if positive(upd.Width) {
		dims.Width = *upd.Width
	}
	if positive(upd.Length) {
		dims.Length = *upd.Length
	}
	if positive(upd.Height) {
		dims.Height = *upd.Height
	}
	if dims == s.Dimensions {
		return s
	}

	s.Dimensions = dims
	if reclamp {
		s.Items = reclampItems(s.Items, dims)
	}
	return commit(s)
}

func reclampItems(items []models.RoomItem, dims models.RoomDimensions) []models.RoomItem {
	out := cloneItems(items)
	for i, item := range out {
		w, h := dims.SurfaceSize(item.Wall)
		out[i] = geometry.ClampItem(item, w, h)
	}
	return out
}

// ============================================================
// Selection
// ============================================================

func SelectSide(s models.ViewState, side models.RoomSide) models.ViewState {
	if !side.Valid() || s.Selection.Side == side {
		return s
	}
	s.Selection.Side = side
	return commit(s)
}

// SelectItem выделяет элемент; пустой id снимает выделение.
func SelectItem(s models.ViewState, id string) models.ViewState {
	if s.Selection.ItemID == id {
		return s
	}
	if id != "" {
		if _, _, ok := s.FindItem(id); !ok {
			return s
		}
	}
	s.Selection.ItemID = id
	return commit(s)
}

// ============================================================
// Surfaces
// ============================================================

// SideUpdate - частичное изменение материала поверхности.
type SideUpdate struct {
	Color     *string           `json:"color,omitempty"`
	Roughness *float64          `json:"roughness,omitempty"`
	Metalness *float64          `json:"metalness,omitempty"`
	Motif     *models.MotifType `json:"motif,omitempty"`
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// UpdateSide меняет материал поверхности. Некорректный цвет и мотив,
// недоступный для категории поверхности, игнорируются.
func UpdateSide(s models.ViewState, side models.RoomSide, upd SideUpdate) models.ViewState {
	cur, ok := s.Sides[side]
	if !ok {
		return s
	}

	next := cur
	if upd.Color != nil && motif.ValidColor(*upd.Color) {
		next.Color = *upd.Color
	}
	if upd.Roughness != nil && !math.IsNaN(*upd.Roughness) {
		next.Roughness = unit(*upd.Roughness)
	}
	if upd.Metalness != nil && !math.IsNaN(*upd.Metalness) {
		next.Metalness = unit(*upd.Metalness)
	}
	if upd.Motif != nil && catalog.MotifAllowed(side, *upd.Motif) {
		next.Motif = *upd.Motif
	}
	if next == cur {
		return s
	}

	s.Sides = s.Sides.Clone()
	s.Sides[side] = next
	return commit(s)
}

// ============================================================
// Items
// ============================================================

// AddItem ставит элемент из каталога на выбранную стену и выделяет его.
// Если выбрана не стена или пресет не найден, состояние не меняется.
func AddItem(s models.ViewState, itemType models.ItemType, presetID, id string) models.ViewState {
	side := s.Selection.Side
	if !side.IsWall() || id == "" {
		return s
	}
	preset, ok := catalog.Lookup(itemType, presetID)
	if !ok {
		return s
	}

	_, wallH := s.Dimensions.SurfaceSize(side)
	item := models.RoomItem{
		ID:     id,
		Type:   itemType,
		Wall:   side,
		Width:  preset.Width,
		Height: preset.Height,
		Color:  preset.Color,
	}
	if itemType.FloorSnapped() {
		item.Y = geometry.FloorY(preset.Height, wallH)
	}

	s.Items = append(cloneItems(s.Items), item)
	s.Selection.ItemID = id
	return commit(s)
}

// RemoveItem удаляет ровно один элемент. Неизвестный id - no-op.
func RemoveItem(s models.ViewState, id string) models.ViewState {
	_, idx, ok := s.FindItem(id)
	if !ok {
		return s
	}

	items := make([]models.RoomItem, 0, len(s.Items)-1)
	items = append(items, s.Items[:idx]...)
	items = append(items, s.Items[idx+1:]...)
	s.Items = items

	if s.Selection.ItemID == id {
		s.Selection.ItemID = ""
	}
	if s.Selection.DragItemID == id {
		s.Selection.DragItemID = ""
	}
	return commit(s)
}

// ============================================================
// Drag
// ============================================================

// BeginDrag захватывает указатель за элементом и выделяет его.
func BeginDrag(s models.ViewState, id string) models.ViewState {
	if _, _, ok := s.FindItem(id); !ok {
		return s
	}
	if s.Selection.DragItemID == id && s.Selection.ItemID == id {
		return s
	}
	s.Selection.DragItemID = id
	s.Selection.ItemID = id
	return commit(s)
}

// DragTo двигает захваченный элемент в точку на плоскости его стены.
func DragTo(s models.ViewState, id string, local geometry.Vec3) models.ViewState {
	if s.Selection.DragItemID != id {
		return s
	}
	item, idx, ok := s.FindItem(id)
	if !ok {
		return s
	}

	wallW, wallH := s.Dimensions.SurfaceSize(item.Wall)
	x, y := geometry.ClampDrag(item.Type, item.Width, item.Height, wallW, wallH, local)
	if x == item.X && y == item.Y {
		return s
	}

	item.X, item.Y = x, y
	s.Items = cloneItems(s.Items)
	s.Items[idx] = item
	return commit(s)
}

// EndDrag отпускает захват; чужой id игнорируется.
func EndDrag(s models.ViewState, id string) models.ViewState {
	if id == "" || s.Selection.DragItemID != id {
		return s
	}
	s.Selection.DragItemID = ""
	return commit(s)
}

// ============================================================
// AI suggestion
// ============================================================

func notify(s models.ViewState, kind models.NotificationKind, msg string, expiresAt time.Time) models.ViewState {
	s = commit(s)
	s.Notification = &models.Notification{
		Seq:       s.Version,
		Message:   msg,
		Kind:      kind,
		ExpiresAt: expiresAt,
	}
	return s
}

// BeginSuggestion помечает запрос как выполняющийся. Уведомление о нём
// не истекает и держится до результата.
func BeginSuggestion(s models.ViewState) models.ViewState {
	if s.Generating {
		return s
	}
	s.Generating = true
	return notify(s, models.NotifyInfo, msgGenerating, time.Time{})
}

// FailSuggestion снимает флаг запроса; поверхности не меняются.
func FailSuggestion(s models.ViewState, expiresAt time.Time) models.ViewState {
	s.Generating = false
	return notify(s, models.NotifyError, msgFailed, expiresAt)
}

// ApplySuggestion заменяет цвет, шероховатость и металличность всех
// поверхностей из подсказки. Мотивы и элементы остаются прежними.
func ApplySuggestion(s models.ViewState, sug models.Suggestion, expiresAt time.Time) models.ViewState {
	sides := s.Sides.Clone()
	for side, finish := range sug {
		cur, ok := sides[side]
		if !ok {
			continue
		}
		cur.Color = finish.Color
		cur.Roughness = finish.Roughness
		cur.Metalness = finish.Metalness
		sides[side] = cur
	}
	s.Sides = sides
	s.Generating = false
	return notify(s, models.NotifyInfo, msgApplied, expiresAt)
}

// ClearNotification убирает уведомление, если оно не было заменено.
func ClearNotification(s models.ViewState, seq uint64) models.ViewState {
	if s.Notification == nil || s.Notification.Seq != seq {
		return s
	}
	s.Notification = nil
	return commit(s)
}

// ============================================================
// Designs
// ============================================================

// LoadDesign заменяет комнату сохранённым дизайном и сбрасывает выделение.
// Элементы с некорректными полями и повторными id отбрасываются.
func LoadDesign(s models.ViewState, d models.Design) models.ViewState {
	base := New()
	base = SetDimensions(base, DimensionsUpdate{Width: &d.Dimensions.Width, Length: &d.Dimensions.Length, Height: &d.Dimensions.Height}, false)
	for _, side := range models.AllSides {
		st, ok := d.Sides[side]
		if !ok {
			continue
		}
		motifType := st.Motif
		base = UpdateSide(base, side, SideUpdate{Color: &st.Color, Roughness: &st.Roughness, Metalness: &st.Metalness, Motif: &motifType})
	}

	items := make([]models.RoomItem, 0, len(d.Items))
	seen := make(map[string]bool, len(d.Items))
	for _, item := range d.Items {
		if !validItem(item) || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	base.Items = items
	base.Version = s.Version
	base.Generating = s.Generating
	base.Notification = s.Notification
	return commit(base)
}

func validItem(item models.RoomItem) bool {
	return models.ValidItemID(item.ID) &&
		item.Type.Valid() &&
		item.Wall.IsWall() &&
		item.Width > 0 && item.Height > 0 &&
		motif.ValidColor(item.Color)
}

// Snapshot выделяет из состояния сохраняемую часть.
func Snapshot(s models.ViewState, id, name string, now time.Time) models.Design {
	return models.Design{
		ID:         id,
		Name:       name,
		Dimensions: s.Dimensions,
		Sides:      s.Sides.Clone(),
		Items:      cloneItems(s.Items),
		CreatedAt:  now,
	}
}
