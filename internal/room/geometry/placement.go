package geometry

import (
	"math"

	"archiviz/internal/room/models"
)

// ============================================================
// Drag clamping
// ============================================================

// ClampDrag ограничивает позицию перетаскиваемого элемента границами стены.
// Двери и лестницы двигаются только по горизонтали: их низ прижат к полу.
func ClampDrag(itemType models.ItemType, itemW, itemH, wallW, wallH float64, point Vec3) (float64, float64) {
	halfW := itemW / 2
	halfH := itemH / 2

	x := clamp(point.X, -wallW/2+halfW, wallW/2-halfW)

	if itemType.FloorSnapped() {
		return x, FloorY(itemH, wallH)
	}
	return x, clamp(point.Y, -wallH/2+halfH, wallH/2-halfH)
}

// ClampItem пересчитывает позицию уже размещённого элемента.
func ClampItem(item models.RoomItem, wallW, wallH float64) models.RoomItem {
	item.X, item.Y = ClampDrag(item.Type, item.Width, item.Height, wallW, wallH, Vec3{X: item.X, Y: item.Y})
	return item
}

// FloorY - координата центра элемента, стоящего на полу.
func FloorY(itemH, wallH float64) float64 {
	return -wallH/2 + itemH/2
}

// clamp повторяет max(lo, min(hi, v)): при lo > hi побеждает нижняя граница.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
