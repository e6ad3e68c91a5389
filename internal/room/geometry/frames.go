package geometry

import (
	"math"

	"archiviz/internal/room/models"
)

// ============================================================
// Surface frames
// ============================================================

// Transform задаёт положение плоскости поверхности в мире.
// Rotation - углы Эйлера в радианах, порядок XYZ.
type Transform struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
}

// SurfaceTransform возвращает положение и поворот плоскости поверхности
// для комнаты с центром пола в начале координат.
func SurfaceTransform(side models.RoomSide, dims models.RoomDimensions) Transform {
	switch side {
	case models.Floor:
		return Transform{Rotation: Vec3{X: -math.Pi / 2}}
	case models.Ceiling:
		return Transform{Position: Vec3{Y: dims.Height}, Rotation: Vec3{X: math.Pi / 2}}
	case models.WallNorth:
		return Transform{Position: Vec3{Y: dims.Height / 2, Z: -dims.Length / 2}}
	case models.WallSouth:
		return Transform{Position: Vec3{Y: dims.Height / 2, Z: dims.Length / 2}, Rotation: Vec3{Y: math.Pi}}
	case models.WallEast:
		return Transform{Position: Vec3{X: dims.Width / 2, Y: dims.Height / 2}, Rotation: Vec3{Y: -math.Pi / 2}}
	case models.WallWest:
		return Transform{Position: Vec3{X: -dims.Width / 2, Y: dims.Height / 2}, Rotation: Vec3{Y: math.Pi / 2}}
	}
	return Transform{}
}

// ToLocal переводит мировую точку в локальные координаты плоскости.
func (t Transform) ToLocal(world Vec3) Vec3 {
	p := world.Sub(t.Position)
	p = rotateX(p, -t.Rotation.X)
	p = rotateY(p, -t.Rotation.Y)
	return rotateZ(p, -t.Rotation.Z)
}

// ToWorld - обратное преобразование к ToLocal.
func (t Transform) ToWorld(local Vec3) Vec3 {
	p := rotateZ(local, t.Rotation.Z)
	p = rotateY(p, t.Rotation.Y)
	p = rotateX(p, t.Rotation.X)
	return p.Add(t.Position)
}

// WorldToLocal переводит точку пересечения луча со стеной в плоскость стены.
func WorldToLocal(side models.RoomSide, dims models.RoomDimensions, world Vec3) Vec3 {
	return SurfaceTransform(side, dims).ToLocal(world)
}
