package geometry

import "math"

// Vec3 - точка или вектор в пространстве сцены (метры).
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Array отдаёт вектор в виде [x, y, z] для клиента рендеринга.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func rotateX(v Vec3, angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{X: v.X, Y: v.Y*cos - v.Z*sin, Z: v.Y*sin + v.Z*cos}
}

func rotateY(v Vec3, angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{X: v.X*cos + v.Z*sin, Y: v.Y, Z: -v.X*sin + v.Z*cos}
}

func rotateZ(v Vec3, angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos, Z: v.Z}
}
