package motif

import (
	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
)

// ============================================================
// Layout types
// ============================================================

// Material - параметры материала детали мотива.
type Material struct {
	Color             string  `json:"color"`
	Roughness         float64 `json:"roughness"`
	Metalness         float64 `json:"metalness"`
	Emissive          string  `json:"emissive,omitempty"`
	EmissiveIntensity float64 `json:"emissive_intensity,omitempty"`
}

// Box - декоративный параллелепипед в локальных координатах поверхности.
type Box struct {
	Position geometry.Vec3 `json:"position"`
	Size     geometry.Vec3 `json:"size"`
	Material Material      `json:"material"`
}

// Layout - результат генерации мотива. Offset сдвигает группу по нормали.
type Layout struct {
	Motif  models.MotifType `json:"motif"`
	Offset float64          `json:"offset"`
	Boxes  []Box            `json:"boxes"`
}

// ============================================================
// Tiling constants
// ============================================================

const (
	pvcSlats       = 20
	shiplapPlanks  = 12
	floorPlanks    = 15
	tileGrid       = 10
	CofferedGrid   = 4
	trimWidth      = 0.4
	trimEmissivity = 0.2
)

// Generate раскладывает мотив по поверхности width × height.
// Для none и неизвестных мотивов возвращается пустая раскладка.
func Generate(m models.MotifType, width, height float64, baseColor string) Layout {
	detail := Shade(baseColor, detailFactor)
	plain := Material{Color: detail, Roughness: 1}

	switch m {
	case models.MotifPVCPanels:
		return slats(m, width, height, pvcSlats, 0.8, 0.05, Material{Color: detail, Roughness: 0.7})
	case models.MotifWoodPlanks:
		return slats(m, width, height, floorPlanks, 0.98, 0.02, Material{Color: detail, Roughness: 0.6, Metalness: 0.1})
	case models.MotifShiplap:
		return shiplap(width, height, Material{Color: detail, Roughness: 0.8})
	case models.MotifMolding:
		return molding(width, height, plain)
	case models.MotifTiles:
		return tiles(width, height, Material{Color: detail, Roughness: 0.3, Metalness: 0.2})
	case models.MotifCoffered:
		return coffered(width, height, CofferedGrid, plain)
	case models.MotifPerimeterTrim:
		mat := plain
		mat.Emissive = baseColor
		mat.EmissiveIntensity = trimEmissivity
		return perimeterTrim(width, height, mat)
	}
	return Layout{Motif: models.MotifNone}
}

// ============================================================
// Tiling rules
// ============================================================

func slats(m models.MotifType, width, height float64, count int, fill, depth float64, mat Material) Layout {
	step := width / float64(count)
	out := Layout{Motif: m, Offset: 0.01, Boxes: make([]Box, 0, count)}
	z := 0.0
	if m == models.MotifPVCPanels {
		z = 0.01
	}
	for i := 0; i < count; i++ {
		out.Boxes = append(out.Boxes, Box{
			Position: geometry.Vec3{X: -width/2 + (float64(i)+0.5)*step, Z: z},
			Size:     geometry.Vec3{X: step * fill, Y: height, Z: depth},
			Material: mat,
		})
	}
	return out
}

func shiplap(width, height float64, mat Material) Layout {
	step := height / shiplapPlanks
	out := Layout{Motif: models.MotifShiplap, Offset: 0.01, Boxes: make([]Box, 0, shiplapPlanks)}
	for i := 0; i < shiplapPlanks; i++ {
		out.Boxes = append(out.Boxes, Box{
			Position: geometry.Vec3{Y: -height/2 + (float64(i)+0.5)*step, Z: 0.01},
			Size:     geometry.Vec3{X: width, Y: step * 0.95, Z: 0.05},
			Material: mat,
		})
	}
	return out
}

// molding - рамка-вставка 80% поверхности; верхняя рейка на 40% высоты.
func molding(width, height float64, mat Material) Layout {
	rail := geometry.Vec3{X: width * 0.8, Y: 0.05, Z: 0.05}
	stile := geometry.Vec3{X: 0.05, Y: height * 0.8, Z: 0.05}
	return Layout{
		Motif:  models.MotifMolding,
		Offset: 0.02,
		Boxes: []Box{
			{Position: geometry.Vec3{}, Size: rail, Material: mat},
			{Position: geometry.Vec3{Y: height * 0.4}, Size: rail, Material: mat},
			{Position: geometry.Vec3{X: width * 0.4}, Size: stile, Material: mat},
			{Position: geometry.Vec3{X: -width * 0.4}, Size: stile, Material: mat},
		},
	}
}

// tiles - квадратная сетка; шаг берётся от ширины по обеим осям.
func tiles(width, height float64, mat Material) Layout {
	size := width / tileGrid
	out := Layout{Motif: models.MotifTiles, Offset: 0.01, Boxes: make([]Box, 0, tileGrid*tileGrid)}
	for row := 0; row < tileGrid; row++ {
		for col := 0; col < tileGrid; col++ {
			out.Boxes = append(out.Boxes, Box{
				Position: geometry.Vec3{
					X: -width/2 + (float64(col)+0.5)*size,
					Y: -height/2 + (float64(row)+0.5)*size,
				},
				Size:     geometry.Vec3{X: size * 0.96, Y: size * 0.96, Z: 0.02},
				Material: mat,
			})
		}
	}
	return out
}

func coffered(width, height float64, grid int, mat Material) Layout {
	step := width / float64(grid)
	out := Layout{Motif: models.MotifCoffered, Offset: -0.1, Boxes: make([]Box, 0, 2*(grid+1))}
	for i := 0; i <= grid; i++ {
		out.Boxes = append(out.Boxes,
			Box{
				Position: geometry.Vec3{X: -width/2 + float64(i)*step, Z: 0.05},
				Size:     geometry.Vec3{X: 0.2, Y: height, Z: 0.15},
				Material: mat,
			},
			Box{
				Position: geometry.Vec3{Y: -height/2 + float64(i)*step, Z: 0.05},
				Size:     geometry.Vec3{X: width, Y: 0.2, Z: 0.15},
				Material: mat,
			},
		)
	}
	return out
}

func perimeterTrim(width, height float64, mat Material) Layout {
	inset := trimWidth / 2
	return Layout{
		Motif:  models.MotifPerimeterTrim,
		Offset: 0.05,
		Boxes: []Box{
			{Position: geometry.Vec3{Y: height/2 - inset}, Size: geometry.Vec3{X: width, Y: trimWidth, Z: 0.1}, Material: mat},
			{Position: geometry.Vec3{Y: -height/2 + inset}, Size: geometry.Vec3{X: width, Y: trimWidth, Z: 0.1}, Material: mat},
			{Position: geometry.Vec3{X: width/2 - inset}, Size: geometry.Vec3{X: trimWidth, Y: height, Z: 0.1}, Material: mat},
			{Position: geometry.Vec3{X: -width/2 + inset}, Size: geometry.Vec3{X: trimWidth, Y: height, Z: 0.1}, Material: mat},
		},
	}
}
