package mapper

import (
	"math"

	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
	"archiviz/internal/room/motif"
)

// ============================================================
// Scene graph
// ============================================================

type NodeKind string

const (
	KindGroup  NodeKind = "group"
	KindPlane  NodeKind = "plane"
	KindBox    NodeKind = "box"
	KindSphere NodeKind = "sphere"
)

// Node - узел сцены для клиента рендеринга. Size для plane задаёт
// ширину и высоту, для box - все три размера.
type Node struct {
	Name     string          `json:"name,omitempty"`
	Kind     NodeKind        `json:"kind"`
	Position [3]float64      `json:"position"`
	Rotation [3]float64      `json:"rotation"`
	Size     [3]float64      `json:"size,omitempty"`
	Radius   float64         `json:"radius,omitempty"`
	Material *motif.Material `json:"material,omitempty"`
	Opacity  float64         `json:"opacity,omitempty"`
	Side     models.RoomSide `json:"side,omitempty"`
	ItemID   string          `json:"item_id,omitempty"`
	Children []Node          `json:"children,omitempty"`
}

type Camera struct {
	Position [3]float64 `json:"position"`
	FOV      float64    `json:"fov"`
}

type OrbitControls struct {
	Target        [3]float64 `json:"target"`
	MinPolarAngle float64    `json:"min_polar_angle"`
	MaxPolarAngle float64    `json:"max_polar_angle"`
	DampingFactor float64    `json:"damping_factor"`
}

type Light struct {
	Kind       string      `json:"kind"`
	Position   *[3]float64 `json:"position,omitempty"`
	Intensity  float64     `json:"intensity"`
	Distance   float64     `json:"distance,omitempty"`
	Decay      float64     `json:"decay,omitempty"`
	Angle      float64     `json:"angle,omitempty"`
	Penumbra   float64     `json:"penumbra,omitempty"`
	CastShadow bool        `json:"cast_shadow,omitempty"`
}

type ContactShadows struct {
	Position [3]float64 `json:"position"`
	Opacity  float64    `json:"opacity"`
	Scale    float64    `json:"scale"`
	Blur     float64    `json:"blur"`
	Far      float64    `json:"far"`
}

type Scene struct {
	Version    uint64                `json:"version"`
	Dimensions models.RoomDimensions `json:"dimensions"`
	Camera     Camera                `json:"camera"`
	Controls   OrbitControls         `json:"controls"`
	Lights     []Light               `json:"lights"`
	Shadows    ContactShadows        `json:"shadows"`
	Surfaces   []Node                `json:"surfaces"`
}

const (
	selectedSurfaceEmissive  = "#ffffff"
	selectedSurfaceIntensity = 0.1
	selectedItemEmissive     = "#3b82f6"
	selectedItemIntensity    = 0.3
	frameColor               = "#1e293b"
	frameMargin              = 0.15
	handleColor              = "#fbbf24"
	handleRadius             = 0.08
	grilleBar                = 0.04
	itemOffset               = 0.02
)

// SurfaceName - имя плоскости, по которому клиент ищет пересечение при перетаскивании.
func SurfaceName(side models.RoomSide) string {
	return "wall-" + string(side)
}

// BuildScene собирает граф сцены из состояния редактора.
func BuildScene(s models.ViewState) Scene {
	scene := Scene{
		Version:    s.Version,
		Dimensions: s.Dimensions,
		Camera:     Camera{Position: [3]float64{8, 5, 8}, FOV: 60},
		Controls: OrbitControls{
			Target:        [3]float64{0, 2, 0},
			MinPolarAngle: 0.1,
			MaxPolarAngle: math.Pi / 1.8,
			DampingFactor: 0.05,
		},
		Lights: []Light{
			{Kind: "ambient", Intensity: 0.4},
			{Kind: "point", Position: &[3]float64{0, s.Dimensions.Height - 2, 0}, Intensity: 1.5, Distance: 15, Decay: 2},
			{Kind: "spot", Position: &[3]float64{5, 8, 5}, Intensity: 2, Angle: 0.4, Penumbra: 1, CastShadow: true},
		},
		Shadows: ContactShadows{Position: [3]float64{0, 0.01, 0}, Opacity: 0.4, Scale: 20, Blur: 2.5, Far: 10},
	}

	for _, side := range models.AllSides {
		scene.Surfaces = append(scene.Surfaces, surfaceNode(s, side))
	}
	return scene
}

func surfaceNode(s models.ViewState, side models.RoomSide) Node {
	st := s.Sides[side]
	w, h := s.Dimensions.SurfaceSize(side)
	tr := geometry.SurfaceTransform(side, s.Dimensions)

	mat := &motif.Material{Color: st.Color, Roughness: st.Roughness, Metalness: st.Metalness}
	if s.Selection.Side == side {
		mat.Emissive = selectedSurfaceEmissive
		mat.EmissiveIntensity = selectedSurfaceIntensity
	}

	node := Node{
		Name:     SurfaceName(side),
		Kind:     KindPlane,
		Position: tr.Position.Array(),
		Rotation: tr.Rotation.Array(),
		Size:     [3]float64{w, h, 0},
		Material: mat,
		Side:     side,
	}

	if layout := motif.Generate(st.Motif, w, h, st.Color); len(layout.Boxes) > 0 {
		node.Children = append(node.Children, motifNode(layout))
	}
	if side.IsWall() {
		for _, item := range s.ItemsOn(side) {
			node.Children = append(node.Children, itemNode(item, s.Selection.ItemID == item.ID))
		}
	}
	return node
}

func motifNode(layout motif.Layout) Node {
	group := Node{
		Name:     "motif-" + string(layout.Motif),
		Kind:     KindGroup,
		Position: [3]float64{0, 0, layout.Offset},
	}
	for _, b := range layout.Boxes {
		mat := b.Material
		group.Children = append(group.Children, Node{
			Kind:     KindBox,
			Position: b.Position.Array(),
			Size:     b.Size.Array(),
			Material: &mat,
		})
	}
	return group
}

// ============================================================
// Items
// ============================================================

func itemNode(item models.RoomItem, selected bool) Node {
	panel := &motif.Material{Color: item.Color, Roughness: 0.8, Metalness: 0.2}
	opacity := 1.0
	if item.Type == models.ItemWindow {
		panel.Roughness, panel.Metalness = 0.1, 0.6
		opacity = 0.7
	}
	if selected {
		panel.Emissive = selectedItemEmissive
		panel.EmissiveIntensity = selectedItemIntensity
	}

	group := Node{
		Name:     "item-" + item.ID,
		Kind:     KindGroup,
		Position: [3]float64{item.X, item.Y, itemOffset},
		ItemID:   item.ID,
	}

	group.Children = append(group.Children,
		Node{Name: "panel", Kind: KindPlane, Size: [3]float64{item.Width, item.Height, 0}, Material: panel, Opacity: opacity, ItemID: item.ID},
		Node{Name: "frame", Kind: KindPlane, Position: [3]float64{0, 0, -0.01},
			Size: [3]float64{item.Width + frameMargin, item.Height + frameMargin, 0}, Material: &motif.Material{Color: frameColor, Roughness: 1}},
	)

	switch item.Type {
	case models.ItemDoor:
		group.Children = append(group.Children, Node{
			Name:     "handle",
			Kind:     KindSphere,
			Position: [3]float64{item.Width * 0.35, -0.2, 0.05},
			Radius:   handleRadius,
			Material: &motif.Material{Color: handleColor, Roughness: 0.1, Metalness: 1},
		})
	case models.ItemWindow:
		bar := &motif.Material{Color: frameColor, Roughness: 1}
		group.Children = append(group.Children,
			Node{Name: "grille-h", Kind: KindPlane, Position: [3]float64{0, 0, 0.01}, Size: [3]float64{item.Width, grilleBar, 0}, Material: bar},
			Node{Name: "grille-v", Kind: KindPlane, Position: [3]float64{0, 0, 0.01}, Size: [3]float64{grilleBar, item.Height, 0}, Material: bar},
		)
	case models.ItemStairs:
		group.Children = append(group.Children, stairsNode(item))
	}
	return group
}

// stairsNode раскладывает ступени лестницы блоками глубиной StepRise.
func stairsNode(item models.RoomItem) Node {
	steps := geometry.StairSteps(item.Width, item.Height)
	group := Node{Name: "steps", Kind: KindGroup, Position: [3]float64{0, 0, 0.01}}
	tread := motif.Material{Color: motif.Shade(item.Color, 0.9), Roughness: 0.7, Metalness: 0.1}
	for _, st := range steps {
		mat := tread
		group.Children = append(group.Children, Node{
			Name:     "step",
			Kind:     KindBox,
			Position: [3]float64{st.X, st.Y, geometry.StepRise / 2},
			Size:     [3]float64{st.Width, st.Height, geometry.StepRise},
			Material: &mat,
		})
	}
	return group
}
