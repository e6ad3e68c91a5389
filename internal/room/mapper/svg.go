package mapper

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"archiviz/internal/room/geometry"
	"archiviz/internal/room/models"
	"archiviz/internal/room/motif"
)

// ============================================================
// Renderer
// ============================================================

// DefaultScale - пикселей на метр в развёртке.
const DefaultScale = 50

// Renderer рисует развёртку одной поверхности в SVG.
type Renderer struct {
	Scale float64
}

func NewRenderer(scale float64) *Renderer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Renderer{Scale: scale}
}

// RenderSurfaceSVG рисует поверхность с масштабом по умолчанию.
func RenderSurfaceSVG(s models.ViewState, side models.RoomSide) (string, error) {
	return NewRenderer(DefaultScale).Render(s, side)
}

// Render собирает SVG: плоскость, мотив, элементы с рамками и ступенями.
func (r *Renderer) Render(s models.ViewState, side models.RoomSide) (string, error) {
	if !side.Valid() {
		return "", fmt.Errorf("unknown side %q", side)
	}
	st, ok := s.Sides[side]
	if !ok {
		return "", fmt.Errorf("side %q has no material", side)
	}

	w, h := s.Dimensions.SurfaceSize(side)
	pw, ph := w*r.Scale, h*r.Scale
	frame := plane{w: w, h: h, scale: r.Scale}

	var elements []string
	elements = append(elements, fmt.Sprintf(`<rect id="%s" x="0" y="0" width="%s" height="%s" fill="%s" />`,
		html.EscapeString(SurfaceName(side)), formatFloat(pw), formatFloat(ph), html.EscapeString(st.Color)))
	elements = append(elements, r.renderMotif(frame, motif.Generate(st.Motif, w, h, st.Color))...)
	if side.IsWall() {
		for _, item := range s.ItemsOn(side) {
			elements = append(elements, r.renderItem(frame, item, s.Selection.ItemID == item.ID)...)
		}
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(pw), formatFloat(ph), formatFloat(pw), formatFloat(ph)))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Element renderers
// ============================================================

func (r *Renderer) renderMotif(p plane, layout motif.Layout) []string {
	var out []string
	for _, b := range layout.Boxes {
		out = append(out, p.rect("", b.Position.X, b.Position.Y, b.Size.X, b.Size.Y,
			fmt.Sprintf(`fill="%s"`, html.EscapeString(b.Material.Color))))
	}
	return out
}

func (r *Renderer) renderItem(p plane, item models.RoomItem, selected bool) []string {
	var out []string

	out = append(out, p.rect("", item.X, item.Y, item.Width+frameMargin, item.Height+frameMargin,
		fmt.Sprintf(`fill="%s"`, frameColor)))

	attrs := fmt.Sprintf(`fill="%s"`, html.EscapeString(item.Color))
	if item.Type == models.ItemWindow {
		attrs += ` fill-opacity="0.7"`
	}
	if selected {
		attrs += fmt.Sprintf(` stroke="%s" stroke-width="2"`, selectedItemEmissive)
	}
	out = append(out, p.rect(item.ID, item.X, item.Y, item.Width, item.Height, attrs))

	switch item.Type {
	case models.ItemDoor:
		cx, cy := p.point(item.X+item.Width*0.35, item.Y-0.2)
		out = append(out, fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="%s" />`,
			formatFloat(cx), formatFloat(cy), formatFloat(handleRadius*p.scale), handleColor))
	case models.ItemWindow:
		bar := fmt.Sprintf(`fill="%s"`, frameColor)
		out = append(out,
			p.rect("", item.X, item.Y, item.Width, grilleBar, bar),
			p.rect("", item.X, item.Y, grilleBar, item.Height, bar),
		)
	case models.ItemStairs:
		tread := fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="1"`, html.EscapeString(motif.Shade(item.Color, 0.9)), frameColor)
		for _, st := range geometry.StairSteps(item.Width, item.Height) {
			out = append(out, p.rect("", item.X+st.X, item.Y+st.Y, st.Width, st.Height, tread))
		}
	}
	return out
}

// ============================================================
// Geometry helpers
// ============================================================

// plane переводит локальные координаты поверхности (центр, ось Y вверх)
// в координаты SVG (левый верхний угол, ось Y вниз).
type plane struct {
	w, h, scale float64
}

func (p plane) point(x, y float64) (float64, float64) {
	return (x + p.w/2) * p.scale, (p.h/2 - y) * p.scale
}

// rect рисует прямоугольник по центру и размерам в метрах.
// Значения в attrs должны быть уже экранированы.
func (p plane) rect(id string, cx, cy, w, h float64, attrs string) string {
	x, y := p.point(cx-w/2, cy+h/2)
	idAttr := ""
	if id != "" {
		idAttr = fmt.Sprintf(`id="%s" `, html.EscapeString(id))
	}
	return fmt.Sprintf(`<rect %sx="%s" y="%s" width="%s" height="%s" %s />`,
		idAttr, formatFloat(x), formatFloat(y), formatFloat(w*p.scale), formatFloat(h*p.scale), attrs)
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(math.Round(val*1000)/1000+0, 'f', -1, 64)
}
