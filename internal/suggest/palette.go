package suggest

import (
	"context"
	"sync"

	"archiviz/internal/room/catalog"
	"archiviz/internal/room/models"
)

// Palette - офлайн-подсказчик для окружений без ключа Gemini:
// по очереди раскладывает предустановленные палитры по поверхностям.
type Palette struct {
	mu   sync.Mutex
	next int
}

func NewPalette() *Palette {
	return &Palette{}
}

// paletteSlots сопоставляет поверхности индексам цветов палитры (5 цветов).
var paletteSlots = map[models.RoomSide]int{
	models.WallNorth: 1,
	models.WallSouth: 2,
	models.WallEast:  2,
	models.WallWest:  2,
	models.Floor:     3,
	models.Ceiling:   0,
}

var paletteFinish = map[models.RoomSide][2]float64{
	models.WallNorth: {0.8, 0.1},
	models.WallSouth: {0.8, 0.1},
	models.WallEast:  {0.8, 0.1},
	models.WallWest:  {0.8, 0.1},
	models.Floor:     {0.6, 0.2},
	models.Ceiling:   {0.9, 0.0},
}

func (p *Palette) Suggest(ctx context.Context) (models.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	palette := catalog.Palettes[p.next%len(catalog.Palettes)]
	p.next++
	p.mu.Unlock()

	out := make(models.Suggestion, len(models.AllSides))
	for _, side := range models.AllSides {
		finish := paletteFinish[side]
		out[side] = models.SurfaceFinish{
			Color:     palette.Colors[paletteSlots[side]],
			Roughness: finish[0],
			Metalness: finish[1],
		}
	}
	return out, nil
}
