package geometry

import "math"

// StepRise - номинальная высота ступени.
const StepRise = 0.2

// Step - одна ступень в локальных координатах элемента (центр, размеры).
type Step struct {
	Index  int     `json:"index"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// StairSteps делит лестницу на ступени равной высоты.
// Ширина ступени растёт линейно, ступени выровнены по левому краю.
func StairSteps(width, height float64) []Step {
	if width <= 0 || height <= 0 {
		return nil
	}

	count := int(math.Ceil(height/StepRise - 1e-9))
	if count < 1 {
		count = 1
	}
	rise := height / float64(count)
	depth := width / float64(count)

	steps := make([]Step, 0, count)
	for i := 0; i < count; i++ {
		w := float64(i+1) * depth
		steps = append(steps, Step{
			Index:  i,
			X:      -width/2 + w/2,
			Y:      -height/2 + (float64(i)+0.5)*rise,
			Width:  w,
			Height: rise,
		})
	}
	return steps
}
