package motif

import (
	"regexp"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// detailFactor затемняет базовый цвет для декоративных деталей.
const detailFactor = 0.9

// hexPattern отсекает хвосты, которые colorful.Hex пропускает через Sscanf.
var hexPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Shade умножает цвет на коэффициент в линейном RGB и возвращает hex.
// Нераспознанный цвет возвращается как есть.
func Shade(hex string, factor float64) string {
	if !ValidColor(hex) {
		return hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	r, g, b := c.LinearRgb()
	return colorful.LinearRgb(r*factor, g*factor, b*factor).Clamped().Hex()
}

// ValidColor проверяет формат #rrggbb / #rgb.
func ValidColor(hex string) bool {
	if !hexPattern.MatchString(hex) {
		return false
	}
	_, err := colorful.Hex(hex)
	return err == nil
}
