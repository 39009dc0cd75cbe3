package target

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/sadopc/logbook/internal/model"
)

// Color is a status color as a CSS color-mix expression and its resolved hex.
type Color struct {
	CSS string
	Hex string
}

type stop struct {
	name string
	rgb  colorful.Color
}

var (
	red    = stop{"red", colorful.Color{R: 1, G: 0, B: 0}}
	yellow = stop{"yellow", colorful.Color{R: 1, G: 1, B: 0}}
	green  = stop{"green", colorful.Color{R: 0, G: 128.0 / 255.0, B: 0}}
)

var Neutral = Color{CSS: "gray", Hex: "#808080"}

// ColorFor maps a completion percentage onto red, yellow, green, or the
// reverse for inverted categories. 0, 50 and 100 hit the stops exactly.
func ColorFor(cat model.Category, percentage float64) Color {
	stops := [3]stop{red, yellow, green}
	if cat.Inverted {
		stops = [3]stop{green, yellow, red}
	}
	p := min(max(percentage, 0), 100)

	from, to, mix := stops[0], stops[1], p*2
	if p > 50 {
		from, to, mix = stops[1], stops[2], (p-50)*2
	}
	return Color{
		CSS: fmt.Sprintf("color-mix(in srgb, %s, %s %s%%)", from.name, to.name, strconv.FormatFloat(mix, 'f', -1, 64)),
		Hex: from.rgb.BlendRgb(to.rgb, mix/100).Clamped().Hex(),
	}
}
