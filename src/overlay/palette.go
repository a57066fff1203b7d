package overlay

import "image/color"

var (
	colorPrimary      = color.RGBA{R: 0xff, G: 0xd2, B: 0x00, A: 0xff}
	colorLight        = color.RGBA{R: 0x8a, G: 0x91, B: 0x99, A: 0xff}
	colorLightHovered = color.RGBA{R: 0xbf, G: 0xc4, B: 0xca, A: 0xff}
	colorDark         = color.RGBA{R: 0x33, G: 0x31, B: 0x32, A: 0xff}
	colorBlack        = color.RGBA{A: 0xff}
	colorWhite        = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Scheme is the color triple of one overlay window.
type Scheme struct {
	Background      color.RGBA
	LabelBackground color.RGBA
	LabelText       color.RGBA
}

// SchemeFor maps the two presentation booleans to a scheme. It has no other
// inputs, so every window in the same state looks the same.
func SchemeFor(selected, hovered bool) Scheme {
	switch {
	case selected && hovered:
		return Scheme{Background: colorPrimary, LabelBackground: colorWhite, LabelText: colorDark}
	case selected:
		return Scheme{Background: colorPrimary, LabelBackground: colorDark, LabelText: colorWhite}
	case hovered:
		return Scheme{Background: colorDark, LabelBackground: colorLightHovered, LabelText: colorWhite}
	default:
		return Scheme{Background: colorBlack, LabelBackground: colorLight, LabelText: colorWhite}
	}
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
