package mosaic

import "image/color"

// Color is an opaque 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Black is the default border color.
var Black = Color{}

// Dist returns the squared Euclidean distance between two colors.
// The square root is never taken, only ordering matters.
func (c Color) Dist(o Color) int {
	dr := int(c.R) - int(o.R)
	dg := int(c.G) - int(o.G)
	db := int(c.B) - int(o.B)
	return dr*dr + dg*dg + db*db
}

// RGBA implements color.Color. The color is always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// ColorOf converts any color.Color to a Color, dropping alpha.
// Premultiplied colors are un-premultiplied first.
func ColorOf(c color.Color) Color {
	if mc, ok := c.(Color); ok {
		return mc
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}

// ColorModel converts colors to Color.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	return ColorOf(c)
})
