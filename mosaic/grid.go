package mosaic

import (
	"image"
	"image/color"
)

// Channels is the only channel count a raw pixel buffer may have.
const Channels = 3

// Grid is a row-major rectangle of colors. Its size is fixed when it's made.
//
// Grid implements image.Image, so it can be handed straight to an encoder.
type Grid struct {
	W, H int
	Pix  []Color
}

// NewGrid returns a black grid of the given size.
func NewGrid(w, h int) (*Grid, error) {
	if err := mustBePositive("width", w); err != nil {
		return nil, err
	}
	if err := mustBePositive("height", h); err != nil {
		return nil, err
	}
	return &Grid{W: w, H: h, Pix: make([]Color, w*h)}, nil
}

// FromBytes builds a grid from interleaved 8-bit RGB data, like the buffers
// returned by most image decoders. Any channel count other than 3 is rejected.
func FromBytes(w, h, channels int, buf []byte) (*Grid, error) {
	if channels != Channels {
		return nil, &FormatError{Channels: channels, Len: len(buf)}
	}
	g, err := NewGrid(w, h)
	if err != nil {
		return nil, err
	}
	if len(buf) != w*h*Channels {
		return nil, &FormatError{Channels: channels, Len: len(buf), Want: w * h * Channels}
	}
	for i := range g.Pix {
		g.Pix[i] = Color{buf[i*3], buf[i*3+1], buf[i*3+2]}
	}
	return g, nil
}

// FromImage copies an image into a new grid. Alpha is dropped.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	g, err := NewGrid(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	// Fast path for the type imaging returns
	if n, ok := img.(*image.NRGBA); ok {
		for y := 0; y < g.H; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < g.W; x++ {
				g.Pix[y*g.W+x] = Color{row[x*4], row[x*4+1], row[x*4+2]}
			}
		}
		return g, nil
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.Pix[y*g.W+x] = ColorOf(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return g, nil
}

// Bytes returns the grid as interleaved 8-bit RGB data.
func (g *Grid) Bytes() []byte {
	buf := make([]byte, 0, len(g.Pix)*Channels)
	for _, c := range g.Pix {
		buf = append(buf, c.R, c.G, c.B)
	}
	return buf
}

// Get returns the color at row i, column j.
func (g *Grid) Get(i, j int) Color {
	return g.Pix[i*g.W+j]
}

// Set changes the color at row i, column j.
func (g *Grid) Set(i, j int, c Color) {
	g.Pix[i*g.W+j] = c
}

func (g *Grid) ColorModel() color.Model {
	return ColorModel
}

func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.W, g.H)
}

func (g *Grid) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return Color{}
	}
	return g.Pix[y*g.W+x]
}
