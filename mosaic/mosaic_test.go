package mosaic

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halves returns a 4x4 grid, red on the left two columns, blue on the right.
func halves(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(4, 4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if j < 2 {
				g.Set(i, j, red)
			} else {
				g.Set(i, j, blue)
			}
		}
	}
	return g
}

func TestRenderHalvesFlat(t *testing.T) {
	src := halves(t)
	res, err := RenderSeeds(src, []Seed{{1, 1}, {1, 2}}, Options{Colors: 2})
	require.NoError(t, err)
	assert.Equal(t, src.Pix, res.Image.Pix)
	assert.True(t, res.Quantization.Converged)
}

func TestRenderHalvesBordered(t *testing.T) {
	src := halves(t)
	for _, border := range []BorderKind{ColorBorder, RegionBorder} {
		res, err := RenderSeeds(src, []Seed{{1, 1}, {1, 2}}, Options{
			Colors:  2,
			Compose: ComposeOptions{Mode: Bordered, Border: border},
		})
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			assert.Equal(t, red, res.Image.Get(i, 0), border.String())
			assert.Equal(t, Black, res.Image.Get(i, 1), border.String())
			assert.Equal(t, Black, res.Image.Get(i, 2), border.String())
			assert.Equal(t, blue, res.Image.Get(i, 3), border.String())
		}
	}
}

func TestRenderSingleRegion(t *testing.T) {
	src, err := FromBytes(3, 2, 3, []byte{
		9, 8, 7, 1, 1, 1, 2, 2, 2,
		3, 3, 3, 4, 4, 4, 5, 5, 5,
	})
	require.NoError(t, err)

	res, err := Render(src, rand.New(rand.NewSource(99)), Options{Regions: 1, Colors: 1})
	require.NoError(t, err)
	seed := src.Get(res.Seeds[0].Row, res.Seeds[0].Col)
	for k := range res.Regions.Owner {
		assert.Equal(t, 0, res.Regions.Owner[k])
		assert.Equal(t, seed, res.Image.Pix[k])
	}
	assert.Equal(t, []Color{seed}, res.Quantization.Centroids)
}

func TestRenderReproducible(t *testing.T) {
	src := randomGrid(60, 40, 8)
	opt := Options{Regions: 50, Colors: 6, Compose: ComposeOptions{Mode: Bordered}}
	a, err := Render(src, rand.New(rand.NewSource(1)), opt)
	require.NoError(t, err)
	b, err := Render(src, rand.New(rand.NewSource(1)), opt)
	require.NoError(t, err)
	assert.Equal(t, a.Image.Pix, b.Image.Pix)
	assert.Equal(t, a.Seeds, b.Seeds)
	assert.LessOrEqual(t, len(a.Quantization.Palette()), 6)
}

func TestRenderInvalid(t *testing.T) {
	src := randomGrid(4, 4, 1)
	rng := rand.New(rand.NewSource(1))
	for name, opt := range map[string]Options{
		"no regions": {Regions: 0, Colors: 3},
		"no colors":  {Regions: 3, Colors: 0},
		"negative":   {Regions: 3, Colors: -2},
	} {
		_, err := Render(src, rng, opt)
		assert.True(t, errors.Is(err, ErrInvalidConfig), name)
	}

	_, err := Render(nil, rng, Options{Regions: 1, Colors: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Render(&Grid{}, rng, Options{Regions: 1, Colors: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = RenderSeeds(src, nil, Options{Colors: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	// Pix doesn't match W*H
	for _, g := range []*Grid{{W: 4, H: 4}, {W: 2, H: 2, Pix: make([]Color, 3)}} {
		require.NotPanics(t, func() {
			_, err = RenderSeeds(g, []Seed{{1, 1}}, Options{Colors: 1})
		})
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "image pixels", ce.Param)
	}
}

func TestRenderOtherQuantizers(t *testing.T) {
	src := randomGrid(30, 30, 4)
	for _, q := range []Quantizer{KMeans{}, Palettor{}} {
		res, err := Render(src, rand.New(rand.NewSource(2)), Options{Regions: 40, Colors: 4, Quantizer: q})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(res.Quantization.Palette()), 4)
	}
}

func TestFromBytes(t *testing.T) {
	_, err := FromBytes(1, 1, 4, []byte{1, 2, 3, 4})
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 4, fe.Channels)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = FromBytes(2, 1, 3, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrFormat)

	_, err = FromBytes(0, 1, 3, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	buf := []byte{1, 2, 3, 4, 5, 6}
	g, err := FromBytes(2, 1, 3, buf)
	require.NoError(t, err)
	assert.Equal(t, Color{4, 5, 6}, g.Get(0, 1))
	assert.Equal(t, buf, g.Bytes())
}

func TestGridImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 8, 7))
	img.Set(6, 6, color.RGBA{10, 20, 30, 255})
	g, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 3, g.W)
	assert.Equal(t, 2, g.H)
	assert.Equal(t, Color{10, 20, 30}, g.Get(1, 1))

	n := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	n.SetNRGBA(1, 0, color.NRGBA{7, 8, 9, 128})
	g2, err := FromImage(n)
	require.NoError(t, err)
	assert.Equal(t, Color{7, 8, 9}, g2.Get(0, 1), "alpha is dropped")

	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, color.NRGBAModel.Convert(g.At(1, 1)))
	assert.Equal(t, image.Rect(0, 0, 3, 2), g.Bounds())
}

func randomGrid(w, h int, seed int64) *Grid {
	rng := rand.New(rand.NewSource(seed))
	g := &Grid{W: w, H: h, Pix: make([]Color, w*h)}
	for i := range g.Pix {
		g.Pix[i] = Color{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256))}
	}
	return g
}
