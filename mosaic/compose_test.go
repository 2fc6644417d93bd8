package mosaic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeFlat(t *testing.T) {
	m := &RegionMap{W: 3, H: 2, Owner: []int{0, 0, 1, 2, 2, 1}}
	pal := []Color{red, blue, {1, 2, 3}}
	out, err := Compose(m, pal, ComposeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Color{red, red, blue, {1, 2, 3}, {1, 2, 3}, blue}, out.Pix)
}

func TestComposeRegionBorderSplit(t *testing.T) {
	m, err := Partition(2, 2, []Seed{{0, 0}, {0, 1}})
	require.NoError(t, err)

	// Same color on both sides: only the region border sees the seam
	pal := []Color{red, red}
	out, err := Compose(m, pal, ComposeOptions{Mode: Bordered, Border: RegionBorder})
	require.NoError(t, err)
	for _, c := range out.Pix {
		assert.Equal(t, Black, c)
	}

	out, err = Compose(m, pal, ComposeOptions{Mode: Bordered, Border: ColorBorder})
	require.NoError(t, err)
	for _, c := range out.Pix {
		assert.Equal(t, red, c)
	}
}

// A pixel is a border pixel iff one of its 4-neighbours is in another region
func TestComposeRegionBorderIff(t *testing.T) {
	const w, h = 23, 17
	seeds, err := RandomSeeds(rand.New(rand.NewSource(5)), w, h, 12)
	require.NoError(t, err)
	m, err := Partition(w, h, seeds)
	require.NoError(t, err)

	pal := make([]Color, len(seeds))
	for i := range pal {
		pal[i] = Color{200, uint8(i * 10), 50}
	}
	out, err := Compose(m, pal, ComposeOptions{Mode: Bordered, Border: RegionBorder})
	require.NoError(t, err)

	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			want := false
			for _, n := range [][2]int{{i - 1, j}, {i + 1, j}, {i, j - 1}, {i, j + 1}} {
				if n[0] < 0 || n[0] >= h || n[1] < 0 || n[1] >= w {
					continue
				}
				if m.At(n[0], n[1]) != m.At(i, j) {
					want = true
				}
			}
			if want {
				assert.Equal(t, Black, out.Get(i, j), "(%d,%d)", i, j)
			} else {
				assert.Equal(t, pal[m.At(i, j)], out.Get(i, j), "(%d,%d)", i, j)
			}
		}
	}
}

func TestComposeBorderColor(t *testing.T) {
	m := &RegionMap{W: 2, H: 1, Owner: []int{0, 1}}
	white := Color{255, 255, 255}
	out, err := Compose(m, []Color{red, blue}, ComposeOptions{Mode: Bordered, BorderColor: white})
	require.NoError(t, err)
	assert.Equal(t, []Color{white, white}, out.Pix)
}

func TestComposeShortPalette(t *testing.T) {
	m := &RegionMap{W: 2, H: 1, Owner: []int{0, 1}}
	_, err := Compose(m, []Color{red}, ComposeOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
