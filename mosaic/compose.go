package mosaic

import "fmt"

// Mode selects how Compose renders regions.
type Mode int

const (
	// Flat fills every region with its palette color.
	Flat Mode = iota
	// Bordered is Flat with boundary pixels painted in the border color.
	Bordered
)

func (m Mode) String() string {
	switch m {
	case Bordered:
		return "bordered"
	default:
		return "flat"
	}
}

// BorderKind decides what counts as a boundary in Bordered mode.
type BorderKind int

const (
	// ColorBorder marks pixels next to a pixel of a different palette color.
	// Neighbouring regions that were reduced to the same color merge visually.
	ColorBorder BorderKind = iota
	// RegionBorder marks pixels next to a pixel of a different region, even
	// when both regions have the same color.
	RegionBorder
)

func (b BorderKind) String() string {
	switch b {
	case RegionBorder:
		return "region"
	default:
		return "color"
	}
}

// ComposeOptions controls Compose. The zero value renders flat.
type ComposeOptions struct {
	Mode        Mode
	Border      BorderKind
	BorderColor Color
}

// Compose paints every cell with the palette color of the region owning it.
// palette is indexed by seed index and must cover every region in the map.
func Compose(regions *RegionMap, palette []Color, opt ComposeOptions) (*Grid, error) {
	out, err := NewGrid(regions.W, regions.H)
	if err != nil {
		return nil, err
	}
	for _, o := range regions.Owner {
		if o < 0 || o >= len(palette) {
			return nil, &ConfigError{
				Param:  "palette",
				Value:  len(palette),
				Reason: fmt.Sprintf("has no color for region %d", o),
			}
		}
	}

	for k, o := range regions.Owner {
		out.Pix[k] = palette[o]
	}
	if opt.Mode != Bordered {
		return out, nil
	}

	// Borders are decided on the flat fill, then painted into a copy
	flat := make([]Color, len(out.Pix))
	copy(flat, out.Pix)

	w, h := regions.W, regions.H
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			at := i*w + j
			for d := 0; d < 4; d++ {
				ii, jj := i+di[d], j+dj[d]
				if ii < 0 || ii >= h || jj < 0 || jj >= w {
					continue
				}
				next := ii*w + jj
				var differs bool
				if opt.Border == RegionBorder {
					differs = regions.Owner[next] != regions.Owner[at]
				} else {
					differs = flat[next] != flat[at]
				}
				if differs {
					out.Pix[at] = opt.BorderColor
					break
				}
			}
		}
	}
	return out, nil
}
