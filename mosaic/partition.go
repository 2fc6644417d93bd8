package mosaic

import (
	"fmt"
	"math/rand"
)

// Seed is a grid coordinate a region grows from. Its identity is its index
// in the seed slice, so duplicate coordinates are still distinct seeds.
type Seed struct {
	Row, Col int
}

// RandomSeeds picks k seeds uniformly from an h×w grid. Duplicates are kept.
func RandomSeeds(rng *rand.Rand, w, h, k int) ([]Seed, error) {
	if err := mustBePositive("regions", k); err != nil {
		return nil, err
	}
	if err := mustBePositive("width", w); err != nil {
		return nil, err
	}
	if err := mustBePositive("height", h); err != nil {
		return nil, err
	}
	seeds := make([]Seed, k)
	for i := range seeds {
		seeds[i] = Seed{Row: rng.Intn(h), Col: rng.Intn(w)}
	}
	return seeds, nil
}

// unowned marks a cell no seed has reached yet.
const unowned = -1

// RegionMap holds, for every cell of a grid, the index of the seed that owns it.
type RegionMap struct {
	W, H  int
	Owner []int
}

// At returns the owning seed index of row i, column j.
func (m *RegionMap) At(i, j int) int {
	return m.Owner[i*m.W+j]
}

// Sizes returns the number of cells owned by each of the k seeds.
// Duplicate seeds can own zero cells.
func (m *RegionMap) Sizes(k int) []int {
	sizes := make([]int, k)
	for _, o := range m.Owner {
		sizes[o]++
	}
	return sizes
}

// Neighbour offsets in visiting order: left, right, down, up.
// The order decides which seed wins a tie, so it must not change.
var (
	di = [4]int{0, 0, 1, -1}
	dj = [4]int{-1, 1, 0, 0}
)

// Partition assigns every cell of an h×w grid to its nearest seed, where
// "nearest" is the number of up/down/left/right steps, not Euclidean
// distance. This approximates a Voronoi diagram with Manhattan-shaped cells.
//
// It's a multi-source breadth-first search: all seeds start at depth zero,
// enqueued in index order, and the queue is first-in-first-out. A cell
// equally far from several seeds goes to whichever expansion reaches it first,
// which is the lowest seed index among those at that depth. A seed whose cell
// was already claimed by an earlier duplicate never expands and owns nothing.
func Partition(w, h int, seeds []Seed) (*RegionMap, error) {
	if err := mustBePositive("width", w); err != nil {
		return nil, err
	}
	if err := mustBePositive("height", h); err != nil {
		return nil, err
	}
	if err := mustBePositive("regions", len(seeds)); err != nil {
		return nil, err
	}

	owner := make([]int, w*h)
	for i := range owner {
		owner[i] = unowned
	}

	// Queue of cell offsets. Every cell is pushed at most once.
	queue := make([]int, 0, w*h)
	for p, s := range seeds {
		if s.Row < 0 || s.Row >= h || s.Col < 0 || s.Col >= w {
			return nil, &ConfigError{
				Param:  fmt.Sprintf("seed %d (%d,%d)", p, s.Row, s.Col),
				Value:  p,
				Reason: fmt.Sprintf("is outside the %dx%d grid", w, h),
			}
		}
		at := s.Row*w + s.Col
		if owner[at] != unowned {
			continue
		}
		owner[at] = p
		queue = append(queue, at)
	}

	for head := 0; head < len(queue); head++ {
		at := queue[head]
		i, j := at/w, at%w
		for d := 0; d < 4; d++ {
			ii, jj := i+di[d], j+dj[d]
			if ii < 0 || ii >= h || jj < 0 || jj >= w {
				continue
			}
			next := ii*w + jj
			if owner[next] != unowned {
				continue
			}
			owner[next] = owner[at]
			queue = append(queue, next)
		}
	}

	return &RegionMap{W: w, H: h, Owner: owner}, nil
}
