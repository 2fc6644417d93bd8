// Package mosaic renders an image as a mosaic of flat-colored regions.
//
// The pipeline has three stages. Partition grows regions from seed points by
// breadth-first search over the pixel grid. A Quantizer reduces the seed
// colors to a small palette. Compose paints each region with its reduced
// color, optionally marking boundaries.
//
// Everything runs synchronously on the caller's goroutine. Seeds come from the
// *rand.Rand passed to Render, and the default Adaptive quantizer is
// deterministic, so a fixed source gives reproducible output. KMeans and
// Palettor pick their initial centers from the global math/rand state and
// are not reproducible this way.
package mosaic

import (
	"fmt"
	"math/rand"
)

// Options configures Render.
type Options struct {
	// Regions is the number of seed points. Must be at least 1.
	Regions int
	// Colors is the target palette size. Must be at least 1.
	Colors int
	// Quantizer reduces the seed colors. Nil means Adaptive with
	// Colors+10 iterations.
	Quantizer Quantizer
	Compose   ComposeOptions
}

func (o *Options) quantizer() Quantizer {
	if o.Quantizer != nil {
		return o.Quantizer
	}
	return &Adaptive{MaxIterations: o.Colors + 10}
}

// Result holds the output image and the intermediate products that made it.
type Result struct {
	Image        *Grid
	Seeds        []Seed
	Regions      *RegionMap
	Quantization *Quantization
}

// Render picks opt.Regions random seeds from src and renders the mosaic.
func Render(src *Grid, rng *rand.Rand, opt Options) (*Result, error) {
	if err := validate(src, opt); err != nil {
		return nil, err
	}
	seeds, err := RandomSeeds(rng, src.W, src.H, opt.Regions)
	if err != nil {
		return nil, err
	}
	return RenderSeeds(src, seeds, opt)
}

// RenderSeeds renders the mosaic for a given seed list. opt.Regions is
// ignored, the number of regions is len(seeds).
func RenderSeeds(src *Grid, seeds []Seed, opt Options) (*Result, error) {
	opt.Regions = len(seeds)
	if err := validate(src, opt); err != nil {
		return nil, err
	}

	regions, err := Partition(src.W, src.H, seeds)
	if err != nil {
		return nil, err
	}

	samples := make([]Color, len(seeds))
	for p, s := range seeds {
		samples[p] = src.Get(s.Row, s.Col)
	}
	q, err := opt.quantizer().Quantize(samples, opt.Colors)
	if err != nil {
		return nil, err
	}

	img, err := Compose(regions, q.Colors, opt.Compose)
	if err != nil {
		return nil, err
	}
	return &Result{
		Image:        img,
		Seeds:        seeds,
		Regions:      regions,
		Quantization: q,
	}, nil
}

func validate(src *Grid, opt Options) error {
	if src == nil {
		return &ConfigError{Param: "image", Reason: "is missing"}
	}
	if src.W < 1 || src.H < 1 {
		return &ConfigError{Param: "image area", Value: src.W * src.H, Reason: "must be at least 1"}
	}
	if len(src.Pix) != src.W*src.H {
		return &ConfigError{
			Param:  "image pixels",
			Value:  len(src.Pix),
			Reason: fmt.Sprintf("don't fill a %dx%d grid", src.W, src.H),
		}
	}
	if err := mustBePositive("regions", opt.Regions); err != nil {
		return err
	}
	return mustBePositive("colors", opt.Colors)
}
