package mosaic

import (
	"fmt"
	"image"
	"math"

	"github.com/mccutchen/palettor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// KMeans quantizes with plain Lloyd's k-means. Unlike Adaptive it asks for
// exactly numColors clusters up front, so it is mostly useful for comparison.
// Initial centers are random, so results vary between runs.
type KMeans struct{}

// Quantize implements Quantizer.
func (KMeans) Quantize(samples []Color, numColors int) (*Quantization, error) {
	distinct, err := distinctSamples(samples, numColors)
	if err != nil {
		return nil, err
	}
	k := numColors
	if k > len(distinct) {
		k = len(distinct)
	}
	if k == len(distinct) {
		// Every distinct color is its own cluster
		return mapSamples(samples, distinct), nil
	}

	dataset := make(clusters.Observations, 0, len(distinct))
	for _, c := range distinct {
		dataset = append(dataset, clusters.Coordinates{float64(c.R), float64(c.G), float64(c.B)})
	}
	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	centers := make([]Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		centers = append(centers, Color{
			R: clampChannel(c.Center[0]),
			G: clampChannel(c.Center[1]),
			B: clampChannel(c.Center[2]),
		})
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("kmeans: no clusters returned")
	}
	return mapSamples(samples, centers), nil
}

// Palettor quantizes with github.com/mccutchen/palettor, which runs k-means
// over the pixels of an image. The samples are laid out as a 1×N image.
type Palettor struct {
	// MaxIterations caps the k-means loop. Zero means 500.
	MaxIterations int
}

// Quantize implements Quantizer.
func (p Palettor) Quantize(samples []Color, numColors int) (*Quantization, error) {
	distinct, err := distinctSamples(samples, numColors)
	if err != nil {
		return nil, err
	}
	k := numColors
	if k >= len(distinct) {
		return mapSamples(samples, distinct), nil
	}

	iters := p.MaxIterations
	if iters <= 0 {
		iters = 500
	}

	img := image.NewNRGBA(image.Rect(0, 0, len(samples), 1))
	for i, s := range samples {
		img.Set(i, 0, s)
	}
	pal, err := palettor.Extract(k, iters, img)
	if err != nil {
		return nil, fmt.Errorf("palettor: %w", err)
	}

	colors := pal.Colors()
	centers := make([]Color, len(colors))
	for i, c := range colors {
		centers[i] = ColorOf(c)
	}
	if len(centers) == 0 {
		return nil, fmt.Errorf("palettor: no colors returned")
	}
	return mapSamples(samples, centers), nil
}

// distinctSamples validates the input and returns the distinct sample colors
// in order of first appearance.
func distinctSamples(samples []Color, numColors int) ([]Color, error) {
	if err := mustBePositive("samples", len(samples)); err != nil {
		return nil, err
	}
	if err := mustBePositive("colors", numColors); err != nil {
		return nil, err
	}
	seen := make(map[Color]bool)
	distinct := make([]Color, 0)
	for _, s := range samples {
		if !seen[s] {
			seen[s] = true
			distinct = append(distinct, s)
		}
	}
	return distinct, nil
}

// mapSamples assigns each sample to its nearest center. Centers no sample
// maps to are dropped.
func mapSamples(samples []Color, centers []Color) *Quantization {
	raw := make([]int, len(samples))
	used := make([]int, len(centers))
	for i, s := range samples {
		raw[i], _ = nearest(s, centers)
		used[raw[i]]++
	}

	q := &Quantization{
		Assign:    make([]int, len(samples)),
		Colors:    make([]Color, len(samples)),
		Converged: true,
	}
	index := make([]int, len(centers))
	for c := range centers {
		if used[c] > 0 {
			index[c] = len(q.Centroids)
			q.Centroids = append(q.Centroids, centers[c])
		}
	}
	for i := range samples {
		q.Assign[i] = index[raw[i]]
		q.Colors[i] = q.Centroids[q.Assign[i]]
	}
	return q
}

func clampChannel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
