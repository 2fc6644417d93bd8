package mosaic

// Quantizer reduces a set of sample colors to a small palette.
type Quantizer interface {
	// Quantize returns a mapping of every sample onto a representative color.
	// numColors is a target, implementations may return fewer colors.
	Quantize(samples []Color, numColors int) (*Quantization, error)
}

// Quantization is the result of reducing a sample set.
type Quantization struct {
	// Assign holds, for every sample, an index into Centroids.
	Assign []int
	// Colors holds, for every sample, the color it was reduced to.
	// Colors[i] == Centroids[Assign[i]].
	Colors []Color
	// Centroids is the final palette, in cluster order.
	Centroids []Color
	// Iterations is the iteration the loop stopped at. If Converged is false
	// the iteration cap was hit and Iterations equals it.
	//
	// An iteration converges when it leaves the centroid list exactly as it
	// found it. The list starts as a single black centroid, so a single
	// non-black sample converges at iteration 1, not 0: iteration 0 moves the
	// centroid onto the sample. Only an all-black input converges at 0.
	Iterations int
	Converged  bool
}

// Palette returns the distinct colors actually used by samples, in order of
// first use.
func (q *Quantization) Palette() []Color {
	seen := make(map[Color]bool, len(q.Centroids))
	p := make([]Color, 0, len(q.Centroids))
	for _, c := range q.Colors {
		if !seen[c] {
			seen[c] = true
			p = append(p, c)
		}
	}
	return p
}

// pruneDivisor sets the population threshold under which a cluster is
// dropped: count*pruneDivisor <= N, i.e. at most 0.1% of the samples.
const pruneDivisor = 1000

// Adaptive grows a palette one color at a time, starting from a single black
// centroid. Each iteration it
//
//  1. assigns every sample to its closest centroid, remembering the sample
//     that is furthest from its centroid
//  2. moves each centroid to the rounded mean of its samples
//  3. drops centroids holding at most 0.1% of the samples
//  4. adds the furthest sample as a new centroid, if below the target
//
// and stops once an iteration leaves the centroid list unchanged.
//
// The target is soft. Pruning can remove many centroids in one iteration while
// growth only adds one back, so the palette may end up smaller than asked for,
// and its size can go up and down between iterations.
type Adaptive struct {
	// MaxIterations caps the loop. It must be at least 1.
	MaxIterations int

	// Trace, if set, is called at the start of every iteration with the
	// current number of centroids.
	Trace func(iteration, colors int)
}

// Quantize implements Quantizer.
func (a *Adaptive) Quantize(samples []Color, numColors int) (*Quantization, error) {
	n := len(samples)
	if err := mustBePositive("samples", n); err != nil {
		return nil, err
	}
	if err := mustBePositive("colors", numColors); err != nil {
		return nil, err
	}
	if err := mustBePositive("iterations", a.MaxIterations); err != nil {
		return nil, err
	}

	centroids := []Color{Black}
	assign := make([]int, n)
	// survivor maps a centroid index from the last assignment step to its
	// index after pruning, or -1 if it was pruned.
	var survivor []int

	q := &Quantization{Iterations: a.MaxIterations}

	for it := 0; it < a.MaxIterations; it++ {
		if a.Trace != nil {
			a.Trace(it, len(centroids))
		}

		// Assignment
		sums := make([][3]int, len(centroids))
		counts := make([]int, len(centroids))
		worst, worstDist := 0, -1
		for i, s := range samples {
			id, dist := nearest(s, centroids)
			if dist > worstDist {
				worst, worstDist = i, dist
			}
			assign[i] = id
			sums[id][0] += int(s.R)
			sums[id][1] += int(s.G)
			sums[id][2] += int(s.B)
			counts[id]++
		}

		// Recompute, into a fresh list so the old one can be compared against
		next := make([]Color, len(centroids))
		for c := range centroids {
			if counts[c] == 0 {
				next[c] = centroids[c]
				continue
			}
			next[c] = Color{
				R: roundDiv(sums[c][0], counts[c]),
				G: roundDiv(sums[c][1], counts[c]),
				B: roundDiv(sums[c][2], counts[c]),
			}
		}

		// Prune, from the back so earlier indices stay put
		survivor = make([]int, len(next))
		for c := len(next) - 1; c >= 0; c-- {
			if counts[c]*pruneDivisor <= n {
				next = append(next[:c], next[c+1:]...)
				survivor[c] = -1
			}
		}
		kept := 0
		for c := range survivor {
			if survivor[c] == 0 {
				survivor[c] = kept
				kept++
			}
		}

		// Grow
		if len(next) < numColors {
			next = append(next, samples[worst])
		}

		same := equalColors(centroids, next)
		centroids = next
		if same {
			q.Iterations = it
			q.Converged = true
			break
		}
	}

	q.Centroids = centroids
	q.Assign = make([]int, n)
	q.Colors = make([]Color, n)
	for i, s := range samples {
		id := survivor[assign[i]]
		if id < 0 {
			// The sample's cluster was pruned on the last iteration
			id, _ = nearest(s, centroids)
		}
		q.Assign[i] = id
		q.Colors[i] = centroids[id]
	}
	return q, nil
}

// nearest returns the index of the closest centroid and its distance.
// Ties go to the lowest index.
func nearest(c Color, centroids []Color) (int, int) {
	id, best := -1, 0
	for k, cc := range centroids {
		d := c.Dist(cc)
		if id == -1 || d < best {
			id, best = k, d
		}
	}
	return id, best
}

// roundDiv divides two non-negative ints, rounding halves up.
func roundDiv(sum, count int) uint8 {
	return uint8((2*sum + count) / (2 * count))
}

func equalColors(a, b []Color) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
