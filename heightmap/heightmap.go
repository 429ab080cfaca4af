// Package heightmap generates the 2D integer height maps the world's
// terrain initialization consumes. It is a collaborator of the engine, not
// part of the core: the world only ever sees its output.
package heightmap

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/prizos/thermovox/config"
)

// Generator produces deterministic height maps from OpenSimplex FBM noise.
// Identical seed and parameters yield identical maps.
type Generator struct {
	noise opensimplex.Noise

	Scale      float64
	Octaves    int
	Lacunarity float64
	Gain       float64
	BaseHeight int
	Amplitude  int
}

// New creates a generator seeded for reproducible output, taking its noise
// parameters from the terrain config section.
func New(seed int64, cfg *config.Config) *Generator {
	tc := &cfg.Terrain
	return &Generator{
		noise:      opensimplex.New(seed),
		Scale:      tc.Scale,
		Octaves:    tc.Octaves,
		Lacunarity: tc.Lacunarity,
		Gain:       tc.Gain,
		BaseHeight: tc.BaseHeight,
		Amplitude:  tc.Amplitude,
	}
}

// Generate returns a width×width height map of column heights in cells.
// Heights are never negative.
func (g *Generator) Generate(width int) [][]int {
	h := make([][]int, width)
	for x := range h {
		h[x] = make([]int, width)
		for z := range h[x] {
			n := g.fbm(float64(x), float64(z))
			height := g.BaseHeight + int(math.Round(n*float64(g.Amplitude)))
			if height < 0 {
				height = 0
			}
			h[x][z] = height
		}
	}
	return h
}

// fbm sums noise octaves into [0, 1].
func (g *Generator) fbm(x, z float64) float64 {
	sum := 0.0
	amp := 0.5
	freq := g.Scale
	for o := 0; o < g.Octaves; o++ {
		// OpenSimplex returns [-1, 1], shift to [0, 1]
		n := (g.noise.Eval2(x*freq, z*freq) + 1) * 0.5
		sum += amp * n
		freq *= g.Lacunarity
		amp *= g.Gain
	}
	if sum < 0 {
		return 0
	}
	if sum > 1 {
		return 1
	}
	return sum
}
