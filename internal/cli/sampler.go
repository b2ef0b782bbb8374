package cli

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"syncell/pkg/cell"
	"syncell/pkg/config"
)

// sampler draws random cell specifications from the configured ranges.
// Integer ranges are half-open, matching [Min, Max).
type sampler struct {
	rng          *rand.Rand
	aspect       distuv.Uniform
	row, col     config.IntRange
	intensity    config.IntRange
	size         config.IntRange
	rotation     config.IntRange
	minIntensity int
}

func newSampler(cfg *config.Config, src rand.Source) *sampler {
	s := cfg.Sample
	return &sampler{
		rng:          rand.New(src),
		aspect:       distuv.Uniform{Min: s.Aspect.Min, Max: s.Aspect.Max, Src: src},
		row:          s.Row,
		col:          s.Col,
		intensity:    s.Intensity,
		size:         s.Size,
		rotation:     s.Rotation,
		minIntensity: cfg.Render.MinIntensity,
	}
}

func (s *sampler) intn(r config.IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + s.rng.Intn(r.Max-r.Min)
}

// next returns a fully resolved specification.
func (s *sampler) next() cell.Spec {
	return cell.Spec{
		Centroid:     cell.Point{Row: s.intn(s.row), Col: s.intn(s.col)},
		Intensity:    s.intn(s.intensity),
		Size:         s.intn(s.size),
		AspectRatio:  s.aspect.Rand(),
		Rotation:     float64(s.intn(s.rotation)),
		MinIntensity: s.minIntensity,
	}
}
