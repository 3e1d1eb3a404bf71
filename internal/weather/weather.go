// Package weather derives the sky over the hollow from seeded simplex noise.
// Weather is flavour: it shows up in snapshots and narration but never
// changes a command's yield.
package weather

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// TicksPerFront is roughly how long one weather front lasts.
const TicksPerFront = 40.0

// Conditions describes the weather at one moment.
type Conditions struct {
	Description string  `json:"description"`
	Cloud       float64 `json:"cloud"` // 0 clear .. 1 black sky
	Cold        float64 `json:"cold"`  // 0 mild .. 1 freezing
	IsStorm     bool    `json:"is_storm"`
	IsSnow      bool    `json:"is_snow"`
}

// Generator samples weather deterministically from a seed.
type Generator struct {
	cloud opensimplex.Noise
	cold  opensimplex.Noise
}

// NewGenerator creates a weather generator; equal seeds give equal skies.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		cloud: opensimplex.NewNormalized(seed),
		cold:  opensimplex.NewNormalized(seed + 1),
	}
}

// At returns the conditions at game time t.
func (g *Generator) At(t uint64) Conditions {
	x := float64(t) / TicksPerFront
	cloud := octave(g.cloud, x, 0, 3)
	cold := octave(g.cold, x/4, 7.5, 2)
	return Classify(cloud, cold)
}

// Classify maps raw cloud and cold values onto a named condition.
func Classify(cloud, cold float64) Conditions {
	c := Conditions{Cloud: cloud, Cold: cold}
	freezing := cold > 0.7

	switch {
	case cloud < 0.3:
		c.Description = "clear skies"
		if freezing {
			c.Description = "bitter frost"
		}
	case cloud < 0.5:
		c.Description = "overcast"
	case cloud < 0.7:
		c.Description = "light rain"
		if freezing {
			c.Description = "light snow"
			c.IsSnow = true
		}
	case cloud < 0.85:
		c.Description = "heavy rain"
		if freezing {
			c.Description = "heavy snow"
			c.IsSnow = true
		}
	default:
		c.Description = "storm"
		c.IsStorm = true
		if freezing {
			c.Description = "blizzard"
			c.IsSnow = true
		}
	}
	return c
}

// octave sums a few noise layers at rising frequency, normalised to [0, 1].
func octave(noise opensimplex.Noise, x, y float64, octaves int) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := 1.0
	maxValue := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= 0.5
		frequency *= 2
	}
	return total / maxValue
}
