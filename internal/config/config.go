// Package config holds the YAML configuration of the fleshring tools and
// its conversion into engine parameter types.
package config

import (
	"fmt"

	fleshring "github.com/JeongBeomLee/FleshRing-sub000"
	"github.com/soypat/glgl/math/ms3"
)

// Config holds all tool settings.
type Config struct {
	Subdivision SubdivisionConfig `yaml:"subdivision"`
	Rings       []RingConfig      `yaml:"rings"`
	Deform      DeformConfig      `yaml:"deform"`
	Output      OutputConfig      `yaml:"output"`
	Batch       BatchConfig       `yaml:"batch"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SubdivisionConfig bounds the adaptive refinement.
type SubdivisionConfig struct {
	MaxLevel      int32   `yaml:"max_level"`
	MinEdgeLength float32 `yaml:"min_edge_length"`
}

// RingConfig describes one ring in component space.
type RingConfig struct {
	Name       string     `yaml:"name"`
	Center     [3]float32 `yaml:"center"`
	Axis       [3]float32 `yaml:"axis"`
	Radius     float32    `yaml:"radius"`
	Width      float32    `yaml:"width"`
	Margin     float32    `yaml:"margin"`
	Multiplier float32    `yaml:"multiplier"`
}

// DeformConfig holds deformation settings shared by every ring.
type DeformConfig struct {
	Curve           string  `yaml:"curve"`
	WeightThreshold float32 `yaml:"weight_threshold"`
	Tightness       float32 `yaml:"tightness"`
	Bulge           float32 `yaml:"bulge"`
}

// OutputConfig holds image output settings.
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	Size int    `yaml:"size"`
	WebP bool   `yaml:"webp"`
}

// BatchConfig holds worker pool settings.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values: one ring around a
// unit tube.
func Default() *Config {
	return &Config{
		Subdivision: SubdivisionConfig{
			MaxLevel:      4,
			MinEdgeLength: 0.01,
		},
		Rings: []RingConfig{{
			Name:       "ring0",
			Axis:       [3]float32{0, 1, 0},
			Radius:     1,
			Width:      0.25,
			Margin:     0.05,
			Multiplier: 1,
		}},
		Deform: DeformConfig{
			Curve:           fleshring.CurveHermite.String(),
			WeightThreshold: 0.01,
			Tightness:       0.1,
			Bulge:           0.05,
		},
		Output: OutputConfig{
			Dir:  ".",
			Size: 512,
			WebP: false,
		},
		Batch: BatchConfig{
			Workers: 0, // 0 selects one worker per CPU.
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Curve parses the configured falloff curve name.
func (c *Config) Curve() (fleshring.Curve, error) {
	return fleshring.ParseCurve(c.Deform.Curve)
}

// Ring converts a ring entry into the engine type, validating through the
// builder.
func (rc RingConfig) Ring() (fleshring.Ring, error) {
	bld := fleshring.Builder{NoParamPanic: true}
	ring := bld.NewRing(
		ms3.Vec{X: rc.Center[0], Y: rc.Center[1], Z: rc.Center[2]},
		ms3.Vec{X: rc.Axis[0], Y: rc.Axis[1], Z: rc.Axis[2]},
		rc.Radius, rc.Width,
	)
	if err := bld.Err(); err != nil {
		return fleshring.Ring{}, fmt.Errorf("ring %q: %w", rc.Name, err)
	}
	return ring, nil
}

// RingParams converts every configured ring into engine ring parameters.
func (c *Config) RingParams() ([]fleshring.RingParam, error) {
	curve, err := c.Curve()
	if err != nil {
		return nil, err
	}
	bld := fleshring.Builder{NoParamPanic: true}
	params := make([]fleshring.RingParam, 0, len(c.Rings))
	for _, rc := range c.Rings {
		ring, err := rc.Ring()
		if err != nil {
			return nil, err
		}
		mult := rc.Multiplier
		if mult == 0 {
			mult = 1
		}
		params = append(params, bld.NewRingParam(bld.NewTubeRegion(ring, rc.Margin), mult, curve))
		if err := bld.Err(); err != nil {
			return nil, fmt.Errorf("ring %q: %w", rc.Name, err)
		}
	}
	return params, nil
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if c.Subdivision.MaxLevel < 0 {
		return fmt.Errorf("subdivision.max_level %d is negative", c.Subdivision.MaxLevel)
	}
	if c.Subdivision.MinEdgeLength < 0 {
		return fmt.Errorf("subdivision.min_edge_length %g is negative", c.Subdivision.MinEdgeLength)
	}
	if c.Output.Size < 8 {
		return fmt.Errorf("output.size %d too small", c.Output.Size)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers %d is negative", c.Batch.Workers)
	}
	if len(c.Rings) == 0 {
		return fmt.Errorf("no rings configured")
	}
	if _, err := c.RingParams(); err != nil {
		return err
	}
	return nil
}
