// Package config loads and saves model parameter files in YAML form.
package config

import (
	"os"

	"github.com/kmarchais/tpms"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Surface    string     `yaml:"surface"`
	Resolution int        `yaml:"resolution"`
	Offset     float64    `yaml:"offset"`
	PhaseShift [3]float64 `yaml:"phase_shift"`
	CellSize   [3]float64 `yaml:"cell_size"`
	CellRepeat [3]int     `yaml:"cell_repeat"`
}

func DefaultConfig() *Config {
	return FromParameters(tpms.DefaultParameters())
}

// FromParameters converts model parameters to their file form.
func FromParameters(p tpms.Parameters) *Config {
	return &Config{
		Surface:    p.Surface,
		Resolution: p.Resolution,
		Offset:     p.Offset,
		PhaseShift: [3]float64{p.PhaseShift.X, p.PhaseShift.Y, p.PhaseShift.Z},
		CellSize:   [3]float64{p.CellSize.X, p.CellSize.Y, p.CellSize.Z},
		CellRepeat: [3]int(p.CellRepeat),
	}
}

// Parameters converts the file form back to model parameters. Values
// are validated by the model, not here.
func (c *Config) Parameters() tpms.Parameters {
	return tpms.Parameters{
		Surface:    c.Surface,
		Resolution: c.Resolution,
		Offset:     c.Offset,
		PhaseShift: r3.Vec{X: c.PhaseShift[0], Y: c.PhaseShift[1], Z: c.PhaseShift[2]},
		CellSize:   r3.Vec{X: c.CellSize[0], Y: c.CellSize[1], Z: c.CellSize[2]},
		CellRepeat: tpms.V3i(c.CellRepeat),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
