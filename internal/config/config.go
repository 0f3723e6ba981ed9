// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SampleDirs []string `toml:"sample_dirs"`
	OutputDir  string   `toml:"output_dir"`
	Workers    int      `toml:"workers"`

	Encoder       Encoder       `toml:"encoder"`
	WaveDrom      WaveDrom      `toml:"wavedrom"`
	Reorder       Reorder       `toml:"reorder"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

type Encoder struct {
	MaxSignals      int      `toml:"max_signals"`
	MaxTimeSteps    int      `toml:"max_time_steps"`
	IncludeInternal bool     `toml:"include_internal"`
	Order           string   `toml:"order"` // vcd, port or grouped
	ExcludeSignals  []string `toml:"exclude_signals"`
}

type WaveDrom struct {
	HScale   int    `toml:"hscale"`
	HeadText string `toml:"head_text"`
	FootText string `toml:"foot_text"`
}

type Reorder struct {
	FilterToReference bool `toml:"filter_to_reference"`
}

type Watch struct {
	Enabled       bool          `toml:"enabled"`
	Debounce      time.Duration `toml:"debounce"`
	ExcludeDirs   []string      `toml:"exclude_dirs"`
	ExcludeFiles  []string      `toml:"exclude_files"`
	RatePerSecond float64       `toml:"rate_per_second"`
	Burst         int           `toml:"burst"`
}

type History struct {
	Path string `toml:"path"`
}

type Observability struct {
	Addr         string `toml:"addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.SampleDirs) == 0 {
		c.SampleDirs = []string{"."}
	}
	if c.OutputDir == "" {
		c.OutputDir = "./output"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Encoder.MaxSignals <= 0 {
		c.Encoder.MaxSignals = 20
	}
	if c.Encoder.MaxTimeSteps <= 0 {
		c.Encoder.MaxTimeSteps = 50
	}
	if c.Encoder.Order == "" {
		c.Encoder.Order = "port"
	}
	if c.WaveDrom.HScale <= 0 {
		c.WaveDrom.HScale = 2
	}
	if c.WaveDrom.HeadText == "" {
		c.WaveDrom.HeadText = "Timing Diagram"
	}
	if c.WaveDrom.FootText == "" {
		c.WaveDrom.FootText = "Cycle numbers"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Watch.RatePerSecond <= 0 {
		c.Watch.RatePerSecond = 1
	}
	if c.Watch.Burst <= 0 {
		c.Watch.Burst = 2
	}
}

func (c *Config) validate() error {
	switch c.Encoder.Order {
	case "vcd", "port", "grouped":
	default:
		return fmt.Errorf("unknown encoder order %q (want vcd, port or grouped)", c.Encoder.Order)
	}
	return nil
}
