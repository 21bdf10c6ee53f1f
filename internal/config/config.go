// Package config loads the crawler's YAML configuration. A missing
// file is not an error; every knob has a usable default.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full configuration tree.
type Config struct {
	Source  Source  `yaml:"source"`
	Scraper Scraper `yaml:"scraper"`
	Files   Files   `yaml:"files"`
	Server  Server  `yaml:"server"`
}

// Source names the supported recipe site.
type Source struct {
	Host string `yaml:"host"`
}

// Scraper holds the fetch and retry knobs.
type Scraper struct {
	MaxRetries int      `yaml:"max_retries"`
	Delay      Duration `yaml:"delay"`
	Timeout    Duration `yaml:"timeout"`
	Settle     Duration `yaml:"settle"`
	RateLimit  Duration `yaml:"rate_limit"`
	Headless   bool     `yaml:"headless"`
}

// Files names the input list and the report outputs.
type Files struct {
	URLs      string `yaml:"urls"`
	Recipes   string `yaml:"recipes"`
	Failed    string `yaml:"failed"`
	Materials string `yaml:"materials"`
	OutputDir string `yaml:"output_dir"`
}

// Server configures the query API.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Source: Source{Host: "www.wowhead.com"},
		Scraper: Scraper{
			MaxRetries: 3,
			Delay:      Duration(2 * time.Second),
			Timeout:    Duration(15 * time.Second),
			Settle:     Duration(10 * time.Second),
			RateLimit:  Duration(time.Second),
			Headless:   true,
		},
		Files: Files{
			URLs:      "urls.txt",
			Recipes:   "recipes.json",
			Failed:    "failed_urls.txt",
			Materials: "materials.json",
			OutputDir: "data",
		},
		Server: Server{Addr: "localhost:8000"},
	}
}

// Load overlays the YAML file at path onto the defaults. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
