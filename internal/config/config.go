// Package config holds runtime configuration for the floor-plan service.
// Values come from defaults, then an optional YAML or JSON file, then the
// environment (including a .env file in the working directory).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration written as "60s" or "1m30s" in config files.
type Duration struct {
	time.Duration
}

// D wraps a time.Duration.
func D(d time.Duration) Duration { return Duration{d} }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

type Server struct {
	Addr         string   `json:"addr" yaml:"addr"`
	ReadTimeout  Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout" yaml:"idle_timeout"`
	// SessionTTL is how long an untouched session survives.
	SessionTTL Duration `json:"session_ttl" yaml:"session_ttl"`
}

type Model struct {
	// URL of the prediction endpoint root. Empty runs without a model;
	// generation then fails with a model error.
	URL     string   `json:"url" yaml:"url"`
	Name    string   `json:"name" yaml:"name"`
	Timeout Duration `json:"timeout" yaml:"timeout"`
}

type Measure struct {
	ZoneThreshold   int     `json:"zone_threshold" yaml:"zone_threshold"`
	BlackThreshold  int     `json:"black_threshold" yaml:"black_threshold"`
	PixelsPerMeter  float64 `json:"pixels_per_meter" yaml:"pixels_per_meter"`
	DistanceDivisor float64 `json:"distance_divisor" yaml:"distance_divisor"`
}

type Editor struct {
	// HoverRadius is the first-vertex hit radius in screen pixels.
	HoverRadius    float64 `json:"hover_radius" yaml:"hover_radius"`
	ZoomStep       float64 `json:"zoom_step" yaml:"zoom_step"`
	StreetWidth    float64 `json:"street_width" yaml:"street_width"`
	StreetHeight   float64 `json:"street_height" yaml:"street_height"`
	MinStreetWidth float64 `json:"min_street_width" yaml:"min_street_width"`
}

type Log struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config is the full service configuration.
type Config struct {
	Server  Server  `json:"server" yaml:"server"`
	Model   Model   `json:"model" yaml:"model"`
	Measure Measure `json:"measure" yaml:"measure"`
	Editor  Editor  `json:"editor" yaml:"editor"`
	Log     Log     `json:"log" yaml:"log"`

	// DefaultFootLength is the scale reference in centimeters.
	DefaultFootLength float64 `json:"default_foot_length" yaml:"default_foot_length"`
	MinFootLength     float64 `json:"min_foot_length" yaml:"min_foot_length"`
}

// Default returns a Config populated with standard defaults.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  D(15 * time.Second),
			WriteTimeout: D(90 * time.Second),
			IdleTimeout:  D(60 * time.Second),
			SessionTTL:   D(30 * time.Minute),
		},
		Model: Model{
			Name:    "floorplan",
			Timeout: D(60 * time.Second),
		},
		Measure: Measure{
			ZoneThreshold:   30,
			BlackThreshold:  1,
			PixelsPerMeter:  8,
			DistanceDivisor: 2.08,
		},
		Editor: Editor{
			HoverRadius:    4,
			ZoomStep:       1.1,
			StreetWidth:    100,
			StreetHeight:   4,
			MinStreetWidth: 5,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		DefaultFootLength: 26,
		MinFootLength:     1,
	}
}

// Validate reports the first out-of-range value.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"measure.zone_threshold", float64(c.Measure.ZoneThreshold)},
		{"measure.black_threshold", float64(c.Measure.BlackThreshold)},
		{"measure.pixels_per_meter", c.Measure.PixelsPerMeter},
		{"measure.distance_divisor", c.Measure.DistanceDivisor},
		{"editor.hover_radius", c.Editor.HoverRadius},
		{"editor.street_width", c.Editor.StreetWidth},
		{"editor.min_street_width", c.Editor.MinStreetWidth},
		{"default_foot_length", c.DefaultFootLength},
		{"min_foot_length", c.MinFootLength},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, p.name, p.v)
		}
	}
	if c.Editor.ZoomStep <= 1 {
		return fmt.Errorf("%w: editor.zoom_step must be above 1, got %v", ErrInvalid, c.Editor.ZoomStep)
	}
	if c.Editor.StreetHeight < 0 {
		return fmt.Errorf("%w: editor.street_height must not be negative", ErrInvalid)
	}
	if c.DefaultFootLength < c.MinFootLength {
		return fmt.Errorf("%w: default_foot_length %v is below min_foot_length %v",
			ErrInvalid, c.DefaultFootLength, c.MinFootLength)
	}
	timeouts := map[string]Duration{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"server.idle_timeout":  c.Server.IdleTimeout,
		"server.session_ttl":   c.Server.SessionTTL,
		"model.timeout":        c.Model.Timeout,
	}
	for name, d := range timeouts {
		if d.Duration <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalid, name)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	return nil
}

// Load reads the file at path (YAML by extension, otherwise JSON) over the
// defaults, applies environment overrides and validates. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(path, data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	default:
		return json.Unmarshal(data, c)
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("FLOORPLAN_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("FLOORPLAN_MODEL_URL"); ok {
		c.Model.URL = v
	}
	if v, ok := lookup("FLOORPLAN_MODEL_TIMEOUT"); ok && v != "" {
		if err := c.Model.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%w: FLOORPLAN_MODEL_TIMEOUT: %v", ErrInvalid, err)
		}
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	return nil
}

// Save writes the configuration to path, YAML or JSON by extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
