package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Progression holds all configuration for the progression daemon.
type Progression struct {
	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Death penalty constants
	Penalty PenaltyConfig `yaml:"penalty"`

	// Decay of death weight
	DecayRatePerHour float64 `yaml:"decay_rate_per_hour"`
	DecayTickSeconds int     `yaml:"decay_tick_seconds"`

	// Optional curve override: cumulative XP thresholds indexed by level.
	// Empty = use the built-in profession experience table.
	CurveThresholds []int64 `yaml:"curve_thresholds"`
}

// PenaltyConfig holds the death penalty formula constants.
// percent = clamp(base + weight*progressive_increase, 0, max), with the
// mercy_reduction multiplier applied before the clamp once a player has
// died mercy_threshold times in a session.
type PenaltyConfig struct {
	Base                float64 `yaml:"base"`
	ProgressiveIncrease float64 `yaml:"progressive_increase"`
	Max                 float64 `yaml:"max"`
	MercyReduction      float64 `yaml:"mercy_reduction"` // 0 disables mercy
	MercyThreshold      int32   `yaml:"mercy_threshold"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DecayTickInterval returns the decay tick as a Duration.
func (c Progression) DecayTickInterval() time.Duration {
	return time.Duration(c.DecayTickSeconds) * time.Second
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultProgression returns Progression config with sensible defaults.
func DefaultProgression() Progression {
	return Progression{
		LogLevel:         "info",
		DecayRatePerHour: 1.0,
		DecayTickSeconds: 60,
		Penalty: PenaltyConfig{
			Base:                0.10,
			ProgressiveIncrease: 0.03,
			Max:                 0.35,
			MercyReduction:      0.5,
			MercyThreshold:      10,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "professions",
			Password: "professions",
			DBName:   "professions",
			SSLMode:  "disable",
		},
	}
}

// LoadProgression loads progression config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadProgression(path string) (Progression, error) {
	cfg := DefaultProgression()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects configs that would break the penalty/decay math.
func (c Progression) Validate() error {
	if c.Penalty.Base < 0 || c.Penalty.Base > 1 {
		return fmt.Errorf("penalty.base %v out of range [0,1]", c.Penalty.Base)
	}
	if c.Penalty.Max < 0 || c.Penalty.Max > 1 {
		return fmt.Errorf("penalty.max %v out of range [0,1]", c.Penalty.Max)
	}
	if c.Penalty.ProgressiveIncrease < 0 {
		return fmt.Errorf("penalty.progressive_increase %v must be >= 0", c.Penalty.ProgressiveIncrease)
	}
	if c.Penalty.MercyReduction < 0 || c.Penalty.MercyReduction > 1 {
		return fmt.Errorf("penalty.mercy_reduction %v out of range [0,1]", c.Penalty.MercyReduction)
	}
	if c.DecayRatePerHour < 0 {
		return fmt.Errorf("decay_rate_per_hour %v must be >= 0", c.DecayRatePerHour)
	}
	if c.DecayTickSeconds <= 0 {
		return fmt.Errorf("decay_tick_seconds %d must be positive", c.DecayTickSeconds)
	}
	for i := 2; i < len(c.CurveThresholds); i++ {
		if c.CurveThresholds[i] < c.CurveThresholds[i-1] {
			return fmt.Errorf("curve_thresholds not monotonic at level %d", i)
		}
	}
	return nil
}
